package order

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/xenking/movie-orders/internal/domain/customer"
	"github.com/xenking/movie-orders/internal/domain/movie"
	"github.com/xenking/movie-orders/internal/domain/shipping"
)

const (
	// defaultSearchWindow is the lookback applied when a search supplies no
	// timestamp floor.
	defaultSearchWindow = 24 * time.Hour
	// maxSearchWindow caps the lookback for searches without a customer
	// filter.
	maxSearchWindow = 7 * 24 * time.Hour
)

// SearchFilter restricts an order search. A nil CustomerID matches all
// customers; NoOlderThanUTC is the inclusive timestamp floor.
type SearchFilter struct {
	CustomerID     *uuid.UUID
	NoOlderThanUTC time.Time
}

// Repository defines persistence operations for orders. Update must perform
// an optimistic version check and return ErrVersionConflict when the stored
// version no longer matches the loaded one.
type Repository interface {
	Create(ctx context.Context, o *Order) error
	Get(ctx context.Context, id uuid.UUID) (*Order, error)
	Update(ctx context.Context, o *Order) error
	Search(ctx context.Context, filter SearchFilter) ([]*Order, error)
}

// AddressValidator confirms a shipping address against authoritative ZIP
// code data before an order is created.
type AddressValidator interface {
	Validate(ctx context.Context, addr *shipping.Address) error
}

// CreateOrderRequest holds the input for creating an order.
type CreateOrderRequest struct {
	CustomerID      uuid.UUID
	Type            Type
	ShippingAddress *shipping.Address
}

// SearchOrdersRequest holds the optional filters for an order search.
type SearchOrdersRequest struct {
	CustomerID  *uuid.UUID
	NoOlderThan *time.Time
}

// Service encapsulates order placement business logic: it resolves
// collaborator data (customers, movies, address validation, clock, ids) and
// drives the aggregate, leaving every pricing and discount rule inside it.
type Service struct {
	orders    Repository
	customers customer.Repository
	movies    movie.Repository
	addresses AddressValidator

	now   func() time.Time
	newID func() uuid.UUID
}

// NewService creates an order Service with the required domain dependencies.
func NewService(
	orders Repository,
	customers customer.Repository,
	movies movie.Repository,
	addresses AddressValidator,
) *Service {
	return &Service{
		orders:    orders,
		customers: customers,
		movies:    movies,
		addresses: addresses,
		now:       time.Now,
		newID:     uuid.New,
	}
}

// CreateOrder resolves the customer snapshot, validates the shipping address
// for shipped orders, and persists a fresh order in the New state. Customer
// lookup and address validation are independent and run concurrently.
func (s *Service) CreateOrder(ctx context.Context, req CreateOrderRequest) (*Order, error) {
	var cust *customer.Customer

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		c, err := s.customers.Get(gctx, req.CustomerID)
		if err != nil {
			return err
		}
		cust = c
		return nil
	})
	if req.Type == TypeShipped {
		g.Go(func() error {
			return s.addresses.Validate(gctx, req.ShippingAddress)
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	o := New(s.newID(), *cust, req.Type, req.ShippingAddress, s.now().UTC())
	if err := s.orders.Create(ctx, o); err != nil {
		return nil, errors.Wrap(err, "create order")
	}
	return o, nil
}

// GetOrder returns the order with the given id, or ErrNotFound.
func (s *Service) GetOrder(ctx context.Context, id uuid.UUID) (*Order, error) {
	return s.orders.Get(ctx, id)
}

// SearchOrders returns orders matching the optional customer filter, no
// older than the given floor. Without a floor the lookback defaults to one
// day; without a customer filter the floor is clamped to seven days back.
func (s *Service) SearchOrders(ctx context.Context, req SearchOrdersRequest) ([]*Order, error) {
	nowUTC := s.now().UTC()

	floor := nowUTC.Add(-defaultSearchWindow)
	if req.NoOlderThan != nil {
		floor = req.NoOlderThan.UTC()
	}
	if req.CustomerID == nil {
		if oldest := nowUTC.Add(-maxSearchWindow); floor.Before(oldest) {
			floor = oldest
		}
	}

	return s.orders.Search(ctx, SearchFilter{
		CustomerID:     req.CustomerID,
		NoOlderThanUTC: floor,
	})
}

// AddItem resolves the order and the movie's catalog facts concurrently,
// adds the item through the aggregate, and stores the result with a version
// check.
func (s *Service) AddItem(ctx context.Context, orderID uuid.UUID, movieID string, quantity int) (*Order, error) {
	var (
		o *Order
		m *movie.Movie
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		loaded, err := s.orders.Get(gctx, orderID)
		if err != nil {
			return err
		}
		o = loaded
		return nil
	})
	g.Go(func() error {
		fetched, err := s.movies.Get(gctx, movieID)
		if err != nil {
			return err
		}
		m = fetched
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if err := o.AddItem(*m, quantity); err != nil {
		return nil, err
	}
	if err := s.orders.Update(ctx, o); err != nil {
		return nil, errors.Wrap(err, "store order")
	}
	return o, nil
}

// RemoveItem removes a movie's line item from the order and stores the
// result with a version check.
func (s *Service) RemoveItem(ctx context.Context, orderID uuid.UUID, movieID string) (*Order, error) {
	o, err := s.orders.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if err := o.RemoveItem(movieID); err != nil {
		return nil, err
	}
	if err := s.orders.Update(ctx, o); err != nil {
		return nil, errors.Wrap(err, "store order")
	}
	return o, nil
}

// CompleteOrder moves the order into the terminal Completed state.
func (s *Service) CompleteOrder(ctx context.Context, orderID uuid.UUID) (*Order, error) {
	o, err := s.orders.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if err := o.Complete(s.now().UTC()); err != nil {
		return nil, err
	}
	if err := s.orders.Update(ctx, o); err != nil {
		return nil, errors.Wrap(err, "store order")
	}
	return o, nil
}

// CancelOrder moves the order into the terminal Cancelled state.
func (s *Service) CancelOrder(ctx context.Context, orderID uuid.UUID) (*Order, error) {
	o, err := s.orders.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if err := o.Cancel(s.now().UTC()); err != nil {
		return nil, err
	}
	if err := s.orders.Update(ctx, o); err != nil {
		return nil, errors.Wrap(err, "store order")
	}
	return o, nil
}
