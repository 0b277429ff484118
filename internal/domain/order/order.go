package order

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/xenking/movie-orders/internal/domain/customer"
	"github.com/xenking/movie-orders/internal/domain/movie"
	"github.com/xenking/movie-orders/internal/domain/shipping"
)

// MaxItems caps the summed quantity across all line items of one order.
const MaxItems = 20

// flatShippingFee is charged once per shipped order with at least one item.
var flatShippingFee = decimal.NewFromInt(5)

// Status is the lifecycle state of an order. Transitions are linear:
// New -> Completed or New -> Cancelled, both terminal.
type Status string

const (
	StatusNew       Status = "new"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

// Type selects how an order reaches the customer.
type Type string

const (
	TypeShipped  Type = "shipped"
	TypePickedUp Type = "picked_up"
)

// Item is one movie entry on an order. Year and Metascore are stored verbatim
// from the catalog for later reference; Price is fixed at first add and not
// recalculated when quantity merges.
type Item struct {
	MovieID   string          `json:"movieId"`
	Year      string          `json:"movieYear,omitempty"`
	Metascore string          `json:"movieMetascore,omitempty"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
}

// Order is the aggregate root. It owns its item and discount collections
// exclusively; accessors hand out copies, and all mutation goes through
// AddItem, RemoveItem, Complete, and Cancel, which keep the derived monetary
// fields consistent.
type Order struct {
	ID              uuid.UUID
	Status          Status
	Type            Type
	Customer        customer.Customer
	ShippingAddress *shipping.Address
	Shipping        decimal.Decimal
	LineItemTotal   decimal.Decimal
	DiscountTotal   decimal.Decimal
	CreatedAt       time.Time
	CompletedAt     *time.Time
	CancelledAt     *time.Time

	// Version is managed by the storage layer for optimistic concurrency.
	Version int64

	items     []Item
	discounts []Discount
}

// New creates an order in the New state with zero items, zero totals, and no
// discounts. The caller supplies the id, the customer snapshot, and the
// creation time; shipping addresses must already be validated.
func New(id uuid.UUID, c customer.Customer, typ Type, addr *shipping.Address, createdAt time.Time) *Order {
	return &Order{
		ID:              id,
		Status:          StatusNew,
		Type:            typ,
		Customer:        c,
		ShippingAddress: addr,
		Shipping:        decimal.Zero,
		LineItemTotal:   decimal.Zero,
		DiscountTotal:   decimal.Zero,
		CreatedAt:       createdAt,
	}
}

// Restore rebuilds an order from persisted state. Totals are taken as stored
// rather than recomputed, so a loaded order round-trips exactly.
func Restore(o Order, items []Item, discounts []Discount) *Order {
	restored := o
	restored.items = append([]Item(nil), items...)
	restored.discounts = append([]Discount(nil), discounts...)
	return &restored
}

// Items returns a copy of the order's line items.
func (o *Order) Items() []Item {
	return append([]Item(nil), o.items...)
}

// Discounts returns a copy of the currently applicable discounts.
func (o *Order) Discounts() []Discount {
	return append([]Discount(nil), o.discounts...)
}

// TotalCost is always derived, never stored, so it cannot drift from the
// fields it is computed from.
func (o *Order) TotalCost() decimal.Decimal {
	return o.LineItemTotal.Add(o.Shipping).Sub(o.DiscountTotal)
}

// TotalQuantity returns the summed quantity across all line items.
func (o *Order) TotalQuantity() int {
	total := 0
	for _, item := range o.items {
		total += item.Quantity
	}
	return total
}

// AddItem adds quantity units of the given movie to the order. A movie
// already on the order has its quantity merged and keeps its original price;
// a new movie is priced from its catalog facts. Discounts and totals are
// recomputed before returning. The order is unchanged when an error is
// returned.
func (o *Order) AddItem(m movie.Movie, quantity int) error {
	if o.Status != StatusNew {
		return &StateError{Status: o.Status, Action: "add items to"}
	}
	if quantity <= 0 {
		return &InvalidQuantityError{Quantity: quantity}
	}
	if o.TotalQuantity()+quantity > MaxItems {
		return ErrOrderFull
	}

	if existing := o.findItem(m.ID); existing != nil {
		existing.Quantity += quantity
	} else {
		o.items = append(o.items, Item{
			MovieID:   m.ID,
			Year:      m.Year,
			Metascore: m.Metascore,
			Quantity:  quantity,
			Price:     movie.Price(m.Year, m.Metascore),
		})
	}

	o.recalculate()
	return nil
}

// RemoveItem removes the movie's line item entirely, regardless of quantity,
// and recomputes discounts and totals.
func (o *Order) RemoveItem(movieID string) error {
	if o.Status != StatusNew {
		return &StateError{Status: o.Status, Action: "remove items from"}
	}

	for i, item := range o.items {
		if item.MovieID == movieID {
			o.items = append(o.items[:i], o.items[i+1:]...)
			o.recalculate()
			return nil
		}
	}
	return &ItemNotFoundError{MovieID: movieID}
}

// Complete transitions a New order with at least one item into the terminal
// Completed state and stamps the completion time exactly once.
func (o *Order) Complete(at time.Time) error {
	if o.Status != StatusNew {
		return &StateError{Status: o.Status, Action: "complete"}
	}
	if len(o.items) == 0 {
		return ErrEmptyOrder
	}

	o.Status = StatusCompleted
	o.CompletedAt = &at
	return nil
}

// Cancel transitions a New order into the terminal Cancelled state and
// stamps the cancellation time exactly once.
func (o *Order) Cancel(at time.Time) error {
	if o.Status != StatusNew {
		return &StateError{Status: o.Status, Action: "cancel"}
	}

	o.Status = StatusCancelled
	o.CancelledAt = &at
	return nil
}

func (o *Order) findItem(movieID string) *Item {
	for i := range o.items {
		if o.items[i].MovieID == movieID {
			return &o.items[i]
		}
	}
	return nil
}

// recalculate rebuilds every derived field from the current items. Discounts
// are cleared and recomputed from scratch on each mutation so they can never
// go stale against the item list.
func (o *Order) recalculate() {
	if o.Type == TypeShipped && len(o.items) > 0 {
		o.Shipping = flatShippingFee
	} else {
		o.Shipping = decimal.Zero
	}

	total := decimal.Zero
	for _, item := range o.items {
		total = total.Add(item.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	o.LineItemTotal = total

	o.discounts = calcDiscounts(o.CreatedAt, o.Customer, o.LineItemTotal)

	pct := decimal.Zero
	for _, d := range o.discounts {
		pct = pct.Add(d.Percent)
	}
	o.DiscountTotal = pct.Mul(o.LineItemTotal).RoundBank(2)
}
