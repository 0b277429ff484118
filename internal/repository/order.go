package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/xenking/movie-orders/internal/domain/customer"
	"github.com/xenking/movie-orders/internal/domain/order"
	"github.com/xenking/movie-orders/internal/domain/shipping"
)

const (
	createOrderSQL = `INSERT INTO orders
		(id, status, type, customer_id, customer, shipping_address, items, discounts,
		 shipping, line_item_total, discount_total, version, created_at, completed_at, cancelled_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`

	getOrderSQL = `SELECT id, status, type, customer, shipping_address, items, discounts,
		shipping, line_item_total, discount_total, version, created_at, completed_at, cancelled_at
		FROM orders WHERE id = $1`

	// The version predicate makes the update an optimistic compare-and-swap:
	// zero rows affected means another writer stored a newer version.
	updateOrderSQL = `UPDATE orders SET
		status = $2, items = $3, discounts = $4,
		shipping = $5, line_item_total = $6, discount_total = $7,
		completed_at = $8, cancelled_at = $9, version = version + 1
		WHERE id = $1 AND version = $10`

	searchOrdersSQL = `SELECT id, status, type, customer, shipping_address, items, discounts,
		shipping, line_item_total, discount_total, version, created_at, completed_at, cancelled_at
		FROM orders
		WHERE created_at >= $1 AND ($2::uuid IS NULL OR customer_id = $2)
		ORDER BY created_at DESC`
)

var _ order.Repository = (*OrderRepository)(nil)

// OrderRepository implements order.Repository backed by PostgreSQL. The
// customer snapshot, shipping address, items, and discounts live in JSONB
// columns; derived totals are snapshotted as stored, not recomputed on load.
type OrderRepository struct {
	pool *pgxpool.Pool
}

// NewOrderRepository returns an OrderRepository that uses the given pool.
func NewOrderRepository(pool *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{pool: pool}
}

// Create persists a new order at version 1.
func (r *OrderRepository) Create(ctx context.Context, o *order.Order) error {
	cols, err := marshalOrder(o)
	if err != nil {
		return err
	}

	_, err = r.pool.Exec(ctx, createOrderSQL,
		o.ID, string(o.Status), string(o.Type), o.Customer.ID,
		cols.customer, cols.address, cols.items, cols.discounts,
		o.Shipping, o.LineItemTotal, o.DiscountTotal,
		int64(1), o.CreatedAt, o.CompletedAt, o.CancelledAt,
	)
	if err != nil {
		return fmt.Errorf("creating order %q: %w", o.ID, err)
	}
	o.Version = 1
	return nil
}

// Get returns the order with the given id, or order.ErrNotFound.
func (r *OrderRepository) Get(ctx context.Context, id uuid.UUID) (*order.Order, error) {
	rows, err := r.pool.Query(ctx, getOrderSQL, id)
	if err != nil {
		return nil, fmt.Errorf("getting order %q: %w", id, err)
	}

	o, err := pgx.CollectExactlyOneRow(rows, scanOrder)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, order.ErrNotFound
		}
		return nil, fmt.Errorf("getting order %q: %w", id, err)
	}
	return o, nil
}

// Update stores the order's mutable fields, guarded by a version check.
// Returns order.ErrVersionConflict when the stored version changed since the
// order was loaded.
func (r *OrderRepository) Update(ctx context.Context, o *order.Order) error {
	cols, err := marshalOrder(o)
	if err != nil {
		return err
	}

	tag, err := r.pool.Exec(ctx, updateOrderSQL,
		o.ID, string(o.Status), cols.items, cols.discounts,
		o.Shipping, o.LineItemTotal, o.DiscountTotal,
		o.CompletedAt, o.CancelledAt, o.Version,
	)
	if err != nil {
		return fmt.Errorf("updating order %q: %w", o.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return order.ErrVersionConflict
	}
	o.Version++
	return nil
}

// Search returns orders created at or after the filter's floor, newest
// first, optionally restricted to one customer.
func (r *OrderRepository) Search(ctx context.Context, filter order.SearchFilter) ([]*order.Order, error) {
	rows, err := r.pool.Query(ctx, searchOrdersSQL, filter.NoOlderThanUTC, filter.CustomerID)
	if err != nil {
		return nil, fmt.Errorf("searching orders: %w", err)
	}
	return pgx.CollectRows(rows, scanOrder)
}

// orderColumns holds the JSONB payloads of one order row.
type orderColumns struct {
	customer  []byte
	address   []byte
	items     []byte
	discounts []byte
}

func marshalOrder(o *order.Order) (orderColumns, error) {
	var (
		cols orderColumns
		err  error
	)

	if cols.customer, err = json.Marshal(o.Customer); err != nil {
		return cols, fmt.Errorf("marshaling customer snapshot: %w", err)
	}
	if o.ShippingAddress != nil {
		if cols.address, err = json.Marshal(o.ShippingAddress); err != nil {
			return cols, fmt.Errorf("marshaling shipping address: %w", err)
		}
	}
	if cols.items, err = json.Marshal(o.Items()); err != nil {
		return cols, fmt.Errorf("marshaling order items: %w", err)
	}
	if cols.discounts, err = json.Marshal(o.Discounts()); err != nil {
		return cols, fmt.Errorf("marshaling order discounts: %w", err)
	}
	return cols, nil
}

func scanOrder(row pgx.CollectableRow) (*order.Order, error) {
	var (
		o           order.Order
		status, typ string
		cust        []byte
		address     []byte
		itemsJSON   []byte
		discJSON    []byte
		shipFee     decimal.Decimal
		lineTotal   decimal.Decimal
		discTotal   decimal.Decimal
		completedAt *time.Time
		cancelledAt *time.Time
	)

	err := row.Scan(
		&o.ID, &status, &typ, &cust, &address, &itemsJSON, &discJSON,
		&shipFee, &lineTotal, &discTotal, &o.Version, &o.CreatedAt,
		&completedAt, &cancelledAt,
	)
	if err != nil {
		return nil, err
	}

	o.Status = order.Status(status)
	o.Type = order.Type(typ)
	o.Shipping = shipFee
	o.LineItemTotal = lineTotal
	o.DiscountTotal = discTotal
	o.CompletedAt = completedAt
	o.CancelledAt = cancelledAt

	var snapshot customer.Customer
	if err := json.Unmarshal(cust, &snapshot); err != nil {
		return nil, fmt.Errorf("unmarshaling customer snapshot: %w", err)
	}
	o.Customer = snapshot

	if len(address) > 0 {
		var addr shipping.Address
		if err := json.Unmarshal(address, &addr); err != nil {
			return nil, fmt.Errorf("unmarshaling shipping address: %w", err)
		}
		o.ShippingAddress = &addr
	}

	var items []order.Item
	if err := json.Unmarshal(itemsJSON, &items); err != nil {
		return nil, fmt.Errorf("unmarshaling order items: %w", err)
	}

	var discounts []order.Discount
	if err := json.Unmarshal(discJSON, &discounts); err != nil {
		return nil, fmt.Errorf("unmarshaling order discounts: %w", err)
	}

	return order.Restore(o, items, discounts), nil
}
