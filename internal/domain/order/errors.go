package order

import (
	"fmt"

	"github.com/go-faster/errors"
)

// Sentinel errors for order validation.
var (
	// ErrNotFound is returned when a requested order does not exist.
	ErrNotFound = errors.New("order not found")
	// ErrOrderFull is returned when adding items would push the order past
	// the per-order quantity cap.
	ErrOrderFull = fmt.Errorf("an order can have up to %d items", MaxItems)
	// ErrEmptyOrder is returned when completing an order without items.
	ErrEmptyOrder = errors.New("cannot complete an order without items")
	// ErrVersionConflict is returned by repositories when a concurrent
	// update won the store race. Callers may reload and retry.
	ErrVersionConflict = errors.New("order was modified concurrently")
)

// InvalidQuantityError indicates a non-positive quantity on add.
type InvalidQuantityError struct {
	Quantity int
}

func (e *InvalidQuantityError) Error() string {
	return fmt.Sprintf("quantity must be greater than 0, got %d", e.Quantity)
}

// ItemNotFoundError indicates a removal of a movie that is not on the order.
type ItemNotFoundError struct {
	MovieID string
}

func (e *ItemNotFoundError) Error() string {
	return fmt.Sprintf("movie %s is not on this order", e.MovieID)
}

// StateError indicates an operation attempted against an order whose status
// does not permit it. Only New orders may be mutated or transitioned.
type StateError struct {
	Status Status
	Action string
}

func (e *StateError) Error() string {
	return fmt.Sprintf("cannot %s a %s order", e.Action, e.Status)
}
