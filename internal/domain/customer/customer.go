package customer

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ErrNotFound is returned when a requested customer does not exist.
var ErrNotFound = errors.New("customer not found")

// Customer is a rental-club member. Orders copy the full record at creation
// time so that discount eligibility stays stable even if the record changes
// later.
type Customer struct {
	ID           uuid.UUID       `json:"id"`
	Name         string          `json:"name"`
	DateOfBirth  time.Time       `json:"dateOfBirth"`
	DateHired    time.Time       `json:"dateHired"`
	AnnualSalary decimal.Decimal `json:"annualSalary"`
}

// Repository defines read operations for customer records.
type Repository interface {
	Get(ctx context.Context, id uuid.UUID) (*Customer, error)
	Search(ctx context.Context, name string) ([]Customer, error)
}
