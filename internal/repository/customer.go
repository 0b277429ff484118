package repository

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/xenking/movie-orders/internal/domain/customer"
)

const (
	getCustomerSQL = `SELECT id, name, date_of_birth, date_hired, annual_salary
		FROM customers WHERE id = $1`

	searchCustomersSQL = `SELECT id, name, date_of_birth, date_hired, annual_salary
		FROM customers WHERE lower(name) LIKE lower($1) ORDER BY name`
)

var _ customer.Repository = (*CustomerRepository)(nil)

// CustomerRepository implements customer.Repository backed by PostgreSQL.
type CustomerRepository struct {
	pool *pgxpool.Pool
}

// NewCustomerRepository returns a CustomerRepository that uses the given pool.
func NewCustomerRepository(pool *pgxpool.Pool) *CustomerRepository {
	return &CustomerRepository{pool: pool}
}

// Get returns a single customer by id, or customer.ErrNotFound.
func (r *CustomerRepository) Get(ctx context.Context, id uuid.UUID) (*customer.Customer, error) {
	rows, err := r.pool.Query(ctx, getCustomerSQL, id)
	if err != nil {
		return nil, fmt.Errorf("getting customer %q: %w", id, err)
	}

	c, err := pgx.CollectExactlyOneRow(rows, scanCustomer)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, customer.ErrNotFound
		}
		return nil, fmt.Errorf("getting customer %q: %w", id, err)
	}
	return &c, nil
}

// Search returns customers whose name contains the given fragment,
// case-insensitively, ordered by name.
func (r *CustomerRepository) Search(ctx context.Context, name string) ([]customer.Customer, error) {
	rows, err := r.pool.Query(ctx, searchCustomersSQL, "%"+name+"%")
	if err != nil {
		return nil, fmt.Errorf("searching customers: %w", err)
	}
	return pgx.CollectRows(rows, scanCustomer)
}

func scanCustomer(row pgx.CollectableRow) (customer.Customer, error) {
	var c customer.Customer
	err := row.Scan(&c.ID, &c.Name, &c.DateOfBirth, &c.DateHired, &c.AnnualSalary)
	return c, err
}
