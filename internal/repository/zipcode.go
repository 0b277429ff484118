package repository

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/xenking/movie-orders/internal/domain/shipping"
)

const getZipCodeSQL = `SELECT code, state, cities FROM zip_codes WHERE code = $1`

var _ shipping.Directory = (*ZipCodeRepository)(nil)

// ZipCodeRepository implements shipping.Directory against the zip_codes
// table populated by cmd/zipcode-ingest. It serves as the offline
// alternative to the Zipwise API client.
type ZipCodeRepository struct {
	pool *pgxpool.Pool
}

// NewZipCodeRepository returns a ZipCodeRepository that uses the given pool.
func NewZipCodeRepository(pool *pgxpool.Pool) *ZipCodeRepository {
	return &ZipCodeRepository{pool: pool}
}

// Lookup resolves a ZIP code from the local directory. Unknown codes return
// (nil, nil).
func (r *ZipCodeRepository) Lookup(ctx context.Context, code string) (*shipping.ZipCodeInfo, error) {
	var info shipping.ZipCodeInfo
	err := r.pool.QueryRow(ctx, getZipCodeSQL, code).Scan(&info.Code, &info.State, &info.Cities)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("looking up zip code %q: %w", code, err)
	}
	return &info, nil
}
