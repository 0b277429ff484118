// Command seed-db loads sample customers and a handful of ZIP codes into the
// database for local development.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/xenking/movie-orders/internal/repository"
)

type customerJSON struct {
	ID           uuid.UUID       `json:"id"`
	Name         string          `json:"name"`
	DateOfBirth  string          `json:"dateOfBirth"`
	DateHired    string          `json:"dateHired"`
	AnnualSalary decimal.Decimal `json:"annualSalary"`
}

type zipCodeSeed struct {
	code   string
	state  string
	cities []string
}

// A few well-known codes so shipped orders can be exercised locally without
// a Zipwise API key or a full ingest.
var zipCodeSeeds = []zipCodeSeed{
	{"90210", "CA", []string{"Beverly Hills"}},
	{"10001", "NY", []string{"New York"}},
	{"60601", "IL", []string{"Chicago"}},
	{"75001", "TX", []string{"Addison", "Dallas"}},
	{"98101", "WA", []string{"Seattle"}},
}

func main() {
	var (
		databaseURL   string
		customersFile string
	)

	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.StringVar(&customersFile, "customers-file", "db/seed/customers.json", "path to customers JSON file")
	flag.Parse()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		slog.Error("database URL is required: set --database-url or DATABASE_URL")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, databaseURL, customersFile); err != nil {
		slog.Error("seed failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("seed completed successfully")
}

func run(ctx context.Context, databaseURL, customersFile string) error {
	slog.Info("connecting to database")

	pool, err := repository.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	slog.Info("running migrations")

	if err := repository.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	if err := seedCustomers(ctx, pool, customersFile); err != nil {
		return errors.Wrap(err, "seed customers")
	}
	if err := seedZipCodes(ctx, pool); err != nil {
		return errors.Wrap(err, "seed zip codes")
	}

	return nil
}

const upsertCustomerSQL = `INSERT INTO customers (id, name, date_of_birth, date_hired, annual_salary)
	VALUES ($1, $2, $3, $4, $5)
	ON CONFLICT (id) DO UPDATE SET
		name = EXCLUDED.name,
		date_of_birth = EXCLUDED.date_of_birth,
		date_hired = EXCLUDED.date_hired,
		annual_salary = EXCLUDED.annual_salary`

func seedCustomers(ctx context.Context, pool *pgxpool.Pool, customersFile string) error {
	slog.Info("reading customers file", slog.String("path", customersFile))

	data, err := os.ReadFile(customersFile)
	if err != nil {
		return errors.Wrap(err, "read customers file")
	}

	var customers []customerJSON
	if err := json.Unmarshal(data, &customers); err != nil {
		return errors.Wrap(err, "parse customers JSON")
	}

	slog.Info("upserting customers", slog.Int("count", len(customers)))

	for _, c := range customers {
		dob, err := time.Parse("2006-01-02", c.DateOfBirth)
		if err != nil {
			return errors.Wrapf(err, "parse dateOfBirth for %s", c.Name)
		}
		hired, err := time.Parse("2006-01-02", c.DateHired)
		if err != nil {
			return errors.Wrapf(err, "parse dateHired for %s", c.Name)
		}

		if _, err := pool.Exec(ctx, upsertCustomerSQL, c.ID, c.Name, dob, hired, c.AnnualSalary); err != nil {
			return errors.Wrapf(err, "upsert customer %s", c.ID)
		}

		slog.Info("upserted customer", slog.String("id", c.ID.String()), slog.String("name", c.Name))
	}

	return nil
}

const upsertZipCodeSQL = `INSERT INTO zip_codes (code, state, cities)
	VALUES ($1, $2, $3)
	ON CONFLICT (code) DO UPDATE SET state = EXCLUDED.state, cities = EXCLUDED.cities`

func seedZipCodes(ctx context.Context, pool *pgxpool.Pool) error {
	slog.Info("seeding zip codes", slog.Int("count", len(zipCodeSeeds)))

	for _, z := range zipCodeSeeds {
		if _, err := pool.Exec(ctx, upsertZipCodeSQL, z.code, z.state, z.cities); err != nil {
			return errors.Wrapf(err, "upsert zip code %s", z.code)
		}
	}

	return nil
}
