// Command zipcode-ingest loads gzipped ZIP-code CSV exports into the
// zip_codes table so shipping addresses can be validated without calling
// the Zipwise API on every request.
//
// Each input file is a gzip-compressed CSV with a header row and the
// columns: zip, state, city. A ZIP code spanning several cities appears
// once per city; rows are merged before writing.
package main

import (
	"bufio"
	"context"
	"encoding/csv"
	"flag"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/klauspost/pgzip"
	"golang.org/x/sync/errgroup"

	"github.com/xenking/movie-orders/internal/repository"
)

const (
	progressEvery = 100_000
	batchSize     = 1_000
	zipCodeLen    = 5
)

// zipEntry accumulates every city observed for a single ZIP code.
type zipEntry struct {
	state  string
	cities []string
}

func main() {
	var (
		dataDir     string
		databaseURL string
	)

	flag.StringVar(&dataDir, "data-dir", "data", "directory containing *.csv.gz ZIP code exports")
	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
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

	if err := run(ctx, dataDir, databaseURL); err != nil {
		slog.Error("zip code ingest failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("zip code ingest completed successfully")
}

func run(ctx context.Context, dataDir, databaseURL string) error {
	files, err := filepath.Glob(filepath.Join(dataDir, "*.csv.gz"))
	if err != nil {
		return errors.Wrap(err, "glob data dir")
	}
	if len(files) == 0 {
		return errors.Errorf("no *.csv.gz files found in %s", dataDir)
	}

	slog.Info("scanning ZIP code files", slog.Int("files", len(files)))

	entries, err := collectEntries(ctx, files)
	if err != nil {
		return errors.Wrap(err, "collect entries")
	}

	slog.Info("distinct ZIP codes found", slog.Int("count", len(entries)))

	if len(entries) == 0 {
		slog.Info("nothing to write")
		return nil
	}

	slog.Info("connecting to database")

	pool, err := repository.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	if err := repository.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	if err := writeEntries(ctx, pool, entries); err != nil {
		return errors.Wrap(err, "write zip codes to database")
	}

	return nil
}

// collectEntries streams every file concurrently and merges rows per ZIP code.
func collectEntries(ctx context.Context, files []string) (map[string]*zipEntry, error) {
	var (
		mu      sync.Mutex
		entries = make(map[string]*zipEntry)
	)

	g, ctx := errgroup.WithContext(ctx)
	for i, f := range files {
		g.Go(scanFile(ctx, i, f, &mu, entries))
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	for _, e := range entries {
		slices.Sort(e.cities)
		e.cities = slices.Compact(e.cities)
	}

	return entries, nil
}

func scanFile(ctx context.Context, idx int, path string, mu *sync.Mutex, entries map[string]*zipEntry) func() error {
	return func() error {
		var count uint64

		err := streamGzCSV(ctx, path, func(record []string) error {
			if len(record) < 3 {
				return nil
			}

			code := strings.TrimSpace(record[0])
			state := strings.ToUpper(strings.TrimSpace(record[1]))
			city := strings.TrimSpace(record[2])
			if len(code) != zipCodeLen || state == "" || city == "" {
				return nil
			}

			count++
			if count%progressEvery == 0 {
				slog.Info("scan progress",
					slog.Int("file", idx+1),
					slog.Uint64("rows", count),
				)
			}

			mu.Lock()
			e, ok := entries[code]
			if !ok {
				e = &zipEntry{state: state}
				entries[code] = e
			}
			e.cities = append(e.cities, city)
			mu.Unlock()

			return nil
		})
		if err != nil {
			return errors.Wrapf(err, "scan file %d", idx+1)
		}

		slog.Info("scan complete",
			slog.Int("file", idx+1),
			slog.Uint64("total_rows", count),
		)

		return nil
	}
}

// streamGzCSV opens a gzip-compressed CSV file, skips the header row, and
// calls fn for each record.
func streamGzCSV(ctx context.Context, path string, fn func(record []string) error) error {
	f, err := os.Open(path)
	if err != nil {
		return errors.Wrapf(err, "open %s", path)
	}
	defer func() { _ = f.Close() }()

	gz, err := pgzip.NewReader(f)
	if err != nil {
		return errors.Wrapf(err, "create gzip reader for %s", path)
	}
	defer func() { _ = gz.Close() }()

	r := csv.NewReader(bufio.NewReader(gz))
	r.FieldsPerRecord = -1

	if _, err := r.Read(); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return errors.Wrapf(err, "read header of %s", path)
	}

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return errors.Wrapf(err, "read %s", path)
		}

		if err := fn(record); err != nil {
			return err
		}
	}

	return nil
}

const upsertZipCodeSQL = `INSERT INTO zip_codes (code, state, cities)
	VALUES ($1, $2, $3)
	ON CONFLICT (code) DO UPDATE SET state = EXCLUDED.state, cities = EXCLUDED.cities`

// writeEntries upserts merged ZIP codes in batches.
func writeEntries(ctx context.Context, pool interface {
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
}, entries map[string]*zipEntry,
) error {
	slog.Info("writing zip codes to database", slog.Int("count", len(entries)))

	codes := make([]string, 0, len(entries))
	for code := range entries {
		codes = append(codes, code)
	}
	slices.Sort(codes)

	written := 0
	for start := 0; start < len(codes); start += batchSize {
		end := min(start+batchSize, len(codes))

		batch := &pgx.Batch{}
		for _, code := range codes[start:end] {
			e := entries[code]
			batch.Queue(upsertZipCodeSQL, code, e.state, e.cities)
		}

		if err := pool.SendBatch(ctx, batch).Close(); err != nil {
			return errors.Wrapf(err, "upsert batch starting at %s", codes[start])
		}

		written = end
		slog.Info("write progress", slog.Int("written", written), slog.Int("total", len(codes)))
	}

	return nil
}
