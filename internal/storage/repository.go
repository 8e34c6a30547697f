package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"salestats/internal/catalog"
	"salestats/internal/core"

	_ "modernc.org/sqlite"
)

type SQLiteRepository struct {
	db      *sql.DB
	queries *Queries
}

var (
	_ catalog.Store  = (*SQLiteRepository)(nil)
	_ catalog.Pinger = (*SQLiteRepository)(nil)
)

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{
		db:      db,
		queries: New(db),
	}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping implements catalog.Pinger
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// ReplaceAll implements catalog.Replacer. Clear and insert run in one
// transaction so readers never see a half-loaded catalog.
func (r *SQLiteRepository) ReplaceAll(ctx context.Context, records []core.Transaction) (int, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	q := r.queries.WithTx(tx)
	if err := q.DeleteAllTransactions(ctx); err != nil {
		return 0, fmt.Errorf("clear transactions: %w", err)
	}

	stmt, err := q.PrepareInsertTransaction(ctx)
	if err != nil {
		return 0, fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, t := range records {
		err := InsertTransaction(ctx, stmt, InsertTransactionParams{
			Title:       t.Title,
			Description: t.Description,
			Price:       t.Price,
			DateOfSale:  toMillis(t.DateOfSale),
			Category:    t.Category,
			Sold:        t.Sold,
			Image:       t.Image,
		})
		if err != nil {
			return 0, fmt.Errorf("insert transaction %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit transaction: %w", err)
	}

	slog.InfoContext(ctx, "Transactions replaced in SQLite", "count", len(records))
	return len(records), nil
}

// Find implements catalog.Finder
func (r *SQLiteRepository) Find(ctx context.Context, f core.Filter, offset, limit int) ([]core.Transaction, error) {
	rows, err := r.queries.FindTransactions(ctx, f, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("find transactions: %w", err)
	}

	out := make([]core.Transaction, len(rows))
	for i, row := range rows {
		out[i] = core.Transaction{
			ID:          row.ID,
			Title:       row.Title,
			Description: row.Description,
			Price:       row.Price,
			DateOfSale:  fromMillis(row.DateOfSale),
			Category:    row.Category,
			Sold:        row.Sold,
			Image:       row.Image,
		}
	}
	return out, nil
}

// Count implements catalog.Finder
func (r *SQLiteRepository) Count(ctx context.Context, f core.Filter) (int, error) {
	n, err := r.queries.CountTransactions(ctx, f)
	if err != nil {
		return 0, fmt.Errorf("count transactions: %w", err)
	}
	return int(n), nil
}
