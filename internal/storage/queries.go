package storage

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"salestats/internal/core"
)

// DBTX is satisfied by both *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(context.Context, string, ...interface{}) (sql.Result, error)
	PrepareContext(context.Context, string) (*sql.Stmt, error)
	QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...interface{}) *sql.Row
}

type Queries struct {
	db DBTX
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

func (q *Queries) WithTx(tx *sql.Tx) *Queries {
	return &Queries{db: tx}
}

// Transaction is the row shape of the transactions table.
type Transaction struct {
	ID          int64
	Title       string
	Description string
	Price       float64
	DateOfSale  int64
	Category    string
	Sold        bool
	Image       string
}

const deleteAllTransactions = `DELETE FROM transactions`

func (q *Queries) DeleteAllTransactions(ctx context.Context) error {
	_, err := q.db.ExecContext(ctx, deleteAllTransactions)
	return err
}

const insertTransaction = `INSERT INTO transactions (title, description, price, date_of_sale, category, sold, image)
VALUES (?, ?, ?, ?, ?, ?, ?)`

type InsertTransactionParams struct {
	Title       string
	Description string
	Price       float64
	DateOfSale  int64
	Category    string
	Sold        bool
	Image       string
}

func (q *Queries) PrepareInsertTransaction(ctx context.Context) (*sql.Stmt, error) {
	return q.db.PrepareContext(ctx, insertTransaction)
}

func InsertTransaction(ctx context.Context, stmt *sql.Stmt, arg InsertTransactionParams) error {
	_, err := stmt.ExecContext(ctx,
		arg.Title,
		arg.Description,
		arg.Price,
		arg.DateOfSale,
		arg.Category,
		arg.Sold,
		arg.Image,
	)
	return err
}

const selectTransactions = `SELECT id, title, description, price, date_of_sale, category, sold, image FROM transactions`

func (q *Queries) FindTransactions(ctx context.Context, f core.Filter, offset, limit int) ([]Transaction, error) {
	where, args := whereClause(f)
	if limit <= 0 {
		limit = -1
	}
	args = append(args, limit, offset)

	rows, err := q.db.QueryContext(ctx, selectTransactions+where+` ORDER BY id LIMIT ? OFFSET ?`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []Transaction{}
	for rows.Next() {
		var i Transaction
		if err := rows.Scan(
			&i.ID,
			&i.Title,
			&i.Description,
			&i.Price,
			&i.DateOfSale,
			&i.Category,
			&i.Sold,
			&i.Image,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const countTransactions = `SELECT COUNT(*) FROM transactions`

func (q *Queries) CountTransactions(ctx context.Context, f core.Filter) (int64, error) {
	where, args := whereClause(f)
	row := q.db.QueryRowContext(ctx, countTransactions+where, args...)
	var count int64
	err := row.Scan(&count)
	return count, err
}

// whereClause renders the filter as SQL with positional arguments. Sale dates
// are stored as UTC unix milliseconds. Search goes through contains_fold.
func whereClause(f core.Filter) (string, []interface{}) {
	var (
		conds []string
		args  []interface{}
	)
	if f.Month != 0 {
		// Real division keeps pre-1970 instants on the correct side of a month boundary
		conds = append(conds, `CAST(strftime('%m', date_of_sale / 1000.0, 'unixepoch') AS INTEGER) = ?`)
		args = append(args, f.Month)
	}
	if !f.From.IsZero() {
		conds = append(conds, `date_of_sale >= ?`)
		args = append(args, toMillis(f.From))
	}
	if !f.To.IsZero() {
		conds = append(conds, `date_of_sale < ?`)
		args = append(args, toMillis(f.To))
	}
	if f.Sold != nil {
		conds = append(conds, `sold = ?`)
		args = append(args, *f.Sold)
	}
	if f.Search != "" {
		conds = append(conds, `(contains_fold(title, ?) OR contains_fold(description, ?))`)
		args = append(args, f.Search, f.Search)
	}
	if len(conds) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func toMillis(t time.Time) int64 {
	return t.UTC().UnixMilli()
}

func fromMillis(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}
