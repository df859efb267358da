package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"tally/internal/core"
	"tally/internal/source"

	_ "modernc.org/sqlite"
)

// SQLiteRepository serves the initial expense collection from a local
// database. The tracker never writes back; Import only seeds it.
type SQLiteRepository struct {
	db *sql.DB
}

// Ensure interface conformance
var _ source.ExpenseProvider = (*SQLiteRepository)(nil)

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

	version, err := RunMigrations(dbPath)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	slog.Debug("Expenses schema ready", "db", dbPath, "version", version)

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

const selectExpenses = `SELECT id, name, amount_cents, category, date FROM expenses ORDER BY date, id`

// FetchInitialExpenses implements source.ExpenseProvider. Rows that no
// longer validate are skipped with a warning.
func (r *SQLiteRepository) FetchInitialExpenses(ctx context.Context) ([]core.Expense, error) {
	rows, err := r.db.QueryContext(ctx, selectExpenses)
	if err != nil {
		return nil, fmt.Errorf("query expenses: %w", err)
	}
	defer rows.Close()

	var expenses []core.Expense
	for rows.Next() {
		var (
			e        core.Expense
			category string
			date     string
		)
		if err := rows.Scan(&e.ID, &e.Name, &e.Amount.Cents, &category, &date); err != nil {
			return nil, fmt.Errorf("scan expense: %w", err)
		}
		e.Category = core.Category(category)
		d, err := core.ParseDate(date)
		if err == nil {
			e.Date = d
			err = e.Validate()
		}
		if err != nil {
			slog.WarnContext(ctx, "Skipping invalid stored expense", "id", e.ID, "error", err)
			continue
		}
		expenses = append(expenses, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate expenses: %w", err)
	}

	slog.DebugContext(ctx, "Loaded expenses from SQLite", "count", len(expenses))
	return expenses, nil
}

// Import upserts expenses by id in a single transaction.
func (r *SQLiteRepository) Import(ctx context.Context, exps []core.Expense) (int, error) {
	for _, e := range exps {
		if err := e.Validate(); err != nil {
			return 0, fmt.Errorf("expense %d: %w", e.ID, err)
		}
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO expenses (id, name, amount_cents, category, date)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			amount_cents = excluded.amount_cents,
			category = excluded.category,
			date = excluded.date`)
	if err != nil {
		return 0, fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, e := range exps {
		if _, err := stmt.ExecContext(ctx, e.ID, e.Name, e.Amount.Cents, string(e.Category), e.Date.String()); err != nil {
			return 0, fmt.Errorf("insert expense %d: %w", e.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit transaction: %w", err)
	}

	slog.InfoContext(ctx, "Expenses imported to SQLite", "count", len(exps))
	return len(exps), nil
}

// Count returns the number of stored expenses.
func (r *SQLiteRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM expenses`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count expenses: %w", err)
	}
	return n, nil
}
