// Package storage persists accounts, transactions and recurring templates in
// SQLite. Dates are stored as ISO-8601 strings and converted to core.Date at
// this boundary only.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"movimenti/internal/core"

	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when a row does not exist or belongs to another
// user.
var ErrNotFound = errors.New("not found")

type SQLiteRepository struct {
	db *sql.DB
}

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

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// CreateAccount inserts an account and returns its id.
func (r *SQLiteRepository) CreateAccount(ctx context.Context, a core.Account) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO accounts (user_id, name, kind) VALUES (?, ?, ?)`,
		a.UserID, a.Name, string(a.Kind))
	if err != nil {
		return 0, fmt.Errorf("create account: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("account insert id: %w", err)
	}

	slog.InfoContext(ctx, "Account created", "account_id", id, "user_id", a.UserID, "kind", string(a.Kind))
	return id, nil
}

// ListAccounts returns the user's accounts in creation order.
func (r *SQLiteRepository) ListAccounts(ctx context.Context, userID string) ([]core.Account, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, name, kind FROM accounts WHERE user_id = ? ORDER BY id`,
		userID)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	defer rows.Close()

	var accounts []core.Account
	for rows.Next() {
		var a core.Account
		var kind string
		if err := rows.Scan(&a.ID, &a.UserID, &a.Name, &kind); err != nil {
			return nil, fmt.Errorf("scan account: %w", err)
		}
		a.Kind = core.AccountKind(kind)
		accounts = append(accounts, a)
	}
	return accounts, rows.Err()
}

// GetAccount returns one of the user's accounts.
func (r *SQLiteRepository) GetAccount(ctx context.Context, userID string, id int64) (core.Account, error) {
	var a core.Account
	var kind string
	err := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, name, kind FROM accounts WHERE id = ? AND user_id = ?`,
		id, userID).Scan(&a.ID, &a.UserID, &a.Name, &kind)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Account{}, ErrNotFound
	}
	if err != nil {
		return core.Account{}, fmt.Errorf("get account: %w", err)
	}
	a.Kind = core.AccountKind(kind)
	return a, nil
}

// CreateTransaction inserts a transaction row and returns its id.
func (r *SQLiteRepository) CreateTransaction(ctx context.Context, t core.StoredTransaction) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO transactions (user_id, account_id, template_id, kind, date, description, amount_cents, category)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		t.UserID, nullableID(t.AccountID), nullableID(t.TemplateID), string(t.Kind),
		t.Date.ISO(), t.Description, t.Amount.Cents, t.Category)
	if err != nil {
		return 0, fmt.Errorf("create transaction: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("transaction insert id: %w", err)
	}

	slog.InfoContext(ctx, "Transaction saved",
		"transaction_id", id,
		"user_id", t.UserID,
		"date", t.Date.ISO(),
		"amount_cents", t.Amount.Cents)
	return id, nil
}

// GetTransaction returns a transaction row by id, soft-deleted rows included.
func (r *SQLiteRepository) GetTransaction(ctx context.Context, id int64) (core.StoredTransaction, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, account_id, template_id, kind, date, description, amount_cents, category
		 FROM transactions WHERE id = ?`, id)
	t, err := scanTransaction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.StoredTransaction{}, ErrNotFound
	}
	return t, err
}

// ListTransactionsInRange returns the user's live transactions with a date
// inside [from, to], ordered by date then insertion order.
func (r *SQLiteRepository) ListTransactionsInRange(ctx context.Context, userID string, from, to core.Date) ([]core.StoredTransaction, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, account_id, template_id, kind, date, description, amount_cents, category
		 FROM transactions
		 WHERE user_id = ? AND deleted_at IS NULL AND date >= ? AND date <= ?
		 ORDER BY date, id`,
		userID, from.ISO(), to.ISO())
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var txns []core.StoredTransaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		txns = append(txns, t)
	}
	return txns, rows.Err()
}

// SoftDeleteTransaction marks one of the user's transactions deleted. The row
// stays for audit; listings exclude it.
func (r *SQLiteRepository) SoftDeleteTransaction(ctx context.Context, userID string, id int64) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE transactions SET deleted_at = CURRENT_TIMESTAMP
		 WHERE id = ? AND user_id = ? AND deleted_at IS NULL`,
		id, userID)
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete transaction rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}

	slog.InfoContext(ctx, "Transaction deleted", "transaction_id", id, "user_id", userID)
	return nil
}

// CreateTemplate inserts a recurring template and returns its id.
func (r *SQLiteRepository) CreateTemplate(ctx context.Context, t core.TransactionTemplate) (int64, error) {
	var endDate any
	if !t.Rule.EndDate.IsZero() {
		endDate = t.Rule.EndDate.ISO()
	}

	res, err := r.db.ExecContext(ctx,
		`INSERT INTO recurring_templates
		 (user_id, account_id, kind, description, amount_cents, category, frequency, start_date, end_date, interval_days, active)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.UserID, nullableID(t.AccountID), string(t.Kind), t.Description, t.Amount.Cents,
		t.Category, string(t.Rule.Frequency), t.Rule.StartDate.ISO(), endDate,
		t.Rule.IntervalDays, boolToInt(t.Rule.Active))
	if err != nil {
		return 0, fmt.Errorf("create template: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("template insert id: %w", err)
	}

	slog.InfoContext(ctx, "Recurring template created",
		"template_id", id,
		"user_id", t.UserID,
		"frequency", string(t.Rule.Frequency),
		"start_date", t.Rule.StartDate.ISO())
	return id, nil
}

// GetTemplate returns one of the user's templates.
func (r *SQLiteRepository) GetTemplate(ctx context.Context, userID string, id int64) (core.TransactionTemplate, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, account_id, kind, description, amount_cents, category,
		        frequency, start_date, end_date, interval_days, active
		 FROM recurring_templates WHERE id = ? AND user_id = ?`,
		id, userID)
	t, err := scanTemplate(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.TransactionTemplate{}, ErrNotFound
	}
	return t, err
}

// ListTemplates returns all of the user's templates, cancelled ones included.
func (r *SQLiteRepository) ListTemplates(ctx context.Context, userID string) ([]core.TransactionTemplate, error) {
	return r.listTemplates(ctx,
		`SELECT id, user_id, account_id, kind, description, amount_cents, category,
		        frequency, start_date, end_date, interval_days, active
		 FROM recurring_templates WHERE user_id = ? ORDER BY id`,
		userID)
}

// ListActiveTemplates returns the user's active templates in creation order.
func (r *SQLiteRepository) ListActiveTemplates(ctx context.Context, userID string) ([]core.TransactionTemplate, error) {
	return r.listTemplates(ctx,
		`SELECT id, user_id, account_id, kind, description, amount_cents, category,
		        frequency, start_date, end_date, interval_days, active
		 FROM recurring_templates WHERE user_id = ? AND active = 1 ORDER BY id`,
		userID)
}

func (r *SQLiteRepository) listTemplates(ctx context.Context, query string, args ...any) ([]core.TransactionTemplate, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}
	defer rows.Close()

	var templates []core.TransactionTemplate
	for rows.Next() {
		t, err := scanTemplate(rows)
		if err != nil {
			return nil, err
		}
		templates = append(templates, t)
	}
	return templates, rows.Err()
}

// CancelTemplate flips one of the user's templates to inactive.
func (r *SQLiteRepository) CancelTemplate(ctx context.Context, userID string, id int64) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE recurring_templates SET active = 0
		 WHERE id = ? AND user_id = ? AND active = 1`,
		id, userID)
	if err != nil {
		return fmt.Errorf("cancel template: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("cancel template rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}

	slog.InfoContext(ctx, "Recurring template cancelled", "template_id", id, "user_id", userID)
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row rowScanner) (core.StoredTransaction, error) {
	var t core.StoredTransaction
	var accountID, templateID sql.NullInt64
	var kind, date string

	err := row.Scan(&t.ID, &t.UserID, &accountID, &templateID, &kind, &date,
		&t.Description, &t.Amount.Cents, &t.Category)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return t, err
		}
		return t, fmt.Errorf("scan transaction: %w", err)
	}

	t.AccountID = accountID.Int64
	t.TemplateID = templateID.Int64
	t.Kind = core.EntryKind(kind)
	t.Date, err = core.ParseDate(date)
	if err != nil {
		return t, fmt.Errorf("transaction %d has malformed date %q: %w", t.ID, date, err)
	}
	return t, nil
}

func scanTemplate(row rowScanner) (core.TransactionTemplate, error) {
	var t core.TransactionTemplate
	var accountID sql.NullInt64
	var endDate sql.NullString
	var kind, frequency, startDate string
	var active int

	err := row.Scan(&t.ID, &t.UserID, &accountID, &kind, &t.Description,
		&t.Amount.Cents, &t.Category, &frequency, &startDate, &endDate,
		&t.Rule.IntervalDays, &active)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return t, err
		}
		return t, fmt.Errorf("scan template: %w", err)
	}

	t.AccountID = accountID.Int64
	t.Kind = core.EntryKind(kind)
	t.Rule.Frequency = core.Frequency(frequency)
	t.Rule.Active = active != 0
	t.Rule.StartDate, err = core.ParseDate(startDate)
	if err != nil {
		return t, fmt.Errorf("template %d has malformed start date %q: %w", t.ID, startDate, err)
	}
	if endDate.Valid {
		t.Rule.EndDate, err = core.ParseDate(endDate.String)
		if err != nil {
			return t, fmt.Errorf("template %d has malformed end date %q: %w", t.ID, endDate.String, err)
		}
	}
	return t, nil
}

func nullableID(id int64) any {
	if id == 0 {
		return nil
	}
	return id
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
