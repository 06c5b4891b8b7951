package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"

	"cierrecaja/backend/internal/domain"
	"cierrecaja/backend/internal/store"
	"cierrecaja/backend/internal/xid"
)

type Store struct {
	db *sql.DB
}

func New(ctx context.Context, databaseURL string) (*Store, error) {
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return nil, err
	}

	db.SetMaxIdleConns(8)
	db.SetMaxOpenConns(30)
	db.SetConnMaxLifetime(30 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 6*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, err
	}

	s := &Store{db: db}
	if err := s.ensureSchema(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) ensureSchema(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS closings (
			id TEXT PRIMARY KEY,
			store_id TEXT NOT NULL,
			date TEXT NOT NULL,
			processed_by TEXT NOT NULL DEFAULT '',
			result JSONB NOT NULL,
			ledger JSONB,
			ledger_error TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS closings_store_date_idx ON closings (store_id, date)`,
		`CREATE TABLE IF NOT EXISTS audit_logs (
			id TEXT PRIMARY KEY,
			store_id TEXT NOT NULL,
			actor_username TEXT NOT NULL,
			actor_role TEXT NOT NULL,
			action TEXT NOT NULL,
			entity_type TEXT NOT NULL,
			entity_id TEXT NOT NULL,
			detail TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS audit_logs_store_created_idx ON audit_logs (store_id, created_at)`,
		`CREATE TABLE IF NOT EXISTS app_users (
			username TEXT PRIMARY KEY,
			password TEXT NOT NULL,
			role TEXT NOT NULL,
			active BOOLEAN NOT NULL DEFAULT true,
			created_at TIMESTAMPTZ NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) SaveClosing(ctx context.Context, closing domain.Closing) (*domain.Closing, error) {
	if closing.StoreID == "" || closing.Date == "" {
		return nil, store.ErrInvalidClosing
	}
	if closing.ID == "" {
		closing.ID = xid.New("closing")
	}
	if closing.CreatedAt.IsZero() {
		closing.CreatedAt = time.Now().UTC()
	}

	resultJSON, err := json.Marshal(closing.Result)
	if err != nil {
		return nil, err
	}
	var ledgerJSON any
	if closing.Ledger != nil {
		payload, err := json.Marshal(closing.Ledger)
		if err != nil {
			return nil, err
		}
		ledgerJSON = payload
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO closings (id, store_id, date, processed_by, result, ledger, ledger_error, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
	`, closing.ID, closing.StoreID, closing.Date, closing.ProcessedBy, resultJSON, ledgerJSON, closing.LedgerError, closing.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, store.ErrInvalidClosing
		}
		return nil, err
	}

	saved := closing
	return &saved, nil
}

func (s *Store) GetClosingByID(ctx context.Context, id string) (*domain.Closing, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, store_id, date, processed_by, result, ledger, ledger_error, created_at
		FROM closings
		WHERE id = $1
	`, id)

	closing, err := scanClosing(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	return closing, nil
}

func (s *Store) ListClosings(ctx context.Context, storeID string, limit int) ([]domain.Closing, error) {
	if limit < 1 {
		limit = 50
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, store_id, date, processed_by, result, ledger, ledger_error, created_at
		FROM closings
		WHERE ($1 = '' OR store_id = $1)
		ORDER BY created_at DESC
		LIMIT $2
	`, storeID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	closings := make([]domain.Closing, 0, limit)
	for rows.Next() {
		closing, err := scanClosing(rows)
		if err != nil {
			return nil, err
		}
		closings = append(closings, *closing)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return closings, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanClosing(row rowScanner) (*domain.Closing, error) {
	var closing domain.Closing
	var resultJSON []byte
	var ledgerJSON []byte

	err := row.Scan(&closing.ID, &closing.StoreID, &closing.Date, &closing.ProcessedBy,
		&resultJSON, &ledgerJSON, &closing.LedgerError, &closing.CreatedAt)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(resultJSON, &closing.Result); err != nil {
		return nil, err
	}
	if len(ledgerJSON) > 0 {
		var ledger domain.SalesSummary
		if err := json.Unmarshal(ledgerJSON, &ledger); err != nil {
			return nil, err
		}
		closing.Ledger = &ledger
	}
	closing.CreatedAt = closing.CreatedAt.UTC()
	return &closing, nil
}

func (s *Store) CreateAuditLog(ctx context.Context, entry domain.AuditLog) error {
	if entry.ID == "" {
		entry.ID = xid.New("audit")
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO audit_logs (id, store_id, actor_username, actor_role, action, entity_type, entity_id, detail, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
	`, entry.ID, entry.StoreID, entry.ActorUsername, entry.ActorRole, entry.Action, entry.EntityType, entry.EntityID, entry.Detail, entry.CreatedAt)
	return err
}

func (s *Store) ListAuditLogs(ctx context.Context, storeID string, from time.Time, to time.Time, limit int) ([]domain.AuditLog, error) {
	if limit < 1 {
		limit = 100
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, store_id, actor_username, actor_role, action, entity_type, entity_id, detail, created_at
		FROM audit_logs
		WHERE ($1 = '' OR store_id = $1) AND created_at >= $2 AND created_at < $3
		ORDER BY created_at DESC
		LIMIT $4
	`, storeID, from, to, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	logs := make([]domain.AuditLog, 0, limit)
	for rows.Next() {
		var entry domain.AuditLog
		if err := rows.Scan(&entry.ID, &entry.StoreID, &entry.ActorUsername, &entry.ActorRole,
			&entry.Action, &entry.EntityType, &entry.EntityID, &entry.Detail, &entry.CreatedAt); err != nil {
			return nil, err
		}
		entry.CreatedAt = entry.CreatedAt.UTC()
		logs = append(logs, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return logs, nil
}

func (s *Store) CreateUser(ctx context.Context, user domain.UserAccount) error {
	if user.Username == "" || user.Password == "" {
		return store.ErrInvalidClosing
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO app_users (username, password, role, active, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,now())
	`, user.Username, user.Password, user.Role, user.Active, user.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return store.ErrInvalidClosing
		}
		return err
	}
	return nil
}

func (s *Store) ListUsers(ctx context.Context) ([]domain.UserAccount, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT username, password, role, active, created_at
		FROM app_users
		ORDER BY username
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := make([]domain.UserAccount, 0, 16)
	for rows.Next() {
		var user domain.UserAccount
		if err := rows.Scan(&user.Username, &user.Password, &user.Role, &user.Active, &user.CreatedAt); err != nil {
			return nil, err
		}
		user.CreatedAt = user.CreatedAt.UTC()
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return users, nil
}

func (s *Store) UpdateUserPassword(ctx context.Context, username string, password string) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE app_users
		SET password = $2, updated_at = now()
		WHERE username = $1
	`, username, password)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}
