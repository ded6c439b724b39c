package identity

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when no identity matches the lookup.
var ErrNotFound = errors.New("identity: not found")

// ErrCodeInvalid is returned when a verification code does not match any
// pending identity.
var ErrCodeInvalid = errors.New("identity: verification code invalid")

// Store persists identities in SQLite.
type Store struct {
	db *sql.DB
}

// NewStore creates an identity store with a SQLite database at the given
// directory, creating it and running migrations as needed.
func NewStore(dataPath string) (*Store, error) {
	if err := os.MkdirAll(dataPath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	db, err := sql.Open("sqlite", filepath.Join(dataPath, "identities.db"))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		return nil, fmt.Errorf("failed to migrate identity tables: %w", err)
	}
	return store, nil
}

// migrate creates necessary tables
func (s *Store) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS identities (
			user_id INTEGER PRIMARY KEY,
			chat_id INTEGER NOT NULL,
			username TEXT DEFAULT '',
			account_id INTEGER DEFAULT 0,
			verification_code TEXT DEFAULT '',
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_identities_account ON identities(account_id)`,
		`CREATE INDEX IF NOT EXISTS idx_identities_code ON identities(verification_code)`,
	}

	for _, migration := range migrations {
		if _, err := s.db.Exec(migration); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}
	return nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// GetOrCreate resolves the identity for a Telegram user id, creating it on
// first contact. Idempotent: repeated calls with the same user id return the
// stored record; chat id and username are defaults captured at creation and
// are never overwritten.
func (s *Store) GetOrCreate(ctx context.Context, userID, chatID int64, username string) (*Identity, bool, error) {
	ident, err := s.get(ctx, userID)
	if err == nil {
		return ident, false, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, false, err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO identities (user_id, chat_id, username) VALUES (?, ?, ?)
		ON CONFLICT(user_id) DO NOTHING`,
		userID, chatID, username)
	if err != nil {
		return nil, false, fmt.Errorf("failed to create identity: %w", err)
	}

	ident, err = s.get(ctx, userID)
	if err != nil {
		return nil, false, err
	}
	return ident, true, nil
}

// get fetches an identity by Telegram user id.
func (s *Store) get(ctx context.Context, userID int64) (*Identity, error) {
	var ident Identity
	err := s.db.QueryRowContext(ctx, `
		SELECT user_id, chat_id, username, account_id, verification_code, created_at, updated_at
		FROM identities WHERE user_id = ?`, userID).
		Scan(&ident.UserID, &ident.ChatID, &ident.Username, &ident.AccountID,
			&ident.VerificationCode, &ident.Created, &ident.Updated)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get identity: %w", err)
	}
	return &ident, nil
}

// SetVerificationCode stores a fresh pending code on the identity.
func (s *Store) SetVerificationCode(ctx context.Context, userID int64, code string) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE identities SET verification_code = ?, updated_at = CURRENT_TIMESTAMP
		WHERE user_id = ?`, code, userID)
	if err != nil {
		return fmt.Errorf("failed to set verification code: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// LinkAccount consumes a pending verification code and binds the identity
// to a tracker account. Called by operator tooling out-of-band; the bot
// itself never links accounts.
func (s *Store) LinkAccount(ctx context.Context, code string, accountID int64) (*Identity, error) {
	var userID int64
	err := s.db.QueryRowContext(ctx, `
		SELECT user_id FROM identities WHERE verification_code = ? AND verification_code != ''`,
		code).Scan(&userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrCodeInvalid
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up code: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		UPDATE identities SET account_id = ?, verification_code = '', updated_at = CURRENT_TIMESTAMP
		WHERE user_id = ?`, accountID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to link account: %w", err)
	}

	return s.get(ctx, userID)
}

// ListLinked returns every identity bound to a tracker account. Used by the
// digest scheduler to fan out reminders.
func (s *Store) ListLinked(ctx context.Context) ([]Identity, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT user_id, chat_id, username, account_id, verification_code, created_at, updated_at
		FROM identities WHERE account_id != 0 ORDER BY user_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list linked identities: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var identities []Identity
	for rows.Next() {
		var ident Identity
		if err := rows.Scan(&ident.UserID, &ident.ChatID, &ident.Username, &ident.AccountID,
			&ident.VerificationCode, &ident.Created, &ident.Updated); err != nil {
			return nil, fmt.Errorf("failed to scan identity: %w", err)
		}
		identities = append(identities, ident)
	}
	return identities, rows.Err()
}
