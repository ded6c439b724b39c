// Package storage provides the SQLite-backed goal-domain store: boards,
// board participants, categories, and goals. The bot engine consumes it
// through a narrow read/create interface and never touches the schema.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
)

// ErrNotFound is returned when a requested record does not exist or is not
// visible to the requesting account.
var ErrNotFound = errors.New("storage: not found")

// Store provides persistent storage for the goal domain using SQLite.
// Store handles database migrations automatically on initialization.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore creates a Store with a SQLite database at the given directory.
// It creates the directory if needed and runs migrations.
func NewStore(dataPath string) (*Store, error) {
	if err := os.MkdirAll(dataPath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	dbPath := filepath.Join(dataPath, "goaltrack.db")
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{
		db:   db,
		path: dataPath,
	}

	if err := store.migrate(); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// migrate creates necessary tables
func (s *Store) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS boards (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			title TEXT NOT NULL,
			is_deleted BOOLEAN DEFAULT FALSE,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS board_participants (
			board_id INTEGER NOT NULL,
			account_id INTEGER NOT NULL,
			role INTEGER NOT NULL DEFAULT 1,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (board_id, account_id),
			FOREIGN KEY (board_id) REFERENCES boards(id) ON DELETE CASCADE
		)`,
		`CREATE TABLE IF NOT EXISTS categories (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			board_id INTEGER NOT NULL,
			title TEXT NOT NULL,
			is_deleted BOOLEAN DEFAULT FALSE,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (board_id) REFERENCES boards(id) ON DELETE CASCADE
		)`,
		`CREATE TABLE IF NOT EXISTS goals (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			account_id INTEGER NOT NULL,
			category_id INTEGER NOT NULL,
			title TEXT NOT NULL,
			description TEXT DEFAULT '',
			due_date TEXT DEFAULT '',
			status INTEGER NOT NULL DEFAULT 1,
			priority INTEGER NOT NULL DEFAULT 2,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (category_id) REFERENCES categories(id) ON DELETE RESTRICT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_participants_account ON board_participants(account_id)`,
		`CREATE INDEX IF NOT EXISTS idx_categories_board ON categories(board_id)`,
		`CREATE INDEX IF NOT EXISTS idx_goals_account ON goals(account_id)`,
		`CREATE INDEX IF NOT EXISTS idx_goals_category ON goals(category_id)`,
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

// ListBoards returns non-deleted boards where the account is a participant.
func (s *Store) ListBoards(ctx context.Context, accountID int64) ([]Board, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT b.id, b.title, b.is_deleted, b.created_at, b.updated_at
		FROM boards b
		JOIN board_participants p ON p.board_id = b.id
		WHERE p.account_id = ? AND b.is_deleted = FALSE
		ORDER BY b.id`, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to list boards: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var boards []Board
	for rows.Next() {
		var b Board
		if err := rows.Scan(&b.ID, &b.Title, &b.IsDeleted, &b.Created, &b.Updated); err != nil {
			return nil, fmt.Errorf("failed to scan board: %w", err)
		}
		boards = append(boards, b)
	}
	return boards, rows.Err()
}

// ListCategories returns non-deleted categories on boards the account
// participates in.
func (s *Store) ListCategories(ctx context.Context, accountID int64) ([]Category, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT c.id, c.board_id, c.title, c.is_deleted, c.created_at, c.updated_at
		FROM categories c
		JOIN board_participants p ON p.board_id = c.board_id
		WHERE p.account_id = ? AND c.is_deleted = FALSE
		ORDER BY c.id`, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var categories []Category
	for rows.Next() {
		var c Category
		if err := rows.Scan(&c.ID, &c.BoardID, &c.Title, &c.IsDeleted, &c.Created, &c.Updated); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

// GetOwnedCategory returns the category only if it is reachable through the
// account's boards and not soft-deleted; ErrNotFound otherwise.
func (s *Store) GetOwnedCategory(ctx context.Context, accountID, categoryID int64) (*Category, error) {
	var c Category
	err := s.db.QueryRowContext(ctx, `
		SELECT c.id, c.board_id, c.title, c.is_deleted, c.created_at, c.updated_at
		FROM categories c
		JOIN board_participants p ON p.board_id = c.board_id
		WHERE c.id = ? AND p.account_id = ? AND c.is_deleted = FALSE`,
		categoryID, accountID).
		Scan(&c.ID, &c.BoardID, &c.Title, &c.IsDeleted, &c.Created, &c.Updated)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get category: %w", err)
	}
	return &c, nil
}

// ListGoals returns goals owned by the account, with category titles joined.
func (s *Store) ListGoals(ctx context.Context, accountID int64) ([]Goal, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT g.id, g.account_id, g.category_id, c.title, g.title, g.description,
		       g.due_date, g.status, g.priority, g.created_at, g.updated_at
		FROM goals g
		JOIN categories c ON c.id = g.category_id
		WHERE g.account_id = ?
		ORDER BY g.id`, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to list goals: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var goals []Goal
	for rows.Next() {
		var g Goal
		if err := rows.Scan(&g.ID, &g.AccountID, &g.CategoryID, &g.CategoryTitle, &g.Title,
			&g.Description, &g.DueDate, &g.Status, &g.Priority, &g.Created, &g.Updated); err != nil {
			return nil, fmt.Errorf("failed to scan goal: %w", err)
		}
		goals = append(goals, g)
	}
	return goals, rows.Err()
}

// CreateGoal persists a new goal collected by the creation workflow.
// The category must be visible to the account; the workflow enforces this
// at selection time, and the store re-checks to keep the invariant.
func (s *Store) CreateGoal(ctx context.Context, g NewGoal) (*Goal, error) {
	if _, err := s.GetOwnedCategory(ctx, g.AccountID, g.CategoryID); err != nil {
		return nil, err
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO goals (account_id, category_id, title, description, due_date, status, priority)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		g.AccountID, g.CategoryID, g.Title, g.Description, g.DueDate, StatusToDo, PriorityMedium)
	if err != nil {
		return nil, fmt.Errorf("failed to create goal: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to read goal id: %w", err)
	}

	return s.getGoal(ctx, id)
}

// getGoal fetches a single goal by id.
func (s *Store) getGoal(ctx context.Context, id int64) (*Goal, error) {
	var g Goal
	err := s.db.QueryRowContext(ctx, `
		SELECT g.id, g.account_id, g.category_id, c.title, g.title, g.description,
		       g.due_date, g.status, g.priority, g.created_at, g.updated_at
		FROM goals g
		JOIN categories c ON c.id = g.category_id
		WHERE g.id = ?`, id).
		Scan(&g.ID, &g.AccountID, &g.CategoryID, &g.CategoryTitle, &g.Title,
			&g.Description, &g.DueDate, &g.Status, &g.Priority, &g.Created, &g.Updated)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get goal: %w", err)
	}
	return &g, nil
}

// CreateBoard creates a board and enrolls the account as its owner.
// Used by operator tooling and tests; the bot engine never creates boards.
func (s *Store) CreateBoard(ctx context.Context, accountID int64, title string) (*Board, error) {
	res, err := s.db.ExecContext(ctx, `INSERT INTO boards (title) VALUES (?)`, title)
	if err != nil {
		return nil, fmt.Errorf("failed to create board: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to read board id: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, `
		INSERT INTO board_participants (board_id, account_id, role) VALUES (?, ?, ?)`,
		id, accountID, RoleOwner); err != nil {
		return nil, fmt.Errorf("failed to add board owner: %w", err)
	}

	return &Board{ID: id, Title: title}, nil
}

// AddParticipant enrolls an account on an existing board.
func (s *Store) AddParticipant(ctx context.Context, boardID, accountID int64, role ParticipantRole) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO board_participants (board_id, account_id, role) VALUES (?, ?, ?)`,
		boardID, accountID, role)
	if err != nil {
		return fmt.Errorf("failed to add participant: %w", err)
	}
	return nil
}

// CreateCategory creates a category on a board.
func (s *Store) CreateCategory(ctx context.Context, boardID int64, title string) (*Category, error) {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO categories (board_id, title) VALUES (?, ?)`, boardID, title)
	if err != nil {
		return nil, fmt.Errorf("failed to create category: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to read category id: %w", err)
	}
	return &Category{ID: id, BoardID: boardID, Title: title}, nil
}

// DeleteCategory soft-deletes a category, hiding it from listings and from
// goal creation.
func (s *Store) DeleteCategory(ctx context.Context, categoryID int64) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE categories SET is_deleted = TRUE, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		categoryID)
	if err != nil {
		return fmt.Errorf("failed to delete category: %w", err)
	}
	return nil
}
