package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
)

// Store persists the board collections in a SQLite database. Every Save call
// replaces the whole collection inside one transaction.
type Store struct {
	db     *sql.DB
	logger *slog.Logger
}

// Open initializes a new SQLite store and runs the required migrations.
func Open(dbPath string, logger *slog.Logger) (*Store, error) {
	if dbPath == "" {
		return nil, fmt.Errorf("empty database path")
	}

	if logger == nil {
		logger = slog.Default()
	}

	if err := ensureDir(dbPath); err != nil {
		return nil, err
	}

	conn, err := sql.Open("sqlite3", fmt.Sprintf("file:%s?_busy_timeout=5000&_foreign_keys=ON", dbPath))
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	conn.SetMaxOpenConns(1)
	conn.SetConnMaxLifetime(0)

	s := &Store{db: conn, logger: logger}
	if err := s.migrate(); err != nil {
		_ = conn.Close()
		return nil, err
	}

	logger.Debug("sqlite store ready", "path", dbPath)
	return s, nil
}

// Close releases the database resources.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

func ensureDir(dbPath string) error {
	dir := filepath.Dir(dbPath)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS employees (
            id TEXT PRIMARY KEY,
            name TEXT NOT NULL,
            email TEXT NOT NULL DEFAULT '',
            role TEXT NOT NULL,
            department_id TEXT NOT NULL DEFAULT '',
            kpi INTEGER NOT NULL DEFAULT 0,
            joined_date TEXT NOT NULL DEFAULT '',
            position INTEGER NOT NULL
        );`,
		`CREATE TABLE IF NOT EXISTS projects (
            id TEXT PRIMARY KEY,
            name TEXT NOT NULL,
            client TEXT NOT NULL DEFAULT '',
            budget REAL NOT NULL DEFAULT 0,
            status TEXT NOT NULL DEFAULT 'ACTIVE',
            deadline TEXT NOT NULL DEFAULT '',
            manager_id TEXT NOT NULL DEFAULT '',
            department_id TEXT NOT NULL DEFAULT '',
            progress INTEGER NOT NULL DEFAULT 0,
            position INTEGER NOT NULL
        );`,
		`CREATE TABLE IF NOT EXISTS milestones (
            project_id TEXT NOT NULL,
            id TEXT NOT NULL,
            label TEXT NOT NULL,
            date TEXT NOT NULL DEFAULT '',
            status TEXT NOT NULL DEFAULT 'PENDING',
            position INTEGER NOT NULL,
            PRIMARY KEY(project_id, id),
            FOREIGN KEY(project_id) REFERENCES projects(id) ON DELETE CASCADE
        );`,
		`CREATE TABLE IF NOT EXISTS tasks (
            id TEXT PRIMARY KEY,
            title TEXT NOT NULL,
            description TEXT NOT NULL DEFAULT '',
            status TEXT NOT NULL DEFAULT 'NEW',
            priority TEXT NOT NULL DEFAULT 'MEDIUM',
            assigned_to TEXT NOT NULL,
            department_id TEXT NOT NULL DEFAULT '',
            project_id TEXT NOT NULL DEFAULT '',
            due_date TEXT NOT NULL DEFAULT '',
            estimated_hours REAL NOT NULL DEFAULT 0,
            actual_hours REAL NOT NULL DEFAULT 0,
            kpi_points INTEGER NOT NULL DEFAULT 0,
            weight INTEGER NOT NULL DEFAULT 0 CHECK (weight >= 0),
            attachments TEXT NOT NULL DEFAULT '[]',
            comments TEXT NOT NULL DEFAULT '[]',
            position INTEGER NOT NULL
        );`,
		`CREATE TABLE IF NOT EXISTS sprints (
            id TEXT PRIMARY KEY,
            name TEXT NOT NULL,
            project_id TEXT NOT NULL,
            start_date TEXT NOT NULL,
            end_date TEXT NOT NULL,
            status TEXT NOT NULL DEFAULT 'PLANNED',
            position INTEGER NOT NULL
        );`,
		`CREATE TABLE IF NOT EXISTS sprint_extensions (
            sprint_id TEXT NOT NULL,
            id TEXT NOT NULL,
            old_end_date TEXT NOT NULL,
            new_end_date TEXT NOT NULL,
            reason TEXT NOT NULL CHECK (length(reason) > 0),
            extended_at DATETIME NOT NULL,
            extended_by TEXT NOT NULL,
            seq INTEGER NOT NULL,
            PRIMARY KEY(sprint_id, seq),
            FOREIGN KEY(sprint_id) REFERENCES sprints(id) ON DELETE CASCADE
        );`,
		`CREATE INDEX IF NOT EXISTS idx_tasks_department ON tasks(department_id);`,
		`CREATE INDEX IF NOT EXISTS idx_tasks_project ON tasks(project_id);`,
		`CREATE INDEX IF NOT EXISTS idx_sprints_project ON sprints(project_id);`,
	}

	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}
	return nil
}

// replace runs fn inside a transaction after clearing table.
func (s *Store) replace(ctx context.Context, table string, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin %s: %w", table, err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM `+table); err != nil {
		return fmt.Errorf("clear %s: %w", table, err)
	}
	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit %s: %w", table, err)
	}
	return nil
}
