package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	_ "modernc.org/sqlite"

	"github.com/hetulpatel/userseed/internal/models"
)

// ErrDuplicateLogin marks an insert rejected by the unique index on login.
var ErrDuplicateLogin = errors.New("duplicate login")

const mysqlDuplicateEntry = 1062

// Store wraps the users table connection.
type Store struct {
	target Target
	db     *sql.DB
}

// Open connects to the target and verifies the connection.
func Open(ctx context.Context, target Target) (*Store, error) {
	target.Driver = strings.ToLower(target.Driver)
	dsn, err := target.DSN()
	if err != nil {
		return nil, err
	}
	if target.Driver == DriverSQLite {
		if err := os.MkdirAll(filepath.Dir(dsn), 0o755); err != nil {
			return nil, fmt.Errorf("ensure data dir: %w", err)
		}
	}
	db, err := sql.Open(target.Driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", target.Driver, err)
	}
	switch target.Driver {
	case DriverSQLite:
		db.SetMaxOpenConns(1)
		if err := ensureWAL(ctx, db); err != nil {
			db.Close()
			return nil, fmt.Errorf("set WAL mode: %w", err)
		}
	case DriverMySQL:
		db.SetMaxOpenConns(4)
		db.SetMaxIdleConns(4)
		db.SetConnMaxLifetime(5 * time.Minute)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping %s: %w", target, err)
	}
	return &Store{target: target, db: db}, nil
}

func ensureWAL(ctx context.Context, db *sql.DB) error {
	const (
		maxAttempts = 5
		delay       = 200 * time.Millisecond
	)
	for i := 0; i < maxAttempts; i++ {
		if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL;"); err != nil {
			if strings.Contains(err.Error(), "database is locked") {
				time.Sleep(delay)
				continue
			}
			return err
		}
		return nil
	}
	return fmt.Errorf("database is locked after retries")
}

// Target returns the target backing the store.
func (s *Store) Target() Target {
	return s.target
}

// Close closes the DB.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// CreateTables ensures the users table exists.
func (s *Store) CreateTables(ctx context.Context) error {
	schema := mysqlSchemaSQL
	if s.target.Driver == DriverSQLite {
		schema = sqliteSchemaSQL
	}
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("create users table: %w", err)
	}
	return nil
}

// DropTables removes the users table.
func (s *Store) DropTables(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `DROP TABLE IF EXISTS users;`)
	return err
}

// ClearTables deletes every users row.
func (s *Store) ClearTables(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM users;`)
	return err
}

const sqliteSchemaSQL = `
CREATE TABLE IF NOT EXISTS users (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	login TEXT NOT NULL UNIQUE,
	password TEXT NOT NULL,
	firstName TEXT NOT NULL,
	lastName TEXT NOT NULL,
	birthDay TEXT NOT NULL,
	gender TEXT,
	interests TEXT,
	city TEXT
);
`

const mysqlSchemaSQL = `
CREATE TABLE IF NOT EXISTS users (
	id INT NOT NULL AUTO_INCREMENT PRIMARY KEY,
	login VARCHAR(255) NOT NULL,
	password VARCHAR(255) NOT NULL,
	firstName VARCHAR(255) NOT NULL,
	lastName VARCHAR(255) NOT NULL,
	birthDay DATE NOT NULL,
	gender VARCHAR(16) NULL,
	interests TEXT NULL,
	city VARCHAR(255) NULL,
	UNIQUE KEY users_login_uq (login)
) DEFAULT CHARSET=utf8mb4;
`

const insertUserSQL = `INSERT INTO users (login, password, firstName, lastName, birthDay) VALUES (?, ?, ?, ?, ?)`

// CountUsers returns the number of rows in users.
func (s *Store) CountUsers(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return n, nil
}

// ListUsers returns up to limit rows ordered by id.
func (s *Store) ListUsers(ctx context.Context, limit int) ([]models.StoredUser, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, login, password, firstName, lastName, birthDay FROM users ORDER BY id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("select users: %w", err)
	}
	defer rows.Close()

	var users []models.StoredUser
	for rows.Next() {
		var u models.StoredUser
		if err := rows.Scan(&u.ID, &u.Login, &u.Password, &u.FirstName, &u.LastName, &u.BirthDay); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return users, nil
}

// UserExists reports whether a row with the login is present.
func (s *Store) UserExists(ctx context.Context, login string) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM users WHERE login = ? LIMIT 1`, login).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("lookup login %s: %w", login, err)
	}
	return true, nil
}

// IsDuplicate reports whether err is a unique-index violation from either driver.
func IsDuplicate(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrDuplicateLogin) {
		return true
	}
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		return myErr.Number == mysqlDuplicateEntry
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
