package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	sqlite "modernc.org/sqlite"
)

const (
	sqliteConstraintCode = 19
	defaultBusyTimeout   = 5000
)

// Store wraps the SQLite handle and exposes helper methods used by the server.
type Store struct {
	db *sql.DB
}

// Ping is a persisted unit of ephemeral content. Exactly one of Content or
// the file fields is populated, decided by Kind.
type Ping struct {
	ID          string
	Room        string
	Sender      string
	Kind        string // "text" or "file"
	Content     string
	FileName    string
	FileSize    int64
	FileLocator string
	CreatedAt   time.Time
}

// File is the metadata row behind a file ping's locator.
type File struct {
	Locator     string
	Room        string
	Name        string
	SizeBytes   int64
	SHA256      string
	StoragePath string
	UploadedBy  string
	UploadedAt  time.Time
}

// ErrPingExists is returned when inserting a duplicate ping id.
var ErrPingExists = errors.New("ping already exists")

// NewStore initializes the SQLite database at the provided path. Call Close when done.
func NewStore(path string) (*Store, error) {
	if path == "" {
		path = "ping.db"
	}
	dsn := buildDSN(path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	if _, err := db.Exec(fmt.Sprintf("PRAGMA busy_timeout=%d;", defaultBusyTimeout)); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

// Close releases the underlying DB connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func buildDSN(path string) string {
	switch {
	case strings.HasPrefix(path, "sqlite://"):
		path = path[len("sqlite://"):]
	case strings.HasPrefix(path, "file:"), strings.HasPrefix(path, ":memory:"):
		// already in a form sqlite understands
	default:
		path = "file:" + path
	}
	separator := "?"
	if strings.Contains(path, "?") {
		separator = "&"
	}
	return fmt.Sprintf("%s%s_pragma=busy_timeout=%d&_pragma=foreign_keys=ON", path, separator, defaultBusyTimeout)
}

// Migrate runs the schema creation statements.
func (s *Store) Migrate(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS pings (
			id TEXT PRIMARY KEY,
			room TEXT NOT NULL,
			sender TEXT NOT NULL,
			kind TEXT NOT NULL CHECK (kind IN ('text', 'file')),
			content TEXT NOT NULL DEFAULT '',
			file_name TEXT NOT NULL DEFAULT '',
			file_size INTEGER NOT NULL DEFAULT 0,
			file_locator TEXT NOT NULL DEFAULT '',
			created_at INTEGER NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_pings_room_created ON pings(room, created_at);`,
		`CREATE TABLE IF NOT EXISTS files (
			locator TEXT PRIMARY KEY,
			room TEXT NOT NULL,
			name TEXT NOT NULL,
			size_bytes INTEGER NOT NULL,
			sha256 TEXT NOT NULL,
			storage_path TEXT NOT NULL,
			uploaded_by TEXT NOT NULL DEFAULT '',
			uploaded_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);`,
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()
	for _, stmt := range statements {
		if _, err = tx.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// CreatePing inserts a new ping record. ErrPingExists is returned on conflicts.
func (s *Store) CreatePing(ctx context.Context, p *Ping) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO pings(id, room, sender, kind, content, file_name, file_size, file_locator, created_at)
		VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.Room, p.Sender, p.Kind, p.Content, p.FileName, p.FileSize, p.FileLocator, p.CreatedAt.UnixMilli())
	if err != nil {
		if isConstraintError(err) {
			return ErrPingExists
		}
		return err
	}
	return nil
}

// GetPing fetches a ping by id. A nil result means the record is gone.
func (s *Store) GetPing(ctx context.Context, id string) (*Ping, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, room, sender, kind, content, file_name, file_size, file_locator, created_at
		FROM pings WHERE id = ?`, id)
	var p Ping
	var createdAt int64
	if err := row.Scan(&p.ID, &p.Room, &p.Sender, &p.Kind, &p.Content, &p.FileName, &p.FileSize, &p.FileLocator, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	p.CreatedAt = time.UnixMilli(createdAt)
	return &p, nil
}

// ListPings returns all live pings for a room ordered by creation time, the
// replay order a joining connection receives.
func (s *Store) ListPings(ctx context.Context, room string) ([]Ping, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, room, sender, kind, content, file_name, file_size, file_locator, created_at
		FROM pings WHERE room = ?
		ORDER BY created_at ASC, id ASC`, room)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var pings []Ping
	for rows.Next() {
		var p Ping
		var createdAt int64
		if err := rows.Scan(&p.ID, &p.Room, &p.Sender, &p.Kind, &p.Content, &p.FileName, &p.FileSize, &p.FileLocator, &createdAt); err != nil {
			return nil, err
		}
		p.CreatedAt = time.UnixMilli(createdAt)
		pings = append(pings, p)
	}
	return pings, rows.Err()
}

// DeletePing removes the authoritative record so the id can never be
// re-delivered. The room scopes the delete to the ping's own conversation.
// Deleting an absent or out-of-room id is a no-op; the bool reports whether a
// row was actually removed.
func (s *Store) DeletePing(ctx context.Context, room, id string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM pings WHERE id = ? AND room = ?`, id, room)
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

// CreateFile records upload metadata under its server-assigned locator.
func (s *Store) CreateFile(ctx context.Context, f *File) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO files(locator, room, name, size_bytes, sha256, storage_path, uploaded_by, uploaded_at)
		VALUES(?, ?, ?, ?, ?, ?, ?, ?)`,
		f.Locator, f.Room, f.Name, f.SizeBytes, f.SHA256, f.StoragePath, f.UploadedBy, f.UploadedAt.UTC())
	return err
}

// GetFile resolves a locator to its metadata. A nil result means not found.
func (s *Store) GetFile(ctx context.Context, locator string) (*File, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT locator, room, name, size_bytes, sha256, storage_path, uploaded_by, uploaded_at
		FROM files WHERE locator = ?`, locator)
	var f File
	if err := row.Scan(&f.Locator, &f.Room, &f.Name, &f.SizeBytes, &f.SHA256, &f.StoragePath, &f.UploadedBy, &f.UploadedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &f, nil
}

// DeleteFile drops the metadata row for a locator.
func (s *Store) DeleteFile(ctx context.Context, locator string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM files WHERE locator = ?`, locator)
	return err
}

func isConstraintError(err error) bool {
	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.Code() == sqliteConstraintCode
	}
	return false
}
