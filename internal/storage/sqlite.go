package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/pixil98/go-antixray/internal/ledger"
)

// SQLiteStore keeps ledgers in a SQLite database.
type SQLiteStore struct {
	conn *sqlx.DB
}

// OpenSQLite opens or creates a SQLite database at the given path.
func OpenSQLite(path string) (*SQLiteStore, error) {
	conn, err := sqlx.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	// SQLite has a single writer; one connection also keeps :memory: databases shared.
	conn.SetMaxOpenConns(1)

	s := &SQLiteStore{conn: conn}
	if err := s.migrate(); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.conn.Close()
}

func (s *SQLiteStore) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS ledgers (
		player_id TEXT PRIMARY KEY,
		points INTEGER NOT NULL,
		limit_reached_count INTEGER NOT NULL,
		updated_at TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS legacy_ledgers (
		name TEXT PRIMARY KEY,
		points INTEGER NOT NULL,
		limit_reached_count INTEGER NOT NULL,
		archived_at TEXT
	);
	`
	_, err := s.conn.Exec(schema)
	return err
}

func (s *SQLiteStore) Load(ctx context.Context, id uuid.UUID) (*ledger.Record, error) {
	var rec ledger.Record
	err := s.conn.GetContext(ctx, &rec,
		`SELECT points, limit_reached_count FROM ledgers WHERE player_id = ?`, id.String())
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading ledger %s: %w", id, err)
	}
	return &rec, nil
}

func (s *SQLiteStore) Save(ctx context.Context, id uuid.UUID, r ledger.Record) error {
	_, err := s.conn.ExecContext(ctx, `INSERT INTO ledgers (player_id, points, limit_reached_count)
		VALUES (?, ?, ?)
		ON CONFLICT(player_id) DO UPDATE SET
			points = excluded.points,
			limit_reached_count = excluded.limit_reached_count,
			updated_at = CURRENT_TIMESTAMP`,
		id.String(), r.Points, r.LimitReachedCount)
	if err != nil {
		return fmt.Errorf("saving ledger %s: %w", id, err)
	}
	return nil
}

func (s *SQLiteStore) LoadLegacy(ctx context.Context, name string) (*ledger.Record, error) {
	var rec ledger.Record
	err := s.conn.GetContext(ctx, &rec,
		`SELECT points, limit_reached_count FROM legacy_ledgers WHERE name = ? AND archived_at IS NULL`, name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading legacy ledger %q: %w", name, err)
	}
	return &rec, nil
}

func (s *SQLiteStore) SaveLegacy(ctx context.Context, name string, r ledger.Record) error {
	_, err := s.conn.ExecContext(ctx, `INSERT INTO legacy_ledgers (name, points, limit_reached_count)
		VALUES (?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			points = excluded.points,
			limit_reached_count = excluded.limit_reached_count`,
		name, r.Points, r.LimitReachedCount)
	if err != nil {
		return fmt.Errorf("saving legacy ledger %q: %w", name, err)
	}
	return nil
}

// ArchiveLegacy stamps the legacy row as imported. Archived rows are kept but never loaded again.
func (s *SQLiteStore) ArchiveLegacy(ctx context.Context, name string) error {
	res, err := s.conn.ExecContext(ctx,
		`UPDATE legacy_ledgers SET archived_at = CURRENT_TIMESTAMP WHERE name = ? AND archived_at IS NULL`, name)
	if err != nil {
		return fmt.Errorf("archiving legacy ledger %q: %w", name, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("archiving legacy ledger %q: %w", name, err)
	}
	if n == 0 {
		return fmt.Errorf("archiving legacy ledger %q: %w", name, ledger.ErrNoData)
	}
	return nil
}
