package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/shortlyhq/shortly/pkg/core/domain"
	"github.com/shortlyhq/shortly/pkg/ports"
	_ "github.com/tursodatabase/libsql-client-go/libsql" // Turso driver
	_ "modernc.org/sqlite"                               // Local SQLite driver
)

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbURL string) (*SQLiteRepository, error) {
	driverName := "sqlite"
	if strings.Contains(dbURL, "libsql://") || strings.Contains(dbURL, "wss://") {
		driverName = "libsql"
	}

	db, err := sql.Open(driverName, dbURL)
	if err != nil {
		return nil, err
	}

	if err := db.Ping(); err != nil {
		return nil, err
	}

	if err := migrate(db); err != nil {
		return nil, err
	}

	return &SQLiteRepository{db: db}, nil
}

// DB exposes the underlying handle. Tests use it to tune the connection pool.
func (r *SQLiteRepository) DB() *sql.DB {
	return r.db
}

func migrate(db *sql.DB) error {
	// The unique index on short_code deliberately has no deleted_at filter:
	// a code stays taken after soft deletion so a stale link can never be
	// resurrected under an old code.
	query := `
	CREATE TABLE IF NOT EXISTS links (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		original_url TEXT NOT NULL,
		short_code TEXT NOT NULL UNIQUE,
		owner_id TEXT,
		click_count INTEGER NOT NULL DEFAULT 0,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		deleted_at DATETIME
	);
	CREATE INDEX IF NOT EXISTS idx_links_short_code ON links(short_code);
	CREATE INDEX IF NOT EXISTS idx_links_owner_id ON links(owner_id);
	`
	_, err := db.Exec(query)
	return err
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func (r *SQLiteRepository) Insert(ctx context.Context, link *domain.Link) error {
	query := `INSERT INTO links (original_url, short_code, owner_id, created_at, updated_at)
			  VALUES (?, ?, ?, ?, ?)`

	res, err := r.db.ExecContext(ctx, query,
		link.OriginalURL, link.ShortCode, link.OwnerID, link.CreatedAt, link.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicateCode
		}
		return err
	}

	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	link.ID = id
	return nil
}

func (r *SQLiteRepository) GetByShortCode(ctx context.Context, code string) (*domain.Link, error) {
	query := `SELECT id, original_url, short_code, owner_id, click_count, created_at, updated_at
			  FROM links WHERE short_code = ? AND deleted_at IS NULL`

	return r.scanLink(r.db.QueryRowContext(ctx, query, code))
}

func (r *SQLiteRepository) ListByOwner(ctx context.Context, ownerID string) ([]domain.Link, error) {
	query := `SELECT id, original_url, short_code, owner_id, click_count, created_at, updated_at
			  FROM links WHERE owner_id = ? AND deleted_at IS NULL
			  ORDER BY updated_at DESC`

	rows, err := r.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var links []domain.Link
	for rows.Next() {
		var l domain.Link
		var owner sql.NullString
		if err := rows.Scan(&l.ID, &l.OriginalURL, &l.ShortCode, &owner, &l.ClickCount, &l.CreatedAt, &l.UpdatedAt); err != nil {
			return nil, err
		}
		if owner.Valid {
			l.OwnerID = &owner.String
		}
		links = append(links, l)
	}
	return links, rows.Err()
}

func (r *SQLiteRepository) IncrementClicks(ctx context.Context, code string) error {
	query := `UPDATE links SET click_count = click_count + 1
			  WHERE short_code = ? AND deleted_at IS NULL`

	res, err := r.db.ExecContext(ctx, query, code)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *SQLiteRepository) UpdateOriginalURL(ctx context.Context, code, originalURL string) (*domain.Link, error) {
	query := `UPDATE links SET original_url = ?, updated_at = ?
			  WHERE short_code = ? AND deleted_at IS NULL`

	res, err := r.db.ExecContext(ctx, query, originalURL, time.Now(), code)
	if err != nil {
		return nil, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, domain.ErrNotFound
	}

	return r.GetByShortCode(ctx, code)
}

func (r *SQLiteRepository) SoftDelete(ctx context.Context, code string) error {
	query := `UPDATE links SET deleted_at = ? WHERE short_code = ? AND deleted_at IS NULL`

	res, err := r.db.ExecContext(ctx, query, time.Now(), code)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *SQLiteRepository) Dump(ctx context.Context) ([]domain.Link, error) {
	query := `SELECT id, original_url, short_code, owner_id, click_count, created_at, updated_at, deleted_at
			  FROM links`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var links []domain.Link
	for rows.Next() {
		var l domain.Link
		var owner sql.NullString
		var deletedAt sql.NullTime
		if err := rows.Scan(&l.ID, &l.OriginalURL, &l.ShortCode, &owner, &l.ClickCount, &l.CreatedAt, &l.UpdatedAt, &deletedAt); err != nil {
			return nil, err
		}
		if owner.Valid {
			l.OwnerID = &owner.String
		}
		if deletedAt.Valid {
			l.DeletedAt = &deletedAt.Time
		}
		links = append(links, l)
	}
	return links, rows.Err()
}

func (r *SQLiteRepository) scanLink(row *sql.Row) (*domain.Link, error) {
	var l domain.Link
	var owner sql.NullString

	err := row.Scan(&l.ID, &l.OriginalURL, &l.ShortCode, &owner, &l.ClickCount, &l.CreatedAt, &l.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	if owner.Valid {
		l.OwnerID = &owner.String
	}
	return &l, nil
}

// Ensure interface compliance
var _ ports.LinkRepository = (*SQLiteRepository)(nil)
