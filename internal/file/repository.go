package file

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dropshare/service/internal/db"
)

const recordColumns = `id, owner_id, public_id, display_name, size_bytes, content_type, storage_path, created_at, download_count`

// Repository is the PostgreSQL MetadataStore.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new Repository with the given connection pool.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// Insert stores rec and returns the row as written, with id and created_at assigned.
func (r *Repository) Insert(ctx context.Context, rec *Record) (*Record, error) {
	out := &Record{}
	err := scanRecord(r.db.QueryRow(ctx,
		`INSERT INTO files (owner_id, public_id, display_name, size_bytes, content_type, storage_path)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING `+recordColumns,
		rec.OwnerID, rec.PublicID, rec.DisplayName, rec.SizeBytes, rec.ContentType, rec.StoragePath,
	), out)
	if err != nil {
		return nil, fmt.Errorf("insert file: %w", err)
	}
	return out, nil
}

// GetByID fetches a record by its internal id.
func (r *Repository) GetByID(ctx context.Context, id int64) (*Record, error) {
	out := &Record{}
	err := scanRecord(r.db.QueryRow(ctx,
		`SELECT `+recordColumns+` FROM files WHERE id = $1`, id,
	), out)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get file by id: %w", err)
	}
	return out, nil
}

// GetByPublicID fetches a record by its public id.
func (r *Repository) GetByPublicID(ctx context.Context, publicID string) (*Record, error) {
	out := &Record{}
	err := scanRecord(r.db.QueryRow(ctx,
		`SELECT `+recordColumns+` FROM files WHERE public_id = $1`, publicID,
	), out)
	if errors.Is(err, pgx.ErrNoRows) || db.IsInvalidText(err) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get file by public id: %w", err)
	}
	return out, nil
}

// ListByOwner returns the owner's records, newest first.
func (r *Repository) ListByOwner(ctx context.Context, ownerID string) ([]Record, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+recordColumns+` FROM files
		 WHERE owner_id = $1
		 ORDER BY created_at DESC, id DESC`,
		ownerID,
	)
	if err != nil {
		return nil, fmt.Errorf("list files: %w", err)
	}
	defer rows.Close()

	records := make([]Record, 0)
	for rows.Next() {
		var rec Record
		if err := scanRecord(rows, &rec); err != nil {
			return nil, fmt.Errorf("scan file: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list files: %w", err)
	}
	return records, nil
}

// IncrementDownloadCount bumps the counter in place; concurrent calls never lose updates.
func (r *Repository) IncrementDownloadCount(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE files SET download_count = download_count + 1 WHERE id = $1`, id,
	)
	if err != nil {
		return fmt.Errorf("increment download count: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteByID removes the row with the given id.
func (r *Repository) DeleteByID(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM files WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete file: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanRecord(row pgx.Row, rec *Record) error {
	return row.Scan(
		&rec.ID, &rec.OwnerID, &rec.PublicID, &rec.DisplayName, &rec.SizeBytes,
		&rec.ContentType, &rec.StoragePath, &rec.CreatedAt, &rec.DownloadCount,
	)
}
