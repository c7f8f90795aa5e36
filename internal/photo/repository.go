package photo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const photoColumns = `id, owner_id, title, description, location, taken_on, is_public,
	original_key, thumbnail_key, byte_size, file_name, mime_type, created_at, updated_at`

// PostgresRepository implements Repository on a pgx connection pool.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgresRepository.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func scanPhoto(row pgx.Row) (*Photo, error) {
	p := &Photo{}
	err := row.Scan(
		&p.ID, &p.OwnerID, &p.Title, &p.Description, &p.Location, &p.TakenOn, &p.IsPublic,
		&p.OriginalKey, &p.ThumbnailKey, &p.ByteSize, &p.FileName, &p.MimeType,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	p.Size = SizeString(p.ByteSize)
	return p, nil
}

// Create inserts a new photo record and returns it with generated fields.
func (r *PostgresRepository) Create(ctx context.Context, p *Photo) (*Photo, error) {
	row := r.db.QueryRow(ctx,
		`INSERT INTO photos (owner_id, title, description, location, taken_on, is_public,
		                     original_key, thumbnail_key, byte_size, file_name, mime_type)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		 RETURNING `+photoColumns,
		p.OwnerID, p.Title, p.Description, p.Location, p.TakenOn, p.IsPublic,
		p.OriginalKey, p.ThumbnailKey, p.ByteSize, p.FileName, p.MimeType,
	)
	created, err := scanPhoto(row)
	if err != nil {
		return nil, fmt.Errorf("create photo: %w", err)
	}
	return created, nil
}

// GetByID fetches a photo record by its UUID.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*Photo, error) {
	row := r.db.QueryRow(ctx, `SELECT `+photoColumns+` FROM photos WHERE id = $1`, id)
	p, err := scanPhoto(row)
	if errors.Is(err, ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get photo by id: %w", err)
	}
	return p, nil
}

// orderClause maps validated ListParams onto a SQL ORDER BY expression.
// Params must already be normalized; the default is newest first.
func orderClause(params ListParams) string {
	column := map[string]string{
		"date":  "taken_on",
		"title": "title",
		"size":  "byte_size",
	}[params.Sort]
	if column == "" {
		column = "created_at"
	}
	dir := "DESC"
	if params.Order == "asc" {
		dir = "ASC"
	}
	return fmt.Sprintf("ORDER BY %s %s, created_at DESC", column, dir)
}

func (r *PostgresRepository) list(ctx context.Context, where string, params ListParams, args ...any) (*Page, error) {
	params = params.Normalize()

	var total int
	countArgs := args
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM photos `+where, countArgs...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count photos: %w", err)
	}

	offset := (params.Page - 1) * params.Size
	query := fmt.Sprintf(`SELECT %s FROM photos %s %s LIMIT %d OFFSET %d`,
		photoColumns, where, orderClause(params), params.Size, offset)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list photos: %w", err)
	}
	defer rows.Close()

	photos := make([]*Photo, 0, params.Size)
	for rows.Next() {
		p, err := scanPhoto(rows)
		if err != nil {
			return nil, fmt.Errorf("scan photo: %w", err)
		}
		photos = append(photos, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate photos: %w", err)
	}

	pages := (total + params.Size - 1) / params.Size
	return &Page{Photos: photos, Page: params.Page, Size: params.Size, Total: total, Pages: pages}, nil
}

// ListByOwner returns one page of the owner's photos.
func (r *PostgresRepository) ListByOwner(ctx context.Context, ownerID string, params ListParams) (*Page, error) {
	return r.list(ctx, `WHERE owner_id = $1`, params, ownerID)
}

// ListPublic returns one page of all public photos, newest first.
func (r *PostgresRepository) ListPublic(ctx context.Context, params ListParams) (*Page, error) {
	return r.list(ctx, `WHERE is_public`, params)
}

// Update persists the mutable metadata fields of p.
func (r *PostgresRepository) Update(ctx context.Context, p *Photo) (*Photo, error) {
	row := r.db.QueryRow(ctx,
		`UPDATE photos
		 SET title = $2, description = $3, location = $4, taken_on = $5, is_public = $6,
		     updated_at = NOW()
		 WHERE id = $1
		 RETURNING `+photoColumns,
		p.ID, p.Title, p.Description, p.Location, p.TakenOn, p.IsPublic,
	)
	updated, err := scanPhoto(row)
	if errors.Is(err, ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update photo: %w", err)
	}
	return updated, nil
}

// Delete removes the photo record.
func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM photos WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete photo: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Stats aggregates the owner's library for the dashboard.
func (r *PostgresRepository) Stats(ctx context.Context, ownerID string) (*OwnerStats, error) {
	monthStart := time.Now().UTC().Truncate(24 * time.Hour)
	monthStart = time.Date(monthStart.Year(), monthStart.Month(), 1, 0, 0, 0, 0, time.UTC)

	stats := &OwnerStats{}
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*),
		        COUNT(*) FILTER (WHERE is_public),
		        COUNT(*) FILTER (WHERE created_at >= $2),
		        COALESCE(SUM(byte_size), 0)
		 FROM photos WHERE owner_id = $1`,
		ownerID, monthStart,
	).Scan(&stats.TotalPhotos, &stats.PublicPhotos, &stats.ThisMonth, &stats.TotalBytes)
	if err != nil {
		return nil, fmt.Errorf("aggregate photo stats: %w", err)
	}

	stats.PrivatePhotos = stats.TotalPhotos - stats.PublicPhotos
	stats.TotalSize = SizeString(stats.TotalBytes)
	stats.StorageUsed = stats.TotalSize
	stats.StorageLimit = "1 GB"
	return stats, nil
}
