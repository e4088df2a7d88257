// Package postgres provides a Remote implementation backed by PostgreSQL.
// Field lists and item data are stored as JSONB and decoded on read.
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/emdneves/admin-panel/pkg/dynamiccontent"
)

// DBTX is satisfied by both a pgx pool and a pgx transaction.
type DBTX interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

// Remote implements dynamiccontent.Remote using PostgreSQL.
type Remote struct {
	db DBTX
}

// New creates a PostgreSQL remote.
func New(db DBTX) *Remote {
	return &Remote{db: db}
}

// NewWithPool creates a PostgreSQL remote from a connection pool.
func NewWithPool(pool *pgxpool.Pool) *Remote {
	return &Remote{db: pool}
}

func (r *Remote) handlePostgresError(operation string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505": // unique_violation
			return fmt.Errorf("duplicate entry")
		case "23503": // foreign_key_violation
			return dynamiccontent.ErrTypeNotFound
		case "42P01": // undefined_table
			return fmt.Errorf("table does not exist - database migration required")
		default:
			return fmt.Errorf("database error in %s: %s (code: %s)", operation, pgErr.Message, pgErr.Code)
		}
	}
	return fmt.Errorf("database error in %s: %w", operation, err)
}

// Content type operations

func (r *Remote) ListContentTypes(ctx context.Context) ([]dynamiccontent.ContentType, error) {
	query := `
        SELECT id, name, fields, created_at, updated_at, created_by, updated_by
        FROM content_type ORDER BY created_at`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, r.handlePostgresError("list content types", err)
	}
	defer rows.Close()

	var out []dynamiccontent.ContentType
	for rows.Next() {
		t, err := scanContentType(rows)
		if err != nil {
			return nil, r.handlePostgresError("list content types", err)
		}
		out = append(out, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, r.handlePostgresError("list content types", err)
	}
	return out, nil
}

func (r *Remote) GetContentType(ctx context.Context, id uuid.UUID) (*dynamiccontent.ContentType, error) {
	query := `
        SELECT id, name, fields, created_at, updated_at, created_by, updated_by
        FROM content_type WHERE id = $1`

	t, err := scanContentType(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, dynamiccontent.ErrTypeNotFound
		}
		return nil, r.handlePostgresError("get content type", err)
	}
	return t, nil
}

func (r *Remote) CreateContentType(ctx context.Context, req dynamiccontent.CreateContentTypeRequest) (*dynamiccontent.ContentType, error) {
	t := dynamiccontent.ContentType{
		ID:        uuid.New(),
		Name:      req.Name,
		Fields:    req.Fields,
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
		CreatedBy: req.CreatedBy,
		UpdatedBy: req.CreatedBy,
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}

	fields, err := json.Marshal(t.Fields)
	if err != nil {
		return nil, err
	}

	query := `
        INSERT INTO content_type (id, name, fields, created_at, updated_at, created_by, updated_by)
        VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err = r.db.Exec(ctx, query,
		t.ID, t.Name, fields, t.CreatedAt, t.UpdatedAt, t.CreatedBy, t.UpdatedBy)
	if err != nil {
		return nil, r.handlePostgresError("create content type", err)
	}
	return &t, nil
}

func (r *Remote) UpdateContentType(ctx context.Context, req dynamiccontent.UpdateContentTypeRequest) (*dynamiccontent.ContentType, error) {
	existing, err := r.GetContentType(ctx, req.ID)
	if err != nil {
		return nil, err
	}

	if req.Name != "" {
		existing.Name = req.Name
	}
	if req.Fields != nil {
		existing.Fields = req.Fields
	}
	if err := existing.Validate(); err != nil {
		return nil, err
	}
	existing.UpdatedAt = time.Now().UTC()
	existing.UpdatedBy = req.UpdatedBy

	fields, err := json.Marshal(existing.Fields)
	if err != nil {
		return nil, err
	}

	query := `
        UPDATE content_type
        SET name = $2, fields = $3, updated_at = $4, updated_by = $5
        WHERE id = $1`

	tag, err := r.db.Exec(ctx, query,
		existing.ID, existing.Name, fields, existing.UpdatedAt, existing.UpdatedBy)
	if err != nil {
		return nil, r.handlePostgresError("update content type", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, dynamiccontent.ErrTypeNotFound
	}
	return existing, nil
}

func (r *Remote) DeleteContentType(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM content_type WHERE id = $1`, id)
	if err != nil {
		return r.handlePostgresError("delete content type", err)
	}
	if tag.RowsAffected() == 0 {
		return dynamiccontent.ErrTypeNotFound
	}
	return nil
}

// Content operations

func (r *Remote) ListContent(ctx context.Context, contentTypeID uuid.UUID) ([]dynamiccontent.ContentItem, error) {
	query := `
        SELECT id, content_type_id, data, created_at, updated_at, created_by, updated_by
        FROM content_item
        WHERE deleted_at IS NULL AND ($1::uuid IS NULL OR content_type_id = $1)
        ORDER BY created_at DESC`

	var filter any
	if contentTypeID != uuid.Nil {
		filter = contentTypeID
	}

	rows, err := r.db.Query(ctx, query, filter)
	if err != nil {
		return nil, r.handlePostgresError("list content", err)
	}
	defer rows.Close()

	var out []dynamiccontent.ContentItem
	for rows.Next() {
		item, err := scanContentItem(rows)
		if err != nil {
			return nil, r.handlePostgresError("list content", err)
		}
		out = append(out, *item)
	}
	if err := rows.Err(); err != nil {
		return nil, r.handlePostgresError("list content", err)
	}
	return out, nil
}

func (r *Remote) CreateContent(ctx context.Context, req dynamiccontent.CreateContentRequest) (*dynamiccontent.ContentItem, error) {
	now := time.Now().UTC()
	item := dynamiccontent.ContentItem{
		ID:            uuid.New(),
		ContentTypeID: req.ContentTypeID,
		Data:          req.Data,
		CreatedAt:     now,
		UpdatedAt:     now,
		CreatedBy:     req.CreatedBy,
		UpdatedBy:     req.CreatedBy,
	}
	if item.Data == nil {
		item.Data = make(map[string]any)
	}

	data, err := json.Marshal(item.Data)
	if err != nil {
		return nil, err
	}

	query := `
        INSERT INTO content_item (id, content_type_id, data, created_at, updated_at, created_by, updated_by)
        VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err = r.db.Exec(ctx, query,
		item.ID, item.ContentTypeID, data, item.CreatedAt, item.UpdatedAt, item.CreatedBy, item.UpdatedBy)
	if err != nil {
		return nil, r.handlePostgresError("create content", err)
	}
	return &item, nil
}

func (r *Remote) ReadContent(ctx context.Context, id uuid.UUID) (*dynamiccontent.ContentItem, error) {
	query := `
        SELECT id, content_type_id, data, created_at, updated_at, created_by, updated_by
        FROM content_item WHERE id = $1 AND deleted_at IS NULL`

	item, err := scanContentItem(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, dynamiccontent.ErrItemNotFound
		}
		return nil, r.handlePostgresError("read content", err)
	}
	return item, nil
}

// UpdateContent merge-replaces at the key level: submitted keys overwrite,
// absent keys keep their stored values. The merge runs in SQL so concurrent
// updates to disjoint keys do not clobber each other.
func (r *Remote) UpdateContent(ctx context.Context, req dynamiccontent.UpdateContentRequest) (*dynamiccontent.ContentItem, error) {
	patch, err := json.Marshal(req.Data)
	if err != nil {
		return nil, err
	}

	query := `
        UPDATE content_item
        SET data = data || $2::jsonb, updated_at = $3, updated_by = $4
        WHERE id = $1 AND deleted_at IS NULL
        RETURNING id, content_type_id, data, created_at, updated_at, created_by, updated_by`

	item, err := scanContentItem(r.db.QueryRow(ctx, query,
		req.ID, patch, time.Now().UTC(), req.UpdatedBy))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, dynamiccontent.ErrItemNotFound
		}
		return nil, r.handlePostgresError("update content", err)
	}
	return item, nil
}

func (r *Remote) DeleteContent(ctx context.Context, id uuid.UUID) error {
	query := `
        UPDATE content_item SET deleted_at = $2
        WHERE id = $1 AND deleted_at IS NULL`

	tag, err := r.db.Exec(ctx, query, id, time.Now().UTC())
	if err != nil {
		return r.handlePostgresError("delete content", err)
	}
	if tag.RowsAffected() == 0 {
		return dynamiccontent.ErrItemNotFound
	}
	return nil
}

func (r *Remote) Health(ctx context.Context) error {
	var one int
	if err := r.db.QueryRow(ctx, `SELECT 1`).Scan(&one); err != nil {
		return r.handlePostgresError("health", err)
	}
	return nil
}

func scanContentType(row pgx.Row) (*dynamiccontent.ContentType, error) {
	var (
		t      dynamiccontent.ContentType
		fields []byte
	)
	if err := row.Scan(&t.ID, &t.Name, &fields, &t.CreatedAt, &t.UpdatedAt, &t.CreatedBy, &t.UpdatedBy); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(fields, &t.Fields); err != nil {
		return nil, fmt.Errorf("decode fields: %w", err)
	}
	return &t, nil
}

func scanContentItem(row pgx.Row) (*dynamiccontent.ContentItem, error) {
	var (
		item dynamiccontent.ContentItem
		data []byte
	)
	if err := row.Scan(&item.ID, &item.ContentTypeID, &data, &item.CreatedAt, &item.UpdatedAt, &item.CreatedBy, &item.UpdatedBy); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(data, &item.Data); err != nil {
		return nil, fmt.Errorf("decode data: %w", err)
	}
	return &item, nil
}
