// Package sqlite provides a Remote implementation backed by an embedded
// SQLite database. It suits single-node deployments where running PostgreSQL
// is not worth the operational weight.
package sqlite

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/emdneves/admin-panel/pkg/dynamiccontent"
)

//go:embed schema.sql
var schemaSQL string

// Remote implements dynamiccontent.Remote using SQLite. Timestamps are stored
// as RFC 3339 text, field lists and item data as JSON text.
type Remote struct {
	db *sql.DB
}

// Open opens (creating if needed) the database at path and applies the
// schema. Use ":memory:" for an ephemeral database.
func Open(path string) (*Remote, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &Remote{db: db}, nil
}

// Close closes the underlying database.
func (r *Remote) Close() error {
	return r.db.Close()
}

// Content type operations

func (r *Remote) ListContentTypes(ctx context.Context) ([]dynamiccontent.ContentType, error) {
	rows, err := r.db.QueryContext(ctx, `
        SELECT id, name, fields, created_at, updated_at, created_by, updated_by
        FROM content_type ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("list content types: %w", err)
	}
	defer rows.Close()

	var out []dynamiccontent.ContentType
	for rows.Next() {
		t, err := scanContentType(rows)
		if err != nil {
			return nil, fmt.Errorf("list content types: %w", err)
		}
		out = append(out, *t)
	}
	return out, rows.Err()
}

func (r *Remote) GetContentType(ctx context.Context, id uuid.UUID) (*dynamiccontent.ContentType, error) {
	row := r.db.QueryRowContext(ctx, `
        SELECT id, name, fields, created_at, updated_at, created_by, updated_by
        FROM content_type WHERE id = ?`, id.String())

	t, err := scanContentType(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, dynamiccontent.ErrTypeNotFound
		}
		return nil, fmt.Errorf("get content type: %w", err)
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

	_, err = r.db.ExecContext(ctx, `
        INSERT INTO content_type (id, name, fields, created_at, updated_at, created_by, updated_by)
        VALUES (?, ?, ?, ?, ?, ?, ?)`,
		t.ID.String(), t.Name, string(fields),
		t.CreatedAt.Format(time.RFC3339Nano), t.UpdatedAt.Format(time.RFC3339Nano),
		t.CreatedBy, t.UpdatedBy)
	if err != nil {
		return nil, fmt.Errorf("create content type: %w", err)
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

	_, err = r.db.ExecContext(ctx, `
        UPDATE content_type SET name = ?, fields = ?, updated_at = ?, updated_by = ?
        WHERE id = ?`,
		existing.Name, string(fields),
		existing.UpdatedAt.Format(time.RFC3339Nano), existing.UpdatedBy,
		existing.ID.String())
	if err != nil {
		return nil, fmt.Errorf("update content type: %w", err)
	}
	return existing, nil
}

func (r *Remote) DeleteContentType(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM content_type WHERE id = ?`, id.String())
	if err != nil {
		return fmt.Errorf("delete content type: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return dynamiccontent.ErrTypeNotFound
	}
	return nil
}

// Content operations

func (r *Remote) ListContent(ctx context.Context, contentTypeID uuid.UUID) ([]dynamiccontent.ContentItem, error) {
	query := `
        SELECT id, content_type_id, data, created_at, updated_at, created_by, updated_by
        FROM content_item WHERE deleted_at IS NULL`
	args := []any{}
	if contentTypeID != uuid.Nil {
		query += ` AND content_type_id = ?`
		args = append(args, contentTypeID.String())
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list content: %w", err)
	}
	defer rows.Close()

	var out []dynamiccontent.ContentItem
	for rows.Next() {
		item, err := scanContentItem(rows)
		if err != nil {
			return nil, fmt.Errorf("list content: %w", err)
		}
		out = append(out, *item)
	}
	return out, rows.Err()
}

func (r *Remote) CreateContent(ctx context.Context, req dynamiccontent.CreateContentRequest) (*dynamiccontent.ContentItem, error) {
	if _, err := r.GetContentType(ctx, req.ContentTypeID); err != nil {
		return nil, err
	}

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

	_, err = r.db.ExecContext(ctx, `
        INSERT INTO content_item (id, content_type_id, data, created_at, updated_at, created_by, updated_by)
        VALUES (?, ?, ?, ?, ?, ?, ?)`,
		item.ID.String(), item.ContentTypeID.String(), string(data),
		item.CreatedAt.Format(time.RFC3339Nano), item.UpdatedAt.Format(time.RFC3339Nano),
		item.CreatedBy, item.UpdatedBy)
	if err != nil {
		return nil, fmt.Errorf("create content: %w", err)
	}
	return &item, nil
}

func (r *Remote) ReadContent(ctx context.Context, id uuid.UUID) (*dynamiccontent.ContentItem, error) {
	row := r.db.QueryRowContext(ctx, `
        SELECT id, content_type_id, data, created_at, updated_at, created_by, updated_by
        FROM content_item WHERE id = ? AND deleted_at IS NULL`, id.String())

	item, err := scanContentItem(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, dynamiccontent.ErrItemNotFound
		}
		return nil, fmt.Errorf("read content: %w", err)
	}
	return item, nil
}

// UpdateContent merge-replaces: submitted keys overwrite, absent keys keep
// their stored values.
func (r *Remote) UpdateContent(ctx context.Context, req dynamiccontent.UpdateContentRequest) (*dynamiccontent.ContentItem, error) {
	existing, err := r.ReadContent(ctx, req.ID)
	if err != nil {
		return nil, err
	}

	for k, v := range req.Data {
		existing.Data[k] = v
	}
	existing.UpdatedAt = time.Now().UTC()
	existing.UpdatedBy = req.UpdatedBy

	data, err := json.Marshal(existing.Data)
	if err != nil {
		return nil, err
	}

	_, err = r.db.ExecContext(ctx, `
        UPDATE content_item SET data = ?, updated_at = ?, updated_by = ?
        WHERE id = ? AND deleted_at IS NULL`,
		string(data), existing.UpdatedAt.Format(time.RFC3339Nano), existing.UpdatedBy,
		existing.ID.String())
	if err != nil {
		return nil, fmt.Errorf("update content: %w", err)
	}
	return existing, nil
}

func (r *Remote) DeleteContent(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `
        UPDATE content_item SET deleted_at = ?
        WHERE id = ? AND deleted_at IS NULL`,
		time.Now().UTC().Format(time.RFC3339Nano), id.String())
	if err != nil {
		return fmt.Errorf("delete content: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return dynamiccontent.ErrItemNotFound
	}
	return nil
}

func (r *Remote) Health(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

type scanner interface {
	Scan(dest ...any) error
}

func scanContentType(row scanner) (*dynamiccontent.ContentType, error) {
	var (
		t                    dynamiccontent.ContentType
		id, fields           string
		createdAt, updatedAt string
	)
	if err := row.Scan(&id, &t.Name, &fields, &createdAt, &updatedAt, &t.CreatedBy, &t.UpdatedBy); err != nil {
		return nil, err
	}
	parsed, err := uuid.Parse(id)
	if err != nil {
		return nil, err
	}
	t.ID = parsed
	if err := json.Unmarshal([]byte(fields), &t.Fields); err != nil {
		return nil, fmt.Errorf("decode fields: %w", err)
	}
	if t.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
		return nil, err
	}
	if t.UpdatedAt, err = time.Parse(time.RFC3339Nano, updatedAt); err != nil {
		return nil, err
	}
	return &t, nil
}

func scanContentItem(row scanner) (*dynamiccontent.ContentItem, error) {
	var (
		item                 dynamiccontent.ContentItem
		id, typeID, data     string
		createdAt, updatedAt string
	)
	if err := row.Scan(&id, &typeID, &data, &createdAt, &updatedAt, &item.CreatedBy, &item.UpdatedBy); err != nil {
		return nil, err
	}
	parsed, err := uuid.Parse(id)
	if err != nil {
		return nil, err
	}
	item.ID = parsed
	if item.ContentTypeID, err = uuid.Parse(typeID); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(data), &item.Data); err != nil {
		return nil, fmt.Errorf("decode data: %w", err)
	}
	if item.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
		return nil, err
	}
	if item.UpdatedAt, err = time.Parse(time.RFC3339Nano, updatedAt); err != nil {
		return nil, err
	}
	return &item, nil
}
