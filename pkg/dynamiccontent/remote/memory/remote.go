// Package memory provides an in-memory Remote implementation. It backs unit
// tests and single-process deployments that need no external content service.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/emdneves/admin-panel/pkg/dynamiccontent"
)

// Remote implements dynamiccontent.Remote using in-memory storage. Deletes
// are soft: deleted records keep their row but never appear in reads or
// lists.
type Remote struct {
	mu    sync.RWMutex
	types map[uuid.UUID]*dynamiccontent.ContentType
	items map[uuid.UUID]*dynamiccontent.ContentItem
}

// New creates a new in-memory remote.
func New() *Remote {
	return &Remote{
		types: make(map[uuid.UUID]*dynamiccontent.ContentType),
		items: make(map[uuid.UUID]*dynamiccontent.ContentItem),
	}
}

// Content type operations

func (r *Remote) ListContentTypes(ctx context.Context) ([]dynamiccontent.ContentType, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]dynamiccontent.ContentType, 0, len(r.types))
	for _, t := range r.types {
		out = append(out, *cloneType(t))
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (r *Remote) GetContentType(ctx context.Context, id uuid.UUID) (*dynamiccontent.ContentType, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, exists := r.types[id]
	if !exists {
		return nil, dynamiccontent.ErrTypeNotFound
	}
	return cloneType(t), nil
}

func (r *Remote) CreateContentType(ctx context.Context, req dynamiccontent.CreateContentTypeRequest) (*dynamiccontent.ContentType, error) {
	t := dynamiccontent.ContentType{
		ID:        uuid.New(),
		Name:      req.Name,
		Fields:    append([]dynamiccontent.FieldSpec(nil), req.Fields...),
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
		CreatedBy: req.CreatedBy,
		UpdatedBy: req.CreatedBy,
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.types[t.ID] = cloneType(&t)
	return &t, nil
}

func (r *Remote) UpdateContentType(ctx context.Context, req dynamiccontent.UpdateContentTypeRequest) (*dynamiccontent.ContentType, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, exists := r.types[req.ID]
	if !exists {
		return nil, dynamiccontent.ErrTypeNotFound
	}

	updated := *cloneType(existing)
	if req.Name != "" {
		updated.Name = req.Name
	}
	if req.Fields != nil {
		updated.Fields = append([]dynamiccontent.FieldSpec(nil), req.Fields...)
	}
	if err := updated.Validate(); err != nil {
		return nil, err
	}
	updated.UpdatedAt = time.Now().UTC()
	updated.UpdatedBy = req.UpdatedBy

	r.types[req.ID] = cloneType(&updated)
	return &updated, nil
}

func (r *Remote) DeleteContentType(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.types[id]; !exists {
		return dynamiccontent.ErrTypeNotFound
	}
	delete(r.types, id)
	return nil
}

// Content operations

func (r *Remote) ListContent(ctx context.Context, contentTypeID uuid.UUID) ([]dynamiccontent.ContentItem, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []dynamiccontent.ContentItem
	for _, item := range r.items {
		if item.DeletedAt != nil {
			continue
		}
		if contentTypeID != uuid.Nil && item.ContentTypeID != contentTypeID {
			continue
		}
		out = append(out, *item.Clone())
	}
	// Newest first, matching the list order the stores expect.
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (r *Remote) CreateContent(ctx context.Context, req dynamiccontent.CreateContentRequest) (*dynamiccontent.ContentItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.types[req.ContentTypeID]; !exists {
		return nil, dynamiccontent.ErrTypeNotFound
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
	r.items[item.ID] = item.Clone()
	return item.Clone(), nil
}

func (r *Remote) ReadContent(ctx context.Context, id uuid.UUID) (*dynamiccontent.ContentItem, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, exists := r.items[id]
	if !exists || item.DeletedAt != nil {
		return nil, dynamiccontent.ErrItemNotFound
	}
	return item.Clone(), nil
}

// UpdateContent merge-replaces: request keys overwrite stored values, keys
// absent from the request keep whatever was stored, including keys no longer
// declared by the owning schema.
func (r *Remote) UpdateContent(ctx context.Context, req dynamiccontent.UpdateContentRequest) (*dynamiccontent.ContentItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	item, exists := r.items[req.ID]
	if !exists || item.DeletedAt != nil {
		return nil, dynamiccontent.ErrItemNotFound
	}

	updated := item.Clone()
	for k, v := range req.Data {
		updated.Data[k] = v
	}
	updated.UpdatedAt = time.Now().UTC()
	updated.UpdatedBy = req.UpdatedBy

	r.items[req.ID] = updated.Clone()
	return updated, nil
}

func (r *Remote) DeleteContent(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	item, exists := r.items[id]
	if !exists || item.DeletedAt != nil {
		return dynamiccontent.ErrItemNotFound
	}
	now := time.Now().UTC()
	item.DeletedAt = &now
	return nil
}

func (r *Remote) Health(ctx context.Context) error {
	return nil
}

func cloneType(t *dynamiccontent.ContentType) *dynamiccontent.ContentType {
	cp := *t
	cp.Fields = append([]dynamiccontent.FieldSpec(nil), t.Fields...)
	return &cp
}
