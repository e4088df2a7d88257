package dynamiccontent

import (
	"context"
	"log/slog"
	"sync"

	"github.com/google/uuid"
)

// ContentStore caches the content items of the currently selected type and
// tracks the item selected for detail/edit flows. Like the SchemaStore it is
// pass-through: the cache mutates only on remote success.
//
// A list refresh is keyed by the type id captured when the request was
// issued. If the selected type changes while the request is in flight, the
// stale response is dropped on arrival instead of overwriting the newer
// type's items; requests are not actively aborted.
type ContentStore struct {
	remote Remote
	logger *slog.Logger

	mu       sync.RWMutex
	typeID   uuid.UUID
	items    []ContentItem
	selected uuid.UUID
}

// NewContentStore creates a content store backed by the given remote.
func NewContentStore(remote Remote, logger *slog.Logger) *ContentStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &ContentStore{remote: remote, logger: logger}
}

// SetType switches the store to a new content type, clearing the cached
// items and the selection.
func (s *ContentStore) SetType(typeID uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.typeID = typeID
	s.items = nil
	s.selected = uuid.Nil
}

// TypeID returns the content type the store is currently scoped to.
func (s *ContentStore) TypeID() uuid.UUID {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.typeID
}

// Refresh reloads the item list for the current type. A response that
// arrives after the store moved to a different type is discarded.
func (s *ContentStore) Refresh(ctx context.Context) error {
	s.mu.RLock()
	requested := s.typeID
	s.mu.RUnlock()
	if requested == uuid.Nil {
		return ErrNoSchemaSelected
	}

	items, err := s.remote.ListContent(ctx, requested)
	if err != nil {
		return &ContentError{Op: "list", Err: err}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.typeID != requested {
		s.logger.Debug("discarding stale content list",
			"requested", requested, "current", s.typeID)
		return nil
	}
	s.items = items
	if s.selected != uuid.Nil {
		if _, ok := s.getLocked(s.selected); !ok {
			s.selected = uuid.Nil
		}
	}
	return nil
}

// Items returns a copy of the cached item list.
func (s *ContentStore) Items() []ContentItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]ContentItem, len(s.items))
	copy(out, s.items)
	return out
}

// Get returns the cached item with the given id.
func (s *ContentStore) Get(id uuid.UUID) (*ContentItem, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.getLocked(id)
}

// Selected returns the item selected for detail/edit, if any.
func (s *ContentStore) Selected() (*ContentItem, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.selected == uuid.Nil {
		return nil, false
	}
	return s.getLocked(s.selected)
}

// Select marks an item as selected; uuid.Nil clears the selection.
func (s *ContentStore) Select(id uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selected = id
}

// Create creates an item for the current type and prepends it to the cache.
func (s *ContentStore) Create(ctx context.Context, data map[string]any, createdBy string) (*ContentItem, error) {
	s.mu.RLock()
	typeID := s.typeID
	s.mu.RUnlock()
	if typeID == uuid.Nil {
		return nil, ErrNoSchemaSelected
	}

	created, err := s.remote.CreateContent(ctx, CreateContentRequest{
		ContentTypeID: typeID,
		Data:          data,
		CreatedBy:     createdBy,
	})
	if err != nil {
		return nil, &ContentError{Op: "create", Err: err}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.typeID == typeID {
		s.items = append([]ContentItem{*created}, s.items...)
	}
	return created.Clone(), nil
}

// Read fetches one item from the remote, updates the cached copy and selects
// it.
func (s *ContentStore) Read(ctx context.Context, id uuid.UUID) (*ContentItem, error) {
	item, err := s.remote.ReadContent(ctx, id)
	if err != nil {
		return nil, &ContentError{ItemID: id, Op: "read", Err: err}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.items {
		if s.items[i].ID == item.ID {
			s.items[i] = *item
			break
		}
	}
	s.selected = item.ID
	return item.Clone(), nil
}

// Update merge-replaces an item's data on the remote and swaps the cached
// copy for the returned record. Keys absent from data keep their stored
// values; the caller supplies the full intended key set when a full-row
// replace is meant.
func (s *ContentStore) Update(ctx context.Context, id uuid.UUID, data map[string]any, updatedBy string) (*ContentItem, error) {
	updated, err := s.remote.UpdateContent(ctx, UpdateContentRequest{
		ID:        id,
		Data:      data,
		UpdatedBy: updatedBy,
	})
	if err != nil {
		return nil, &ContentError{ItemID: id, Op: "update", Err: err}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.items {
		if s.items[i].ID == updated.ID {
			s.items[i] = *updated
			break
		}
	}
	return updated.Clone(), nil
}

// Delete deletes an item on the remote, removes it from the cache and clears
// the selection if it pointed at the deleted item. Deleted items never come
// back.
func (s *ContentStore) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.remote.DeleteContent(ctx, id); err != nil {
		return &ContentError{ItemID: id, Op: "delete", Err: err}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.items[:0]
	for _, it := range s.items {
		if it.ID != id {
			kept = append(kept, it)
		}
	}
	s.items = kept
	if s.selected == id {
		s.selected = uuid.Nil
	}
	return nil
}

func (s *ContentStore) getLocked(id uuid.UUID) (*ContentItem, bool) {
	for i := range s.items {
		if s.items[i].ID == id {
			return s.items[i].Clone(), true
		}
	}
	return nil, false
}
