package dynamiccontent

import (
	"context"
	"log/slog"
	"sync"

	"github.com/google/uuid"
)

// SchemaStore caches the known content types and tracks which one is
// selected for content operations. All mutations are pass-throughs to the
// remote: the cache changes only after the remote call succeeds, so a failed
// call leaves the local view untouched.
//
// At most one type is selected at a time. After a refresh the selection
// re-resolves by id: the same type if it still exists, else the first
// available type, else none.
type SchemaStore struct {
	remote Remote
	logger *slog.Logger

	mu       sync.RWMutex
	types    []ContentType
	selected uuid.UUID
}

// NewSchemaStore creates a schema store backed by the given remote.
func NewSchemaStore(remote Remote, logger *slog.Logger) *SchemaStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &SchemaStore{remote: remote, logger: logger}
}

// Refresh reloads the type list from the remote and re-resolves the
// selection.
func (s *SchemaStore) Refresh(ctx context.Context) error {
	types, err := s.remote.ListContentTypes(ctx)
	if err != nil {
		return &SchemaError{Op: "list", Err: err}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.types = types
	s.reselectLocked()
	return nil
}

// List returns a copy of the cached content types.
func (s *SchemaStore) List() []ContentType {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]ContentType, len(s.types))
	copy(out, s.types)
	return out
}

// Get returns the cached type with the given id.
func (s *SchemaStore) Get(id uuid.UUID) (*ContentType, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.getLocked(id)
}

// Selected returns the currently selected type, if any.
func (s *SchemaStore) Selected() (*ContentType, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.selected == uuid.Nil {
		return nil, false
	}
	return s.getLocked(s.selected)
}

// Select marks the type with the given id as selected.
func (s *SchemaStore) Select(id uuid.UUID) (*ContentType, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.getLocked(id)
	if !ok {
		return nil, &SchemaError{TypeID: id, Op: "select", Err: ErrTypeNotFound}
	}
	s.selected = id
	return t, nil
}

// Create creates a content type on the remote and appends it to the cache.
func (s *SchemaStore) Create(ctx context.Context, req CreateContentTypeRequest) (*ContentType, error) {
	probe := ContentType{Name: req.Name, Fields: req.Fields}
	if err := probe.Validate(); err != nil {
		return nil, err
	}

	created, err := s.remote.CreateContentType(ctx, req)
	if err != nil {
		return nil, &SchemaError{Op: "create", Err: err}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.types = append(s.types, *created)
	cp := *created
	return &cp, nil
}

// Update updates a content type on the remote and replaces the cached entry.
// Existing content items are not migrated to the new field list.
func (s *SchemaStore) Update(ctx context.Context, req UpdateContentTypeRequest) (*ContentType, error) {
	if req.Fields != nil {
		probe := ContentType{ID: req.ID, Name: "pending", Fields: req.Fields}
		if req.Name != "" {
			probe.Name = req.Name
		}
		if err := probe.Validate(); err != nil {
			return nil, err
		}
	}

	updated, err := s.remote.UpdateContentType(ctx, req)
	if err != nil {
		return nil, &SchemaError{TypeID: req.ID, Op: "update", Err: err}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.types {
		if s.types[i].ID == updated.ID {
			s.types[i] = *updated
			break
		}
	}
	cp := *updated
	return &cp, nil
}

// Delete deletes a content type on the remote and drops it from the cache,
// re-resolving the selection. Dependent content items are not cascaded.
func (s *SchemaStore) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.remote.DeleteContentType(ctx, id); err != nil {
		return &SchemaError{TypeID: id, Op: "delete", Err: err}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.types[:0]
	for _, t := range s.types {
		if t.ID != id {
			kept = append(kept, t)
		}
	}
	s.types = kept
	s.reselectLocked()
	return nil
}

func (s *SchemaStore) getLocked(id uuid.UUID) (*ContentType, bool) {
	for i := range s.types {
		if s.types[i].ID == id {
			cp := s.types[i]
			return &cp, true
		}
	}
	return nil, false
}

// reselectLocked re-resolves the selection against the current type list:
// same id if alive, else first available, else none.
func (s *SchemaStore) reselectLocked() {
	if s.selected != uuid.Nil {
		if _, ok := s.getLocked(s.selected); ok {
			return
		}
	}
	if len(s.types) > 0 {
		s.selected = s.types[0].ID
		return
	}
	s.selected = uuid.Nil
}
