package dynamiccontent

import (
	"context"
	"log/slog"
	"sync"

	"github.com/google/uuid"
)

// labelKeys is the preference order for picking an item's display label.
var labelKeys = []string{"name", "title", "label"}

// RelationResolver builds and serves the id-to-label indexes used to display
// relation fields. Indexes are keyed by target content type id and are
// replace-only: a rebuild assembles complete indexes off to the side and
// publishes them in one swap, so a partially built index is never observable.
//
// The resolver is scoped to one selected schema at a time. SetSchema starts a
// new epoch; a rebuild started under an older epoch is discarded when it
// completes, which keeps a slow fetch for a previously selected schema from
// overwriting the indexes of the current one.
type RelationResolver struct {
	remote Remote
	logger *slog.Logger

	mu       sync.RWMutex
	schemaID uuid.UUID
	byType   map[uuid.UUID]map[string]string
}

// NewRelationResolver creates a resolver reading through the given remote.
func NewRelationResolver(remote Remote, logger *slog.Logger) *RelationResolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &RelationResolver{
		remote: remote,
		logger: logger,
		byType: make(map[uuid.UUID]map[string]string),
	}
}

// SetSchema starts a new epoch for the given schema and drops all published
// indexes. Call on every schema selection change.
func (r *RelationResolver) SetSchema(id uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.schemaID = id
	r.byType = make(map[uuid.UUID]map[string]string)
}

// Lookup returns the display label for an item of the given target type.
func (r *RelationResolver) Lookup(typeID uuid.UUID, itemID string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	idx, ok := r.byType[typeID]
	if !ok {
		return "", false
	}
	label, ok := idx[itemID]
	return label, ok
}

// Rebuild resolves every relation field of the schema and publishes the
// resulting indexes. Fields are resolved concurrently and independently: a
// failure on one target type yields an empty index for that type only. The
// publish is skipped when the schema is no longer the resolver's current
// epoch (selection moved on while fetches were in flight).
func (r *RelationResolver) Rebuild(ctx context.Context, schema *ContentType) {
	if schema == nil {
		return
	}

	targets := make(map[uuid.UUID]struct{})
	for _, f := range schema.RelationFields() {
		if f.Relation != uuid.Nil {
			targets[f.Relation] = struct{}{}
		}
	}

	next := make(map[uuid.UUID]map[string]string, len(targets))
	var (
		wg     sync.WaitGroup
		nextMu sync.Mutex
	)
	for target := range targets {
		wg.Add(1)
		go func(target uuid.UUID) {
			defer wg.Done()
			idx := r.buildIndex(ctx, target)
			nextMu.Lock()
			next[target] = idx
			nextMu.Unlock()
		}(target)
	}
	wg.Wait()

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.schemaID != schema.ID {
		r.logger.Debug("discarding stale relation indexes",
			"built_for", schema.ID, "current", r.schemaID)
		return
	}
	r.byType = next
}

// buildIndex fetches one target type's items and schema and maps item id to
// the best-available label. Any failure degrades to an empty index.
func (r *RelationResolver) buildIndex(ctx context.Context, target uuid.UUID) map[string]string {
	idx := make(map[string]string)

	items, err := r.remote.ListContent(ctx, target)
	if err != nil {
		r.logger.Warn("relation target list failed", "target", target, "err", err)
		return idx
	}

	// Prefer label keys that the target schema actually declares; if the
	// schema cannot be fetched, probe all candidates on the data directly.
	keys := labelKeys
	if refType, err := r.remote.GetContentType(ctx, target); err == nil {
		keys = keys[:0:0]
		for _, candidate := range labelKeys {
			if _, ok := refType.Field(candidate); ok {
				keys = append(keys, candidate)
			}
		}
	} else {
		r.logger.Warn("relation target schema fetch failed", "target", target, "err", err)
	}

	for _, item := range items {
		label := item.ID.String()
		for _, key := range keys {
			if v, ok := item.Data[key]; ok && !isEmpty(v) {
				label = coerceText(v)
				break
			}
		}
		idx[item.ID.String()] = label
	}
	return idx
}
