package dynamiccontent

import (
	"context"
	"log/slog"
	"sync"

	"github.com/google/uuid"
)

// RowReconciler converts an edited flat row back into canonical item data
// under the owning schema and commits it through the content store.
//
// The commit is optimistic with rollback: compute the new state, attempt the
// commit, and on any failure return the prior row unchanged. No partial
// write is retained, and local validation failures never reach the remote.
// Reconciliations for the same row are serialized; different rows proceed
// independently.
type RowReconciler struct {
	contents *ContentStore
	logger   *slog.Logger

	mu   sync.Mutex
	rows map[uuid.UUID]*sync.Mutex
}

// ReconcileResult reports the outcome of one reconciliation.
type ReconcileResult struct {
	// Row is the row to display: the committed row on success, the prior
	// row on failure.
	Row Row

	// Issues are the non-fatal per-field substitutions applied during
	// coercion (ambiguous booleans, out-of-range enums).
	Issues []FieldIssue
}

// NewRowReconciler creates a reconciler committing through the given store.
func NewRowReconciler(contents *ContentStore, logger *slog.Logger) *RowReconciler {
	if logger == nil {
		logger = slog.Default()
	}
	return &RowReconciler{
		contents: contents,
		logger:   logger,
		rows:     make(map[uuid.UUID]*sync.Mutex),
	}
}

// Reconcile applies an edited row against the prior row under the schema.
//
// For every schema field the new value is taken when the edited row carries
// the key, else the old row's value, so a field is never silently dropped.
// Values are coerced per kind; recoverable issues substitute and continue,
// while RequiredFieldMissing and hard parse failures abort before any remote
// call. On success the store's item list is refreshed in full so derived and
// relation displays stay consistent.
func (r *RowReconciler) Reconcile(ctx context.Context, schema *ContentType, edited, prior Row) (*ReconcileResult, error) {
	id, err := prior.ID()
	if err != nil {
		return &ReconcileResult{Row: prior}, err
	}

	lock := r.rowLock(id)
	lock.Lock()
	defer lock.Unlock()

	data := make(map[string]any, len(schema.Fields))
	var issues []FieldIssue
	for _, f := range schema.Fields {
		raw, ok := edited[f.Name]
		if !ok {
			raw = prior[f.Name]
		}
		value, issue, err := Coerce(f, raw)
		if err != nil {
			r.logger.Debug("row edit rejected", "item", id, "field", f.Name, "err", err)
			return &ReconcileResult{Row: prior, Issues: issues}, err
		}
		if issue != nil {
			issues = append(issues, *issue)
		}
		// Every schema field is written, nil included. The update is
		// merge-replace, so omitting a key would quietly revert a cleared
		// optional field to its stored value.
		data[f.Name] = value
	}

	updated, err := r.contents.Update(ctx, id, data, "")
	if err != nil {
		return &ReconcileResult{Row: prior, Issues: issues}, err
	}

	// Full relist keeps relation displays and neighbors consistent with
	// whatever landed remotely while the edit was in flight. A relist
	// failure is not a rollback: the commit already happened.
	if err := r.contents.Refresh(ctx); err != nil {
		r.logger.Warn("post-commit relist failed", "item", id, "err", err)
	}

	return &ReconcileResult{Row: Flatten(schema, updated), Issues: issues}, nil
}

func (r *RowReconciler) rowLock(id uuid.UUID) *sync.Mutex {
	r.mu.Lock()
	defer r.mu.Unlock()
	lock, ok := r.rows[id]
	if !ok {
		lock = &sync.Mutex{}
		r.rows[id] = lock
	}
	return lock
}
