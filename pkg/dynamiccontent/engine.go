package dynamiccontent

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// DefaultHealthInterval is how often the engine probes remote health.
const DefaultHealthInterval = 30 * time.Second

// Engine wires the schema store, content store, relation resolver and row
// reconciler around one remote and keeps them consistent across schema
// selection changes.
type Engine struct {
	remote         Remote
	logger         *slog.Logger
	healthInterval time.Duration

	schemas   *SchemaStore
	contents  *ContentStore
	relations *RelationResolver
	rows      *RowReconciler

	healthy atomic.Bool
}

// Option represents a functional option for configuring the engine.
type Option func(*Engine)

// WithRemote sets the remote backend. Required.
func WithRemote(remote Remote) Option {
	return func(e *Engine) {
		e.remote = remote
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithHealthInterval overrides the health polling interval.
func WithHealthInterval(d time.Duration) Option {
	return func(e *Engine) {
		e.healthInterval = d
	}
}

// New creates an engine with the given options.
func New(options ...Option) (*Engine, error) {
	e := &Engine{healthInterval: DefaultHealthInterval}
	for _, option := range options {
		option(e)
	}

	if e.remote == nil {
		return nil, fmt.Errorf("remote is required")
	}
	if e.logger == nil {
		e.logger = slog.Default()
	}

	e.schemas = NewSchemaStore(e.remote, e.logger)
	e.contents = NewContentStore(e.remote, e.logger)
	e.relations = NewRelationResolver(e.remote, e.logger)
	e.rows = NewRowReconciler(e.contents, e.logger)
	return e, nil
}

// Schemas returns the schema store.
func (e *Engine) Schemas() *SchemaStore { return e.schemas }

// Contents returns the content store.
func (e *Engine) Contents() *ContentStore { return e.contents }

// Relations returns the relation resolver.
func (e *Engine) Relations() *RelationResolver { return e.relations }

// Rows returns the row reconciler.
func (e *Engine) Rows() *RowReconciler { return e.rows }

// Healthy reports the result of the most recent health probe.
func (e *Engine) Healthy() bool { return e.healthy.Load() }

// Start probes remote health once, then keeps probing on the configured
// interval until the context is cancelled. Health state changes are logged;
// probe failures never interrupt the loop.
func (e *Engine) Start(ctx context.Context) {
	e.probeHealth(ctx)

	ticker := time.NewTicker(e.healthInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			e.probeHealth(ctx)
		}
	}
}

func (e *Engine) probeHealth(ctx context.Context) {
	err := e.remote.Health(ctx)
	healthy := err == nil
	if prev := e.healthy.Swap(healthy); prev != healthy {
		if healthy {
			e.logger.Info("remote is healthy")
		} else {
			e.logger.Warn("remote is unhealthy", "err", err)
		}
	}
}

// Bootstrap loads the schema list and brings the content store and relation
// resolver in line with whatever type got selected.
func (e *Engine) Bootstrap(ctx context.Context) error {
	if err := e.schemas.Refresh(ctx); err != nil {
		return err
	}
	return e.syncSelection(ctx)
}

// SelectSchema selects a content type and rebuilds everything scoped to it:
// the content list reloads for the new type and the relation indexes are
// torn down and rebuilt for the new schema's relation fields.
func (e *Engine) SelectSchema(ctx context.Context, id uuid.UUID) error {
	if _, err := e.schemas.Select(id); err != nil {
		return err
	}
	return e.syncSelection(ctx)
}

// syncSelection points the content store and relation resolver at the
// currently selected schema and refreshes both. A relation rebuild failure
// only degrades display labels, so it is not propagated.
func (e *Engine) syncSelection(ctx context.Context) error {
	schema, ok := e.schemas.Selected()
	if !ok {
		e.contents.SetType(uuid.Nil)
		e.relations.SetSchema(uuid.Nil)
		return nil
	}

	e.contents.SetType(schema.ID)
	e.relations.SetSchema(schema.ID)

	if err := e.contents.Refresh(ctx); err != nil {
		return err
	}
	e.relations.Rebuild(ctx, schema)
	return nil
}

// DisplayRows renders the cached items of the selected type as display rows.
func (e *Engine) DisplayRows() ([]Row, error) {
	schema, ok := e.schemas.Selected()
	if !ok {
		return nil, ErrNoSchemaSelected
	}
	items := e.contents.Items()
	rows := make([]Row, 0, len(items))
	for i := range items {
		rows = append(rows, DisplayRow(schema, &items[i], e.relations))
	}
	return rows, nil
}
