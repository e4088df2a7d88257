package dynamiccontent

import (
	"context"
	"io"

	"github.com/google/uuid"
)

// Remote is the remote store the engine operates against. It is treated as a
// black box reachable through the content-type CRUD, the content-item CRUD
// plus list, and a health probe.
type Remote interface {
	// Content type operations
	ListContentTypes(ctx context.Context) ([]ContentType, error)
	GetContentType(ctx context.Context, id uuid.UUID) (*ContentType, error)
	CreateContentType(ctx context.Context, req CreateContentTypeRequest) (*ContentType, error)
	UpdateContentType(ctx context.Context, req UpdateContentTypeRequest) (*ContentType, error)
	DeleteContentType(ctx context.Context, id uuid.UUID) error

	// Content item operations. ListContent with uuid.Nil lists all items.
	// UpdateContent merge-replaces the data map.
	ListContent(ctx context.Context, contentTypeID uuid.UUID) ([]ContentItem, error)
	CreateContent(ctx context.Context, req CreateContentRequest) (*ContentItem, error)
	ReadContent(ctx context.Context, id uuid.UUID) (*ContentItem, error)
	UpdateContent(ctx context.Context, req UpdateContentRequest) (*ContentItem, error)
	DeleteContent(ctx context.Context, id uuid.UUID) error

	// Health reports whether the store is reachable.
	Health(ctx context.Context) error
}

// MediaStore persists processed media objects and hands back stable URLs.
// Implementations are provided under storage/ subpackages.
type MediaStore interface {
	// Save stores the object under key and returns its URL.
	Save(ctx context.Context, key string, reader io.Reader, contentType string) (string, error)

	// Open returns the stored object for reading.
	Open(ctx context.Context, key string) (io.ReadCloser, error)

	// Delete removes the stored object.
	Delete(ctx context.Context, key string) error
}
