package dynamiccontent

import "github.com/google/uuid"

// Request DTOs

// CreateContentTypeRequest contains parameters for creating a content type.
type CreateContentTypeRequest struct {
	Name      string
	Fields    []FieldSpec
	CreatedBy string
}

// UpdateContentTypeRequest contains parameters for updating a content type.
// A zero Name keeps the current name; nil Fields keeps the current field
// list. Existing items are never migrated when the field list changes.
type UpdateContentTypeRequest struct {
	ID        uuid.UUID
	Name      string
	Fields    []FieldSpec
	UpdatedBy string
}

// CreateContentRequest contains parameters for creating a content item.
type CreateContentRequest struct {
	ContentTypeID uuid.UUID
	Data          map[string]any
	CreatedBy     string
}

// UpdateContentRequest contains parameters for updating a content item.
// Data is merge-replaced: keys present overwrite, keys absent are preserved
// from the stored record.
type UpdateContentRequest struct {
	ID        uuid.UUID
	Data      map[string]any
	UpdatedBy string
}
