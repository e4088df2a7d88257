package dynamiccontent

import (
	"time"

	"github.com/google/uuid"
)

// FieldKind is the domain type for field type tags. It is the discriminator
// for all coercion, validation and display behavior of a field's value.
type FieldKind string

// Field kind constants (typed).
const (
	FieldText     FieldKind = "text"
	FieldNumber   FieldKind = "number"
	FieldDate     FieldKind = "date"
	FieldBoolean  FieldKind = "boolean"
	FieldRelation FieldKind = "relation"
	FieldMedia    FieldKind = "media"
	FieldEnum     FieldKind = "enum"
	FieldPrice    FieldKind = "price"
)

// Kinds returns all supported field kinds in display order.
func Kinds() []FieldKind {
	return []FieldKind{
		FieldText, FieldNumber, FieldDate, FieldBoolean,
		FieldRelation, FieldMedia, FieldEnum, FieldPrice,
	}
}

// IsValid reports whether k is a supported field kind.
func (k FieldKind) IsValid() bool {
	switch k {
	case FieldText, FieldNumber, FieldDate, FieldBoolean,
		FieldRelation, FieldMedia, FieldEnum, FieldPrice:
		return true
	}
	return false
}

// FieldSpec describes one field of a content type.
//
// Relation is the id of the referenced content type and is meaningful only
// when Kind is FieldRelation (uuid.Nil otherwise). Options is the list of
// allowed values and is meaningful only when Kind is FieldEnum.
type FieldSpec struct {
	Name     string    `json:"name"`
	Kind     FieldKind `json:"type"`
	Optional bool      `json:"optional,omitempty"`
	Relation uuid.UUID `json:"relation,omitempty"`
	Options  []string  `json:"options,omitempty"`
}

// ContentType is a runtime-defined record shape. Fields is ordered: the order
// governs form layout and coercion order.
type ContentType struct {
	ID        uuid.UUID   `json:"id"`
	Name      string      `json:"name"`
	Fields    []FieldSpec `json:"fields"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
	CreatedBy string      `json:"created_by,omitempty"`
	UpdatedBy string      `json:"updated_by,omitempty"`
}

// Field returns the spec for the named field.
func (t *ContentType) Field(name string) (FieldSpec, bool) {
	for _, f := range t.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return FieldSpec{}, false
}

// RelationFields returns the relation-kind fields of the type, in order.
func (t *ContentType) RelationFields() []FieldSpec {
	var out []FieldSpec
	for _, f := range t.Fields {
		if f.Kind == FieldRelation {
			out = append(out, f)
		}
	}
	return out
}

// Validate checks the field-list invariants: every field has a non-empty
// name unique within the type and a known kind, enum fields carry at least
// one option, relation fields carry a target type id.
func (t *ContentType) Validate() error {
	if t.Name == "" {
		return ErrTypeNameRequired
	}
	seen := make(map[string]struct{}, len(t.Fields))
	for _, f := range t.Fields {
		if f.Name == "" {
			return ErrFieldNameRequired
		}
		if _, dup := seen[f.Name]; dup {
			return &SchemaError{TypeID: t.ID, Op: "validate", Err: ErrDuplicateFieldName}
		}
		seen[f.Name] = struct{}{}
		if !f.Kind.IsValid() {
			return &SchemaError{TypeID: t.ID, Op: "validate", Err: ErrUnknownFieldKind}
		}
		if f.Kind == FieldEnum && len(f.Options) == 0 {
			return &SchemaError{TypeID: t.ID, Op: "validate", Err: ErrEnumOptionsRequired}
		}
		if f.Kind == FieldRelation && f.Relation == uuid.Nil {
			return &SchemaError{TypeID: t.ID, Op: "validate", Err: ErrRelationTargetRequired}
		}
	}
	return nil
}

// ContentItem is one record conforming to a content type. Data is keyed by
// field name; its meaning is re-derived from the current schema at read time,
// so Data may contain keys absent from the current field list (stale after a
// schema edit) or miss keys the schema has since gained. Both are tolerated.
type ContentItem struct {
	ID            uuid.UUID      `json:"id"`
	ContentTypeID uuid.UUID      `json:"content_type_id"`
	Data          map[string]any `json:"data"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	CreatedBy     string         `json:"created_by,omitempty"`
	UpdatedBy     string         `json:"updated_by,omitempty"`
	DeletedAt     *time.Time     `json:"deleted_at,omitempty"`
}

// Clone returns a deep-enough copy of the item (the Data map is copied; the
// values themselves are treated as immutable scalars).
func (i *ContentItem) Clone() *ContentItem {
	cp := *i
	cp.Data = make(map[string]any, len(i.Data))
	for k, v := range i.Data {
		cp.Data[k] = v
	}
	return &cp
}
