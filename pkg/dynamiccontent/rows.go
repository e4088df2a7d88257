package dynamiccontent

import (
	"fmt"

	"github.com/google/uuid"
)

// RowIDKey is the reserved row key carrying the item id. Field names shadow
// nothing: a schema field named "id" would collide, so the key is reserved.
const RowIDKey = "id"

// Row is the flattened representation of one content item: the item id under
// RowIDKey plus one entry per schema field. It is the shape exchanged with
// table-style renderers and the input to reconciliation.
type Row map[string]any

// ID extracts the item id from a row.
func (r Row) ID() (uuid.UUID, error) {
	raw, ok := r[RowIDKey]
	if !ok {
		return uuid.Nil, fmt.Errorf("row has no %q key", RowIDKey)
	}
	switch v := raw.(type) {
	case uuid.UUID:
		return v, nil
	case string:
		id, err := uuid.Parse(v)
		if err != nil {
			return uuid.Nil, fmt.Errorf("row id %q: %w", v, err)
		}
		return id, nil
	default:
		return uuid.Nil, fmt.Errorf("row id has unexpected type %T", raw)
	}
}

// Flatten converts an item into an edit-ready row under the given schema.
// Only fields of the current schema appear; stale data keys ride along in
// the item but are not surfaced.
func Flatten(schema *ContentType, item *ContentItem) Row {
	row := Row{RowIDKey: item.ID}
	for _, f := range schema.Fields {
		if v, ok := item.Data[f.Name]; ok {
			row[f.Name] = v
		} else {
			row[f.Name] = nil
		}
	}
	return row
}

// DisplayRow converts an item into a display-ready row: every value rendered
// through Format, relation ids replaced by labels where the resolver has
// them.
func DisplayRow(schema *ContentType, item *ContentItem, relations *RelationResolver) Row {
	row := Row{RowIDKey: item.ID.String()}
	for _, f := range schema.Fields {
		row[f.Name] = Format(f, item.Data[f.Name], relations)
	}
	return row
}
