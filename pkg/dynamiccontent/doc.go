// Package dynamiccontent provides a schema-driven content engine: content
// types (record shapes) are defined at runtime as ordered field lists, and
// content items conforming to those shapes can be created, listed, edited and
// deleted without recompiling.
//
// The package is organized around a single Engine that owns three caches: a
// SchemaStore (the known content types and the current selection), a
// ContentStore (the items of the selected type), and a RelationResolver (the
// id-to-label indexes used to display relation fields). Raw values flow
// through the field-kind registry (Coerce/Format) so that untyped input is
// parsed, validated and rendered according to the current schema, never
// according to the stored data alone.
//
// Persistence is behind the Remote interface. Implementations (memory,
// sqlite, postgres, rest) are provided under remote/ subpackages.
package dynamiccontent
