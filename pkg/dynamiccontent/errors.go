package dynamiccontent

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Error types
var (
	// ErrTypeNotFound indicates a content type was not found
	ErrTypeNotFound = errors.New("content type not found")

	// ErrItemNotFound indicates a content item was not found
	ErrItemNotFound = errors.New("content item not found")

	// ErrNoSchemaSelected indicates a content operation without a selected type
	ErrNoSchemaSelected = errors.New("no content type selected")

	// ErrTypeNameRequired indicates a content type with an empty name
	ErrTypeNameRequired = errors.New("content type name is required")

	// ErrFieldNameRequired indicates a field with an empty name
	ErrFieldNameRequired = errors.New("field name is required")

	// ErrDuplicateFieldName indicates two fields sharing a name within a type
	ErrDuplicateFieldName = errors.New("duplicate field name")

	// ErrUnknownFieldKind indicates a field kind outside the registry
	ErrUnknownFieldKind = errors.New("unknown field kind")

	// ErrEnumOptionsRequired indicates an enum field without allowed values
	ErrEnumOptionsRequired = errors.New("enum field requires at least one option")

	// ErrRelationTargetRequired indicates a relation field without a target type
	ErrRelationTargetRequired = errors.New("relation field requires a target content type")
)

// ValidationCode classifies a per-field validation outcome.
type ValidationCode string

// Validation codes. The first four are the recoverable/reportable taxonomy;
// invalid_date and invalid_relation are hard parse failures on their kinds.
const (
	CodeRequiredFieldMissing ValidationCode = "required_field_missing"
	CodeInvalidNumber        ValidationCode = "invalid_number"
	CodeOutOfRangeEnum       ValidationCode = "out_of_range_enum"
	CodeAmbiguousBoolean     ValidationCode = "ambiguous_boolean"
	CodeInvalidDate          ValidationCode = "invalid_date"
	CodeInvalidRelation      ValidationCode = "invalid_relation"
	CodeInvalidMedia         ValidationCode = "invalid_media"
)

// FieldError is a fatal per-field validation failure. It blocks the
// submission of the row or form that contains the field.
type FieldError struct {
	Field string
	Code  ValidationCode
	Err   error
}

func (e *FieldError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("field %q: %s: %v", e.Field, e.Code, e.Err)
	}
	return fmt.Sprintf("field %q: %s", e.Field, e.Code)
}

func (e *FieldError) Unwrap() error {
	return e.Err
}

// FieldIssue is a non-fatal per-field validation signal. The offending value
// has been replaced by Substituted and processing of the remaining fields
// continues.
type FieldIssue struct {
	Field       string
	Code        ValidationCode
	Substituted any
}

func (i FieldIssue) String() string {
	return fmt.Sprintf("field %q: %s (substituted %v)", i.Field, i.Code, i.Substituted)
}

// TransportError is a failure talking to the remote store. Message carries
// the collaborator's error string verbatim when one was provided.
type TransportError struct {
	Op      string
	Status  int
	Message string
	Err     error
}

func (e *TransportError) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if msg == "" {
		msg = "request failed"
	}
	if e.Status != 0 {
		return fmt.Sprintf("remote %s failed (status %d): %s", e.Op, e.Status, msg)
	}
	return fmt.Sprintf("remote %s failed: %s", e.Op, msg)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// SchemaError wraps a failed content-type operation.
type SchemaError struct {
	TypeID uuid.UUID
	Op     string
	Err    error
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("schema operation %s failed for type %s: %v", e.Op, e.TypeID, e.Err)
}

func (e *SchemaError) Unwrap() error {
	return e.Err
}

// ContentError wraps a failed content-item operation.
type ContentError struct {
	ItemID uuid.UUID
	Op     string
	Err    error
}

func (e *ContentError) Error() string {
	return fmt.Sprintf("content operation %s failed for item %s: %v", e.Op, e.ItemID, e.Err)
}

func (e *ContentError) Unwrap() error {
	return e.Err
}
