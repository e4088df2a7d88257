package dynamiccontent

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// DisplayTimeLayout is the human-facing layout for date fields.
const DisplayTimeLayout = "02/01/2006 15:04"

// dateLayouts are the accepted input layouts for date coercion, tried in
// order. The display layout is included so a formatted value coerces back.
var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	DisplayTimeLayout,
	"2006-01-02",
}

// Coerce parses a raw, untyped value into the canonical stored value for the
// field's kind.
//
// Empty input (nil or "") yields nil for optional fields and a
// RequiredFieldMissing FieldError otherwise. Recoverable problems
// (AmbiguousBoolean, OutOfRangeEnum) substitute a safe value and report a
// FieldIssue; hard parse failures return a FieldError. The switch is
// exhaustive over FieldKind so a new kind is a compile-visible change here.
func Coerce(spec FieldSpec, raw any) (any, *FieldIssue, error) {
	if isEmpty(raw) {
		if spec.Optional {
			return nil, nil, nil
		}
		return nil, nil, &FieldError{Field: spec.Name, Code: CodeRequiredFieldMissing}
	}

	switch spec.Kind {
	case FieldText:
		return coerceText(raw), nil, nil

	case FieldNumber, FieldPrice:
		n, err := coerceNumber(raw)
		if err != nil {
			return nil, nil, &FieldError{Field: spec.Name, Code: CodeInvalidNumber, Err: err}
		}
		return n, nil, nil

	case FieldDate:
		t, err := coerceDate(raw)
		if err != nil {
			return nil, nil, &FieldError{Field: spec.Name, Code: CodeInvalidDate, Err: err}
		}
		return t.Format(time.RFC3339), nil, nil

	case FieldBoolean:
		b, ok := coerceBool(raw)
		if !ok {
			return false, &FieldIssue{Field: spec.Name, Code: CodeAmbiguousBoolean, Substituted: false}, nil
		}
		return b, nil, nil

	case FieldEnum:
		if len(spec.Options) == 0 {
			return nil, nil, &SchemaError{Op: "coerce", Err: ErrEnumOptionsRequired}
		}
		v := coerceText(raw)
		for _, opt := range spec.Options {
			if v == opt {
				return v, nil, nil
			}
		}
		return spec.Options[0], &FieldIssue{Field: spec.Name, Code: CodeOutOfRangeEnum, Substituted: spec.Options[0]}, nil

	case FieldRelation:
		id, err := coerceRelation(raw)
		if err != nil {
			return nil, nil, &FieldError{Field: spec.Name, Code: CodeInvalidRelation, Err: err}
		}
		return id, nil, nil

	case FieldMedia:
		// Opaque URL produced by the media pipeline; passed through untouched.
		s, ok := raw.(string)
		if !ok {
			return nil, nil, &FieldError{Field: spec.Name, Code: CodeInvalidMedia,
				Err: fmt.Errorf("media value must be a URL string, got %T", raw)}
		}
		return s, nil, nil

	default:
		return nil, nil, &SchemaError{Op: "coerce", Err: ErrUnknownFieldKind}
	}
}

// Format renders a stored value for display. Relation values are looked up
// in the resolver's index for the field's target type, falling back to the
// raw id when the index has no entry (not yet built, or target deleted).
// Format never fails; unrenderable input falls back to fmt.Sprint.
func Format(spec FieldSpec, value any, relations *RelationResolver) string {
	if value == nil {
		return ""
	}

	switch spec.Kind {
	case FieldText, FieldMedia, FieldEnum:
		return coerceText(value)

	case FieldNumber:
		if n, err := coerceNumber(value); err == nil {
			return strconv.FormatFloat(n, 'f', -1, 64)
		}
		return fmt.Sprint(value)

	case FieldPrice:
		if n, err := coerceNumber(value); err == nil {
			return strconv.FormatFloat(n, 'f', 2, 64)
		}
		return fmt.Sprint(value)

	case FieldDate:
		if t, err := coerceDate(value); err == nil {
			return t.Format(DisplayTimeLayout)
		}
		return fmt.Sprint(value)

	case FieldBoolean:
		if b, ok := coerceBool(value); ok {
			return strconv.FormatBool(b)
		}
		return fmt.Sprint(value)

	case FieldRelation:
		id := coerceText(value)
		if relations != nil {
			if label, ok := relations.Lookup(spec.Relation, id); ok {
				return label
			}
		}
		return id

	default:
		return fmt.Sprint(value)
	}
}

func isEmpty(raw any) bool {
	if raw == nil {
		return true
	}
	if s, ok := raw.(string); ok {
		return strings.TrimSpace(s) == ""
	}
	return false
}

func coerceText(raw any) string {
	switch v := raw.(type) {
	case string:
		return v
	case json.Number:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}

func coerceNumber(raw any) (float64, error) {
	var n float64
	switch v := raw.(type) {
	case float64:
		n = v
	case float32:
		n = float64(v)
	case int:
		n = float64(v)
	case int64:
		n = float64(v)
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return 0, err
		}
		n = f
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, fmt.Errorf("%q is not a number", v)
		}
		n = f
	default:
		return 0, fmt.Errorf("cannot parse %T as number", raw)
	}
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, fmt.Errorf("%v is not a finite number", n)
	}
	return n, nil
}

func coerceDate(raw any) (time.Time, error) {
	switch v := raw.(type) {
	case time.Time:
		return v.UTC(), nil
	case string:
		s := strings.TrimSpace(v)
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t.UTC(), nil
			}
		}
		return time.Time{}, fmt.Errorf("%q is not a recognized date", v)
	default:
		return time.Time{}, fmt.Errorf("cannot parse %T as date", raw)
	}
}

func coerceBool(raw any) (bool, bool) {
	switch v := raw.(type) {
	case bool:
		return v, true
	case string:
		switch strings.TrimSpace(v) {
		case "true":
			return true, true
		case "false":
			return false, true
		}
	}
	return false, false
}

func coerceRelation(raw any) (string, error) {
	switch v := raw.(type) {
	case string:
		s := strings.TrimSpace(v)
		if _, err := uuid.Parse(s); err != nil {
			return "", fmt.Errorf("%q is not an item id: %w", v, err)
		}
		return s, nil
	case uuid.UUID:
		return v.String(), nil
	default:
		return "", fmt.Errorf("cannot parse %T as item id", raw)
	}
}
