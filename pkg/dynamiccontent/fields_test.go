package dynamiccontent_test

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emdneves/admin-panel/pkg/dynamiccontent"
)

func TestCoerceRequiredAndOptional(t *testing.T) {
	required := dynamiccontent.FieldSpec{Name: "title", Kind: dynamiccontent.FieldText}
	optional := dynamiccontent.FieldSpec{Name: "subtitle", Kind: dynamiccontent.FieldText, Optional: true}

	for _, raw := range []any{nil, "", "   "} {
		_, _, err := dynamiccontent.Coerce(required, raw)
		require.Error(t, err)
		var fieldErr *dynamiccontent.FieldError
		require.ErrorAs(t, err, &fieldErr)
		assert.Equal(t, dynamiccontent.CodeRequiredFieldMissing, fieldErr.Code)
		assert.Equal(t, "title", fieldErr.Field)

		v, issue, err := dynamiccontent.Coerce(optional, raw)
		require.NoError(t, err)
		assert.Nil(t, issue)
		assert.Nil(t, v)
	}
}

func TestCoerceNumber(t *testing.T) {
	spec := dynamiccontent.FieldSpec{Name: "qty", Kind: dynamiccontent.FieldNumber}

	tests := []struct {
		name    string
		raw     any
		want    float64
		wantErr bool
	}{
		{name: "float passes through", raw: 12.5, want: 12.5},
		{name: "int widens", raw: 7, want: 7},
		{name: "numeric string parses", raw: " 42 ", want: 42},
		{name: "garbage string fails", raw: "bad", wantErr: true},
		{name: "non numeric type fails", raw: []int{1}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, issue, err := dynamiccontent.Coerce(spec, tt.raw)
			if tt.wantErr {
				var fieldErr *dynamiccontent.FieldError
				require.ErrorAs(t, err, &fieldErr)
				assert.Equal(t, dynamiccontent.CodeInvalidNumber, fieldErr.Code)
				return
			}
			require.NoError(t, err)
			assert.Nil(t, issue)
			assert.Equal(t, tt.want, v)
		})
	}
}

func TestCoerceDate(t *testing.T) {
	spec := dynamiccontent.FieldSpec{Name: "published", Kind: dynamiccontent.FieldDate}

	v, issue, err := dynamiccontent.Coerce(spec, "2026-03-15T10:30:00Z")
	require.NoError(t, err)
	assert.Nil(t, issue)
	assert.Equal(t, "2026-03-15T10:30:00Z", v)

	// Bare dates and the display layout are accepted too.
	v, _, err = dynamiccontent.Coerce(spec, "2026-03-15")
	require.NoError(t, err)
	assert.Equal(t, "2026-03-15T00:00:00Z", v)

	v, _, err = dynamiccontent.Coerce(spec, "15/03/2026 10:30")
	require.NoError(t, err)
	assert.Equal(t, "2026-03-15T10:30:00Z", v)

	_, _, err = dynamiccontent.Coerce(spec, "not a date")
	var fieldErr *dynamiccontent.FieldError
	require.ErrorAs(t, err, &fieldErr)
	assert.Equal(t, dynamiccontent.CodeInvalidDate, fieldErr.Code)
}

func TestCoerceBoolean(t *testing.T) {
	spec := dynamiccontent.FieldSpec{Name: "active", Kind: dynamiccontent.FieldBoolean}

	v, issue, err := dynamiccontent.Coerce(spec, true)
	require.NoError(t, err)
	assert.Nil(t, issue)
	assert.Equal(t, true, v)

	v, issue, err = dynamiccontent.Coerce(spec, "false")
	require.NoError(t, err)
	assert.Nil(t, issue)
	assert.Equal(t, false, v)

	// Ambiguous input substitutes false and reports, it does not fail.
	v, issue, err = dynamiccontent.Coerce(spec, "yes")
	require.NoError(t, err)
	require.NotNil(t, issue)
	assert.Equal(t, dynamiccontent.CodeAmbiguousBoolean, issue.Code)
	assert.Equal(t, false, v)
}

func TestCoerceEnum(t *testing.T) {
	spec := dynamiccontent.FieldSpec{
		Name:    "status",
		Kind:    dynamiccontent.FieldEnum,
		Options: []string{"draft", "published"},
	}

	v, issue, err := dynamiccontent.Coerce(spec, "published")
	require.NoError(t, err)
	assert.Nil(t, issue)
	assert.Equal(t, "published", v)

	// Out-of-range input substitutes the first option and reports.
	v, issue, err = dynamiccontent.Coerce(spec, "archived")
	require.NoError(t, err)
	require.NotNil(t, issue)
	assert.Equal(t, dynamiccontent.CodeOutOfRangeEnum, issue.Code)
	assert.Equal(t, "draft", issue.Substituted)
	assert.Equal(t, "draft", v)
}

func TestCoerceRelation(t *testing.T) {
	target := uuid.New()
	spec := dynamiccontent.FieldSpec{Name: "author", Kind: dynamiccontent.FieldRelation, Relation: target}

	id := uuid.New()
	v, issue, err := dynamiccontent.Coerce(spec, id.String())
	require.NoError(t, err)
	assert.Nil(t, issue)
	assert.Equal(t, id.String(), v)

	_, _, err = dynamiccontent.Coerce(spec, "not-a-uuid")
	var fieldErr *dynamiccontent.FieldError
	require.ErrorAs(t, err, &fieldErr)
	assert.Equal(t, dynamiccontent.CodeInvalidRelation, fieldErr.Code)
}

func TestCoerceUnknownKind(t *testing.T) {
	spec := dynamiccontent.FieldSpec{Name: "x", Kind: dynamiccontent.FieldKind("geo")}
	_, _, err := dynamiccontent.Coerce(spec, "anything")
	require.Error(t, err)
	assert.True(t, errors.Is(err, dynamiccontent.ErrUnknownFieldKind))
}

func TestFormat(t *testing.T) {
	tests := []struct {
		name  string
		spec  dynamiccontent.FieldSpec
		value any
		want  string
	}{
		{
			name:  "nil renders empty",
			spec:  dynamiccontent.FieldSpec{Kind: dynamiccontent.FieldText},
			value: nil,
			want:  "",
		},
		{
			name:  "price keeps two decimals",
			spec:  dynamiccontent.FieldSpec{Kind: dynamiccontent.FieldPrice},
			value: 12.5,
			want:  "12.50",
		},
		{
			name:  "number drops trailing zeros",
			spec:  dynamiccontent.FieldSpec{Kind: dynamiccontent.FieldNumber},
			value: 12.5,
			want:  "12.5",
		},
		{
			name:  "date uses display layout",
			spec:  dynamiccontent.FieldSpec{Kind: dynamiccontent.FieldDate},
			value: "2026-03-15T10:30:00Z",
			want:  "15/03/2026 10:30",
		},
		{
			name:  "boolean renders literal",
			spec:  dynamiccontent.FieldSpec{Kind: dynamiccontent.FieldBoolean},
			value: true,
			want:  "true",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, dynamiccontent.Format(tt.spec, tt.value, nil))
		})
	}
}

// A formatted value fed back through coercion lands on the same stored value,
// so re-editing a rendered row cannot corrupt data.
func TestFormatCoerceRoundTrip(t *testing.T) {
	date := dynamiccontent.FieldSpec{Name: "published", Kind: dynamiccontent.FieldDate}
	stored := time.Date(2026, 3, 15, 10, 30, 0, 0, time.UTC).Format(time.RFC3339)

	shown := dynamiccontent.Format(date, stored, nil)
	back, _, err := dynamiccontent.Coerce(date, shown)
	require.NoError(t, err)
	assert.Equal(t, stored, back)

	// A relation with no index entry renders its raw id, which coerces back
	// unchanged.
	rel := dynamiccontent.FieldSpec{Name: "author", Kind: dynamiccontent.FieldRelation, Relation: uuid.New()}
	id := uuid.New().String()
	shown = dynamiccontent.Format(rel, id, nil)
	back, _, err = dynamiccontent.Coerce(rel, shown)
	require.NoError(t, err)
	assert.Equal(t, id, back)
}
