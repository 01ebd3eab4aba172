package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFieldTypeValid(t *testing.T) {
	tests := []struct {
		name  string
		ft    FieldType
		valid bool
	}{
		{name: "text input", ft: TypeText, valid: true},
		{name: "checkbox", ft: TypeCheckbox, valid: true},
		{name: "radio", ft: TypeRadio, valid: true},
		{name: "date input", ft: TypeDate, valid: true},
		{name: "unknown", ft: FieldType("Dropdown"), valid: false},
		{name: "empty", ft: FieldType(""), valid: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.valid, tt.ft.Valid())
		})
	}
}

func TestFieldTypeSelectable(t *testing.T) {
	assert.True(t, TypeCheckbox.Selectable())
	assert.True(t, TypeRadio.Selectable())
	assert.False(t, TypeText.Selectable())
	assert.False(t, TypeDate.Selectable())
}

func TestTargetPDFName(t *testing.T) {
	tests := []struct {
		name string
		desc FieldDescriptor
		want string
	}{
		{
			name: "explicit name wins",
			desc: FieldDescriptor{FieldID: "family_name", ItemNumber: "1.a.", PDFFieldName: "Line1a_FamilyName"},
			want: "Line1a_FamilyName",
		},
		{
			name: "item number when no explicit name",
			desc: FieldDescriptor{FieldID: "family_name", ItemNumber: "1.a."},
			want: "1.a.",
		},
		{
			name: "field id as last resort",
			desc: FieldDescriptor{FieldID: "family_name"},
			want: "family_name",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.desc.TargetPDFName())
		})
	}
}

func TestFieldByID(t *testing.T) {
	s := &Schema{Parts: []Part{
		{Name: "Part 1", Fields: []FieldDescriptor{
			{FieldID: "a", DataPath: "x.a", Type: TypeText},
		}},
		{Name: "Part 2", Fields: []FieldDescriptor{
			{FieldID: "b", DataPath: "x.b", Type: TypeCheckbox},
		}},
	}}

	got, ok := s.FieldByID("b")
	require.True(t, ok)
	assert.Equal(t, "x.b", got.DataPath)

	_, ok = s.FieldByID("missing")
	assert.False(t, ok)
}

func TestLenAndFields(t *testing.T) {
	s := &Schema{Parts: []Part{
		{Fields: []FieldDescriptor{{FieldID: "a"}, {FieldID: "b"}}},
		{Fields: []FieldDescriptor{{FieldID: "c"}}},
	}}

	assert.Equal(t, 3, s.Len())
	assert.Len(t, s.Fields(), 3)
	assert.Equal(t, 0, Empty().Len())
}

func TestDuplicateFieldIDs(t *testing.T) {
	s := &Schema{Parts: []Part{
		{Fields: []FieldDescriptor{{FieldID: "a"}, {FieldID: "b"}}},
		{Fields: []FieldDescriptor{{FieldID: "a"}, {FieldID: "c"}, {FieldID: "c"}}},
	}}

	assert.Equal(t, []string{"a", "c"}, s.DuplicateFieldIDs())
	assert.Empty(t, Empty().DuplicateFieldIDs())
}

func TestAmbiguousMappings(t *testing.T) {
	s := &Schema{Parts: []Part{
		{Fields: []FieldDescriptor{
			{
				FieldID:      "status",
				ValueMapping: map[string]string{"single": "1", "married": "1", "divorced": "3"},
			},
			{
				FieldID:      "visa",
				ValueMapping: map[string]string{"H-1B": "h1b_code", "checked": "X"},
			},
		}},
	}}

	ambiguous := s.AmbiguousMappings()
	require.Len(t, ambiguous, 1)
	assert.Equal(t, []string{"1"}, ambiguous["status"])
}
