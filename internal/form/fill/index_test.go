package fill

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadFixture(t *testing.T, name string) []byte {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("testdata", name))
	require.NoError(t, err)
	return data
}

func fixtureIndex(t *testing.T) *fieldIndex {
	t.Helper()
	ctx, err := readDocument(loadFixture(t, "i765_form.pdf"))
	require.NoError(t, err)
	idx, err := buildFieldIndex(ctx)
	require.NoError(t, err)
	return idx
}

func TestBuildFieldIndexOrder(t *testing.T) {
	idx := fixtureIndex(t)

	var names []string
	for _, f := range idx.fields {
		names = append(names, f.FullName)
	}
	assert.Equal(t, []string{
		"Line1a_FamilyName",
		"Line1b_GivenName",
		"Part1_Checkbox1a",
		"Part1_Checkbox1b",
		"Part2_Gender",
		"Part2.Line7_AlienNumber",
		"Edition_Date",
	}, names)
}

func TestIndexedFieldAttributes(t *testing.T) {
	idx := fixtureIndex(t)

	family, ok := idx.lookup("Line1a_FamilyName")
	require.True(t, ok)
	assert.Equal(t, FieldText, family.Type)
	assert.Equal(t, 33, family.MaxLen)
	assert.Empty(t, family.Value)

	given, ok := idx.lookup("Line1b_GivenName")
	require.True(t, ok)
	assert.Equal(t, "MIGUEL", given.Value)

	cb1a, ok := idx.lookup("Part1_Checkbox1a")
	require.True(t, ok)
	assert.Equal(t, FieldCheckbox, cb1a.Type)
	assert.Equal(t, []string{"Yes"}, cb1a.OnStates)
	assert.False(t, cb1a.Checked())

	cb1b, ok := idx.lookup("Part1_Checkbox1b")
	require.True(t, ok)
	assert.Equal(t, []string{"On"}, cb1b.OnStates)

	gender, ok := idx.lookup("Part2_Gender")
	require.True(t, ok)
	assert.Equal(t, FieldRadio, gender.Type)
	assert.Equal(t, []string{"Female", "Male"}, gender.OnStates)
	assert.Len(t, gender.widgets, 2)

	edition, ok := idx.lookup("Edition_Date")
	require.True(t, ok)
	assert.True(t, edition.ReadOnly)
	assert.Equal(t, "01/20/25", edition.Value)
}

func TestIndexRegistersLeafNames(t *testing.T) {
	idx := fixtureIndex(t)

	f, ok := idx.lookup("Line7_AlienNumber")
	require.True(t, ok)
	assert.Equal(t, "Part2.Line7_AlienNumber", f.FullName)
	assert.Equal(t, "Line7_AlienNumber", f.Name)
}

func TestIndexPlainDocument(t *testing.T) {
	ctx, err := readDocument(loadFixture(t, "plain.pdf"))
	require.NoError(t, err)
	idx, err := buildFieldIndex(ctx)
	require.NoError(t, err)
	assert.Empty(t, idx.fields)
}

func TestFieldTypeMapping(t *testing.T) {
	tests := []struct {
		name  string
		ft    string
		flags int
		want  string
	}{
		{"text", ftText, 0, FieldText},
		{"checkbox", ftButton, 0, FieldCheckbox},
		{"radio", ftButton, flagRadio, FieldRadio},
		{"pushbutton", ftButton, flagPushbutton, FieldButton},
		{"choice", ftChoice, 0, FieldChoice},
		{"signature", ftSignature, 0, FieldSignature},
		{"unknown", "", 0, FieldUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, fieldType(tt.ft, tt.flags))
		})
	}
}
