package fill

import (
	"bytes"
	"encoding/hex"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/visaflow/mcp-i765-filler/internal/form/mapper"
	"github.com/visaflow/mcp-i765-filler/internal/form/schema"
	"github.com/visaflow/mcp-i765-filler/internal/logging"
)

func newTestProcessor(t *testing.T) *Processor {
	t.Helper()
	return NewProcessor("X", logging.NewTestLogger(t))
}

func resolvedField(id, declared, value string) mapper.ResolvedField {
	return mapper.ResolvedField{
		Value:        value,
		PDFFieldName: declared,
		Field:        schema.FieldDescriptor{FieldID: id, PDFFieldName: declared},
	}
}

func standardFillFields() []mapper.ResolvedField {
	return []mapper.ResolvedField{
		resolvedField("family_name", "Line1a_FamilyName", "DOE"),
		resolvedField("given_name", "Line1b_GivenName", "ANA"),
		resolvedField("reason_initial", "Part1_Checkbox1a", "X"),
		resolvedField("gender", "Part2_Gender", "Female"),
		resolvedField("alien_number", "Line7_AlienNumber", "123456789"),
	}
}

func TestFillFormWritesValues(t *testing.T) {
	p := newTestProcessor(t)
	result, err := p.FillForm(loadFixture(t, "i765_form.pdf"), standardFillFields(), FillOptions{})
	require.NoError(t, err)

	assert.Empty(t, result.FailedFields)
	assert.Len(t, result.FilledFields, 5)
	assert.Contains(t, result.FilledFields, "Part2.Line7_AlienNumber")
	assert.False(t, result.Flattened)
	require.NotEmpty(t, result.Output)

	values, err := p.ReadFormValues(result.Output)
	require.NoError(t, err)
	assert.Equal(t, "DOE", values["Line1a_FamilyName"])
	assert.Equal(t, "ANA", values["Line1b_GivenName"])
	assert.Equal(t, "X", values["Part1_Checkbox1a"])
	assert.Equal(t, "", values["Part1_Checkbox1b"])
	assert.Equal(t, "Female", values["Part2_Gender"])
	assert.Equal(t, "123456789", values["Part2.Line7_AlienNumber"])
}

func TestFillFormLeavesTemplateUntouched(t *testing.T) {
	p := newTestProcessor(t)
	template := loadFixture(t, "i765_form.pdf")
	original := append([]byte(nil), template...)

	_, err := p.FillForm(template, standardFillFields(), FillOptions{})
	require.NoError(t, err)
	assert.True(t, bytes.Equal(original, template))
}

func TestFillFormCollectsUnmatchedFields(t *testing.T) {
	p := newTestProcessor(t)
	fields := append(standardFillFields(), resolvedField("mystery", "Part9_Nothing", "zzz"))

	result, err := p.FillForm(loadFixture(t, "i765_form.pdf"), fields, FillOptions{})
	require.NoError(t, err)
	require.NotEmpty(t, result.Output)

	assert.Len(t, result.FilledFields, 5)
	require.Len(t, result.FailedFields, 1)
	assert.Equal(t, "mystery", result.FailedFields[0].FieldID)
	assert.Equal(t, "Part9_Nothing", result.FailedFields[0].PDFFieldName)
	assert.Contains(t, result.FailedFields[0].Reason, "no matching field")
}

func TestFillFormSkipsReadOnlyFields(t *testing.T) {
	p := newTestProcessor(t)
	fields := []mapper.ResolvedField{resolvedField("edition", "Edition_Date", "OVERWRITE")}

	result, err := p.FillForm(loadFixture(t, "i765_form.pdf"), fields, FillOptions{})
	require.NoError(t, err)
	require.Len(t, result.FailedFields, 1)
	assert.Contains(t, result.FailedFields[0].Reason, "read-only")

	values, err := p.ReadFormValues(result.Output)
	require.NoError(t, err)
	assert.Equal(t, "01/20/25", values["Edition_Date"])
}

func TestFillFormDiscoversOnState(t *testing.T) {
	p := newTestProcessor(t)
	fields := []mapper.ResolvedField{resolvedField("reason_replacement", "Part1_Checkbox1b", "X")}

	result, err := p.FillForm(loadFixture(t, "i765_form.pdf"), fields, FillOptions{})
	require.NoError(t, err)
	assert.Empty(t, result.FailedFields)

	// The box declares On, not Yes; the discovered state must be used.
	docFields, err := p.FormFieldNames(result.Output)
	require.NoError(t, err)
	for _, f := range docFields {
		if f.FullName == "Part1_Checkbox1b" {
			assert.Equal(t, "On", f.Value)
			return
		}
	}
	t.Fatal("Part1_Checkbox1b not found in output")
}

func TestFillFormUnchecksOnFalsyValue(t *testing.T) {
	p := newTestProcessor(t)
	template := loadFixture(t, "i765_form.pdf")

	checked, err := p.FillForm(template, []mapper.ResolvedField{
		resolvedField("reason_initial", "Part1_Checkbox1a", "X"),
	}, FillOptions{})
	require.NoError(t, err)

	cleared, err := p.FillForm(checked.Output, []mapper.ResolvedField{
		resolvedField("reason_initial", "Part1_Checkbox1a", ""),
	}, FillOptions{})
	require.NoError(t, err)

	values, err := p.ReadFormValues(cleared.Output)
	require.NoError(t, err)
	assert.Equal(t, "", values["Part1_Checkbox1a"])
}

func TestFillFormRadioRejectsUnknownOption(t *testing.T) {
	p := newTestProcessor(t)
	fields := []mapper.ResolvedField{resolvedField("gender", "Part2_Gender", "Purple")}

	result, err := p.FillForm(loadFixture(t, "i765_form.pdf"), fields, FillOptions{})
	require.NoError(t, err)
	require.Len(t, result.FailedFields, 1)
	assert.Contains(t, result.FailedFields[0].Reason, "no option")
}

func TestFillFormTruncatesToMaxLen(t *testing.T) {
	p := newTestProcessor(t)
	long := strings.Repeat("A", 40)
	fields := []mapper.ResolvedField{resolvedField("family_name", "Line1a_FamilyName", long)}

	result, err := p.FillForm(loadFixture(t, "i765_form.pdf"), fields, FillOptions{})
	require.NoError(t, err)

	values, err := p.ReadFormValues(result.Output)
	require.NoError(t, err)
	assert.Equal(t, strings.Repeat("A", 33), values["Line1a_FamilyName"])
}

func TestFillFormSetsNeedAppearances(t *testing.T) {
	p := newTestProcessor(t)
	result, err := p.FillForm(loadFixture(t, "i765_form.pdf"), standardFillFields(), FillOptions{})
	require.NoError(t, err)

	ctx, err := readDocument(result.Output)
	require.NoError(t, err)
	acroDict, err := acroFormDict(ctx)
	require.NoError(t, err)
	require.NotNil(t, acroDict)
	_, found := acroDict.Find("NeedAppearances")
	assert.True(t, found)
}

func TestFillFormMissingTemplate(t *testing.T) {
	p := newTestProcessor(t)
	_, err := p.FillForm(nil, standardFillFields(), FillOptions{})
	require.Error(t, err)
	assert.True(t, IsKind(err, ErrorKindTemplateMissing))
}

func TestFillFormUnreadableTemplate(t *testing.T) {
	p := newTestProcessor(t)
	_, err := p.FillForm([]byte("this is not a pdf document"), standardFillFields(), FillOptions{})
	require.Error(t, err)
	assert.True(t, IsKind(err, ErrorKindTemplateInvalid))
}

func TestFillFormTemplateWithoutFields(t *testing.T) {
	p := newTestProcessor(t)
	_, err := p.FillForm(loadFixture(t, "plain.pdf"), standardFillFields(), FillOptions{})
	require.Error(t, err)
	assert.True(t, IsKind(err, ErrorKindNoFormFields))
}

func TestGenerateBothVersions(t *testing.T) {
	p := newTestProcessor(t)
	editable, flattened, err := p.GenerateBothVersions(loadFixture(t, "i765_form.pdf"), standardFillFields())
	require.NoError(t, err)

	assert.False(t, editable.Flattened)
	assert.True(t, flattened.Flattened)
	require.NotEmpty(t, editable.Output)
	require.NotEmpty(t, flattened.Output)

	edFields, err := p.FormFieldNames(editable.Output)
	require.NoError(t, err)
	assert.Len(t, edFields, 7)

	flFields, err := p.FormFieldNames(flattened.Output)
	require.NoError(t, err)
	assert.Empty(t, flFields)

	info, err := p.TemplateInfo(flattened.Output)
	require.NoError(t, err)
	assert.Equal(t, 1, info.PageCount)
	assert.Zero(t, info.FieldCount)
}

func TestReadFormDataResolvesDescriptors(t *testing.T) {
	p := newTestProcessor(t)
	s := &schema.Schema{Parts: []schema.Part{{
		Name: "Part 2. Information About You",
		Fields: []schema.FieldDescriptor{
			{FieldID: "family_name", Type: schema.TypeText, PDFFieldName: "Line1a_FamilyName", DataPath: "personalInfo.familyName"},
			{FieldID: "given_name", Type: schema.TypeText, PDFFieldName: "Line1b_GivenName", DataPath: "personalInfo.givenName"},
			{FieldID: "reason_initial", Type: schema.TypeCheckbox, PDFFieldName: "Part1_Checkbox1a", DataPath: "eligibilityInfo.applicationReason"},
		},
	}}}

	data, err := p.ReadFormData(loadFixture(t, "i765_form.pdf"), s)
	require.NoError(t, err)

	// Only the prefilled given name carries a value; empty fields and
	// unchecked boxes stay out so a round trip never blanks profile
	// data.
	assert.Equal(t, map[string]string{"given_name": "MIGUEL"}, data)
}

func TestReadFormDataAfterFill(t *testing.T) {
	p := newTestProcessor(t)
	s := &schema.Schema{Parts: []schema.Part{{
		Fields: []schema.FieldDescriptor{
			{FieldID: "family_name", Type: schema.TypeText, PDFFieldName: "Line1a_FamilyName", DataPath: "personalInfo.familyName"},
			{FieldID: "reason_initial", Type: schema.TypeCheckbox, PDFFieldName: "Part1_Checkbox1a", DataPath: "eligibilityInfo.applicationReason"},
		},
	}}}

	result, err := p.FillForm(loadFixture(t, "i765_form.pdf"), standardFillFields(), FillOptions{})
	require.NoError(t, err)

	data, err := p.ReadFormData(result.Output, s)
	require.NoError(t, err)
	assert.Equal(t, "DOE", data["family_name"])
	assert.Equal(t, "X", data["reason_initial"])
}

func TestIsAffirmative(t *testing.T) {
	p := NewProcessor("X", logging.NewNopLogger())
	tests := []struct {
		value string
		want  bool
	}{
		{"X", true},
		{"true", true},
		{"TRUE", true},
		{"checked", true},
		{"Yes", true},
		{"initial", true},
		{"Replacement", true},
		{"renewal", true},
		{" X ", true},
		{"", false},
		{"no", false},
		{"0", false},
		{"DOE", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, p.isAffirmative(tt.value), "value %q", tt.value)
	}
}

func TestTextStringEncoding(t *testing.T) {
	ascii := textString("DOE")
	raw, err := hex.DecodeString(string(ascii))
	require.NoError(t, err)
	assert.Equal(t, []byte("DOE"), raw)

	accented := textString("José")
	raw, err = hex.DecodeString(string(accented))
	require.NoError(t, err)
	require.True(t, len(raw) >= 2)
	assert.Equal(t, []byte{0xFE, 0xFF}, raw[:2])
}
