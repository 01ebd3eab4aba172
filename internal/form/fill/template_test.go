package fill

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/visaflow/mcp-i765-filler/internal/logging"
)

func TestValidateFile(t *testing.T) {
	dir := t.TempDir()
	goodPath := filepath.Join(dir, "i765.pdf")
	require.NoError(t, os.WriteFile(goodPath, loadFixture(t, "i765_form.pdf"), 0o640))

	textPath := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(textPath, []byte("notes"), 0o640))

	emptyPath := filepath.Join(dir, "empty.pdf")
	require.NoError(t, os.WriteFile(emptyPath, nil, 0o640))

	v := NewTemplateValidator(10 << 20)

	tests := []struct {
		name     string
		path     string
		wantKind ErrorKind
		wantOK   bool
	}{
		{name: "valid template", path: goodPath, wantOK: true},
		{name: "empty path", path: "", wantKind: ErrorKindTemplateMissing},
		{name: "missing file", path: filepath.Join(dir, "gone.pdf"), wantKind: ErrorKindTemplateMissing},
		{name: "directory", path: dir, wantKind: ErrorKindTemplateInvalid},
		{name: "wrong extension", path: textPath, wantKind: ErrorKindTemplateInvalid},
		{name: "empty file", path: emptyPath, wantKind: ErrorKindTemplateInvalid},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidateFile(tt.path)
			if tt.wantOK {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, IsKind(err, tt.wantKind), "got %v", err)
		})
	}
}

func TestValidateFileSizeLimit(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "big.pdf")
	require.NoError(t, os.WriteFile(path, loadFixture(t, "i765_form.pdf"), 0o640))

	v := NewTemplateValidator(64)
	err := v.ValidateFile(path)
	require.Error(t, err)
	assert.True(t, IsKind(err, ErrorKindTemplateInvalid))
	assert.Contains(t, err.Error(), "too large")
}

func TestValidateBytes(t *testing.T) {
	v := NewTemplateValidator(10 << 20)

	assert.NoError(t, v.ValidateBytes(loadFixture(t, "i765_form.pdf")))

	err := v.ValidateBytes(nil)
	require.Error(t, err)
	assert.True(t, IsKind(err, ErrorKindTemplateInvalid))

	err = v.ValidateBytes([]byte("<html>not found</html>"))
	require.Error(t, err)
	assert.True(t, IsKind(err, ErrorKindTemplateInvalid))
}

func TestTemplateInfo(t *testing.T) {
	p := NewProcessor("X", logging.NewNopLogger())
	data := loadFixture(t, "i765_form.pdf")

	info, err := p.TemplateInfo(data)
	require.NoError(t, err)

	assert.Equal(t, 1, info.PageCount)
	assert.Equal(t, 7, info.FieldCount)
	assert.Equal(t, 4, info.FieldTypes[FieldText])
	assert.Equal(t, 2, info.FieldTypes[FieldCheckbox])
	assert.Equal(t, 1, info.FieldTypes[FieldRadio])
	assert.Equal(t, "Application For Employment Authorization", info.Title)
	assert.Equal(t, "Fixture Writer", info.Producer)
	assert.Equal(t, int64(len(data)), info.SizeBytes)
}

func TestTemplateInfoWithoutForm(t *testing.T) {
	p := NewProcessor("X", logging.NewNopLogger())

	info, err := p.TemplateInfo(loadFixture(t, "plain.pdf"))
	require.NoError(t, err)
	assert.Equal(t, 1, info.PageCount)
	assert.Zero(t, info.FieldCount)
	assert.Empty(t, info.FieldTypes)
}

func TestTemplateInfoUnreadable(t *testing.T) {
	p := NewProcessor("X", logging.NewNopLogger())

	_, err := p.TemplateInfo([]byte("garbage"))
	require.Error(t, err)
	assert.True(t, IsKind(err, ErrorKindTemplateInvalid))
}
