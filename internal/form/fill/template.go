package fill

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// previewRuneLimit caps the extracted text preview in template details.
const previewRuneLimit = 500

// TemplateValidator checks template files before they are parsed.
type TemplateValidator struct {
	maxFileSize int64
}

// NewTemplateValidator creates a validator with the given size limit.
func NewTemplateValidator(maxFileSize int64) *TemplateValidator {
	return &TemplateValidator{maxFileSize: maxFileSize}
}

// ValidateFile checks that a template path points at a readable PDF
// file within the size limit.
func (v *TemplateValidator) ValidateFile(path string) error {
	if path == "" {
		return NewError(ErrorKindTemplateMissing, "template path cannot be empty")
	}

	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return NewErrorWithPath(ErrorKindTemplateMissing, "template file does not exist", path)
	}
	if err != nil {
		return &FillError{Kind: ErrorKindTemplateInvalid, Message: "cannot access template file", Path: path, Err: err}
	}
	if info.IsDir() {
		return NewErrorWithPath(ErrorKindTemplateInvalid, "template path is a directory, not a file", path)
	}
	if !strings.HasSuffix(strings.ToLower(path), ".pdf") {
		return NewErrorWithPath(ErrorKindTemplateInvalid, "template file is not a PDF", path)
	}
	if info.Size() == 0 {
		return NewErrorWithPath(ErrorKindTemplateInvalid, "template file is empty", path)
	}
	if info.Size() > v.maxFileSize {
		return NewErrorWithPath(ErrorKindTemplateInvalid,
			fmt.Sprintf("template file too large: %d bytes (max %d bytes)", info.Size(), v.maxFileSize), path)
	}
	return nil
}

// ValidateBytes checks that the data parses as a PDF document.
func (v *TemplateValidator) ValidateBytes(data []byte) error {
	if len(data) == 0 {
		return NewError(ErrorKindTemplateInvalid, "template data is empty")
	}
	if v.maxFileSize > 0 && int64(len(data)) > v.maxFileSize {
		return NewError(ErrorKindTemplateInvalid,
			fmt.Sprintf("template data too large: %d bytes (max %d bytes)", len(data), v.maxFileSize))
	}
	if _, err := readDocument(data); err != nil {
		return WrapError(ErrorKindTemplateInvalid, "template is not a readable PDF", err)
	}
	return nil
}

// TemplateDetails describes a form template document.
type TemplateDetails struct {
	PageCount   int            `json:"page_count"`
	FieldCount  int            `json:"field_count"`
	FieldTypes  map[string]int `json:"field_types,omitempty"`
	Title       string         `json:"title,omitempty"`
	Producer    string         `json:"producer,omitempty"`
	SizeBytes   int64          `json:"size_bytes"`
	TextPreview string         `json:"text_preview,omitempty"`
}

// TemplateInfo inspects a template: page count, field inventory, and
// document metadata, plus a short text preview when text extraction
// succeeds.
func (p *Processor) TemplateInfo(data []byte) (*TemplateDetails, error) {
	ctx, err := readDocument(data)
	if err != nil {
		return nil, WrapError(ErrorKindTemplateInvalid, "parsing template", err)
	}

	idx, err := buildFieldIndex(ctx)
	if err != nil {
		return nil, WrapError(ErrorKindTemplateInvalid, "indexing template fields", err)
	}

	details := &TemplateDetails{
		PageCount:  ctx.PageCount,
		FieldCount: len(idx.fields),
		SizeBytes:  int64(len(data)),
	}
	if len(idx.fields) > 0 {
		details.FieldTypes = make(map[string]int)
		for _, f := range idx.fields {
			details.FieldTypes[f.Type]++
		}
	}
	details.Title, details.Producer = documentInfo(ctx)
	details.TextPreview = textPreview(data)

	p.logger.Debug("template inspected", map[string]interface{}{
		"pages":  details.PageCount,
		"fields": details.FieldCount,
	})
	return details, nil
}

func documentInfo(ctx *model.Context) (title, producer string) {
	if ctx.Info == nil {
		return "", ""
	}
	infoDict, err := ctx.DereferenceDict(*ctx.Info)
	if err != nil || infoDict == nil {
		return "", ""
	}
	return dictString(ctx, infoDict, "Title"), dictString(ctx, infoDict, "Producer")
}

// textPreview extracts plain text page by page until the preview limit
// is reached. Extraction failures are not errors; forms are mostly
// widgets and some pages simply have no text.
func textPreview(data []byte) string {
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return ""
	}

	var b strings.Builder
	for pageNum := 1; pageNum <= r.NumPage(); pageNum++ {
		page := r.Page(pageNum)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		b.WriteString(text)
		if len([]rune(b.String())) >= previewRuneLimit {
			break
		}
	}

	preview := []rune(strings.TrimSpace(b.String()))
	if len(preview) > previewRuneLimit {
		preview = preview[:previewRuneLimit]
	}
	return string(preview)
}
