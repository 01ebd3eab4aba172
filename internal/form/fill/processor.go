package fill

import (
	"bytes"
	"fmt"
	"strings"
	"unicode/utf16"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"

	"github.com/visaflow/mcp-i765-filler/internal/form/mapper"
	"github.com/visaflow/mcp-i765-filler/internal/form/schema"
	"github.com/visaflow/mcp-i765-filler/internal/logging"
)

// Processor fills form templates with resolved field values.
type Processor struct {
	mark   string
	logger logging.Logger
}

// NewProcessor creates a form processor. An empty markToken falls back
// to the mapper default.
func NewProcessor(markToken string, logger logging.Logger) *Processor {
	if markToken == "" {
		markToken = mapper.DefaultMarkToken
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Processor{mark: markToken, logger: logger}
}

// FillOptions control how a fill is produced.
type FillOptions struct {
	Flatten bool `json:"flatten"`
}

// FillResult is the outcome of one fill operation. FieldCount is the
// number of interactive fields the document carries; FailedFields lists
// descriptors that found no home in it, and their presence does not
// invalidate the output.
type FillResult struct {
	Output       []byte        `json:"-"`
	Flattened    bool          `json:"flattened"`
	FieldCount   int           `json:"field_count"`
	FilledFields []string      `json:"filled_fields"`
	FailedFields []FailedField `json:"failed_fields,omitempty"`
}

// FillForm writes the resolved values into a copy of the template and
// serializes the result. The template bytes are never modified; every
// call parses a fresh document. Fields that cannot be matched or
// written are collected in FailedFields while the fill continues.
func (p *Processor) FillForm(template []byte, fields []mapper.ResolvedField, opts FillOptions) (*FillResult, error) {
	if len(template) == 0 {
		return nil, NewError(ErrorKindTemplateMissing, "no template data provided")
	}

	ctx, err := readDocument(template)
	if err != nil {
		return nil, WrapError(ErrorKindTemplateInvalid, "parsing template", err)
	}
	idx, err := buildFieldIndex(ctx)
	if err != nil {
		return nil, WrapError(ErrorKindTemplateInvalid, "indexing template fields", err)
	}
	if len(idx.fields) == 0 {
		return nil, NewError(ErrorKindNoFormFields, "template has no form fields")
	}

	aliases := buildAliasTable(idx.fields)
	result := &FillResult{
		Flattened:    opts.Flatten,
		FieldCount:   len(idx.fields),
		FilledFields: make([]string, 0, len(fields)),
	}

	for _, rf := range fields {
		declared := rf.PDFFieldName
		field, strategy, ok := resolveField(idx, aliases, declared, rf.Field.ItemNumber)
		if !ok {
			result.FailedFields = append(result.FailedFields, FailedField{
				FieldID:      rf.Field.FieldID,
				PDFFieldName: declared,
				Reason:       "no matching field in document",
			})
			p.logger.Debug("field not matched", map[string]interface{}{
				"field_id": rf.Field.FieldID,
				"declared": declared,
			})
			continue
		}
		if field.ReadOnly {
			result.FailedFields = append(result.FailedFields, FailedField{
				FieldID:      rf.Field.FieldID,
				PDFFieldName: field.FullName,
				Reason:       "field is read-only",
			})
			continue
		}
		if err := p.writeField(ctx, field, rf.Value); err != nil {
			result.FailedFields = append(result.FailedFields, FailedField{
				FieldID:      rf.Field.FieldID,
				PDFFieldName: field.FullName,
				Reason:       err.Error(),
			})
			continue
		}
		result.FilledFields = append(result.FilledFields, field.FullName)
		p.logger.Debug("field written", map[string]interface{}{
			"field_id": rf.Field.FieldID,
			"pdf_name": field.FullName,
			"strategy": strategy,
		})
	}

	if opts.Flatten {
		if err := flattenForm(ctx, p.mark); err != nil {
			return nil, WrapError(ErrorKindEncode, "flattening form", err)
		}
	} else {
		setNeedAppearances(ctx)
	}

	out, err := writeDocument(ctx)
	if err != nil {
		return nil, WrapError(ErrorKindEncode, "serializing filled document", err)
	}
	result.Output = out

	p.logger.Info("form filled", map[string]interface{}{
		"filled":    len(result.FilledFields),
		"failed":    len(result.FailedFields),
		"flattened": opts.Flatten,
	})
	return result, nil
}

// GenerateBothVersions produces an editable fill and a flattened fill
// from the same template and values. The two results hold independent
// buffers.
func (p *Processor) GenerateBothVersions(template []byte, fields []mapper.ResolvedField) (editable, flattened *FillResult, err error) {
	editable, err = p.FillForm(template, fields, FillOptions{})
	if err != nil {
		return nil, nil, fmt.Errorf("generating editable version: %w", err)
	}
	flattened, err = p.FillForm(template, fields, FillOptions{Flatten: true})
	if err != nil {
		return nil, nil, fmt.Errorf("generating flattened version: %w", err)
	}
	return editable, flattened, nil
}

// FormFieldNames lists every terminal form field of a document in
// declaration order.
func (p *Processor) FormFieldNames(template []byte) ([]Field, error) {
	idx, err := p.index(template)
	if err != nil {
		return nil, err
	}
	fields := make([]Field, 0, len(idx.fields))
	for _, f := range idx.fields {
		fields = append(fields, *f)
	}
	return fields, nil
}

// ReadFormValues dumps current field values keyed by full PDF name.
// Checked buttons read back as the mark token so the output slots
// straight into a refill.
func (p *Processor) ReadFormValues(template []byte) (map[string]string, error) {
	idx, err := p.index(template)
	if err != nil {
		return nil, err
	}
	values := make(map[string]string, len(idx.fields))
	for _, f := range idx.fields {
		switch f.Type {
		case FieldButton, FieldSignature:
			continue
		case FieldCheckbox:
			if f.Checked() {
				values[f.FullName] = p.mark
			} else {
				values[f.FullName] = ""
			}
		default:
			values[f.FullName] = f.Value
		}
	}
	return values, nil
}

// ReadFormData extracts values keyed by schema descriptor id, resolving
// each descriptor against the document with the same matching chain the
// fill uses. Empty values are omitted so a round trip never blanks
// profile data.
func (p *Processor) ReadFormData(template []byte, s *schema.Schema) (map[string]string, error) {
	idx, err := p.index(template)
	if err != nil {
		return nil, err
	}
	aliases := buildAliasTable(idx.fields)

	data := make(map[string]string)
	for _, f := range s.Fields() {
		field, _, ok := resolveField(idx, aliases, f.TargetPDFName(), f.ItemNumber)
		if !ok {
			continue
		}
		var value string
		switch field.Type {
		case FieldButton, FieldSignature:
			continue
		case FieldCheckbox:
			if !field.Checked() {
				continue
			}
			value = p.mark
		default:
			value = field.Value
		}
		if value == "" {
			continue
		}
		data[f.FieldID] = value
	}
	return data, nil
}

func (p *Processor) index(template []byte) (*fieldIndex, error) {
	ctx, err := readDocument(template)
	if err != nil {
		return nil, WrapError(ErrorKindTemplateInvalid, "parsing document", err)
	}
	idx, err := buildFieldIndex(ctx)
	if err != nil {
		return nil, WrapError(ErrorKindTemplateInvalid, "indexing document fields", err)
	}
	return idx, nil
}

func (p *Processor) writeField(ctx *model.Context, f *Field, value string) error {
	switch f.Type {
	case FieldText, FieldChoice:
		writeTextValue(f, value)
		return nil
	case FieldCheckbox:
		p.writeCheckboxValue(ctx, f, value)
		return nil
	case FieldRadio:
		return p.writeRadioValue(ctx, f, value)
	default:
		return fmt.Errorf("unsupported field type %q", f.Type)
	}
}

// writeTextValue sets /V and drops stale widget appearances so viewers
// regenerate them. Values longer than /MaxLen are clipped.
func writeTextValue(f *Field, value string) {
	if f.MaxLen > 0 {
		if runes := []rune(value); len(runes) > f.MaxLen {
			value = string(runes[:f.MaxLen])
		}
	}
	f.dict.Update("V", textString(value))
	for _, w := range f.widgets {
		delete(w, "AP")
	}
	f.Value = value
}

func (p *Processor) writeCheckboxValue(ctx *model.Context, f *Field, value string) {
	if p.isAffirmative(value) {
		setButtonState(ctx, f, f.onState())
		return
	}
	setButtonState(ctx, f, "Off")
}

// writeRadioValue selects the option whose export name matches the
// value. A bare affirmative only works when the group has exactly one
// option.
func (p *Processor) writeRadioValue(ctx *model.Context, f *Field, value string) error {
	v := strings.TrimSpace(value)
	if v == "" {
		setButtonState(ctx, f, "Off")
		return nil
	}
	for _, state := range f.OnStates {
		if strings.EqualFold(state, v) || normalizeFieldName(state) == normalizeFieldName(v) {
			setButtonState(ctx, f, state)
			return nil
		}
	}
	if p.isAffirmative(v) && len(f.OnStates) == 1 {
		setButtonState(ctx, f, f.OnStates[0])
		return nil
	}
	return fmt.Errorf("no option %q on radio group (have: %s)", value, strings.Join(f.OnStates, ", "))
}

// isAffirmative reports whether a value means "check this box". The
// configured mark token counts, as do the usual yes-ish spellings and
// the application reason tokens, so tokenized form data round-trips.
func (p *Processor) isAffirmative(value string) bool {
	v := strings.TrimSpace(value)
	if v == "" {
		return false
	}
	if v == p.mark {
		return true
	}
	switch strings.ToLower(v) {
	case "true", "checked", "yes", "initial", "replacement", "renewal":
		return true
	}
	return false
}

// onState returns the button's on appearance name, defaulting to Yes
// when the widget declares none.
func (f *Field) onState() string {
	if len(f.OnStates) > 0 {
		return f.OnStates[0]
	}
	return "Yes"
}

// setButtonState writes /V on the field and /AS on each widget. A
// widget whose appearance dictionary lacks the target state goes to
// Off; that is how a radio group ends up with one kid selected.
func setButtonState(ctx *model.Context, f *Field, state string) {
	f.dict.Update("V", types.Name(state))
	for _, w := range f.widgets {
		as := state
		if state != "Off" {
			if states := appearanceStates(ctx, w); len(states) > 0 && !containsState(states, state) {
				as = "Off"
			}
		}
		w.Update("AS", types.Name(as))
	}
	if state == "Off" {
		f.Value = ""
	} else {
		f.Value = state
	}
}

func containsState(states []string, state string) bool {
	for _, s := range states {
		if s == state {
			return true
		}
	}
	return false
}

// textString encodes a form value as a PDF text string. ASCII is
// stored verbatim; anything else becomes UTF-16BE with a byte order
// mark.
func textString(s string) types.HexLiteral {
	if isASCII(s) {
		return types.NewHexLiteral([]byte(s))
	}
	enc := utf16.Encode([]rune(s))
	buf := make([]byte, 0, 2+len(enc)*2)
	buf = append(buf, 0xFE, 0xFF)
	for _, u := range enc {
		buf = append(buf, byte(u>>8), byte(u))
	}
	return types.NewHexLiteral(buf)
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= 0x80 {
			return false
		}
	}
	return true
}

func setNeedAppearances(ctx *model.Context) {
	acroDict, err := acroFormDict(ctx)
	if err != nil || acroDict == nil {
		return
	}
	acroDict.Update("NeedAppearances", types.Boolean(true))
}

// readDocument parses PDF data with relaxed validation. Government
// forms routinely trip strict validators.
func readDocument(data []byte) (*model.Context, error) {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	ctx, err := api.ReadContext(bytes.NewReader(data), conf)
	if err != nil {
		return nil, err
	}
	if err := ctx.EnsurePageCount(); err != nil {
		return nil, err
	}
	return ctx, nil
}

func writeDocument(ctx *model.Context) ([]byte, error) {
	var buf bytes.Buffer
	if err := api.WriteContext(ctx, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
