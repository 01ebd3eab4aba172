// Package mapper translates between ApplicantProfile data and the flat
// field values a form document consumes, in both directions.
package mapper

import (
	"fmt"
	"sort"

	"github.com/visaflow/mcp-i765-filler/internal/form/schema"
	"github.com/visaflow/mcp-i765-filler/internal/logging"
	"github.com/visaflow/mcp-i765-filler/internal/profile"
)

// DefaultMarkToken is written into checkbox fields when the configuration
// does not override it.
const DefaultMarkToken = "X"

// ResolvedField pairs one descriptor with the value computed for it.
// Rebuilt on every mapping pass, never persisted.
type ResolvedField struct {
	Value         string                 `json:"value"`
	PDFFieldName  string                 `json:"pdf_field_name"`
	Field         schema.FieldDescriptor `json:"field"`
	OriginalValue interface{}            `json:"original_value,omitempty"`
}

// Resolved holds one mapping pass keyed by descriptor id.
type Resolved map[string]ResolvedField

// Values flattens a mapping pass to descriptor id → formatted value, the
// shape MapFormToProfile accepts.
func (r Resolved) Values() map[string]string {
	out := make(map[string]string, len(r))
	for id, rf := range r {
		out[id] = rf.Value
	}
	return out
}

// Mapper computes form values from a profile and writes form data back.
type Mapper struct {
	schema *schema.Schema
	mark   string
	logger logging.Logger
}

// New builds a Mapper over s. An empty markToken falls back to
// DefaultMarkToken.
func New(s *schema.Schema, markToken string, logger logging.Logger) *Mapper {
	if markToken == "" {
		markToken = DefaultMarkToken
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Mapper{schema: s, mark: markToken, logger: logger}
}

// MarkToken returns the literal written into checked boxes.
func (m *Mapper) MarkToken() string { return m.mark }

// Schema returns the descriptor set the mapper operates on.
func (m *Mapper) Schema() *schema.Schema { return m.schema }

// MapProfileToForm resolves every descriptor against the profile. An entry
// appears when the profile value is present and non-empty, and always for
// Checkbox and Radio descriptors so the unchecked state stays representable
// downstream. A value-mapping hit is already PDF-displayable and skips
// per-type formatting; unmapped values are formatted by field type.
func (m *Mapper) MapProfileToForm(p *profile.ApplicantProfile) (Resolved, error) {
	doc, err := p.Document()
	if err != nil {
		return nil, fmt.Errorf("projecting profile: %w", err)
	}
	out := make(Resolved)
	for _, f := range m.schema.Fields() {
		if f.FieldID == "" || f.DataPath == "" {
			continue
		}
		raw, present := profile.Get(doc, profile.ParsePath(f.DataPath))
		if !includes(f, raw, present) {
			continue
		}
		out[f.FieldID] = ResolvedField{
			Value:         m.formatValue(f, raw),
			PDFFieldName:  f.TargetPDFName(),
			Field:         f,
			OriginalValue: raw,
		}
	}
	if m.schema.Len() == 0 {
		m.logger.Warn("mapping ran against an empty schema", map[string]interface{}{
			"profile_id": p.Metadata.ID,
		})
	}
	return out, nil
}

// Ordered projects a mapping pass into schema declaration order, the order
// fills and scratch rendering consume.
func (m *Mapper) Ordered(r Resolved) []ResolvedField {
	out := make([]ResolvedField, 0, len(r))
	for _, f := range m.schema.Fields() {
		if rf, ok := r[f.FieldID]; ok {
			out = append(out, rf)
		}
	}
	return out
}

// MapFormToProfile writes form data keyed by descriptor id back into the
// profile, reversing value mappings and per-type formatting. Descriptors
// without an entry in formData stay untouched; intermediate containers
// along each data path are created as needed.
func (m *Mapper) MapFormToProfile(formData map[string]string, p *profile.ApplicantProfile) error {
	doc, err := p.Document()
	if err != nil {
		return fmt.Errorf("projecting profile: %w", err)
	}
	for _, f := range m.schema.Fields() {
		if f.FieldID == "" || f.DataPath == "" {
			continue
		}
		value, present := formData[f.FieldID]
		if !present {
			continue
		}
		parsed, write := m.parseValue(f, value)
		if !write {
			continue
		}
		if err := profile.Set(doc, profile.ParsePath(f.DataPath), parsed); err != nil {
			return fmt.Errorf("writing %s: %w", f.DataPath, err)
		}
	}
	if err := p.ApplyDocument(doc); err != nil {
		return fmt.Errorf("applying form data: %w", err)
	}
	p.Touch()
	return nil
}

// includes is the inclusion rule for the forward pass.
func includes(f schema.FieldDescriptor, raw interface{}, present bool) bool {
	if f.Type.Selectable() {
		return true
	}
	if !present || raw == nil {
		return false
	}
	if s, isString := raw.(string); isString && s == "" {
		return false
	}
	return true
}

func (m *Mapper) formatValue(f schema.FieldDescriptor, raw interface{}) string {
	if mapped, ok := applyMapping(f.ValueMapping, raw); ok {
		return mapped
	}
	switch f.Type {
	case schema.TypeDate:
		return FormatDate(coerceString(raw))
	case schema.TypeCheckbox:
		if isTrue(raw) {
			return m.mark
		}
		return ""
	default:
		return coerceString(raw)
	}
}

// applyMapping translates raw through the descriptor's value mapping.
// Booleans translate through the "checked" key only; any other value
// matches against its exact string form. The second return reports whether
// a translation happened.
func applyMapping(mapping map[string]string, raw interface{}) (string, bool) {
	if len(mapping) == 0 {
		return "", false
	}
	if b, isBool := raw.(bool); isBool {
		if !b {
			return "", false
		}
		v, ok := mapping[schema.CheckedKey]
		return v, ok
	}
	v, ok := mapping[coerceString(raw)]
	return v, ok
}

// parseValue reverses one form value. The boolean reports whether the
// value should be written at all: a token-mapped checkbox that matched
// nothing carries no information about its data path (several descriptors
// of one choice group share it), so it is skipped rather than written as
// false.
func (m *Mapper) parseValue(f schema.FieldDescriptor, value string) (interface{}, bool) {
	if key, ok := reverseMapping(f.ValueMapping, value); ok {
		if key == schema.CheckedKey {
			return true, true
		}
		return key, true
	}
	switch f.Type {
	case schema.TypeCheckbox:
		if tokenMappedOnly(f.ValueMapping) {
			return nil, false
		}
		return m.isChecked(value), true
	case schema.TypeDate:
		return ParseDate(value), true
	default:
		return value, true
	}
}

// reverseMapping finds the source key whose mapped value equals value.
// Keys are scanned in sorted order so an ambiguous mapping (two keys, one
// value) resolves deterministically to the first key; the schema loader
// warns about such mappings at load time.
func reverseMapping(mapping map[string]string, value string) (string, bool) {
	if len(mapping) == 0 || value == "" {
		return "", false
	}
	keys := make([]string, 0, len(mapping))
	for k := range mapping {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if mapping[k] == value {
			return k, true
		}
	}
	return "", false
}

// tokenMappedOnly reports whether the mapping translates domain tokens but
// has no checked key, i.e. the descriptor is one choice of a group sharing
// a data path.
func tokenMappedOnly(mapping map[string]string) bool {
	if len(mapping) == 0 {
		return false
	}
	_, hasChecked := mapping[schema.CheckedKey]
	return !hasChecked
}
