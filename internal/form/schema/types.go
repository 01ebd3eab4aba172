// Package schema defines the declarative field configuration that binds
// form questions to profile data paths and PDF field names.
package schema

import "sort"

// FieldType classifies how a field's value is formatted and written.
type FieldType string

const (
	TypeText     FieldType = "Text Input"
	TypeCheckbox FieldType = "Checkbox"
	TypeRadio    FieldType = "Radio"
	TypeDate     FieldType = "Date Input"
)

// Valid reports whether t is one of the known field types.
func (t FieldType) Valid() bool {
	switch t {
	case TypeText, TypeCheckbox, TypeRadio, TypeDate:
		return true
	}
	return false
}

// Selectable reports whether the type is always represented downstream even
// when the underlying value is empty or false.
func (t FieldType) Selectable() bool {
	return t == TypeCheckbox || t == TypeRadio
}

// CheckedKey is the value_mapping key consulted for boolean values.
const CheckedKey = "checked"

// ValidationRule is the optional per-field validation configuration.
type ValidationRule struct {
	Required   bool   `json:"required,omitempty"`
	Pattern    string `json:"pattern,omitempty"`
	MinLength  int    `json:"min_length,omitempty"`
	MaxLength  int    `json:"max_length,omitempty"`
	MessageKey string `json:"message_key,omitempty"`
}

// FieldDescriptor binds one form question to a profile data path and a
// target PDF field name. Read-only at runtime.
type FieldDescriptor struct {
	FieldID      string            `json:"field_id"`
	ItemNumber   string            `json:"item_number,omitempty"`
	Label        string            `json:"label,omitempty"`
	DataPath     string            `json:"data_path"`
	PDFFieldName string            `json:"pdf_field_name,omitempty"`
	Type         FieldType         `json:"type"`
	ValueMapping map[string]string `json:"value_mapping,omitempty"`
	Validation   *ValidationRule   `json:"validation,omitempty"`
}

// TargetPDFName returns the declared PDF field name, falling back to the
// item number and then the field id.
func (d FieldDescriptor) TargetPDFName() string {
	if d.PDFFieldName != "" {
		return d.PDFFieldName
	}
	if d.ItemNumber != "" {
		return d.ItemNumber
	}
	return d.FieldID
}

// Part is one ordered section of the form.
type Part struct {
	Name   string            `json:"name,omitempty"`
	Fields []FieldDescriptor `json:"fields"`
}

// Schema is the full field configuration: an ordered list of parts. Loaded
// once and treated as immutable afterward.
type Schema struct {
	Parts []Part `json:"parts"`
}

// Empty returns the degraded schema used when no configuration source is
// reachable.
func Empty() *Schema {
	return &Schema{Parts: []Part{}}
}

// Fields returns every descriptor in part order.
func (s *Schema) Fields() []FieldDescriptor {
	var out []FieldDescriptor
	for _, part := range s.Parts {
		out = append(out, part.Fields...)
	}
	return out
}

// FieldByID looks a descriptor up by its field id.
func (s *Schema) FieldByID(id string) (FieldDescriptor, bool) {
	for _, part := range s.Parts {
		for _, f := range part.Fields {
			if f.FieldID == id {
				return f, true
			}
		}
	}
	return FieldDescriptor{}, false
}

// Len returns the total number of descriptors.
func (s *Schema) Len() int {
	n := 0
	for _, part := range s.Parts {
		n += len(part.Fields)
	}
	return n
}

// DuplicateFieldIDs returns every field id declared by more than one
// descriptor, sorted. FieldByID resolves to the first declaration, so
// duplicates usually indicate a schema-authoring mistake.
func (s *Schema) DuplicateFieldIDs() []string {
	counts := make(map[string]int)
	for _, f := range s.Fields() {
		counts[f.FieldID]++
	}
	var dups []string
	for id, n := range counts {
		if n > 1 {
			dups = append(dups, id)
		}
	}
	sort.Strings(dups)
	return dups
}

// AmbiguousMappings returns, per field id, the mapped values that appear
// under more than one source key. Reversing such a mapping is ambiguous
// (first match wins), so schema authors are expected to keep mapped values
// unique per descriptor; the loader warns about every entry reported here.
func (s *Schema) AmbiguousMappings() map[string][]string {
	out := make(map[string][]string)
	for _, f := range s.Fields() {
		if len(f.ValueMapping) < 2 {
			continue
		}
		seen := make(map[string]int, len(f.ValueMapping))
		for _, mapped := range f.ValueMapping {
			seen[mapped]++
		}
		var dups []string
		for mapped, count := range seen {
			if count > 1 {
				dups = append(dups, mapped)
			}
		}
		if len(dups) > 0 {
			out[f.FieldID] = dups
		}
	}
	return out
}
