// Package validation checks profile data against the rules a field schema
// declares before the data is committed to a form.
package validation

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/visaflow/mcp-i765-filler/internal/form/schema"
	"github.com/visaflow/mcp-i765-filler/internal/locale"
	"github.com/visaflow/mcp-i765-filler/internal/logging"
	"github.com/visaflow/mcp-i765-filler/internal/profile"
)

// Machine-readable rule codes carried by ValidationError.
const (
	CodeRequired    = "required"
	CodePattern     = "pattern_mismatch"
	CodeTooShort    = "too_short"
	CodeTooLong     = "too_long"
	CodeInvalidDate = "invalid_date"
)

// ValidationError describes one failed rule on one field. Failures are
// data, not Go errors: a validation pass always completes.
type ValidationError struct {
	FieldID string `json:"field_id"`
	Path    string `json:"path"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// PartResult groups the outcome for one schema part.
type PartResult struct {
	Name    string            `json:"name"`
	Passed  bool              `json:"passed"`
	Summary string            `json:"summary"`
	Errors  []ValidationError `json:"errors,omitempty"`
}

// Result is the outcome of one validation pass.
type Result struct {
	Valid   bool         `json:"valid"`
	Checked int          `json:"checked_fields"`
	Failed  int          `json:"failed_fields"`
	Parts   []PartResult `json:"parts"`
}

// Errors flattens every part's failures into one list.
func (r *Result) Errors() []ValidationError {
	var out []ValidationError
	for _, part := range r.Parts {
		out = append(out, part.Errors...)
	}
	return out
}

// Validator applies descriptor rules with localized messages. Patterns are
// compiled once at construction; an uncompilable pattern is logged and its
// rule skipped rather than failing every value.
type Validator struct {
	schema   *schema.Schema
	tr       *locale.Translator
	logger   logging.Logger
	patterns map[string]*regexp.Regexp
}

// New builds a Validator over s.
func New(s *schema.Schema, tr *locale.Translator, logger logging.Logger) *Validator {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	v := &Validator{
		schema:   s,
		tr:       tr,
		logger:   logger,
		patterns: make(map[string]*regexp.Regexp),
	}
	for _, f := range s.Fields() {
		if f.Validation == nil || f.Validation.Pattern == "" {
			continue
		}
		re, err := regexp.Compile(f.Validation.Pattern)
		if err != nil {
			logger.Warn("unusable validation pattern", map[string]interface{}{
				"field_id": f.FieldID,
				"pattern":  f.Validation.Pattern,
				"error":    err.Error(),
			})
			continue
		}
		v.patterns[f.FieldID] = re
	}
	return v
}

// ValidateProfile checks every descriptor's rule against the value at its
// data path.
func (v *Validator) ValidateProfile(p *profile.ApplicantProfile) (*Result, error) {
	doc, err := p.Document()
	if err != nil {
		return nil, fmt.Errorf("projecting profile: %w", err)
	}
	lookup := func(f schema.FieldDescriptor) (string, bool) {
		raw, ok := profile.Get(doc, profile.ParsePath(f.DataPath))
		if !ok || raw == nil {
			return "", false
		}
		return leafString(raw), true
	}
	return v.run(lookup), nil
}

// ValidateFormData checks raw form values keyed by descriptor id, the shape
// produced by a mapping pass or a form read-back.
func (v *Validator) ValidateFormData(formData map[string]string) *Result {
	lookup := func(f schema.FieldDescriptor) (string, bool) {
		value, ok := formData[f.FieldID]
		return value, ok
	}
	return v.run(lookup)
}

func (v *Validator) run(lookup func(schema.FieldDescriptor) (string, bool)) *Result {
	result := &Result{Valid: true}
	for _, part := range v.schema.Parts {
		pr := PartResult{Name: part.Name, Passed: true}
		for _, f := range part.Fields {
			if f.FieldID == "" || f.DataPath == "" {
				continue
			}
			result.Checked++
			value, present := lookup(f)
			errs := v.validateValue(f, value, present)
			if len(errs) > 0 {
				pr.Errors = append(pr.Errors, errs...)
				pr.Passed = false
				result.Failed++
			}
		}
		if pr.Passed {
			pr.Summary = v.tr.T("validation.section_passed")
		} else {
			pr.Summary = v.tr.Tf("validation.section_failed", len(pr.Errors))
			result.Valid = false
		}
		result.Parts = append(result.Parts, pr)
	}
	return result
}

func (v *Validator) validateValue(f schema.FieldDescriptor, value string, present bool) []ValidationError {
	rule := f.Validation
	var errs []ValidationError
	fail := func(code, messageKey string, args ...interface{}) {
		errs = append(errs, ValidationError{
			FieldID: f.FieldID,
			Path:    f.DataPath,
			Code:    code,
			Message: v.tr.Tf(messageKey, args...),
		})
	}

	empty := !present || strings.TrimSpace(value) == ""
	if rule != nil && rule.Required && empty {
		fail(CodeRequired, "validation.required")
		return errs
	}
	if empty {
		return errs
	}

	if f.Type == schema.TypeDate && !validDate(value) {
		fail(CodeInvalidDate, messageKeyOr(rule, "validation.invalid_date"))
		return errs
	}

	if rule == nil {
		return errs
	}
	if re, ok := v.patterns[f.FieldID]; ok && !re.MatchString(value) {
		fail(CodePattern, messageKeyOr(rule, "validation.pattern_mismatch"))
	}
	length := len([]rune(value))
	if rule.MinLength > 0 && length < rule.MinLength {
		fail(CodeTooShort, "validation.too_short", rule.MinLength)
	}
	if rule.MaxLength > 0 && length > rule.MaxLength {
		fail(CodeTooLong, "validation.too_long", rule.MaxLength)
	}
	return errs
}

// messageKeyOr prefers the rule's own message key for domain-specific
// wording; required and length failures keep their canonical keys because
// those messages carry the bound.
func messageKeyOr(rule *schema.ValidationRule, fallback string) string {
	if rule != nil && rule.MessageKey != "" {
		return rule.MessageKey
	}
	return fallback
}

func validDate(value string) bool {
	value = strings.TrimSpace(value)
	for _, layout := range []string{"2006-01-02", "01/02/2006"} {
		if _, err := time.Parse(layout, value); err == nil {
			return true
		}
	}
	return false
}

// leafString renders a profile leaf for rule checks.
func leafString(raw interface{}) string {
	switch v := raw.(type) {
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return fmt.Sprintf("%v", v)
	}
}
