package mapper

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	isoDateLayout  = "2006-01-02"
	formDateLayout = "01/02/2006"
)

// FormatDate renders a date value the way the paper form expects it,
// MM/DD/YYYY. ISO dates and RFC 3339 timestamps convert; values already in
// form layout pass through canonicalized; anything unparseable formats to
// the empty string.
func FormatDate(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}
	if t, err := time.Parse(formDateLayout, value); err == nil {
		return t.Format(formDateLayout)
	}
	if t, err := time.Parse(isoDateLayout, value); err == nil {
		return t.Format(formDateLayout)
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t.Format(formDateLayout)
	}
	return ""
}

// ParseDate converts the form layout back to ISO. ISO input passes through
// canonicalized; anything else is returned unchanged so no data is
// destroyed on the way back in.
func ParseDate(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}
	if t, err := time.Parse(formDateLayout, value); err == nil {
		return t.Format(isoDateLayout)
	}
	if t, err := time.Parse(isoDateLayout, value); err == nil {
		return t.Format(isoDateLayout)
	}
	return value
}

// isTrue is the forward checkbox test: boolean true or the string "true".
func isTrue(raw interface{}) bool {
	switch v := raw.(type) {
	case bool:
		return v
	case string:
		return v == "true"
	default:
		return false
	}
}

// isChecked is the reverse checkbox test over read-back values. The
// configured mark token and the usual affirmative spellings count as
// checked.
func (m *Mapper) isChecked(value string) bool {
	if value == m.mark {
		return true
	}
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "true", "yes", "on", "checked", "x", "1":
		return true
	}
	return false
}

// coerceString renders a profile leaf as a string. JSON numbers drop their
// float64 noise so 5 stays "5".
func coerceString(raw interface{}) string {
	switch v := raw.(type) {
	case nil:
		return ""
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	default:
		return fmt.Sprintf("%v", v)
	}
}
