package fill

import (
	"errors"
	"fmt"
)

// ErrorKind classifies template and fill failures.
type ErrorKind int

const (
	ErrorKindUnknown ErrorKind = iota
	ErrorKindTemplateMissing
	ErrorKindTemplateInvalid
	ErrorKindNoFormFields
	ErrorKindEncode
)

// String returns the string representation of the error kind.
func (k ErrorKind) String() string {
	switch k {
	case ErrorKindTemplateMissing:
		return "TEMPLATE_MISSING"
	case ErrorKindTemplateInvalid:
		return "TEMPLATE_INVALID"
	case ErrorKindNoFormFields:
		return "NO_FORM_FIELDS"
	case ErrorKindEncode:
		return "ENCODE_FAILED"
	default:
		return "UNKNOWN"
	}
}

// FillError is a structured fill failure. Per-field problems are not
// errors; they are collected as FailedField entries while the fill
// continues. A FillError means the operation as a whole could not
// produce a document.
type FillError struct {
	Kind    ErrorKind `json:"kind"`
	Message string    `json:"message"`
	Path    string    `json:"path,omitempty"`
	Err     error     `json:"-"`
}

func (e *FillError) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Kind, e.Message)
	if e.Path != "" {
		msg = fmt.Sprintf("%s (path: %s)", msg, e.Path)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *FillError) Unwrap() error {
	return e.Err
}

// Recoverable reports whether retrying with different input could
// succeed. Encode failures are not recoverable; template problems are,
// once the caller supplies a usable template.
func (e *FillError) Recoverable() bool {
	switch e.Kind {
	case ErrorKindTemplateMissing, ErrorKindTemplateInvalid, ErrorKindNoFormFields:
		return true
	default:
		return false
	}
}

// NewError creates a FillError with the given kind and message.
func NewError(kind ErrorKind, message string) *FillError {
	return &FillError{Kind: kind, Message: message}
}

// NewErrorWithPath creates a FillError that carries the offending path.
func NewErrorWithPath(kind ErrorKind, message, path string) *FillError {
	return &FillError{Kind: kind, Message: message, Path: path}
}

// WrapError creates a FillError wrapping an underlying error.
func WrapError(kind ErrorKind, message string, err error) *FillError {
	return &FillError{Kind: kind, Message: message, Err: err}
}

// IsKind reports whether err is a FillError of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var fe *FillError
	if errors.As(err, &fe) {
		return fe.Kind == kind
	}
	return false
}

// FailedField records a descriptor that could not be written into the
// document. The fill keeps going; callers get the full list back.
type FailedField struct {
	FieldID      string `json:"field_id"`
	PDFFieldName string `json:"pdf_field_name"`
	Reason       string `json:"reason"`
}
