package errors

import (
	stderrors "errors"
	"fmt"
	"time"
)

// PDFError represents a failure while loading, reading or filling a PDF form
type PDFError struct {
	Type      ErrorType `json:"type"`
	Message   string    `json:"message"`
	Context   string    `json:"context,omitempty"`
	Container string    `json:"container,omitempty"`
	Field     string    `json:"field,omitempty"`
	ObjectNum int       `json:"object_num,omitempty"`
	GenNum    int       `json:"generation_num,omitempty"`
	FilePath  string    `json:"file_path,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	Err       error     `json:"-"`
}

// ErrorType represents the category of a form processing error
type ErrorType int

const (
	ErrorTypeUnknown ErrorType = iota
	// ErrorTypeParse means the document bytes are malformed.
	ErrorTypeParse
	// ErrorTypeMissingEntry means a structurally required entry is absent.
	ErrorTypeMissingEntry
	// ErrorTypeResolution means a reference in the object graph cannot be resolved.
	ErrorTypeResolution
	// ErrorTypeIO means reading or writing bytes failed.
	ErrorTypeIO
)

// Sentinels usable with errors.Is. Only the Type is compared.
var (
	ErrParse        = &PDFError{Type: ErrorTypeParse}
	ErrMissingEntry = &PDFError{Type: ErrorTypeMissingEntry}
	ErrResolution   = &PDFError{Type: ErrorTypeResolution}
	ErrIO           = &PDFError{Type: ErrorTypeIO}
)

// Error implements the error interface
func (e *PDFError) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if e.Context != "" {
		return fmt.Sprintf("[%s] %s: %s", e.Type.String(), msg, e.Context)
	}
	return fmt.Sprintf("[%s] %s", e.Type.String(), msg)
}

// Unwrap returns the underlying cause, if any
func (e *PDFError) Unwrap() error {
	return e.Err
}

// Is reports whether target is a PDFError of the same type.
func (e *PDFError) Is(target error) bool {
	t, ok := target.(*PDFError)
	if !ok {
		return false
	}
	return t.Type == e.Type
}

// String returns a string representation of the ErrorType
func (et ErrorType) String() string {
	switch et {
	case ErrorTypeParse:
		return "PARSE_ERROR"
	case ErrorTypeMissingEntry:
		return "MISSING_ENTRY"
	case ErrorTypeResolution:
		return "RESOLUTION_ERROR"
	case ErrorTypeIO:
		return "IO_ERROR"
	default:
		return "UNKNOWN"
	}
}

// NewPDFError creates a new PDFError
func NewPDFError(errorType ErrorType, message string) *PDFError {
	return &PDFError{
		Type:      errorType,
		Message:   message,
		Timestamp: time.Now(),
	}
}

// WrapError wraps a standard error as a PDFError
func WrapError(errorType ErrorType, err error) *PDFError {
	return &PDFError{
		Type:      errorType,
		Message:   err.Error(),
		Timestamp: time.Now(),
		Err:       err,
	}
}

// NewParseError reports malformed document bytes
func NewParseError(err error) *PDFError {
	return WrapError(ErrorTypeParse, err)
}

// NewMissingEntry reports that container has no entry named field
func NewMissingEntry(container, field string) *PDFError {
	e := NewPDFError(ErrorTypeMissingEntry,
		fmt.Sprintf("missing required entry '%s' in %s dictionary", field, container))
	e.Container = container
	e.Field = field
	return e
}

// NewResolutionError reports a reference that cannot be resolved
func NewResolutionError(objNum, genNum int, message string) *PDFError {
	e := NewPDFError(ErrorTypeResolution, message)
	return e.WithLocation(objNum, genNum)
}

// NewIOError reports a read or write failure on filePath
func NewIOError(filePath string, err error) *PDFError {
	return WrapError(ErrorTypeIO, err).WithFile(filePath)
}

// WithContext adds context to an existing PDFError
func (e *PDFError) WithContext(context string) *PDFError {
	e.Context = context
	return e
}

// WithLocation adds object identity to an existing PDFError
func (e *PDFError) WithLocation(objNum, genNum int) *PDFError {
	e.ObjectNum = objNum
	e.GenNum = genNum
	if objNum > 0 && e.Context == "" {
		e.Context = fmt.Sprintf("object %d %d R", objNum, genNum)
	}
	return e
}

// WithFile adds file path information to an existing PDFError
func (e *PDFError) WithFile(filePath string) *PDFError {
	e.FilePath = filePath
	return e
}

// IsType reports whether err carries a PDFError of the given type
func IsType(err error, errorType ErrorType) bool {
	var pdfErr *PDFError
	if !stderrors.As(err, &pdfErr) {
		return false
	}
	return pdfErr.Type == errorType
}

// TypeOf returns the ErrorType carried by err, or ErrorTypeUnknown
func TypeOf(err error) ErrorType {
	var pdfErr *PDFError
	if !stderrors.As(err, &pdfErr) {
		return ErrorTypeUnknown
	}
	return pdfErr.Type
}
