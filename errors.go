package modelgraph

import (
	"errors"
	"fmt"
	"strings"
)

// Error codes (exported consts for IDE completion and type safety by convention)
const (
	CodeInvalidType   = "invalid_type"
	CodeRequired      = "required"
	CodeUnknownKey    = "unknown_key"
	CodeUnknownClass  = "unknown_class"
	CodeTooSmall      = "too_small"
	CodeTooBig        = "too_big"
	CodeTooShort      = "too_short"
	CodeTooLong       = "too_long"
	CodePattern       = "pattern"
	CodeInvalidEnum   = "invalid_enum"
	CodeInvalidFormat = "invalid_format"
)

// FieldError represents a single validation entry.
type FieldError struct {
	Keypath string // Dotted keypath from the traversal root (for example: posts.2.title).
	Code    string // One of the codes listed above.
	Message string
	Cause   error // Optional: underlying error.
	// Params carries structured parameters (e.g., {"min":1, "max":10, "got":42})
	// for i18n and observability.
	Params map[string]any
}

// Error renders the entry as "code at keypath: message".
func (e FieldError) Error() string {
	kp := e.Keypath
	if kp == "" {
		kp = "(root)"
	}
	if e.Message == "" {
		return fmt.Sprintf("%s at %s", e.Code, kp)
	}
	return fmt.Sprintf("%s at %s: %s", e.Code, kp, e.Message)
}

// ValidationError is a collection of field-level errors that implements error.
type ValidationError []FieldError

// Error summarizes the first few entries.
func (ve ValidationError) Error() string {
	if len(ve) == 0 {
		return ""
	}
	const maxShown = 3
	b := &strings.Builder{}
	n := len(ve)
	lim := n
	if lim > maxShown {
		lim = maxShown
	}
	for i := 0; i < lim; i++ {
		if i > 0 {
			b.WriteString("; ")
		}
		it := ve[i]
		kp := it.Keypath
		if kp == "" {
			kp = "(root)"
		}
		fmt.Fprintf(b, "%s at %s", it.Code, kp)
	}
	if n > lim {
		fmt.Fprintf(b, "; ... (total %d)", n)
	}
	return b.String()
}

// AppendErrors appends entries to the destination, initializing the slice when
// needed.
func AppendErrors(dst ValidationError, more ...FieldError) ValidationError {
	if dst == nil {
		dst = ValidationError{}
	}
	dst = append(dst, more...)
	return dst
}

// AsValidation extracts a ValidationError from an error using errors.As
// internally.
func AsValidation(err error) (ValidationError, bool) {
	if err == nil {
		return nil, false
	}
	var ve ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}

// KeyMismatchError reports keys passed to Update that are not declared fields
// of the receiving class. The message lists every offending key; no field is
// mutated when it is returned.
type KeyMismatchError struct {
	Class string
	Keys  []string
}

func (e *KeyMismatchError) Error() string {
	return fmt.Sprintf("'%s' not allowed in %s.", strings.Join(e.Keys, "', '"), e.Class)
}
