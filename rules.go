package modelgraph

import (
	"fmt"
	"math"
	"regexp"
	"time"
	"unicode/utf8"
)

// Rule hooks into the three traversal phases of a field. Transform coerces an
// incoming value during Set/New, Validate checks an already-stored value, and
// ToJSON projects a stored value into serializable form. Rules receive the
// traversal Context so errors can be keyed by the full keypath; nested and
// collection values are recursed into by the engine, not by rules.
type Rule interface {
	Transform(tc *Context, v any) (any, error)
	Validate(tc *Context, v any) error
	ToJSON(tc *Context, v any) (any, error)
}

// BaseRule implements Rule as a passthrough. Embed it to override a subset of
// phases.
type BaseRule struct{}

func (BaseRule) Transform(_ *Context, v any) (any, error) { return v, nil }
func (BaseRule) Validate(*Context, any) error             { return nil }
func (BaseRule) ToJSON(_ *Context, v any) (any, error)    { return v, nil }

// ---- built-in rules ----

// MinLengthRule rejects strings and lists shorter than n.
func MinLengthRule(n int) Rule { return minLengthRule{n: n} }

type minLengthRule struct {
	BaseRule
	n int
}

func (r minLengthRule) Validate(tc *Context, v any) error {
	if l, ok := lengthOf(v); ok && l < r.n {
		return ValidationError{tc.fieldError(CodeTooShort, map[string]any{"min": r.n, "got": l})}
	}
	return nil
}

// MaxLengthRule rejects strings and lists longer than n.
func MaxLengthRule(n int) Rule { return maxLengthRule{n: n} }

type maxLengthRule struct {
	BaseRule
	n int
}

func (r maxLengthRule) Validate(tc *Context, v any) error {
	if l, ok := lengthOf(v); ok && l > r.n {
		return ValidationError{tc.fieldError(CodeTooLong, map[string]any{"max": r.n, "got": l})}
	}
	return nil
}

// RangeRule rejects numbers outside [min, max]; either bound may be nil.
func RangeRule(min, max *float64) Rule { return rangeRule{min: min, max: max} }

type rangeRule struct {
	BaseRule
	min, max *float64
}

func (r rangeRule) Validate(tc *Context, v any) error {
	f, ok := numberOf(v)
	if !ok {
		return nil
	}
	if r.min != nil && f < *r.min {
		return ValidationError{tc.fieldError(CodeTooSmall, map[string]any{"min": *r.min, "got": f})}
	}
	if r.max != nil && f > *r.max {
		return ValidationError{tc.fieldError(CodeTooBig, map[string]any{"max": *r.max, "got": f})}
	}
	return nil
}

// EnumRule rejects string values outside the allowed set.
func EnumRule(values ...string) Rule { return enumRule{values: values} }

type enumRule struct {
	BaseRule
	values []string
}

func (r enumRule) Validate(tc *Context, v any) error {
	s, ok := v.(string)
	if !ok {
		return nil
	}
	for _, allowed := range r.values {
		if s == allowed {
			return nil
		}
	}
	return ValidationError{tc.fieldError(CodeInvalidEnum, map[string]any{"got": s})}
}

// MatchRule rejects strings that do not match the pattern.
func MatchRule(pattern string) (Rule, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, err
	}
	return matchRule{re: re}, nil
}

// MustMatchRule is like MatchRule but panics on a bad pattern.
func MustMatchRule(pattern string) Rule {
	r, err := MatchRule(pattern)
	if err != nil {
		panic(err)
	}
	return r
}

type matchRule struct {
	BaseRule
	re *regexp.Regexp
}

func (r matchRule) Validate(tc *Context, v any) error {
	s, ok := v.(string)
	if !ok {
		return nil
	}
	if !r.re.MatchString(s) {
		return ValidationError{tc.fieldError(CodePattern, map[string]any{"pattern": r.re.String(), "got": s})}
	}
	return nil
}

// ---- scalar coercion and projection ----

// coerceScalar converts a raw input value into the canonical stored
// representation of a scalar kind: string, int64, float64, bool, time.Time.
func coerceScalar(tc *Context, kind FieldKind, v any) (any, ValidationError) {
	switch kind {
	case KindAny:
		return v, nil
	case KindString:
		if s, ok := v.(string); ok {
			return s, nil
		}
	case KindInt:
		switch n := v.(type) {
		case int:
			return int64(n), nil
		case int64:
			return n, nil
		case float64:
			if n == math.Trunc(n) {
				return int64(n), nil
			}
		}
	case KindFloat:
		switch n := v.(type) {
		case float64:
			return n, nil
		case int:
			return float64(n), nil
		case int64:
			return float64(n), nil
		}
	case KindBool:
		if b, ok := v.(bool); ok {
			return b, nil
		}
	case KindDatetime:
		switch t := v.(type) {
		case time.Time:
			return t, nil
		case string:
			parsed, err := parseRFC3339(t)
			if err != nil {
				return nil, ValidationError{tc.fieldError(CodeInvalidFormat, map[string]any{"expected": "RFC3339", "got": t})}
			}
			return parsed, nil
		}
	}
	return nil, ValidationError{tc.fieldError(CodeInvalidType, map[string]any{"expected": kind.String()})}
}

// scalarKindOK reports whether a stored value conforms to the scalar kind.
// Update bypasses coercion, so Validate re-checks kinds here.
func scalarKindOK(kind FieldKind, v any) bool {
	switch kind {
	case KindAny:
		return true
	case KindString:
		_, ok := v.(string)
		return ok
	case KindInt:
		switch v.(type) {
		case int, int64:
			return true
		}
		return false
	case KindFloat:
		switch v.(type) {
		case float64, int, int64:
			return true
		}
		return false
	case KindBool:
		_, ok := v.(bool)
		return ok
	case KindDatetime:
		_, ok := v.(time.Time)
		return ok
	default:
		return false
	}
}

// scalarToJSON projects a stored scalar into a serializable value.
func scalarToJSON(kind FieldKind, v any) any {
	if kind == KindDatetime {
		if t, ok := v.(time.Time); ok {
			return formatRFC3339Canonical(t)
		}
	}
	return v
}

func parseRFC3339(s string) (time.Time, error) {
	// Accept RFC3339Nano (trailing zeros optional)
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		if t2, err2 := time.Parse(time.RFC3339, s); err2 == nil {
			return t2, nil
		}
		if d, err3 := time.Parse("2006-01-02", s); err3 == nil {
			return d, nil
		}
		return time.Time{}, err
	}
	return t, nil
}

func formatRFC3339Canonical(t time.Time) string {
	// Normalize to UTC and format using RFC3339Nano (Go trims trailing zeros)
	return t.UTC().Format(time.RFC3339Nano)
}

// ---- helpers ----

func lengthOf(v any) (int, bool) {
	switch t := v.(type) {
	case string:
		return utf8.RuneCountInString(t), true
	case *OwnedList:
		return t.Len(), true
	case []any:
		return len(t), true
	default:
		return 0, false
	}
}

func numberOf(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case float64:
		return n, true
	default:
		return 0, false
	}
}

func stringify(v any) string { return fmt.Sprintf("%v", v) }

// asFieldErrors adapts an error returned by a Rule into keypath-scoped
// entries; plain errors become a single entry at the context's keypath.
func asFieldErrors(tc *Context, err error) ValidationError {
	if err == nil {
		return nil
	}
	if ve, ok := AsValidation(err); ok {
		return ve
	}
	return ValidationError{{Keypath: tc.KeypathRoot, Code: CodeInvalidFormat, Message: err.Error(), Cause: err}}
}
