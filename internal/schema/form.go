package schema

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
)

var (
	emailRE = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phoneRE = regexp.MustCompile(`^\+[1-9]\d{1,14}$`) // E.164
)

// ErrValidation is returned by Submit when any field violation exists.
// Per-field messages are available through Errors.
var ErrValidation = errors.New("form validation failed")

// FileHandle is an opaque reference to a selected file. The form carries it
// through to the submit callback without serializing it.
type FileHandle struct {
	Name string
	Size int64
	Ref  any
}

// Form collects values for one schema and validates them on submit.
type Form struct {
	schema *FormSchema
	values map[string]any
	errors map[string]string
}

func NewForm(s *FormSchema) *Form {
	return &Form{
		schema: s,
		values: make(map[string]any),
		errors: make(map[string]string),
	}
}

// Set records a value for a field and clears any previous error on it.
func (f *Form) Set(key string, value any) {
	f.values[key] = value
	delete(f.errors, key)
}

// SetNumber parses raw per the field's declared numeric type before storing:
// integers take no fractional part, numbers do. The stored value is numeric,
// not a string.
func (f *Form) SetNumber(key, raw string) error {
	field := f.schema.Field(key)
	if field == nil {
		return fmt.Errorf("unknown field %q", key)
	}
	switch field.Type {
	case TypeInteger:
		n, err := strconv.Atoi(raw)
		if err != nil {
			return err
		}
		f.Set(key, n)
	case TypeNumber:
		n, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return err
		}
		f.Set(key, n)
	default:
		return fmt.Errorf("field %q is not numeric", key)
	}
	return nil
}

// Toggle checks or unchecks one option of an array field. The committed value
// is the ordered sequence of currently-checked options.
func (f *Form) Toggle(key, option string, on bool) {
	current, _ := f.values[key].([]string)
	if on {
		for _, v := range current {
			if v == option {
				return
			}
		}
		f.Set(key, append(current, option))
		return
	}
	next := make([]string, 0, len(current))
	for _, v := range current {
		if v != option {
			next = append(next, v)
		}
	}
	f.Set(key, next)
}

// Attach stores a file handle for an upload field.
func (f *Form) Attach(key string, h FileHandle) {
	f.Set(key, h)
}

func (f *Form) Values() map[string]any { return f.values }

// Errors returns the field violations found by the last Validate pass.
func (f *Form) Errors() map[string]string { return f.errors }

// Validate runs all field checks and returns true when the form is clean.
// One message is kept per offending field.
func (f *Form) Validate() bool {
	f.errors = make(map[string]string)

	for _, field := range f.schema.Fields {
		value, present := f.values[field.FieldKey]

		if field.Required && isMissing(value, present) {
			f.errors[field.FieldKey] = fmt.Sprintf("%s is required", field.Label)
			continue
		}

		s, isString := value.(string)
		if !isString || s == "" {
			continue
		}

		switch field.Type {
		case TypeEmail:
			if !emailRE.MatchString(s) {
				f.errors[field.FieldKey] = "Invalid email format"
			}
		case TypePhone:
			if !phoneRE.MatchString(s) {
				f.errors[field.FieldKey] = "Invalid phone format (use E.164 format)"
			}
		}
	}

	return len(f.errors) == 0
}

// isMissing mirrors the truthiness semantics the platform has always had:
// absent, empty string, and numeric zero all fail a required check; an empty
// checklist that was touched does not.
func isMissing(value any, present bool) bool {
	if !present || value == nil {
		return true
	}
	switch v := value.(type) {
	case string:
		return v == ""
	case int:
		return v == 0
	case int64:
		return v == 0
	case float64:
		return v == 0
	}
	return false
}

// Submit validates and, only when no violation exists, invokes cb with the
// full collected mapping (including unvalidated values and file handles).
// The callback's error is returned as-is.
func (f *Form) Submit(ctx context.Context, cb func(ctx context.Context, values map[string]any) error) error {
	if !f.Validate() {
		return ErrValidation
	}
	return cb(ctx, f.values)
}
