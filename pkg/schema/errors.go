package schema

import (
	"errors"
	"fmt"
	"strings"
)

// Error kinds. Field level kinds wrap ErrValidation, so errors.Is(err, ErrValidation)
// matches every value failure regardless of its precise kind.
var (
	// ErrValidation is returned when a value fails coercion or a constraint
	// (choices, max length, custom validator).
	ErrValidation = errors.New("validation failed")

	// ErrFieldRequired is returned when a required field is missing or empty.
	ErrFieldRequired = fmt.Errorf("%w: field is required", ErrValidation)

	// ErrImmutableField is returned when an immutable field is written twice.
	ErrImmutableField = fmt.Errorf("%w: field is immutable", ErrValidation)

	// ErrModelNotFound is returned when a model name cannot be resolved in a registry.
	ErrModelNotFound = fmt.Errorf("%w: model not found", ErrValidation)

	// ErrModelValidation is returned when a post-construction hook rejects a document.
	ErrModelValidation = fmt.Errorf("%w: model validation failed", ErrValidation)

	// ErrImmutableDocument is returned on any write to a sealed immutable document.
	ErrImmutableDocument = errors.New("document is immutable")

	// ErrModelConstruction is returned when document data is not a mapping.
	ErrModelConstruction = errors.New("document data must be a mapping")

	// ErrConfiguration is returned when a model or field is declared with invalid options.
	ErrConfiguration = errors.New("invalid schema configuration")
)

// kinds lists the sentinels from most to least specific.
var kinds = []error{
	ErrFieldRequired,
	ErrImmutableField,
	ErrModelNotFound,
	ErrModelValidation,
	ErrImmutableDocument,
	ErrModelConstruction,
	ErrConfiguration,
	ErrValidation,
}

// KindOf returns the most specific error kind matched by err, or nil if err does
// not belong to the taxonomy.
func KindOf(err error) error {
	if err == nil {
		return nil
	}
	for _, k := range kinds {
		if errors.Is(err, k) {
			return k
		}
	}
	return nil
}

// KindName returns a short label for the kind of err ("required", "immutable_field", ...).
// It returns "unknown" for errors outside the taxonomy.
func KindName(err error) string {
	switch KindOf(err) {
	case ErrFieldRequired:
		return "required"
	case ErrImmutableField:
		return "immutable_field"
	case ErrModelNotFound:
		return "model_not_found"
	case ErrModelValidation:
		return "model_validation"
	case ErrImmutableDocument:
		return "immutable_document"
	case ErrModelConstruction:
		return "construction"
	case ErrConfiguration:
		return "configuration"
	case ErrValidation:
		return "validation"
	default:
		return "unknown"
	}
}

// FieldError represents a single field failure.
type FieldError struct {
	Model  string // Owning model name
	Field  string // Effective field name
	Reason string // Human-readable reason for failure
	Value  any    // The value that failed
	Kind   error  // One of the sentinel kinds
	Err    error  // Underlying cause, if any
}

// NewFieldError creates a FieldError of the given kind.
func NewFieldError(kind error, model, field string, value any, reason string, cause error) *FieldError {
	return &FieldError{
		Model:  model,
		Field:  field,
		Reason: reason,
		Value:  value,
		Kind:   kind,
		Err:    cause,
	}
}

func (e *FieldError) Error() string {
	key := e.Field
	if e.Model != "" {
		key = e.Model + "." + e.Field
	}
	msg := fmt.Sprintf("field %q: %s", key, e.Reason)
	if e.Value != nil {
		msg += fmt.Sprintf(" (got %T)", e.Value)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap exposes both the kind and the cause to errors.Is and errors.As.
func (e *FieldError) Unwrap() []error {
	errs := make([]error, 0, 2)
	if e.Kind != nil {
		errs = append(errs, e.Kind)
	}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

// AggregateError represents multiple validation failures.
type AggregateError struct {
	Errors []error
}

func (e *AggregateError) Error() string {
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "%d validation errors:\n", len(e.Errors))
	for i, err := range e.Errors {
		fmt.Fprintf(&sb, "  %d. %s\n", i+1, err.Error())
	}
	return sb.String()
}

func (e *AggregateError) Unwrap() []error {
	return e.Errors
}

// ValidationErrors returns all validation errors if err is an AggregateError.
// Otherwise returns nil.
func ValidationErrors(err error) []error {
	var aggr *AggregateError
	if errors.As(err, &aggr) {
		return aggr.Errors
	}
	return nil
}
