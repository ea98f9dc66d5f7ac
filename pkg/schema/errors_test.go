package schema

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		err  error
		kind error
		name string
	}{
		{ErrFieldRequired, ErrFieldRequired, "required"},
		{fmt.Errorf("wrapped: %w", ErrImmutableField), ErrImmutableField, "immutable_field"},
		{ErrModelNotFound, ErrModelNotFound, "model_not_found"},
		{ErrModelValidation, ErrModelValidation, "model_validation"},
		{ErrImmutableDocument, ErrImmutableDocument, "immutable_document"},
		{ErrModelConstruction, ErrModelConstruction, "construction"},
		{ErrConfiguration, ErrConfiguration, "configuration"},
		{ErrValidation, ErrValidation, "validation"},
		{errors.New("boom"), nil, "unknown"},
		{nil, nil, "unknown"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.kind, KindOf(tt.err), "KindOf(%v)", tt.err)
		assert.Equal(t, tt.name, KindName(tt.err), "KindName(%v)", tt.err)
	}
}

func TestFieldKindsAreValidationErrors(t *testing.T) {
	for _, k := range []error{ErrFieldRequired, ErrImmutableField, ErrModelNotFound, ErrModelValidation} {
		assert.ErrorIs(t, k, ErrValidation)
	}
	for _, k := range []error{ErrImmutableDocument, ErrModelConstruction, ErrConfiguration} {
		assert.NotErrorIs(t, k, ErrValidation)
	}
}

func TestFieldError(t *testing.T) {
	cause := errors.New("expected int")
	err := NewFieldError(ErrValidation, "Person", "age", "abc", "invalid value", cause)

	assert.Equal(t, `field "Person.age": invalid value (got string): expected int`, err.Error())
	assert.ErrorIs(t, err, ErrValidation)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, ErrValidation, KindOf(err))

	var fe *FieldError
	require.ErrorAs(t, fmt.Errorf("ctx: %w", err), &fe)
	assert.Equal(t, "age", fe.Field)

	bare := NewFieldError(ErrFieldRequired, "", "name", nil, "field is required", nil)
	assert.Equal(t, `field "name": field is required`, bare.Error())
	assert.Equal(t, "required", KindName(bare))
}

func TestAggregateError(t *testing.T) {
	single := &AggregateError{Errors: []error{
		NewFieldError(ErrFieldRequired, "Post", "title", nil, "field is required", nil),
	}}
	assert.Equal(t, `field "Post.title": field is required`, single.Error())

	aggr := &AggregateError{Errors: []error{
		NewFieldError(ErrFieldRequired, "Post", "title", nil, "field is required", nil),
		NewFieldError(ErrValidation, "Post", "views", "x", "invalid value", nil),
	}}
	assert.Contains(t, aggr.Error(), "2 validation errors")
	assert.Contains(t, aggr.Error(), "1. field \"Post.title\"")
	assert.Contains(t, aggr.Error(), "2. field \"Post.views\"")
	assert.ErrorIs(t, aggr, ErrFieldRequired)

	errs := ValidationErrors(fmt.Errorf("load: %w", aggr))
	assert.Len(t, errs, 2)
	assert.Nil(t, ValidationErrors(errors.New("plain")))
}
