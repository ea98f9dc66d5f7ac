// Package model implements declarative document models.
//
// A model is declared once with a Builder and registered by name:
//
//	address := model.Define("Address").
//	    Field("street", model.String()).
//	    Field("zip", model.Int()).
//	    MustBuild()
//
//	person := model.Define("Person").
//	    Field("name", model.String(model.Required())).
//	    Field("address", model.Nested(address)).
//	    Field("phones", model.ListOf(schema.Int())).
//	    Field("friends", model.ListOf("Person")). // self reference, resolved lazily
//	    MustBuild()
//
// Building a document coerces and validates every field in schema order:
//
//	doc, err := person.New(map[string]any{
//	    "name":    "Cara",
//	    "address": map[string]any{"street": "Park Boulevard", "zip": "4591"},
//	    "phones":  []any{"12", 21},
//	})
//
// The document behaves like a mapping (Get, Set, Delete, Keys, All) and exports
// to plain data with AsMap, which is also what MarshalJSON encodes.
//
// # Inheritance
//
// Extends merges ancestor schemas, meta options and hooks in declaration order.
// A field redeclared in a derived model replaces the inherited one entirely but
// keeps its position.
//
// # Options
//
// Meta accepts AllowExtraFields (undeclared input keys are kept, each document
// gets a private copy of the schema) and OmitMissingFields (absent fields with
// no default are left out of the document, and writing nil removes a key).
//
// # Errors
//
// All failures are classified with the sentinels of package schema:
// ErrValidation, ErrFieldRequired, ErrImmutableField, ErrImmutableDocument,
// ErrModelNotFound, ErrModelConstruction, ErrModelValidation and
// ErrConfiguration. Construction stops at the first failure; Model.Validate
// collects them all.
package model
