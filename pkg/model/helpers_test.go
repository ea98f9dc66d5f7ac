package model

import (
	"testing"
	"time"

	"github.com/aretw0/docmodel/pkg/schema"
)

// stubs mirrors a small blog domain used across tests.
type stubs struct {
	reg     *Registry
	address *Model
	person  *Model
	comment *Model
	post    *Model
}

func newStubs(t *testing.T) *stubs {
	t.Helper()
	reg := NewRegistry()

	address := Define("Address").Registry(reg).
		Field("street", Simple()).
		Field("zip", Int()).
		MustBuild()

	person := Define("Person").Registry(reg).
		Field("name", Simple(Required())).
		Field("address", Nested(address)).
		Field("phones", ListOf(schema.Int())).
		MustBuild()

	comment := Define("Comment").Registry(reg).
		Field("body", String()).
		Field("author", Nested("Person")).
		Field("created", DateTime(DefaultFunc(func() any { return time.Now().UTC() }))).
		Field("favorite_by", ListOf(person)).
		MustBuild()

	post := Define("Post").Registry(reg).
		Field("title", String()).
		Field("author", Nested(person)).
		Field("comments", ListOf("Comment")).
		Field("tags", ListOf(schema.String())).
		MustBuild()

	return &stubs{reg: reg, address: address, person: person, comment: comment, post: post}
}

// define starts a builder attached to a fresh registry.
func define(name string) *Builder {
	return Define(name).Registry(NewRegistry())
}
