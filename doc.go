/*
Package docmodel is a declarative data-modeling engine: a schema is declared
once as a set of typed fields, and documents built from it are coerced,
defaulted and validated on every assignment.

# Concept

A Model is a named, read-only schema. It is declared with the builder in
pkg/model or loaded from YAML/JSON definition files with pkg/loader. Building a
Document from raw data (decoded JSON, YAML, or any string-keyed map) runs every
field through its coercion chain, so a live document is always valid against
its model.

# Key Features

  - Typed fields: int, float, decimal, string, bool, datetime and custom types.
  - Nested documents, lists and maps whose elements stay validated after mutation.
  - Inheritance: a model extends parents and can override their fields.
  - Immutability at document or field level.
  - Aggregated validation reports for every failing field.
  - Exports to plain maps, JSON, YAML, Go structs and OpenAPI 3 schemas.

# Usage

	reg := model.NewRegistry()

	person := model.Define("Person").Registry(reg).
		Field("name", model.String(model.Required())).
		Field("age", model.Int()).
		MustBuild()

	doc, err := person.New(map[string]any{"name": "Ada", "age": "36"})
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(doc.Get("age")) // 36

The docmodel command (cmd/docmodel) exposes the same engine for definition
files: validate, export, describe, graph and openapi.
*/
package docmodel
