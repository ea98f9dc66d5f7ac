package openapi_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/docmodel/pkg/model"
	"github.com/aretw0/docmodel/pkg/openapi"
	"github.com/aretw0/docmodel/pkg/schema"
)

func blog(t *testing.T) (*model.Registry, *model.Model) {
	t.Helper()
	reg := model.NewRegistry()

	model.Define("Person").Registry(reg).
		Field("name", model.String(model.Required(), model.MaxLength(40))).
		Field("rate", model.Decimal(model.Name("Interest Rate"), model.Default("1.5"))).
		MustBuild()

	entry := model.Define("Entry").Registry(reg).Immutable().
		Field("id", model.Int()).
		MustBuild()

	post := model.Define("Post").Registry(reg).Extends(entry).
		Meta(model.Meta{model.AllowExtraFields: true}).
		Field("title", model.String(model.Required())).
		Field("author", model.Nested("Person")).
		Field("tags", model.ListOf(schema.String(), model.MaxLength(5))).
		Field("ratings", model.MapOf(schema.Float())).
		Field("editors", model.ListOf("Person")).
		Field("status", model.String(model.Choices([]any{"draft", "published"}), model.Default("draft"))).
		Field("created", model.DateTime()).
		Field("extra", model.Simple(model.Immutable())).
		MustBuild()

	return reg, post
}

func TestComponents(t *testing.T) {
	_, post := blog(t)

	schemas, err := openapi.Components(post)
	require.NoError(t, err)
	require.Len(t, schemas, 2)
	require.Contains(t, schemas, "Post")
	require.Contains(t, schemas, "Person")

	s := schemas["Post"].Value
	assert.True(t, s.Type.Is(openapi3.TypeObject))
	assert.Equal(t, []string{"title"}, s.Required)
	assert.Equal(t, true, s.Extensions[openapi.ExtImmutable])
	assert.Equal(t, []string{"Entry"}, s.Extensions[openapi.ExtExtends])
	require.NotNil(t, s.AdditionalProperties.Has)
	assert.True(t, *s.AdditionalProperties.Has)

	assert.Equal(t, "#/components/schemas/Person", s.Properties["author"].Ref)

	tags := s.Properties["tags"].Value
	assert.True(t, tags.Type.Is(openapi3.TypeArray))
	assert.True(t, tags.Items.Value.Type.Is(openapi3.TypeString))
	require.NotNil(t, tags.MaxItems)
	assert.Equal(t, uint64(5), *tags.MaxItems)

	ratings := s.Properties["ratings"].Value
	assert.True(t, ratings.AdditionalProperties.Schema.Value.Type.Is(openapi3.TypeNumber))

	editors := s.Properties["editors"].Value
	assert.Equal(t, "#/components/schemas/Person", editors.Items.Ref)

	status := s.Properties["status"].Value
	assert.Equal(t, []any{"draft", "published"}, status.Enum)
	assert.Equal(t, "draft", status.Default)
	assert.True(t, status.Nullable)

	assert.Equal(t, "date-time", s.Properties["created"].Value.Format)
	assert.Equal(t, true, s.Properties["extra"].Value.Extensions[openapi.ExtImmutable])

	person := schemas["Person"].Value
	assert.Equal(t, []string{"name"}, person.Required)
	require.NotNil(t, person.Properties["name"].Value.MaxLength)
	assert.Equal(t, uint64(40), *person.Properties["name"].Value.MaxLength)
	assert.False(t, person.Properties["name"].Value.Nullable)
	rate := person.Properties["Interest Rate"].Value
	assert.Equal(t, "decimal", rate.Format)
	assert.Equal(t, "rate", rate.Title)
}

func TestDocument_LoadsAndValidates(t *testing.T) {
	_, post := blog(t)

	doc, err := openapi.Document("Blog", "1.0.0", post)
	require.NoError(t, err)

	data, err := json.Marshal(doc)
	require.NoError(t, err)

	loaded, err := openapi3.NewLoader().LoadFromData(data)
	require.NoError(t, err)
	require.NoError(t, loaded.Validate(context.Background()))

	author := loaded.Components.Schemas["Post"].Value.Properties["author"]
	require.NotNil(t, author.Value)
	assert.Contains(t, author.Value.Properties, "name")
}

func TestComponents_UnresolvedReference(t *testing.T) {
	reg := model.NewRegistry()
	orphan := model.Define("Orphan").Registry(reg).
		Field("parent", model.Nested("Missing")).
		MustBuild()

	_, err := openapi.Components(orphan)
	assert.ErrorIs(t, err, schema.ErrModelNotFound)
}

func TestComponents_SelfReference(t *testing.T) {
	reg := model.NewRegistry()
	node := model.Define("Node").Registry(reg).
		Field("children", model.ListOf("Node")).
		MustBuild()

	schemas, err := openapi.Components(node)
	require.NoError(t, err)
	assert.Len(t, schemas, 1)
	assert.Equal(t, "#/components/schemas/Node", schemas["Node"].Value.Properties["children"].Value.Items.Ref)
}

func TestSchema(t *testing.T) {
	reg := model.NewRegistry()
	m := model.Define("Bag").Registry(reg).
		Field("any", model.Simple()).
		Field("matrix", model.Typed(schema.Slice(schema.Int()))).
		Field("labels", model.MapOf(nil)).
		Field("grades", model.ListOf(schema.String(), model.Choices([]string{"a", "b"}))).
		MustBuild()

	s, err := openapi.Schema(m)
	require.NoError(t, err)
	assert.Nil(t, s.Properties["any"].Value.Type)
	matrix := s.Properties["matrix"].Value
	assert.True(t, matrix.Type.Is(openapi3.TypeArray))
	assert.True(t, matrix.Items.Value.Type.Is(openapi3.TypeInteger))
	assert.Nil(t, s.Properties["labels"].Value.AdditionalProperties.Schema.Value.Type)
	assert.Equal(t, []any{"a", "b"}, s.Properties["grades"].Value.Items.Value.Enum)
}
