package model

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/docmodel/pkg/choices"
	"github.com/aretw0/docmodel/pkg/schema"
)

func TestTypedFields(t *testing.T) {
	tests := []struct {
		name  string
		field *Field
		input any
		want  any
	}{
		{"int from string", Int(), "1", 1},
		{"float from string", Float(), "1.01", 1.01},
		{"string from int", String(), 999, "999"},
		{"bool from string", Bool(), "abc", true},
		{"bool from zero", Bool(), 0, false},
		{"simple passthrough", Simple(), []any{"my_field", 2}, []any{"my_field", 2}},
		{"date layout", DateTime(Layouts("iso_date")), "2017-05-31", time.Date(2017, 5, 31, 0, 0, 0, 0, time.UTC)},
		{"default layouts", DateTime(), "2009-04-01T23:51:23Z", time.Date(2009, 4, 1, 23, 51, 23, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := define("Doc").Field("value", tt.field).MustBuild()
			doc, err := m.New(map[string]any{"value": tt.input})
			require.NoError(t, err)
			assert.Equal(t, tt.want, doc.Get("value"))
		})
	}
}

func TestDecimalField(t *testing.T) {
	m := define("Doc").Field("amount", Decimal(Default(47))).MustBuild()

	doc := m.MustNew(nil)
	assert.True(t, decimal.NewFromInt(47).Equal(doc.Get("amount").(decimal.Decimal)))

	doc = m.MustNew(map[string]any{"amount": "1.10"})
	assert.Equal(t, "1.1", doc.Get("amount").(decimal.Decimal).String())

	_, err := m.New(map[string]any{"amount": "a"})
	assert.ErrorIs(t, err, schema.ErrValidation)
}

func TestFieldCoercionFailure(t *testing.T) {
	m := define("Doc").Field("n", Int()).MustBuild()

	_, err := m.New(map[string]any{"n": "abc"})
	require.Error(t, err)
	assert.ErrorIs(t, err, schema.ErrValidation)

	var fe *schema.FieldError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, "Doc", fe.Model)
	assert.Equal(t, "n", fe.Field)
	assert.Equal(t, "abc", fe.Value)
}

func TestRequiredField(t *testing.T) {
	m := define("User").Field("name", String(Required())).MustBuild()

	_, err := m.New(map[string]any{})
	assert.ErrorIs(t, err, schema.ErrFieldRequired)

	_, err = m.New(map[string]any{"name": ""})
	assert.ErrorIs(t, err, schema.ErrFieldRequired)

	_, err = m.New(map[string]any{"name": nil})
	assert.ErrorIs(t, err, schema.ErrFieldRequired)

	doc, err := m.New(map[string]any{"name": "x"})
	require.NoError(t, err)
	assert.Equal(t, "x", doc.Get("name"))

	assert.ErrorIs(t, doc.Set("name", ""), schema.ErrFieldRequired)
	assert.ErrorIs(t, doc.Delete("name"), schema.ErrFieldRequired)
	assert.Equal(t, "x", doc.Get("name"))
}

func TestRequiredContainers(t *testing.T) {
	m := define("Post").
		Field("tags", ListOf(schema.String(), Required())).
		Field("labels", MapOf(nil, Required())).
		MustBuild()

	_, err := m.New(nil)
	assert.ErrorIs(t, err, schema.ErrFieldRequired)

	_, err = m.New(map[string]any{"tags": []any{}, "labels": map[string]any{"a": 1}})
	assert.ErrorIs(t, err, schema.ErrFieldRequired)

	doc, err := m.New(map[string]any{"tags": []any{"a"}, "labels": map[string]any{"a": 1}})
	require.NoError(t, err)
	assert.ErrorIs(t, doc.Get("tags").(*List).Delete(0), schema.ErrFieldRequired)
}

func TestNilHandling(t *testing.T) {
	m := define("User").
		Field("name", String()).
		Field("nick", String(NilAsEmpty())).
		Field("owner_id", Int()).
		MustBuild()

	doc := m.MustNew(map[string]any{"name": nil, "nick": nil})
	assert.Nil(t, doc.Get("name"))
	assert.Equal(t, "", doc.Get("nick"))
	assert.Nil(t, doc.Get("owner_id"))
	assert.True(t, doc.Has("owner_id"))

	doc = m.MustNew(nil)
	assert.Equal(t, "", doc.Get("nick"))

	require.NoError(t, doc.Set("nick", "bob"))
	require.NoError(t, doc.Set("nick", nil))
	assert.Equal(t, "", doc.Get("nick"))
}

func TestMaxLength(t *testing.T) {
	m := define("Message").Field("text", String(MaxLength(3))).MustBuild()

	_, err := m.New(map[string]any{"text": "abcd"})
	assert.ErrorIs(t, err, schema.ErrValidation)

	doc, err := m.New(map[string]any{"text": "héé"})
	require.NoError(t, err)
	assert.Equal(t, "héé", doc.Get("text"))
}

func TestChoices(t *testing.T) {
	t.Run("slice", func(t *testing.T) {
		m := define("MailboxItem").
			Field("type", Simple(Choices([]string{"SUGGESTION", "MAIL"}), Default("MAIL"))).
			MustBuild()

		assert.Equal(t, "MAIL", m.MustNew(nil).Get("type"))
		_, err := m.New(map[string]any{"type": "SPAM"})
		assert.ErrorIs(t, err, schema.ErrValidation)
	})

	t.Run("choices helper", func(t *testing.T) {
		status := choices.New(
			choices.Entry("d", "DRAFT", "Draft"),
			choices.Entry("p", "PUBLISHED", "Published"),
		)
		draft, _ := status.Get("DRAFT")
		m := define("Post").Field("status", String(Choices(status), Default(draft))).MustBuild()

		assert.Equal(t, "d", m.MustNew(nil).Get("status"))
		_, err := m.New(map[string]any{"status": "Published"})
		assert.ErrorIs(t, err, schema.ErrValidation)
	})

	t.Run("choices are coerced", func(t *testing.T) {
		m := define("Doc").Field("n", Int(Choices([]string{"1", "2"}))).MustBuild()

		assert.Equal(t, 2, m.MustNew(map[string]any{"n": "2"}).Get("n"))
		_, err := m.New(map[string]any{"n": 3})
		assert.ErrorIs(t, err, schema.ErrValidation)
	})
}

func TestImmutableField(t *testing.T) {
	m := define("User").
		Field("name", String()).
		Field("system_id", Int(Immutable())).
		MustBuild()

	user := m.MustNew(map[string]any{"system_id": 0})
	assert.Equal(t, 0, user.Get("system_id"))

	err := user.Set("system_id", 1)
	assert.ErrorIs(t, err, schema.ErrImmutableField)
	assert.Contains(t, err.Error(), "User.system_id")
	assert.Equal(t, 0, user.Get("system_id"))

	assert.ErrorIs(t, user.Delete("system_id"), schema.ErrImmutableField)
	assert.NoError(t, user.Set("name", "John"))

	omitted := define("Ticket").
		Meta(Meta{OmitMissingFields: true}).
		Field("id", Int(Immutable())).
		MustBuild()

	ticket := omitted.MustNew(nil)
	assert.False(t, ticket.Has("id"))
	assert.ErrorIs(t, ticket.Set("id", 1), schema.ErrImmutableField)
	assert.False(t, ticket.Has("id"))
}

func TestChoicesOnContainers(t *testing.T) {
	m := define("Post").
		Field("tags", ListOf(schema.String(), Choices([]string{"a", "b"}))).
		Field("scores", MapOf(schema.Int(), Choices([]string{"1", "2"}))).
		MustBuild()

	doc, err := m.New(map[string]any{"tags": []any{"a"}})
	require.NoError(t, err)
	assert.Equal(t, []any{"a"}, doc.Get("tags").(*List).Items())
	assert.Equal(t, 0, m.MustNew(nil).Get("tags").(*List).Len())

	_, err = m.New(map[string]any{"tags": []any{"a", "c"}})
	assert.ErrorIs(t, err, schema.ErrValidation)

	tags := doc.Get("tags").(*List)
	assert.ErrorIs(t, tags.Append("c"), schema.ErrValidation)
	assert.Equal(t, []any{"a"}, tags.Items())

	doc = m.MustNew(map[string]any{"scores": map[string]any{"x": "2"}})
	scores := doc.Get("scores").(*Map)
	got, ok := scores.Get("x")
	require.True(t, ok)
	assert.Equal(t, 2, got)
	assert.ErrorIs(t, scores.Set("y", 3), schema.ErrValidation)

	_, err = m.New(map[string]any{"scores": map[string]any{"x": 3}})
	assert.ErrorIs(t, err, schema.ErrValidation)
}

func TestVerboseName(t *testing.T) {
	const key = "special-attribute with unexpected symbols!"
	m := define("Foo").Field("bar", String(Name(key))).MustBuild()

	doc := m.MustNew(map[string]any{key: "baz"})
	assert.Equal(t, "baz", doc.Get("bar"))
	assert.Equal(t, "baz", doc.Get(key))
	assert.Equal(t, []string{key}, doc.Keys())

	f, ok := m.Schema().Field("bar")
	require.True(t, ok)
	assert.Equal(t, "bar", f.Attr())
	assert.Equal(t, key, f.Name())

	require.NoError(t, doc.Set("bar", "qux"))
	assert.Equal(t, "qux", doc.AsMap()[key])
}

func TestVerboseNameRequired(t *testing.T) {
	m := define("Loan").Field("rate", Float(Name("Interest Rate"), Required())).MustBuild()

	_, err := m.New(nil)
	var fe *schema.FieldError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, "Interest Rate", fe.Field)
}

func TestValidatorsAndCoercers(t *testing.T) {
	positive := func(v any) error {
		if v.(int) <= 0 {
			return errors.New("must be positive")
		}
		return nil
	}
	upper := func(v any) (any, error) {
		return strings.ToUpper(v.(string)), nil
	}

	m := define("Doc").
		Field("n", Int(Validators(positive))).
		Field("code", String(Coercers(upper))).
		MustBuild()

	doc, err := m.New(map[string]any{"n": "3", "code": "abc"})
	require.NoError(t, err)
	assert.Equal(t, "ABC", doc.Get("code"))

	_, err = m.New(map[string]any{"n": -1})
	assert.ErrorIs(t, err, schema.ErrValidation)
	assert.ErrorContains(t, err, "must be positive")
}

func TestDefaultValidation(t *testing.T) {
	_, err := define("A").Field("id", Int(Default("a"))).Build()
	require.Error(t, err)
	assert.ErrorIs(t, err, schema.ErrConfiguration)
	assert.ErrorIs(t, err, schema.ErrValidation)

	b := define("B").Field("id", Int(Default("1"))).MustBuild()
	assert.Equal(t, 1, b.MustNew(nil).Get("id"))
}

func TestDefaultsAreFreshPerDocument(t *testing.T) {
	calls := 0
	m := define("Post").
		Field("tags", ListOf(schema.String(), Default([]any{"news"}))).
		Field("meta", Simple(Default(map[string]any{"views": 0}))).
		Field("seq", Int(DefaultFunc(func() any { calls++; return calls }))).
		MustBuild()

	p1 := m.MustNew(nil)
	p2 := m.MustNew(nil)

	require.NoError(t, p1.Get("tags").(*List).Append("sport"))
	p1.Get("meta").(map[string]any)["views"] = 10

	assert.Equal(t, []any{"news", "sport"}, p1.Get("tags").(*List).Items())
	assert.Equal(t, []any{"news"}, p2.Get("tags").(*List).Items())
	assert.Equal(t, 0, p2.Get("meta").(map[string]any)["views"])
	assert.Equal(t, 1, p1.Get("seq"))
	assert.Equal(t, 2, p2.Get("seq"))
}

func TestFieldConfigurationErrors(t *testing.T) {
	tests := []struct {
		name  string
		field *Field
	}{
		{"choices not a collection", String(Choices("abc"))},
		{"non-positive max length", String(MaxLength(0))},
		{"layouts on int", Int(Layouts("iso_date"))},
		{"nil as empty on int", Int(NilAsEmpty())},
		{"nil validator", Int(Validators(nil))},
		{"nil producer", Int(DefaultFunc(nil))},
		{"bad nested reference", Nested(42)},
		{"empty list reference", ListOf("")},
		{"choice not coercible", Int(Choices([]string{"x"}))},
		{"choices on nested", Nested("Person", Choices([]string{"a"}))},
		{"choices on document list", ListOf("Person", Choices([]string{"a"}))},
		{"list choice not coercible", ListOf(schema.Int(), Choices([]string{"x"}))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := define("Bad").Field("f", tt.field).Build()
			assert.ErrorIs(t, err, schema.ErrConfiguration)
		})
	}
}

func TestFieldPrototypeReuse(t *testing.T) {
	proto := String(Required())
	reg := NewRegistry()
	a := Define("A").Registry(reg).Field("x", proto).MustBuild()
	b := Define("B").Registry(reg).Field("y", proto).MustBuild()

	fa, _ := a.Schema().Field("x")
	fb, _ := b.Schema().Field("y")
	assert.Equal(t, "A.x", fa.String())
	assert.Equal(t, "B.y", fb.String())
	assert.Equal(t, "", proto.Name())
}

func TestFieldAccessors(t *testing.T) {
	s := newStubs(t)

	tests := []struct {
		model    *Model
		field    string
		kind     Kind
		typeName string
		target   string
	}{
		{s.address, "zip", KindScalar, "int", ""},
		{s.person, "address", KindDocument, "Address", "Address"},
		{s.person, "phones", KindList, "[int]", ""},
		{s.post, "comments", KindList, "[Comment]", "Comment"},
		{s.comment, "created", KindScalar, "datetime", ""},
	}

	for _, tt := range tests {
		f, ok := tt.model.Schema().Field(tt.field)
		require.True(t, ok, tt.field)
		assert.Equal(t, tt.kind, f.Kind(), tt.field)
		assert.Equal(t, tt.typeName, f.TypeName(), tt.field)
		assert.Equal(t, tt.target, f.Target(), tt.field)
	}
}
