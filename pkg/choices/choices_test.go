package choices

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestChoices(t *testing.T) {
	c := New(
		"plain",
		Pair(1, "One"),
		Entry("p", "PUBLISHED", "Published"),
	)

	assert.Equal(t, 3, c.Len())
	assert.Equal(t, []any{"plain", 1, "p"}, c.Values())
	assert.Equal(t, [][2]any{{"plain", "plain"}, {1, "One"}, {"p", "Published"}}, c.Pairs())

	v, ok := c.Get("PUBLISHED")
	assert.True(t, ok)
	assert.Equal(t, "p", v)

	v, ok = c.Get("One")
	assert.True(t, ok)
	assert.Equal(t, 1, v)

	_, ok = c.Get("Published")
	assert.False(t, ok)
}

func TestChoices_ItemsIsCopy(t *testing.T) {
	c := New("a", "b")
	items := c.Items()
	items[0].Value = "z"
	assert.Equal(t, []any{"a", "b"}, c.Values())
}
