// Package choices provides an enumeration helper for closed value sets.
//
//	statuses := choices.New(
//	    choices.Entry("d", "DRAFT", "Draft"),
//	    choices.Entry("p", "PUBLISHED", "Published"),
//	)
//	statuses.Get("DRAFT") // "d"
//	model.String(model.Choices(statuses))
package choices

import "fmt"

// Choice is a single member of a Choices set.
type Choice struct {
	Value   any
	Symbol  string
	Display string
}

// Pair creates a choice whose display text doubles as its symbolic name.
func Pair(value any, display string) Choice {
	return Choice{Value: value, Symbol: display, Display: display}
}

// Entry creates a choice with a distinct symbolic name and display text.
func Entry(value any, symbol, display string) Choice {
	return Choice{Value: value, Symbol: symbol, Display: display}
}

// Choices is an ordered, immutable set of choices.
type Choices struct {
	items    []Choice
	bySymbol map[string]any
}

// New builds a Choices set. Each entry is a Choice or a bare value, which is used
// as its own symbol and display text.
func New(entries ...any) *Choices {
	c := &Choices{
		items:    make([]Choice, 0, len(entries)),
		bySymbol: make(map[string]any, len(entries)),
	}
	for _, e := range entries {
		ch, ok := e.(Choice)
		if !ok {
			s := fmt.Sprint(e)
			ch = Choice{Value: e, Symbol: s, Display: s}
		}
		c.items = append(c.items, ch)
		c.bySymbol[ch.Symbol] = ch.Value
	}
	return c
}

// Get returns the value registered under a symbolic name.
func (c *Choices) Get(symbol string) (any, bool) {
	v, ok := c.bySymbol[symbol]
	return v, ok
}

// Pairs returns (value, display) pairs in declaration order.
func (c *Choices) Pairs() [][2]any {
	out := make([][2]any, len(c.items))
	for i, ch := range c.items {
		out[i] = [2]any{ch.Value, ch.Display}
	}
	return out
}

// Values returns the allowed values in declaration order.
func (c *Choices) Values() []any {
	out := make([]any, len(c.items))
	for i, ch := range c.items {
		out[i] = ch.Value
	}
	return out
}

// Items returns a copy of the choices.
func (c *Choices) Items() []Choice {
	return append([]Choice(nil), c.items...)
}

func (c *Choices) Len() int { return len(c.items) }

func (c *Choices) String() string {
	return fmt.Sprintf("Choices(%v)", c.Pairs())
}
