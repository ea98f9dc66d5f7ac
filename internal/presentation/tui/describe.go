package tui

import (
	"fmt"
	"strings"

	"github.com/aretw0/docmodel/pkg/model"
)

// Describe renders models as markdown: one heading and one field table per
// model, ready to be passed through the glamour renderer.
func Describe(models []*model.Model) string {
	var sb strings.Builder
	for i, m := range models {
		if i > 0 {
			sb.WriteString("\n")
		}
		fmt.Fprintf(&sb, "## %s\n\n", m.Name())

		var notes []string
		if parents := m.Parents(); len(parents) > 0 {
			names := make([]string, len(parents))
			for j, p := range parents {
				names[j] = "`" + p.Name() + "`"
			}
			notes = append(notes, "extends "+strings.Join(names, ", "))
		}
		if m.IsImmutable() {
			notes = append(notes, "immutable")
		}
		if m.Options().AllowExtraFields {
			notes = append(notes, "allows extra fields")
		}
		if m.Options().OmitMissingFields {
			notes = append(notes, "omits missing fields")
		}
		if len(notes) > 0 {
			fmt.Fprintf(&sb, "_%s_\n\n", strings.Join(notes, "; "))
		}

		if m.Schema().Len() == 0 {
			sb.WriteString("No fields.\n")
			continue
		}
		sb.WriteString("| Field | Type | Required | Default | Constraints |\n")
		sb.WriteString("|---|---|---|---|---|\n")
		for _, f := range m.Schema().Fields() {
			fmt.Fprintf(&sb, "| %s | `%s` | %s | %s | %s |\n",
				cell(f.Name()), cell(f.TypeName()), yesNo(f.IsRequired()), defaultCell(f), cell(constraints(f)))
		}
	}
	return sb.String()
}

func constraints(f *model.Field) string {
	var parts []string
	if f.IsImmutable() {
		parts = append(parts, "immutable")
	}
	if n := f.MaxLen(); n > 0 {
		parts = append(parts, fmt.Sprintf("max length %d", n))
	}
	if values := f.AllowedValues(); len(values) > 0 {
		s := make([]string, len(values))
		for i, v := range values {
			s[i] = fmt.Sprint(v)
		}
		parts = append(parts, "one of "+strings.Join(s, ", "))
	}
	if f.Verbose() != "" {
		parts = append(parts, "attr "+f.Attr())
	}
	return strings.Join(parts, "; ")
}

func defaultCell(f *model.Field) string {
	if v, ok := f.DefaultValue(); ok {
		return cell(fmt.Sprint(v))
	}
	if f.HasDefault() {
		return "(computed)"
	}
	return ""
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

// cell escapes pipes so values do not break the table layout.
func cell(s string) string {
	return strings.ReplaceAll(s, "|", "\\|")
}
