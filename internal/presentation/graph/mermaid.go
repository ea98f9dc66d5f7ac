package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/docmodel/pkg/model"
)

// Overlay lists models to emphasize on the diagram.
type Overlay struct {
	Highlighted []string
}

// GenerateMermaid produces a Mermaid classDiagram from a list of models.
// Only the fields a model declares itself are listed in its class; inherited
// fields are implied by the inheritance arrow. It uses:
// - Inheritance: Parent <|-- Child
// - Nested document: Owner --> "1" Target : field
// - List or map of documents: Owner --> "*" Target : field
// Immutable models carry the <<immutable>> annotation.
func GenerateMermaid(models []*model.Model, overlay *Overlay) string {
	var sb strings.Builder
	sb.WriteString("classDiagram\n")

	for _, m := range models {
		safeID := sanitizeMermaidID(m.Name())
		fmt.Fprintf(&sb, "    class %s {\n", safeID)
		if m.IsImmutable() {
			sb.WriteString("        <<immutable>>\n")
		}
		for _, f := range m.Schema().Fields() {
			if f.Holder() != m.Name() {
				continue
			}
			fmt.Fprintf(&sb, "        +%s %s\n", mermaidType(f.TypeName()), sanitizeMember(f.Name()))
		}
		sb.WriteString("    }\n")
	}

	for _, m := range models {
		safeID := sanitizeMermaidID(m.Name())
		for _, p := range m.Parents() {
			fmt.Fprintf(&sb, "    %s <|-- %s\n", sanitizeMermaidID(p.Name()), safeID)
		}
		for _, f := range m.Schema().Fields() {
			target := f.Target()
			if f.Holder() != m.Name() || target == "" {
				continue
			}
			cardinality := "1"
			if f.Kind() != model.KindDocument {
				cardinality = "*"
			}
			fmt.Fprintf(&sb, "    %s --> \"%s\" %s : %s\n", safeID, cardinality, sanitizeMermaidID(target), sanitizeMember(f.Name()))
		}
	}

	if overlay != nil && len(overlay.Highlighted) > 0 {
		sb.WriteString("\n    %% Overlay Styles\n")
		// Force black text (color:#000) for high-contrast on light backgrounds, regardless of theme (Light/Dark)
		sb.WriteString("    classDef highlighted fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")

		seen := make(map[string]bool)
		for _, name := range overlay.Highlighted {
			safeID := sanitizeMermaidID(name)
			if !seen[safeID] && safeID != "" {
				seen[safeID] = true
				fmt.Fprintf(&sb, "    cssClass \"%s\" highlighted\n", safeID)
			}
		}
	}

	return sb.String()
}

// mermaidType rewrites the loader notation ([T], {T}) as Mermaid generics.
func mermaidType(name string) string {
	switch {
	case len(name) > 2 && name[0] == '[' && name[len(name)-1] == ']':
		return "List~" + mermaidType(name[1:len(name)-1]) + "~"
	case len(name) > 2 && name[0] == '{' && name[len(name)-1] == '}':
		return "Map~" + mermaidType(name[1:len(name)-1]) + "~"
	}
	return sanitizeMermaidID(name)
}

func sanitizeMember(name string) string {
	return strings.NewReplacer(" ", "_", "{", "(", "}", ")", "\"", "'").Replace(name)
}

func sanitizeMermaidID(id string) string {
	s := strings.ReplaceAll(id, ".", "_")
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	s = strings.ReplaceAll(s, " ", "_")
	return s
}
