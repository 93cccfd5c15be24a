package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/automator/pkg/domain"
)

// Overlay marks actions to emphasize on the chart.
type Overlay struct {
	Highlight []string
}

// GenerateMermaid produces a Mermaid flowchart for a workflow. Actions are
// chained in order from a start node. Shapes follow what the action does:
//   - Start: ((Circle))
//   - Input (files, text): [/Parallelogram/]
//   - External (shell, http, email, notify): [[Subroutine]]
//   - Pause: {{Hexagon}}
//   - Default: [Rectangle]
func GenerateMermaid(w domain.Workflow, overlay *Overlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")
	fmt.Fprintf(&sb, "    start((\"%s\"))\n", escapeLabel(w.Name))

	prev := "start"
	for i, a := range w.Actions {
		id := nodeID(i)
		opener, closer := shape(a.Type)

		label := escapeLabel(a.Name)
		if icon := domain.IconFor(a.Type); icon != "" {
			label = icon + " " + label
		}
		fmt.Fprintf(&sb, "    %s%s\"%d. %s\"%s\n", id, opener, i+1, label, closer)
		fmt.Fprintf(&sb, "    %s --> %s\n", prev, id)
		prev = id
	}

	if overlay != nil && len(overlay.Highlight) > 0 {
		sb.WriteString("\n    %% Overlay Styles\n")
		sb.WriteString("    classDef current fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")
		for _, actionID := range overlay.Highlight {
			if i := w.IndexOf(actionID); i >= 0 {
				fmt.Fprintf(&sb, "    class %s current;\n", nodeID(i))
			}
		}
	}

	return sb.String()
}

// nodeID uses the position because action IDs may contain characters
// Mermaid rejects.
func nodeID(i int) string {
	return fmt.Sprintf("a%d", i+1)
}

func shape(actionType string) (string, string) {
	switch actionType {
	case domain.ActionFiles, domain.ActionText:
		return "[/", "/]"
	case domain.ActionShell, domain.ActionHTTP, domain.ActionEmail, domain.ActionNotify:
		return "[[", "]]"
	case domain.ActionDelay:
		return "{{", "}}"
	default:
		return "[", "]"
	}
}

func escapeLabel(s string) string {
	return strings.ReplaceAll(s, "\"", "'")
}
