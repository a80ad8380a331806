package graph

import (
	"fmt"
	"sort"
	"strings"

	"github.com/aretw0/netspec/internal/validator"
	"github.com/aretw0/netspec/pkg/spec"
)

// GraphOverlay contains validation data to visualize on the graph.
type GraphOverlay struct {
	// Invalid lists components that have validation issues.
	Invalid []string
	// Focus is a component to highlight.
	Focus string
}

// GenerateMermaid produces a Mermaid flowchart (graph LR) of the component
// pipeline. Linked features become edges from source to consumer:
// - Backward link (source earlier): solid arrow
// - Self link: dotted arrow back to the same node
// - Forward link (source later): dotted arrow labelled "forward"
// - Unknown source: edge from a stadium-shaped placeholder node
// Attention edges use a thick arrow. Bulk component builders are drawn as
// [[subroutines]], everything else as [rectangles].
func GenerateMermaid(ms *spec.MasterSpec, overlay *GraphOverlay) string {
	var sb strings.Builder
	sb.WriteString("graph LR\n")

	components := ms.GetComponent()
	position := make(map[string]int, len(components))
	for i, c := range components {
		if _, ok := position[c.GetName()]; !ok {
			position[c.GetName()] = i
		}
	}

	for _, c := range components {
		opener, closer := "[", "]"
		if strings.HasPrefix(c.GetComponentBuilder().GetRegisteredName(), "Bulk") {
			opener, closer = "[[", "]]"
		}
		label := c.GetName()
		if ts, nu := c.GetTransitionSystem().GetRegisteredName(), c.GetNetworkUnit().GetRegisteredName(); ts != "" || nu != "" {
			label = fmt.Sprintf("%s <br/> %s / %s", label, ts, nu)
		}
		sb.WriteString(fmt.Sprintf("    %s%s\"%s\"%s\n", sanitizeMermaidID(c.GetName()), opener, escape(label), closer))
	}

	missing := make(map[string]bool)
	for i, c := range components {
		safeID := sanitizeMermaidID(c.GetName())

		for _, l := range c.GetLinkedFeature() {
			src := l.GetSourceComponent()
			safeFrom := sanitizeMermaidID(src)
			at, known := position[src]
			name := escape(l.GetName())

			switch {
			case !known:
				if !missing[src] {
					missing[src] = true
					sb.WriteString(fmt.Sprintf("    %s([\"%s ?\"])\n", safeFrom, escape(src)))
				}
				sb.WriteString(fmt.Sprintf("    %s -. \"%s (missing)\" .-> %s\n", safeFrom, name, safeID))
			case src == c.GetName():
				sb.WriteString(fmt.Sprintf("    %s -. \"%s\" .-> %s\n", safeFrom, name, safeID))
			case at > i:
				sb.WriteString(fmt.Sprintf("    %s -. \"%s (forward)\" .-> %s\n", safeFrom, name, safeID))
			default:
				sb.WriteString(fmt.Sprintf("    %s -- \"%s\" --> %s\n", safeFrom, name, safeID))
			}
		}

		if a := c.GetAttentionComponent(); a != "" {
			sb.WriteString(fmt.Sprintf("    %s == \"attention\" ==> %s\n", sanitizeMermaidID(a), safeID))
		}
	}

	if len(missing) > 0 || overlay != nil {
		sb.WriteString("\n    %% Styles\n")
	}
	if len(missing) > 0 {
		sb.WriteString("    classDef missing stroke-dasharray: 5 5,color:#888;\n")
		names := make([]string, 0, len(missing))
		for n := range missing {
			names = append(names, sanitizeMermaidID(n))
		}
		sort.Strings(names)
		for _, n := range names {
			sb.WriteString(fmt.Sprintf("    class %s missing;\n", n))
		}
	}

	if overlay != nil {
		// Force black text (color:#000) for contrast on light fills in either theme
		sb.WriteString("    classDef invalid fill:#ffcdd2,stroke:#b71c1c,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef focus fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")

		invalidSet := make(map[string]bool)
		for _, name := range overlay.Invalid {
			safeID := sanitizeMermaidID(name)
			if !invalidSet[safeID] && name != "" {
				invalidSet[safeID] = true
				sb.WriteString(fmt.Sprintf("    class %s invalid;\n", safeID))
			}
		}
		if overlay.Focus != "" {
			sb.WriteString(fmt.Sprintf("    class %s focus;\n", sanitizeMermaidID(overlay.Focus)))
		}
	}

	return sb.String()
}

// sanitizeMermaidID prefixes ids so component names like "end" or "graph"
// never collide with Mermaid keywords.
func sanitizeMermaidID(id string) string {
	r := strings.NewReplacer(".", "_", "-", "_", "/", "_", "\\", "_", " ", "_")
	return "c_" + r.Replace(id)
}

func escape(s string) string {
	return strings.ReplaceAll(s, "\"", "'")
}

// OverlayFromIssues marks every component named by an issue path such as
// "component[2].linked_feature[0].source_component" as invalid.
func OverlayFromIssues(ms *spec.MasterSpec, issues []validator.Issue) *GraphOverlay {
	overlay := &GraphOverlay{}
	components := ms.GetComponent()
	seen := make(map[int]bool)
	for _, issue := range issues {
		var i int
		if _, err := fmt.Sscanf(issue.Path, "component[%d]", &i); err != nil {
			continue
		}
		if i < 0 || i >= len(components) || seen[i] {
			continue
		}
		seen[i] = true
		overlay.Invalid = append(overlay.Invalid, components[i].GetName())
	}
	return overlay
}
