package tui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/aretw0/netspec/internal/validator"
	"github.com/aretw0/netspec/pkg/spec"
)

// Summary describes a spec as markdown: a component table, the feature
// channels of each component and the validation result. description may be
// empty. The validation section is only written when validated is true.
func Summary(name, description string, ms *spec.MasterSpec, issues []validator.Issue, validated bool) string {
	var sb strings.Builder

	title := name
	if title == "" {
		title = "MasterSpec"
	}
	fmt.Fprintf(&sb, "# %s\n\n", title)
	if d := strings.TrimSpace(description); d != "" {
		fmt.Fprintf(&sb, "%s\n\n", d)
	}

	components := ms.GetComponent()
	fmt.Fprintf(&sb, "%d components", len(components))
	if ms.GetDebugTracing() {
		sb.WriteString(", debug tracing on")
	}
	sb.WriteString(".\n\n")

	if len(components) > 0 {
		sb.WriteString("| # | component | transition system | network unit | backend | builder | actions |\n")
		sb.WriteString("|---|---|---|---|---|---|---|\n")
		for i, c := range components {
			fmt.Fprintf(&sb, "| %d | %s | %s | %s | %s | %s | %d |\n",
				i, cell(c.GetName()),
				cell(c.GetTransitionSystem().GetRegisteredName()),
				cell(c.GetNetworkUnit().GetRegisteredName()),
				cell(c.GetBackend().GetRegisteredName()),
				cell(c.GetComponentBuilder().GetRegisteredName()),
				c.GetNumActions())
		}
		sb.WriteString("\n")
	}

	for _, c := range components {
		fmt.Fprintf(&sb, "## %s\n\n", c.GetName())
		if params := c.GetNetworkUnit().GetParameters(); len(params) > 0 {
			sb.WriteString("Network parameters: ")
			sb.WriteString(formatParams(params))
			sb.WriteString("\n\n")
		}
		if a := c.GetAttentionComponent(); a != "" {
			fmt.Fprintf(&sb, "Attends to `%s`.\n\n", a)
		}
		for _, f := range c.GetFixedFeature() {
			fmt.Fprintf(&sb, "- fixed `%s`: `%s` x%d, vocabulary %d, %s\n",
				f.GetName(), f.GetFml(), f.GetSize(), f.GetVocabularySize(), dim(f.GetEmbeddingDim()))
		}
		for _, l := range c.GetLinkedFeature() {
			fmt.Fprintf(&sb, "- linked `%s`: from `%s` layer `%s` via `%s`, x%d, %s\n",
				l.GetName(), l.GetSourceComponent(), l.GetSourceLayer(), l.GetSourceTranslator(), l.GetSize(), dim(l.GetEmbeddingDim()))
		}
		for _, r := range c.GetResource() {
			fmt.Fprintf(&sb, "- resource `%s`: %d parts\n", r.GetName(), len(r.GetPart()))
		}
		if len(c.GetFixedFeature())+len(c.GetLinkedFeature())+len(c.GetResource()) > 0 {
			sb.WriteString("\n")
		}
	}

	if validated {
		sb.WriteString("## Validation\n\n")
		if len(issues) == 0 {
			sb.WriteString("Spec is valid! ✅\n")
		} else {
			fmt.Fprintf(&sb, "%d issues:\n\n", len(issues))
			for _, issue := range issues {
				fmt.Fprintf(&sb, "- `%s`: %s\n", issue.Path, issue.Message)
			}
		}
	}
	return sb.String()
}

func cell(s string) string {
	if s == "" {
		return "-"
	}
	return strings.ReplaceAll(s, "|", "\\|")
}

func dim(d int32) string {
	if d == spec.NotEmbedded {
		return "not embedded"
	}
	return fmt.Sprintf("dim %d", d)
}

func formatParams(params map[string]string) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("`%s=%s`", k, params[k])
	}
	return strings.Join(parts, ", ")
}
