package graph_test

import (
	"strings"
	"testing"

	"github.com/aretw0/netspec/internal/presentation/graph"
	"github.com/aretw0/netspec/internal/testutils"
	"github.com/aretw0/netspec/internal/validator"
	"github.com/aretw0/netspec/pkg/spec"
)

func component(name string, links ...string) *spec.ComponentSpec {
	c := &spec.ComponentSpec{Name: spec.Ptr(name)}
	for _, src := range links {
		c.LinkedFeature = append(c.LinkedFeature, &spec.LinkedFeatureChannel{
			Name:            spec.Ptr("from_" + src),
			SourceComponent: spec.Ptr(src),
		})
	}
	return c
}

func TestGenerateMermaid(t *testing.T) {
	tests := []struct {
		name        string
		ms          *spec.MasterSpec
		overlay     *graph.GraphOverlay
		contains    []string
		notContains []string
	}{
		{
			name: "Node Labels",
			ms:   testutils.TaggerParserSpec(),
			contains: []string{
				"graph LR\n",
				`c_tagger["tagger <br/> tagger / FeedForwardNetwork"]`,
				`c_parser["parser <br/> arc-standard / FeedForwardNetwork"]`,
			},
		},
		{
			name: "Backward Link",
			ms:   &spec.MasterSpec{Component: []*spec.ComponentSpec{component("a"), component("b", "a")}},
			contains: []string{
				`c_a -- "from_a" --> c_b`,
			},
		},
		{
			name: "Self Link",
			ms:   &spec.MasterSpec{Component: []*spec.ComponentSpec{component("rnn", "rnn")}},
			contains: []string{
				`c_rnn -. "from_rnn" .-> c_rnn`,
			},
		},
		{
			name: "Forward Link",
			ms:   &spec.MasterSpec{Component: []*spec.ComponentSpec{component("a", "b"), component("b")}},
			contains: []string{
				`c_b -. "from_b (forward)" .-> c_a`,
			},
		},
		{
			name: "Missing Source",
			ms:   &spec.MasterSpec{Component: []*spec.ComponentSpec{component("a", "ghost"), component("b", "ghost")}},
			contains: []string{
				`c_ghost(["ghost ?"])`,
				`c_ghost -. "from_ghost (missing)" .-> c_a`,
				"class c_ghost missing;",
			},
		},
		{
			name: "Keyword Safe IDs",
			ms:   &spec.MasterSpec{Component: []*spec.ComponentSpec{component("end"), component("my-comp.v2")}},
			contains: []string{
				`c_end["end"]`,
				`c_my_comp_v2["my-comp.v2"]`,
			},
		},
		{
			name: "Bulk Builder Shape",
			ms: &spec.MasterSpec{Component: []*spec.ComponentSpec{{
				Name:             spec.Ptr("bulk"),
				ComponentBuilder: &spec.RegisteredModuleSpec{RegisteredName: spec.Ptr("BulkFeatureExtractorComponentBuilder")},
			}}},
			contains: []string{
				`c_bulk[["bulk"]]`,
			},
		},
		{
			name: "Attention Edge",
			ms: &spec.MasterSpec{Component: []*spec.ComponentSpec{
				component("encoder"),
				{Name: spec.Ptr("decoder"), AttentionComponent: spec.Ptr("encoder")},
			}},
			contains: []string{
				`c_encoder == "attention" ==> c_decoder`,
			},
		},
		{
			name:    "Overlay",
			ms:      &spec.MasterSpec{Component: []*spec.ComponentSpec{component("a"), component("b", "a")}},
			overlay: &graph.GraphOverlay{Invalid: []string{"b", "b"}, Focus: "a"},
			contains: []string{
				"classDef invalid",
				"class c_b invalid;",
				"class c_a focus;",
			},
		},
		{
			name:        "No Styles Without Overlay",
			ms:          &spec.MasterSpec{Component: []*spec.ComponentSpec{component("a")}},
			notContains: []string{"classDef"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := graph.GenerateMermaid(tt.ms, tt.overlay)
			for _, want := range tt.contains {
				if !strings.Contains(got, want) {
					t.Errorf("GenerateMermaid() missing %q\nGot:\n%s", want, got)
				}
			}
			for _, unwanted := range tt.notContains {
				if strings.Contains(got, unwanted) {
					t.Errorf("GenerateMermaid() should not contain %q\nGot:\n%s", unwanted, got)
				}
			}
			if tt.overlay != nil && strings.Count(got, "class c_b invalid;") != 1 {
				t.Errorf("invalid components must be styled once\nGot:\n%s", got)
			}
		})
	}
}

func TestOverlayFromIssues(t *testing.T) {
	ms := testutils.TaggerParserSpec()
	issues := []validator.Issue{
		{Path: "component[1].linked_feature[0].source_component", Message: "x"},
		{Path: "component[1].num_actions", Message: "y"},
		{Path: "component[7].name", Message: "out of range"},
		{Path: "component", Message: "no components"},
	}

	overlay := graph.OverlayFromIssues(ms, issues)
	if len(overlay.Invalid) != 1 || overlay.Invalid[0] != "parser" {
		t.Errorf("OverlayFromIssues() = %v, want [parser]", overlay.Invalid)
	}
}
