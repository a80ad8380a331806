package main

import (
	"context"
	"fmt"
	"io"

	"github.com/aretw0/netspec"
	"github.com/aretw0/netspec/internal/presentation/graph"
	"github.com/aretw0/netspec/pkg/spec"
	"github.com/spf13/cobra"
)

// graphCmd represents the graph command
var graphCmd = &cobra.Command{
	Use:   "graph NAME|FILE",
	Short: "Export the component pipeline as a Mermaid diagram",
	Long: `Outputs a Mermaid flowchart (graph LR) where linked features are edges from
source to consumer. Components with validation issues are highlighted.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd, !isFile(args[0]), nil)
		if err != nil {
			return err
		}
		defer a.close()

		focus, _ := cmd.Flags().GetString("focus")
		return runGraph(cmd.Context(), cmd.OutOrStdout(), a.catalog, args[0], focus)
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
	graphCmd.Flags().String("focus", "", "Component to highlight")
}

func runGraph(ctx context.Context, out io.Writer, cat *netspec.Catalog, target, focus string) error {
	ms := &spec.MasterSpec{}
	if isFile(target) {
		if err := readMessage(nil, target, "", ms); err != nil {
			return err
		}
	} else {
		var err error
		if ms, err = cat.Get(ctx, target); err != nil {
			return err
		}
	}

	var overlay *graph.GraphOverlay
	if report := cat.Validate(ms); !report.Valid || focus != "" {
		overlay = graph.OverlayFromIssues(ms, report.Issues)
		overlay.Focus = focus
	}
	_, err := fmt.Fprint(out, graph.GenerateMermaid(ms, overlay))
	return err
}
