package main

import (
	"context"
	"io"
	"path/filepath"

	"github.com/aretw0/netspec"
	"github.com/aretw0/netspec/internal/presentation/tui"
	"github.com/aretw0/netspec/pkg/spec"
	"github.com/spf13/cobra"
)

var describeCmd = &cobra.Command{
	Use:   "describe NAME|FILE",
	Short: "Summarize a spec as markdown",
	Long: `Prints the components, feature channels, resources and validation result of a
MasterSpec. The argument is read as a file if one exists at that path, and
as a stored spec name otherwise. Output is styled when stdout is a terminal.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd, !isFile(args[0]), nil)
		if err != nil {
			return err
		}
		defer a.close()

		out := cmd.OutOrStdout()
		return runDescribe(cmd.Context(), out, a.catalog, args[0], isTerminal(out))
	},
}

func init() {
	rootCmd.AddCommand(describeCmd)
}

func runDescribe(ctx context.Context, out io.Writer, cat *netspec.Catalog, target string, terminal bool) error {
	var md string
	if isFile(target) {
		ms := &spec.MasterSpec{}
		if err := readMessage(nil, target, "", ms); err != nil {
			return err
		}
		md = tui.Summary(filepath.Base(target), "", ms, cat.Validate(ms).Issues, true)
	} else {
		var err error
		if md, err = cat.Describe(ctx, target); err != nil {
			return err
		}
	}
	return tui.Print(out, md, terminal)
}
