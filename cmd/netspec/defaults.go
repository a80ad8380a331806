package main

import (
	"io"

	"github.com/aretw0/netspec/pkg/codec"
	"github.com/aretw0/netspec/pkg/spec"
	"github.com/spf13/cobra"
)

var defaultsCmd = &cobra.Command{
	Use:   "defaults",
	Short: "Print a GridPoint with every default made explicit",
	Example: `  netspec defaults
  netspec defaults --set learning_method=adam --set composite_optimizer_spec.method1.learning_rate=0.01`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		format, _ := cmd.Flags().GetString("format")
		sets, _ := cmd.Flags().GetStringArray("set")
		return runDefaults(cmd.OutOrStdout(), format, sets)
	},
}

func init() {
	rootCmd.AddCommand(defaultsCmd)
	defaultsCmd.Flags().StringP("format", "f", "yaml", "Output format: json, yaml or binpb")
	defaultsCmd.Flags().StringArray("set", nil, "Override a field, as dotted.path=value (repeatable)")
}

func runDefaults(out io.Writer, format string, sets []string) error {
	f, err := codec.ParseFormat(format)
	if err != nil {
		return err
	}
	overrides := make(map[string]string, len(sets))
	for _, s := range sets {
		k, v, err := codec.ParseOverride(s)
		if err != nil {
			return err
		}
		overrides[k] = v
	}

	gp := spec.DefaultGridPoint()
	if err := codec.ApplyOverrides(gp, overrides); err != nil {
		return err
	}
	data, err := codec.Marshal(f, gp)
	if err != nil {
		return err
	}
	_, err = out.Write(data)
	return err
}
