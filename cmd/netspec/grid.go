package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/aretw0/netspec"
	"github.com/aretw0/netspec/pkg/codec"
	"github.com/aretw0/netspec/pkg/grid"
	"github.com/aretw0/netspec/pkg/spec"
	"github.com/spf13/cobra"
)

var gridCmd = &cobra.Command{
	Use:   "grid [BASE]",
	Short: "Expand a GridPoint into a hyperparameter sweep",
	Long: `Applies every combination of --axis values to BASE (or to an empty GridPoint)
and validates each result. Points are printed as a YAML stream, a JSON array,
or written one file per point with --out-dir.`,
	Example: `  netspec grid base.yaml --axis learning_rate=0.1|0.05 --axis seed=1|2|3
  netspec grid --axis learning_method=adam|momentum --out-dir sweep/`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd, false, nil)
		if err != nil {
			return err
		}
		defer a.close()

		var opts gridOptions
		opts.Axes, _ = cmd.Flags().GetStringArray("axis")
		opts.Format, _ = cmd.Flags().GetString("format")
		opts.OutDir, _ = cmd.Flags().GetString("out-dir")
		if len(args) == 1 {
			opts.Base = args[0]
		}
		return runGrid(cmd.InOrStdin(), cmd.OutOrStdout(), a.catalog, opts)
	},
}

func init() {
	rootCmd.AddCommand(gridCmd)
	gridCmd.Flags().StringArrayP("axis", "a", nil, "Sweep dimension, as dotted.path=v1|v2 (repeatable)")
	gridCmd.Flags().StringP("format", "f", "yaml", "Output format: json or yaml, or binpb with --out-dir")
	gridCmd.Flags().String("out-dir", "", "Write point-NNNN files to this directory")
}

type gridOptions struct {
	Base   string
	Axes   []string
	Format string
	OutDir string
}

func runGrid(in io.Reader, out io.Writer, cat *netspec.Catalog, opts gridOptions) error {
	format, err := codec.ParseFormat(opts.Format)
	if err != nil {
		return err
	}
	if format == codec.Binary && opts.OutDir == "" {
		return fmt.Errorf("binpb output needs --out-dir")
	}
	axes, err := grid.ParseAxes(opts.Axes)
	if err != nil {
		return err
	}
	base := &spec.GridPoint{}
	if opts.Base != "" {
		if err := readMessage(in, opts.Base, "", base); err != nil {
			return err
		}
	}

	points, err := grid.Expand(base, axes)
	if err != nil {
		return err
	}
	for i, p := range points {
		if report := cat.Validate(p.GridPoint); !report.Valid {
			return fmt.Errorf("%w: point %d (%s): %s", errValidation, i, p.Label(axes), report.Issues[0])
		}
	}

	if opts.OutDir != "" {
		return writePoints(opts.OutDir, format, points)
	}
	if format == codec.JSON {
		return writeJSONPoints(out, axes, points)
	}
	for _, p := range points {
		data, err := codec.Marshal(codec.YAML, p.GridPoint)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "---\n# %s\n", p.Label(axes))
		if _, err := out.Write(data); err != nil {
			return err
		}
	}
	return nil
}

func writePoints(dir string, format codec.Format, points []grid.Point) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	for i, p := range points {
		data, err := codec.Marshal(format, p.GridPoint)
		if err != nil {
			return err
		}
		path := filepath.Join(dir, fmt.Sprintf("point-%04d%s", i, format.Ext()))
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
	}
	return nil
}

type labeledPoint struct {
	Label     string          `json:"label"`
	GridPoint json.RawMessage `json:"grid_point"`
}

func writeJSONPoints(out io.Writer, axes []grid.Axis, points []grid.Point) error {
	list := make([]labeledPoint, 0, len(points))
	for _, p := range points {
		data, err := codec.Marshal(codec.JSON, p.GridPoint)
		if err != nil {
			return err
		}
		list = append(list, labeledPoint{Label: p.Label(axes), GridPoint: bytes.TrimSpace(data)})
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(list)
}
