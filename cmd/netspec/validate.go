package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/aretw0/netspec"
	"github.com/aretw0/netspec/pkg/spec"
	"github.com/spf13/cobra"
)

var errValidation = errors.New("validation failed")

var validateCmd = &cobra.Command{
	Use:   "validate FILE...",
	Short: "Check records for broken references and out-of-range values",
	Long: `Decodes each file (format from its extension, or --format) and reports every
rule it breaks. Use - to read standard input.

With --master, TrainTarget and TrainingGridSpec records are also checked
against the component count of that MasterSpec.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd, false, nil)
		if err != nil {
			return err
		}
		defer a.close()

		var opts validateOptions
		opts.Kind, _ = cmd.Flags().GetString("kind")
		opts.Format, _ = cmd.Flags().GetString("format")
		opts.Master, _ = cmd.Flags().GetString("master")
		return runValidate(cmd.InOrStdin(), cmd.OutOrStdout(), a.catalog, opts, args)
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
	validateCmd.Flags().StringP("kind", "k", "MasterSpec", "Record type: MasterSpec, GridPoint, TrainTarget or TrainingGridSpec")
	validateCmd.Flags().StringP("format", "f", "", "Input format: json, yaml or binpb")
	validateCmd.Flags().String("master", "", "MasterSpec file that targets are checked against")
}

type validateOptions struct {
	Kind   string
	Format string
	Master string
}

func runValidate(in io.Reader, out io.Writer, cat *netspec.Catalog, opts validateOptions, files []string) error {
	var master *spec.MasterSpec
	if opts.Master != "" {
		master = &spec.MasterSpec{}
		if err := readMessage(in, opts.Master, "", master); err != nil {
			return fmt.Errorf("master spec: %w", err)
		}
	}

	failed := 0
	for _, path := range files {
		msg, err := spec.NewMessage(opts.Kind)
		if err != nil {
			return err
		}
		if err := readMessage(in, path, opts.Format, msg); err != nil {
			fmt.Fprintf(out, "%s: %v\n", path, err)
			failed++
			continue
		}

		report := cat.ValidateWith(msg, master)
		if report.Valid {
			fmt.Fprintf(out, "%s: %s is valid! ✅\n", path, report.Kind)
			continue
		}
		failed++
		fmt.Fprintf(out, "%s: %d issues:\n", path, len(report.Issues))
		for _, issue := range report.Issues {
			fmt.Fprintf(out, "  - %s\n", issue)
		}
	}

	if failed > 0 {
		return fmt.Errorf("%w: %d of %d files", errValidation, failed, len(files))
	}
	return nil
}
