package main

import (
	"fmt"
	"io"
	"os"

	"github.com/aretw0/netspec/pkg/codec"
	"github.com/aretw0/netspec/pkg/spec"
	"github.com/spf13/cobra"
)

var convertCmd = &cobra.Command{
	Use:   "convert FILE",
	Short: "Re-encode a record as json, yaml or binpb",
	Long: `Decodes FILE and writes it in another encoding. Unset fields stay unset and
fields set to their default keep that value, so conversions are lossless.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var opts convertOptions
		opts.Kind, _ = cmd.Flags().GetString("kind")
		opts.From, _ = cmd.Flags().GetString("from")
		opts.To, _ = cmd.Flags().GetString("to")
		opts.Output, _ = cmd.Flags().GetString("output")
		return runConvert(cmd.InOrStdin(), cmd.OutOrStdout(), opts, args[0])
	},
}

func init() {
	rootCmd.AddCommand(convertCmd)
	convertCmd.Flags().StringP("kind", "k", "MasterSpec", "Record type")
	convertCmd.Flags().String("from", "", "Input format (default: from the file extension)")
	convertCmd.Flags().StringP("to", "t", "yaml", "Output format: json, yaml or binpb")
	convertCmd.Flags().StringP("output", "o", "", "Write to this file instead of standard output")
}

type convertOptions struct {
	Kind   string
	From   string
	To     string
	Output string
}

func runConvert(in io.Reader, out io.Writer, opts convertOptions, path string) error {
	from, err := inputFormat(path, opts.From)
	if err != nil {
		return err
	}
	to, err := codec.ParseFormat(opts.To)
	if err != nil {
		return err
	}
	msg, err := spec.NewMessage(opts.Kind)
	if err != nil {
		return err
	}
	data, err := readInput(in, path)
	if err != nil {
		return err
	}

	converted, err := codec.Convert(data, from, to, msg)
	if err != nil {
		return err
	}
	if opts.Output != "" {
		if err := os.WriteFile(opts.Output, converted, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", opts.Output, err)
		}
		return nil
	}
	_, err = out.Write(converted)
	return err
}
