package main

import (
	"context"
	"fmt"
	"io"

	"github.com/aretw0/netspec"
	"github.com/aretw0/netspec/internal/validator"
	"github.com/aretw0/netspec/pkg/codec"
	"github.com/aretw0/netspec/pkg/spec"
	"github.com/spf13/cobra"
)

var storeCmd = &cobra.Command{
	Use:   "store",
	Short: "Save, fetch, list and delete named specs",
	Long: `Works on the spec store selected by --store or NETSPEC_STORE.
Specs are validated before they are saved.`,
}

var storePutCmd = &cobra.Command{
	Use:   "put NAME FILE",
	Short: "Validate a MasterSpec file and save it under NAME",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd, true, nil)
		if err != nil {
			return err
		}
		defer a.close()

		format, _ := cmd.Flags().GetString("format")
		return runStorePut(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout(), a.catalog, args[0], args[1], format)
	},
}

var storeGetCmd = &cobra.Command{
	Use:   "get NAME",
	Short: "Print a stored MasterSpec",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd, true, nil)
		if err != nil {
			return err
		}
		defer a.close()

		format, _ := cmd.Flags().GetString("format")
		return runStoreGet(cmd.Context(), cmd.OutOrStdout(), a.catalog, args[0], format)
	},
}

var storeListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List stored spec names",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd, true, nil)
		if err != nil {
			return err
		}
		defer a.close()
		return runStoreList(cmd.Context(), cmd.OutOrStdout(), a.catalog)
	},
}

var storeDeleteCmd = &cobra.Command{
	Use:     "delete NAME",
	Aliases: []string{"rm"},
	Short:   "Remove a stored spec",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd, true, nil)
		if err != nil {
			return err
		}
		defer a.close()
		return a.catalog.Delete(cmd.Context(), args[0])
	},
}

func init() {
	rootCmd.AddCommand(storeCmd)
	storeCmd.AddCommand(storePutCmd, storeGetCmd, storeListCmd, storeDeleteCmd)
	storePutCmd.Flags().StringP("format", "f", "", "Input format (default: from the file extension)")
	storeGetCmd.Flags().StringP("format", "f", "yaml", "Output format: json, yaml or binpb")
}

func runStorePut(ctx context.Context, in io.Reader, out io.Writer, cat *netspec.Catalog, name, path, format string) error {
	ms := &spec.MasterSpec{}
	if err := readMessage(in, path, format, ms); err != nil {
		return err
	}
	err := cat.Put(ctx, name, ms)
	if issues := validator.Issues(err); len(issues) > 0 {
		for _, issue := range issues {
			fmt.Fprintf(out, "  - %s\n", issue)
		}
		return fmt.Errorf("%w: %s not saved, %d issues", errValidation, name, len(issues))
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "saved %s\n", name)
	return nil
}

func runStoreGet(ctx context.Context, out io.Writer, cat *netspec.Catalog, name, format string) error {
	f, err := codec.ParseFormat(format)
	if err != nil {
		return err
	}
	ms, err := cat.Get(ctx, name)
	if err != nil {
		return err
	}
	data, err := codec.Marshal(f, ms)
	if err != nil {
		return err
	}
	_, err = out.Write(data)
	return err
}

func runStoreList(ctx context.Context, out io.Writer, cat *netspec.Catalog) error {
	names, err := cat.List(ctx)
	if err != nil {
		return err
	}
	for _, name := range names {
		fmt.Fprintln(out, name)
	}
	return nil
}
