package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "netspec",
	Short: "netspec manages network specifications for a transition-based trainer",
	Long: `netspec validates, converts, stores and visualizes the MasterSpec, GridPoint
and TrainTarget records that configure a multi-component trainer.

Settings not given as flags are read from NETSPEC_* environment variables.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	pf := rootCmd.PersistentFlags()
	pf.String("store", "", "Spec store URI: mem://, file://DIR, redis://HOST:PORT, sqlite://PATH or loam://DIR (env NETSPEC_STORE)")
	pf.String("log-level", "", "Log level: debug, info, warn or error (env NETSPEC_LOG_LEVEL)")
	pf.String("log-format", "", "Log format: text or json (env NETSPEC_LOG_FORMAT)")
	pf.String("registry", "", "YAML file of extra modules to check selectors against")
	pf.Bool("allow-self-links", false, "Accept linked features that read from their own component")
}
