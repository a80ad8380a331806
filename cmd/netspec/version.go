package main

import (
	"fmt"
	"strings"

	"github.com/aretw0/netspec"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of netspec",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "netspec version %s\n", strings.TrimSpace(netspec.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
