package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aretw0/jsonpit"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of jsonpit",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "jsonpit version %s\n", strings.TrimSpace(jsonpit.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
