package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var saveForce bool

// saveCmd represents the save command
var saveCmd = &cobra.Command{
	Use:   "save",
	Short: "Consolidate the pit file",
	Long: `Save folds change files written by secondary writers into the
consolidated file and removes them. Without pending changes nothing is
written unless --force is given.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := openPit(false)
		if err != nil {
			return err
		}
		dirty := p.Dirty()
		if err := p.Save(cmd.Context(), saveForce); err != nil {
			_ = p.Close(cmd.Context())
			return err
		}
		if dirty || saveForce {
			fmt.Fprintf(cmd.OutOrStdout(), "saved %s\n", p.File())
		} else {
			fmt.Fprintln(cmd.OutOrStdout(), "nothing to save")
		}
		return p.Close(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(saveCmd)
	saveCmd.Flags().BoolVarP(&saveForce, "force", "f", false, "Write even when nothing changed")
}
