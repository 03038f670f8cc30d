package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var deleteCmd = &cobra.Command{
	Use:   "delete [name]",
	Short: "Delete a record",
	Long:  `Delete records a tombstone for name. Its history stays readable with get --at and history.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]
		p, err := openPit(false)
		if err != nil {
			return err
		}
		deleted, err := p.Delete(name)
		if err != nil {
			_ = p.Close(cmd.Context())
			return err
		}
		if err := p.Close(cmd.Context()); err != nil {
			return err
		}

		if deleted {
			fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", name)
		} else {
			fmt.Fprintf(cmd.OutOrStdout(), "%s not present\n", name)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(deleteCmd)
}
