package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/jsonpit/pkg/core"
)

var historyLast int

// historyCmd represents the history command
var historyCmd = &cobra.Command{
	Use:   "history [name]",
	Short: "Print every stored version of a record, oldest first",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := openPit(true)
		if err != nil {
			return err
		}
		h, ok := p.History(args[0])
		if !ok {
			return fmt.Errorf("%s: %w", args[0], core.ErrNotFound)
		}
		items := h.Items()
		if historyLast > 0 && len(items) > historyLast {
			items = items[len(items)-historyLast:]
		}
		return printRecords(cmd.OutOrStdout(), items, false)
	},
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().IntVar(&historyLast, "last", 0, "Only show the newest N versions")
}
