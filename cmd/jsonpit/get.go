package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/jsonpit/pkg/core"
)

var (
	getAt      string
	getDeleted bool
)

// getCmd represents the get command
var getCmd = &cobra.Command{
	Use:   "get [name]",
	Short: "Print the current version of a record",
	Long: `Get prints the latest version of name, or with --at the version valid
at that instant. Deleted records are only shown with --deleted.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]
		p, err := openPit(true)
		if err != nil {
			return err
		}

		var it *core.Item
		var ok bool
		switch {
		case getAt != "":
			ts, err := parseTime(getAt)
			if err != nil {
				return err
			}
			it, ok = p.GetAt(name, ts, getDeleted)
		case getDeleted:
			if h, found := p.History(name); found {
				it, ok = h.Latest()
			}
		default:
			it, ok = p.Get(name)
		}
		if !ok {
			return fmt.Errorf("%s: %w", name, core.ErrNotFound)
		}
		return printRecords(cmd.OutOrStdout(), []*core.Item{it}, true)
	},
}

func init() {
	rootCmd.AddCommand(getCmd)
	getCmd.Flags().StringVar(&getAt, "at", "", "Show the version valid at this RFC 3339 time")
	getCmd.Flags().BoolVar(&getDeleted, "deleted", false, "Include tombstones")
}
