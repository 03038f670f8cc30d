package main

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/aretw0/jsonpit/pkg/core"
)

var (
	addNote string
	addAt   string
)

// addCmd represents the add command
var addCmd = &cobra.Command{
	Use:   "add [name] [json]",
	Short: "Store a new version of a record",
	Long: `Add stores the JSON object (or any JSON value, kept under "_") as the
newest version of name. When json is omitted or "-" it is read from stdin.
A write whose content equals the current version is ignored.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]
		var data []byte
		if len(args) == 2 && args[1] != "-" {
			data = []byte(args[1])
		} else {
			var err error
			if data, err = io.ReadAll(cmd.InOrStdin()); err != nil {
				return fmt.Errorf("failed to read stdin: %w", err)
			}
		}

		var opts []core.ItemOption
		if addNote != "" {
			opts = append(opts, core.WithNote(addNote))
		}
		if addAt != "" {
			ts, err := parseTime(addAt)
			if err != nil {
				return err
			}
			opts = append(opts, core.WithTimestamp(ts))
		}
		it, err := core.ParseItem(name, data, opts...)
		if err != nil {
			return err
		}

		p, err := openPit(false)
		if err != nil {
			return err
		}
		added, err := p.Add(it)
		if err != nil {
			_ = p.Close(cmd.Context())
			return err
		}
		// Fixed timestamps do not mark the pit dirty.
		if err := p.Save(cmd.Context(), added && addAt != ""); err != nil {
			_ = p.Close(cmd.Context())
			return err
		}

		if added {
			fmt.Fprintf(cmd.OutOrStdout(), "added %s @ %s\n", name, it.Modified().Format(time.RFC3339Nano))
		} else {
			fmt.Fprintf(cmd.OutOrStdout(), "unchanged %s\n", name)
		}
		return p.Close(cmd.Context())
	},
}

// parseTime accepts RFC 3339 with or without fractional seconds.
func parseTime(s string) (time.Time, error) {
	ts, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid time %q (want RFC 3339): %w", s, err)
	}
	return ts.UTC(), nil
}

func init() {
	rootCmd.AddCommand(addCmd)
	addCmd.Flags().StringVarP(&addNote, "note", "n", "", "Provenance note stored with the version")
	addCmd.Flags().StringVar(&addAt, "at", "", "Fixed timestamp (RFC 3339) instead of now")
}
