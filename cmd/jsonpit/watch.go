package main

import (
	"fmt"

	"github.com/spf13/cobra"

	pitlifecycle "github.com/aretw0/jsonpit/pkg/adapters/lifecycle"
)

// watchCmd represents the watch command
var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Print records changed by other processes until interrupted",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		p, err := openPit(true)
		if err != nil {
			return err
		}
		defer p.Close(ctx)

		changes, err := p.Watch(ctx)
		if err != nil {
			return err
		}
		src := pitlifecycle.NewSource(changes)
		if err := src.Start(ctx); err != nil {
			return err
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "watching %s\n", p.Dir())
		for e := range src.Events() {
			fmt.Fprintln(cmd.OutOrStdout(), e)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)
}
