package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/aretw0/jsonpit"
	"github.com/aretw0/jsonpit/internal/platform"
)

var initMaxCount int

// initCmd represents the init command
var initCmd = &cobra.Command{
	Use:   "init [dir]",
	Short: "Create a pit and a jsonpit.yaml pointing at it",
	Long: `Init creates the pit location (default: ./pit) and writes a jsonpit.yaml
in the current directory so later commands find it without --dir.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := "pit"
		if len(args) == 1 {
			dir = args[0]
		}
		wd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("failed to get working directory: %w", err)
		}
		cfgPath := filepath.Join(wd, platform.ConfigFileName)
		if _, err := os.Stat(cfgPath); err == nil {
			return fmt.Errorf("%s already exists", cfgPath)
		}

		cfg := jsonpit.Config{Dir: dir, Codec: codecName, MaxCount: initMaxCount}
		data, err := yaml.Marshal(&cfg)
		if err != nil {
			return err
		}
		// Validate what we are about to write.
		parsed, err := platform.ParseConfig(data)
		if err != nil {
			return err
		}
		if err := os.WriteFile(cfgPath, data, 0644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}

		loaded, err := jsonpit.LoadConfig(cfgPath)
		if err != nil {
			return err
		}
		p, err := jsonpit.OpenConfig(loaded)
		if err != nil {
			return err
		}
		if err := p.Save(cmd.Context(), true); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Initialized pit %s (codec %s)\n", p.File(), codecOrDefault(parsed.Codec))
		return p.Close(cmd.Context())
	},
}

func codecOrDefault(name string) string {
	if name == "" {
		return "json"
	}
	return name
}

func init() {
	rootCmd.AddCommand(initCmd)
	initCmd.Flags().IntVar(&initMaxCount, "max-count", 0, "Versions kept per name (0 keeps all)")
}
