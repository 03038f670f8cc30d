package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/aretw0/jsonpit"
	"github.com/aretw0/jsonpit/internal/platform"
	"github.com/aretw0/jsonpit/pkg/pit"
)

var (
	verbose    bool
	pitDir     string
	configPath string
	codecName  string
	asYAML     bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "jsonpit",
	Short: "An embedded document store that keeps the history of every record",
	Long: `JsonPit stores named JSON records in a single file and keeps every
version of each one. Unchanged writes are ignored, deletes leave tombstones
and any record can be read as it was at a past instant.

The pit location comes from --dir, the JSONPIT_DIR variable or a
jsonpit.yaml file found in the current directory or one of its parents.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}

		opts := &slog.HandlerOptions{
			Level: level,
		}
		logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), opts))
		slog.SetDefault(logger)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main().
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		fatal("jsonpit", err)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVarP(&pitDir, "dir", "d", "", "Pit location (overrides config and JSONPIT_DIR)")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to jsonpit.yaml (default: search upwards)")
	rootCmd.PersistentFlags().StringVar(&codecName, "codec", "", "Storage format: json, yaml or msgpack")
	rootCmd.PersistentFlags().BoolVar(&asYAML, "yaml", false, "Print records as YAML instead of JSON")
}

// openPit resolves the pit location and opens it.
func openPit(readOnly bool) (*jsonpit.Pit, error) {
	opts := []jsonpit.Option{jsonpit.WithLogger(slog.Default())}
	if readOnly {
		opts = append(opts, jsonpit.WithReadOnly(true), jsonpit.WithMustExist(true))
	}
	if codecName != "" {
		codec, err := pit.CodecByName(codecName)
		if err != nil {
			return nil, err
		}
		opts = append(opts, jsonpit.WithCodec(codec))
	}

	dir := pitDir
	if dir == "" {
		dir = os.Getenv(platform.EnvDir)
	}
	if dir != "" {
		return jsonpit.Open(dir, opts...)
	}

	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return jsonpit.OpenConfig(cfg, opts...)
}

func loadConfig() (*jsonpit.Config, error) {
	path := configPath
	if path == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get working directory: %w", err)
		}
		path, err = jsonpit.FindConfig(wd)
		if errors.Is(err, platform.ErrNoConfig) {
			return nil, errors.New("no pit location: use --dir, set JSONPIT_DIR or add a jsonpit.yaml")
		}
		if err != nil {
			return nil, err
		}
	}
	return jsonpit.LoadConfig(path)
}
