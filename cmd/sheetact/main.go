// Package main provides the CLI entry point for sheetact-go.
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/ukaji3/sheetact-go/internal/config"
	"github.com/ukaji3/sheetact-go/pkg/sheetact"
	"github.com/ukaji3/sheetact-go/pkg/sheetact/notify"
)

var (
	cfgFile    string
	outputPath string
	pretty     bool

	cfg    *config.Config
	logger *slog.Logger
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "sheetact",
		Short: "Edit signed three dimensional spreadsheets",
		Long: `sheetact-go opens xlsx grids, applies paste, insert and trust actions,
and saves them back with a detached signature.`,
		SilenceUsage:      true,
		PersistentPreRunE: loadConfig,
	}

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Config file (default: sheetact.yaml)")
	config.RegisterFlags(rootCmd.PersistentFlags())

	rootCmd.AddCommand(
		newNewCmd(),
		newPasteCmd(),
		newInsertCmd(),
		newDeleteCmd(),
		newVerifyCmd(),
		newApproveCmd(),
		newSignCmd(),
		newDumpCmd(),
	)
	return rootCmd
}

func loadConfig(cmd *cobra.Command, _ []string) error {
	c, used, err := config.Load(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}
	l, err := config.NewLogger(c.Log, os.Stderr)
	if err != nil {
		return err
	}
	if used != "" {
		l.Debug("config loaded", "file", used)
	}
	cfg, logger = c, l
	return nil
}

// newActions builds the action layer from the loaded configuration.
func newActions() (*sheetact.Actions, error) {
	opts, err := cfg.Options()
	if err != nil {
		return nil, err
	}
	opts.Logger = logger
	opts.Notifier = notify.NewLogger(logger)
	return sheetact.New(opts)
}

// openActions builds the action layer and opens path.
func openActions(path string) (*sheetact.Actions, error) {
	a, err := newActions()
	if err != nil {
		return nil, err
	}
	if err := a.Open(path); err != nil {
		return nil, err
	}
	return a, nil
}

// target returns the output path, defaulting to the input file.
func target(input string) string {
	if outputPath != "" {
		return outputPath
	}
	return input
}

func writeOutput(w io.Writer, data []byte) error {
	if outputPath != "" {
		if err := os.WriteFile(outputPath, data, 0644); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
		return nil
	}
	_, err := fmt.Fprintln(w, string(data))
	return err
}
