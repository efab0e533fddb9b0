// Package config loads sheetact settings from defaults, a YAML file,
// SHEETACT_ environment variables and command line flags.
package config

import (
	"fmt"

	"github.com/ukaji3/sheetact-go/pkg/sheetact"
	"github.com/ukaji3/sheetact-go/pkg/sheetact/grid"
	"github.com/ukaji3/sheetact-go/pkg/sheetact/history"
	"github.com/ukaji3/sheetact-go/pkg/sheetact/models"
	"github.com/ukaji3/sheetact-go/pkg/sheetact/paste"
	"github.com/ukaji3/sheetact-go/pkg/sheetact/trust"
)

// Default values.
const (
	DefaultLogLevel  = "info"
	DefaultLogFormat = "text"
)

// Config is the complete sheetact configuration.
type Config struct {
	Grid      GridConfig      `koanf:"grid"`
	Paste     PasteConfig     `koanf:"paste"`
	Signature SignatureConfig `koanf:"signature"`
	History   HistoryConfig   `koanf:"history"`
	Log       LogConfig       `koanf:"log"`
}

// GridConfig is the shape of new grids.
type GridConfig struct {
	Rows   int `koanf:"rows"`
	Cols   int `koanf:"cols"`
	Tables int `koanf:"tables"`
}

// PasteConfig configures the paste pipeline.
type PasteConfig struct {
	Checkpoint int `koanf:"checkpoint"`
}

// SignatureConfig configures file signing. A passphrase takes precedence
// over a key file; with neither, files cannot be signed.
type SignatureConfig struct {
	Suffix     string `koanf:"suffix"`
	KeyFile    string `koanf:"key_file"`
	Passphrase string `koanf:"passphrase"`
}

// HistoryConfig configures undo.
type HistoryConfig struct {
	Limit int `koanf:"limit"`
}

// LogConfig configures the process logger.
type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

func defaults() map[string]any {
	return map[string]any{
		"grid.rows":          grid.DefaultShape.Rows,
		"grid.cols":          grid.DefaultShape.Cols,
		"grid.tables":        grid.DefaultShape.Tables,
		"paste.checkpoint":   paste.DefaultCheckpoint,
		"signature.suffix":   trust.DefaultSuffix,
		"signature.key_file": "",
		"history.limit":      history.DefaultLimit,
		"log.level":          DefaultLogLevel,
		"log.format":         DefaultLogFormat,
	}
}

// Shape returns the configured grid shape.
func (c *Config) Shape() models.Shape {
	return models.Shape{Rows: c.Grid.Rows, Cols: c.Grid.Cols, Tables: c.Grid.Tables}
}

// Validate checks the configuration for values the action layer rejects.
func (c *Config) Validate() error {
	if !c.Shape().Valid() {
		return fmt.Errorf("grid shape must be positive, got %dx%dx%d", c.Grid.Rows, c.Grid.Cols, c.Grid.Tables)
	}
	if c.Paste.Checkpoint <= 0 {
		return fmt.Errorf("paste.checkpoint must be positive, got %d", c.Paste.Checkpoint)
	}
	if c.Signature.Suffix == "" {
		return fmt.Errorf("signature.suffix is required")
	}
	if c.History.Limit <= 0 {
		return fmt.Errorf("history.limit must be positive, got %d", c.History.Limit)
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("log.format must be text or json, got %q", c.Log.Format)
	}
	return nil
}

// Backend returns the signing backend described by the configuration, or
// nil when no key is configured.
func (c *Config) Backend() (trust.Backend, error) {
	switch {
	case c.Signature.Passphrase != "":
		return trust.NewHMACBackend(trust.DeriveKey(c.Signature.Passphrase)), nil
	case c.Signature.KeyFile != "":
		key, err := trust.LoadOrCreateKey(c.Signature.KeyFile)
		if err != nil {
			return nil, fmt.Errorf("signing key %s: %w", c.Signature.KeyFile, err)
		}
		return trust.NewHMACBackend(key), nil
	default:
		return nil, nil
	}
}

// Options converts the configuration into action layer options.
func (c *Config) Options() (sheetact.Options, error) {
	backend, err := c.Backend()
	if err != nil {
		return sheetact.Options{}, err
	}
	return sheetact.Options{
		Shape:           c.Shape(),
		Checkpoint:      c.Paste.Checkpoint,
		HistoryLimit:    c.History.Limit,
		SignatureSuffix: c.Signature.Suffix,
		Backend:         backend,
	}, nil
}
