package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// EnvPrefix prefixes environment overrides. Nested keys use a double
// underscore: SHEETACT_GRID__ROWS sets grid.rows.
const EnvPrefix = "SHEETACT_"

// flagKeys maps command line flag names to config keys.
var flagKeys = map[string]string{
	"rows":             "grid.rows",
	"cols":             "grid.cols",
	"tables":           "grid.tables",
	"checkpoint":       "paste.checkpoint",
	"signature-suffix": "signature.suffix",
	"key-file":         "signature.key_file",
	"history-limit":    "history.limit",
	"log-level":        "log.level",
	"log-format":       "log.format",
}

// findConfigFile finds the config file to use.
// Priority: explicit path > sheetact.yaml > sheetact.yml
func findConfigFile(explicit string) string {
	if explicit != "" {
		return explicit
	}
	for _, name := range []string{"sheetact.yaml", "sheetact.yml"} {
		if _, err := os.Stat(name); err == nil {
			return name
		}
	}
	return ""
}

// Load loads configuration from defaults, file, environment variables and
// flags. Precedence (highest to lowest): flags > env vars > config file >
// defaults. It returns the config file used, if any.
func Load(cfgFile string, flags *pflag.FlagSet) (*Config, string, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, "", fmt.Errorf("failed to load defaults: %w", err)
	}

	used := findConfigFile(cfgFile)
	if used != "" {
		if err := k.Load(file.Provider(used), yaml.Parser()); err != nil {
			return nil, "", fmt.Errorf("error reading config file %s: %w", used, err)
		}
	}

	// SHEETACT_SIGNATURE__KEY_FILE -> signature.key_file
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		s = strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, "", fmt.Errorf("failed to load env vars: %w", err)
	}

	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, interface{}) {
			key, ok := flagKeys[f.Name]
			if !ok || !f.Changed {
				return "", nil
			}
			return key, posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, "", fmt.Errorf("failed to load flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, "", fmt.Errorf("unable to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, used, nil
}

// RegisterFlags adds the flags Load understands to fs.
func RegisterFlags(fs *pflag.FlagSet) {
	fs.Int("rows", 0, "Rows of a new grid")
	fs.Int("cols", 0, "Columns of a new grid")
	fs.Int("tables", 0, "Tables of a new grid")
	fs.Int("checkpoint", 0, "Rows between paste progress reports")
	fs.String("signature-suffix", "", "Suffix of signature files")
	fs.String("key-file", "", "Signing key file, created if missing")
	fs.Int("history-limit", 0, "Number of undo steps kept")
	fs.String("log-level", "", "Log level (debug, info, warn, error)")
	fs.String("log-format", "", "Log format (text, json)")
}
