package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/fulmenhq/yarnpin/pkg/logger"
	"github.com/fulmenhq/yarnpin/pkg/manifest"
	"github.com/fulmenhq/yarnpin/pkg/resolutions"
)

// ErrInvalidConfig wraps every configuration problem.
var ErrInvalidConfig = errors.New("invalid configuration")

// DefaultModules is the ordered set of packages released together by the
// upstream virtual publish step.
var DefaultModules = []string{
	"@photic/web3",
	"@photic/web3-bzz",
	"@photic/web3-core-helpers",
	"@photic/web3-core-method",
	"@photic/web3-core-promievent",
	"@photic/web3-core-requestmanager",
	"@photic/web3-core-subscriptions",
	"@photic/web3-core",
	"@photic/web3-eth-abi",
	"@photic/web3-eth-accounts",
	"@photic/web3-eth-contract",
	"@photic/web3-eth-ens",
	"@photic/web3-eth-iban",
	"@photic/web3-eth-personal",
	"@photic/web3-eth",
	"@photic/web3-net",
	"@photic/web3-providers-http",
	"@photic/web3-providers-ipc",
	"@photic/web3-providers-ws",
	"@photic/web3-shh",
	"@photic/web3-utils",
}

// Config holds all configuration for yarnpin
type Config struct {
	Source        string    `mapstructure:"source"`
	ManifestName  string    `mapstructure:"manifest_name"`
	Modules       []string  `mapstructure:"modules"`
	PatternPrefix string    `mapstructure:"pattern_prefix"`
	Indent        string    `mapstructure:"indent"`
	Format        string    `mapstructure:"format"`
	Log           LogConfig `mapstructure:"log"`
}

// LogConfig holds the rotating log file settings
type LogConfig struct {
	File       string `mapstructure:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
	Compress   bool   `mapstructure:"compress"`
}

var defaultConfig = Config{
	Source:        manifest.SourceFileName,
	ManifestName:  manifest.FileName,
	Modules:       DefaultModules,
	PatternPrefix: resolutions.DefaultPatternPrefix,
	Indent:        "    ",
	Format:        resolutions.FormatText,
	Log: LogConfig{
		MaxSizeMB:  10,
		MaxBackups: 3,
		MaxAgeDays: 28,
	},
}

// Default returns a copy of the built-in configuration.
func Default() Config {
	cfg := defaultConfig
	cfg.Modules = append([]string(nil), defaultConfig.Modules...)
	return cfg
}

// flagKeys maps command-line flag names to configuration keys.
var flagKeys = map[string]string{
	"source":   "source",
	"format":   "format",
	"indent":   "indent",
	"log-file": "log.file",
}

// LoadOptions controls where configuration is read from.
type LoadOptions struct {
	Dir        string         // Searched for .yarnpin.{yaml,yml,json,toml}; defaults to "."
	ConfigFile string         // Explicit config file, disables discovery
	Flags      *pflag.FlagSet // Flags layered over file and environment values
}

// LoadConfig merges defaults, the config file, YARNPIN_* environment variables
// and changed flags, then validates the result.
func LoadConfig(opts LoadOptions) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if opts.ConfigFile != "" {
		v.SetConfigFile(opts.ConfigFile)
	} else {
		dir := opts.Dir
		if dir == "" {
			dir = "."
		}
		v.SetConfigName(".yarnpin")
		v.AddConfigPath(dir)
	}

	v.SetEnvPrefix("YARNPIN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if opts.Flags != nil {
		for name, key := range flagKeys {
			f := opts.Flags.Lookup(name)
			if f == nil {
				continue
			}
			if err := v.BindPFlag(key, f); err != nil {
				return nil, fmt.Errorf("%w: bind flag --%s: %v", ErrInvalidConfig, name, err)
			}
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if opts.ConfigFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
		}
	} else {
		used := v.ConfigFileUsed()
		if err := ValidateFile(used); err != nil {
			return nil, err
		}
		logger.Debug("Loaded config file", logger.String("file", used))
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("%w: error unmarshaling config: %v", ErrInvalidConfig, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("source", d.Source)
	v.SetDefault("manifest_name", d.ManifestName)
	v.SetDefault("modules", d.Modules)
	v.SetDefault("pattern_prefix", d.PatternPrefix)
	v.SetDefault("indent", d.Indent)
	v.SetDefault("format", d.Format)
	v.SetDefault("log.file", d.Log.File)
	v.SetDefault("log.max_size_mb", d.Log.MaxSizeMB)
	v.SetDefault("log.max_backups", d.Log.MaxBackups)
	v.SetDefault("log.max_age_days", d.Log.MaxAgeDays)
	v.SetDefault("log.compress", d.Log.Compress)
}

// Validate checks constraints the schema cannot express. Duplicate modules
// are allowed and only logged: the later occurrence wins.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Source) == "" {
		return fmt.Errorf("%w: source manifest path is empty", ErrInvalidConfig)
	}
	if c.ManifestName == "" || filepath.Base(c.ManifestName) != c.ManifestName {
		return fmt.Errorf("%w: manifest_name must be a plain file name, got %q", ErrInvalidConfig, c.ManifestName)
	}
	if strings.Trim(c.Indent, " \t") != "" {
		return fmt.Errorf("%w: indent may only contain spaces and tabs, got %q", ErrInvalidConfig, c.Indent)
	}
	if !resolutions.ValidFormat(c.Format) {
		return fmt.Errorf("%w: unsupported format %q (want text, json or table)", ErrInvalidConfig, c.Format)
	}
	if len(c.Modules) == 0 {
		return fmt.Errorf("%w: no modules configured", ErrInvalidConfig)
	}

	seen := make(map[string]bool, len(c.Modules))
	for i, module := range c.Modules {
		if module == "" || module != strings.TrimSpace(module) {
			return fmt.Errorf("%w: modules[%d] is empty or padded: %q", ErrInvalidConfig, i, module)
		}
		pattern := resolutions.PatternFor(c.PatternPrefix, module)
		if !resolutions.ValidPattern(pattern) {
			return fmt.Errorf("%w: modules[%d] yields invalid resolution pattern %q", ErrInvalidConfig, i, pattern)
		}
		if seen[module] {
			logger.Warn("Duplicate module in configuration, later entry wins", logger.String("module", module))
		}
		seen[module] = true
	}
	return nil
}
