// Package config loads the daemon's bootstrap configuration: where the
// persisted JSON document lives, and how verbosely to log. It never
// touches the domain configuration document itself — that is the
// Configuration Manager actor's job (see internal/configstore).
package config

import (
	"fmt"
	"os"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"mossd/internal/errors"
	"mossd/internal/logger"
)

// Version is overridden at build time via -ldflags.
var Version = "dev"

const defaultConfigPath = "moss/config.json"

// Config is the ambient, process-wide bootstrap configuration.
type Config struct {
	ConfigPath     string
	Debug          bool
	Verbose        bool
	HistoryEnabled bool
	HistoryDBPath  string
}

// Load parses flags and environment variables and returns the bootstrap
// configuration. It prints the version and exits when --version/-V is
// given, matching the CLI contract in spec section 6.
func Load(args []string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	flags := pflag.NewFlagSet("mossd", pflag.ContinueOnError)
	defineFlags(flags, v)

	if err := flags.Parse(args); err != nil {
		return nil, errors.Wrap(errors.ErrBindFlags, err)
	}

	if showVersion, _ := flags.GetBool("version"); showVersion {
		fmt.Printf("mossd %s\n", Version)
		os.Exit(0)
	}

	if err := v.BindPFlags(flags); err != nil {
		return nil, errors.Wrap(errors.ErrBindFlags, err)
	}

	bindEnvVariables(v)

	cfg := &Config{
		ConfigPath:     v.GetString("config"),
		Debug:          v.GetBool("debug"),
		Verbose:        v.GetBool("verbose"),
		HistoryEnabled: v.GetBool("history.enabled"),
		HistoryDBPath:  v.GetString("history.db_path"),
	}

	if cfg.ConfigPath == "" {
		return nil, errors.NewCode(errors.ErrMissingConfig)
	}

	setLogLevel(cfg)

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("config", defaultConfigPath)
	v.SetDefault("debug", false)
	v.SetDefault("verbose", false)
	v.SetDefault("history.enabled", false)
	v.SetDefault("history.db_path", "/var/lib/mossd/history.db")
}

func defineFlags(flags *pflag.FlagSet, v *viper.Viper) {
	flags.StringP("config", "c", v.GetString("config"), "path to the JSON configuration document")
	flags.BoolP("version", "V", false, "print the version and exit")
	flags.Bool("debug", v.GetBool("debug"), "enable debug logging")
	flags.Bool("verbose", v.GetBool("verbose"), "enable verbose logging")
}

func bindEnvVariables(v *viper.Viper) {
	v.SetEnvPrefix("MOSSD")
	v.AutomaticEnv()
}

func setLogLevel(cfg *Config) {
	logger.Init(cfg.Debug, cfg.Verbose, logger.IsService())
}
