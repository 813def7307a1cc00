// Package config resolves rowstore's CLI configuration: the database file
// path, REPL prompt, and log level, from flags, environment variables, and
// an optional config file, via spf13/pflag + spf13/viper.
package config

import (
	"github.com/pkg/errors"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const envPrefix = "ROWSTORE"

// Config is the resolved set of settings a rowstore process runs with.
type Config struct {
	DBPath   string
	Prompt   string
	LogLevel string
}

// Parse resolves Config from argv (excluding the program name), environment
// variables prefixed ROWSTORE_, and an optional --config file. A bare
// positional argument is accepted as the database path for compatibility
// with spec.md's "single positional argument" invocation.
func Parse(argv []string) (Config, error) {
	flags := pflag.NewFlagSet("rowstore", pflag.ContinueOnError)

	flags.String("db", "", "path to the database file")
	flags.String("prompt", "db > ", "REPL prompt string")
	flags.String("log-level", "info", "log level: debug, info, warn, error")
	configFile := flags.String("config", "", "optional config file path")

	if err := flags.Parse(argv); err != nil {
		return Config{}, errors.Wrap(err, "config: parse flags")
	}

	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()

	if *configFile != "" {
		v.SetConfigFile(*configFile)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, errors.Wrapf(err, "config: read %s", *configFile)
		}
	}

	if err := v.BindPFlag("db", flags.Lookup("db")); err != nil {
		return Config{}, err
	}
	if err := v.BindPFlag("prompt", flags.Lookup("prompt")); err != nil {
		return Config{}, err
	}
	if err := v.BindPFlag("log-level", flags.Lookup("log-level")); err != nil {
		return Config{}, err
	}

	resolvedDB := v.GetString("db")
	if resolvedDB == "" && flags.NArg() > 0 {
		resolvedDB = flags.Arg(0)
	}
	if resolvedDB == "" {
		return Config{}, errors.New("config: a database file path is required (use --db, ROWSTORE_DB, or a positional argument)")
	}

	return Config{
		DBPath:   resolvedDB,
		Prompt:   v.GetString("prompt"),
		LogLevel: v.GetString("log-level"),
	}, nil
}
