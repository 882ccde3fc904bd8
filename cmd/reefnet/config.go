package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	configFileName = "reefnet"
	configFileType = "yaml"
	envPrefix      = "REEFNET"

	cfgKeyDBPath   = "db_path"
	cfgKeyLogLevel = "log_level"

	defaultDBPath   = "./reefnet.db"
	defaultLogLevel = "warn"
)

// loadConfig resolves CLI configuration. Flags win over REEFNET_* variables,
// which win over the config file. A missing default config file is not an
// error; a missing explicit one is.
func loadConfig(configFile string, root *cobra.Command) (*viper.Viper, error) {
	v := viper.New()
	v.SetDefault(cfgKeyDBPath, defaultDBPath)
	v.SetDefault(cfgKeyLogLevel, defaultLogLevel)

	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()

	if err := v.BindPFlag(cfgKeyDBPath, root.PersistentFlags().Lookup("db")); err != nil {
		return nil, fmt.Errorf("bind db flag: %w", err)
	}
	if err := v.BindPFlag(cfgKeyLogLevel, root.PersistentFlags().Lookup("log-level")); err != nil {
		return nil, fmt.Errorf("bind log-level flag: %w", err)
	}

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName(configFileName)
		v.SetConfigType(configFileType)
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	return v, nil
}
