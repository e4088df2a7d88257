// Config loading for the admin CLI.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

const (
	configFileName = "config"
	configFileType = "yaml"

	// Config keys.
	cfgKeyServer = "server"
	cfgKeyToken  = "token"

	defaultServer = "http://localhost:3000"
)

// loadConfig resolves the CLI configuration: flags win over environment
// variables (ADMIN_SERVER, ADMIN_TOKEN), which win over
// ~/.admin-panel/config.yaml, which wins over defaults. A missing config
// file is not an error.
func loadConfig() (*viper.Viper, error) {
	v := viper.New()
	v.SetDefault(cfgKeyServer, defaultServer)

	v.SetEnvPrefix("ADMIN")
	v.AutomaticEnv()

	home, err := os.UserHomeDir()
	if err == nil {
		v.SetConfigName(configFileName)
		v.SetConfigType(configFileType)
		v.AddConfigPath(filepath.Join(home, ".admin-panel"))
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}

	if flagServer != "" {
		v.Set(cfgKeyServer, flagServer)
	}
	if flagToken != "" {
		v.Set(cfgKeyToken, flagToken)
	}
	return v, nil
}
