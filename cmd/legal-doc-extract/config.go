package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/viper"

	legaldoc "github.com/jimmc414/legal-doc-extract"
)

// Config holds the runtime settings for the CLI.
type Config struct {
	APIKey        string        `mapstructure:"api_key"`
	Model         string        `mapstructure:"model"`
	MinConfidence float64       `mapstructure:"min_confidence"`
	Timeout       time.Duration `mapstructure:"timeout"`
	MaxAttempts   uint          `mapstructure:"max_attempts"`
	RetryDelay    time.Duration `mapstructure:"retry_delay"`
	Concurrency   int           `mapstructure:"concurrency"`
}

// initConfig wires viper: defaults, optional config file, and environment
// variables with the LEGALDOC_ prefix. The Gemini credential is also read
// from the conventional GEMINI_API_KEY variable.
func initConfig(cfgFile string) error {
	viper.SetDefault("model", legaldoc.DefaultModel)
	viper.SetDefault("min_confidence", legaldoc.DefaultMinConfidence)
	viper.SetDefault("timeout", 2*time.Minute)
	viper.SetDefault("max_attempts", 3)
	viper.SetDefault("retry_delay", 2*time.Second)
	viper.SetDefault("concurrency", 4)

	viper.SetEnvPrefix("LEGALDOC")
	viper.AutomaticEnv()
	if err := viper.BindEnv("api_key", "GEMINI_API_KEY", "LEGALDOC_API_KEY"); err != nil {
		return err
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		viper.AddConfigPath("$HOME/.legal-doc-extract")
	}

	// Config file is optional
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("read config file: %w", err)
		}
	}

	return nil
}

// loadConfig parses the current viper state and checks the credential.
func loadConfig() (*Config, error) {
	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY is required")
	}
	return &cfg, nil
}
