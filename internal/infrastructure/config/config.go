package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config is the full configuration tree: local data locations, the
// remote catalog connection, study defaults and logging
type Config struct {
	Data    DataConfig    `mapstructure:"data"`
	Catalog CatalogConfig `mapstructure:"catalog"`
	Study   StudyConfig   `mapstructure:"study"`
	Log     LogConfig     `mapstructure:"log"`
}

// DataConfig holds local storage locations
type DataConfig struct {
	Dir        string `mapstructure:"dir"`
	MirrorFile string `mapstructure:"mirror_file"`
}

// CatalogConfig holds remote word-catalog configuration
type CatalogConfig struct {
	DSN      string `mapstructure:"dsn"`
	PageSize int    `mapstructure:"page_size"`
}

// StudyConfig holds study-flow defaults
type StudyConfig struct {
	WordsPerDay int `mapstructure:"words_per_day"`
	QuizSize    int `mapstructure:"quiz_size"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads configuration from file and environment variables
func Load() (*Config, error) {
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")

	// Set default values
	setDefaults()

	// Enable reading from environment variables
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Read configuration file
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults() {
	// Local data defaults
	viper.SetDefault("data.dir", ".kamusi")
	viper.SetDefault("data.mirror_file", "mirror.db")

	// Remote catalog defaults
	viper.SetDefault("catalog.dsn", "")
	viper.SetDefault("catalog.page_size", 200)

	// Study defaults
	viper.SetDefault("study.words_per_day", 40)
	viper.SetDefault("study.quiz_size", 10)

	// Log defaults
	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.format", "json")
}

// MirrorPath returns the on-disk location of the offline mirror database.
func (c *Config) MirrorPath() string {
	return filepath.Join(c.Data.Dir, c.Data.MirrorFile)
}
