package config

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Environment string         `mapstructure:"environment"`
	LogLevel    string         `mapstructure:"log_level"`
	Server      ServerConfig   `mapstructure:"server"`
	Store       StoreConfig    `mapstructure:"store"`
	Database    DatabaseConfig `mapstructure:"database"`
	Redis       RedisConfig    `mapstructure:"redis"`
	Blob        BlobConfig     `mapstructure:"blob"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port                int `mapstructure:"port"`
	ReadTimeoutSeconds  int `mapstructure:"read_timeout_seconds"`
	WriteTimeoutSeconds int `mapstructure:"write_timeout_seconds"`
	IdleTimeoutSeconds  int `mapstructure:"idle_timeout_seconds"`
}

// StoreConfig selects the item store backend and names the logical tables
type StoreConfig struct {
	Backend      string `mapstructure:"backend"` // memory, postgres, redis
	AdSpaceTable string `mapstructure:"adspace_table"`
	AdTable      string `mapstructure:"ad_table"`
}

// DatabaseConfig holds PostgreSQL configuration
type DatabaseConfig struct {
	Host                   string `mapstructure:"host"`
	Port                   int    `mapstructure:"port"`
	User                   string `mapstructure:"user"`
	Password               string `mapstructure:"password"`
	Name                   string `mapstructure:"name"`
	SSLMode                string `mapstructure:"ssl_mode"`
	MaxOpenConns           int    `mapstructure:"max_open_conns"`
	MaxIdleConns           int    `mapstructure:"max_idle_conns"`
	ConnMaxLifetimeMinutes int    `mapstructure:"conn_max_lifetime_minutes"`
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host                string `mapstructure:"host"`
	Port                int    `mapstructure:"port"`
	Password            string `mapstructure:"password"`
	DB                  int    `mapstructure:"db"`
	PoolSize            int    `mapstructure:"pool_size"`
	ReadTimeoutSeconds  int    `mapstructure:"read_timeout_seconds"`
	WriteTimeoutSeconds int    `mapstructure:"write_timeout_seconds"`
}

// BlobConfig holds blob store configuration
type BlobConfig struct {
	Backend       string `mapstructure:"backend"` // memory, disk
	Dir           string `mapstructure:"dir"`
	PublicBaseURL string `mapstructure:"public_base_url"`
	StrictUploads bool   `mapstructure:"strict_uploads"`
}

// Load loads configuration from file and environment variables
func Load() (*Config, error) {
	env := os.Getenv("APP_ENV")
	if env == "" {
		env = os.Getenv("ENVIRONMENT")
	}
	if env == "" {
		env = "development"
	}

	configName := "config"
	if env == "production" {
		configName = "production"
	}

	viper.SetConfigName(configName)
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./configs")
	viper.AddConfigPath("../../configs")
	viper.AddConfigPath("/app/configs")

	// Read config file (it's okay if it doesn't exist)
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Process the config with environment variable substitution
	processedConfig := make(map[string]interface{})
	if err := viper.Unmarshal(&processedConfig); err != nil {
		return nil, fmt.Errorf("failed to unmarshal raw config: %w", err)
	}

	// Process {ENV-default} patterns recursively
	processEnvPatterns(processedConfig)

	processedViper := viper.New()
	for key, value := range processedConfig {
		processedViper.Set(key, value)
	}

	var config Config
	if err := processedViper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal processed config: %w", err)
	}

	applyDefaults(&config)

	return &config, nil
}

func applyDefaults(config *Config) {
	if config.Environment == "" {
		config.Environment = "development"
	}
	if config.LogLevel == "" {
		config.LogLevel = "info"
	}
	if config.Server.Port == 0 {
		config.Server.Port = 8888
	}
	if config.Store.Backend == "" {
		config.Store.Backend = "memory"
	}
	if config.Store.AdSpaceTable == "" {
		config.Store.AdSpaceTable = "AdSpace"
	}
	if config.Store.AdTable == "" {
		config.Store.AdTable = "Ads"
	}
	if config.Blob.Backend == "" {
		config.Blob.Backend = "memory"
	}
	if config.Blob.Dir == "" {
		config.Blob.Dir = "./blobs"
	}
	if config.Blob.PublicBaseURL == "" {
		config.Blob.PublicBaseURL = fmt.Sprintf("http://localhost:%d/blobs", config.Server.Port)
	}
}

// processEnvPatterns processes {ENV-default} patterns recursively
func processEnvPatterns(config map[string]interface{}) {
	for key, value := range config {
		config[key] = processValue(value)
	}
}

// processValue processes a single value for environment variable substitution
func processValue(value interface{}) interface{} {
	envPattern := regexp.MustCompile(`\{([A-Z_]+)-([^}]*)\}`)

	switch v := value.(type) {
	case string:
		if matches := envPattern.FindStringSubmatch(v); len(matches) == 3 {
			envVar := matches[1]
			defaultValue := matches[2]

			if envValue := os.Getenv(envVar); envValue != "" {
				return convertValue(envValue, defaultValue)
			}
			return convertValue(defaultValue, defaultValue)
		}
		return v
	case map[string]interface{}:
		processEnvPatterns(v)
		return v
	case []interface{}:
		for i, item := range v {
			v[i] = processValue(item)
		}
		return v
	default:
		return v
	}
}

// convertValue converts string values to appropriate types
func convertValue(value, defaultValue string) interface{} {
	// Special case: if default is empty, always return the value as string (even if empty)
	if defaultValue == "" {
		return value
	}

	if value == "" {
		return convertToType(defaultValue)
	}

	return convertToType(value)
}

// convertToType converts a string to the most appropriate type
func convertToType(value string) interface{} {
	if value == "" {
		return ""
	}

	if strings.ToLower(value) == "true" {
		return true
	}
	if strings.ToLower(value) == "false" {
		return false
	}

	if intVal, err := strconv.Atoi(value); err == nil {
		return intVal
	}

	if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
		return floatVal
	}

	return value
}
