package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds the settings of one autocommit run. It is built once at
// startup and handed to the components that need it.
type Config struct {
	ServerURL  string `mapstructure:"server_url"`
	Model      string `mapstructure:"model"`
	APIKey     string `mapstructure:"api_key"`
	Cutoff     int    `mapstructure:"cutoff"`
	PromptFile string `mapstructure:"prompt_file"`
	Edit       bool   `mapstructure:"edit"`
}

const (
	DefaultModel      = "llama3:latest"
	DefaultAPIKey     = "ollama"
	DefaultCutoff     = 10000
	DefaultConfigName = ".autocommit"
	EnvPrefix         = "AUTOCOMMIT"
	// ServerURLEnv is the unprefixed variable naming the completion endpoint.
	ServerURLEnv = "SERVER_URL"
	dotenvName   = ".env"
)

var (
	ErrMissingServerURL = errors.New("completion endpoint not set: export " + ServerURLEnv + " or set server_url in the config file")
	ErrInvalidCutoff    = errors.New("cutoff must be a positive number of characters")
)

// LoadDotenv loads the nearest .env file found in start or any of its
// parents. Variables that are already set keep their values. A missing file
// is not an error.
func LoadDotenv(start string) error {
	path, ok := findDotenv(start)
	if !ok {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

func findDotenv(start string) (string, bool) {
	dir, err := filepath.Abs(start)
	if err != nil {
		return "", false
	}
	for {
		candidate := filepath.Join(dir, dotenvName)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, true
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false
		}
		dir = parent
	}
}

// InitConfig wires viper to its defaults, the environment and an optional
// YAML config file. Without cfgFile, $HOME/.autocommit.yaml is read when it
// exists.
func InitConfig(cfgFile string) error {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		if home, err := os.UserHomeDir(); err == nil {
			viper.AddConfigPath(home)
		}
		viper.SetConfigName(DefaultConfigName)
		viper.SetConfigType("yaml")
	}

	setDefaults()

	viper.SetEnvPrefix(EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
	if err := viper.BindEnv("server_url", EnvPrefix+"_SERVER_URL", ServerURLEnv); err != nil {
		return fmt.Errorf("failed to bind %s: %w", ServerURLEnv, err)
	}

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("failed to read config file: %w", err)
	}
	return nil
}

func setDefaults() {
	viper.SetDefault("server_url", "")
	viper.SetDefault("model", DefaultModel)
	viper.SetDefault("api_key", DefaultAPIKey)
	viper.SetDefault("cutoff", DefaultCutoff)
	viper.SetDefault("prompt_file", "")
	viper.SetDefault("edit", true)
}

// GetConfig decodes the current viper state and validates it.
func GetConfig() (*Config, error) {
	setDefaults()

	cfg := &Config{}
	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	cfg.ServerURL = strings.TrimSpace(cfg.ServerURL)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports the first setting that makes the config unusable.
func (c *Config) Validate() error {
	if c.ServerURL == "" {
		return ErrMissingServerURL
	}
	if c.Cutoff <= 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidCutoff, c.Cutoff)
	}
	return nil
}

// ConfigFileUsed returns the path of the config file that was read, if any.
func ConfigFileUsed() string {
	return viper.ConfigFileUsed()
}
