package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/KaramelBytes/listing-insights/internal/loader"
	"github.com/KaramelBytes/listing-insights/internal/utils"
)

const (
	// EnvPrefix is prepended to every key when read from the environment,
	// e.g. LISTINGS_OUTPUT_PATH.
	EnvPrefix = "LISTINGS"
	dirName   = ".listing-insights"
)

// Global configuration structure.
type Global struct {
	Candidates    []string `mapstructure:"candidates" yaml:"candidates"`
	Encodings     []string `mapstructure:"encodings" yaml:"encodings"`
	SQLQuery      string   `mapstructure:"sql_query" yaml:"sql_query"`
	SampleSize    int      `mapstructure:"sample_size" yaml:"sample_size"`
	Seed          int64    `mapstructure:"seed" yaml:"seed"`
	OutputPath    string   `mapstructure:"output_path" yaml:"output_path"`
	DPI           int      `mapstructure:"dpi" yaml:"dpi"`
	ScatterSample int      `mapstructure:"scatter_sample" yaml:"scatter_sample"`
	TopHosts      int      `mapstructure:"top_hosts" yaml:"top_hosts"`

	LogLevel  string `mapstructure:"log_level" yaml:"log_level"`
	LogFormat string `mapstructure:"log_format" yaml:"log_format"`
}

// Keys lists the settable configuration keys in display order.
var Keys = []string{
	"candidates", "encodings", "sql_query", "sample_size", "seed",
	"output_path", "dpi", "scatter_sample", "top_hosts", "log_level", "log_format",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("candidates", loader.DefaultCandidates)
	v.SetDefault("encodings", loader.DefaultEncodings)
	v.SetDefault("sql_query", loader.DefaultQuery)
	v.SetDefault("sample_size", loader.DefaultSampleRows)
	v.SetDefault("seed", loader.DefaultSeed)
	v.SetDefault("output_path", "analysis_results.png")
	v.SetDefault("dpi", 300)
	v.SetDefault("scatter_sample", 500)
	v.SetDefault("top_hosts", 10)
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "console")
}

// Dir returns ~/.listing-insights.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, dirName), nil
}

// Load loads configuration from .env, env, file, and defaults.
// Precedence: env > config file (cfgFile or ~/.listing-insights/config.yaml) > defaults.
// Flags are applied on top by the caller.
func Load(cfgFile string) (*Global, error) {
	// .env is optional; variables already set in the environment win
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", cfgFile, err)
		}
	} else {
		dir, err := Dir()
		if err != nil {
			return nil, err
		}
		v.AddConfigPath(dir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate rejects values the analysis cannot run with.
func (c *Global) Validate() error {
	switch {
	case c.DPI <= 0:
		return fmt.Errorf("invalid dpi: %d", c.DPI)
	case c.SampleSize <= 0:
		return fmt.Errorf("invalid sample_size: %d", c.SampleSize)
	case c.ScatterSample <= 0:
		return fmt.Errorf("invalid scatter_sample: %d", c.ScatterSample)
	case c.TopHosts <= 0:
		return fmt.Errorf("invalid top_hosts: %d", c.TopHosts)
	}
	if c.LogLevel != "" {
		if _, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(c.LogLevel))); err != nil {
			return fmt.Errorf("invalid log_level: %s", c.LogLevel)
		}
	}
	switch strings.ToLower(c.LogFormat) {
	case "console", "json", "":
	default:
		return fmt.Errorf("invalid log_format: %s (use console or json)", c.LogFormat)
	}
	return nil
}

// Set assigns a single key from its string form. List keys take a
// comma-separated value.
func (c *Global) Set(key, val string) error {
	switch key {
	case "candidates":
		c.Candidates = splitList(val)
	case "encodings":
		c.Encodings = splitList(val)
	case "sql_query":
		c.SQLQuery = val
	case "output_path":
		c.OutputPath = val
	case "log_level":
		c.LogLevel = val
	case "log_format":
		c.LogFormat = strings.ToLower(val)
	case "seed":
		n, err := strconv.ParseInt(val, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid int for seed: %w", err)
		}
		c.Seed = n
	case "sample_size", "dpi", "scatter_sample", "top_hosts":
		n, err := strconv.Atoi(val)
		if err != nil || n <= 0 {
			return fmt.Errorf("invalid positive int for %s: %v", key, val)
		}
		switch key {
		case "sample_size":
			c.SampleSize = n
		case "dpi":
			c.DPI = n
		case "scatter_sample":
			c.ScatterSample = n
		case "top_hosts":
			c.TopHosts = n
		}
	default:
		return fmt.Errorf("unknown key: %s", key)
	}
	return c.Validate()
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// YAML renders the configuration as it would be saved.
func (c *Global) YAML() ([]byte, error) {
	b, err := yaml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("marshal yaml: %w", err)
	}
	return b, nil
}

// Save writes the given configuration to the cfgFile path. If cfgFile is empty,
// it writes to ~/.listing-insights/config.yaml, creating the directory if necessary.
func Save(c *Global, cfgFile string) error {
	path := cfgFile
	if path == "" {
		dir, err := Dir()
		if err != nil {
			return err
		}
		path = filepath.Join(dir, "config.yaml")
	}
	b, err := c.YAML()
	if err != nil {
		return err
	}
	if err := utils.SafeWriteFile(path, b); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}
