package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. NETAUDIT_WORKERS or
// NETAUDIT_STORE_BACKEND.
const EnvPrefix = "NETAUDIT"

// Config is the top-level application configuration. Values come from, in
// increasing precedence: built-in defaults, netaudit.yaml, a .env file, the
// process environment and command-line flags.
type Config struct {
	Log        LogConfig        `mapstructure:"log"        yaml:"log"        json:"log"`
	Policy     PolicyConfig     `mapstructure:"policy"     yaml:"policy"     json:"policy"`
	Workers    int              `mapstructure:"workers"    yaml:"workers"    json:"workers"`
	Store      StoreConfig      `mapstructure:"store"      yaml:"store"      json:"store"`
	AWS        AWSConfig        `mapstructure:"aws"        yaml:"aws"        json:"aws"`
	Kubernetes KubernetesConfig `mapstructure:"kubernetes" yaml:"kubernetes" json:"kubernetes"`
}

// LogConfig configures the zap logger.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `mapstructure:"level" yaml:"level" json:"level"`
	// Format is "console" or "json".
	Format string `mapstructure:"format" yaml:"format" json:"format"`
}

// PolicyConfig points at the policy file applied to every analysis.
type PolicyConfig struct {
	Path string `mapstructure:"path" yaml:"path" json:"path"`
}

// StoreConfig selects where analysed reports are persisted.
type StoreConfig struct {
	// Backend is none, memory, sqlite or s3.
	Backend    string   `mapstructure:"backend"     yaml:"backend"     json:"backend"`
	SQLitePath string   `mapstructure:"sqlite_path" yaml:"sqlite_path" json:"sqlite_path"`
	S3         S3Config `mapstructure:"s3"          yaml:"s3"          json:"s3"`
}

// S3Config locates the report bucket.
type S3Config struct {
	Bucket string `mapstructure:"bucket" yaml:"bucket" json:"bucket"`
	Prefix string `mapstructure:"prefix" yaml:"prefix" json:"prefix"`
}

// AWSConfig holds AWS defaults used when flags are not provided.
type AWSConfig struct {
	Profile string `mapstructure:"profile" yaml:"profile" json:"profile"`
	Region  string `mapstructure:"region"  yaml:"region"  json:"region"`
}

// KubernetesConfig selects the ConfigMaps read by the configmap source.
type KubernetesConfig struct {
	Context   string `mapstructure:"context"   yaml:"context"   json:"context"`
	Namespace string `mapstructure:"namespace" yaml:"namespace" json:"namespace"`
	Selector  string `mapstructure:"selector"  yaml:"selector"  json:"selector"`
}

// Loader is the interface for reading Config.
type Loader interface {
	// Load reads, parses, and validates the configuration.
	Load() (*Config, error)

	// ConfigPath returns the path of the configuration file in use, or ""
	// when none was found.
	ConfigPath() string
}

// SetDefaults registers the built-in defaults on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "warn")
	v.SetDefault("log.format", "console")
	v.SetDefault("policy.path", "")
	v.SetDefault("workers", 4)
	v.SetDefault("store.backend", "none")
	v.SetDefault("store.sqlite_path", "netaudit.db")
	v.SetDefault("store.s3.bucket", "")
	v.SetDefault("store.s3.prefix", "reports")
	v.SetDefault("aws.profile", "")
	v.SetDefault("aws.region", "")
	v.SetDefault("kubernetes.context", "")
	v.SetDefault("kubernetes.namespace", "default")
	v.SetDefault("kubernetes.selector", "")
}

// ViperLoader is the default Loader. It searches the working directory and
// ~/.config/netaudit for netaudit.yaml unless File is set, and loads
// EnvFile (default ".env") into the environment first when it exists.
type ViperLoader struct {
	// V is the viper instance to populate. Callers bind flags to it before
	// calling Load.
	V *viper.Viper
	// File is an explicit configuration file; it must exist.
	File string
	// EnvFile is the dotenv file to load. Empty means ".env".
	EnvFile string
}

// NewViperLoader returns a loader over a fresh viper instance with defaults
// and environment binding set up.
func NewViperLoader(file string) *ViperLoader {
	v := viper.New()
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return &ViperLoader{V: v, File: file}
}

func (l *ViperLoader) Load() (*Config, error) {
	envFile := l.EnvFile
	if envFile == "" {
		envFile = ".env"
	}
	// godotenv never overrides variables already set in the environment.
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load %s: %w", envFile, err)
	}

	if l.File != "" {
		l.V.SetConfigFile(l.File)
	} else {
		l.V.SetConfigName("netaudit")
		l.V.SetConfigType("yaml")
		l.V.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			l.V.AddConfigPath(home + "/.config/netaudit")
		}
	}

	if err := l.V.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if l.File != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := l.V.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (l *ViperLoader) ConfigPath() string {
	return l.V.ConfigFileUsed()
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level: unknown level %q", c.Log.Level)
	}
	switch c.Log.Format {
	case "console", "json":
	default:
		return fmt.Errorf("log.format: unknown format %q", c.Log.Format)
	}
	if c.Workers < 1 {
		return fmt.Errorf("workers: must be at least 1, got %d", c.Workers)
	}
	switch c.Store.Backend {
	case "", "none", "memory":
	case "sqlite":
		if c.Store.SQLitePath == "" {
			return errors.New("store.sqlite_path: required for the sqlite backend")
		}
	case "s3":
		if c.Store.S3.Bucket == "" {
			return errors.New("store.s3.bucket: required for the s3 backend")
		}
	default:
		return fmt.Errorf("store.backend: unknown backend %q", c.Store.Backend)
	}
	return nil
}
