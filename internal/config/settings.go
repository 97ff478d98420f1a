package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Settings is the runtime configuration of the paygo service and CLI
type Settings struct {
	Server  ServerSettings  `mapstructure:"server"  yaml:"server"`
	Rates   RatesSettings   `mapstructure:"rates"   yaml:"rates"`
	Batch   BatchSettings   `mapstructure:"batch"   yaml:"batch"`
	Logging LoggingSettings `mapstructure:"logging" yaml:"logging"`
}

// ServerSettings holds HTTP API settings
type ServerSettings struct {
	Host           string        `mapstructure:"host"            yaml:"host"`
	Port           int           `mapstructure:"port"            yaml:"port"`
	CORSOrigins    []string      `mapstructure:"cors_origins"    yaml:"cors_origins"`
	RequestTimeout time.Duration `mapstructure:"request_timeout" yaml:"request_timeout"`
	MaxBatchSize   int           `mapstructure:"max_batch_size"  yaml:"max_batch_size"`
}

// Addr returns host:port
func (s ServerSettings) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// RatesSettings selects where RateSets come from
type RatesSettings struct {
	Source          string        `mapstructure:"source"           yaml:"source"` // "builtin", "file", "postgres", "mongo"
	File            string        `mapstructure:"file"             yaml:"file"`
	PostgresDSN     string        `mapstructure:"postgres_dsn"     yaml:"postgres_dsn"`
	MongoURI        string        `mapstructure:"mongo_uri"        yaml:"mongo_uri"`
	MongoDatabase   string        `mapstructure:"mongo_database"   yaml:"mongo_database"`
	MongoCollection string        `mapstructure:"mongo_collection" yaml:"mongo_collection"`
	ResolveTimeout  time.Duration `mapstructure:"resolve_timeout"  yaml:"resolve_timeout"`
	Cache           bool          `mapstructure:"cache"            yaml:"cache"`
}

// BatchSettings holds batch simulation settings
type BatchSettings struct {
	Concurrency int `mapstructure:"concurrency" yaml:"concurrency"` // 0 means GOMAXPROCS
}

// LoggingSettings holds logging settings
type LoggingSettings struct {
	Level  string `mapstructure:"level"  yaml:"level"`  // "debug", "info", "warn", "error"
	Format string `mapstructure:"format" yaml:"format"` // "text" or "json"
}

// Rate source names
const (
	SourceBuiltin  = "builtin"
	SourceFile     = "file"
	SourcePostgres = "postgres"
	SourceMongo    = "mongo"
)

const envPrefix = "PAYGO"

// LoadSettings reads settings from an optional file and PAYGO_* environment
// variables, e.g. PAYGO_SERVER_PORT or PAYGO_RATES_SOURCE. When path is empty,
// ./paygo.yaml and /etc/paygo/paygo.yaml are tried and may be absent.
func LoadSettings(path string) (*Settings, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", path, err)
		}
	} else {
		v.SetConfigName("paygo")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("/etc/paygo")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, fmt.Errorf("error reading config file: %w", err)
			}
		}
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.cors_origins", []string{"http://localhost:3000"})
	v.SetDefault("server.request_timeout", "30s")
	v.SetDefault("server.max_batch_size", 5000)

	v.SetDefault("rates.source", SourceBuiltin)
	v.SetDefault("rates.file", "")
	v.SetDefault("rates.postgres_dsn", "")
	v.SetDefault("rates.mongo_uri", "")
	v.SetDefault("rates.mongo_database", "payroll")
	v.SetDefault("rates.mongo_collection", "rate_sets")
	v.SetDefault("rates.resolve_timeout", "5s")
	v.SetDefault("rates.cache", true)

	v.SetDefault("batch.concurrency", 0)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
}

// Validate checks settings that would otherwise fail late at startup
func (s *Settings) Validate() error {
	if s.Server.Port <= 0 || s.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535, got %d", s.Server.Port)
	}
	if s.Server.MaxBatchSize < 0 {
		return fmt.Errorf("server.max_batch_size cannot be negative")
	}
	if s.Batch.Concurrency < 0 {
		return fmt.Errorf("batch.concurrency cannot be negative")
	}
	switch s.Rates.Source {
	case SourceBuiltin:
	case SourceFile:
		if s.Rates.File == "" {
			return fmt.Errorf("rates.file is required when rates.source is %q", SourceFile)
		}
	case SourcePostgres:
		if s.Rates.PostgresDSN == "" {
			return fmt.Errorf("rates.postgres_dsn is required when rates.source is %q", SourcePostgres)
		}
	case SourceMongo:
		if s.Rates.MongoURI == "" {
			return fmt.Errorf("rates.mongo_uri is required when rates.source is %q", SourceMongo)
		}
	default:
		return fmt.Errorf("unknown rates.source %q", s.Rates.Source)
	}
	switch s.Logging.Format {
	case "text", "json":
	default:
		return fmt.Errorf("logging.format must be text or json, got %q", s.Logging.Format)
	}
	return nil
}
