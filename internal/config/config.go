// Package config loads the naming server's layered configuration from a
// YAML config file, NS_* environment variables and built-in defaults. An
// NS_* variable overrides a key the file sets; defaults fill whatever is
// still zero. There is no command-line flag layer, and when no config file
// is found the built-in defaults are used without reading the environment.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/marmos91/naming-server/internal/bytesize"
)

// Config is the naming server's full static configuration.
type Config struct {
	// Server controls the client/SS wire listener.
	Server ServerConfig `mapstructure:"server" yaml:"server"`

	// Persistence controls the crash-recovery flat file and the
	// cache/backup directories the fallback engine reads from.
	Persistence PersistenceConfig `mapstructure:"persistence" yaml:"persistence"`

	// Registry controls SS heartbeat timing.
	Registry RegistryConfig `mapstructure:"registry" yaml:"registry"`

	// Search controls the SEARCH result memo.
	Search SearchConfig `mapstructure:"search" yaml:"search"`

	// Logging controls log output behavior.
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging"`

	// Telemetry controls OpenTelemetry distributed tracing and profiling.
	Telemetry TelemetryConfig `mapstructure:"telemetry" yaml:"telemetry"`

	// AdminAPI controls the read-only/administrative HTTP API.
	AdminAPI AdminAPIConfig `mapstructure:"admin_api" yaml:"admin_api"`

	// Mirror controls the optional S3 disaster-recovery mirror.
	Mirror MirrorConfig `mapstructure:"mirror" yaml:"mirror"`

	// ShutdownTimeout bounds how long graceful shutdown waits for
	// in-flight connections before returning.
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"required,gt=0" yaml:"shutdown_timeout"`
}

// ServerConfig controls the client/SS wire TCP listener.
type ServerConfig struct {
	// Port is the TCP port clients and storage servers connect to.
	Port int `mapstructure:"port" validate:"required,min=1,max=65535" yaml:"port"`

	// MaxClients bounds concurrent client connections.
	MaxClients int `mapstructure:"max_clients" validate:"required,gt=0" yaml:"max_clients"`
}

// PersistenceConfig controls the flat-file registry and the fallback
// engine's on-disk cache/backup directories (spec.md §6).
type PersistenceConfig struct {
	// RegistryPath is the crash-recovery flat file.
	RegistryPath string `mapstructure:"registry_path" validate:"required" yaml:"registry_path"`

	// CacheDir is the local read-path cache tier.
	CacheDir string `mapstructure:"cache_dir" validate:"required" yaml:"cache_dir"`

	// BackupDir is the local read-path backup tier, rooted per-SS.
	BackupDir string `mapstructure:"backup_dir" validate:"required" yaml:"backup_dir"`

	// SaveInterval is how often the registry is snapshotted to disk in
	// addition to the save-on-clean-shutdown path.
	SaveInterval time.Duration `mapstructure:"save_interval" validate:"required,gt=0" yaml:"save_interval"`
}

// RegistryConfig controls SS heartbeat timing (spec.md §4.3's state
// machine). Hot-reloadable: a config-file change takes effect without a
// restart.
type RegistryConfig struct {
	// HeartbeatInterval is how often the NS pings each registered SS.
	HeartbeatInterval time.Duration `mapstructure:"heartbeat_interval" validate:"required,gt=0" yaml:"heartbeat_interval"`

	// HeartbeatTimeout is how long an SS may go unresponsive before being
	// marked Failed.
	HeartbeatTimeout time.Duration `mapstructure:"heartbeat_timeout" validate:"required,gt=0" yaml:"heartbeat_timeout"`
}

// SearchConfig controls the bounded SEARCH result memo. Hot-reloadable.
type SearchConfig struct {
	// CacheCapacity bounds the number of memoized queries kept before the
	// oldest is evicted.
	CacheCapacity int `mapstructure:"cache_capacity" validate:"required,gt=0" yaml:"cache_capacity"`
}

// LoggingConfig controls logging behavior, matching the teacher's own
// internal/logger knobs. Level is hot-reloadable; Format/Output require a
// restart.
type LoggingConfig struct {
	Level  string `mapstructure:"level" validate:"required,oneof=DEBUG INFO WARN ERROR debug info warn error" yaml:"level"`
	Format string `mapstructure:"format" validate:"required,oneof=text json" yaml:"format"`
	Output string `mapstructure:"output" validate:"required" yaml:"output"`
}

// TelemetryConfig controls OpenTelemetry tracing and Pyroscope profiling.
type TelemetryConfig struct {
	Enabled    bool             `mapstructure:"enabled" yaml:"enabled"`
	Endpoint   string           `mapstructure:"endpoint" yaml:"endpoint"`
	Insecure   bool             `mapstructure:"insecure" yaml:"insecure"`
	SampleRate float64          `mapstructure:"sample_rate" validate:"omitempty,gte=0,lte=1" yaml:"sample_rate"`
	Profiling  ProfilingConfig  `mapstructure:"profiling" yaml:"profiling"`
	Metrics    MetricsConfig    `mapstructure:"metrics" yaml:"metrics"`
}

// ProfilingConfig controls Pyroscope continuous profiling.
type ProfilingConfig struct {
	Enabled      bool     `mapstructure:"enabled" yaml:"enabled"`
	Endpoint     string   `mapstructure:"endpoint" yaml:"endpoint"`
	ProfileTypes []string `mapstructure:"profile_types" yaml:"profile_types"`
}

// MetricsConfig controls the Prometheus counters/gauges/histogram served
// over the admin API's /metrics endpoint.
type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`
}

// AdminAPIConfig controls the read-only/administrative HTTP API (spec.md
// §4.12).
type AdminAPIConfig struct {
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`
	Port    int  `mapstructure:"port" validate:"omitempty,min=1,max=65535" yaml:"port"`
	// BindLocalOnly restricts the listener to loopback, guarding
	// POST /shutdown from remote callers by default.
	BindLocalOnly bool `mapstructure:"bind_local_only" yaml:"bind_local_only"`
}

// MirrorConfig controls the optional S3 disaster-recovery mirror.
type MirrorConfig struct {
	Enabled         bool   `mapstructure:"enabled" yaml:"enabled"`
	Bucket          string `mapstructure:"bucket" validate:"required_if=Enabled true" yaml:"bucket"`
	Region          string `mapstructure:"region" yaml:"region"`
	BackupInterval  time.Duration `mapstructure:"backup_interval" yaml:"backup_interval"`
	// MaxCacheSize accepts human-readable sizes ("1Gi", "500MB"). The mirror
	// does not read it: each sweep uploads every file under the backup dir,
	// with no size bound.
	MaxCacheSize bytesize.ByteSize `mapstructure:"max_cache_size" yaml:"max_cache_size,omitempty"`
}

// Load reads the YAML config file, lets NS_* environment variables override
// the keys it sets, fills any field still zero from the built-in defaults,
// then validates the result. If no config file is found it returns the
// validated defaults without consulting the environment.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setupViper(v, configPath)

	found, err := readConfigFile(v)
	if err != nil {
		return nil, err
	}

	cfg := DefaultConfig()
	if !found {
		return cfg, Validate(cfg)
	}

	if err := v.Unmarshal(cfg, viper.DecodeHook(configDecodeHooks())); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	ApplyDefaults(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

// MustLoad is Load, panicking on error; used at process startup where a
// bad config is always fatal.
func MustLoad(configPath string) *Config {
	cfg, err := Load(configPath)
	if err != nil {
		panic(err)
	}
	return cfg
}

// SaveConfig writes cfg to path as YAML, creating parent directories as
// needed.
func SaveConfig(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}

func setupViper(v *viper.Viper, configPath string) {
	v.SetEnvPrefix("NS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
		return
	}
	v.AddConfigPath(".")
	v.SetConfigName("ns")
	v.SetConfigType("yaml")
}

func readConfigFile(v *viper.Viper) (bool, error) {
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return false, nil
		}
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("read config file: %w", err)
	}
	return true, nil
}

func configDecodeHooks() mapstructure.DecodeHookFunc {
	return mapstructure.ComposeDecodeHookFunc(
		byteSizeDecodeHook(),
		durationDecodeHook(),
	)
}

func byteSizeDecodeHook() mapstructure.DecodeHookFunc {
	return func(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
		if to != reflect.TypeOf(bytesize.ByteSize(0)) {
			return data, nil
		}
		switch v := data.(type) {
		case string:
			return bytesize.ParseByteSize(v)
		case int:
			return bytesize.ByteSize(v), nil
		case int64:
			return bytesize.ByteSize(v), nil
		case uint64:
			return bytesize.ByteSize(v), nil
		case float64:
			return bytesize.ByteSize(v), nil
		default:
			return data, nil
		}
	}
}

func durationDecodeHook() mapstructure.DecodeHookFunc {
	return func(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
		if to != reflect.TypeOf(time.Duration(0)) {
			return data, nil
		}
		switch v := data.(type) {
		case string:
			return time.ParseDuration(v)
		case int:
			return time.Duration(v), nil
		case int64:
			return time.Duration(v), nil
		case float64:
			return time.Duration(v), nil
		default:
			return data, nil
		}
	}
}
