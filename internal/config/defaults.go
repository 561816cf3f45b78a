package config

import "time"

// DefaultConfig returns a Config populated with the naming server's
// built-in defaults, usable standalone when no config file is present.
func DefaultConfig() *Config {
	cfg := &Config{
		AdminAPI: AdminAPIConfig{Enabled: true, BindLocalOnly: true},
		Telemetry: TelemetryConfig{
			Metrics: MetricsConfig{Enabled: true},
		},
	}
	ApplyDefaults(cfg)
	return cfg
}

// ApplyDefaults fills any zero-valued field of cfg with its default,
// leaving values already set (e.g. by a config file) untouched. This
// mirrors the teacher's own ApplyDefaults pattern of per-section defaulting
// functions, so a partial config file only needs to name the fields it
// wants to override.
func ApplyDefaults(cfg *Config) {
	applyServerDefaults(&cfg.Server)
	applyPersistenceDefaults(&cfg.Persistence)
	applyRegistryDefaults(&cfg.Registry)
	applySearchDefaults(&cfg.Search)
	applyLoggingDefaults(&cfg.Logging)
	applyTelemetryDefaults(&cfg.Telemetry)
	applyAdminAPIDefaults(&cfg.AdminAPI)
	applyMirrorDefaults(&cfg.Mirror)

	if cfg.ShutdownTimeout == 0 {
		cfg.ShutdownTimeout = 10 * time.Second
	}
}

func applyServerDefaults(s *ServerConfig) {
	if s.Port == 0 {
		s.Port = 8080
	}
	if s.MaxClients == 0 {
		s.MaxClients = 100
	}
}

func applyPersistenceDefaults(p *PersistenceConfig) {
	if p.RegistryPath == "" {
		p.RegistryPath = "data/registry.dat"
	}
	if p.CacheDir == "" {
		p.CacheDir = "data/cache"
	}
	if p.BackupDir == "" {
		p.BackupDir = "data/backup"
	}
	if p.SaveInterval == 0 {
		p.SaveInterval = 30 * time.Second
	}
}

func applyRegistryDefaults(r *RegistryConfig) {
	if r.HeartbeatInterval == 0 {
		r.HeartbeatInterval = 10 * time.Second
	}
	if r.HeartbeatTimeout == 0 {
		r.HeartbeatTimeout = 60 * time.Second
	}
}

func applySearchDefaults(s *SearchConfig) {
	if s.CacheCapacity == 0 {
		s.CacheCapacity = 128
	}
}

func applyLoggingDefaults(l *LoggingConfig) {
	if l.Level == "" {
		l.Level = "INFO"
	}
	if l.Format == "" {
		l.Format = "text"
	}
	if l.Output == "" {
		l.Output = "stderr"
	}
}

func applyTelemetryDefaults(t *TelemetryConfig) {
	if t.Endpoint == "" {
		t.Endpoint = "localhost:4317"
	}
	if t.SampleRate == 0 {
		t.SampleRate = 0.1
	}
	if t.Profiling.Endpoint == "" {
		t.Profiling.Endpoint = "http://localhost:4040"
	}
	if len(t.Profiling.ProfileTypes) == 0 {
		t.Profiling.ProfileTypes = []string{"cpu"}
	}
}

func applyAdminAPIDefaults(a *AdminAPIConfig) {
	if a.Port == 0 {
		a.Port = 9090
	}
}

func applyMirrorDefaults(m *MirrorConfig) {
	if m.Region == "" {
		m.Region = "us-east-1"
	}
	if m.BackupInterval == 0 {
		m.BackupInterval = 15 * time.Minute
	}
}
