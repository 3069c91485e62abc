// Package config handles YAML configuration loading, environment variable
// expansion, and structural validation for attachd.
package config

// Config is the top-level configuration structure.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Storage   StorageConfig   `yaml:"storage"`
	Database  DatabaseConfig  `yaml:"database"`
	Janitor   JanitorConfig   `yaml:"janitor"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
	Log       LogConfig       `yaml:"log"`
}

// ServerConfig controls the HTTP gateway.
type ServerConfig struct {
	// Addr is the listen address.
	Addr string `yaml:"addr"`
}

// StorageConfig identifies the object-storage bucket.
type StorageConfig struct {
	// BaseURL is the storage API root, e.g.
	// "https://project.example.com/storage/v1".
	BaseURL string `yaml:"base_url"`

	// Bucket is the bucket name objects are written to.
	Bucket string `yaml:"bucket"`

	// APIKey is the service key sent as a bearer token. Usually supplied
	// via ${STORAGE_API_KEY}.
	APIKey string `yaml:"api_key"`
}

// DatabaseConfig locates the SQLite database.
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// JanitorConfig controls background cleanup. Durations are Go duration
// strings ("24h", "30m").
type JanitorConfig struct {
	Schedule         string `yaml:"schedule"`
	PendingGrace     string `yaml:"pending_grace"`
	MessageRetention string `yaml:"message_retention"`
}

// TelemetryConfig controls trace export. An empty endpoint disables export;
// spans are still created but never leave the process.
type TelemetryConfig struct {
	// OTLPEndpoint is the OTLP/HTTP collector endpoint, host:port.
	OTLPEndpoint string `yaml:"otlp_endpoint"`
}

// LogConfig controls logging.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `yaml:"level"`
}

// Default returns a Config with defaults applied; Load overlays the file
// on top of it.
func Default() *Config {
	return &Config{
		Server:   ServerConfig{Addr: ":8787"},
		Database: DatabaseConfig{Path: "attachd.db"},
		Janitor: JanitorConfig{
			Schedule:     "@hourly",
			PendingGrace: "24h",
		},
		Log: LogConfig{Level: "info"},
	}
}
