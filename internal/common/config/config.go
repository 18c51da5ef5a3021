package config

// Config is the main application configuration struct.
type Config struct {
	App     AppConfig     `mapstructure:"app"`
	Server  ServerConfig  `mapstructure:"server"`
	CORS    CORSConfig    `mapstructure:"cors"`
	Engine  EngineConfig  `mapstructure:"engine"`
	Triage  TriageConfig  `mapstructure:"triage"`
	Cache   CacheConfig   `mapstructure:"cache"`
	Logging LoggingConfig `mapstructure:"logging"`
}

type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

type ServerConfig struct {
	Port            int `mapstructure:"port"`
	ShutdownTimeout int `mapstructure:"shutdown_timeout"` // milliseconds
}

// CORSConfig restricts the browser surface to a single configured origin.
type CORSConfig struct {
	AllowedOrigin string `mapstructure:"allowed_origin"`
}

// EngineConfig holds settings for the external diagnosis engine API.
type EngineConfig struct {
	BaseURL string `mapstructure:"base_url"`
	AppID   string `mapstructure:"app_id"`
	AppKey  string `mapstructure:"app_key"`
	Model   string `mapstructure:"model"`
	Timeout int    `mapstructure:"timeout"` // milliseconds
}

// TriageConfig holds the thresholds applied on top of raw engine responses.
type TriageConfig struct {
	SignificantProbability float64 `mapstructure:"significant_probability"`
	HighProbability        float64 `mapstructure:"high_probability"`
	MinEvidence            int     `mapstructure:"min_evidence"`
}

// CacheConfig holds settings for the optional parse-response cache. The cache
// never stores interview state, only upstream parse responses keyed by the
// request tuple.
type CacheConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	TTL      int    `mapstructure:"ttl"` // milliseconds
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}
