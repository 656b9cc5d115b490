// internal/common/config/config.go
package config

// Config is the main application configuration struct.
type Config struct {
	App          AppConfig          `mapstructure:"app"`
	Conversation ConversationConfig `mapstructure:"conversation"`
	Document     DocumentConfig     `mapstructure:"document"`
	Logging      LoggingConfig      `mapstructure:"logging"`
	Metrics      MetricsConfig      `mapstructure:"metrics"`
}

// --- Core App/Infrastructure Config ---

type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

// ConversationConfig selects and configures the conversation log backend.
type ConversationConfig struct {
	Backend    string      `mapstructure:"backend"` // memory | redis
	Redis      RedisConfig `mapstructure:"redis"`
	SQLitePath string      `mapstructure:"sqlite_path"` // durable export target
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// DocumentConfig configures the binary document extractor.
type DocumentConfig struct {
	Engine       string `mapstructure:"engine"` // pdfcpu | raw | none
	MaxSizeBytes int64  `mapstructure:"max_size_bytes"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// MetricsConfig controls the optional prometheus endpoint.
type MetricsConfig struct {
	Enabled    bool   `mapstructure:"enabled"`
	ListenAddr string `mapstructure:"listen_addr"`
}
