package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Station   StationConfig   `yaml:"station" mapstructure:"station"`
	Parcel    ParcelConfig    `yaml:"parcel" mapstructure:"parcel"`
	Recommend RecommendConfig `yaml:"recommend" mapstructure:"recommend"`
	LLM       LLMConfig       `yaml:"llm" mapstructure:"llm"`
	Store     StoreConfig     `yaml:"store" mapstructure:"store"`
	Server    ServerConfig    `yaml:"server" mapstructure:"server"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
}

// StationConfig configures the decommissioned-station dataset.
type StationConfig struct {
	DataPath string `yaml:"data_path" mapstructure:"data_path"`
	IDColumn string `yaml:"id_column" mapstructure:"id_column"`
}

// ParcelConfig configures the cadastral parcel repository.
type ParcelConfig struct {
	BaseDir       string  `yaml:"base_dir" mapstructure:"base_dir"`
	RadiusDegrees float64 `yaml:"radius_degrees" mapstructure:"radius_degrees"`
}

// RecommendConfig configures the external land-use recommendation service.
type RecommendConfig struct {
	BaseURL     string `yaml:"base_url" mapstructure:"base_url"`
	TimeoutSecs int    `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	TopK        int    `yaml:"top_k" mapstructure:"top_k"`
}

// LLMConfig configures the chat-completion endpoint used for report synthesis.
// RoutingTable is an inline JSON object keyed by station ID (or "*"/"default");
// RoutingFile points at a JSON file with the same shape and is consulted only
// when RoutingTable is empty or unparseable. RPS caps outbound completion
// requests per second; zero disables the limiter.
type LLMConfig struct {
	APIKey       string  `yaml:"api_key" mapstructure:"api_key"`
	BaseURL      string  `yaml:"base_url" mapstructure:"base_url"`
	Model        string  `yaml:"model" mapstructure:"model"`
	TimeoutSecs  float64 `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	ForceJSON    bool    `yaml:"force_json" mapstructure:"force_json"`
	Temperature  float64 `yaml:"temperature" mapstructure:"temperature"`
	RPS          float64 `yaml:"rps" mapstructure:"rps"`
	RoutingTable string  `yaml:"routing_table" mapstructure:"routing_table"`
	RoutingFile  string  `yaml:"routing_file" mapstructure:"routing_file"`
}

// StoreConfig configures the report history database.
type StoreConfig struct {
	Path string `yaml:"path" mapstructure:"path"`
}

// ServerConfig configures the HTTP API server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("STATION")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("station.data_path", "data/stations.csv")
	v.SetDefault("station.id_column", "id")
	v.SetDefault("parcel.base_dir", "data/parcels")
	v.SetDefault("parcel.radius_degrees", 0.003)
	v.SetDefault("recommend.timeout_secs", 10)
	v.SetDefault("recommend.top_k", 5)
	v.SetDefault("llm.base_url", "https://api.openai.com/v1/chat/completions")
	v.SetDefault("llm.model", "gpt-4o-mini")
	v.SetDefault("llm.timeout_secs", 30)
	v.SetDefault("llm.force_json", true)
	v.SetDefault("llm.temperature", 0.3)
	v.SetDefault("llm.rps", 0)
	v.SetDefault("store.path", "station-insight.db")
	v.SetDefault("server.port", 8080)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	if cfg.Parcel.RadiusDegrees <= 0 {
		zap.L().Warn("config: non-positive parcel radius, using default",
			zap.Float64("radius_degrees", cfg.Parcel.RadiusDegrees))
		cfg.Parcel.RadiusDegrees = 0.003
	}
	if cfg.LLM.TimeoutSecs <= 0 {
		cfg.LLM.TimeoutSecs = 30
	}
	if cfg.LLM.RPS < 0 {
		cfg.LLM.RPS = 0
	}

	return &cfg, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
