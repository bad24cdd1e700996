// Package bootstrap loads service configuration from the environment, with an
// optional env-format config file for local development.
package bootstrap

import (
	"github.com/spf13/viper"
)

type Config struct {
	ServerAddr     string `mapstructure:"SERVER_ADDR"`
	LogLevel       string `mapstructure:"LOG_LEVEL"`
	RedisURL       string `mapstructure:"REDIS_URL"`
	StockfishPath  string `mapstructure:"STOCKFISH_PATH"`
	EvalBackendURL string `mapstructure:"EVAL_BACKEND_URL"`
	DataDir        string `mapstructure:"DATA_DIR"`
	EcoDir         string `mapstructure:"ECO_DIR"`

	EnginePoolSize  int `mapstructure:"ENGINE_POOL_SIZE"`
	EngineThreads   int `mapstructure:"ENGINE_THREADS"`
	EngineHashMB    int `mapstructure:"ENGINE_HASH_MB"`
	EvalDepth       int `mapstructure:"EVAL_DEPTH"`
	EvalLines       int `mapstructure:"EVAL_LINES"`
	EvalConcurrency int `mapstructure:"EVAL_CONCURRENCY"`

	SessionTTLMinutes int `mapstructure:"SESSION_TTL_MINUTES"`
}

var keys = []string{
	"SERVER_ADDR", "LOG_LEVEL", "REDIS_URL", "STOCKFISH_PATH",
	"EVAL_BACKEND_URL", "DATA_DIR", "ECO_DIR",
	"ENGINE_POOL_SIZE", "ENGINE_THREADS", "ENGINE_HASH_MB",
	"EVAL_DEPTH", "EVAL_LINES", "EVAL_CONCURRENCY",
	"SESSION_TTL_MINUTES",
}

// Setup reads cfgPath (if non-empty) and then the process environment, which
// takes precedence. Missing values fall back to usable local defaults.
func Setup(cfgPath string) (*Config, error) {
	v := viper.New()

	v.SetDefault("SERVER_ADDR", ":8014")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("DATA_DIR", "./data/games")
	v.SetDefault("ECO_DIR", "./data/eco")
	v.SetDefault("ENGINE_POOL_SIZE", 2)
	v.SetDefault("ENGINE_THREADS", 4)
	v.SetDefault("ENGINE_HASH_MB", 64)
	v.SetDefault("EVAL_DEPTH", 15)
	v.SetDefault("EVAL_LINES", 3)
	v.SetDefault("EVAL_CONCURRENCY", 4)
	v.SetDefault("SESSION_TTL_MINUTES", 240)

	if cfgPath != "" {
		v.SetConfigFile(cfgPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, err
		}
	}
	for _, k := range keys {
		_ = v.BindEnv(k)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
