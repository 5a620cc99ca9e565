package config

import (
	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Auth      AuthConfig      `mapstructure:"auth"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
	Log       LogConfig       `mapstructure:"log"`
}

type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

type AuthConfig struct {
	SessionSecret string `mapstructure:"session_secret"`
}

// SchedulerConfig controls the maintenance sweeps. Intervals are in minutes; the
// sweeps themselves are idempotent so aggressive intervals only cost queries.
type SchedulerConfig struct {
	StreakSweepInterval int `mapstructure:"streak_sweep_interval"`
	WeeklyResetWeekday  int `mapstructure:"weekly_reset_weekday"` // 0 = Sunday, 1 = Monday
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")

	viper.SetDefault("server.port", "8080")
	viper.SetDefault("server.allowed_origins", []string{"http://localhost:3000", "http://localhost:8080"})

	viper.SetDefault("database.path", "./habitforge.db")

	viper.SetDefault("auth.session_secret", "your-secret-key-change-this-in-production")

	viper.SetDefault("scheduler.streak_sweep_interval", 60)
	viper.SetDefault("scheduler.weekly_reset_weekday", 1)

	viper.SetDefault("log.level", "info")

	// Allow environment variables
	viper.SetEnvPrefix("HABITFORGE")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
		// Config file not found, use defaults
	}

	// Local overrides (ignored by git)
	viper.SetConfigName("config.local")
	viper.MergeInConfig()

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	return &config, nil
}
