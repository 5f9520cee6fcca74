package config

import (
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Location  LocationConfig  `mapstructure:"location"`
	Forecast  ForecastConfig  `mapstructure:"forecast"`
	Astronomy AstronomyConfig `mapstructure:"astronomy"`
	Collector CollectorConfig `mapstructure:"collector"`
	API       APIConfig       `mapstructure:"api"`
	MQTT      MQTTConfig      `mapstructure:"mqtt"`
	Database  DatabaseConfig  `mapstructure:"database"`
}

type LocationConfig struct {
	Name      string  `mapstructure:"name"`
	Latitude  float64 `mapstructure:"latitude"`
	Longitude float64 `mapstructure:"longitude"`
}

type ForecastConfig struct {
	Hours            int           `mapstructure:"hours"`
	DiffThreshold    int           `mapstructure:"diff_threshold"`
	CacheTTL         time.Duration `mapstructure:"cache_ttl"`
	SecondaryEnabled bool          `mapstructure:"secondary_enabled"`
	UserAgent        string        `mapstructure:"user_agent"`
}

type AstronomyConfig struct {
	APIKey string `mapstructure:"api_key"`
}

type CollectorConfig struct {
	Interval time.Duration `mapstructure:"interval"`
	Enabled  bool          `mapstructure:"enabled"`
}

type APIConfig struct {
	Port    int  `mapstructure:"port"`
	Enabled bool `mapstructure:"enabled"`
}

type MQTTConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	Broker      string `mapstructure:"broker"`
	TopicPrefix string `mapstructure:"topic_prefix"`
	ClientID    string `mapstructure:"client_id"`
	Username    string `mapstructure:"username"`
	Password    string `mapstructure:"password"`
}

type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

func Load(configPath string) (*Config, error) {
	if configPath != "" {
		viper.SetConfigFile(configPath)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		viper.AddConfigPath("/etc/skycast")
	}

	// Set defaults
	viper.SetDefault("location.name", "")
	viper.SetDefault("location.latitude", 0)
	viper.SetDefault("location.longitude", 0)
	viper.SetDefault("forecast.hours", 48)
	viper.SetDefault("forecast.diff_threshold", 20)
	viper.SetDefault("forecast.cache_ttl", "30m")
	viper.SetDefault("forecast.secondary_enabled", true)
	viper.SetDefault("forecast.user_agent", "")
	viper.SetDefault("astronomy.api_key", "")
	viper.SetDefault("collector.interval", "1h")
	viper.SetDefault("collector.enabled", true)
	viper.SetDefault("api.port", 8046)
	viper.SetDefault("api.enabled", true)
	viper.SetDefault("mqtt.enabled", false)
	viper.SetDefault("mqtt.broker", "tcp://localhost:1883")
	viper.SetDefault("mqtt.topic_prefix", "skycast")
	viper.SetDefault("mqtt.client_id", "skycast")
	viper.SetDefault("database.path", "./skycast.db")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}
