package config

import (
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Location Location      `mapstructure:"location"`
	Weather  WeatherConfig `mapstructure:"weather"`
	Icons    IconsConfig   `mapstructure:"icons"`
	Display  DisplayConfig `mapstructure:"display"`
	API      APIConfig     `mapstructure:"api"`
	MQTT     MQTTConfig    `mapstructure:"mqtt"`
}

type Location struct {
	Latitude   float64 `mapstructure:"latitude"`
	Longitude  float64 `mapstructure:"longitude"`
	Units      string  `mapstructure:"units"`
	DateFormat string  `mapstructure:"date_format"`
	TimeFormat string  `mapstructure:"time_format"`
}

type WeatherConfig struct {
	Key          string        `mapstructure:"key"`
	WeatherURL   string        `mapstructure:"weather_url"`
	ForecastURL  string        `mapstructure:"forecast_url"`
	ProbeURL     string        `mapstructure:"probe_url"`
	PollInterval time.Duration `mapstructure:"poll_interval"`
	Timeout      time.Duration `mapstructure:"timeout"`
}

type IconsConfig struct {
	ImageDir    string `mapstructure:"image_dir"`
	MappingFile string `mapstructure:"mapping_file"`
	ImageSet    string `mapstructure:"image_set"`
	ImageColor  string `mapstructure:"image_color"`
	SVGDir      string `mapstructure:"svg_dir"`
}

type DisplayConfig struct {
	PrintOnly bool          `mapstructure:"print_only"`
	Refresh   time.Duration `mapstructure:"refresh"`
	Forecasts int           `mapstructure:"forecasts"`
}

type APIConfig struct {
	Enabled bool `mapstructure:"enabled"`
	Port    int  `mapstructure:"port"`
}

type MQTTConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	Broker      string `mapstructure:"broker"`
	TopicPrefix string `mapstructure:"topic_prefix"`
	ClientID    string `mapstructure:"client_id"`
	Username    string `mapstructure:"username"`
	Password    string `mapstructure:"password"`
}

func Load(configPath string) (*Config, error) {
	if configPath != "" {
		viper.SetConfigFile(configPath)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		viper.AddConfigPath("/etc/weather-panel")
	}

	// Set defaults
	viper.SetDefault("location.latitude", 0)
	viper.SetDefault("location.longitude", 0)
	viper.SetDefault("location.units", "metric")
	viper.SetDefault("location.date_format", "%Y-%m-%d %H:%M")
	viper.SetDefault("location.time_format", "%H:%M")
	viper.SetDefault("weather.key", "")
	viper.SetDefault("weather.weather_url",
		"https://api.openweathermap.org/data/2.5/weather?lat={latitude}&lon={longitude}&appid={key}&units={units}")
	viper.SetDefault("weather.forecast_url",
		"https://api.openweathermap.org/data/2.5/forecast?lat={latitude}&lon={longitude}&appid={key}&units={units}")
	viper.SetDefault("weather.probe_url", "http://google.com")
	viper.SetDefault("weather.poll_interval", "10m")
	viper.SetDefault("weather.timeout", "10s")
	viper.SetDefault("icons.image_dir", "./images")
	viper.SetDefault("icons.mapping_file", "./images/mappings.csv")
	viper.SetDefault("icons.image_set", "light")
	viper.SetDefault("icons.image_color", "")
	viper.SetDefault("icons.svg_dir", "./images/svg")
	viper.SetDefault("display.print_only", false)
	viper.SetDefault("display.refresh", "5s")
	viper.SetDefault("display.forecasts", 4)
	viper.SetDefault("api.enabled", false)
	viper.SetDefault("api.port", 8046)
	viper.SetDefault("mqtt.enabled", false)
	viper.SetDefault("mqtt.broker", "tcp://localhost:1883")
	viper.SetDefault("mqtt.topic_prefix", "weather-panel")
	viper.SetDefault("mqtt.client_id", "weather-panel")

	viper.SetEnvPrefix("weather_panel")
	viper.AutomaticEnv()

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
