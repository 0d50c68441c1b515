package config

import (
	"strings"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
type Config struct {
	Watcher  Watcher  `mapstructure:"watcher"`
	Binance  Binance  `mapstructure:"binance"`
	Notifier Notifier `mapstructure:"notifier"`
	Redis    Redis    `mapstructure:"redis"`
	Logger   Logger   `mapstructure:"logger"`
	Server   Server   `mapstructure:"server"`
	Database Database `mapstructure:"database"`
}

// Watcher holds the configuration for the price feed and analysis cycle.
type Watcher struct {
	Symbol           string `mapstructure:"symbol"`           // trading pair, e.g. BTCUSDT
	BaseAsset        string `mapstructure:"base_asset"`       // e.g. BTC
	QuoteAsset       string `mapstructure:"quote_asset"`      // e.g. USDT
	FeedInterval     int    `mapstructure:"feed_interval"`    // seconds between price samples
	CycleInterval    int    `mapstructure:"cycle_interval"`   // seconds between analysis cycles
	LookbackMinutes  int    `mapstructure:"lookback_minutes"` // price window for indicators
	CoinGeckoAssetID string `mapstructure:"coingecko_asset_id"`
	VSCurrency       string `mapstructure:"vs_currency"`
}

// Binance holds the configuration for the Binance API client.
// API credentials are not configured here; they come from the secret store.
type Binance struct {
	RateLimit      float64 `mapstructure:"rate_limit"`
	RateLimitBurst int     `mapstructure:"rate_limit_burst"`
}

// Notifier selects the push notification backend.
type Notifier struct {
	Provider string `mapstructure:"provider"` // "fcm" or "log"
	Topic    string `mapstructure:"topic"`
}

// Redis configures the optional cycle lease. An empty Addr disables it.
type Redis struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// Server holds the configuration for the API server and the watcher's
// metrics endpoint.
type Server struct {
	Port        int `mapstructure:"port"`
	MetricsPort int `mapstructure:"metrics_port"`
}

// Database holds the configuration for the database.
type Database struct {
	DSN string `mapstructure:"dsn"`
}

// Logger holds the configuration for the logger.
type Logger struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// LoadConfig reads configuration from file or environment variables.
func LoadConfig(path string) (config Config, err error) {
	viper.AddConfigPath(path)
	viper.SetConfigName("config") // name of config file (without extension)
	viper.SetConfigType("yml")

	// Allow environment variables to override config file
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Set default values
	viper.SetDefault("watcher.symbol", "BTCUSDT")
	viper.SetDefault("watcher.base_asset", "BTC")
	viper.SetDefault("watcher.quote_asset", "USDT")
	viper.SetDefault("watcher.feed_interval", 60)
	viper.SetDefault("watcher.cycle_interval", 60)
	viper.SetDefault("watcher.lookback_minutes", 30)
	viper.SetDefault("watcher.coingecko_asset_id", "bitcoin")
	viper.SetDefault("watcher.vs_currency", "usd")
	viper.SetDefault("binance.rate_limit", 20) // requests per second
	viper.SetDefault("binance.rate_limit_burst", 5)
	viper.SetDefault("notifier.provider", "log")
	viper.SetDefault("notifier.topic", "bitcoin-signals")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.metrics_port", 9090)
	viper.SetDefault("database.dsn", "watcher.db")
	viper.SetDefault("logger.level", "info")
	viper.SetDefault("logger.format", "console")

	err = viper.ReadInConfig()
	if err != nil {
		return
	}

	err = viper.Unmarshal(&config)
	return
}
