package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/jekabolt/grbpwr-analytics/internal/analytics/report"
	httpapi "github.com/jekabolt/grbpwr-analytics/internal/api/http"
	"github.com/jekabolt/grbpwr-analytics/internal/store"
	"github.com/jekabolt/grbpwr-analytics/log"
	"github.com/spf13/viper"
)

// Config represents the global configuration for the service.
type Config struct {
	Mongo     store.Config   `mapstructure:"mongo"`
	Logger    log.Config     `mapstructure:"logger"`
	HTTP      httpapi.Config `mapstructure:"http"`
	Analytics report.Config  `mapstructure:"analytics"`
}

// LoadConfig loads the configuration from a file and/or environment variables.
// Environment variables take precedence over config file values.
// Nested config keys use double underscore, e.g., MONGO__URI for mongo.uri;
// the common keys are also bound to flat names, e.g., MONGO_URI.
func LoadConfig(cfgFile string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("toml")

	v.AutomaticEnv()
	// mongo.uri -> MONGO__URI
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "__", "-", "__"))

	setDefaults(v)
	bindEnvVars(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("failed to read config file: %v", err)
			}
		}
	} else {
		v.SetConfigName("config")
		v.AddConfigPath("./config")
		v.AddConfigPath("$HOME/config/grbpwr-analytics")
		v.AddConfigPath("/etc/grbpwr-analytics")
		// Try to read config, but don't fail if it doesn't exist
		_ = v.ReadInConfig()
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config into struct: %v", err)
	}

	// comma separated list when provided through the environment
	config.HTTP.AllowedOrigins = splitList(config.HTTP.AllowedOrigins...)

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("mongo.database", "grbpwr")
	v.SetDefault("mongo.connect_timeout", "10s")

	v.SetDefault("http.port", "8081")
	v.SetDefault("http.request_timeout", "30s")
	v.SetDefault("http.rate_limit_requests", 100)
	v.SetDefault("http.rate_limit_window", "1m")

	v.SetDefault("analytics.low_stock_threshold", 5)
	v.SetDefault("analytics.low_stock_limit", 10)
	v.SetDefault("analytics.top_products_limit", 10)
}

// bindEnvVars binds environment variables to config keys
// This allows using both nested keys (MONGO__URI) and flat keys (MONGO_URI)
func bindEnvVars(v *viper.Viper) {
	// Mongo
	v.BindEnv("mongo.uri", "MONGO_URI")
	v.BindEnv("mongo.database", "MONGO_DATABASE")
	v.BindEnv("mongo.orders_collection", "MONGO_ORDERS_COLLECTION")
	v.BindEnv("mongo.products_collection", "MONGO_PRODUCTS_COLLECTION")
	v.BindEnv("mongo.categories_collection", "MONGO_CATEGORIES_COLLECTION")
	v.BindEnv("mongo.connect_timeout", "MONGO_CONNECT_TIMEOUT")
	v.BindEnv("mongo.max_pool_size", "MONGO_MAX_POOL_SIZE")
	v.BindEnv("mongo.tls_ca_path", "MONGO_TLS_CA_PATH")

	// Logger
	v.BindEnv("logger.level", "LOG_LEVEL")
	v.BindEnv("logger.add_source", "LOG_ADD_SOURCE")

	// HTTP
	v.BindEnv("http.port", "HTTP_PORT")
	v.BindEnv("http.address", "HTTP_ADDRESS")
	v.BindEnv("http.allowed_origins", "HTTP_ALLOWED_ORIGINS")
	v.BindEnv("http.request_timeout", "HTTP_REQUEST_TIMEOUT")
	v.BindEnv("http.rate_limit_requests", "HTTP_RATE_LIMIT_REQUESTS")
	v.BindEnv("http.rate_limit_window", "HTTP_RATE_LIMIT_WINDOW")
	v.BindEnv("http.jwt_secret", "HTTP_JWT_SECRET", "AUTH_JWT_SECRET")

	// Analytics
	v.BindEnv("analytics.low_stock_threshold", "ANALYTICS_LOW_STOCK_THRESHOLD")
	v.BindEnv("analytics.low_stock_limit", "ANALYTICS_LOW_STOCK_LIMIT")
	v.BindEnv("analytics.top_products_limit", "ANALYTICS_TOP_PRODUCTS_LIMIT")
}

func splitList(values ...string) []string {
	var out []string
	for _, s := range values {
		for _, p := range strings.Split(s, ",") {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
	}
	return out
}
