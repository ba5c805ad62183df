package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// Config application configuration
type Config struct {
	Env      string         `mapstructure:"env"` // development, production
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Keycloak KeycloakConfig `mapstructure:"keycloak"`
	CORS     CORSConfig     `mapstructure:"cors"`
	Log      LogConfig      `mapstructure:"log"`
	Tracing  TracingConfig  `mapstructure:"tracing"`
}

// ServerConfig HTTP server settings
type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

// DatabaseConfig PostgreSQL connection and pool settings
type DatabaseConfig struct {
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	User            string `mapstructure:"user"`
	Password        string `mapstructure:"password"`
	DBName          string `mapstructure:"dbname"`
	SSLMode         string `mapstructure:"sslmode"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"` // seconds
	ConnMaxIdleTime int    `mapstructure:"conn_max_idle_time"` // seconds
}

// KeycloakConfig token validation plus admin API credentials
type KeycloakConfig struct {
	Issuer        string `mapstructure:"issuer"`
	BaseURL       string `mapstructure:"base_url"`
	Realm         string `mapstructure:"realm"`
	ClientID      string `mapstructure:"client_id"`
	ClientSecret  string `mapstructure:"client_secret"`
	AdminUsername string `mapstructure:"admin_username"`
	AdminPassword string `mapstructure:"admin_password"`
	CacheTTL      int    `mapstructure:"cache_ttl"` // seconds, user list cache
}

// CORSConfig CORS settings
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
	AllowedMethods []string `mapstructure:"allowed_methods"`
	AllowedHeaders []string `mapstructure:"allowed_headers"`
	MaxAge         int      `mapstructure:"max_age"`
}

// LogConfig log settings
type LogConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Format string `mapstructure:"format"` // json, text
	Output string `mapstructure:"output"` // stdout, file, both
}

// TracingConfig OpenTelemetry settings
type TracingConfig struct {
	Enabled        bool   `mapstructure:"enabled"`
	JaegerEndpoint string `mapstructure:"jaeger_endpoint"`
}

// Load loads configuration from file and environment variables
func Load(configPath string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("$HOME/.talawang")
		// missing config file is fine, defaults apply
		_ = v.ReadInConfig()
	}

	v.SetEnvPrefix("TALAWANG")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// IsProduction reports whether the production environment is active.
// Storage error details are only echoed to clients outside production.
func IsProduction(cfg *Config) bool {
	if cfg == nil {
		return false
	}
	return cfg.Env == "production"
}

// Default returns the default configuration
func Default() *Config {
	v := viper.New()
	setDefaults(v)

	var cfg Config
	_ = v.Unmarshal(&cfg)
	return &cfg
}

// setDefaults registers configuration defaults
func setDefaults(v *viper.Viper) {
	env := v.GetString("env")
	if env == "" {
		env = os.Getenv("TALAWANG_ENV")
		if env == "" {
			env = "development"
		}
	}
	v.SetDefault("env", env)

	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "")
	v.SetDefault("database.dbname", "talawang")
	v.SetDefault("database.sslmode", "disable")

	if env == "production" {
		v.SetDefault("database.max_idle_conns", 20)
		v.SetDefault("database.max_open_conns", 200)
		v.SetDefault("database.conn_max_lifetime", 3600)
		v.SetDefault("database.conn_max_idle_time", 300)
	} else {
		v.SetDefault("database.max_idle_conns", 10)
		v.SetDefault("database.max_open_conns", 100)
		v.SetDefault("database.conn_max_lifetime", 3600)
		v.SetDefault("database.conn_max_idle_time", 600)
	}

	v.SetDefault("keycloak.issuer", "")
	v.SetDefault("keycloak.base_url", "http://localhost:8180")
	v.SetDefault("keycloak.realm", "talawang")
	v.SetDefault("keycloak.client_id", "talawang-api")
	v.SetDefault("keycloak.cache_ttl", 300)

	v.SetDefault("cors.allowed_origins", []string{"*"})
	v.SetDefault("cors.allowed_methods", []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"})
	v.SetDefault("cors.allowed_headers", []string{"Content-Type", "Authorization", "X-Request-ID", "X-Transaction-PIN"})
	v.SetDefault("cors.max_age", 86400)

	if env == "production" {
		v.SetDefault("log.level", "warn")
		v.SetDefault("log.format", "json")
	} else {
		v.SetDefault("log.level", "debug")
		v.SetDefault("log.format", "text")
	}
	v.SetDefault("log.output", "stdout")

	v.SetDefault("tracing.enabled", false)
	v.SetDefault("tracing.jaeger_endpoint", "http://localhost:14268/api/traces")
}
