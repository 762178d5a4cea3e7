package config

import (
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

type Config struct {
	Server   Server
	Database Database
	Redis    Redis
	Auth     Auth
	Engine   Engine
}

type Server struct {
	Port string
	Mode string // gin mode: debug | release | test
}

type Database struct {
	Driver   string // "postgres" (default) or "sqlite"
	Host     string
	Port     string
	User     string
	Password string `json:"-"`
	Name     string
	SSLMode  string
	Path     string // sqlite file path
}

type Redis struct {
	Addr       string // empty disables the catalog cache
	Password   string `json:"-"`
	DB         int
	CatalogTTL time.Duration
}

type Auth struct {
	JWTSecret string `json:"-"`
	Issuer    string
}

// Engine holds the attempt engine tunables.
type Engine struct {
	// StrictTimeBudget rejects answers submitted after the time budget ran out.
	StrictTimeBudget bool
	// ReconcileGrace is added to the template duration before an open attempt
	// counts as stuck.
	ReconcileGrace time.Duration
	// SweepInterval drives the background reconcile sweeper. Zero disables it.
	SweepInterval time.Duration
	SweepBatch    int
}

func NewConfig() (*Config, error) {
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")

	viper.AutomaticEnv()

	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("SERVER_MODE", "debug")
	viper.SetDefault("DATABASE_DRIVER", "postgres")
	viper.SetDefault("DATABASE_SSLMODE", "disable")
	viper.SetDefault("DATABASE_PATH", "attempt-engine.db")
	viper.SetDefault("REDIS_CATALOG_TTL", "5m")
	viper.SetDefault("AUTH_ISSUER", "attempt-engine")
	viper.SetDefault("ENGINE_STRICT_TIME_BUDGET", false)
	viper.SetDefault("ENGINE_RECONCILE_GRACE", "15m")
	viper.SetDefault("ENGINE_SWEEP_INTERVAL", "5m")
	viper.SetDefault("ENGINE_SWEEP_BATCH", 200)

	if err := viper.ReadInConfig(); err != nil {
		log.Warn().Err(err).Msg("Error reading config file")
	}

	var config Config

	config.Server.Port = viper.GetString("SERVER_PORT")
	config.Server.Mode = viper.GetString("SERVER_MODE")

	config.Database.Driver = viper.GetString("DATABASE_DRIVER")
	config.Database.Host = viper.GetString("DATABASE_HOST")
	config.Database.Port = viper.GetString("DATABASE_PORT")
	config.Database.User = viper.GetString("DATABASE_USER")
	config.Database.Password = viper.GetString("DATABASE_PASSWORD")
	config.Database.Name = viper.GetString("DATABASE_NAME")
	config.Database.SSLMode = viper.GetString("DATABASE_SSLMODE")
	config.Database.Path = viper.GetString("DATABASE_PATH")

	config.Redis.Addr = viper.GetString("REDIS_ADDR")
	config.Redis.Password = viper.GetString("REDIS_PASSWORD")
	config.Redis.DB = viper.GetInt("REDIS_DB")
	config.Redis.CatalogTTL = viper.GetDuration("REDIS_CATALOG_TTL")

	config.Auth.JWTSecret = viper.GetString("AUTH_JWT_SECRET")
	config.Auth.Issuer = viper.GetString("AUTH_ISSUER")

	config.Engine.StrictTimeBudget = viper.GetBool("ENGINE_STRICT_TIME_BUDGET")
	config.Engine.ReconcileGrace = viper.GetDuration("ENGINE_RECONCILE_GRACE")
	config.Engine.SweepInterval = viper.GetDuration("ENGINE_SWEEP_INTERVAL")
	config.Engine.SweepBatch = viper.GetInt("ENGINE_SWEEP_BATCH")

	if config.Auth.JWTSecret == "" {
		log.Warn().Msg("AUTH_JWT_SECRET is not set. Every bearer token will be rejected.")
	}

	log.Info().Interface("config", config).Msg("Config loaded")
	return &config, nil

}
