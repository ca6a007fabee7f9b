package config

import (
	"printfleet/internal/logger"

	"github.com/spf13/viper"
)

type Config struct {
	GeneralVersion       string `mapstructure:"GENERAL_VERSION"`
	Environment          string `mapstructure:"ENVIRONMENT"`
	ServerPort           int    `mapstructure:"SERVER_PORT"`
	DatabaseHost         string `mapstructure:"DB_HOST"`
	DatabasePort         int    `mapstructure:"DB_PORT"`
	DatabaseName         string `mapstructure:"DB_NAME"`
	DatabaseUser         string `mapstructure:"DB_USER"`
	DatabasePassword     string `mapstructure:"DB_PASSWORD"`
	DatabaseCacheAddress string `mapstructure:"DB_CACHE_ADDRESS"`
	DatabaseCachePort    int    `mapstructure:"DB_CACHE_PORT"`
	CorsAllowOrigins     string `mapstructure:"CORS_ALLOW_ORIGINS"`
	SchedulerEnabled     bool   `mapstructure:"SCHEDULER_ENABLED"`
	IdentityIssuer       string `mapstructure:"IDENTITY_ISSUER"`
	IdentityAudience     string `mapstructure:"IDENTITY_AUDIENCE"`
	IdentityPublicKey    string `mapstructure:"IDENTITY_PUBLIC_KEY"`
	ObjectStoreEndpoint  string `mapstructure:"OBJECT_STORE_ENDPOINT"`
	ObjectStoreAccessKey string `mapstructure:"OBJECT_STORE_ACCESS_KEY"`
	ObjectStoreSecretKey string `mapstructure:"OBJECT_STORE_SECRET_KEY"`
	ObjectStoreBucket    string `mapstructure:"OBJECT_STORE_BUCKET"`
}

var ConfigInstance Config

func InitConfig() (Config, error) {
	log := logger.New("config").Function("InitConfig")
	log.Info("Initializing config")

	viper.AutomaticEnv()

	envVars := []string{
		"GENERAL_VERSION", "ENVIRONMENT", "SERVER_PORT",
		"DB_HOST", "DB_PORT", "DB_NAME", "DB_USER", "DB_PASSWORD",
		"DB_CACHE_ADDRESS", "DB_CACHE_PORT",
		"CORS_ALLOW_ORIGINS", "SCHEDULER_ENABLED",
		"IDENTITY_ISSUER", "IDENTITY_AUDIENCE", "IDENTITY_PUBLIC_KEY",
		"OBJECT_STORE_ENDPOINT", "OBJECT_STORE_ACCESS_KEY", "OBJECT_STORE_SECRET_KEY", "OBJECT_STORE_BUCKET",
	}

	for _, env := range envVars {
		if err := viper.BindEnv(env); err != nil {
			log.Warn("Failed to bind environment variable", "env", env, "error", err)
		}
	}

	// Environment wins; files are the local-development fallback
	envVarsSet := viper.IsSet("SERVER_PORT") && viper.IsSet("DB_HOST")

	if envVarsSet {
		log.Info("Environment variables detected, skipping file loading")
	} else {
		log.Info("Environment variables not found, attempting to load from files")

		viper.SetConfigFile(".env")
		viper.SetConfigType("env")

		if err := viper.ReadInConfig(); err != nil {
			log.Warn("Could not find .env file", "error", err)
		} else {
			log.Info("Loaded .env file")
		}

		viper.SetConfigFile(".env.local")
		if err := viper.MergeInConfig(); err != nil {
			log.Debug("No .env.local file found", "error", err)
		} else {
			log.Info("Loaded .env.local overrides")
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return Config{}, log.Err("Fatal error: could not unmarshal config", err)
	}

	if err := validateConfig(config, log); err != nil {
		return Config{}, err
	}
	return ConfigInstance, nil
}

func GetConfig() Config {
	return ConfigInstance
}

func validateConfig(config Config, log logger.Logger) error {
	if config.ServerPort <= 0 {
		return log.Error(
			"Fatal error: invalid server port",
			"port", config.ServerPort,
		)
	}

	if config.IdentityIssuer != "" && config.IdentityPublicKey == "" {
		return log.Error(
			"Fatal error: IDENTITY_PUBLIC_KEY required when IDENTITY_ISSUER is set",
		)
	}

	if config.ObjectStoreEndpoint != "" {
		if config.ObjectStoreAccessKey == "" || config.ObjectStoreSecretKey == "" {
			return log.Error(
				"Fatal error: object store credentials required when OBJECT_STORE_ENDPOINT is set",
			)
		}
		if config.ObjectStoreBucket == "" {
			return log.Error(
				"Fatal error: OBJECT_STORE_BUCKET required when OBJECT_STORE_ENDPOINT is set",
			)
		}
	}

	ConfigInstance = config
	return nil
}
