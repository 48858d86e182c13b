package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"

	"github.com/Alijeyrad/pms_backend/pkg/constants"
)

var GlobalConf *Config

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8000)
	v.SetDefault("server.timeout_seconds", 30)
	v.SetDefault("server.body_limit_mb", 10)
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.rate_limit.requests_per_window", 60)
	v.SetDefault("server.rate_limit.window_seconds", 60)

	v.SetDefault("database.port", 5432)
	v.SetDefault("database.sslmode", "disable")

	v.SetDefault("authentication.paseto.mode", "local")
	v.SetDefault("authentication.paseto.issuer", constants.AppName)
	v.SetDefault("authentication.paseto.audience", constants.AppName)
	v.SetDefault("authentication.paseto.access_ttl_minutes", 15)
	v.SetDefault("authentication.paseto.refresh_ttl_days", 30)
	v.SetDefault("authentication.auth_code.ttl_seconds", 120)
	v.SetDefault("authentication.token_ttl_hours", 72)
	v.SetDefault("authentication.default_region", "NG")
	v.SetDefault("authentication.max_login_attempts", 5)
	v.SetDefault("authentication.lockout_minutes", 15)
	v.SetDefault("authentication.min_password_length", 8)

	v.SetDefault("otp.default_length", 6)
	v.SetDefault("otp.min_length", 4)
	v.SetDefault("otp.max_length", 10)
	v.SetDefault("otp.hash_algorithm", "sha256")

	v.SetDefault("assessment.scoring.policy", "percentage")
	v.SetDefault("assessment.scoring.points_per_correct", 2)
	v.SetDefault("assessment.default_page_size", 20)
	v.SetDefault("assessment.max_page_size", 100)

	v.SetDefault("observability.service_name", constants.ServiceName)
	v.SetDefault("observability.metrics.path", "/metrics")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	v.SetDefault("nats.subject_prefix", constants.AppName)
}

// ReadConfig loads config.yaml from configPath. Every key can be overridden
// from the environment, e.g. PMS_DATABASE_HOST overrides database.host.
func ReadConfig(configPath string) (*Config, error) {
	v := viper.New()
	v.SetConfigName(constants.ConfigName)
	v.SetConfigType(constants.ConfigFormat)
	v.AddConfigPath(configPath)

	v.SetEnvPrefix(constants.EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	// The file is optional in containers as long as the environment carries
	// the database settings.
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) || os.Getenv(constants.EnvPrefix+"_DATABASE_HOST") == "" {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode into struct: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &config, nil
}

func MustReadConfig(path string) *Config {
	config, err := ReadConfig(path)
	if err != nil {
		panic(err)
	}

	GlobalConf = config

	return config
}
