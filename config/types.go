package config

import (
	"errors"
	"fmt"
	"strings"
)

type Config struct {
	Database       DatabaseConfig       `mapstructure:"database"`
	CasbinDatabase DatabaseConfig       `mapstructure:"casbin_database"`
	Redis          RedisConfig          `mapstructure:"redis"`
	Server         ServerConfig         `mapstructure:"server"`
	Authentication AuthenticationConfig `mapstructure:"authentication"`
	Authorization  AuthorizationConfig  `mapstructure:"authorization"`
	Password       PasswordConfig       `mapstructure:"password"`
	OTP            OTPConfig            `mapstructure:"otp"`
	Assessment     AssessmentConfig     `mapstructure:"assessment"`
	Observability  ObservabilityConfig  `mapstructure:"observability"`
	Logging        LoggingConfig        `mapstructure:"logging"`
	S3             S3Config             `mapstructure:"s3"`
	Nats           NatsConfig           `mapstructure:"nats"`
}

type NatsConfig struct {
	Enabled       bool   `mapstructure:"enabled"`
	URL           string `mapstructure:"url"`
	SubjectPrefix string `mapstructure:"subject_prefix"` // e.g. "pms"
}

type DatabaseConfig struct {
	Host       string                  `mapstructure:"host"`
	Port       int                     `mapstructure:"port"`
	User       string                  `mapstructure:"user"`
	Password   string                  `mapstructure:"password"`
	DBName     string                  `mapstructure:"dbname"`
	SSLMode    string                  `mapstructure:"sslmode"`
	Pool       DatabasePoolConfig      `mapstructure:"pool"`
	Migrations DatabaseMigrationConfig `mapstructure:"migrations"`
	Logging    DatabaseLoggingConfig   `mapstructure:"logging"`
}

type DatabasePoolConfig struct {
	MaxOpenConns       int `mapstructure:"max_open_conns"`
	MaxIdleConns       int `mapstructure:"max_idle_conns"`
	ConnMaxLifetimeMin int `mapstructure:"conn_max_lifetime_minutes"`
}

type DatabaseMigrationConfig struct {
	AutoMigrate bool `mapstructure:"auto_migrate"`
	SafeMode    bool `mapstructure:"safe_mode"`
}

type DatabaseLoggingConfig struct {
	Enabled              bool `mapstructure:"enabled"`
	SlowQueryThresholdMs int  `mapstructure:"slow_query_threshold_ms"`
}

type RedisConfig struct {
	Addr                string `mapstructure:"addr"`
	DB                  int    `mapstructure:"db"`
	Username            string `mapstructure:"username"`
	Password            string `mapstructure:"password"`
	PoolSize            int    `mapstructure:"pool_size"`
	MinIdleConns        int    `mapstructure:"min_idle_conns"`
	DialTimeoutSeconds  int    `mapstructure:"dial_timeout_seconds"`
	ReadTimeoutSeconds  int    `mapstructure:"read_timeout_seconds"`
	WriteTimeoutSeconds int    `mapstructure:"write_timeout_seconds"`
}

type RateLimitConfig struct {
	Enabled           bool `mapstructure:"enabled"`
	RequestsPerWindow int  `mapstructure:"requests_per_window"`
	WindowSeconds     int  `mapstructure:"window_seconds"`
}

type ServerConfig struct {
	Port           int             `mapstructure:"port"`
	TimeoutSeconds int             `mapstructure:"timeout_seconds"`
	BodyLimitMB    int             `mapstructure:"body_limit_mb"`
	Environment    string          `mapstructure:"environment"`
	Domain         string          `mapstructure:"domain"`
	Databases      []string        `mapstructure:"databases"`
	CORS           CORSConfig      `mapstructure:"cors"`
	RateLimit      RateLimitConfig `mapstructure:"rate_limit"`
}

type CORSConfig struct {
	Enabled          bool     `mapstructure:"enabled"`
	AllowOrigins     []string `mapstructure:"allow_origins"`
	AllowMethods     []string `mapstructure:"allow_methods"`
	AllowHeaders     []string `mapstructure:"allow_headers"`
	ExposeHeaders    []string `mapstructure:"expose_headers"`
	AllowCredentials bool     `mapstructure:"allow_credentials"`
	MaxAgeSeconds    int      `mapstructure:"max_age_seconds"`
}

type AuthenticationConfig struct {
	Paseto            PasetoConfig   `mapstructure:"paseto"`
	AuthCode          AuthCodeConfig `mapstructure:"auth_code"`
	SessionTTLMinutes int            `mapstructure:"session_ttl_minutes"`
	// TokenTTLHours bounds account verification and password reset codes.
	TokenTTLHours int `mapstructure:"token_ttl_hours"`
	// DefaultRegion is the ISO 3166 region used to parse phone numbers
	// submitted without a country prefix.
	DefaultRegion string `mapstructure:"default_region"`
	// EncryptionKey is a 32-byte hex string used for AES-256-GCM encryption
	// of practitioner identification numbers.
	EncryptionKey string `mapstructure:"encryption_key"`

	MaxLoginAttempts  int `mapstructure:"max_login_attempts"`
	LockoutMinutes    int `mapstructure:"lockout_minutes"`
	MinPasswordLength int `mapstructure:"min_password_length"`
}

type PasetoConfig struct {
	Mode             string `mapstructure:"mode"`
	LocalKeyHex      string `mapstructure:"local_key_hex"`
	SecretKeyHex     string `mapstructure:"secret_key_hex"`
	PublicKeyHex     string `mapstructure:"public_key_hex"`
	Issuer           string `mapstructure:"issuer"`
	Audience         string `mapstructure:"audience"`
	AccessTTLMinutes int    `mapstructure:"access_ttl_minutes"`
	RefreshTTLDays   int    `mapstructure:"refresh_ttl_days"`
}

// AuthCodeConfig configures the short-lived code handed out on login and
// exchanged for a token pair by OAuth-style clients.
type AuthCodeConfig struct {
	Secret     string `mapstructure:"secret"`
	TTLSeconds int    `mapstructure:"ttl_seconds"`
}

type AuthorizationConfig struct {
	CasbinModelPath    string `mapstructure:"casbin_model_path"`
	EnableAudit        bool   `mapstructure:"enable_audit"`
	PolicySyncEnabled  bool   `mapstructure:"policy_sync_enabled"`
	HealthCheckEnabled bool   `mapstructure:"health_check_enabled"`
}

type PasswordConfig struct {
	Algorithm     string `mapstructure:"algorithm"`
	MemoryKiB     uint32 `mapstructure:"memory_kib"`
	Iterations    uint32 `mapstructure:"iterations"`
	Parallelism   uint8  `mapstructure:"parallelism"`
	SaltLength    uint32 `mapstructure:"salt_length"`
	KeyLength     uint32 `mapstructure:"key_length"`
	LowMemoryMode bool   `mapstructure:"low_memory_mode"`
}

type OTPConfig struct {
	DefaultLength int    `mapstructure:"default_length"`
	MinLength     int    `mapstructure:"min_length"`
	MaxLength     int    `mapstructure:"max_length"`
	HashAlgorithm string `mapstructure:"hash_algorithm"`
}

type AssessmentConfig struct {
	Scoring         ScoringConfig `mapstructure:"scoring"`
	DefaultPageSize int           `mapstructure:"default_page_size"`
	MaxPageSize     int           `mapstructure:"max_page_size"`
}

type ScoringConfig struct {
	Policy           string  `mapstructure:"policy"` // percentage, fixed_weight
	PointsPerCorrect float64 `mapstructure:"points_per_correct"`
}

type ObservabilityConfig struct {
	Enabled        bool          `mapstructure:"enabled"`
	ServiceName    string        `mapstructure:"service_name"`
	ServiceVersion string        `mapstructure:"service_version"`
	Tracing        TracingConfig `mapstructure:"tracing"`
	Metrics        MetricsConfig `mapstructure:"metrics"`
}

type TracingConfig struct {
	Enabled      bool    `mapstructure:"enabled"`
	OTLPEndpoint string  `mapstructure:"otlp_endpoint"`
	OTLPInsecure bool    `mapstructure:"otlp_insecure"`
	SamplingRate float64 `mapstructure:"sampling_rate"`
}

type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

type LoggingConfig struct {
	Level  string       `mapstructure:"level"`  // debug, info, warn, error
	Format string       `mapstructure:"format"` // text, json
	Output OutputConfig `mapstructure:"output"`
}

type OutputConfig struct {
	Stdout bool          `mapstructure:"stdout"`
	File   FileLogConfig `mapstructure:"file"`
	Loki   LokiConfig    `mapstructure:"loki"`
}

type FileLogConfig struct {
	Enabled    bool   `mapstructure:"enabled"`
	Path       string `mapstructure:"path"`        // e.g. "logs/app.log"
	MaxSizeMB  int    `mapstructure:"max_size_mb"` // rotate after N MB
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
	Compress   bool   `mapstructure:"compress"`
}

type LokiConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Endpoint string `mapstructure:"endpoint"` // e.g. "http://localhost:3100"
	TenantID string `mapstructure:"tenant_id"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
}

type S3Config struct {
	Enabled         bool   `mapstructure:"enabled"`
	Endpoint        string `mapstructure:"endpoint"`
	Region          string `mapstructure:"region"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	Bucket          string `mapstructure:"bucket"`
	PresignTTLSec   int    `mapstructure:"presign_ttl_sec"`
	MaxUploadMB     int    `mapstructure:"max_upload_mb"`
}

var (
	ErrInvalidPort          = errors.New("server.port must be between 1 and 65535")
	ErrInvalidScoringPolicy = errors.New("assessment.scoring.policy must be percentage or fixed_weight")
	ErrInvalidPasetoMode    = errors.New("authentication.paseto.mode must be local or public")
)

// Validate rejects configurations the server cannot start with. Zero values
// that have a documented default are accepted.
func (c *Config) Validate() error {
	var errs []error

	if c.Server.Port < 0 || c.Server.Port > 65535 {
		errs = append(errs, ErrInvalidPort)
	}

	switch strings.ToLower(c.Assessment.Scoring.Policy) {
	case "", "percentage", "fixed_weight":
	default:
		errs = append(errs, fmt.Errorf("%w: got %q", ErrInvalidScoringPolicy, c.Assessment.Scoring.Policy))
	}
	if c.Assessment.Scoring.PointsPerCorrect < 0 {
		errs = append(errs, errors.New("assessment.scoring.points_per_correct must not be negative"))
	}

	switch c.Authentication.Paseto.Mode {
	case "", "local", "public":
	default:
		errs = append(errs, fmt.Errorf("%w: got %q", ErrInvalidPasetoMode, c.Authentication.Paseto.Mode))
	}

	return errors.Join(errs...)
}

// IsProduction reports whether the server runs with production hardening.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Server.Environment, "production")
}
