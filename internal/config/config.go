// Package config loads the ncheta configuration from YAML, environment variables and defaults.
package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

const (
	RemoteBackendNone     = "none"
	RemoteBackendMySQL    = "mysql"
	RemoteBackendPostgres = "postgres"
	RemoteBackendGCS      = "gcs"
	RemoteBackendS3       = "s3"

	SubscriptionProviderNone       = "none"
	SubscriptionProviderRevenueCat = "revenuecat"
)

type Config struct {
	Server       ServerConfig       `mapstructure:"server"`
	Local        LocalConfig        `mapstructure:"local"`
	Remote       RemoteConfig       `mapstructure:"remote"`
	Generation   GenerationConfig   `mapstructure:"generation"`
	Auth         AuthConfig         `mapstructure:"auth"`
	Subscription SubscriptionConfig `mapstructure:"subscription"`
	Settings     SettingsConfig     `mapstructure:"settings"`
	Sync         SyncConfig         `mapstructure:"sync"`
	Outputs      OutputsConfig      `mapstructure:"outputs"`
}

type ServerConfig struct {
	Port int        `mapstructure:"port" validate:"min=1,max=65535"`
	CORS CORSConfig `mapstructure:"cors"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type LocalConfig struct {
	DatabasePath string `mapstructure:"database_path" validate:"required"`
}

type RemoteConfig struct {
	Backend  string         `mapstructure:"backend" validate:"oneof=none mysql postgres gcs s3"`
	Database DatabaseConfig `mapstructure:"database"`
	GCS      GCSConfig      `mapstructure:"gcs"`
	S3       S3Config       `mapstructure:"s3"`
}

type DatabaseConfig struct {
	Driver          string            `mapstructure:"driver"`
	Host            string            `mapstructure:"host"`
	Port            int               `mapstructure:"port"`
	Database        string            `mapstructure:"database"`
	Username        string            `mapstructure:"username"`
	Password        string            `mapstructure:"password"`
	TLS             bool              `mapstructure:"tls"`
	Params          map[string]string `mapstructure:"params"`
	MaxOpenConns    int               `mapstructure:"max_open_conns"`
	MaxIdleConns    int               `mapstructure:"max_idle_conns"`
	ConnMaxLifetime int               `mapstructure:"conn_max_lifetime_seconds"`
}

type GCSConfig struct {
	Bucket          string `mapstructure:"bucket" validate:"omitempty,bucket"`
	Prefix          string `mapstructure:"prefix"`
	CredentialsFile string `mapstructure:"credentials_file" validate:"omitempty,file"`
	// Endpoint points the JSON API at an emulator such as fake-gcs-server, e.g. http://localhost:4443/storage/v1/.
	Endpoint string `mapstructure:"endpoint" validate:"omitempty,url"`
}

type S3Config struct {
	Bucket          string `mapstructure:"bucket" validate:"omitempty,bucket"`
	Prefix          string `mapstructure:"prefix"`
	Region          string `mapstructure:"region"`
	Endpoint        string `mapstructure:"endpoint"`
	UsePathStyle    bool   `mapstructure:"use_path_style"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
}

type GenerationConfig struct {
	BaseURL            string `mapstructure:"base_url" validate:"required,url"`
	Model              string `mapstructure:"model" validate:"required"`
	VisionModel        string `mapstructure:"vision_model" validate:"required"`
	TranscriptionModel string `mapstructure:"transcription_model" validate:"required"`
	MaxRetryAttempts   uint   `mapstructure:"max_retry_attempts"`
	RequestsPerMinute  int    `mapstructure:"requests_per_minute" validate:"min=0"`
	// APIKey is used when the user has not stored a key in the settings file.
	APIKey string `mapstructure:"api_key"`
}

type AuthConfig struct {
	JWTSecret       string                 `mapstructure:"jwt_secret"`
	SessionTTLHours int                    `mapstructure:"session_ttl_hours" validate:"min=1"`
	BcryptCost      int                    `mapstructure:"bcrypt_cost" validate:"min=4,max=31"`
	Google          IdentityProviderConfig `mapstructure:"google"`
	Apple           IdentityProviderConfig `mapstructure:"apple"`
}

// SessionTTL returns the lifetime of an issued session token.
func (c AuthConfig) SessionTTL() time.Duration {
	return time.Duration(c.SessionTTLHours) * time.Hour
}

type IdentityProviderConfig struct {
	ClientID string   `mapstructure:"client_id"`
	JWKSURL  string   `mapstructure:"jwks_url" validate:"omitempty,url"`
	Issuers  []string `mapstructure:"issuers"`
}

type SubscriptionConfig struct {
	Provider         string `mapstructure:"provider" validate:"oneof=none revenuecat"`
	BaseURL          string `mapstructure:"base_url" validate:"omitempty,url"`
	APIKey           string `mapstructure:"api_key"`
	Platform         string `mapstructure:"platform"`
	Entitlement      string `mapstructure:"entitlement" validate:"required"`
	MaxRetryAttempts uint   `mapstructure:"max_retry_attempts"`
}

type SettingsConfig struct {
	Path string `mapstructure:"path" validate:"required"`
}

type SyncConfig struct {
	IntervalMinutes int  `mapstructure:"interval_minutes" validate:"min=0"`
	OnStartup       bool `mapstructure:"on_startup"`
}

// Interval returns the period of background sync, zero when disabled.
func (c SyncConfig) Interval() time.Duration {
	return time.Duration(c.IntervalMinutes) * time.Minute
}

type OutputsConfig struct {
	ExportDirectory string `mapstructure:"export_directory"`
	BackupDirectory string `mapstructure:"backup_directory"`
	// TemplatePath overrides the embedded study sheet template when the file exists.
	TemplatePath string    `mapstructure:"template_path"`
	PDF          PDFConfig `mapstructure:"pdf"`
}

// PDFConfig is the page layout of exported PDF study sheets.
type PDFConfig struct {
	Orientation string `mapstructure:"orientation" validate:"oneof=portrait landscape"`
	PaperSize   string `mapstructure:"paper_size" validate:"oneof=A3 A4 A5 Letter Legal"`
	Theme       string `mapstructure:"theme" validate:"oneof=light dark"`
}

type ConfigLoader struct {
	viper      *viper.Viper
	validator  *validator.Validate
	translator ut.Translator
}

func NewConfigLoader(configFile string) (*ConfigLoader, error) {
	validate, trans, err := newValidator()
	if err != nil {
		return nil, fmt.Errorf("failed to create new validator: %w", err)
	}

	v := viper.New()
	v.SetConfigType("yaml")
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/ncheta")
	}

	return &ConfigLoader{
		viper:      v,
		validator:  validate,
		translator: trans,
	}, nil
}

func (loader *ConfigLoader) Load() (*Config, error) {
	v := loader.viper

	v.SetDefault("server.port", 8080)
	v.SetDefault("server.cors.allowed_origins", []string{"http://localhost:3000"})
	v.SetDefault("local.database_path", filepath.Join("data", "ncheta.db"))
	v.SetDefault("remote.backend", RemoteBackendNone)
	v.SetDefault("remote.database.host", "localhost")
	v.SetDefault("remote.database.database", "ncheta")
	v.SetDefault("remote.database.username", "ncheta")
	v.SetDefault("remote.gcs.prefix", "ncheta")
	v.SetDefault("remote.s3.prefix", "ncheta")
	v.SetDefault("remote.s3.region", "us-east-1")
	v.SetDefault("generation.base_url", "https://api.openai.com/v1")
	v.SetDefault("generation.model", "gpt-4o-mini")
	v.SetDefault("generation.vision_model", "gpt-4o-mini")
	v.SetDefault("generation.transcription_model", "whisper-1")
	v.SetDefault("generation.max_retry_attempts", 2)
	v.SetDefault("generation.requests_per_minute", 60)
	v.SetDefault("auth.session_ttl_hours", 24*30)
	v.SetDefault("auth.bcrypt_cost", 10)
	v.SetDefault("auth.google.jwks_url", "https://www.googleapis.com/oauth2/v3/certs")
	v.SetDefault("auth.google.issuers", []string{"accounts.google.com", "https://accounts.google.com"})
	v.SetDefault("auth.apple.jwks_url", "https://appleid.apple.com/auth/keys")
	v.SetDefault("auth.apple.issuers", []string{"https://appleid.apple.com"})
	v.SetDefault("subscription.provider", SubscriptionProviderNone)
	v.SetDefault("subscription.base_url", "https://api.revenuecat.com/v1")
	v.SetDefault("subscription.platform", "android")
	v.SetDefault("subscription.entitlement", "premium")
	v.SetDefault("subscription.max_retry_attempts", 2)
	v.SetDefault("settings.path", filepath.Join("data", "settings.yml"))
	v.SetDefault("sync.interval_minutes", 0)
	v.SetDefault("outputs.export_directory", filepath.Join("outputs", "export"))
	v.SetDefault("outputs.backup_directory", filepath.Join("outputs", "backup"))
	v.SetDefault("outputs.pdf.orientation", "portrait")
	v.SetDefault("outputs.pdf.paper_size", "A4")
	v.SetDefault("outputs.pdf.theme", "light")

	// Secrets are bound to environment variables only
	envBindings := map[string]string{
		"generation.api_key":          "OPENAI_API_KEY",
		"auth.jwt_secret":             "NCHETA_JWT_SECRET",
		"subscription.api_key":        "REVENUECAT_API_KEY",
		"remote.database.password":    "REMOTE_DB_PASSWORD",
		"remote.s3.access_key_id":     "AWS_ACCESS_KEY_ID",
		"remote.s3.secret_access_key": "AWS_SECRET_ACCESS_KEY",
		"remote.gcs.credentials_file": "GOOGLE_APPLICATION_CREDENTIALS",
	}
	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("failed to bind %s environment variable: %w", env, err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("configuration file found but could not be read: %w. Please check the file format and permissions", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration format: %w", err)
	}

	if err := loader.validator.Struct(cfg); err != nil {
		var validationErrors validator.ValidationErrors
		if !errors.As(err, &validationErrors) {
			return nil, fmt.Errorf("loader.validator.Struct() > %w", err)
		}
		var errorMsgs []string
		for _, e := range validationErrors {
			errorMsgs = append(errorMsgs, e.Translate(loader.translator))
		}
		return nil, fmt.Errorf("invalid configuration: %s", strings.Join(errorMsgs, ", "))
	}
	if err := validateBackends(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// validateBackends checks settings that only apply to the selected backends.
func validateBackends(cfg *Config) error {
	var missing []string
	switch cfg.Remote.Backend {
	case RemoteBackendMySQL, RemoteBackendPostgres:
		cfg.Remote.Database.Driver = cfg.Remote.Backend
		if cfg.Remote.Database.Port == 0 {
			if cfg.Remote.Backend == RemoteBackendMySQL {
				cfg.Remote.Database.Port = 3306
			} else {
				cfg.Remote.Database.Port = 5432
			}
		}
		if cfg.Remote.Database.Host == "" {
			missing = append(missing, "remote.database.host")
		}
	case RemoteBackendGCS:
		if cfg.Remote.GCS.Bucket == "" {
			missing = append(missing, "remote.gcs.bucket")
		}
	case RemoteBackendS3:
		if cfg.Remote.S3.Bucket == "" {
			missing = append(missing, "remote.s3.bucket")
		}
	}
	if cfg.Subscription.Provider == SubscriptionProviderRevenueCat && cfg.Subscription.APIKey == "" {
		missing = append(missing, "subscription.api_key (REVENUECAT_API_KEY)")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%s must be set", strings.Join(missing, ", "))
	}
	return nil
}
