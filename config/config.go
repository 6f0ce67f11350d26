package config

import (
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application configuration
type Config struct {
	Env       string
	Port      string
	APIPrefix string

	DB DBConfig

	JWTKey    string
	SaltRound int

	RequestTimeout time.Duration

	Storage StorageConfig

	SendGridAPIKey  string
	EmailSender     string
	EmailSenderName string

	BlobSweepSchedule string
}

// DBConfig selects the GORM dialector and pool sizes.
type DBConfig struct {
	Driver       string // postgres, mysql or sqlite
	DSN          string // takes precedence over the discrete fields below
	Host         string
	Port         string
	User         string
	Password     string
	Name         string
	MaxOpenConns int
	MaxIdleConns int
}

// StorageConfig configures the blob store used for uploads.
type StorageConfig struct {
	Driver       string // remote or local
	BaseURL      string
	Bucket       string
	APIKey       string
	LocalDir     string
	PublicURL    string
	SigningKey   string
	SignedURLTTL time.Duration
}

// AppConfig is a global variable to access configuration
var AppConfig *Config

// IsProduction reports whether internal error details must be hidden.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// LoadConfig initializes configuration from environment variables or defaults
func LoadConfig() {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found. Using system environment variables.")
	}

	AppConfig = Load(newViper())

	if AppConfig.JWTKey == "defaultSecret" {
		log.Println("Warning: Using default JWT_SECRET_KEY. Update it in your environment.")
	}
	if AppConfig.DB.Driver == "sqlite" && AppConfig.Env == "production" {
		log.Println("Warning: Using sqlite in production. Set DB_DRIVER in your environment.")
	}
}

func newViper() *viper.Viper {
	v := viper.New()

	v.SetDefault("app_env", "local")
	v.SetDefault("port", "3000")
	v.SetDefault("api_prefix", "/api/v1")

	v.SetDefault("db_driver", "postgres")
	v.SetDefault("db_host", "localhost")
	v.SetDefault("db_port", "5432")
	v.SetDefault("db_name", "lms")
	v.SetDefault("db_max_open_conns", 10)
	v.SetDefault("db_max_idle_conns", 5)

	v.SetDefault("jwt_secret_key", "defaultSecret")
	v.SetDefault("salt_round", 10)
	v.SetDefault("request_timeout", "15s")

	v.SetDefault("storage_driver", "local")
	v.SetDefault("storage_bucket", "lms")
	v.SetDefault("storage_local_dir", "./uploads")
	v.SetDefault("storage_public_url", "http://localhost:3000")
	v.SetDefault("storage_signing_key", "defaultSecret")
	v.SetDefault("signed_url_ttl", "1h")

	v.SetDefault("email_sender", "no-reply@lms.local")
	v.SetDefault("email_sender_name", "LMS")

	v.SetDefault("blob_sweep_schedule", "*/15 * * * *")

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load builds a Config from the keys known to v.
func Load(v *viper.Viper) *Config {
	return &Config{
		Env:       v.GetString("app_env"),
		Port:      v.GetString("port"),
		APIPrefix: v.GetString("api_prefix"),

		DB: DBConfig{
			Driver:       strings.ToLower(v.GetString("db_driver")),
			DSN:          v.GetString("db_dsn"),
			Host:         v.GetString("db_host"),
			Port:         v.GetString("db_port"),
			User:         v.GetString("db_user"),
			Password:     v.GetString("db_password"),
			Name:         v.GetString("db_name"),
			MaxOpenConns: v.GetInt("db_max_open_conns"),
			MaxIdleConns: v.GetInt("db_max_idle_conns"),
		},

		JWTKey:    v.GetString("jwt_secret_key"),
		SaltRound: v.GetInt("salt_round"),

		RequestTimeout: v.GetDuration("request_timeout"),

		Storage: StorageConfig{
			Driver:       strings.ToLower(v.GetString("storage_driver")),
			BaseURL:      strings.TrimRight(v.GetString("storage_url"), "/"),
			Bucket:       v.GetString("storage_bucket"),
			APIKey:       v.GetString("storage_api_key"),
			LocalDir:     v.GetString("storage_local_dir"),
			PublicURL:    strings.TrimRight(v.GetString("storage_public_url"), "/"),
			SigningKey:   v.GetString("storage_signing_key"),
			SignedURLTTL: v.GetDuration("signed_url_ttl"),
		},

		SendGridAPIKey:  v.GetString("sendgrid_api_key"),
		EmailSender:     v.GetString("email_sender"),
		EmailSenderName: v.GetString("email_sender_name"),

		BlobSweepSchedule: v.GetString("blob_sweep_schedule"),
	}
}
