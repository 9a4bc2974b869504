package config

import (
	"fmt"
	"strings"

	"github.com/glebarez/sqlite"
	"github.com/spf13/viper"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Config holds all configuration values from environment.
type Config struct {
	AppPort   string
	LogLevel  string
	LogFormat string

	// Model metadata database: "sqlite" or "postgres"
	DBDriver   string
	SQLitePath string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	// Blob storage for imported GLB files: "memory", "file" or "minio"
	BlobBackend        string
	MemoryBlobMaxBytes int64
	MinioEndpoint      string
	MinioAccessKey     string
	MinioSecretKey     string
	MinioBucket        string
	MinioSSL           bool
	FileBlobDir        string

	// Import settings
	MaxUploadBytes int64

	// Session settings
	SessionQueueSize int
	SubscriberBuffer int
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("viewer_port", "8080")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "json")

	v.SetDefault("db_driver", "sqlite")
	v.SetDefault("sqlite_path", "")
	v.SetDefault("db_port", "5432")

	v.SetDefault("blob_backend", "memory")
	v.SetDefault("memory_blob_max_bytes", int64(512<<20))
	v.SetDefault("minio_ssl", false)
	v.SetDefault("file_blob_dir", "./data/models")

	v.SetDefault("max_upload_bytes", int64(100<<20))

	v.SetDefault("session_queue_size", 64)
	v.SetDefault("session_subscriber_buffer", 16)
}

// LoadConfig loads configuration from environment variables.
func LoadConfig() (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{
		AppPort:   v.GetString("viewer_port"),
		LogLevel:  v.GetString("log_level"),
		LogFormat: v.GetString("log_format"),

		DBDriver:   strings.ToLower(v.GetString("db_driver")),
		SQLitePath: v.GetString("sqlite_path"),
		DBHost:     v.GetString("db_host"),
		DBPort:     v.GetString("db_port"),
		DBUser:     v.GetString("db_user"),
		DBPassword: v.GetString("db_password"),
		DBName:     v.GetString("db_name"),

		BlobBackend:        strings.ToLower(v.GetString("blob_backend")),
		MemoryBlobMaxBytes: v.GetInt64("memory_blob_max_bytes"),
		MinioEndpoint:      v.GetString("minio_endpoint"),
		MinioAccessKey:     v.GetString("minio_access_key"),
		MinioSecretKey:     v.GetString("minio_secret_key"),
		MinioBucket:        v.GetString("minio_bucket"),
		MinioSSL:           v.GetBool("minio_ssl"),
		FileBlobDir:        v.GetString("file_blob_dir"),

		MaxUploadBytes: v.GetInt64("max_upload_bytes"),

		SessionQueueSize: v.GetInt("session_queue_size"),
		SubscriberBuffer: v.GetInt("session_subscriber_buffer"),
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that the selected backends have what they need.
func (cfg *Config) Validate() error {
	switch cfg.DBDriver {
	case "sqlite":
	case "postgres":
		if cfg.DBHost == "" || cfg.DBUser == "" || cfg.DBName == "" {
			return fmt.Errorf("database configuration is incomplete")
		}
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
	}

	switch cfg.BlobBackend {
	case "memory":
		if cfg.MemoryBlobMaxBytes <= 0 {
			return fmt.Errorf("MEMORY_BLOB_MAX_BYTES must be positive")
		}
	case "minio":
		if cfg.MinioEndpoint == "" || cfg.MinioAccessKey == "" || cfg.MinioSecretKey == "" || cfg.MinioBucket == "" {
			return fmt.Errorf("minio configuration is incomplete")
		}
	case "file":
		if cfg.FileBlobDir == "" {
			return fmt.Errorf("FILE_BLOB_DIR must be set")
		}
	default:
		return fmt.Errorf("unsupported BLOB_BACKEND %q", cfg.BlobBackend)
	}

	if cfg.MaxUploadBytes <= 0 {
		return fmt.Errorf("MAX_UPLOAD_BYTES must be positive")
	}
	return nil
}

// ConnectDatabase opens the model metadata database selected by DBDriver.
func ConnectDatabase(cfg *Config) (*gorm.DB, error) {
	gormCfg := &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)}
	if cfg.DBDriver == "postgres" {
		dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
			cfg.DBHost, cfg.DBPort, cfg.DBUser, cfg.DBPassword, cfg.DBName)
		return gorm.Open(postgres.Open(dsn), gormCfg)
	}

	path := cfg.SQLitePath
	if path == "" {
		path = "file::memory:?cache=shared"
	}
	return gorm.Open(sqlite.Open(path), gormCfg)
}
