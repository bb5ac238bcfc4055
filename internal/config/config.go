package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	JWT       JWTConfig
	Storage   StorageConfig
	Upload    UploadConfig  `mapstructure:"upload"`
	Tracing   TracingConfig `mapstructure:"tracing"`
	Redis     RedisConfig
	CORS      CORSConfig      `mapstructure:"cors"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`

	// Runtime flags set from the command line, never read from the file.
	ForceMigrate bool   `mapstructure:"-"`
	MigrateOnly  bool   `mapstructure:"-"`
	FilePath     string `mapstructure:"-"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type RateLimitConfig struct {
	MaxRequests   int `mapstructure:"max_requests"`
	WindowMinutes int `mapstructure:"window_minutes"`
	// LoginMaxRequests throttles /auth/login and /auth/register per IP.
	LoginMaxRequests int `mapstructure:"login_max_requests"`
}

func (c RateLimitConfig) Window() time.Duration {
	if c.WindowMinutes <= 0 {
		return time.Minute
	}
	return time.Duration(c.WindowMinutes) * time.Minute
}

type ServerConfig struct {
	Port string
	Mode string
}

type DatabaseConfig struct {
	Driver    string
	Host      string
	Port      int
	User      string
	Password  string
	DBName    string
	SSLMode   string `mapstructure:"sslmode"`
	TimeZone  string `mapstructure:"timezone"`
	Charset   string
	ParseTime bool `mapstructure:"parse_time"`
	MaxOpen   int  `mapstructure:"max_open_conns"`
	MaxIdle   int  `mapstructure:"max_idle_conns"`
}

type JWTConfig struct {
	Secret     string        `mapstructure:"secret"`
	ExpireTime time.Duration `mapstructure:"expire_hours"`
}

type StorageConfig struct {
	Type          string `mapstructure:"type"`
	LocalPath     string `mapstructure:"local_path"`
	MinioEndpoint string `mapstructure:"minio_endpoint"`
	MinioAccessID string `mapstructure:"minio_access_key"`
	MinioSecret   string `mapstructure:"minio_secret_key"`
	MinioBucket   string `mapstructure:"minio_bucket"`
	MinioUseSSL   bool   `mapstructure:"minio_use_ssl"`
	OSSEndpoint   string `mapstructure:"oss_endpoint"`
	OSSAccessKey  string `mapstructure:"oss_access_key"`
	OSSSecretKey  string `mapstructure:"oss_secret_key"`
	OSSBucket     string `mapstructure:"oss_bucket"`
}

type UploadConfig struct {
	MaxAssignmentMB int `mapstructure:"max_assignment_mb"`
	MaxMaterialMB   int `mapstructure:"max_material_mb"`
	MaxSubmissionMB int `mapstructure:"max_submission_mb"`
	MaxAvatarMB     int `mapstructure:"max_avatar_mb"`
}

type TracingConfig struct {
	Enabled           bool   `mapstructure:"enabled"`
	CollectorEndpoint string `mapstructure:"collector_endpoint"`
}

type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Password string
	DB       int
}

type SchedulerConfig struct {
	Enabled bool `mapstructure:"enabled"`
	// StreakResetAt is the local HH:MM at which stale streaks are zeroed.
	StreakResetAt string `mapstructure:"streak_reset_at"`
	// SessionCleanupHours is the interval between expired-session sweeps.
	SessionCleanupHours int `mapstructure:"session_cleanup_hours"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "5000")
	v.SetDefault("server.mode", "debug")

	v.SetDefault("database.driver", "postgres")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.timezone", "Asia/Jakarta")
	v.SetDefault("database.charset", "utf8mb4")
	v.SetDefault("database.parse_time", true)
	v.SetDefault("database.max_open_conns", 25)
	v.SetDefault("database.max_idle_conns", 5)

	v.SetDefault("jwt.expire_hours", 24)

	v.SetDefault("storage.type", "local")
	v.SetDefault("storage.local_path", "uploads")

	v.SetDefault("upload.max_assignment_mb", 10)
	v.SetDefault("upload.max_material_mb", 50)
	v.SetDefault("upload.max_submission_mb", 10)
	v.SetDefault("upload.max_avatar_mb", 2)

	v.SetDefault("redis.port", 6379)

	v.SetDefault("rate_limit.max_requests", 300)
	v.SetDefault("rate_limit.window_minutes", 1)
	v.SetDefault("rate_limit.login_max_requests", 20)

	v.SetDefault("scheduler.enabled", true)
	v.SetDefault("scheduler.streak_reset_at", "00:05")
	v.SetDefault("scheduler.session_cleanup_hours", 6)
}

// LoadConfig reads <path>/config.yaml, then overlays .env and process env.
// A missing config file is not an error; defaults and env still apply.
func LoadConfig(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, using process environment")
	}

	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	v.SetEnvPrefix("MINDAGROW")
	v.AutomaticEnv()
	setDefaults(v)

	// Database
	v.BindEnv("database.driver", "DATABASE_DRIVER")
	v.BindEnv("database.host", "DATABASE_HOST", "DB_HOST")
	v.BindEnv("database.port", "DATABASE_PORT", "DB_PORT")
	v.BindEnv("database.user", "DATABASE_USER", "DB_USER")
	v.BindEnv("database.password", "DATABASE_PASSWORD", "DB_PASSWORD")
	v.BindEnv("database.dbname", "DATABASE_NAME", "DB_NAME")

	// JWT
	v.BindEnv("jwt.secret", "JWT_SECRET")
	v.BindEnv("jwt.expire_hours", "JWT_EXPIRE_HOURS")

	// Redis
	v.BindEnv("redis.enabled", "REDIS_ENABLED")
	v.BindEnv("redis.host", "REDIS_HOST")
	v.BindEnv("redis.port", "REDIS_PORT")
	v.BindEnv("redis.password", "REDIS_PASSWORD")

	// Server
	v.BindEnv("server.mode", "SERVER_MODE")
	v.BindEnv("server.port", "PORT")

	// Storage
	v.BindEnv("storage.type", "STORAGE_TYPE")
	v.BindEnv("storage.local_path", "UPLOAD_DIR")
	v.BindEnv("storage.minio_endpoint", "MINIO_ENDPOINT")
	v.BindEnv("storage.minio_access_key", "MINIO_ACCESS_KEY")
	v.BindEnv("storage.minio_secret_key", "MINIO_SECRET_KEY")
	v.BindEnv("storage.minio_bucket", "MINIO_BUCKET")
	v.BindEnv("storage.oss_endpoint", "OSS_ENDPOINT")
	v.BindEnv("storage.oss_access_key", "OSS_ACCESS_KEY")
	v.BindEnv("storage.oss_secret_key", "OSS_SECRET_KEY")
	v.BindEnv("storage.oss_bucket", "OSS_BUCKET")

	// Tracing
	v.BindEnv("tracing.enabled", "TRACING_ENABLED")
	v.BindEnv("tracing.collector_endpoint", "TRACING_COLLECTOR_ENDPOINT")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	cfg.FilePath = v.ConfigFileUsed()

	cfg.JWT.ExpireTime = cfg.JWT.ExpireTime * time.Hour

	if cfg.JWT.Secret == "" {
		return nil, fmt.Errorf("JWT secret is not set")
	}
	if cfg.Server.Mode == "release" && len(cfg.JWT.Secret) < 32 {
		return nil, fmt.Errorf("JWT secret is too short (%d chars), must be at least 32 characters in release mode", len(cfg.JWT.Secret))
	}

	if cfg.Storage.Type == "local" {
		if _, err := os.Stat(cfg.Storage.LocalPath); os.IsNotExist(err) {
			os.MkdirAll(cfg.Storage.LocalPath, 0755)
		}
	}

	return &cfg, nil
}
