package config

import (
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// readSecret reads a Docker secret from a file path specified by an env var
// with _FILE suffix. If FOO is already set directly, the file is skipped.
// If FOO_FILE is set, reads the file content and sets FOO.
func readSecret(envKey string) {
	if os.Getenv(envKey) != "" {
		return
	}
	fileKey := envKey + "_FILE"
	filePath := os.Getenv(fileKey)
	if filePath == "" {
		return
	}
	data, err := os.ReadFile(filePath)
	if err != nil {
		return
	}
	val := strings.TrimSpace(string(data))
	os.Setenv(envKey, val)
}

type Config struct {
	Server    ServerConfig
	JWT       JWTConfig
	Auth      AuthConfig
	Download  DownloadConfig
	Wallhaven WallhavenConfig
	Redis     RedisConfig
	RateLimit RateLimitConfig
}

type ServerConfig struct {
	Port        string
	Env         string
	LogLevel    string
	FrontendDir string
}

type JWTConfig struct {
	Secret     string
	Expiration int // hours
}

type AuthConfig struct {
	AdminPassword string
}

type DownloadConfig struct {
	Dir           string
	DefaultProxy  string
	UploadLimitMB int
}

type WallhavenConfig struct {
	BaseURL string
	Timeout int // seconds, 0 keeps the http.Client default
}

// RedisConfig is optional; an empty Addr disables the status mirror and rate limiting.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type RateLimitConfig struct {
	LoginPerMin int
}

func Load() (*Config, error) {
	// .env is optional; real environment variables win
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("Warning: failed to read .env: %v", err)
	}

	readSecret("JWT_SECRET")
	readSecret("ADMIN_PASSWORD")
	readSecret("REDIS_PASSWORD")

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	v.AutomaticEnv()

	_ = v.BindEnv("server.port", "PORT")
	_ = v.BindEnv("server.env", "SERVER_ENV")
	_ = v.BindEnv("server.log_level", "LOG_LEVEL")
	_ = v.BindEnv("server.frontend_dir", "FRONTEND_DIST_DIR")
	_ = v.BindEnv("jwt.secret", "JWT_SECRET")
	_ = v.BindEnv("jwt.expiration", "JWT_EXPIRATION")
	_ = v.BindEnv("auth.admin_password", "ADMIN_PASSWORD")
	_ = v.BindEnv("download.dir", "DOWNLOAD_DIR")
	_ = v.BindEnv("download.default_proxy", "DEFAULT_PROXY")
	_ = v.BindEnv("download.upload_limit_mb", "UPLOAD_LIMIT_MB")
	_ = v.BindEnv("wallhaven.base_url", "WALLHAVEN_BASE_URL")
	_ = v.BindEnv("wallhaven.timeout", "WALLHAVEN_TIMEOUT")
	_ = v.BindEnv("redis.addr", "REDIS_ADDR")
	_ = v.BindEnv("redis.password", "REDIS_PASSWORD")
	_ = v.BindEnv("redis.db", "REDIS_DB")
	_ = v.BindEnv("ratelimit.login_per_min", "LOGIN_RATE_PER_MIN")

	v.SetDefault("server.port", "5000")
	v.SetDefault("server.env", "development")
	v.SetDefault("server.log_level", "info")
	v.SetDefault("server.frontend_dir", "../frontend/dist")
	v.SetDefault("jwt.secret", "")
	v.SetDefault("jwt.expiration", 24*7)
	v.SetDefault("auth.admin_password", "")
	v.SetDefault("download.dir", "./downloads")
	v.SetDefault("download.default_proxy", "")
	v.SetDefault("download.upload_limit_mb", 10)
	v.SetDefault("wallhaven.base_url", "https://wallhaven.cc/api/v1")
	v.SetDefault("wallhaven.timeout", 0)
	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("ratelimit.login_per_min", 10)

	// Try to read config file (optional)
	_ = v.ReadInConfig()

	cfg := &Config{
		Server: ServerConfig{
			Port:        v.GetString("server.port"),
			Env:         v.GetString("server.env"),
			LogLevel:    v.GetString("server.log_level"),
			FrontendDir: v.GetString("server.frontend_dir"),
		},
		JWT: JWTConfig{
			Secret:     v.GetString("jwt.secret"),
			Expiration: v.GetInt("jwt.expiration"),
		},
		Auth: AuthConfig{
			AdminPassword: v.GetString("auth.admin_password"),
		},
		Download: DownloadConfig{
			Dir:           v.GetString("download.dir"),
			DefaultProxy:  v.GetString("download.default_proxy"),
			UploadLimitMB: v.GetInt("download.upload_limit_mb"),
		},
		Wallhaven: WallhavenConfig{
			BaseURL: strings.TrimRight(v.GetString("wallhaven.base_url"), "/"),
			Timeout: v.GetInt("wallhaven.timeout"),
		},
		Redis: RedisConfig{
			Addr:     v.GetString("redis.addr"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
		RateLimit: RateLimitConfig{
			LoginPerMin: v.GetInt("ratelimit.login_per_min"),
		},
	}

	return cfg, nil
}
