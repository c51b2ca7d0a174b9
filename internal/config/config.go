package config

import (
	"errors"
	"os"
	"strconv"
)

type Config struct {
	Port           string
	MongoURI       string
	JWTSecret      string
	GoogleClientID string
	Env            string
	BaseURL        string
	TokenTTLHours  int
}

func getenv(key, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}

// Validate 启动前检查配置，生产环境禁止使用默认密钥。
func Validate(cfg Config) error {
	if cfg.Port == "" {
		return errors.New("config: APP_PORT is empty")
	}
	if cfg.MongoURI == "" {
		return errors.New("config: MONGODB_URI is empty")
	}
	if cfg.Env != "dev" && cfg.JWTSecret == defaultJWTSecret {
		return errors.New("config: default JWT_SECRET is not allowed outside dev")
	}
	if cfg.TokenTTLHours <= 0 {
		return errors.New("config: TOKEN_TTL_HOURS must be positive")
	}
	return nil
}

const defaultJWTSecret = "dev-secret-change-me"

func Load() Config {
	port := getenv("APP_PORT", "8000")
	uri := getenv("MONGODB_URI", "mongodb://localhost:27017/chatapp")
	secret := getenv("JWT_SECRET", defaultJWTSecret)
	clientID := getenv("GOOGLE_CLIENT_ID", "")
	env := getenv("APP_ENV", "dev")
	baseURL := getenv("BASE_URL", "http://localhost:3000")
	ttlStr := getenv("TOKEN_TTL_HOURS", "24")
	ttl, err := strconv.Atoi(ttlStr)
	if err != nil || ttl <= 0 {
		ttl = 24
	}
	return Config{
		Port:           port,
		MongoURI:       uri,
		JWTSecret:      secret,
		GoogleClientID: clientID,
		Env:            env,
		BaseURL:        baseURL,
		TokenTTLHours:  ttl,
	}
}
