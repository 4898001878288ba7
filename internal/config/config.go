package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"room-client/pkg/logger"
)

type Config struct {
	Server   ServerConfig
	Status   StatusConfig
	Database DatabaseConfig
	Auth     AuthConfig
	Log      LogConfig
	Chat     ChatConfig
}

// ServerConfig locates the room server.
type ServerConfig struct {
	APIURL      string
	SocketURL   string
	HTTPTimeout time.Duration
}

type StatusConfig struct {
	Addr string
}

// DatabaseConfig enables the transcript archive when URL is set.
type DatabaseConfig struct {
	URL string
}

type AuthConfig struct {
	Token     string
	JWTSecret []byte
}

type LogConfig struct {
	Level  string
	Format string
}

type ChatConfig struct {
	HistorySize int
}

// Load reads the configuration from the environment, after loading a .env
// file when one exists.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		logger.Debug("No .env file loaded: %v", err)
	}

	timeout, err := getDurationOrDefault("HTTP_TIMEOUT", "15s")
	if err != nil {
		return nil, err
	}
	history, err := getIntOrDefault("CHAT_HISTORY_SIZE", 50)
	if err != nil {
		return nil, err
	}
	token, err := getEnvOrError("AUTH_TOKEN")
	if err != nil {
		return nil, err
	}

	return &Config{
		Server: ServerConfig{
			APIURL:      getEnvOrDefault("API_URL", "http://localhost:6042"),
			SocketURL:   getEnvOrDefault("SOCKET_URL", "ws://localhost:6042"),
			HTTPTimeout: timeout,
		},
		Status: StatusConfig{
			Addr: getEnvOrDefault("STATUS_ADDR", "127.0.0.1:8090"),
		},
		Database: DatabaseConfig{
			URL: os.Getenv("DATABASE_URL"),
		},
		Auth: AuthConfig{
			Token:     token,
			JWTSecret: []byte(os.Getenv("JWT_SECRET")),
		},
		Log: LogConfig{
			Level:  getEnvOrDefault("LOG_LEVEL", "info"),
			Format: getEnvOrDefault("LOG_FORMAT", "console"),
		},
		Chat: ChatConfig{
			HistorySize: history,
		},
	}, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvOrError(key string) (string, error) {
	value := os.Getenv(key)
	if value == "" {
		return "", fmt.Errorf("%s environment variable is required", key)
	}
	return value, nil
}

func getDurationOrDefault(key, defaultValue string) (time.Duration, error) {
	value := getEnvOrDefault(key, defaultValue)
	duration, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid duration for %s: %w", key, err)
	}
	return duration, nil
}

func getIntOrDefault(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	intValue, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid integer for %s: %w", key, err)
	}
	return intValue, nil
}
