package util

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	TokenKindJWT    = "jwt"
	TokenKindPaseto = "paseto"
)

type Config struct {
	Port            string        `mapstructure:"PORT" validate:"required,number"`
	TokenSecret     string        `mapstructure:"TOKEN_SECRET" validate:"required,min=32"`
	TokenKind       string        `mapstructure:"TOKEN_KIND" validate:"oneof=jwt paseto"`
	AllowedOrigins  []string      `mapstructure:"ALLOWED_ORIGINS" validate:"dive,required"`
	RedisAddress    string        `mapstructure:"REDIS_ADDR" validate:"omitempty,hostname_port"`
	RedisPassword   string        `mapstructure:"REDIS_PW"`
	LogLevel        string        `mapstructure:"LOG_LEVEL" validate:"oneof=debug info warn error"`
	LogPretty       bool          `mapstructure:"LOG_PRETTY"`
	MonitorInterval time.Duration `mapstructure:"MONITOR_INTERVAL" validate:"gt=0"`
	MaxMessageSize  int64         `mapstructure:"MAX_MESSAGE_SIZE" validate:"gte=128"`
	OutboundBuffer  int           `mapstructure:"OUTBOUND_BUFFER" validate:"gte=1"`
}

const (
	defaultMonitorInterval = 30 * time.Second
	defaultMaxMessageSize  = 1024
	defaultOutboundBuffer  = 64
)

// LoadConfig reads a .env file when present, then the environment. Values that cannot be
// parsed are left at their zero value so validation reports them.
func LoadConfig() (*Config, error) {
	godotenv.Load()

	config := &Config{
		Port:            os.Getenv("PORT"),
		TokenSecret:     os.Getenv("TOKEN_SECRET"),
		TokenKind:       getEnv("TOKEN_KIND", TokenKindJWT),
		AllowedOrigins:  splitList(os.Getenv("ALLOWED_ORIGINS")),
		RedisAddress:    os.Getenv("REDIS_ADDR"),
		RedisPassword:   os.Getenv("REDIS_PW"),
		LogLevel:        strings.ToLower(getEnv("LOG_LEVEL", "info")),
		LogPretty:       parseBool(os.Getenv("LOG_PRETTY")),
		MonitorInterval: parseDuration(os.Getenv("MONITOR_INTERVAL"), defaultMonitorInterval),
		MaxMessageSize:  parseInt(os.Getenv("MAX_MESSAGE_SIZE"), defaultMaxMessageSize),
		OutboundBuffer:  int(parseInt(os.Getenv("OUTBOUND_BUFFER"), defaultOutboundBuffer)),
	}

	if err := Validate.Struct(config); err != nil {
		return nil, err
	}

	return config, nil
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func parseBool(raw string) bool {
	b, _ := strconv.ParseBool(strings.TrimSpace(raw))
	return b
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw = strings.TrimSpace(raw); raw == "" {
		return fallback
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0
	}
	return d
}

func parseInt(raw string, fallback int64) int64 {
	if raw = strings.TrimSpace(raw); raw == "" {
		return fallback
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0
	}
	return n
}
