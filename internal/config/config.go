package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata" // UPDATE_TIMEZONE must resolve in minimal images

	"github.com/go-waba-webhooks/internal/pkg/validate"
)

// Event sinks account updates can be forwarded to.
const (
	SinkNone = "none"
	SinkSNS  = "sns"
	SinkAMQP = "amqp"
)

// Config holds all runtime configuration loaded from environment variables.
type Config struct {
	AppPort  string `validate:"required,numeric"`
	AppEnv   string
	LogLevel string `validate:"oneof=debug info warn error"`

	// UpdateTimezone is the IANA location update timestamps are expressed in.
	UpdateTimezone string `validate:"required,timezone"`

	WebhookVerifyToken string `validate:"required"`
	AppSecret          string // empty disables signature checks
	PhoneNumberID      string `validate:"required"`
	WebhookRateLimit   int    `validate:"gt=0"`
	WebhookRateBurst   int    `validate:"gt=0"`
	TrustProxy         bool   // take client IPs from X-Forwarded-For / X-Real-IP

	EventSink string `validate:"oneof=none sns amqp"`

	AWSRegion      string
	AWSEndpointURL string // empty in prod, set to LocalStack URL in dev
	AWSAccessKeyID string
	AWSSecretKey   string
	SNSTopicARN    string `validate:"required_if=EventSink sns"`
	SNSAlertPhone  string // ban alerts are sent by SMS when set

	AMQPURL      string `validate:"required_if=EventSink amqp"`
	AMQPExchange string `validate:"required_if=EventSink amqp"`

	AllowedOrigins []string // CORS allowed origins
}

// Load reads all configuration from environment variables.
func Load() *Config {
	return &Config{
		AppPort:            getEnv("APP_PORT", "3000"),
		AppEnv:             getEnv("APP_ENV", "development"),
		LogLevel:           strings.ToLower(getEnv("LOG_LEVEL", "info")),
		UpdateTimezone:     getEnv("UPDATE_TIMEZONE", "UTC"),
		WebhookVerifyToken: getEnv("WEBHOOK_VERIFY_TOKEN", ""),
		AppSecret:          getEnv("APP_SECRET", ""),
		PhoneNumberID:      getEnv("PHONE_NUMBER_ID", ""),
		WebhookRateLimit:   getEnvInt("WEBHOOK_RATE_LIMIT", 50),
		WebhookRateBurst:   getEnvInt("WEBHOOK_RATE_BURST", 100),
		TrustProxy:         getEnvBool("TRUST_PROXY", false),
		EventSink:          strings.ToLower(getEnv("EVENT_SINK", SinkNone)),
		AWSRegion:          getEnv("AWS_REGION", "us-east-1"),
		AWSEndpointURL:     getEnv("AWS_ENDPOINT_URL", ""),
		AWSAccessKeyID:     getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretKey:       getEnv("AWS_SECRET_ACCESS_KEY", ""),
		SNSTopicARN:        getEnv("SNS_TOPIC_ARN", ""),
		SNSAlertPhone:      getEnv("SNS_ALERT_PHONE", ""),
		AMQPURL:            getEnv("AMQP_URL", ""),
		AMQPExchange:       getEnv("AMQP_EXCHANGE", "waba.events"),
		AllowedOrigins:     strings.Split(getEnv("ALLOWED_ORIGINS", "*"), ","),
	}
}

// Validate checks the struct tags.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// Location resolves UpdateTimezone.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.UpdateTimezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", c.UpdateTimezone, err)
	}
	return loc, nil
}

// SlogLevel maps LogLevel to a slog level, defaulting to info.
func (c *Config) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}
