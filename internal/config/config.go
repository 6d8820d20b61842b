package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config aggregates runtime configuration for the workflow engine.
type Config struct {
	App          AppConfig
	Workflow     WorkflowConfig
	Catalog      CatalogConfig
	Postgres     PostgresConfig
	Redis        RedisConfig
	Logger       LoggerConfig
	Auth         AuthConfig
	Notification NotificationConfig
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name                  string
	Env                   string
	Host                  string
	Port                  string
	Version               string
	RequestTimeoutSeconds int
}

// EscalationPolicy controls how often a breached ticket is escalated.
type EscalationPolicy string

const (
	// EscalateRecurring re-escalates a breached ticket on every scan.
	EscalateRecurring EscalationPolicy = "recurring"
	// EscalateOnce escalates a breached ticket a single time.
	EscalateOnce EscalationPolicy = "once"
)

// WorkflowConfig holds ticket lifecycle tunables.
type WorkflowConfig struct {
	MaxTicketsPerUser int
	AutoCloseDays     int
	SLAScanSchedule   string
	AutoCloseSchedule string
	Escalation        EscalationPolicy
}

// CatalogConfig locates the template catalog and its eligible roles.
type CatalogConfig struct {
	TemplateFile   string
	DirectoryFile  string
	SupportRoleIDs []string
	AdminRoleIDs   []string
}

// PostgresConfig holds archive DB connection values.
type PostgresConfig struct {
	DSN            string
	MaxConns       int32
	MinConns       int32
	RunMigrations  bool
	ConnMaxIdleSec int32
	ConnMaxLifeSec int32
}

// RedisConfig holds Redis connection values.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level string
}

// AuthConfig defines authentication parameters.
type AuthConfig struct {
	JWTSecret             string
	AccessTokenTTLMinutes int
}

// NotificationConfig holds collaborator webhook endpoints.
type NotificationConfig struct {
	WebhookURL           string
	TranscriptWebhookURL string
}

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	escalation := EscalationPolicy(getEnv("SLA_ESCALATION_POLICY", string(EscalateRecurring)))
	if escalation != EscalateRecurring && escalation != EscalateOnce {
		return nil, fmt.Errorf("invalid SLA_ESCALATION_POLICY: %q", escalation)
	}

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "ticket-workflow"),
			Env:                   getEnv("APP_ENV", "development"),
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  getEnv("APP_PORT", "8080"),
			Version:               getEnv("APP_VERSION", "dev"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
		},
		Workflow: WorkflowConfig{
			MaxTicketsPerUser: getEnvAsInt("MAX_TICKETS_PER_USER", 5),
			AutoCloseDays:     getEnvAsInt("AUTO_CLOSE_DAYS", 7),
			SLAScanSchedule:   getEnv("SLA_SCAN_SCHEDULE", "@every 30m"),
			AutoCloseSchedule: getEnv("AUTO_CLOSE_SCHEDULE", "@every 24h"),
			Escalation:        escalation,
		},
		Catalog: CatalogConfig{
			TemplateFile:   os.Getenv("TEMPLATE_CATALOG_FILE"),
			DirectoryFile:  os.Getenv("MEMBER_DIRECTORY_FILE"),
			SupportRoleIDs: getEnvAsList("SUPPORT_ROLE_IDS"),
			AdminRoleIDs:   getEnvAsList("ADMIN_ROLE_IDS"),
		},
		Postgres: PostgresConfig{
			DSN:            os.Getenv("POSTGRES_DSN"),
			MaxConns:       int32(getEnvAsInt("POSTGRES_MAX_CONNS", 10)),
			MinConns:       int32(getEnvAsInt("POSTGRES_MIN_CONNS", 2)),
			RunMigrations:  getEnvAsBool("POSTGRES_RUN_MIGRATIONS", true),
			ConnMaxIdleSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_IDLE_SECONDS", 30)),
			ConnMaxLifeSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_LIFE_SECONDS", 300)),
		},
		Redis: RedisConfig{
			Addr:     os.Getenv("REDIS_ADDR"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       redisDB,
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Auth: AuthConfig{
			JWTSecret:             getEnv("AUTH_JWT_SECRET", "dev-secret"),
			AccessTokenTTLMinutes: getEnvAsInt("AUTH_ACCESS_TOKEN_TTL_MINUTES", 60),
		},
		Notification: NotificationConfig{
			WebhookURL:           os.Getenv("NOTIFY_WEBHOOK_URL"),
			TranscriptWebhookURL: os.Getenv("NOTIFY_TRANSCRIPT_WEBHOOK_URL"),
		},
	}

	if cfg.Workflow.MaxTicketsPerUser <= 0 {
		return nil, fmt.Errorf("MAX_TICKETS_PER_USER must be positive")
	}
	if cfg.Workflow.AutoCloseDays <= 0 {
		return nil, fmt.Errorf("AUTO_CLOSE_DAYS must be positive")
	}

	return cfg, nil
}

// Addr returns the HTTP bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

// RequestTimeout returns the configured request timeout duration.
func (a AppConfig) RequestTimeout() time.Duration {
	if a.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(a.RequestTimeoutSeconds) * time.Second
}

// AutoCloseCutoff returns the age past which resolved tickets are closed.
func (w WorkflowConfig) AutoCloseCutoff() time.Duration {
	return time.Duration(w.AutoCloseDays) * 24 * time.Hour
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsBool(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsList(key string) []string {
	val := os.Getenv(key)
	if val == "" {
		return nil
	}
	parts := strings.Split(val, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
