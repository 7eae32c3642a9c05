package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	BackendDynamoDB = "dynamodb"
	BackendPostgres = "postgres"
	BackendMemory   = "memory"
)

// Credential sources for the DynamoDB client, tried in the configured order.
const (
	CredentialSourceEnv         = "env"
	CredentialSourceProfile     = "profile"
	CredentialSourceWebIdentity = "web_identity"
	CredentialSourceEC2Role     = "ec2_role"
)

var defaultCredentialSources = []string{
	CredentialSourceEnv,
	CredentialSourceProfile,
	CredentialSourceWebIdentity,
	CredentialSourceEC2Role,
}

type Config struct {
	AppPort  string
	Version  string
	LogLevel string
	LogJSON  bool

	StoreBackend string
	DatabaseURL  string
	Dynamo       DynamoConfig

	Auth AuthConfig

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	APIRateLimit  int
	APIRateWindow time.Duration

	// Page sizes for transaction listings
	DefaultListLimit int
	MaxListLimit     int

	AllowedOrigins []string
}

type DynamoConfig struct {
	Region   string
	Table    string
	Endpoint string // dynamodb-local or other compatible endpoint

	CredentialSources []string

	AccessKeyID     string
	SecretAccessKey string
	SessionToken    string

	Profile string

	RoleARN              string
	WebIdentityTokenFile string
	RoleSessionName      string
}

type AuthConfig struct {
	// Header set by the authenticating proxy in front of the service
	TrustedHeader string
	CookieNames   []string
}

// Load reads the configuration from the environment (and .env when present).
// Call Validate before using it.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		AppPort:  getEnv("APP_PORT", "8080"),
		Version:  getEnv("APP_VERSION", "dev"),
		LogLevel: getEnv("LOG_LEVEL", "info"),
		LogJSON:  getEnv("LOG_JSON", "false") == "true",

		StoreBackend: strings.ToLower(getEnv("STORE_BACKEND", BackendDynamoDB)),
		DatabaseURL:  os.Getenv("DATABASE_URL"),
		Dynamo: DynamoConfig{
			Region:               firstEnv("FINANCE_AWS_REGION", "AWS_REGION"),
			Table:                os.Getenv("DYNAMODB_TABLE"),
			Endpoint:             os.Getenv("DYNAMODB_ENDPOINT"),
			CredentialSources:    getEnvList("AWS_CREDENTIAL_SOURCES", defaultCredentialSources),
			AccessKeyID:          os.Getenv("AWS_ACCESS_KEY_ID"),
			SecretAccessKey:      os.Getenv("AWS_SECRET_ACCESS_KEY"),
			SessionToken:         os.Getenv("AWS_SESSION_TOKEN"),
			Profile:              getEnv("AWS_PROFILE", "default"),
			RoleARN:              os.Getenv("AWS_ROLE_ARN"),
			WebIdentityTokenFile: os.Getenv("AWS_WEB_IDENTITY_TOKEN_FILE"),
			RoleSessionName:      getEnv("AWS_ROLE_SESSION_NAME", "finance-webapp"),
		},

		Auth: AuthConfig{
			TrustedHeader: getEnv("AUTH_TRUSTED_HEADER", "X-Amzn-Oidc-Data"),
			CookieNames:   getEnvList("AUTH_COOKIE_NAMES", []string{"session-token", "__Secure-session-token"}),
		},

		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		APIRateLimit:  getEnvInt("API_RATE_LIMIT", 120),
		APIRateWindow: time.Duration(getEnvInt("API_RATE_WINDOW_SECONDS", 60)) * time.Second,

		DefaultListLimit: getEnvInt("LIST_DEFAULT_LIMIT", 50),
		MaxListLimit:     getEnvInt("LIST_MAX_LIMIT", 200),

		AllowedOrigins: getEnvList("ALLOWED_ORIGINS", nil),
	}
}

// Validate checks the settings required by the selected backend.
func (c *Config) Validate() error {
	var problems []string

	if port, err := strconv.Atoi(c.AppPort); err != nil || port < 1 || port > 65535 {
		problems = append(problems, fmt.Sprintf("invalid APP_PORT %q", c.AppPort))
	}

	switch c.StoreBackend {
	case BackendDynamoDB:
		if c.Dynamo.Region == "" {
			problems = append(problems, "FINANCE_AWS_REGION is not set")
		}
		if c.Dynamo.Table == "" {
			problems = append(problems, "DYNAMODB_TABLE is not set")
		}
		for _, src := range c.Dynamo.CredentialSources {
			switch src {
			case CredentialSourceEnv, CredentialSourceProfile, CredentialSourceWebIdentity, CredentialSourceEC2Role:
			default:
				problems = append(problems, fmt.Sprintf("unknown credential source %q", src))
			}
		}
		if len(c.Dynamo.CredentialSources) == 0 {
			problems = append(problems, "AWS_CREDENTIAL_SOURCES is empty")
		}
	case BackendPostgres:
		if c.DatabaseURL == "" {
			problems = append(problems, "DATABASE_URL is not set")
		}
	case BackendMemory:
	default:
		problems = append(problems, fmt.Sprintf("unknown STORE_BACKEND %q (want dynamodb, postgres or memory)", c.StoreBackend))
	}

	if c.DefaultListLimit < 1 {
		problems = append(problems, "LIST_DEFAULT_LIMIT must be positive")
	}
	if c.MaxListLimit < c.DefaultListLimit {
		problems = append(problems, "LIST_MAX_LIMIT must not be lower than LIST_DEFAULT_LIMIT")
	}
	if c.APIRateLimit < 1 || c.APIRateWindow <= 0 {
		problems = append(problems, "API rate limit and window must be positive")
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func firstEnv(keys ...string) string {
	for _, k := range keys {
		if v := os.Getenv(k); v != "" {
			return v
		}
	}
	return ""
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

// getEnvList splits a comma separated value, dropping empty items
func getEnvList(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	var out []string
	for _, item := range strings.Split(v, ",") {
		item = strings.TrimSpace(item)
		if item != "" {
			out = append(out, item)
		}
	}
	return out
}
