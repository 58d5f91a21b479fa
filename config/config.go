package config

import (
	"errors"
	"fmt"
	"log"
	"net/url"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config holds every setting the service reads from the environment.
type Config struct {
	Port string
	// BaseURL is the public address used in links sent by email
	BaseURL string
	// TrustProxy makes the rate limiter key clients by X-Forwarded-For
	TrustProxy    bool
	SessionSecure bool

	DBDriver   string
	DBPath     string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	SecretKey     string
	PostsPerPage  int
	UsersPerPage  int
	TokenTTL      time.Duration
	ResetTokenTTL time.Duration

	MailAPIKey    string
	MailSender    string
	MailWorkers   int
	MailQueueSize int

	RedisURL      string
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int

	LogFile   string
	LogLevel  string
	LogFormat string

	RateLimitRPS   float64
	RateLimitBurst int
}

// Load reads the .env file if there is one and builds a Config from the
// environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables.")
	}

	cfg := FromEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// FromEnv builds a Config from the current environment without touching .env.
func FromEnv() *Config {
	port := GetEnvAsString("PORT", "5000")
	return &Config{
		Port:          port,
		BaseURL:       strings.TrimRight(GetEnvAsString("BASE_URL", "http://localhost:"+port), "/"),
		TrustProxy:    GetEnvAsBool("TRUST_PROXY", false),
		SessionSecure: GetEnvAsBool("SESSION_SECURE", false),

		DBDriver:   GetEnvAsString("DB_DRIVER", DriverSQLite),
		DBPath:     GetEnvAsString("DB_PATH", "./bookstore.db"),
		DBHost:     GetEnvAsString("DB_HOST", "localhost"),
		DBPort:     GetEnvAsString("DB_PORT", "5432"),
		DBUser:     GetEnvAsString("DB_USER", "bookstore"),
		DBPassword: GetEnvAsString("DB_PASSWORD", ""),
		DBName:     GetEnvAsString("DB_NAME", "bookstore"),
		DBSSLMode:  GetEnvAsString("DB_SSLMODE", "disable"),

		SecretKey:     GetEnvAsString("SECRET_KEY", "you-will-never-guess"),
		PostsPerPage:  GetEnvAsInt("POSTS_PER_PAGE", 25),
		UsersPerPage:  GetEnvAsInt("USERS_PER_PAGE", 10),
		TokenTTL:      GetEnvAsDuration("TOKEN_TTL", time.Hour),
		ResetTokenTTL: GetEnvAsDuration("RESET_TOKEN_TTL", 10*time.Minute),

		MailAPIKey:    GetEnvAsString("MAIL_API_KEY", ""),
		MailSender:    GetEnvAsString("MAIL_SENDER", "no-reply@bookstore.local"),
		MailWorkers:   GetEnvAsInt("MAIL_WORKERS", 2),
		MailQueueSize: GetEnvAsInt("MAIL_QUEUE_SIZE", 100),

		RedisURL:      GetEnvAsString("REDIS_URL", ""),
		RedisHost:     GetEnvAsString("REDIS_HOST", ""),
		RedisPort:     GetEnvAsString("REDIS_PORT", "6379"),
		RedisPassword: GetEnvAsString("REDIS_PASSWORD", ""),
		RedisDB:       GetEnvAsInt("REDIS_DB", 0),

		LogFile:   GetEnvAsString("LOG_FILE", ""),
		LogLevel:  GetEnvAsString("LOG_LEVEL", "info"),
		LogFormat: GetEnvAsString("LOG_FORMAT", "json"),

		RateLimitRPS:   GetEnvAsFloat("RATE_LIMIT_RPS", 1),
		RateLimitBurst: GetEnvAsInt("RATE_LIMIT_BURST", 5),
	}
}

// Validate checks the settings that would otherwise fail late.
func (c *Config) Validate() error {
	switch c.DBDriver {
	case DriverSQLite, DriverPostgres:
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver)
	}
	if c.PostsPerPage <= 0 || c.UsersPerPage <= 0 {
		return errors.New("page sizes must be positive")
	}
	if c.SecretKey == "" {
		return errors.New("SECRET_KEY must not be empty")
	}
	if u, err := url.Parse(c.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("BASE_URL %q must be an absolute URL", c.BaseURL)
	}
	if c.MailWorkers <= 0 {
		return errors.New("MAIL_WORKERS must be positive")
	}
	return nil
}

// PostgresDSN builds the connection string for the postgres driver.
func (c *Config) PostgresDSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSSLMode)
}
