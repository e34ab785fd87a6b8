package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Env        string
	Server     ServerConfig
	Database   DatabaseConfig
	Auth       AuthConfig
	Projection ProjectionConfig
	AMQP       AMQPConfig
	Admin      AdminConfig
}

type ServerConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	Name            string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxIdleTime time.Duration
	ConnMaxLifetime time.Duration
	ConnectRetries  int
}

type AuthConfig struct {
	JWTSecret          string
	JWTIssuer          string
	AccessTokenTTL     time.Duration
	RefreshTokenTTL    time.Duration
	RateLimitPerMinute int
	RateLimitBurst     int
}

// ProjectionConfig задает горизонт прогноза погашения по умолчанию и его предел.
type ProjectionConfig struct {
	DefaultDays int
	MaxDays     int
}

// AMQPConfig описывает подключение к RabbitMQ. Пустой URL отключает брокер.
type AMQPConfig struct {
	URL            string
	Exchange       string
	Queue          string
	WorkerPrefetch int
}

type AdminConfig struct {
	Emails []string
}

// Load загружает конфигурацию приложения из окружения и .env.
func Load() (Config, error) {
	cfg := Config{}

	if err := loadEnv(); err != nil {
		return cfg, err
	}

	cfg.Env = getEnv("APP_ENV", "local")

	serverPort, err := parseIntEnv("SERVER_PORT", 8080)
	if err != nil {
		return cfg, err
	}

	readTimeout, err := parseDurationEnv("SERVER_READ_TIMEOUT", 5*time.Second)
	if err != nil {
		return cfg, err
	}

	writeTimeout, err := parseDurationEnv("SERVER_WRITE_TIMEOUT", 10*time.Second)
	if err != nil {
		return cfg, err
	}

	idleTimeout, err := parseDurationEnv("SERVER_IDLE_TIMEOUT", 60*time.Second)
	if err != nil {
		return cfg, err
	}

	cfg.Server = ServerConfig{
		Host:         getEnv("SERVER_HOST", "0.0.0.0"),
		Port:         serverPort,
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
		IdleTimeout:  idleTimeout,
	}

	cfg.Database, err = loadDatabase()
	if err != nil {
		return cfg, err
	}

	accessTTL, err := parseDurationEnv("JWT_ACCESS_TTL", 15*time.Minute)
	if err != nil {
		return cfg, err
	}

	refreshTTL, err := parseDurationEnv("JWT_REFRESH_TTL", 7*24*time.Hour)
	if err != nil {
		return cfg, err
	}

	rateLimitPerMinute, err := parseIntEnv("AUTH_RATE_LIMIT_PER_MINUTE", 60)
	if err != nil {
		return cfg, err
	}

	rateLimitBurst, err := parseIntEnv("AUTH_RATE_LIMIT_BURST", 10)
	if err != nil {
		return cfg, err
	}

	cfg.Auth = AuthConfig{
		JWTSecret:          getEnv("JWT_SECRET", ""),
		JWTIssuer:          getEnv("JWT_ISSUER", "debt-tracker"),
		AccessTokenTTL:     accessTTL,
		RefreshTokenTTL:    refreshTTL,
		RateLimitPerMinute: rateLimitPerMinute,
		RateLimitBurst:     rateLimitBurst,
	}

	defaultDays, err := parseIntEnv("PROJECTION_DEFAULT_DAYS", 30)
	if err != nil {
		return cfg, err
	}

	maxDays, err := parseIntEnv("PROJECTION_MAX_DAYS", 3650)
	if err != nil {
		return cfg, err
	}

	cfg.Projection = ProjectionConfig{
		DefaultDays: defaultDays,
		MaxDays:     maxDays,
	}

	cfg.AMQP, err = LoadAMQP()
	if err != nil {
		return cfg, err
	}

	cfg.Admin = AdminConfig{
		Emails: parseCSVEnv("ADMIN_EMAILS"),
	}

	if err := cfg.validate(); err != nil {
		return cfg, err
	}

	return cfg, nil
}

// LoadDatabase загружает только настройки БД. Используется утилитой миграций.
func LoadDatabase() (DatabaseConfig, error) {
	if err := loadEnv(); err != nil {
		return DatabaseConfig{}, err
	}

	cfg, err := loadDatabase()
	if err != nil {
		return cfg, err
	}

	if err := cfg.validate(); err != nil {
		return cfg, err
	}

	return cfg, nil
}

// LoadWorker загружает настройки для воркера достижений: БД и брокер.
func LoadWorker() (DatabaseConfig, AMQPConfig, error) {
	dbCfg, err := LoadDatabase()
	if err != nil {
		return dbCfg, AMQPConfig{}, err
	}

	amqpCfg, err := LoadAMQP()
	if err != nil {
		return dbCfg, amqpCfg, err
	}

	if amqpCfg.URL == "" {
		return dbCfg, amqpCfg, fmt.Errorf("AMQP_URL is required")
	}

	return dbCfg, amqpCfg, nil
}

// LoadAMQP читает настройки брокера сообщений.
func LoadAMQP() (AMQPConfig, error) {
	prefetch, err := parseIntEnv("AMQP_WORKER_PREFETCH", 10)
	if err != nil {
		return AMQPConfig{}, err
	}

	return AMQPConfig{
		URL:            getEnv("AMQP_URL", ""),
		Exchange:       getEnv("AMQP_EXCHANGE", "debt-tracker"),
		Queue:          getEnv("AMQP_QUEUE", "payments.recorded"),
		WorkerPrefetch: prefetch,
	}, nil
}

func loadDatabase() (DatabaseConfig, error) {
	dbPort, err := parseIntEnv("DB_PORT", 5432)
	if err != nil {
		return DatabaseConfig{}, err
	}

	maxOpenConns, err := parseIntEnv("DB_MAX_OPEN_CONNS", 10)
	if err != nil {
		return DatabaseConfig{}, err
	}

	maxIdleConns, err := parseIntEnv("DB_MAX_IDLE_CONNS", 5)
	if err != nil {
		return DatabaseConfig{}, err
	}

	connMaxIdleTime, err := parseDurationEnv("DB_CONN_MAX_IDLE_TIME", 5*time.Minute)
	if err != nil {
		return DatabaseConfig{}, err
	}

	connMaxLifetime, err := parseDurationEnv("DB_CONN_MAX_LIFETIME", 30*time.Minute)
	if err != nil {
		return DatabaseConfig{}, err
	}

	retries, err := parseIntEnv("DB_CONNECT_RETRIES", 5)
	if err != nil {
		return DatabaseConfig{}, err
	}

	return DatabaseConfig{
		Host:            getEnv("DB_HOST", "localhost"),
		Port:            dbPort,
		User:            getEnv("DB_USER", "debts"),
		Password:        getEnv("DB_PASSWORD", "debts"),
		Name:            getEnv("DB_NAME", "debt_tracker"),
		SSLMode:         getEnv("DB_SSLMODE", "disable"),
		MaxOpenConns:    maxOpenConns,
		MaxIdleConns:    maxIdleConns,
		ConnMaxIdleTime: connMaxIdleTime,
		ConnMaxLifetime: connMaxLifetime,
		ConnectRetries:  retries,
	}, nil
}

// DSN возвращает строку подключения к базе данных.
func (c DatabaseConfig) DSN() string {
	user := url.UserPassword(c.User, c.Password)
	dsn := url.URL{
		Scheme: "postgres",
		User:   user,
		Host:   fmt.Sprintf("%s:%d", c.Host, c.Port),
		Path:   c.Name,
	}

	query := url.Values{}
	query.Set("sslmode", c.SSLMode)
	return dsn.String() + "?" + query.Encode()
}

func (c Config) validate() error {
	if c.Server.Port <= 0 {
		return fmt.Errorf("SERVER_PORT must be greater than 0")
	}

	if err := c.Database.validate(); err != nil {
		return err
	}

	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}

	if c.Auth.AccessTokenTTL <= 0 {
		return fmt.Errorf("JWT_ACCESS_TTL must be greater than 0")
	}

	if c.Auth.RefreshTokenTTL <= 0 {
		return fmt.Errorf("JWT_REFRESH_TTL must be greater than 0")
	}

	if c.Auth.RateLimitPerMinute <= 0 {
		return fmt.Errorf("AUTH_RATE_LIMIT_PER_MINUTE must be greater than 0")
	}

	if c.Auth.RateLimitBurst <= 0 {
		return fmt.Errorf("AUTH_RATE_LIMIT_BURST must be greater than 0")
	}

	if c.Projection.DefaultDays > c.Projection.MaxDays {
		return fmt.Errorf("PROJECTION_DEFAULT_DAYS cannot exceed PROJECTION_MAX_DAYS")
	}

	return nil
}

func (c DatabaseConfig) validate() error {
	if c.Host == "" {
		return fmt.Errorf("DB_HOST is required")
	}

	if c.User == "" {
		return fmt.Errorf("DB_USER is required")
	}

	if c.Name == "" {
		return fmt.Errorf("DB_NAME is required")
	}

	if c.MaxIdleConns > c.MaxOpenConns {
		return fmt.Errorf("DB_MAX_IDLE_CONNS cannot exceed DB_MAX_OPEN_CONNS")
	}

	return nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}

	return fallback
}

func parseIntEnv(key string, fallback int) (int, error) {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback, nil
	}

	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", key, err)
	}

	if parsed <= 0 {
		return 0, fmt.Errorf("%s must be greater than 0", key)
	}

	return parsed, nil
}

func parseDurationEnv(key string, fallback time.Duration) (time.Duration, error) {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback, nil
	}

	parsed, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("%s must be a duration: %w", key, err)
	}

	if parsed <= 0 {
		return 0, fmt.Errorf("%s must be greater than 0", key)
	}

	return parsed, nil
}

func parseCSVEnv(key string) []string {
	value, ok := os.LookupEnv(key)
	if !ok {
		return nil
	}

	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.ToLower(strings.TrimSpace(part))
		if trimmed == "" {
			continue
		}
		out = append(out, trimmed)
	}
	return out
}

var envCandidates = []string{".env", "../.env"}

// loadEnv подгружает ENV_FILE, иначе первый найденный .env в текущем или родительском каталоге.
func loadEnv() error {
	if envFile := os.Getenv("ENV_FILE"); envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return fmt.Errorf("load env file %s: %w", envFile, err)
		}
		return nil
	}

	for _, candidate := range envCandidates {
		if _, err := os.Stat(candidate); err != nil {
			continue
		}
		if err := godotenv.Load(candidate); err != nil {
			return fmt.Errorf("load %s: %w", candidate, err)
		}
		return nil
	}

	return nil
}
