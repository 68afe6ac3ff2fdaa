package config

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"gopkg.in/yaml.v3"
)

type AppConfig struct {
	DatabaseConfig DatabaseConfig   `yaml:"databaseConfig"`
	RedisConfig    RedisConfig      `yaml:"redisConfig"`
	ServerAddr     string           `yaml:"serverAddr"`
	S3Config       S3Config         `yaml:"s3Config"`
	JWT            JWTConfig        `yaml:"jwt"`
	Admin          AdminConfig      `yaml:"admin"`
	TTL            TTL              `yaml:"TTL"`
	Signing        SigningConfig    `yaml:"signing"`
	Completion     CompletionConfig `yaml:"completion"`
	Mail           MailConfig       `yaml:"mail"`
	RabbitMQ       RabbitMQConfig   `yaml:"rabbitmq"`
	RateLimit      RateLimitConfig  `yaml:"rateLimit"`
	Logging        LoggingConfig    `yaml:"logging"`
}

// LoadConfig : читает yaml, подставляет ${VAR} из окружения, заполняет значения по умолчанию и валидирует
func LoadConfig(path string) (*AppConfig, error) {
	file, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("не удалось прочитать конфиг %s: %w", path, err)
	}

	return ParseConfig(file)
}

func ParseConfig(data []byte) (*AppConfig, error) {
	var cfg AppConfig
	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), &cfg); err != nil {
		return nil, fmt.Errorf("некорректный yaml: %w", err)
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (cfg *AppConfig) applyDefaults() {
	if cfg.ServerAddr == "" {
		cfg.ServerAddr = ":8080"
	}
	if cfg.JWT.AccessTokenTTL == "" {
		cfg.JWT.AccessTokenTTL = "15m"
	}
	if cfg.JWT.RefreshTokenTTL == "" {
		cfg.JWT.RefreshTokenTTL = "720h"
	}
	if cfg.Signing.TokenTTL == "" {
		cfg.Signing.TokenTTL = "720h"
	}
	if cfg.Signing.TokenLength == 0 {
		cfg.Signing.TokenLength = 64
	}
	if cfg.Completion.FontSize <= 0 {
		cfg.Completion.FontSize = 12
	}
	if cfg.Mail.Provider == "" {
		cfg.Mail.Provider = "log"
	}
	if cfg.RabbitMQ.Exchange == "" {
		cfg.RabbitMQ.Exchange = "esign.events"
	}
	if cfg.RateLimit.Requests == 0 {
		cfg.RateLimit.Requests = 60
	}
	if cfg.Logging.Env == "" {
		cfg.Logging.Env = "prod"
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
}

// Validate : все ошибки конфигурации возвращаются разом
func (cfg *AppConfig) Validate() error {
	var errs []error

	if strings.TrimSpace(cfg.DatabaseConfig.DSN) == "" {
		errs = append(errs, errors.New("databaseConfig.dsn обязателен"))
	}
	if strings.TrimSpace(cfg.JWT.SecretKey) == "" {
		errs = append(errs, errors.New("jwt.secret_key обязателен"))
	}
	if strings.TrimSpace(cfg.S3Config.Bucket) == "" {
		errs = append(errs, errors.New("s3Config.bucket обязателен"))
	}
	if strings.TrimSpace(cfg.Signing.PublicBaseURL) == "" {
		errs = append(errs, errors.New("signing.public_base_url обязателен"))
	}

	for name, value := range map[string]string{
		"jwt.access_token_ttl":  cfg.JWT.AccessTokenTTL,
		"jwt.refresh_token_ttl": cfg.JWT.RefreshTokenTTL,
		"signing.token_ttl":     cfg.Signing.TokenTTL,
	} {
		if d, err := time.ParseDuration(value); err != nil || d <= 0 {
			errs = append(errs, fmt.Errorf("%s: некорректная длительность %q", name, value))
		}
	}
	if cfg.RateLimit.Window != "" {
		if _, err := time.ParseDuration(cfg.RateLimit.Window); err != nil {
			errs = append(errs, fmt.Errorf("rateLimit.window: некорректная длительность %q", cfg.RateLimit.Window))
		}
	}

	switch cfg.Mail.Provider {
	case "log":
	case "mailgun":
		if cfg.Mail.Mailgun.Domain == "" || cfg.Mail.Mailgun.APIKey == "" {
			errs = append(errs, errors.New("mail.mailgun: domain и api_key обязательны"))
		}
	case "smtp":
		if cfg.Mail.SMTP.Addr == "" {
			errs = append(errs, errors.New("mail.smtp.addr обязателен"))
		}
	default:
		errs = append(errs, fmt.Errorf("mail.provider: неизвестный провайдер %q", cfg.Mail.Provider))
	}
	if cfg.Mail.Provider != "log" && cfg.Mail.FromAddress == "" {
		errs = append(errs, errors.New("mail.from_address обязателен"))
	}

	if cfg.Completion.ReferenceWidth < 0 {
		errs = append(errs, errors.New("completion.reference_width не может быть отрицательным"))
	}

	return errors.Join(errs...)
}

func SetupServer(serverAddress string) (*http.Server, *chi.Mux) {
	router := chi.NewRouter()
	server := &http.Server{
		Addr:              serverAddress,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return server, router
}

func SetupDatabase(cfg *DatabaseConfig) (*Database, error) {
	db, err := NewDatabaseConnection("postgres", cfg.DSN)
	if err != nil {
		return nil, err
	}

	if cfg.Migrate {
		if err := RunMigrations(cfg.DSN); err != nil {
			db.Close()
			return nil, err
		}
	}

	return db, nil
}

func SetupRedis(cfg *RedisConfig) (*RedisClient, error) {
	return NewRedisClient(cfg)
}
