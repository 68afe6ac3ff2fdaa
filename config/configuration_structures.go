package config

import "time"

type DatabaseConfig struct {
	DSN     string `yaml:"dsn"`
	Migrate bool   `yaml:"migrate"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type S3Config struct {
	Bucket        string `yaml:"bucket"`
	Region        string `yaml:"region"`
	Endpoint      string `yaml:"endpoint"`
	Local         bool   `yaml:"local"`
	AccessKey     string `yaml:"access_key"`
	SecretKey     string `yaml:"secret_key"`
	PublicBaseURL string `yaml:"public_base_url"`
}

type JWTConfig struct {
	SecretKey       string `yaml:"secret_key"`
	AccessTokenTTL  string `yaml:"access_token_ttl"`
	RefreshTokenTTL string `yaml:"refresh_token_ttl"`
}

// AdminConfig : если RegistrationToken задан, регистрация владельцев возможна только с ним
type AdminConfig struct {
	RegistrationToken string `yaml:"registration_token"`
}

// TTL : время жизни кэша документов и pre-signed ссылок, в секундах
type TTL struct {
	S3AndRedis int `yaml:"s3AndRedis"`
}

func (t TTL) Duration() time.Duration {
	if t.S3AndRedis <= 0 {
		return 15 * time.Minute
	}
	return time.Duration(t.S3AndRedis) * time.Second
}

// SigningConfig : параметры ссылок для подписи
type SigningConfig struct {
	TokenTTL      string `yaml:"token_ttl"`
	TokenLength   int    `yaml:"token_length"`
	PublicBaseURL string `yaml:"public_base_url"`
}

func (c SigningConfig) TTL() time.Duration {
	d, err := time.ParseDuration(c.TokenTTL)
	if err != nil || d <= 0 {
		return 30 * 24 * time.Hour
	}
	return d
}

// CompletionConfig : параметры "прожига" значений полей в PDF
type CompletionConfig struct {
	StrictPages    bool    `yaml:"strict_pages"`
	ReferenceWidth float64 `yaml:"reference_width"`
	FontSize       float64 `yaml:"font_size"`
}

type MailgunConfig struct {
	Domain string `yaml:"domain"`
	APIKey string `yaml:"api_key"`
}

type SMTPConfig struct {
	Addr     string `yaml:"addr"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// MailConfig : provider одно из mailgun, smtp, log
type MailConfig struct {
	Provider    string        `yaml:"provider"`
	FromAddress string        `yaml:"from_address"`
	Timeout     string        `yaml:"timeout"`
	Mailgun     MailgunConfig `yaml:"mailgun"`
	SMTP        SMTPConfig    `yaml:"smtp"`
}

func (c MailConfig) TimeoutDuration() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil || d <= 0 {
		return 10 * time.Second
	}
	return d
}

// RabbitMQConfig : пустой URL отключает публикацию событий
type RabbitMQConfig struct {
	URL      string `yaml:"url"`
	Exchange string `yaml:"exchange"`
}

// RateLimitConfig : TrustProxy включает разбор X-Forwarded-For/X-Real-IP, только за доверенным прокси
type RateLimitConfig struct {
	Requests   int    `yaml:"requests"`
	Window     string `yaml:"window"`
	TrustProxy bool   `yaml:"trust_proxy"`
}

func (c RateLimitConfig) WindowDuration() time.Duration {
	d, err := time.ParseDuration(c.Window)
	if err != nil || d <= 0 {
		return time.Minute
	}
	return d
}

type LoggingConfig struct {
	Env   string `yaml:"env"`
	Level string `yaml:"level"`
}
