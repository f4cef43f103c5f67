package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	Env      string `env:"ENV" envDefault:"development"`
	Port     string `env:"PORT" envDefault:"3001"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	DB    DBConfig
	JWT   JWTConfig
	Redis RedisConfig
	AI    AIConfig
	Mail  MailConfig
	Rate  RateConfig

	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:","`
	MaxBodyBytes       int64    `env:"MAX_BODY_BYTES" envDefault:"1048576"`
	RequestTimeoutSec  int      `env:"REQ_TIMEOUT_SEC" envDefault:"10"`
}

type DBConfig struct {
	Driver          string `env:"DB_DRIVER" envDefault:"mysql"`
	DSN             string `env:"DB_DSN"`
	Host            string `env:"DB_HOST" envDefault:"127.0.0.1"`
	Port            string `env:"DB_PORT" envDefault:"3306"`
	User            string `env:"DB_USER" envDefault:"root"`
	Pass            string `env:"DB_PASS"`
	Name            string `env:"DB_NAME" envDefault:"gripinvest"`
	Params          string `env:"DB_PARAMS" envDefault:"charset=utf8mb4&parseTime=True&loc=UTC"`
	TLS             string `env:"DB_TLS" envDefault:"false"`
	TLSCAPath       string `env:"DB_TLS_CA_PATH"`
	MaxOpenConns    int    `env:"DB_MAX_OPEN_CONNS" envDefault:"25"`
	MaxIdleConns    int    `env:"DB_MAX_IDLE_CONNS" envDefault:"25"`
	ConnMaxLifetime int    `env:"DB_CONN_MAX_LIFETIME" envDefault:"3600"`
	ConnectRetries  int    `env:"DB_CONNECT_RETRIES" envDefault:"5"`
}

type JWTConfig struct {
	Secret   string        `env:"JWT_SECRET,required,notEmpty"`
	Audience string        `env:"JWT_AUD"`
	Issuer   string        `env:"JWT_ISS"`
	TTL      time.Duration `env:"JWT_TTL" envDefault:"720h"`
}

type RedisConfig struct {
	Addr string `env:"REDIS_ADDR"`
	Pass string `env:"REDIS_PASS"`
	DB   int    `env:"REDIS_DB" envDefault:"0"`
}

type AIConfig struct {
	APIKey string `env:"GOOGLE_API_KEY"`
	Model  string `env:"GEMINI_MODEL" envDefault:"gemini-2.5-flash"`
}

type RateConfig struct {
	TrustedProxies []string      `env:"TRUSTED_PROXIES" envSeparator:","`
	Window         time.Duration `env:"RATE_WINDOW" envDefault:"1m"`
	APIMax         int           `env:"RATE_API_MAX" envDefault:"300"`
	AuthMax        int           `env:"RATE_AUTH_MAX" envDefault:"20"`
	OTPPerEmail    int           `env:"RATE_OTP_EMAIL_MAX" envDefault:"3"`
	OTPPerIP       int           `env:"RATE_OTP_IP_MAX" envDefault:"10"`
	OTPWindow      time.Duration `env:"RATE_OTP_WINDOW" envDefault:"15m"`
	LoginFailures  int           `env:"LOGIN_MAX_FAILURES" envDefault:"5"`
	LoginLockout   time.Duration `env:"LOGIN_LOCKOUT" envDefault:"15m"`
}

type MailConfig struct {
	Host   string `env:"MAIL_HOST"`
	Port   int    `env:"MAIL_PORT" envDefault:"587"`
	User   string `env:"MAIL_USER"`
	Pass   string `env:"MAIL_PASS"`
	Secure bool   `env:"MAIL_SECURE" envDefault:"false"`
	From   string `env:"MAIL_FROM" envDefault:"no-reply@gripinvest.com"`
}

// Load reads an optional .env file (never overriding variables already set)
// and parses the environment into a Config.
func Load() (*Config, error) {
	if envMap, err := godotenv.Read(); err == nil {
		for k, v := range envMap {
			if os.Getenv(k) == "" {
				os.Setenv(k, v)
			}
		}
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch strings.ToLower(c.DB.Driver) {
	case "mysql", "sqlite":
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DB.Driver)
	}
	if c.JWT.Secret == "supersecretjwtkey" {
		return fmt.Errorf("JWT_SECRET must not use the sample value")
	}
	return nil
}

func (c *Config) IsDevelopment() bool {
	return strings.ToLower(c.Env) == "development"
}

func (c *Config) Addr() string {
	return ":" + c.Port
}

func (c *Config) RequestTimeout() time.Duration {
	if c.RequestTimeoutSec <= 0 {
		return 10 * time.Second
	}
	return time.Duration(c.RequestTimeoutSec) * time.Second
}
