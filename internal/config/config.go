package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	WebConfig
	DataBaseConfig
	MailConfig
	QueueConfig
	CacheConfig
	LoggerConfig
}

type WebConfig struct {
	Addr             string        `envconfig:"APP_ADDR" default:":8080"`
	DispatchInterval time.Duration `envconfig:"APP_DISPATCH_INTERVAL" default:"0s"` // 0 disables the built-in periodic run
}

type DataBaseConfig struct {
	Host     string `envconfig:"DB_HOST" default:"localhost"`
	Port     string `envconfig:"DB_PORT" default:"5432"`
	UserName string `envconfig:"DB_USER" required:"true"`
	Password string `envconfig:"DB_PASSWORD"`
	DBName   string `envconfig:"DB_NAME" required:"true"`
	SSLMode  string `envconfig:"DB_SSLMODE" default:"disable"`
}

type MailConfig struct {
	Transport    string        `envconfig:"MAIL_TRANSPORT" default:"noop"` // smtp, resend or noop
	From         string        `envconfig:"MAIL_FROM" required:"true"`
	SMTPHost     string        `envconfig:"SMTP_HOST" default:"localhost"`
	SMTPPort     string        `envconfig:"SMTP_PORT" default:"587"`
	SMTPUser     string        `envconfig:"SMTP_USER"`
	SMTPPassword string        `envconfig:"SMTP_PASSWORD"`
	SMTPTimeout  time.Duration `envconfig:"SMTP_TIMEOUT" default:"30s"`
	ResendAPIKey string        `envconfig:"RESEND_API_KEY"`
}

type QueueConfig struct {
	AMQPURL   string `envconfig:"AMQP_URL"`
	QueueName string `envconfig:"AMQP_QUEUE" default:"mailing_dispatch"`
}

type CacheConfig struct {
	ListTTL time.Duration `envconfig:"CACHE_LIST_TTL" default:"15m"`
}

type LoggerConfig struct {
	LogDir       string `envconfig:"LOG_DIR" default:"./logs"`
	AuditFile    string `envconfig:"LOG_AUDIT_FILE" default:"mailing_send.log"`
	Level        string `envconfig:"LOG_LEVEL" default:"info"`
	AuditConsole bool   `envconfig:"LOG_AUDIT_CONSOLE" default:"false"`
}

// Load reads an optional .env file and then the process environment.
func Load() (*Config, error) {
	// a missing .env is fine, variables may come from the environment
	_ = godotenv.Load()

	cfg := &Config{}
	if err := envconfig.Process("", cfg); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadDataBase reads only the database settings, for tools that do not send mail.
func LoadDataBase() (DataBaseConfig, error) {
	_ = godotenv.Load()

	var cfg DataBaseConfig
	if err := envconfig.Process("", &cfg); err != nil {
		return cfg, fmt.Errorf("load database config: %w", err)
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.MailConfig.Transport {
	case "smtp", "noop":
	case "resend":
		if c.MailConfig.ResendAPIKey == "" {
			return fmt.Errorf("RESEND_API_KEY is required for MAIL_TRANSPORT=resend")
		}
	default:
		return fmt.Errorf("unknown MAIL_TRANSPORT %q", c.MailConfig.Transport)
	}
	if c.WebConfig.DispatchInterval < 0 {
		return fmt.Errorf("APP_DISPATCH_INTERVAL must not be negative")
	}
	return nil
}

// DSN builds the lib/pq connection string.
func (c DataBaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.UserName, c.Password, c.Host, c.Port, c.DBName, c.SSLMode,
	)
}
