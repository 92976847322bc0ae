package configs

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/robfig/cron/v3"

	"umbrella-reminder/pkg/resource"
	"umbrella-reminder/pkg/util/timeutils"
)

const (
	StoreFirebase = "firebase"
	StorePostgres = "postgres"

	TransportSMTP = "smtp"
	TransportSQS  = "sqs"

	LedgerMemory = "memory"
	LedgerRedis  = "redis"
)

type Config struct {
	ApplicationName string
	Server          ServerConfig
	Scheduler       SchedulerConfig
	Store           StoreConfig
	Weather         WeatherConfig
	Mail            MailConfig
	Ledger          LedgerConfig
	Redis           RedisConfig
	Cloud           CloudConfig
}

type ServerConfig struct {
	Port            int
	ContextPath     string
	ShutdownTimeout time.Duration
}

type SchedulerConfig struct {
	Enabled      bool
	Cron         string
	Interval     time.Duration
	UTCOffset    string
	Location     *time.Location
	StoreTimeout time.Duration
	StopTimeout  time.Duration
}

type StoreConfig struct {
	Type     string
	Firebase FirebaseConfig
	Database DatabaseConfig
}

type FirebaseConfig struct {
	DatabaseURL string
	AuthToken   string
	Node        string
}

type DatabaseConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	Database string
	Schema   string
	SSLMode  string
}

type WeatherConfig struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

type MailConfig struct {
	Transport string
	From      string
	Timeout   time.Duration
	SMTP      SMTPConfig
	QueueName string
}

type SMTPConfig struct {
	Host      string
	Port      int
	Username  string
	Password  string
	TLSPolicy string
	SSL       bool
}

type LedgerConfig struct {
	Type      string
	Namespace string
	TTL       time.Duration
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	Database int
	Timeout  time.Duration
}

type CloudConfig struct {
	Region          string
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
}

// Load reads the properties file and returns the validated configuration
func Load(path string) (*Config, error) {
	if err := resource.Init(path); err != nil {
		return nil, err
	}

	config := fromProperties()
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return config, nil
}

func fromProperties() *Config {
	config := &Config{
		ApplicationName: resource.GetString("app.name"),
		Server: ServerConfig{
			Port:            resource.GetInt("app.server.port"),
			ContextPath:     strings.TrimRight(resource.GetString("app.server.context-path"), "/"),
			ShutdownTimeout: resource.GetDuration("app.server.shutdown-timeout"),
		},
		Scheduler: SchedulerConfig{
			Enabled:      resource.GetBool("app.scheduler.enabled"),
			Cron:         strings.TrimSpace(resource.GetString("app.scheduler.cron")),
			Interval:     resource.GetDuration("app.scheduler.interval"),
			UTCOffset:    resource.GetString("app.scheduler.utc-offset"),
			StoreTimeout: resource.GetDuration("app.scheduler.store-timeout"),
			StopTimeout:  resource.GetDuration("app.scheduler.stop-timeout"),
		},
		Store: StoreConfig{
			Type: strings.ToLower(resource.GetString("app.store.type")),
			Firebase: FirebaseConfig{
				DatabaseURL: resource.GetString("app.store.firebase.database-url"),
				AuthToken:   resource.GetString("app.store.firebase.auth-token"),
				Node:        resource.GetString("app.store.firebase.node"),
			},
			Database: DatabaseConfig{
				Host:     resource.GetString("app.db.host"),
				Port:     resource.GetInt("app.db.port"),
				Username: resource.GetString("app.db.username"),
				Password: resource.GetString("app.db.password"),
				Database: resource.GetString("app.db.database"),
				Schema:   resource.GetString("app.db.schema"),
				SSLMode:  resource.GetString("app.db.ssl-mode"),
			},
		},
		Weather: WeatherConfig{
			BaseURL: resource.GetString("app.weather.base-url"),
			APIKey:  resource.GetString("app.weather.api-key"),
			Timeout: resource.GetDuration("app.weather.timeout"),
		},
		Mail: MailConfig{
			Transport: strings.ToLower(resource.GetString("app.mail.transport")),
			From:      resource.GetString("app.mail.from"),
			Timeout:   resource.GetDuration("app.mail.timeout"),
			SMTP: SMTPConfig{
				Host:      resource.GetString("app.mail.smtp.host"),
				Port:      resource.GetInt("app.mail.smtp.port"),
				Username:  resource.GetString("app.mail.smtp.username"),
				Password:  resource.GetString("app.mail.smtp.password"),
				TLSPolicy: resource.GetString("app.mail.smtp.tls-policy"),
				SSL:       resource.GetBool("app.mail.smtp.ssl"),
			},
			QueueName: resource.GetString("app.mail.sqs.queue-name"),
		},
		Ledger: LedgerConfig{
			Type:      strings.ToLower(resource.GetString("app.ledger.type")),
			Namespace: resource.GetString("app.ledger.namespace"),
			TTL:       resource.GetDuration("app.ledger.ttl"),
		},
		Redis: RedisConfig{
			Host:     resource.GetString("app.redis.host"),
			Port:     resource.GetInt("app.redis.port"),
			Password: resource.GetString("app.redis.password"),
			Database: resource.GetInt("app.redis.database"),
			Timeout:  resource.GetDuration("app.redis.timeout"),
		},
		Cloud: CloudConfig{
			Region:          resource.GetString("app.cloud.aws-region"),
			Endpoint:        resource.GetString("app.cloud.aws-endpoint"),
			AccessKeyID:     resource.GetString("app.cloud.aws-access-key-id"),
			SecretAccessKey: resource.GetString("app.cloud.aws-secret-access-key"),
		},
	}

	// the SMTP account doubles as sender when no explicit address is configured
	if config.Mail.From == "" {
		config.Mail.From = config.Mail.SMTP.Username
	}
	if config.Scheduler.Interval == 0 {
		config.Scheduler.Interval = time.Minute
	}

	return config
}

// Validate checks every section and resolves the scheduler location
func (config *Config) Validate() error {
	var errs []error

	if config.Server.Port < 1 || config.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("app.server.port %d out of range", config.Server.Port))
	}

	// reminders only fire in the minute that matches their time, so every minute needs a tick
	if config.Scheduler.Cron != "" {
		if err := validateCron(config.Scheduler.Cron); err != nil {
			errs = append(errs, fmt.Errorf("app.scheduler.cron: %w", err))
		}
	} else if config.Scheduler.Interval <= 0 || config.Scheduler.Interval > time.Minute {
		errs = append(errs, fmt.Errorf("app.scheduler.interval %s must be between 0 and 1m", config.Scheduler.Interval))
	}

	location, err := timeutils.ParseOffset(config.Scheduler.UTCOffset)
	if err != nil {
		errs = append(errs, fmt.Errorf("app.scheduler.utc-offset: %w", err))
	}
	config.Scheduler.Location = location

	switch config.Store.Type {
	case StoreFirebase:
		if config.Store.Firebase.DatabaseURL == "" {
			errs = append(errs, errors.New("app.store.firebase.database-url is required"))
		}
		if config.Store.Firebase.Node == "" {
			config.Store.Firebase.Node = "reminders"
		}
	case StorePostgres:
		if config.Store.Database.Host == "" || config.Store.Database.Database == "" {
			errs = append(errs, errors.New("app.db.host and app.db.database are required"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown app.store.type %q", config.Store.Type))
	}

	if config.Weather.BaseURL == "" {
		errs = append(errs, errors.New("app.weather.base-url is required"))
	}
	if config.Weather.APIKey == "" {
		errs = append(errs, errors.New("app.weather.api-key is required"))
	}

	switch config.Mail.Transport {
	case TransportSMTP:
		if config.Mail.SMTP.Host == "" {
			errs = append(errs, errors.New("app.mail.smtp.host is required"))
		}
	case TransportSQS:
		if config.Mail.QueueName == "" {
			errs = append(errs, errors.New("app.mail.sqs.queue-name is required"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown app.mail.transport %q", config.Mail.Transport))
	}
	if config.Mail.From == "" {
		errs = append(errs, errors.New("app.mail.from is required"))
	}

	switch config.Ledger.Type {
	case LedgerMemory:
	case LedgerRedis:
		if config.Redis.Host == "" {
			errs = append(errs, errors.New("app.redis.host is required for the redis ledger"))
		}
		if config.Redis.Timeout < 0 {
			errs = append(errs, errors.New("app.redis.timeout must not be negative"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown app.ledger.type %q", config.Ledger.Type))
	}

	return errors.Join(errs...)
}

// validateCron accepts expressions that fire at least once in every minute of every day
func validateCron(expression string) error {
	schedule, err := cron.ParseStandard(expression)
	if err != nil {
		return err
	}

	switch schedule := schedule.(type) {
	case cron.ConstantDelaySchedule:
		if schedule.Delay > time.Minute {
			return fmt.Errorf("%q runs less than once a minute", expression)
		}
		return nil
	case *cron.SpecSchedule:
		fields := []struct {
			name     string
			bits     uint64
			min, max uint
		}{
			{"minute", schedule.Minute, 0, 59},
			{"hour", schedule.Hour, 0, 23},
			{"day of month", schedule.Dom, 1, 31},
			{"month", schedule.Month, 1, 12},
			{"day of week", schedule.Dow, 0, 6},
		}
		for _, field := range fields {
			for value := field.min; value <= field.max; value++ {
				if field.bits&(1<<value) == 0 {
					return fmt.Errorf("%q skips %s %d, reminders set for it would never fire", expression, field.name, value)
				}
			}
		}
		return nil
	default:
		return fmt.Errorf("%q is not a supported schedule", expression)
	}
}
