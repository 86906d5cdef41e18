package monitor_config

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

const (
	DriverFile     = "file"
	DriverPostgres = "postgres"
	DriverRedis    = "redis"

	ChannelLog   = "log"
	ChannelSMS   = "sms"
	ChannelKafka = "kafka"
)

var validLogLevels = []string{"debug", "info", "warn", "error", "dpanic", "panic", "fatal"}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var errs []error
	for _, validate := range []func() error{
		c.validateLog,
		c.validateScheduler,
		c.validateProbe,
		c.validateStore,
		c.validateNotifier,
	} {
		if err := validate(); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}

func (c *Config) validateLog() error {
	if !slices.Contains(validLogLevels, strings.ToLower(c.Log.Level)) {
		return fmt.Errorf("log.level %q is not one of %v", c.Log.Level, validLogLevels)
	}
	return nil
}

func (c *Config) validateScheduler() error {
	s := c.Scheduler
	switch {
	case s.CheckInterval <= 0:
		return errors.New("scheduler.check_interval must be greater than 0")
	case s.RotationInterval <= 0:
		return errors.New("scheduler.rotation_interval must be greater than 0")
	case s.MaxInFlight <= 0:
		return errors.New("scheduler.max_in_flight must be greater than 0")
	case s.ShutdownTimeout < 0:
		return errors.New("scheduler.shutdown_timeout cannot be negative")
	}
	return nil
}

func (c *Config) validateProbe() error {
	if c.Validator.MaxTimeoutSeconds <= 0 {
		return errors.New("validator.max_timeout_seconds must be greater than 0")
	}
	if c.HTTP.FollowRedirects && c.HTTP.MaxRedirects <= 0 {
		return errors.New("http.max_redirects must be greater than 0 when following redirects")
	}
	return nil
}

func (c *Config) validateStore() error {
	switch c.Store.Driver {
	case DriverFile:
		if c.Store.File.Dir == "" {
			return errors.New("store.file.dir cannot be empty")
		}
	case DriverPostgres:
		if c.Store.Postgres.DSN == "" {
			return errors.New("store.postgres.dsn cannot be empty")
		}
	case DriverRedis:
		if c.Store.Redis.Addr == "" {
			return errors.New("store.redis.addr cannot be empty")
		}
	default:
		return fmt.Errorf("store.driver %q is not one of file, postgres, redis", c.Store.Driver)
	}
	if c.OutcomeLog.Dir == "" {
		return errors.New("outcome_log.dir cannot be empty")
	}
	return nil
}

func (c *Config) validateNotifier() error {
	n := c.Notifier
	if len(n.Channels) == 0 {
		return errors.New("notifier.channels cannot be empty")
	}
	for _, ch := range n.Channels {
		switch ch {
		case ChannelLog:
		case ChannelSMS:
			if n.Twilio.AccountSID == "" || n.Twilio.AuthToken == "" || n.Twilio.FromNumber == "" {
				return errors.New("notifier.twilio account_sid, auth_token and from_number are required for the sms channel")
			}
		case ChannelKafka:
			if len(n.Kafka.Brokers) == 0 || n.Kafka.Topic == "" {
				return errors.New("notifier.kafka brokers and topic are required for the kafka channel")
			}
		default:
			return fmt.Errorf("notifier.channels: unknown channel %q", ch)
		}
	}
	return nil
}
