package monitor_config

import (
	"time"

	pginfra "github.com/NordCoder/Uptimer/internal/repository/postgres"
)

type AppCfg struct {
	Name    string `mapstructure:"name"`
	Env     string `mapstructure:"env"`
	Version string `mapstructure:"version"`
}

type LogCfg struct {
	Level  string `mapstructure:"level"`
	Pretty bool   `mapstructure:"pretty"`
}

type SchedCfg struct {
	CheckInterval    time.Duration `mapstructure:"check_interval"`
	RotationInterval time.Duration `mapstructure:"rotation_interval"`
	MaxInFlight      int64         `mapstructure:"max_in_flight"`
	ShutdownTimeout  time.Duration `mapstructure:"shutdown_timeout"`
}

type ValidatorCfg struct {
	MaxTimeoutSeconds float64 `mapstructure:"max_timeout_seconds"`
}

type HTTPProbe struct {
	UserAgent       string        `mapstructure:"user_agent"`
	DialTimeout     time.Duration `mapstructure:"dial_timeout"`
	FollowRedirects bool          `mapstructure:"follow_redirects"`
	MaxRedirects    int           `mapstructure:"max_redirects"`
	VerifyTLS       bool          `mapstructure:"verify_tls"`
	MaxBodyBytes    int64         `mapstructure:"max_body_bytes"`
}

type FileStore struct {
	Dir string `mapstructure:"dir"`
}

type PostgresStore struct {
	DSN               string        `mapstructure:"dsn"`
	MaxConns          int32         `mapstructure:"max_conns"`
	MinConns          int32         `mapstructure:"min_conns"`
	MaxConnLifetime   time.Duration `mapstructure:"max_conn_lifetime"`
	MaxConnIdleTime   time.Duration `mapstructure:"max_conn_idle_time"`
	HealthCheckPeriod time.Duration `mapstructure:"health_check_period"`
	QueryTimeout      time.Duration `mapstructure:"query_timeout"`
	Migrate           bool          `mapstructure:"migrate"`
}

func (p PostgresStore) Pool() pginfra.Config {
	return pginfra.Config{
		URL:               p.DSN,
		MaxConns:          p.MaxConns,
		MinConns:          p.MinConns,
		MaxConnLifetime:   p.MaxConnLifetime,
		MaxConnIdleTime:   p.MaxConnIdleTime,
		HealthCheckPeriod: p.HealthCheckPeriod,
		QueryTimeout:      p.QueryTimeout,
	}
}

type RedisStore struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Prefix   string `mapstructure:"prefix"`
}

type StoreCfg struct {
	Driver   string        `mapstructure:"driver"`
	File     FileStore     `mapstructure:"file"`
	Postgres PostgresStore `mapstructure:"postgres"`
	Redis    RedisStore    `mapstructure:"redis"`
}

type OutcomeLogCfg struct {
	Dir string `mapstructure:"dir"`
}

type TwilioCfg struct {
	BaseURL    string        `mapstructure:"base_url"`
	AccountSID string        `mapstructure:"account_sid"`
	AuthToken  string        `mapstructure:"auth_token"`
	FromNumber string        `mapstructure:"from_number"`
	Timeout    time.Duration `mapstructure:"timeout"`
}

type KafkaCfg struct {
	Brokers      []string      `mapstructure:"brokers"`
	Topic        string        `mapstructure:"topic"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

type NotifierCfg struct {
	Channels []string  `mapstructure:"channels"`
	Twilio   TwilioCfg `mapstructure:"twilio"`
	Kafka    KafkaCfg  `mapstructure:"kafka"`
}

type OTelCfg struct {
	Enable      bool    `mapstructure:"enable"`
	Endpoint    string  `mapstructure:"otlp_endpoint"`
	ServiceName string  `mapstructure:"service_name"`
	SampleRatio float64 `mapstructure:"sample_ratio"`
}

type Server struct {
	MetricsAddr string `mapstructure:"metrics_addr"`
}

type Config struct {
	App        AppCfg        `mapstructure:"app"`
	Log        LogCfg        `mapstructure:"log"`
	Scheduler  SchedCfg      `mapstructure:"scheduler"`
	Validator  ValidatorCfg  `mapstructure:"validator"`
	HTTP       HTTPProbe     `mapstructure:"http"`
	Store      StoreCfg      `mapstructure:"store"`
	OutcomeLog OutcomeLogCfg `mapstructure:"outcome_log"`
	Notifier   NotifierCfg   `mapstructure:"notifier"`
	OTel       OTelCfg       `mapstructure:"otel"`
	Server     Server        `mapstructure:"server"`
}
