package main

import (
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	config "github.com/NordCoder/Uptimer/internal/config/monitor"
	"github.com/NordCoder/Uptimer/internal/domain/notification"
	"github.com/NordCoder/Uptimer/internal/repository/kafka"
	"github.com/NordCoder/Uptimer/internal/repository/twilio"
	"github.com/NordCoder/Uptimer/internal/services/notifier"
)

// initNotifier returns the fan-out sender and closers for channels that hold connections.
func initNotifier(cfg config.NotifierCfg, reg prometheus.Registerer, l *zap.Logger) (*notifier.Fanout, []func() error) {
	var (
		channels []notifier.Channel
		closers  []func() error
	)
	for _, name := range cfg.Channels {
		switch name {
		case config.ChannelLog:
			channels = append(channels, notifier.Channel{Name: name, Sender: notifier.NewLogSender(l)})
		case config.ChannelSMS:
			channels = append(channels, notifier.Channel{Name: name, Sender: twilio.NewSMS(twilio.Config{
				BaseURL:    cfg.Twilio.BaseURL,
				AccountSID: cfg.Twilio.AccountSID,
				AuthToken:  cfg.Twilio.AuthToken,
				FromNumber: cfg.Twilio.FromNumber,
				Timeout:    cfg.Twilio.Timeout,
			}, nil)})
		case config.ChannelKafka:
			prod := kafka.NewProducer(kafka.ProducerConfig{
				Brokers:      cfg.Kafka.Brokers,
				Topic:        cfg.Kafka.Topic,
				WriteTimeout: cfg.Kafka.WriteTimeout,
			}).WithLogger(l)
			closers = append(closers, prod.Close)
			channels = append(channels, notifier.Channel{Name: name, Sender: kafka.NewAlertEvents(prod, notification.SystemClock{})})
		}
	}
	l.Info("notifier channels", zap.Strings("channels", cfg.Channels))
	return notifier.NewFanout(l, reg, channels...), closers
}
