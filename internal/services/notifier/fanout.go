// Package notifier combines the configured alert channels into one notification.Sender.
package notifier

import (
	"context"
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"

	"github.com/NordCoder/Uptimer/internal/domain/notification"
)

var _ notification.Sender = (*Fanout)(nil)

type Channel struct {
	Name   string
	Sender notification.Sender
}

// Fanout delivers every message to all channels. One failing channel does not stop the others.
type Fanout struct {
	log      *zap.Logger
	channels []Channel

	mSent   *prometheus.CounterVec
	mFailed *prometheus.CounterVec
}

func NewFanout(log *zap.Logger, reg prometheus.Registerer, channels ...Channel) *Fanout {
	f := promauto.With(reg)
	return &Fanout{
		log:      log,
		channels: channels,
		mSent: f.NewCounterVec(prometheus.CounterOpts{
			Name: "notifier_messages_sent_total",
			Help: "Messages delivered per channel",
		}, []string{"channel"}),
		mFailed: f.NewCounterVec(prometheus.CounterOpts{
			Name: "notifier_messages_failed_total",
			Help: "Message deliveries that failed per channel",
		}, []string{"channel"}),
	}
}

func (f *Fanout) Send(ctx context.Context, recipient, message string) error {
	if len(f.channels) == 0 {
		return errors.New("no notification channels configured")
	}
	var errs []error
	for _, ch := range f.channels {
		if err := ch.Sender.Send(ctx, recipient, message); err != nil {
			f.mFailed.WithLabelValues(ch.Name).Inc()
			f.log.Warn("channel send failed", zap.String("channel", ch.Name), zap.Error(err))
			errs = append(errs, fmt.Errorf("%s: %w", ch.Name, err))
			continue
		}
		f.mSent.WithLabelValues(ch.Name).Inc()
	}
	return errors.Join(errs...)
}
