package kafka

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/NordCoder/Uptimer/internal/domain/notification"
)

var _ notification.Sender = (*AlertEvents)(nil)

// AlertEvent is the payload published for every alert; downstream consumers do the delivery.
type AlertEvent struct {
	Recipient string    `json:"recipient"`
	Message   string    `json:"message"`
	At        time.Time `json:"at"`
}

type AlertEvents struct {
	p     *Producer
	clock notification.Clock
}

func NewAlertEvents(p *Producer, clock notification.Clock) *AlertEvents {
	if clock == nil {
		clock = notification.SystemClock{}
	}
	return &AlertEvents{p: p, clock: clock}
}

func (a *AlertEvents) Send(ctx context.Context, recipient, message string) error {
	recipient = strings.TrimSpace(recipient)
	if recipient == "" {
		return errors.New("kafka alert: empty recipient")
	}
	return a.p.PublishJSON(ctx, []byte(recipient), AlertEvent{
		Recipient: recipient,
		Message:   message,
		At:        a.clock.Now().UTC(),
	})
}
