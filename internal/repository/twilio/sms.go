// Package twilio sends alert texts through the Twilio Messages REST API.
package twilio

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/NordCoder/Uptimer/internal/domain/notification"
)

const DefaultBaseURL = "https://api.twilio.com"

var _ notification.Sender = (*SMS)(nil)

type Config struct {
	BaseURL    string
	AccountSID string
	AuthToken  string
	FromNumber string
	Timeout    time.Duration
}

type SMS struct {
	cfg    Config
	client *http.Client
}

// NewSMS uses client when given, otherwise a plain client bounded by cfg.Timeout.
func NewSMS(cfg Config, client *http.Client) *SMS {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}
	return &SMS{cfg: cfg, client: client}
}

func (s *SMS) Send(ctx context.Context, recipient, message string) error {
	recipient = strings.TrimSpace(recipient)
	if recipient == "" {
		return errors.New("twilio: empty recipient")
	}
	message = strings.TrimSpace(message)
	if n := utf8.RuneCountInString(message); n == 0 || n > notification.MaxMessageLen {
		return fmt.Errorf("twilio: message length %d outside 1..%d", n, notification.MaxMessageLen)
	}

	form := url.Values{}
	form.Set("From", s.cfg.FromNumber)
	form.Set("To", recipient)
	form.Set("Body", message)

	endpoint := strings.TrimRight(s.cfg.BaseURL, "/") + "/2010-04-01/Accounts/" + url.PathEscape(s.cfg.AccountSID) + "/Messages.json"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("twilio: build request: %w", err)
	}
	req.SetBasicAuth(s.cfg.AccountSID, s.cfg.AuthToken)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("twilio: send: %w", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("twilio: status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return nil
}
