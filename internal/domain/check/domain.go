package check

import (
	"time"
)

type State string

const (
	StateUnknown State = "unknown"
	StateUp      State = "up"
	StateDown    State = "down"
)

// Check is a monitored endpoint definition plus the runtime state owned by the monitor.
type Check struct {
	ID             string     `json:"id"`
	Owner          string     `json:"owner"`
	Protocol       string     `json:"protocol"`
	URL            string     `json:"url"`
	Method         string     `json:"method"`
	SuccessCodes   []int      `json:"successCodes"`
	TimeoutSeconds float64    `json:"timeoutSeconds"`
	State          State      `json:"state"`
	LastChecked    *time.Time `json:"lastChecked,omitempty"`
}

func (c *Check) Target() string { return c.Protocol + "://" + c.URL }

func (c *Check) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds * float64(time.Second))
}

func (c *Check) IsSuccessCode(code int) bool {
	for _, sc := range c.SuccessCodes {
		if sc == code {
			return true
		}
	}
	return false
}

// ToRecord renders the check in the shape kept by the record store.
// lastChecked is stored as Unix milliseconds.
func (c *Check) ToRecord() map[string]any {
	codes := make([]any, 0, len(c.SuccessCodes))
	for _, sc := range c.SuccessCodes {
		codes = append(codes, sc)
	}
	state := c.State
	if state == "" {
		state = StateUnknown
	}
	rec := map[string]any{
		"id":             c.ID,
		"owner":          c.Owner,
		"protocol":       c.Protocol,
		"url":            c.URL,
		"method":         c.Method,
		"successCodes":   codes,
		"timeoutSeconds": c.TimeoutSeconds,
		"state":          string(state),
	}
	if c.LastChecked != nil {
		rec["lastChecked"] = c.LastChecked.UnixMilli()
	}
	return rec
}

// Outcome is the result of a single probe. ResponseCode is only meaningful when HasError is false.
type Outcome struct {
	HasError     bool          `json:"hasError"`
	ErrorDetail  string        `json:"errorDetail,omitempty"`
	ResponseCode int           `json:"responseCode,omitempty"`
	Latency      time.Duration `json:"latencyNs"`
}

const ErrorDetailTimeout = "timeout"

type LogRecord struct {
	CycleID string    `json:"cycleId"`
	Check   Check     `json:"check"`
	Outcome Outcome   `json:"outcome"`
	State   State     `json:"state"`
	Alert   bool      `json:"alert"`
	Time    time.Time `json:"time"`
}
