package monitor

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/NordCoder/Uptimer/internal/domain/check"
	"github.com/NordCoder/Uptimer/internal/domain/record"
)

const (
	idLength          = 20
	minOwnerLength    = 10
	DefaultMaxTimeout = 5.0
	minStatusCode     = 100
	maxStatusCode     = 599
)

var (
	validProtocols = map[string]bool{"http": true, "https": true}
	validMethods   = map[string]bool{"get": true, "post": true, "put": true, "delete": true}
)

// Validation is either a well-formed Check or the reason the record was rejected.
type Validation struct {
	Check  *check.Check
	Reason string
}

func (v Validation) OK() bool { return v.Check != nil }

func reject(format string, args ...any) Validation {
	return Validation{Reason: fmt.Sprintf(format, args...)}
}

type Validator struct {
	maxTimeout float64
}

func NewValidator(maxTimeoutSeconds float64) *Validator {
	if maxTimeoutSeconds <= 0 {
		maxTimeoutSeconds = DefaultMaxTimeout
	}
	return &Validator{maxTimeout: maxTimeoutSeconds}
}

// Validate turns a raw stored record into a Check. Every required field must pass; state and
// lastChecked are optional and fall back to unknown and absent.
func (v *Validator) Validate(raw record.Record) Validation {
	if raw == nil {
		return reject("empty record")
	}

	id, ok := trimmedString(raw["id"])
	if !ok || len(id) != idLength || !isAlnum(id) {
		return reject("id must be %d alphanumeric characters", idLength)
	}
	owner, ok := trimmedString(raw["owner"])
	if !ok || len(owner) < minOwnerLength {
		return reject("owner must be at least %d characters", minOwnerLength)
	}
	protocol, ok := raw["protocol"].(string)
	if !ok || !validProtocols[protocol] {
		return reject("protocol must be http or https")
	}
	target, ok := trimmedString(raw["url"])
	if !ok || target == "" {
		return reject("url must be a non-empty string")
	}
	method, ok := raw["method"].(string)
	if !ok || !validMethods[method] {
		return reject("method must be one of get, post, put, delete")
	}
	codes, ok := statusCodes(raw["successCodes"])
	if !ok {
		return reject("successCodes must be a non-empty list of status codes")
	}
	timeout, ok := number(raw["timeoutSeconds"])
	if !ok || timeout <= 0 || timeout > v.maxTimeout {
		return reject("timeoutSeconds must be a number in (0, %g]", v.maxTimeout)
	}

	c := &check.Check{
		ID:             id,
		Owner:          owner,
		Protocol:       protocol,
		URL:            target,
		Method:         method,
		SuccessCodes:   codes,
		TimeoutSeconds: timeout,
		State:          check.StateUnknown,
	}
	if s, _ := raw["state"].(string); s == string(check.StateUp) || s == string(check.StateDown) {
		c.State = check.State(s)
	}
	if ms, ok := number(raw["lastChecked"]); ok && ms > 0 {
		t := time.UnixMilli(int64(ms))
		c.LastChecked = &t
	}
	return Validation{Check: c}
}

func trimmedString(v any) (string, bool) {
	s, ok := v.(string)
	if !ok {
		return "", false
	}
	return strings.TrimSpace(s), true
}

func isAlnum(s string) bool {
	for _, r := range s {
		if !(r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9') {
			return false
		}
	}
	return true
}

func number(v any) (float64, bool) {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int:
		f = float64(n)
	case int32:
		f = float64(n)
	case int64:
		f = float64(n)
	case json.Number:
		x, err := n.Float64()
		if err != nil {
			return 0, false
		}
		f = x
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func statusCodes(v any) ([]int, bool) {
	var items []any
	switch l := v.(type) {
	case []any:
		items = l
	case []int:
		for _, x := range l {
			items = append(items, x)
		}
	case []float64:
		for _, x := range l {
			items = append(items, x)
		}
	default:
		return nil, false
	}
	if len(items) == 0 {
		return nil, false
	}
	codes := make([]int, 0, len(items))
	for _, it := range items {
		f, ok := number(it)
		if !ok || f != math.Trunc(f) || f < minStatusCode || f > maxStatusCode {
			return nil, false
		}
		codes = append(codes, int(f))
	}
	return codes, true
}
