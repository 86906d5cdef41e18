package notification

import (
	"fmt"
	"strings"
	"time"

	"github.com/NordCoder/Uptimer/internal/domain/check"
)

const MaxMessageLen = 1600

type Clock interface {
	Now() time.Time
}

type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// StateChangeMessage renders the text sent to the owner when c moves away from previous.
// c must already carry the new state.
func StateChangeMessage(c *check.Check, previous check.State) string {
	return fmt.Sprintf("Alert: your check %s %s changed from %s to %s",
		strings.ToUpper(c.Method), c.Target(), previous, c.State)
}
