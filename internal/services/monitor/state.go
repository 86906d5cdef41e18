package monitor

import "github.com/NordCoder/Uptimer/internal/domain/check"

// Evaluate derives the new state of c from o and whether the change deserves an alert.
// The first evaluation of a check (no LastChecked) never alerts.
func Evaluate(c *check.Check, o check.Outcome) (check.State, bool) {
	newState := check.StateDown
	if !o.HasError && o.ResponseCode > 0 && c.IsSuccessCode(o.ResponseCode) {
		newState = check.StateUp
	}
	shouldAlert := c.LastChecked != nil && newState != c.State
	return newState, shouldAlert
}
