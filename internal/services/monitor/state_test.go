package monitor

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/NordCoder/Uptimer/internal/domain/check"
)

func TestEvaluate(t *testing.T) {
	seen := time.Now()
	cases := []struct {
		name      string
		state     check.State
		last      *time.Time
		outcome   check.Outcome
		wantState check.State
		wantAlert bool
	}{
		{"first success", check.StateUnknown, nil, check.Outcome{ResponseCode: 200}, check.StateUp, false},
		{"first failure", check.StateUnknown, nil, check.Outcome{HasError: true, ErrorDetail: "timeout"}, check.StateDown, false},
		{"first unexpected code", check.StateUp, nil, check.Outcome{ResponseCode: 500}, check.StateDown, false},
		{"up to down", check.StateUp, &seen, check.Outcome{ResponseCode: 500}, check.StateDown, true},
		{"down to up", check.StateDown, &seen, check.Outcome{ResponseCode: 201}, check.StateUp, true},
		{"stays up", check.StateUp, &seen, check.Outcome{ResponseCode: 200}, check.StateUp, false},
		{"stays down", check.StateDown, &seen, check.Outcome{HasError: true, ErrorDetail: "refused"}, check.StateDown, false},
		{"unknown with history", check.StateUnknown, &seen, check.Outcome{ResponseCode: 200}, check.StateUp, true},
		{"error ignores code", check.StateUp, &seen, check.Outcome{HasError: true, ResponseCode: 200}, check.StateDown, true},
		{"missing code", check.StateDown, &seen, check.Outcome{}, check.StateDown, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := &check.Check{SuccessCodes: []int{200, 201}, State: tc.state, LastChecked: tc.last}
			state, alert := Evaluate(c, tc.outcome)
			require.Equal(t, tc.wantState, state)
			require.Equal(t, tc.wantAlert, alert)
		})
	}
}
