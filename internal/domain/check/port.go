package check

import "context"

type Prober interface {
	Probe(ctx context.Context, c *Check) Outcome
}
