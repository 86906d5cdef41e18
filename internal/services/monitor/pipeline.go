package monitor

import (
	"context"
	"errors"
	"fmt"
	"maps"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/NordCoder/Uptimer/internal/domain/check"
	"github.com/NordCoder/Uptimer/internal/domain/notification"
	"github.com/NordCoder/Uptimer/internal/domain/outcomelog"
	"github.com/NordCoder/Uptimer/internal/domain/record"
	"github.com/NordCoder/Uptimer/internal/obs"
)

var (
	ErrRejected = errors.New("check record rejected")
	// ErrDiscarded marks a probe interrupted by shutdown; nothing is persisted for it.
	ErrDiscarded = errors.New("probe discarded")
)

type Pipeline struct {
	Log       *zap.Logger
	Store     record.Store
	Validator *Validator
	Prober    check.Prober
	Outcomes  outcomelog.Log
	Notifier  notification.Sender
	Locks     *StreamLocks
	Clock     notification.Clock
	Metrics   *Metrics
}

// Run executes one evaluation of the check stored under key:
// read, validate, probe, evaluate, persist, append to the outcome log, then alert the owner.
// A failed step aborts the remaining ones. Alert delivery failures are logged, not returned.
func (p *Pipeline) Run(ctx context.Context, cycleID, key string) error {
	ctx, span := otel.Tracer("monitor.pipeline").Start(ctx, "monitor.check")
	defer span.End()
	span.SetAttributes(attribute.String("check.key", key), attribute.String("cycle.id", cycleID))
	log := obs.WithTrace(ctx, p.Log).With(zap.String("cycle_id", cycleID), zap.String("check_key", key))

	raw, err := p.Store.Read(ctx, record.CollectionChecks, key)
	if errors.Is(err, record.ErrNotFound) {
		log.Debug("check vanished before evaluation")
		return nil
	}
	if err != nil {
		return p.fail(span, fmt.Errorf("read check: %w", err))
	}

	v := p.Validator.Validate(raw)
	if !v.OK() {
		p.Metrics.Rejected.Inc()
		span.SetStatus(codes.Error, v.Reason)
		return fmt.Errorf("%w: %s", ErrRejected, v.Reason)
	}
	c := v.Check
	span.SetAttributes(attribute.String("check.id", c.ID), attribute.String("check.target", c.Target()))

	outcome := p.Prober.Probe(ctx, c)
	if ctx.Err() != nil {
		return ErrDiscarded
	}
	p.Metrics.ProbeLatency.Observe(outcome.Latency.Seconds())

	newState, alert := Evaluate(c, outcome)
	p.Metrics.Outcomes.WithLabelValues(string(newState)).Inc()
	span.SetAttributes(attribute.String("check.state", string(newState)), attribute.Bool("check.alert", alert))

	now := p.Clock.Now()
	updated := *c
	updated.State = newState
	updated.LastChecked = &now

	// Definition fields belong to the management side; only state and lastChecked are written back.
	fresh, err := p.Store.Read(ctx, record.CollectionChecks, key)
	if errors.Is(err, record.ErrNotFound) {
		log.Debug("check deleted during evaluation")
		return nil
	}
	if err != nil {
		return p.fail(span, fmt.Errorf("reread check %s: %w", c.ID, err))
	}
	stored := maps.Clone(fresh)
	stored["state"] = string(newState)
	stored["lastChecked"] = now.UnixMilli()
	if err := p.Store.Update(ctx, record.CollectionChecks, key, stored); err != nil {
		if errors.Is(err, record.ErrNotFound) {
			log.Debug("check deleted during evaluation")
			return nil
		}
		return p.fail(span, fmt.Errorf("persist check %s: %w", c.ID, err))
	}

	entry := &check.LogRecord{
		CycleID: cycleID,
		Check:   *c,
		Outcome: outcome,
		State:   newState,
		Alert:   alert,
		Time:    now,
	}
	unlock := p.Locks.Lock(c.ID)
	err = p.Outcomes.Append(ctx, c.ID, entry)
	unlock()
	if err != nil {
		return p.fail(span, fmt.Errorf("append outcome %s: %w", c.ID, err))
	}

	log.Debug("check evaluated",
		zap.String("check_id", c.ID),
		zap.String("state", string(newState)),
		zap.Int("code", outcome.ResponseCode),
		zap.String("error", outcome.ErrorDetail),
		zap.Duration("latency", outcome.Latency),
		zap.Bool("alert", alert),
	)

	if alert {
		msg := notification.StateChangeMessage(&updated, c.State)
		if err := p.Notifier.Send(ctx, c.Owner, msg); err != nil {
			p.Metrics.AlertsFailed.Inc()
			span.RecordError(err)
			log.Warn("alert not delivered", zap.String("check_id", c.ID), zap.Error(err))
			return nil
		}
		p.Metrics.AlertsSent.Inc()
	}
	return nil
}

func (p *Pipeline) fail(span trace.Span, err error) error {
	p.Metrics.PipelineErrs.Inc()
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}
