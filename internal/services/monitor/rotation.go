package monitor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/NordCoder/Uptimer/internal/domain/notification"
	"github.com/NordCoder/Uptimer/internal/domain/outcomelog"
)

const archiveTimeLayout = "20060102-150405.000"

// ArchiveName names the archive of stream taken at t.
func ArchiveName(stream string, t time.Time) string {
	return stream + "-" + t.UTC().Format(archiveTimeLayout)
}

type Rotator struct {
	Log      *zap.Logger
	Outcomes outcomelog.Log
	Locks    *StreamLocks
	Clock    notification.Clock
	Metrics  *Metrics
}

// Rotate archives and empties every live stream. A stream whose compression fails keeps its
// content and is retried on the next rotation; the other streams are still rotated.
func (r *Rotator) Rotate(ctx context.Context) error {
	ctx, span := otel.Tracer("monitor.rotation").Start(ctx, "monitor.rotate")
	defer span.End()

	streams, err := r.Outcomes.List(ctx)
	if err != nil {
		r.Metrics.Rotations.WithLabelValues("failed").Inc()
		return fmt.Errorf("list streams: %w", err)
	}
	span.SetAttributes(attribute.Int("rotation.streams", len(streams)))

	var errs []error
	for _, stream := range streams {
		if ctx.Err() != nil {
			errs = append(errs, ctx.Err())
			break
		}
		if err := r.rotateStream(ctx, stream); err != nil {
			r.Metrics.Rotations.WithLabelValues("failed").Inc()
			r.Log.Warn("stream rotation failed", zap.String("stream", stream), zap.Error(err))
			errs = append(errs, err)
		}
	}
	if err := errors.Join(errs...); err != nil {
		span.RecordError(err)
		return err
	}
	return nil
}

func (r *Rotator) rotateStream(ctx context.Context, stream string) error {
	unlock := r.Locks.Lock(stream)
	defer unlock()

	archive := ArchiveName(stream, r.Clock.Now())
	if err := r.Outcomes.Compress(ctx, stream, archive); err != nil {
		if errors.Is(err, outcomelog.ErrEmptyStream) {
			r.Metrics.Rotations.WithLabelValues("empty").Inc()
			return nil
		}
		return fmt.Errorf("compress %s: %w", stream, err)
	}
	if err := r.Outcomes.Truncate(ctx, stream); err != nil {
		return fmt.Errorf("truncate %s: %w", stream, err)
	}
	r.Metrics.Rotations.WithLabelValues("ok").Inc()
	r.Log.Debug("stream rotated", zap.String("stream", stream), zap.String("archive", archive))
	return nil
}
