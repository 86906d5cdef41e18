package outcomelog

import (
	"context"
	"errors"

	"github.com/NordCoder/Uptimer/internal/domain/check"
)

var ErrEmptyStream = errors.New("stream is empty")

// Log is a set of append-only per-check streams plus their compressed archives.
type Log interface {
	Append(ctx context.Context, stream string, rec *check.LogRecord) error
	List(ctx context.Context) ([]string, error)
	ListArchives(ctx context.Context) ([]string, error)
	Compress(ctx context.Context, stream, archive string) error
	Decompress(ctx context.Context, archive string) ([]byte, error)
	Truncate(ctx context.Context, stream string) error
}
