package file

import (
	"bytes"
	"compress/gzip"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/NordCoder/Uptimer/internal/domain/check"
	"github.com/NordCoder/Uptimer/internal/domain/outcomelog"
)

var _ outcomelog.Log = (*OutcomeLog)(nil)

const (
	streamExt  = ".log"
	archiveExt = ".gz.b64"
)

// OutcomeLog stores one JSON-lines file per stream and base64(gzip) archives beside them.
// Callers serialise operations on the same stream.
type OutcomeLog struct {
	dir string
}

func NewOutcomeLog(dir string) (*OutcomeLog, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create logs dir: %w", err)
	}
	return &OutcomeLog{dir: dir}, nil
}

func (l *OutcomeLog) streamPath(stream string) (string, error) {
	if err := safeName("stream", stream); err != nil {
		return "", err
	}
	return filepath.Join(l.dir, stream+streamExt), nil
}

func (l *OutcomeLog) archivePath(archive string) (string, error) {
	if err := safeName("archive", archive); err != nil {
		return "", err
	}
	return filepath.Join(l.dir, archive+archiveExt), nil
}

func (l *OutcomeLog) Append(_ context.Context, stream string, rec *check.LogRecord) error {
	p, err := l.streamPath(stream)
	if err != nil {
		return err
	}
	line, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode log record: %w", err)
	}
	line = append(line, '\n')

	f, err := os.OpenFile(p, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open stream %s: %w", stream, err)
	}
	if _, err := f.Write(line); err != nil {
		_ = f.Close()
		return fmt.Errorf("append stream %s: %w", stream, err)
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		return fmt.Errorf("sync stream %s: %w", stream, err)
	}
	return f.Close()
}

func (l *OutcomeLog) List(_ context.Context) ([]string, error) {
	return l.names(streamExt)
}

func (l *OutcomeLog) ListArchives(_ context.Context) ([]string, error) {
	return l.names(archiveExt)
}

func (l *OutcomeLog) names(ext string) ([]string, error) {
	entries, err := os.ReadDir(l.dir)
	if err != nil {
		return nil, fmt.Errorf("read logs dir: %w", err)
	}
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ext) {
			continue
		}
		out = append(out, strings.TrimSuffix(e.Name(), ext))
	}
	sort.Strings(out)
	return out, nil
}

// Compress writes the current content of stream into a new archive. An existing archive is never overwritten.
func (l *OutcomeLog) Compress(_ context.Context, stream, archive string) error {
	src, err := l.streamPath(stream)
	if err != nil {
		return err
	}
	dst, err := l.archivePath(archive)
	if err != nil {
		return err
	}

	data, err := os.ReadFile(src)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return outcomelog.ErrEmptyStream
		}
		return fmt.Errorf("read stream %s: %w", stream, err)
	}
	if len(data) == 0 {
		return outcomelog.ErrEmptyStream
	}

	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	if _, err := zw.Write(data); err != nil {
		return fmt.Errorf("gzip stream %s: %w", stream, err)
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("gzip stream %s: %w", stream, err)
	}

	f, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return fmt.Errorf("create archive %s: %w", archive, err)
	}
	enc := base64.NewEncoder(base64.StdEncoding, f)
	if _, err := enc.Write(buf.Bytes()); err != nil {
		_ = f.Close()
		_ = os.Remove(dst)
		return fmt.Errorf("write archive %s: %w", archive, err)
	}
	if err := enc.Close(); err != nil {
		_ = f.Close()
		_ = os.Remove(dst)
		return fmt.Errorf("write archive %s: %w", archive, err)
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		_ = os.Remove(dst)
		return fmt.Errorf("sync archive %s: %w", archive, err)
	}
	return f.Close()
}

func (l *OutcomeLog) Decompress(_ context.Context, archive string) ([]byte, error) {
	p, err := l.archivePath(archive)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(p)
	if err != nil {
		return nil, fmt.Errorf("open archive %s: %w", archive, err)
	}
	defer f.Close()

	zr, err := gzip.NewReader(base64.NewDecoder(base64.StdEncoding, f))
	if err != nil {
		return nil, fmt.Errorf("gunzip archive %s: %w", archive, err)
	}
	defer zr.Close()

	out, err := io.ReadAll(zr)
	if err != nil {
		return nil, fmt.Errorf("read archive %s: %w", archive, err)
	}
	return out, nil
}

func (l *OutcomeLog) Truncate(_ context.Context, stream string) error {
	p, err := l.streamPath(stream)
	if err != nil {
		return err
	}
	if err := os.Truncate(p, 0); err != nil {
		return fmt.Errorf("truncate stream %s: %w", stream, err)
	}
	return nil
}
