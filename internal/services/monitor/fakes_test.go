package monitor

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/NordCoder/Uptimer/internal/domain/check"
	"github.com/NordCoder/Uptimer/internal/domain/outcomelog"
	"github.com/NordCoder/Uptimer/internal/domain/record"
)

const (
	testID    = "abcdefghij0123456789"
	testOwner = "5551234567"
)

func validRaw() record.Record {
	return record.Record{
		"id":             testID,
		"owner":          testOwner,
		"protocol":       "https",
		"url":            "example.com/health",
		"method":         "get",
		"successCodes":   []any{float64(200), float64(201)},
		"timeoutSeconds": float64(3),
	}
}

type memStore struct {
	mu        sync.Mutex
	data      map[string]map[string]record.Record
	updateErr error
	listErr   error
	updates   int
}

func newMemStore() *memStore {
	return &memStore{data: map[string]map[string]record.Record{}}
}

func (s *memStore) Create(_ context.Context, coll, key string, v record.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.data[coll] == nil {
		s.data[coll] = map[string]record.Record{}
	}
	if _, ok := s.data[coll][key]; ok {
		return record.ErrExists
	}
	s.data[coll][key] = v
	return nil
}

func (s *memStore) Read(_ context.Context, coll, key string) (record.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.data[coll][key]
	if !ok {
		return nil, record.ErrNotFound
	}
	cp := record.Record{}
	for k, x := range v {
		cp[k] = x
	}
	return cp, nil
}

func (s *memStore) Update(_ context.Context, coll, key string, v record.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.updateErr != nil {
		return s.updateErr
	}
	if _, ok := s.data[coll][key]; !ok {
		return record.ErrNotFound
	}
	s.updates++
	s.data[coll][key] = v
	return nil
}

func (s *memStore) Delete(_ context.Context, coll, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.data[coll][key]; !ok {
		return record.ErrNotFound
	}
	delete(s.data[coll], key)
	return nil
}

func (s *memStore) List(_ context.Context, coll string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listErr != nil {
		return nil, s.listErr
	}
	keys := make([]string, 0, len(s.data[coll]))
	for k := range s.data[coll] {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}

type memLog struct {
	mu          sync.Mutex
	streams     map[string][]*check.LogRecord
	archives    map[string][]*check.LogRecord
	appendErr   error
	compressErr error
	truncated   []string
}

func newMemLog() *memLog {
	return &memLog{streams: map[string][]*check.LogRecord{}, archives: map[string][]*check.LogRecord{}}
}

func (l *memLog) Append(_ context.Context, stream string, rec *check.LogRecord) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.appendErr != nil {
		return l.appendErr
	}
	l.streams[stream] = append(l.streams[stream], rec)
	return nil
}

func (l *memLog) List(context.Context) ([]string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]string, 0, len(l.streams))
	for s := range l.streams {
		out = append(out, s)
	}
	sort.Strings(out)
	return out, nil
}

func (l *memLog) ListArchives(context.Context) ([]string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]string, 0, len(l.archives))
	for a := range l.archives {
		out = append(out, a)
	}
	sort.Strings(out)
	return out, nil
}

func (l *memLog) Compress(_ context.Context, stream, archive string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.compressErr != nil {
		return l.compressErr
	}
	if len(l.streams[stream]) == 0 {
		return outcomelog.ErrEmptyStream
	}
	if _, ok := l.archives[archive]; ok {
		return errors.New("archive exists")
	}
	l.archives[archive] = append([]*check.LogRecord(nil), l.streams[stream]...)
	return nil
}

func (l *memLog) Decompress(_ context.Context, archive string) ([]byte, error) {
	return nil, errors.New("not supported")
}

func (l *memLog) Truncate(_ context.Context, stream string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.streams[stream] = nil
	l.truncated = append(l.truncated, stream)
	return nil
}

func (l *memLog) records(stream string) []*check.LogRecord {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]*check.LogRecord(nil), l.streams[stream]...)
}

type stubProber struct {
	mu       sync.Mutex
	outcomes []check.Outcome
	calls    int
}

func (p *stubProber) Probe(context.Context, *check.Check) check.Outcome {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++
	if len(p.outcomes) == 0 {
		return check.Outcome{HasError: true, ErrorDetail: "no outcome"}
	}
	o := p.outcomes[0]
	if len(p.outcomes) > 1 {
		p.outcomes = p.outcomes[1:]
	}
	return o
}

type sentMessage struct{ recipient, message string }

type stubSender struct {
	mu   sync.Mutex
	err  error
	sent []sentMessage
}

func (s *stubSender) Send(_ context.Context, recipient, message string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, sentMessage{recipient, message})
	return s.err
}

func (s *stubSender) messages() []sentMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]sentMessage(nil), s.sent...)
}

type stepClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *stepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(time.Minute)
	return c.t
}

type fixture struct {
	store  *memStore
	log    *memLog
	prober *stubProber
	sender *stubSender
	clock  *stepClock
	m      *Metrics
	p      *Pipeline
}

func newFixture() *fixture {
	f := &fixture{
		store:  newMemStore(),
		log:    newMemLog(),
		prober: &stubProber{},
		sender: &stubSender{},
		clock:  &stepClock{t: time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)},
		m:      NewMetrics(prometheus.NewRegistry()),
	}
	f.p = &Pipeline{
		Log:       zap.NewNop(),
		Store:     f.store,
		Validator: NewValidator(DefaultMaxTimeout),
		Prober:    f.prober,
		Outcomes:  f.log,
		Notifier:  f.sender,
		Locks:     NewStreamLocks(),
		Clock:     f.clock,
		Metrics:   f.m,
	}
	return f
}
