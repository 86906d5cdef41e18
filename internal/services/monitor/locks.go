package monitor

import "sync"

// StreamLocks is a mutex per stream name. Entries are dropped once nobody holds or waits for them.
type StreamLocks struct {
	mu    sync.Mutex
	locks map[string]*streamLock
}

type streamLock struct {
	mu   sync.Mutex
	refs int
}

func NewStreamLocks() *StreamLocks {
	return &StreamLocks{locks: make(map[string]*streamLock)}
}

// Lock blocks until the stream is free and returns its unlock func.
func (s *StreamLocks) Lock(stream string) func() {
	s.mu.Lock()
	l, ok := s.locks[stream]
	if !ok {
		l = &streamLock{}
		s.locks[stream] = l
	}
	l.refs++
	s.mu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()
		s.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(s.locks, stream)
		}
		s.mu.Unlock()
	}
}

// inFlight tracks which check keys currently have a pipeline running.
type inFlight struct {
	mu   sync.Mutex
	keys map[string]struct{}
}

func newInFlight() *inFlight { return &inFlight{keys: make(map[string]struct{})} }

func (f *inFlight) tryAdd(key string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, busy := f.keys[key]; busy {
		return false
	}
	f.keys[key] = struct{}{}
	return true
}

func (f *inFlight) remove(key string) {
	f.mu.Lock()
	delete(f.keys, key)
	f.mu.Unlock()
}
