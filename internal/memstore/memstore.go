// Package memstore is an in-memory store with a manually advanced clock. It
// stands in for Redis in unit tests across the module.
package memstore

import (
	"context"
	"path"
	"sort"
	"sync"
	"time"

	"github.com/kengibson1111/go-album-metadata-cache/internal"
)

// Clock is a manually advanced clock
type Clock struct {
	mu  sync.Mutex
	now time.Time
}

// NewClock returns a clock set to a fixed instant
func NewClock() *Clock {
	return &Clock{now: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *Clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type memEntry struct {
	value    string
	hash     map[string]string
	expireAt time.Time
}

// Store is an in-memory RedisClientInterface with expiry driven by a Clock
type Store struct {
	mu      sync.Mutex
	clock   *Clock
	entries map[string]*memEntry
	config  *internal.Config
	// docs returned by SearchIndex, in order
	searchHits []string
	searchErr  error
	setErr     error
	getErr     error
}

var _ internal.RedisClientInterface = (*Store)(nil)

// New creates an empty store. A nil config falls back to the defaults.
func New(clock *Clock, config *internal.Config) *Store {
	if clock == nil {
		clock = NewClock()
	}
	if config == nil {
		config = internal.DefaultConfig()
	}
	return &Store{clock: clock, entries: map[string]*memEntry{}, config: config}
}

// live returns the entry for key, dropping it if expired. Callers hold mu.
func (s *Store) live(key string) *memEntry {
	e, ok := s.entries[key]
	if !ok {
		return nil
	}
	if !e.expireAt.IsZero() && !s.clock.Now().Before(e.expireAt) {
		delete(s.entries, key)
		return nil
	}
	return e
}

func (s *Store) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.getErr != nil {
		return "", false, s.getErr
	}
	e := s.live(key)
	if e == nil || e.hash != nil {
		return "", false, nil
	}
	return e.value, true, nil
}

func (s *Store) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.setErr != nil {
		return s.setErr
	}
	s.entries[key] = &memEntry{value: value}
	return nil
}

func (s *Store) SetWithExpiry(_ context.Context, key, value string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.setErr != nil {
		return s.setErr
	}
	s.entries[key] = &memEntry{value: value, expireAt: s.clock.Now().Add(ttl)}
	return nil
}

func (s *Store) Delete(_ context.Context, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.live(key) == nil {
		return false, nil
	}
	delete(s.entries, key)
	return true, nil
}

func (s *Store) ListKeys(_ context.Context, pattern string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.getErr != nil {
		return nil, s.getErr
	}
	var keys []string
	for key := range s.entries {
		if s.live(key) == nil {
			continue
		}
		if ok, _ := path.Match(pattern, key); ok {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

func (s *Store) HashGet(_ context.Context, key, field string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.getErr != nil {
		return "", false, s.getErr
	}
	e := s.live(key)
	if e == nil || e.hash == nil {
		return "", false, nil
	}
	v, ok := e.hash[field]
	return v, ok, nil
}

func (s *Store) HashSet(_ context.Context, key string, fields map[string]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.setErr != nil {
		return s.setErr
	}
	e := s.live(key)
	if e == nil || e.hash == nil {
		e = &memEntry{hash: map[string]string{}}
		s.entries[key] = e
	}
	for k, v := range fields {
		e.hash[k] = v
	}
	return nil
}

func (s *Store) HashGetAll(_ context.Context, key string) (map[string]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := map[string]string{}
	if e := s.live(key); e != nil && e.hash != nil {
		for k, v := range e.hash {
			out[k] = v
		}
	}
	return out, nil
}

func (s *Store) Expire(_ context.Context, key string, ttl time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e := s.live(key)
	if e == nil {
		return false, nil
	}
	e.expireAt = s.clock.Now().Add(ttl)
	return true, nil
}

func (s *Store) CreateSearchIndex(context.Context, string, string, ...string) error {
	return nil
}

func (s *Store) SearchIndex(context.Context, string, string, int) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.searchHits, s.searchErr
}

// SetSearchHits fixes the document keys and error SearchIndex returns
func (s *Store) SetSearchHits(hits []string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.searchHits = hits
	s.searchErr = err
}

// FailWrites makes every subsequent write return err. A nil err restores writes.
func (s *Store) FailWrites(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.setErr = err
}

// FailReads makes every subsequent read return err. A nil err restores reads.
func (s *Store) FailReads(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.getErr = err
}

// Len returns the number of live keys
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for key := range s.entries {
		if s.live(key) != nil {
			n++
		}
	}
	return n
}

func (s *Store) Health(context.Context) error          { return nil }
func (s *Store) HealthWithRetry(context.Context) error { return nil }
func (s *Store) Config() *internal.Config              { return s.config }
func (s *Store) Close() error                          { return nil }
