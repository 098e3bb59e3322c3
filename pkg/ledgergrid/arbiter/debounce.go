package arbiter

import (
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/golang/groupcache/lru"
	"github.com/ukaji3/ledgergrid-go/pkg/ledgergrid/grid"
)

// Store keeps the last firing time per debounce key.
type Store interface {
	Get(key string) (time.Time, bool, error)
	Put(key string, at time.Time) error
	Delete(key string) error
	Keys() ([]string, error)
}

// Debouncer drops repeated firings of the same key within a window.
type Debouncer struct {
	mu     sync.Mutex
	store  Store
	window time.Duration
	ttl    time.Duration
	now    func() time.Time
}

// NewDebouncer creates a Debouncer. Entries older than ttl are swept; a ttl
// shorter than the window is raised to the window.
func NewDebouncer(store Store, window, ttl time.Duration) *Debouncer {
	return &Debouncer{
		store:  store,
		window: window,
		ttl:    max(ttl, window),
		now:    time.Now,
	}
}

// SetClock replaces the time source.
func (d *Debouncer) SetClock(now func() time.Time) {
	d.mu.Lock()
	d.now = now
	d.mu.Unlock()
}

// Hit reports whether key fired within the window. A miss records the
// firing.
func (d *Debouncer) Hit(key string) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	now := d.now()
	if err := d.sweepLocked(now); err != nil {
		return false, err
	}
	if d.window <= 0 {
		return false, nil
	}
	last, ok, err := d.store.Get(key)
	if err != nil {
		return false, err
	}
	if ok && now.Before(last.Add(d.window)) {
		return true, nil
	}
	return false, d.store.Put(key, now)
}

func (d *Debouncer) sweepLocked(now time.Time) error {
	if d.ttl <= 0 {
		return nil
	}
	keys, err := d.store.Keys()
	if err != nil {
		return err
	}
	for _, key := range keys {
		at, ok, err := d.store.Get(key)
		if err != nil {
			return err
		}
		if ok && now.Before(at.Add(d.ttl)) {
			continue
		}
		if err := d.store.Delete(key); err != nil {
			return err
		}
	}
	return nil
}

// MemoryStore is a bounded in-process Store; the least recently used key
// is evicted once capacity is reached. Zero capacity means unbounded.
type MemoryStore struct {
	mu    sync.Mutex
	cache *lru.Cache
	keys  map[string]struct{}
}

func NewMemoryStore(capacity int) *MemoryStore {
	s := &MemoryStore{cache: lru.New(capacity), keys: make(map[string]struct{})}
	s.cache.OnEvicted = func(key lru.Key, _ interface{}) {
		delete(s.keys, key.(string))
	}
	return s
}

func (s *MemoryStore) Get(key string) (time.Time, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.cache.Get(key)
	if !ok {
		return time.Time{}, false, nil
	}
	return v.(time.Time), true, nil
}

func (s *MemoryStore) Put(key string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache.Add(key, at)
	s.keys[key] = struct{}{}
	return nil
}

func (s *MemoryStore) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache.Remove(key)
	return nil
}

func (s *MemoryStore) Keys() ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	keys := make([]string, 0, len(s.keys))
	for k := range s.keys {
		keys = append(keys, k)
	}
	return keys, nil
}

// Len returns the number of keys held.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cache.Len()
}

const propertyPrefix = "debounce:"

// WorkbookStore persists firing times as custom document properties, so
// separate processes editing the same file share one debounce state.
type WorkbookStore struct {
	props grid.Properties
}

func NewWorkbookStore(props grid.Properties) *WorkbookStore {
	return &WorkbookStore{props: props}
}

func (s *WorkbookStore) Get(key string) (time.Time, bool, error) {
	v, ok, err := s.props.Property(propertyPrefix + key)
	if err != nil || !ok {
		return time.Time{}, false, err
	}
	ms, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		// Unreadable entries count as expired.
		return time.Time{}, true, nil
	}
	return time.UnixMilli(ms), true, nil
}

func (s *WorkbookStore) Put(key string, at time.Time) error {
	return s.props.SetProperty(propertyPrefix+key, strconv.FormatInt(at.UnixMilli(), 10))
}

func (s *WorkbookStore) Delete(key string) error {
	return s.props.DeleteProperty(propertyPrefix + key)
}

func (s *WorkbookStore) Keys() ([]string, error) {
	names, err := s.props.PropertyNames(propertyPrefix)
	if err != nil {
		return nil, err
	}
	for i, n := range names {
		names[i] = strings.TrimPrefix(n, propertyPrefix)
	}
	return names, nil
}
