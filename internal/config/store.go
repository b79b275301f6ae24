// Package config holds the layered configuration store that every stub
// invocation reads its service, model, and echo settings from.
//
// The store is process-wide mutable state. Scopes are pushed and popped in
// LIFO order by a single logical thread of control; concurrent scopes on one
// Store race on restore and must be serialized by the caller.
package config

import (
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/knadh/koanf/v2"
)

// Recognized configuration keys.
const (
	KeyService      = "service"
	KeyModel        = "model"
	KeyEchoCall     = "echo_call"
	KeyEchoResponse = "echo_response"
	KeyEchoService  = "echo_service"
)

const delim = "."

// storeDelim keeps the base layer flat: option names may contain dots and
// are never split into nested paths.
const storeDelim = "\x00"

// Options is a set of option values keyed by name.
type Options map[string]any

// Store is the base configuration layer plus its scoped overrides.
type Store struct {
	mu sync.RWMutex
	k  *koanf.Koanf
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{k: koanf.New(storeDelim)}
}

// Configure merges opts into the base layer. Each value replaces the
// existing value of its key whole; map values are not merged.
func (s *Store) Configure(opts Options) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for key, val := range opts {
		if strings.Contains(key, storeDelim) {
			return fmt.Errorf("invalid option name %q", key)
		}
		s.k.Delete(key)
		if err := s.k.Set(key, val); err != nil {
			return fmt.Errorf("set %s: %w", key, err)
		}
	}
	return nil
}

// Get returns the non-nil value of key in local if present, else the current
// base value, else nil.
func (s *Store) Get(key string, local Options) any {
	if v, ok := local[key]; ok && v != nil {
		return v
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.k.Get(key)
}

// String returns Get(key, local) rendered as a string; nil renders as "".
func (s *Store) String(key string, local Options) string {
	switch v := s.Get(key, local).(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}

// Bool returns Get(key, local) interpreted as a boolean. Strings are parsed
// with strconv.ParseBool so values loaded from the environment behave.
func (s *Store) Bool(key string, local Options) bool {
	switch v := s.Get(key, local).(type) {
	case bool:
		return v
	case string:
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		return err == nil && b
	case int:
		return v != 0
	default:
		return false
	}
}

// All returns a copy of the base layer keyed by option name.
func (s *Store) All() Options {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Options(s.k.Raw())
}

// Push snapshots the whole base layer, merges opts into it, and returns a
// function restoring the snapshot. The restore function is idempotent.
func (s *Store) Push(opts Options) (restore func(), err error) {
	s.mu.Lock()
	saved := s.k.Copy()
	s.mu.Unlock()

	var once sync.Once
	restore = func() {
		once.Do(func() {
			s.mu.Lock()
			s.k = saved
			s.mu.Unlock()
		})
	}

	if err := s.Configure(opts); err != nil {
		restore()
		return func() {}, err
	}
	return restore, nil
}

// Scope runs fn with opts merged into the base layer. The previous layer is
// restored when fn returns, fails, or panics.
func (s *Store) Scope(opts Options, fn func() error) error {
	restore, err := s.Push(opts)
	if err != nil {
		return err
	}
	defer restore()
	return fn()
}
