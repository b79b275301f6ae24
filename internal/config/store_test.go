package config

import (
	"errors"
	"reflect"
	"testing"
)

func TestStoreConfigureAndGet(t *testing.T) {
	s := NewStore()
	if err := s.Configure(Options{KeyService: "anthropic", KeyModel: "claude-haiku-4-5-20251001"}); err != nil {
		t.Fatalf("Configure() error = %v", err)
	}
	if err := s.Configure(Options{KeyModel: "claude-3-5-sonnet-20240620"}); err != nil {
		t.Fatalf("Configure() error = %v", err)
	}

	if got := s.String(KeyService, nil); got != "anthropic" {
		t.Errorf("service = %q, want anthropic", got)
	}
	if got := s.String(KeyModel, nil); got != "claude-3-5-sonnet-20240620" {
		t.Errorf("model = %q, want overwritten value", got)
	}
	if got := s.Get("missing", nil); got != nil {
		t.Errorf("Get(missing) = %v, want nil", got)
	}
}

func TestStoreConfigureReplacesWholeValues(t *testing.T) {
	s := NewStore()
	steps := []Options{
		{"extra": map[string]any{"a": 1}},
		{"extra": map[string]any{"b": 2}},
		{KeyService: "openai"},
		{KeyService + ".name": "other"},
	}
	for _, opts := range steps {
		if err := s.Configure(opts); err != nil {
			t.Fatalf("Configure(%v) error = %v", opts, err)
		}
	}

	if got, want := s.Get("extra", nil), map[string]any{"b": 2}; !reflect.DeepEqual(got, want) {
		t.Errorf("extra = %v, want %v", got, want)
	}
	if got := s.String(KeyService, nil); got != "openai" {
		t.Errorf("service = %q, want openai", got)
	}
	if got := s.String(KeyService+".name", nil); got != "other" {
		t.Errorf("service.name = %q, want other", got)
	}
}

func TestStoreGetPrefersLocal(t *testing.T) {
	s := NewStore()
	_ = s.Configure(Options{KeyService: "anthropic"})

	tests := []struct {
		name  string
		local Options
		want  string
	}{
		{"no local", nil, "anthropic"},
		{"local override", Options{KeyService: "null"}, "null"},
		{"nil local value falls back", Options{KeyService: nil}, "anthropic"},
		{"unrelated local key", Options{KeyModel: "x"}, "anthropic"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := s.String(KeyService, tt.local); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestStoreBool(t *testing.T) {
	s := NewStore()
	_ = s.Configure(Options{KeyEchoCall: true, KeyEchoResponse: "true", KeyEchoService: "nope"})

	if !s.Bool(KeyEchoCall, nil) {
		t.Error("echo_call should be true")
	}
	if !s.Bool(KeyEchoResponse, nil) {
		t.Error("echo_response parsed from string should be true")
	}
	if s.Bool(KeyEchoService, nil) {
		t.Error("unparseable string should be false")
	}
	if s.Bool("unset", nil) {
		t.Error("unset key should be false")
	}
}

func TestStoreScopeRestores(t *testing.T) {
	s := NewStore()
	_ = s.Configure(Options{KeyService: "anthropic", KeyModel: "m1"})
	before := s.All()

	err := s.Scope(Options{KeyEchoCall: true, KeyModel: "m2"}, func() error {
		if got := s.String(KeyModel, nil); got != "m2" {
			t.Errorf("inside scope model = %q, want m2", got)
		}
		if !s.Bool(KeyEchoCall, nil) {
			t.Error("inside scope echo_call should be true")
		}
		// Permanent changes made inside a scope are reverted too.
		return s.Configure(Options{KeyService: "null"})
	})
	if err != nil {
		t.Fatalf("Scope() error = %v", err)
	}

	if after := s.All(); !reflect.DeepEqual(before, after) {
		t.Errorf("after scope = %v, want %v", after, before)
	}
}

func TestStoreScopeRestoresOnError(t *testing.T) {
	s := NewStore()
	_ = s.Configure(Options{KeyService: "anthropic"})
	before := s.All()

	boom := errors.New("boom")
	err := s.Scope(Options{KeyService: "openai", KeyEchoService: true}, func() error {
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("Scope() error = %v, want %v", err, boom)
	}

	for key, want := range before {
		if got := s.Get(key, nil); !reflect.DeepEqual(got, want) {
			t.Errorf("Get(%q) = %v, want %v", key, got, want)
		}
	}
	if s.Get(KeyEchoService, nil) != nil {
		t.Error("scoped-only key leaked out of the scope")
	}
}

func TestStoreScopeRestoresOnPanic(t *testing.T) {
	s := NewStore()
	_ = s.Configure(Options{KeyService: "anthropic"})

	func() {
		defer func() { _ = recover() }()
		_ = s.Scope(Options{KeyService: "gemini"}, func() error {
			panic("interrupted")
		})
	}()

	if got := s.String(KeyService, nil); got != "anthropic" {
		t.Errorf("service after panic = %q, want anthropic", got)
	}
}

func TestStoreNestedScopes(t *testing.T) {
	s := NewStore()
	_ = s.Configure(Options{KeyService: "anthropic"})

	_ = s.Scope(Options{KeyModel: "outer"}, func() error {
		_ = s.Scope(Options{KeyModel: "inner", KeyEchoCall: true}, func() error {
			if got := s.String(KeyModel, nil); got != "inner" {
				t.Errorf("inner model = %q", got)
			}
			if got := s.String(KeyService, nil); got != "anthropic" {
				t.Errorf("inner scope should see outer service, got %q", got)
			}
			return nil
		})
		if got := s.String(KeyModel, nil); got != "outer" {
			t.Errorf("outer model after inner exit = %q, want outer", got)
		}
		if s.Bool(KeyEchoCall, nil) {
			t.Error("inner-only key visible in outer scope")
		}
		return nil
	})

	if got := s.Get(KeyModel, nil); got != nil {
		t.Errorf("model after all scopes = %v, want nil", got)
	}
}

func TestPushRestoreIsIdempotent(t *testing.T) {
	s := NewStore()
	_ = s.Configure(Options{KeyModel: "base"})

	restore, err := s.Push(Options{KeyModel: "scoped"})
	if err != nil {
		t.Fatalf("Push() error = %v", err)
	}
	restore()
	_ = s.Configure(Options{KeyModel: "later"})
	restore()

	if got := s.String(KeyModel, nil); got != "later" {
		t.Errorf("second restore clobbered later config: model = %q", got)
	}
}
