package config

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	return NewStore(filepath.Join(t.TempDir(), "osgit", "config.yaml"))
}

func TestStoreLoadCreatesDefaults(t *testing.T) {
	s := newTestStore(t)

	f, err := s.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(f.GitHubTokens) != 0 {
		t.Errorf("GitHubTokens = %v, want empty", f.GitHubTokens)
	}
	info, err := os.Stat(s.Path())
	if err != nil {
		t.Fatalf("config file not created: %v", err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Errorf("config mode = %v, want 0600", info.Mode().Perm())
	}
}

func TestStoreLoadInvalid(t *testing.T) {
	s := newTestStore(t)
	if err := os.MkdirAll(filepath.Dir(s.Path()), 0o700); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(s.Path(), []byte("github_tokens: [unterminated"), 0o600); err != nil {
		t.Fatal(err)
	}

	_, err := s.Load()
	if !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("Load() error = %v, want ErrInvalidConfig", err)
	}
}

func TestStoreAddRemove(t *testing.T) {
	s := newTestStore(t)

	t.Run("add", func(t *testing.T) {
		added, err := s.Add("ghp_first")
		if err != nil || !added {
			t.Fatalf("Add() = %v, %v", added, err)
		}
		added, err = s.Add(" ghp_first ")
		if err != nil || added {
			t.Errorf("Add() duplicate = %v, %v, want false", added, err)
		}
		if _, err := s.Add("ghp_second"); err != nil {
			t.Fatal(err)
		}
		toks, err := s.Tokens()
		if err != nil {
			t.Fatal(err)
		}
		if !reflect.DeepEqual(toks, []string{"ghp_first", "ghp_second"}) {
			t.Errorf("Tokens() = %v", toks)
		}
	})

	t.Run("add empty", func(t *testing.T) {
		if _, err := s.Add("   "); err == nil {
			t.Error("Add() of an empty token should fail")
		}
	})

	t.Run("remove", func(t *testing.T) {
		removed, err := s.Remove("ghp_first")
		if err != nil || !removed {
			t.Fatalf("Remove() = %v, %v", removed, err)
		}
		removed, err = s.Remove("ghp_missing")
		if err != nil || removed {
			t.Errorf("Remove() missing = %v, %v, want false", removed, err)
		}
		toks, _ := s.Tokens()
		if !reflect.DeepEqual(toks, []string{"ghp_second"}) {
			t.Errorf("Tokens() = %v", toks)
		}
	})
}

func TestResolveTokens(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.Add("ghp_stored"); err != nil {
		t.Fatal(err)
	}

	t.Run("override wins", func(t *testing.T) {
		t.Setenv(EnvToken, "ghp_env")
		toks, src, err := ResolveTokens("ghp_flag", s)
		if err != nil {
			t.Fatal(err)
		}
		if !reflect.DeepEqual(toks, []string{"ghp_flag"}) || src != "command line" {
			t.Errorf("ResolveTokens() = %v, %q", toks, src)
		}
	})

	t.Run("env list", func(t *testing.T) {
		t.Setenv(EnvToken, "ghp_a, ghp_b,,ghp_a")
		toks, src, err := ResolveTokens("", s)
		if err != nil {
			t.Fatal(err)
		}
		if !reflect.DeepEqual(toks, []string{"ghp_a", "ghp_b"}) {
			t.Errorf("ResolveTokens() = %v", toks)
		}
		if src != "GITHUB_TOKEN env var" {
			t.Errorf("source = %q", src)
		}
	})

	t.Run("store", func(t *testing.T) {
		t.Setenv(EnvToken, "")
		toks, src, err := ResolveTokens("", s)
		if err != nil {
			t.Fatal(err)
		}
		if !reflect.DeepEqual(toks, []string{"ghp_stored"}) || src != s.Path() {
			t.Errorf("ResolveTokens() = %v, %q", toks, src)
		}
	})
}

func TestDefaultPathEnv(t *testing.T) {
	t.Setenv(EnvConfigPath, "/tmp/osgit-test.yaml")
	p, err := DefaultPath()
	if err != nil {
		t.Fatal(err)
	}
	if p != "/tmp/osgit-test.yaml" {
		t.Errorf("DefaultPath() = %q", p)
	}
}

func TestMask(t *testing.T) {
	tests := []struct {
		token string
		want  string
	}{
		{"ghp_1234567890abcdef", "ghp_1234********cdef"},
		{"abcdefghijklm", "abcdefgh*jklm"},
		{"abcdefgh", "abcd****gh"},
		{"abc", "****"},
	}
	for _, tt := range tests {
		t.Run(tt.token, func(t *testing.T) {
			if got := Mask(tt.token); got != tt.want {
				t.Errorf("Mask(%q) = %q, want %q", tt.token, got, tt.want)
			}
		})
	}
}

func TestLooksLikePAT(t *testing.T) {
	tests := []struct {
		token string
		want  bool
	}{
		{"ghp_abc", true},
		{"github_pat_abc", true},
		{"0123456789012345678901234567890123456789", true},
		{"random", false},
	}
	for _, tt := range tests {
		if got := LooksLikePAT(tt.token); got != tt.want {
			t.Errorf("LooksLikePAT(%q) = %v, want %v", tt.token, got, tt.want)
		}
	}
}
