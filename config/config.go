// Package config stores the GitHub tokens osgit rotates through in a YAML file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	// EnvConfigPath overrides the location of the config file
	EnvConfigPath = "OSGIT_CONFIG"
	// EnvToken supplies comma-separated tokens without touching the config file
	EnvToken = "GITHUB_TOKEN"

	defaultVersion = "v0.0.1"
)

// ErrInvalidConfig is returned when the config file exists but cannot be parsed
var ErrInvalidConfig = errors.New("invalid config file")

// File is the on-disk layout of the config file
type File struct {
	GitHubTokens []string `yaml:"github_tokens"`
	Version      string   `yaml:"version"`
	Author       string   `yaml:"author,omitempty"`
}

// Default returns an empty configuration
func Default() *File {
	return &File{
		GitHubTokens: []string{},
		Version:      defaultVersion,
	}
}

// DefaultPath returns $OSGIT_CONFIG or <user config dir>/osgit/config.yaml
func DefaultPath() (string, error) {
	if p := os.Getenv(EnvConfigPath); p != "" {
		return p, nil
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to locate config directory: %w", err)
	}
	return filepath.Join(dir, "osgit", "config.yaml"), nil
}

// Store reads and writes the config file
type Store struct {
	path string
}

// NewStore creates a Store backed by path
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Path returns the config file location
func (s *Store) Path() string {
	return s.path
}

// Load reads the config file, creating it with defaults when it does not exist
func (s *Store) Load() (*File, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		f := Default()
		if err := s.Save(f); err != nil {
			return nil, err
		}
		return f, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", s.path, err)
	}

	f := Default()
	if err := yaml.Unmarshal(data, f); err != nil {
		return nil, fmt.Errorf("%w %s: %v", ErrInvalidConfig, s.path, err)
	}
	f.GitHubTokens = cleanTokens(f.GitHubTokens)
	return f, nil
}

// Save writes f to the config file, creating parent directories as needed
func (s *Store) Save(f *File) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := yaml.Marshal(f)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config file %s: %w", s.path, err)
	}
	return nil
}

// Tokens returns the stored tokens
func (s *Store) Tokens() ([]string, error) {
	f, err := s.Load()
	if err != nil {
		return nil, err
	}
	return f.GitHubTokens, nil
}

// Add stores token, returns false if it was already present
func (s *Store) Add(token string) (bool, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return false, errors.New("token cannot be empty")
	}
	f, err := s.Load()
	if err != nil {
		return false, err
	}
	for _, t := range f.GitHubTokens {
		if t == token {
			return false, nil
		}
	}
	f.GitHubTokens = append(f.GitHubTokens, token)
	return true, s.Save(f)
}

// Remove deletes token, returns false if it was not present
func (s *Store) Remove(token string) (bool, error) {
	token = strings.TrimSpace(token)
	f, err := s.Load()
	if err != nil {
		return false, err
	}
	kept := f.GitHubTokens[:0]
	removed := false
	for _, t := range f.GitHubTokens {
		if t == token {
			removed = true
			continue
		}
		kept = append(kept, t)
	}
	if !removed {
		return false, nil
	}
	f.GitHubTokens = kept
	return true, s.Save(f)
}

// ResolveTokens picks the tokens for a run: an explicit override wins,
// then $GITHUB_TOKEN, then the config file. The second value names the source.
func ResolveTokens(override string, s *Store) ([]string, string, error) {
	if t := strings.TrimSpace(override); t != "" {
		return []string{t}, "command line", nil
	}
	if env := os.Getenv(EnvToken); env != "" {
		if toks := cleanTokens(strings.Split(env, ",")); len(toks) > 0 {
			return toks, EnvToken + " env var", nil
		}
	}
	toks, err := s.Tokens()
	if err != nil {
		return nil, "", err
	}
	return toks, s.Path(), nil
}

// Mask hides the middle of a token for display
func Mask(token string) string {
	n := len(token)
	switch {
	case n > 12:
		return token[:8] + strings.Repeat("*", n-12) + token[n-4:]
	case n >= 4:
		return token[:4] + "****" + token[n-2:]
	default:
		return "****"
	}
}

// LooksLikePAT reports whether token has the shape of a GitHub personal access token
func LooksLikePAT(token string) bool {
	return strings.HasPrefix(token, "ghp_") || strings.HasPrefix(token, "github_pat_") || len(token) == 40
}

func cleanTokens(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]bool)
	for _, t := range in {
		t = strings.TrimSpace(t)
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}
