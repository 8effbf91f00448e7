package core

import (
	"regexp"
	"sort"
	"strings"
	"sync"
)

// StringSet is a concurrency-safe set; Add is an atomic test-and-set
type StringSet struct {
	mu    sync.RWMutex
	items map[string]struct{}
}

// NewStringSet creates an empty StringSet
func NewStringSet() *StringSet {
	return &StringSet{items: make(map[string]struct{})}
}

// Add inserts item and reports whether it was absent
func (s *StringSet) Add(item string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[item]; ok {
		return false
	}
	s.items[item] = struct{}{}
	return true
}

// Contains reports whether item is in the set
func (s *StringSet) Contains(item string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.items[item]
	return ok
}

// Len returns the number of items in the set
func (s *StringSet) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// History records subdomains in the order they were reported.
// Source mode may append the same value more than once; Unique counts distinct values.
type History struct {
	mu    sync.Mutex
	order []string
	seen  map[string]bool
}

// NewHistory creates an empty History
func NewHistory() *History {
	return &History{seen: make(map[string]bool)}
}

// Add records item only if it has never been recorded, returns true if it was new
func (h *History) Add(item string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.seen[item] {
		return false
	}
	h.seen[item] = true
	h.order = append(h.order, item)
	return true
}

// Append records item unconditionally
func (h *History) Append(item string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.seen[item] = true
	h.order = append(h.order, item)
}

// Items returns a copy of every recorded entry in insertion order
func (h *History) Items() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]string, len(h.order))
	copy(out, h.order)
	return out
}

// Unique returns the number of distinct recorded entries
func (h *History) Unique() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.seen)
}

// SortedUnique returns the distinct strings of items in ascending order
func SortedUnique(items []string) []string {
	if len(items) == 0 {
		return nil
	}
	sorted := append([]string(nil), items...)
	sort.Strings(sorted)
	out := sorted[:1]
	for _, item := range sorted[1:] {
		if item != out[len(out)-1] {
			out = append(out, item)
		}
	}
	return out
}

var ansiPattern = regexp.MustCompile(`\x1b\[[0-9;]*m`)

// StripANSI removes terminal color sequences
func StripANSI(s string) string {
	if !strings.Contains(s, "\x1b") {
		return s
	}
	return ansiPattern.ReplaceAllString(s, "")
}
