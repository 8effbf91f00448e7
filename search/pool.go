package search

import (
	"math/rand"
	"sync"
	"time"
)

// Pool holds the tokens of a run. Tokens are handed out uniformly at random
// and discarded once GitHub rejects them.
type Pool struct {
	mu   sync.Mutex
	all  []string
	live []string
	rng  *rand.Rand
}

// NewPool creates a pool from tokens, dropping empty and duplicate entries
func NewPool(tokens []string) *Pool {
	seen := make(map[string]bool)
	var all []string
	for _, t := range tokens {
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		all = append(all, t)
	}
	p := &Pool{
		all: all,
		rng: rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	p.Reset()
	return p
}

// Size returns the number of tokens the pool was created with
func (p *Pool) Size() int {
	return len(p.all)
}

// Len returns the number of live tokens
func (p *Pool) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.live)
}

// Available returns a copy of the live tokens
func (p *Pool) Available() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.live))
	copy(out, p.live)
	return out
}

// SelectOne picks a live token at random, or returns ErrPoolEmpty
func (p *Pool) SelectOne() (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.live) == 0 {
		return "", ErrPoolEmpty
	}
	return p.live[p.rng.Intn(len(p.live))], nil
}

// Discard removes token from the live set, returns false if it was not live
func (p *Pool) Discard(token string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	for i, t := range p.live {
		if t == token {
			p.live = append(p.live[:i], p.live[i+1:]...)
			return true
		}
	}
	return false
}

// Reset makes every token live again
func (p *Pool) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.live = make([]string, len(p.all))
	copy(p.live, p.all)
}
