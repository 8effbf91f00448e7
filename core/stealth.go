package core

import (
	"math/rand"
	"sync"
	"time"
)

// Random User-Agent list for rotation on the raw-content host
var UserAgents = []string{
	// Chrome on Windows
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/119.0.0.0 Safari/537.36",
	// Chrome on Mac
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	// Firefox
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:121.0) Gecko/20100101 Firefox/121.0",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10.15; rv:121.0) Gecko/20100101 Firefox/121.0",
	"Mozilla/5.0 (X11; Linux x86_64; rv:121.0) Gecko/20100101 Firefox/121.0",
	// Safari on Mac
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.2 Safari/605.1.15",
	// Chrome on Linux
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
}

// Jitter produces random delays and picks between a min and max bound.
// Safe for concurrent use.
type Jitter struct {
	min time.Duration
	max time.Duration
	mu  sync.Mutex
	rng *rand.Rand
	// Sleep is swapped out in tests
	Sleep func(time.Duration)
}

// NewJitter creates a Jitter producing delays in [min, max)
func NewJitter(min, max time.Duration) *Jitter {
	return &Jitter{
		min:   min,
		max:   max,
		rng:   rand.New(rand.NewSource(time.Now().UnixNano())),
		Sleep: time.Sleep,
	}
}

// Delay returns a random delay with jitter
func (j *Jitter) Delay() time.Duration {
	if j.max <= j.min {
		return j.min
	}
	j.mu.Lock()
	n := j.rng.Int63n(int64(j.max - j.min))
	j.mu.Unlock()
	return j.min + time.Duration(n)
}

// Wait sleeps for a random delay
func (j *Jitter) Wait() {
	j.Sleep(j.Delay())
}

// Intn returns a random int in [0, n)
func (j *Jitter) Intn(n int) int {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.rng.Intn(n)
}

// UserAgent returns a random User-Agent string
func (j *Jitter) UserAgent() string {
	return UserAgents[j.Intn(len(UserAgents))]
}
