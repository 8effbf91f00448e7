package search

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rhyru9/osgit/core"
	"github.com/rhyru9/osgit/reporting"
)

// DefaultMaxPages matches GitHub's 1000 result cap at 100 results per page
const DefaultMaxPages = 10

// Options configures a discovery Session
type Options struct {
	Domain   string
	Extended bool
	// Query, when set, is used as is and Domain and Extended are ignored
	Query      *Query
	ShowSource bool
	Tokens     []string

	Concurrency int
	// MaxPages caps the pages requested per strategy, 0 means no cap
	MaxPages   int
	RawBaseURL string

	Client  *Client
	Fetcher Fetcher
	Output  *core.Output
	Logger  *reporting.Logger
	// Jitter delays each fetch, defaults to 300-800ms
	Jitter *core.Jitter
}

// Result summarizes a finished Session
type Result struct {
	Query *Query
	// Subdomains lists every reported entry in discovery order
	Subdomains []string
	// Unique is the number of distinct subdomains
	Unique   int
	Findings []core.Finding
	Stats    reporting.ScanStats
	Duration time.Duration
}

type counters struct {
	pages       atomic.Int64
	hits        atomic.Int64
	duplicates  atomic.Int64
	files       atomic.Int64
	fetchErrors atomic.Int64
	discarded   atomic.Int64
}

// Session drives code search over every strategy and feeds hits to the worker pool
type Session struct {
	query    *Query
	pool     *Pool
	client   *Client
	worker   *Worker
	history  *core.History
	out      *core.Output
	log      *reporting.Logger
	maxPages int
	stats    counters

	mu       sync.Mutex
	findings []core.Finding
}

// NewSession validates the target and tokens and prepares the shared run state
func NewSession(o Options) (*Session, error) {
	query := o.Query
	if query == nil {
		var err error
		if query, err = BuildQuery(o.Domain, o.Extended); err != nil {
			return nil, err
		}
	}
	pool := NewPool(o.Tokens)
	if pool.Size() == 0 {
		return nil, ErrNoCredentials
	}

	log := o.Logger
	if log == nil {
		log = reporting.Discard()
	}
	if o.Concurrency <= 0 {
		o.Concurrency = DefaultConcurrency
	}
	if o.RawBaseURL == "" {
		o.RawBaseURL = DefaultRawURL
	}
	if o.Client == nil {
		o.Client = NewClient(ClientOptions{}, log)
	}
	if o.Fetcher == nil {
		f, err := NewCollyFetcher(FetcherOptions{Concurrency: o.Concurrency, Logger: log.WithModule("fetch")})
		if err != nil {
			return nil, err
		}
		o.Fetcher = f
	}
	if o.Output == nil {
		o.Output, _ = core.NewOutput("", false, true)
	}
	if o.Jitter == nil {
		o.Jitter = core.NewJitter(minDelay, maxDelay)
	}

	s := &Session{
		query:    query,
		pool:     pool,
		client:   o.Client,
		history:  core.NewHistory(),
		out:      o.Output,
		log:      log,
		maxPages: o.MaxPages,
	}
	s.worker = &Worker{
		pattern:     query.Pattern,
		showSource:  o.ShowSource,
		rawBase:     o.RawBaseURL,
		concurrency: o.Concurrency,
		fetcher:     o.Fetcher,
		seen:        core.NewStringSet(),
		history:     s.history,
		out:         o.Output,
		jitter:      o.Jitter,
		log:         log.WithModule("fetch"),
		stats:       &s.stats,
	}
	o.Output.Callback = s.collect
	return s, nil
}

// Query returns the search term and pattern of the run
func (s *Session) Query() *Query {
	return s.query
}

// Pool returns the token pool of the run
func (s *Session) Pool() *Pool {
	return s.pool
}

// Run executes every strategy in order. Cancelling ctx stops the run once
// the current page batch has finished; the partial result is still returned.
func (s *Session) Run(ctx context.Context) (*Result, error) {
	start := time.Now()

	for _, st := range Strategies {
		if ctx.Err() != nil {
			break
		}
		s.log.Debug("Search mode: %s", st)
		s.runStrategy(ctx, st)
	}

	if err := s.out.Flush(); err != nil {
		s.log.Error("Failed to flush output: %v", err)
	}

	s.mu.Lock()
	findings := make([]core.Finding, len(s.findings))
	copy(findings, s.findings)
	s.mu.Unlock()

	res := &Result{
		Query:      s.query,
		Subdomains: s.history.Items(),
		Unique:     s.history.Unique(),
		Findings:   findings,
		Stats:      s.snapshot(),
		Duration:   time.Since(start),
	}
	if err := ctx.Err(); err != nil {
		return res, fmt.Errorf("discovery interrupted: %w", err)
	}
	return res, nil
}

// runStrategy pages through one sort/order combination until results run
// dry, the page cap is hit, or every token has been discarded. The pool is
// refilled at the start so a token rejected under one strategy gets another
// chance under the next.
func (s *Session) runStrategy(ctx context.Context, st Strategy) {
	s.pool.Reset()
	page := 1

	for ctx.Err() == nil {
		if s.maxPages > 0 && page > s.maxPages {
			s.log.Debug("Reached page limit (%d) for %s", s.maxPages, st)
			return
		}

		token, err := s.pool.SelectOne()
		if errors.Is(err, ErrPoolEmpty) {
			s.log.Debug("No tokens left for %s", st)
			return
		}

		s.log.Debug("Processing page %d", page)
		result, err := s.client.Search(ctx, token, s.query.Search, page, st)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			s.log.Debug("API Error: %v", err)
			s.pool.Discard(token)
			s.stats.discarded.Add(1)
			continue
		}
		s.stats.pages.Add(1)

		if len(result.Items) == 0 {
			return
		}
		s.stats.hits.Add(int64(len(result.Items)))
		s.worker.Batch(ctx, result.Items)
		page++
	}
}

func (s *Session) collect(f core.Finding) {
	s.mu.Lock()
	s.findings = append(s.findings, f)
	s.mu.Unlock()
}

func (s *Session) snapshot() reporting.ScanStats {
	return reporting.ScanStats{
		Pages:          int(s.stats.pages.Load()),
		Hits:           int(s.stats.hits.Load()),
		Duplicates:     int(s.stats.duplicates.Load()),
		FilesFetched:   int(s.stats.files.Load()),
		FetchErrors:    int(s.stats.fetchErrors.Load()),
		Discarded:      int(s.stats.discarded.Load()),
		RateLimitWaits: s.client.RateLimitWaits(),
		Subdomains:     s.history.Unique(),
	}
}
