package search

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gocolly/colly/v2"

	"github.com/rhyru9/osgit/core"
	"github.com/rhyru9/osgit/reporting"
)

const bodyKey = "body"

// DefaultMaxBodySize caps a downloaded raw file
const DefaultMaxBodySize = 32 << 20

// Fetcher retrieves the content of a raw file URL
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string) (string, error)
}

// FetcherOptions configures the raw content fetcher
type FetcherOptions struct {
	Timeout     time.Duration
	Concurrency int
	// RandomTLS randomizes the TLS fingerprint of every connection
	RandomTLS bool
	// MaxBodySize truncates larger files, defaults to DefaultMaxBodySize
	MaxBodySize int
	Logger      *reporting.Logger
}

// CollyFetcher downloads raw files through a synchronous colly collector.
// Deduplication is done by the caller, so revisits are allowed.
type CollyFetcher struct {
	collector *colly.Collector
	jitter    *core.Jitter
}

// NewCollyFetcher creates a fetcher with a bounded per-host parallelism
func NewCollyFetcher(o FetcherOptions) (*CollyFetcher, error) {
	if o.Timeout <= 0 {
		o.Timeout = defaultTimeout
	}
	if o.Concurrency <= 0 {
		o.Concurrency = DefaultConcurrency
	}
	if o.MaxBodySize <= 0 {
		o.MaxBodySize = DefaultMaxBodySize
	}
	log := o.Logger
	if log == nil {
		log = reporting.Discard()
	}

	c := colly.NewCollector(
		colly.AllowURLRevisit(),
		colly.IgnoreRobotsTxt(),
		colly.MaxBodySize(o.MaxBodySize),
	)
	c.SetRequestTimeout(o.Timeout)
	if o.RandomTLS {
		c.WithTransport(core.NewRandomTLSTransport(o.Timeout))
	}
	if err := c.Limit(&colly.LimitRule{
		DomainGlob:  "*",
		Parallelism: o.Concurrency,
	}); err != nil {
		return nil, fmt.Errorf("failed to set fetch limits: %w", err)
	}

	c.OnResponse(func(r *colly.Response) {
		if len(r.Body) >= o.MaxBodySize {
			log.Warn("Content of %s truncated at %d bytes", r.Request.URL, o.MaxBodySize)
		}
		r.Ctx.Put(bodyKey, string(r.Body))
	})

	return &CollyFetcher{
		collector: c,
		jitter:    core.NewJitter(0, 0),
	}, nil
}

// Fetch downloads rawURL and returns its body. Non-2xx responses are errors.
func (f *CollyFetcher) Fetch(ctx context.Context, rawURL string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	reqCtx := colly.NewContext()
	hdr := http.Header{}
	hdr.Set("User-Agent", f.jitter.UserAgent())

	if err := f.collector.Request(http.MethodGet, rawURL, nil, reqCtx, hdr); err != nil {
		return "", err
	}
	body, _ := reqCtx.GetAny(bodyKey).(string)
	return body, nil
}
