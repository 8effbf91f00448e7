package search

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"

	"github.com/rhyru9/osgit/reporting"
)

const (
	// DefaultAPIURL is the GitHub REST endpoint
	DefaultAPIURL = "https://api.github.com"
	// PerPage is the largest page size code search accepts
	PerPage = 100

	defaultTimeout   = 10 * time.Second
	defaultUA        = "osgit"
	maxRateLimitWait = time.Hour
	// a throttled request is reissued at most this many times
	maxRateLimitRetries = 1
)

// Hit is a single code search result
type Hit struct {
	Name       string `json:"name"`
	Path       string `json:"path"`
	HTMLURL    string `json:"html_url"`
	Repository struct {
		FullName string `json:"full_name"`
	} `json:"repository"`
}

// SearchPage is one page of code search results
type SearchPage struct {
	TotalCount        int   `json:"total_count"`
	IncompleteResults bool  `json:"incomplete_results"`
	Items             []Hit `json:"items"`
}

// Strategy is a sort/order combination used to walk the capped result window
type Strategy struct {
	Sort  string
	Order string
}

func (s Strategy) String() string {
	if s.Sort == "" {
		return "best-match " + s.Order
	}
	return s.Sort + " " + s.Order
}

// Strategies are run in this order by every session
var Strategies = []Strategy{
	{Sort: "indexed", Order: "desc"},
	{Sort: "indexed", Order: "asc"},
	{Sort: "", Order: "desc"},
}

// ClientOptions configures the Client
type ClientOptions struct {
	BaseURL   string
	UserAgent string
	Timeout   time.Duration

	// RequestsPerMinute paces search calls per token, 0 disables pacing
	RequestsPerMinute float64
}

// Client issues code search requests and waits out short rate limit windows
type Client struct {
	http  *http.Client
	opts  ClientOptions
	log   *reporting.Logger
	now   func() time.Time
	sleep func(context.Context, time.Duration) error

	mu       sync.Mutex
	limiters map[string]*rate.Limiter

	requests atomic.Int64
	waits    atomic.Int64
}

// NewClient creates a new Client with sane defaults
func NewClient(o ClientOptions, log *reporting.Logger) *Client {
	if o.BaseURL == "" {
		o.BaseURL = DefaultAPIURL
	}
	o.BaseURL = strings.TrimSuffix(o.BaseURL, "/")
	if o.UserAgent == "" {
		o.UserAgent = defaultUA
	}
	if o.Timeout <= 0 {
		o.Timeout = defaultTimeout
	}
	if log == nil {
		log = reporting.Discard()
	}
	return &Client{
		http:     &http.Client{Timeout: o.Timeout},
		opts:     o,
		log:      log.WithModule("github"),
		now:      time.Now,
		sleep:    sleepContext,
		limiters: make(map[string]*rate.Limiter),
	}
}

// Requests returns the number of HTTP requests sent
func (c *Client) Requests() int {
	return int(c.requests.Load())
}

// RateLimitWaits returns how many times the client slept until a reset
func (c *Client) RateLimitWaits() int {
	return int(c.waits.Load())
}

// Search fetches one page of code search results for query using token.
// A 403/429 whose reset is less than an hour away is waited out and the
// identical request is sent once more.
func (c *Client) Search(ctx context.Context, token, query string, page int, st Strategy) (*SearchPage, error) {
	reqURL := c.searchURL(query, page, st)
	c.log.Debug(">>> %s", reqURL)

	for attempt := 0; ; attempt++ {
		if err := c.pace(ctx, token); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrNetwork, err)
		}

		status, header, body, err := c.get(ctx, token, reqURL)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrNetwork, err)
		}

		if status == http.StatusForbidden || status == http.StatusTooManyRequests {
			wait, ok := c.resetWait(header)
			if ok && attempt < maxRateLimitRetries {
				c.waits.Add(1)
				c.log.Warn("Rate limited. Waiting %ds...", int(wait/time.Second))
				if err := c.sleep(ctx, wait+time.Second); err != nil {
					return nil, fmt.Errorf("%w: %v", ErrNetwork, err)
				}
				continue
			}
			return nil, decodeThrottled(status, body)
		}

		return decodePage(status, body)
	}
}

func (c *Client) searchURL(query string, page int, st Strategy) string {
	return fmt.Sprintf("%s/search/code?per_page=%d&s=%s&type=Code&o=%s&q=%s&page=%d",
		c.opts.BaseURL, PerPage, url.QueryEscape(st.Sort), url.QueryEscape(st.Order), escapeQuery(query), page)
}

func (c *Client) get(ctx context.Context, token, reqURL string) (int, http.Header, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return 0, nil, nil, err
	}
	req.Header.Set("User-Agent", c.opts.UserAgent)
	req.Header.Set("Accept", "application/vnd.github.v3+json")
	if token != "" {
		req.Header.Set("Authorization", "token "+token)
	}

	c.requests.Add(1)
	resp, err := c.http.Do(req)
	if err != nil {
		return 0, nil, nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, nil, err
	}
	return resp.StatusCode, resp.Header, body, nil
}

// resetWait reports how long to sleep before the rate limit window resets.
// Waits of an hour or more are not honored.
func (c *Client) resetWait(h http.Header) (time.Duration, bool) {
	var wait time.Duration
	if v := h.Get("X-RateLimit-Reset"); v != "" {
		reset, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil {
			return 0, false
		}
		wait = time.Duration(reset-c.now().Unix()) * time.Second
	} else if v := h.Get("Retry-After"); v != "" {
		secs, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return 0, false
		}
		wait = time.Duration(secs) * time.Second
	}
	if wait <= 0 || wait >= maxRateLimitWait {
		return 0, false
	}
	return wait, true
}

func (c *Client) pace(ctx context.Context, token string) error {
	if c.opts.RequestsPerMinute <= 0 {
		return nil
	}
	c.mu.Lock()
	l, ok := c.limiters[token]
	if !ok {
		l = rate.NewLimiter(rate.Limit(c.opts.RequestsPerMinute/60), 1)
		c.limiters[token] = l
	}
	c.mu.Unlock()
	return l.Wait(ctx)
}

type searchResponse struct {
	Message          *string `json:"message"`
	DocumentationURL *string `json:"documentation_url"`
	SearchPage
}

func decodePage(status int, body []byte) (*SearchPage, error) {
	var r searchResponse
	if err := json.Unmarshal(body, &r); err != nil {
		if status != http.StatusOK {
			return nil, &APIError{Status: status, Message: http.StatusText(status)}
		}
		return nil, fmt.Errorf("%w: invalid JSON response: %v", ErrNetwork, err)
	}
	if r.Message != nil || r.DocumentationURL != nil {
		return nil, &APIError{Status: status, Message: deref(r.Message), DocumentationURL: deref(r.DocumentationURL)}
	}
	if status != http.StatusOK {
		return nil, &APIError{Status: status, Message: http.StatusText(status)}
	}
	return &r.SearchPage, nil
}

func decodeThrottled(status int, body []byte) error {
	e := &APIError{Status: status, Message: "rate limit exceeded", RateLimited: true}
	var r searchResponse
	if json.Unmarshal(body, &r) == nil {
		if r.Message != nil {
			e.Message = *r.Message
		}
		e.DocumentationURL = deref(r.DocumentationURL)
	}
	return e
}

// escapeQuery URL-encodes a search term while keeping the %2D hyphen escapes intact
func escapeQuery(q string) string {
	parts := strings.Split(q, "%2D")
	for i, p := range parts {
		parts[i] = url.QueryEscape(p)
	}
	return strings.Join(parts, "%2D")
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
