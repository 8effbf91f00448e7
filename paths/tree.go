// Package paths lists the file paths of a GitHub repository from its git tree.
package paths

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rhyru9/osgit/reporting"
)

const (
	// DefaultAPIURL is the GitHub REST endpoint
	DefaultAPIURL = "https://api.github.com"

	defaultTimeout = 30 * time.Second
	defaultUA      = "osgit-paths"
)

var (
	// ErrNotFound means the repository or branch does not exist
	ErrNotFound = errors.New("repository or branch not found")
	// ErrForbidden means the repository is private or the client is rate limited
	ErrForbidden = errors.New("access forbidden, repository might be private or rate limited")
	// ErrInvalidResponse means the body was not a JSON tree
	ErrInvalidResponse = errors.New("invalid JSON response received")
)

// StatusError reports an unexpected HTTP status
type StatusError struct {
	Status int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.Status, http.StatusText(e.Status))
}

// APIError carries an error message returned by GitHub
type APIError struct {
	Message string
}

func (e *APIError) Error() string {
	return "GitHub API Error: " + e.Message
}

// Entry is one blob or tree of a repository
type Entry struct {
	Path string `json:"path"`
	Type string `json:"type"`
	Size int64  `json:"size,omitempty"`
}

// Tree is the recursive listing of a branch
type Tree struct {
	SHA       string  `json:"sha"`
	Truncated bool    `json:"truncated"`
	Entries   []Entry `json:"tree"`
}

// TreeOptions configures the TreeClient
type TreeOptions struct {
	BaseURL   string
	UserAgent string
	Token     string
	Timeout   time.Duration
}

// TreeClient fetches git trees from the GitHub API
type TreeClient struct {
	http *http.Client
	opts TreeOptions
	log  *reporting.Logger
}

// NewTreeClient creates a new TreeClient with sane defaults
func NewTreeClient(o TreeOptions, log *reporting.Logger) *TreeClient {
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
	return &TreeClient{
		http: &http.Client{Timeout: o.Timeout},
		opts: o,
		log:  log,
	}
}

// Fetch returns the recursive tree of repo
func (c *TreeClient) Fetch(ctx context.Context, repo Repo) (*Tree, error) {
	reqURL := fmt.Sprintf("%s/repos/%s/%s/git/trees/%s?recursive=1",
		c.opts.BaseURL, url.PathEscape(repo.Owner), url.PathEscape(repo.Name), url.PathEscape(repo.Branch))

	c.log.Info("Fetching tree from %s/%s (branch: %s)", repo.Owner, repo.Name, repo.Branch)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", c.opts.UserAgent)
	req.Header.Set("Accept", "application/vnd.github.v3+json")
	if c.opts.Token != "" {
		req.Header.Set("Authorization", "token "+c.opts.Token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("network error: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("%w: %s", ErrNotFound, repo)
	case resp.StatusCode == http.StatusForbidden:
		return nil, ErrForbidden
	case resp.StatusCode != http.StatusOK:
		return nil, &StatusError{Status: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("network error: %w", err)
	}

	var data struct {
		Message *string `json:"message"`
		Tree
	}
	if err := json.Unmarshal(body, &data); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	if data.Message != nil {
		return nil, &APIError{Message: *data.Message}
	}
	if data.Truncated {
		c.log.Warn("Tree for %s is truncated, some paths are missing", repo)
	}
	return &data.Tree, nil
}
