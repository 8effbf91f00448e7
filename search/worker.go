package search

import (
	"context"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/rhyru9/osgit/core"
	"github.com/rhyru9/osgit/reporting"
)

const (
	// DefaultConcurrency is the number of files fetched at once per page
	DefaultConcurrency = 20
	// DefaultRawURL is the host serving raw file content
	DefaultRawURL = "https://raw.githubusercontent.com"

	githubWebURL = "https://github.com/"
	minDelay     = 300 * time.Millisecond
	maxDelay     = 800 * time.Millisecond
)

// RawURL converts a github.com blob URL into its raw.githubusercontent.com URL
func RawURL(htmlURL string) string {
	return rewriteRawURL(htmlURL, DefaultRawURL)
}

func rewriteRawURL(htmlURL, rawBase string) string {
	u := strings.Replace(htmlURL, githubWebURL, strings.TrimSuffix(rawBase, "/")+"/", 1)
	return strings.Replace(u, "/blob/", "/", 1)
}

// Worker fetches search hits and extracts subdomains from their content.
// SeenURLs and History are shared by every goroutine of a run.
type Worker struct {
	pattern     *regexp.Regexp
	showSource  bool
	rawBase     string
	concurrency int

	fetcher Fetcher
	seen    *core.StringSet
	history *core.History
	out     *core.Output
	jitter  *core.Jitter
	log     *reporting.Logger
	stats   *counters
}

// Extract returns the normalized subdomains matched in content, each once, in order of appearance
func (w *Worker) Extract(content string) []string {
	return extract(w.pattern, content)
}

func extract(pattern *regexp.Regexp, content string) []string {
	var subs []string
	local := make(map[string]bool)
	for _, m := range pattern.FindAllStringSubmatch(content, -1) {
		if len(m) < 2 {
			continue
		}
		sub := strings.ToLower(strings.TrimSpace(m[1]))
		if sub == "" || local[sub] {
			continue
		}
		local[sub] = true
		subs = append(subs, sub)
	}
	return subs
}

// Batch processes hits with bounded concurrency and returns once all are done
func (w *Worker) Batch(ctx context.Context, hits []Hit) {
	sem := make(chan struct{}, w.concurrency)
	var wg sync.WaitGroup

	for _, hit := range hits {
		wg.Add(1)
		sem <- struct{}{}
		go func(h Hit) {
			defer wg.Done()
			defer func() { <-sem }()
			w.Process(ctx, h)
		}(hit)
	}

	wg.Wait()
}

// Process handles a single hit. Errors are logged and never propagated.
func (w *Worker) Process(ctx context.Context, hit Hit) {
	if hit.HTMLURL == "" {
		return
	}
	rawURL := rewriteRawURL(hit.HTMLURL, w.rawBase)
	if !w.seen.Add(rawURL) {
		w.stats.duplicates.Add(1)
		return
	}

	if ctx.Err() != nil {
		return
	}
	w.jitter.Wait()

	content, err := w.fetcher.Fetch(ctx, rawURL)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		w.stats.fetchErrors.Add(1)
		w.log.Warn("Error fetching %s: %v", rawURL, err)
		return
	}
	w.stats.files.Add(1)

	var findings []core.Finding
	for _, sub := range w.Extract(content) {
		if w.showSource {
			w.history.Append(sub)
			findings = append(findings, core.NewFinding(sub, hit.HTMLURL))
			continue
		}
		if w.history.Add(sub) {
			findings = append(findings, core.NewFinding(sub, hit.HTMLURL))
		}
	}

	source := ""
	if w.showSource {
		source = hit.HTMLURL
	}
	w.out.WriteBlock(source, findings)
}
