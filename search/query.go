package search

import (
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/net/publicsuffix"
)

// Query is the search term and extraction pattern derived from a target domain
type Query struct {
	Domain      string
	Registrable string
	Suffix      string
	Extended    bool
	// Search is the code search term, quoted, with hyphens escaped as %2D
	Search string
	// Pattern has exactly one capturing group holding the subdomain
	Pattern *regexp.Regexp
}

// BuildQuery derives the search term and pattern for domain.
// Extended mode searches for the registrable name alone and accepts any
// host under <registrable>.<suffix>; strict mode only accepts hosts under the
// literal domain.
func BuildQuery(domain string, extended bool) (*Query, error) {
	domain = NormalizeDomain(domain)
	registrable, suffix, err := SplitDomain(domain)
	if err != nil {
		return nil, err
	}

	q := &Query{
		Domain:      domain,
		Registrable: registrable,
		Suffix:      suffix,
		Extended:    extended,
	}

	const labels = `(?:[a-zA-Z0-9_-]+\.)*`
	var term, expr string
	if extended {
		term = `"` + registrable + `"`
		expr = `(?i)(` + labels + regexp.QuoteMeta(registrable) + `\.` + regexp.QuoteMeta(suffix) + `)`
	} else {
		term = `"` + registrable + "." + suffix + `"`
		expr = `(?i)(` + labels + regexp.QuoteMeta(domain) + `)`
	}

	q.Search = strings.ReplaceAll(term, "-", "%2D")
	q.Pattern, err = regexp.Compile(expr)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDomain, err)
	}
	return q, nil
}

// NormalizeDomain lower-cases domain and strips a scheme, path, port and trailing dot
func NormalizeDomain(domain string) string {
	d := strings.ToLower(strings.TrimSpace(domain))
	if i := strings.Index(d, "://"); i >= 0 {
		d = d[i+3:]
	}
	if i := strings.IndexAny(d, "/?#"); i >= 0 {
		d = d[:i]
	}
	if i := strings.LastIndex(d, ":"); i >= 0 {
		d = d[:i]
	}
	return strings.TrimSuffix(d, ".")
}

// SplitDomain returns the registrable name and public suffix of domain,
// e.g. "example" and "co.uk" for "api.example.co.uk". Only ICANN suffixes
// count: hosts under private entries such as herokuapp.com or github.io
// split against the registry suffix below them ("herokuapp" and "com").
func SplitDomain(domain string) (string, string, error) {
	if !validHost(domain) {
		return "", "", fmt.Errorf("%w: %q", ErrInvalidDomain, domain)
	}

	suffix, icann := publicsuffix.PublicSuffix(domain)
	for !icann {
		// Unlisted TLDs fall through to the implicit "*" rule, which is never ICANN.
		i := strings.Index(suffix, ".")
		if i < 0 {
			return "", "", fmt.Errorf("%w: no public suffix in %q", ErrInvalidDomain, domain)
		}
		suffix, icann = publicsuffix.PublicSuffix(suffix[i+1:])
	}
	if suffix == domain {
		return "", "", fmt.Errorf("%w: %q is a public suffix", ErrInvalidDomain, domain)
	}

	rest := strings.TrimSuffix(domain, "."+suffix)
	return rest[strings.LastIndex(rest, ".")+1:], suffix, nil
}

func validHost(domain string) bool {
	if len(domain) == 0 || len(domain) > 253 || !strings.Contains(domain, ".") {
		return false
	}
	for _, label := range strings.Split(domain, ".") {
		if label == "" || len(label) > 63 {
			return false
		}
		for _, r := range label {
			if !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9' || r == '-' || r == '_') {
				return false
			}
		}
	}
	return true
}
