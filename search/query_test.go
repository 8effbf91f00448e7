package search

import (
	"errors"
	"testing"
)

func TestBuildQueryStrict(t *testing.T) {
	tests := []struct {
		domain      string
		search      string
		registrable string
		suffix      string
		match       []string
		noMatch     []string
	}{
		{
			domain:      "example.com",
			search:      `"example.com"`,
			registrable: "example",
			suffix:      "com",
			match:       []string{"foo.example.com", "a.b.example.com", "example.com"},
			noMatch:     []string{"foo.other.org", "example.org"},
		},
		{
			domain:      "api.example.com",
			search:      `"example.com"`,
			registrable: "example",
			suffix:      "com",
			match:       []string{"v1.api.example.com"},
			noMatch:     []string{"www.example.com", "foo.other.net"},
		},
		{
			domain:      "my-site.co.uk",
			search:      `"my%2Dsite.co.uk"`,
			registrable: "my-site",
			suffix:      "co.uk",
			match:       []string{"dev.my-site.co.uk"},
			noMatch:     []string{"foo.othersite.com"},
		},
		{
			domain:      "herokuapp.com",
			search:      `"herokuapp.com"`,
			registrable: "herokuapp",
			suffix:      "com",
			match:       []string{"myapp.herokuapp.com"},
			noMatch:     []string{"herokuapp.org"},
		},
		{
			domain:      "github.io",
			search:      `"github.io"`,
			registrable: "github",
			suffix:      "io",
			match:       []string{"user.github.io"},
			noMatch:     []string{"github.com"},
		},
		{
			domain:      "s3.amazonaws.com",
			search:      `"amazonaws.com"`,
			registrable: "amazonaws",
			suffix:      "com",
			match:       []string{"bucket.s3.amazonaws.com"},
			noMatch:     []string{"ec2.amazonaws.com"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.domain, func(t *testing.T) {
			q, err := BuildQuery(tt.domain, false)
			if err != nil {
				t.Fatalf("BuildQuery() error = %v", err)
			}
			if q.Search != tt.search {
				t.Errorf("Search = %q, want %q", q.Search, tt.search)
			}
			if q.Registrable != tt.registrable || q.Suffix != tt.suffix {
				t.Errorf("split = %q/%q, want %q/%q", q.Registrable, q.Suffix, tt.registrable, tt.suffix)
			}
			for _, s := range tt.match {
				m := q.Pattern.FindStringSubmatch(s)
				if m == nil || m[1] != s {
					t.Errorf("pattern should capture %q, got %v", s, m)
				}
			}
			for _, s := range tt.noMatch {
				if q.Pattern.MatchString(s) {
					t.Errorf("pattern should not match %q", s)
				}
			}
		})
	}
}

func TestBuildQueryExtended(t *testing.T) {
	q, err := BuildQuery("api.example.com", true)
	if err != nil {
		t.Fatalf("BuildQuery() error = %v", err)
	}
	if q.Search != `"example"` {
		t.Errorf("Search = %q", q.Search)
	}
	for _, s := range []string{"www.example.com", "example.com", "a.b.c.example.com"} {
		m := q.Pattern.FindStringSubmatch(s)
		if m == nil || m[1] != s {
			t.Errorf("pattern should capture %q, got %v", s, m)
		}
	}
	if q.Pattern.MatchString("example.org") {
		t.Error("pattern should not match a different suffix")
	}
}

func TestBuildQueryExtendedPrivateSuffix(t *testing.T) {
	q, err := BuildQuery("app.foo.herokuapp.com", true)
	if err != nil {
		t.Fatalf("BuildQuery() error = %v", err)
	}
	if q.Registrable != "herokuapp" || q.Suffix != "com" {
		t.Errorf("split = %q/%q, want herokuapp/com", q.Registrable, q.Suffix)
	}
	if q.Search != `"herokuapp"` {
		t.Errorf("Search = %q", q.Search)
	}
	if !q.Pattern.MatchString("other.herokuapp.com") {
		t.Error("pattern should match sibling apps")
	}
}

func TestBuildQueryCaseInsensitive(t *testing.T) {
	q, err := BuildQuery("Example.COM", false)
	if err != nil {
		t.Fatal(err)
	}
	if q.Domain != "example.com" {
		t.Errorf("Domain = %q", q.Domain)
	}
	if !q.Pattern.MatchString("API.EXAMPLE.COM") {
		t.Error("pattern should be case-insensitive")
	}
}

func TestBuildQueryInvalid(t *testing.T) {
	for _, d := range []string{"", "localhost", "com", "co.uk", "exa mple.com", "example.notarealtld", "a..b.com"} {
		t.Run(d, func(t *testing.T) {
			_, err := BuildQuery(d, false)
			if !errors.Is(err, ErrInvalidDomain) {
				t.Errorf("BuildQuery(%q) error = %v, want ErrInvalidDomain", d, err)
			}
		})
	}
}

func TestNormalizeDomain(t *testing.T) {
	tests := map[string]string{
		"https://Example.com:443/path?q=1": "example.com",
		"  sub.example.com. ":              "sub.example.com",
		"example.com":                      "example.com",
	}
	for in, want := range tests {
		if got := NormalizeDomain(in); got != want {
			t.Errorf("NormalizeDomain(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestEscapeQuery(t *testing.T) {
	got := escapeQuery(`"my%2Dsite.com"`)
	if got != "%22my%2Dsite.com%22" {
		t.Errorf("escapeQuery() = %q", got)
	}
}
