package paths

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"reflect"
	"sync"
	"testing"
)

func TestParseORB(t *testing.T) {
	tests := []struct {
		in      string
		want    Repo
		wantErr bool
	}{
		{in: "microsoft,vscode,main", want: Repo{"microsoft", "vscode", "main"}},
		{in: " user , my.repo_1 , feature/x ", want: Repo{"user", "my.repo_1", "feature/x"}},
		{in: "owner,repo", wantErr: true},
		{in: "owner,repo,main,extra", wantErr: true},
		{in: "owner,,main", wantErr: true},
		{in: "own er,repo,main", wantErr: true},
		{in: "owner,re$po,main", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseORB(tt.in)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidORB) {
					t.Errorf("ParseORB() error = %v, want ErrInvalidORB", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseORB() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("ParseORB() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestExtract(t *testing.T) {
	tree := &Tree{Entries: []Entry{
		{Path: "a/b/c", Type: "blob"},
		{Path: "a/b/d", Type: "blob"},
		{Path: "a/x", Type: "blob"},
		{Path: "a", Type: "tree"},
		{Path: ""},
	}}

	t.Run("segments", func(t *testing.T) {
		got := Extract(tree, false)
		want := []string{"a", "b", "c", "d", "x"}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("Extract() = %v, want %v", got, want)
		}
	})

	t.Run("full paths", func(t *testing.T) {
		got := Extract(tree, true)
		want := []string{"a", "a/b/c", "a/b/d", "a/x"}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("Extract() = %v, want %v", got, want)
		}
	})

	t.Run("nil tree", func(t *testing.T) {
		if got := Extract(nil, true); got != nil {
			t.Errorf("Extract(nil) = %v", got)
		}
	})
}

func TestTreeClientFetch(t *testing.T) {
	var mu sync.Mutex
	var gotPath, gotQuery, gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		gotPath, gotQuery, gotAuth = r.URL.Path, r.URL.RawQuery, r.Header.Get("Authorization")
		mu.Unlock()
		fmt.Fprint(w, `{"sha":"abc","truncated":false,"tree":[{"path":"a/b/c","type":"blob"},{"path":"a/x","type":"blob"}]}`)
	}))
	defer srv.Close()

	c := NewTreeClient(TreeOptions{BaseURL: srv.URL, Token: "tok"}, nil)
	tree, err := c.Fetch(context.Background(), Repo{"o", "r", "main"})
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if len(tree.Entries) != 2 || tree.Entries[0].Path != "a/b/c" || tree.SHA != "abc" {
		t.Errorf("tree = %+v", tree)
	}

	mu.Lock()
	defer mu.Unlock()
	if gotPath != "/repos/o/r/git/trees/main" || gotQuery != "recursive=1" {
		t.Errorf("request = %s?%s", gotPath, gotQuery)
	}
	if gotAuth != "token tok" {
		t.Errorf("Authorization = %q", gotAuth)
	}
}

func TestTreeClientErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		check  func(error) bool
	}{
		{"not found", http.StatusNotFound, `{"message":"Not Found"}`, func(err error) bool { return errors.Is(err, ErrNotFound) }},
		{"forbidden", http.StatusForbidden, `{"message":"API rate limit exceeded"}`, func(err error) bool { return errors.Is(err, ErrForbidden) }},
		{"server error", http.StatusInternalServerError, ``, func(err error) bool {
			var se *StatusError
			return errors.As(err, &se) && se.Status == http.StatusInternalServerError
		}},
		{"api message", http.StatusOK, `{"message":"Git Repository is empty."}`, func(err error) bool {
			var ae *APIError
			return errors.As(err, &ae) && ae.Message == "Git Repository is empty."
		}},
		{"invalid json", http.StatusOK, `not json`, func(err error) bool { return errors.Is(err, ErrInvalidResponse) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				fmt.Fprint(w, tt.body)
			}))
			defer srv.Close()

			c := NewTreeClient(TreeOptions{BaseURL: srv.URL}, nil)
			_, err := c.Fetch(context.Background(), Repo{"o", "r", "main"})
			if !tt.check(err) {
				t.Errorf("Fetch() error = %v", err)
			}
		})
	}
}

func TestTreeClientNoToken(t *testing.T) {
	var mu sync.Mutex
	auth := "unset"
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		auth = r.Header.Get("Authorization")
		mu.Unlock()
		fmt.Fprint(w, `{"tree":[],"truncated":true}`)
	}))
	defer srv.Close()

	c := NewTreeClient(TreeOptions{BaseURL: srv.URL}, nil)
	tree, err := c.Fetch(context.Background(), Repo{"o", "r", "main"})
	if err != nil {
		t.Fatal(err)
	}
	if !tree.Truncated {
		t.Error("Truncated = false")
	}
	mu.Lock()
	defer mu.Unlock()
	if auth != "" {
		t.Errorf("Authorization = %q, want none", auth)
	}
}
