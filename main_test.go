package main

import (
	"path/filepath"
	"reflect"
	"testing"

	"github.com/rhyru9/osgit/config"
)

func TestNormalizeArgs(t *testing.T) {
	tests := []struct {
		in   []string
		want []string
	}{
		{[]string{"path", "-orb", "o,r,main", "-o", "x.txt"}, []string{"path", "--orb", "o,r,main", "-o", "x.txt"}},
		{[]string{"path", "-orb=o,r,main"}, []string{"path", "--orb=o,r,main"}},
		{[]string{"path", "--orb", "o,r,main"}, []string{"path", "--orb", "o,r,main"}},
		{[]string{"sub", "-d", "example.com", "-o", "out.txt"}, []string{"sub", "-d", "example.com", "-o", "out.txt"}},
	}
	for _, tt := range tests {
		if got := normalizeArgs(tt.in); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("normalizeArgs(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestTokenCommands(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	t.Setenv(config.EnvConfigPath, path)

	run := func(args ...string) {
		t.Helper()
		rootCmd.SetArgs(args)
		if err := rootCmd.Execute(); err != nil {
			t.Fatalf("Execute(%v) error = %v", args, err)
		}
	}

	run("token", "add", "-t", "ghp_0123456789abcdef")
	run("token", "add", "-t", "ghp_second")
	run("token", "list")
	run("token", "remove", "-t", "ghp_0123456789abcdef")

	toks, err := config.NewStore(path).Tokens()
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(toks, []string{"ghp_second"}) {
		t.Errorf("stored tokens = %v", toks)
	}
}

func TestSubOutputFlags(t *testing.T) {
	for _, name := range []string{"json", "html-report", "json-export", "jsonl-export", "csv-export"} {
		if subCmd.Flags().Lookup(name) == nil {
			t.Errorf("sub is missing --%s", name)
		}
	}
}
