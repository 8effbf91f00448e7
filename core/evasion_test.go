package core

import (
	"testing"
	"time"
)

func TestNewRandomTLSTransport(t *testing.T) {
	tr := NewRandomTLSTransport(5 * time.Second)
	if tr.DialTLSContext == nil {
		t.Fatal("DialTLSContext not set")
	}
	if tr.ForceAttemptHTTP2 {
		t.Error("randomized hellos carry no ALPN, HTTP/2 must stay off")
	}
}
