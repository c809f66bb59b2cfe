package main

import (
	"net/http"
	"testing"
	"time"
)

func TestNewServerTimeouts(t *testing.T) {
	srv := newServer("8080", http.NewServeMux())

	if srv.Addr != ":8080" {
		t.Errorf("Addr = %q, want :8080", srv.Addr)
	}

	// Chat replies stream over SSE for however long the model takes, so
	// the server must not enforce a whole-response write deadline.
	if srv.WriteTimeout != 0 {
		t.Errorf("WriteTimeout = %v, want 0 so streaming responses are never cut off", srv.WriteTimeout)
	}

	if srv.ReadTimeout != 15*time.Second {
		t.Errorf("ReadTimeout = %v, want 15s", srv.ReadTimeout)
	}
	if srv.IdleTimeout != 60*time.Second {
		t.Errorf("IdleTimeout = %v, want 60s", srv.IdleTimeout)
	}
}
