package fetch

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

type countingServer struct {
	srv   *httptest.Server
	calls int32
}

func newCountingServer(t *testing.T, status int) *countingServer {
	t.Helper()
	cs := &countingServer{}
	cs.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&cs.calls, 1)
		w.WriteHeader(status)
	}))
	t.Cleanup(cs.srv.Close)
	return cs
}

func (c *countingServer) hits() int32 { return atomic.LoadInt32(&c.calls) }

func TestFailover_PicksFirstHealthyAndPins(t *testing.T) {
	bad1 := newCountingServer(t, 503)
	bad2 := newCountingServer(t, 404)
	good := newCountingServer(t, 200)
	later := newCountingServer(t, 200)

	f := &Failover{
		Client:       &Client{PerRequestTimeout: time.Second},
		Candidates:   []string{bad1.srv.URL, bad2.srv.URL, good.srv.URL, later.srv.URL},
		ProbeTimeout: time.Second,
	}
	for i := 0; i < 3; i++ {
		got, err := f.Resolve(context.Background())
		if err != nil {
			t.Fatalf("resolve #%d: %v", i, err)
		}
		if got != good.srv.URL {
			t.Fatalf("resolve #%d: got %s want %s", i, got, good.srv.URL)
		}
	}
	if bad1.hits() != 1 || bad2.hits() != 1 {
		t.Fatalf("earlier candidates re-probed: %d, %d", bad1.hits(), bad2.hits())
	}
	if good.hits() != 1 {
		t.Fatalf("pinned candidate probed %d times", good.hits())
	}
	if later.hits() != 0 {
		t.Fatalf("later candidate should never be probed, got %d", later.hits())
	}
	if n := len(f.Failures()); n != 2 {
		t.Fatalf("expected 2 recorded failures, got %d", n)
	}
}

func TestFailover_AllDown(t *testing.T) {
	bad := newCountingServer(t, 500)
	f := &Failover{
		Client:     &Client{PerRequestTimeout: time.Second},
		Candidates: []string{bad.srv.URL, "http://127.0.0.1:1"},
	}
	_, err := f.Resolve(context.Background())
	if !errors.Is(err, ErrNoMirror) {
		t.Fatalf("expected ErrNoMirror, got %v", err)
	}
	// second call does not probe again
	_, _ = f.Resolve(context.Background())
	if bad.hits() != 1 {
		t.Fatalf("exhausted failover re-probed: %d", bad.hits())
	}
}

func TestFailover_ProbeURL(t *testing.T) {
	var path string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
	}))
	defer srv.Close()

	f := &Failover{
		Client:     &Client{PerRequestTimeout: time.Second},
		Candidates: []string{srv.URL},
		ProbeURL:   func(base string) string { return base + "/api/v1/videos/abc" },
	}
	if _, err := f.Resolve(context.Background()); err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if path != "/api/v1/videos/abc" {
		t.Fatalf("probe path: %q", path)
	}
}

func TestPager_SpacesRequests(t *testing.T) {
	p := NewPager(40 * time.Millisecond)
	start := time.Now()
	for i := 0; i < 3; i++ {
		if err := p.Wait(context.Background()); err != nil {
			t.Fatalf("wait: %v", err)
		}
	}
	if el := time.Since(start); el < 70*time.Millisecond {
		t.Fatalf("expected at least two delays, elapsed %v", el)
	}
}

func TestPager_ZeroDelayDoesNotBlock(t *testing.T) {
	p := NewPager(0)
	start := time.Now()
	for i := 0; i < 100; i++ {
		_ = p.Wait(context.Background())
	}
	if el := time.Since(start); el > 50*time.Millisecond {
		t.Fatalf("zero delay pager blocked for %v", el)
	}
}
