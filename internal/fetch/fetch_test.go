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

func TestGet_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(200)
		_, _ = w.Write([]byte("<html><body>ok</body></html>"))
	}))
	defer srv.Close()

	c := &Client{UserAgent: "dataminer-test", PerRequestTimeout: 2 * time.Second}
	resp, err := c.Get(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.ContentType == "" || len(resp.Body) == 0 {
		t.Fatalf("expected content type and body")
	}
}

func TestGet_SendsHeaders(t *testing.T) {
	var gotUA, gotLang string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		gotLang = r.Header.Get("Accept-Language")
		_, _ = w.Write([]byte("ok"))
	}))
	defer srv.Close()

	c := &Client{UserAgent: "custom-agent", Header: BrowserHeaders(), PerRequestTimeout: 2 * time.Second}
	if _, err := c.Get(context.Background(), srv.URL); err != nil {
		t.Fatalf("get: %v", err)
	}
	if gotUA != "custom-agent" {
		t.Fatalf("user agent: got %q", gotUA)
	}
	if gotLang == "" {
		t.Fatalf("expected Accept-Language header")
	}
}

func TestGet_NoRetryOn5xx(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(502)
	}))
	defer srv.Close()

	c := &Client{PerRequestTimeout: 2 * time.Second}
	_, err := c.Get(context.Background(), srv.URL)
	var fe *Error
	if !errors.As(err, &fe) {
		t.Fatalf("expected *fetch.Error, got %v", err)
	}
	if fe.Status != 502 {
		t.Fatalf("status: got %d", fe.Status)
	}
	if n := atomic.LoadInt32(&calls); n != 1 {
		t.Fatalf("expected a single attempt, got %d", n)
	}
}

func TestGet_TimeoutIsFetchError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	c := &Client{PerRequestTimeout: 50 * time.Millisecond}
	_, err := c.Get(context.Background(), srv.URL)
	var fe *Error
	if !errors.As(err, &fe) {
		t.Fatalf("expected *fetch.Error, got %v", err)
	}
	if !fe.Timeout() {
		t.Fatalf("expected timeout, got %v", fe.Err)
	}
}

func TestGet_RejectsNonHTTP(t *testing.T) {
	c := &Client{PerRequestTimeout: 1 * time.Second}
	_, err := c.Get(context.Background(), "file:///etc/hosts")
	if err == nil {
		t.Fatalf("expected error for non-http scheme")
	}
}

func TestGet_RedirectLimit(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/" {
			http.Redirect(w, r, "/next", http.StatusFound)
			return
		}
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte("ok"))
	}))
	defer srv.Close()

	c := &Client{PerRequestTimeout: 2 * time.Second, RedirectMaxHops: 1}
	_, err := c.Get(context.Background(), srv.URL)
	if err == nil {
		t.Fatalf("expected redirect limit error")
	}
}

func TestGetJSON_Decodes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[1,2,3]`))
	}))
	defer srv.Close()

	var ids []int
	c := &Client{PerRequestTimeout: 2 * time.Second}
	if err := c.GetJSON(context.Background(), srv.URL, &ids); err != nil {
		t.Fatalf("get json: %v", err)
	}
	if len(ids) != 3 {
		t.Fatalf("ids: %v", ids)
	}
}
