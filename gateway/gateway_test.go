package gateway

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/MrEthical07/blogClient/internal/metrics"
)

type recordingHandler struct {
	mu       sync.Mutex
	failures []Failure
}

func (h *recordingHandler) HandleError(_ context.Context, f Failure) {
	h.mu.Lock()
	h.failures = append(h.failures, f)
	h.mu.Unlock()
}

func (h *recordingHandler) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.failures)
}

func newTestGateway(t *testing.T, srv *httptest.Server, token string, h ErrorHandler) (*Gateway, *metrics.Metrics) {
	t.Helper()
	cfg := DefaultConfig()
	cfg.BaseURL = srv.URL + "/api"
	cfg.RetryInitialDelay = time.Millisecond
	cfg.RetryMaxDelay = 4 * time.Millisecond
	m := metrics.New(metrics.Config{Enabled: true})
	g, err := New(cfg, Deps{
		HTTPClient: srv.Client(),
		Tokens:     TokenFunc(func() string { return token }),
		Handler:    h,
		Metrics:    m,
	})
	if err != nil {
		t.Fatalf("new gateway: %v", err)
	}
	return g, m
}

func TestSendAttachesBearerAndDefaultHeaders(t *testing.T) {
	var got http.Header
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
		gotPath = r.URL.RequestURI()
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"code":200,"message":"ok","data":{"userId":7,"username":"bob"}}`))
	}))
	defer srv.Close()

	g, m := newTestGateway(t, srv, "Bearer abc", nil)
	resp, err := g.Get(context.Background(), "/users/me?x=1", Options{})
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Get("Authorization") != "Bearer abc" {
		t.Fatalf("expected single bearer prefix, got %q", got.Get("Authorization"))
	}
	if got.Get("Cache-Control") != "no-cache" || got.Get("Pragma") != "no-cache" {
		t.Fatalf("missing no-cache headers: %v", got)
	}
	if got.Get("X-Request-ID") == "" || got.Get("X-Request-ID") != resp.RequestID {
		t.Fatalf("request id mismatch: header=%q resp=%q", got.Get("X-Request-ID"), resp.RequestID)
	}
	if gotPath != "/api/users/me?x=1" {
		t.Fatalf("unexpected request uri %q", gotPath)
	}

	var user struct {
		UserID   int64  `json:"userId"`
		Username string `json:"username"`
	}
	if err := resp.Decode(&user); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if user.UserID != 7 || user.Username != "bob" {
		t.Fatalf("envelope not unwrapped: %+v", user)
	}
	if m.Value(metrics.RequestSuccess) != 1 {
		t.Fatalf("expected one success, got %d", m.Value(metrics.RequestSuccess))
	}
}

func TestPublicRequestToken(t *testing.T) {
	var auth atomic.Value
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth.Store(r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	cases := []struct {
		name  string
		token string
		opts  Options
		want  string
	}{
		{name: "public path with session", token: "abc", want: "Bearer abc"},
		{name: "public path without session", token: "", want: ""},
		{name: "explicitly public", token: "abc", opts: Options{Public: true}, want: ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			g, _ := newTestGateway(t, srv, tc.token, nil)
			if _, err := g.Get(context.Background(), "/posts/1", tc.opts); err != nil {
				t.Fatalf("get post: %v", err)
			}
			if got, _ := auth.Load().(string); got != tc.want {
				t.Fatalf("Authorization = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestProtectedPathWithoutTokenNeverReachesServer(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	}))
	defer srv.Close()

	h := &recordingHandler{}
	g, m := newTestGateway(t, srv, "", h)
	_, err := g.Post(context.Background(), "/posts", map[string]string{"title": "x"}, Options{})
	if !errors.Is(err, ErrNoToken) || !errors.Is(err, ErrUnauthorizedInvalid) {
		t.Fatalf("expected ErrNoToken rejection, got %v", err)
	}
	if hits.Load() != 0 {
		t.Fatalf("server was reached %d times", hits.Load())
	}
	if h.count() != 1 || !h.failures[0].Rejected {
		t.Fatalf("expected one rejected failure, got %+v", h.failures)
	}
	if m.Value(metrics.RequestRejectedNoToken) != 1 {
		t.Fatal("rejection not counted")
	}
}

func TestRetriesIdempotentFailures(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	h := &recordingHandler{}
	g, m := newTestGateway(t, srv, "tok", h)
	resp, err := g.Get(context.Background(), "/messages", Options{})
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if resp.Attempts != 3 || hits.Load() != 3 {
		t.Fatalf("expected 3 attempts, got resp=%d hits=%d", resp.Attempts, hits.Load())
	}
	if m.Value(metrics.RequestRetry) != 2 {
		t.Fatalf("expected 2 retries, got %d", m.Value(metrics.RequestRetry))
	}
	if h.count() != 0 {
		t.Fatal("handler must not run for a request that eventually succeeded")
	}
}

func TestRetriesAreBoundedAndReportedOnce(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	h := &recordingHandler{}
	g, _ := newTestGateway(t, srv, "tok", h)
	_, err := g.Get(context.Background(), "/messages", Options{})
	if !errors.Is(err, ErrServerError) {
		t.Fatalf("expected server error, got %v", err)
	}
	var gerr *Error
	if !errors.As(err, &gerr) || gerr.Attempts != 4 || gerr.Status != http.StatusServiceUnavailable {
		t.Fatalf("unexpected error detail %+v", gerr)
	}
	if hits.Load() != 4 {
		t.Fatalf("expected 1 + 3 retries, got %d", hits.Load())
	}
	if h.count() != 1 {
		t.Fatalf("expected exactly one report, got %d", h.count())
	}
}

func TestNonIdempotentNeverRetried(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	g, _ := newTestGateway(t, srv, "tok", nil)
	if _, err := g.Post(context.Background(), "/posts", map[string]string{}, Options{}); err == nil {
		t.Fatal("expected failure")
	}
	if hits.Load() != 1 {
		t.Fatalf("POST retried: %d hits", hits.Load())
	}
}

func TestQuietSuppressesHandler(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"message":"Token expired"}`))
	}))
	defer srv.Close()

	h := &recordingHandler{}
	g, _ := newTestGateway(t, srv, "tok", h)
	_, err := g.Get(context.Background(), "/auth/validate-token", Options{Quiet: true})
	if !errors.Is(err, ErrUnauthorizedExpired) {
		t.Fatalf("expected expired, got %v", err)
	}
	if h.count() != 0 {
		t.Fatal("quiet request reached the handler")
	}
}

func TestEnvelopeFailureIsClassifiedByCode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"code":403,"message":"admin only","data":null}`))
	}))
	defer srv.Close()

	h := &recordingHandler{}
	g, _ := newTestGateway(t, srv, "tok", h)
	_, err := g.Get(context.Background(), "/admin/users", Options{})
	var gerr *Error
	if !errors.As(err, &gerr) || gerr.Kind != Forbidden || gerr.Status != 403 || gerr.Message != "admin only" {
		t.Fatalf("unexpected error %+v", err)
	}
	if h.count() != 1 || h.failures[0].Token != "tok" {
		t.Fatalf("expected one failure carrying the token, got %+v", h.failures)
	}
}

func TestNetworkFailureIsClassified(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	g, _ := newTestGateway(t, srv, "tok", nil)
	srv.Close()

	_, err := g.Get(context.Background(), "/posts", Options{NoRetry: true})
	if KindOf(err) != NetworkUnavailable || !errors.Is(err, ErrNetworkUnavailable) {
		t.Fatalf("expected network unavailable, got %v", err)
	}
}

func TestNewRejectsBadConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.BaseURL = "not a url"
	if _, err := New(cfg, Deps{}); !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig, got %v", err)
	}
}
