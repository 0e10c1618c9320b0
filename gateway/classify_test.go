package gateway

import (
	"errors"
	"net/http"
	"strings"
	"testing"
	"unicode/utf8"
)

func TestClassify(t *testing.T) {
	cases := []struct {
		name   string
		status int
		body   string
		err    error
		want   Kind
	}{
		{"success", 200, `{"id":1}`, nil, KindNone},
		{"success envelope", 200, `{"code":200,"data":{}}`, nil, KindNone},
		{"expired", 401, `{"message":"JWT token has expired"}`, nil, UnauthorizedExpired},
		{"expired localized", 401, `{"code":401,"message":"登录已过期"}`, nil, UnauthorizedExpired},
		{"invalid", 401, `bad signature`, nil, UnauthorizedInvalid},
		{"forbidden", 403, ``, nil, Forbidden},
		{"bad request", 422, `{"error":"title required"}`, nil, BadRequest},
		{"not found", 404, ``, nil, BadRequest},
		{"server", 500, ``, nil, ServerError},
		{"envelope unauthorized", 200, `{"code":401,"message":"token expired"}`, nil, UnauthorizedExpired},
		{"envelope server", 200, `{"code":500,"message":"boom"}`, nil, ServerError},
		{"transport", 0, ``, errors.New("dial tcp: refused"), NetworkUnavailable},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Classify(tc.status, []byte(tc.body), tc.err); got != tc.want {
				t.Fatalf("Classify(%d, %q) = %v, want %v", tc.status, tc.body, got, tc.want)
			}
		})
	}
}

func TestWWWAuthenticateMarksExpiry(t *testing.T) {
	h := http.Header{}
	h.Set("WWW-Authenticate", `Bearer error="invalid_token", error_description="The access token expired"`)
	if got := classifyResponse(401, h, nil, nil); got != UnauthorizedExpired {
		t.Fatalf("expected expired from header, got %v", got)
	}
}

func TestIsPublic(t *testing.T) {
	cases := []struct {
		path, method string
		want         bool
	}{
		{"/auth/login", http.MethodPost, true},
		{"/auth/register", http.MethodPost, true},
		{"/auth/validate-token", http.MethodGet, false},
		{"/posts", http.MethodGet, true},
		{"/posts?page=1&size=10", http.MethodGet, true},
		{"/posts", http.MethodPost, false},
		{"/posts/12", http.MethodGet, true},
		{"/posts/12", http.MethodPut, false},
		{"/posts/12/favorite", http.MethodGet, false},
		{"/posts/tags", http.MethodGet, true},
		{"/posts/bytags?tags=go", http.MethodGet, true},
		{"/users/5", http.MethodGet, true},
		{"/users/me", http.MethodGet, false},
		{"/users/favorites", http.MethodGet, false},
		{"/messages", http.MethodGet, false},
	}
	for _, tc := range cases {
		if got := IsPublic(tc.path, tc.method); got != tc.want {
			t.Errorf("IsPublic(%q, %s) = %v, want %v", tc.path, tc.method, got, tc.want)
		}
	}
}

func TestMessageTruncatesOnRuneBoundary(t *testing.T) {
	body := []byte(strings.Repeat("服务器错误", 30))
	msg := messageOf(body)
	if !utf8.ValidString(msg) {
		t.Fatalf("truncated message is not valid utf-8: %q", msg)
	}
	if len(msg) > maxMessageLen || len(msg) < maxMessageLen-utf8.UTFMax {
		t.Fatalf("unexpected length %d", len(msg))
	}
	if !strings.HasPrefix(string(body), msg) {
		t.Fatal("message is not a prefix of the body")
	}

	ascii := strings.Repeat("x", 300)
	if got := messageOf([]byte(ascii)); got != ascii[:maxMessageLen] {
		t.Fatalf("ascii message cut at %d", len(got))
	}
}
