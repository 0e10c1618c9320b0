package main

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
)

func newBackend(t *testing.T) string {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/api/auth/login", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `{"token":"tok-9","userId":3,"username":"carol","email":"carol@example.com"}`)
	})
	mux.HandleFunc("/api/auth/validate-token", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tok-9" {
			w.WriteHeader(http.StatusUnauthorized)
		}
	})
	mux.HandleFunc("/api/users/me", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `{"userId":3,"username":"carol","email":"carol@example.com","roles":["ROLE_USER"]}`)
	})
	mux.HandleFunc("/api/posts", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `{"items":[{"postId":1,"title":"Hello","tags":"go,cli"}],"total":1}`)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv.URL + "/api"
}

func runCLI(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestLoginPersistsAcrossInvocations(t *testing.T) {
	base := newBackend(t)
	store := filepath.Join(t.TempDir(), "session.db")
	common := []string{"-base-url", base, "-storage", "bolt", "-storage-path", store}

	code, out, errOut := runCLI(t, append(common, "-password", "pw", "login", "carol@example.com")...)
	if code != exitOK {
		t.Fatalf("login exit %d: %s", code, errOut)
	}
	if !strings.Contains(out, `"username": "carol"`) {
		t.Fatalf("unexpected login output: %s", out)
	}

	code, out, errOut = runCLI(t, append(common, "whoami")...)
	if code != exitOK || !strings.Contains(out, `"userId": 3`) {
		t.Fatalf("whoami exit %d: %s %s", code, out, errOut)
	}

	if code, _, _ = runCLI(t, append(common, "logout")...); code != exitOK {
		t.Fatalf("logout exit %d", code)
	}
	if code, _, _ = runCLI(t, append(common, "whoami")...); code != exitFail {
		t.Fatalf("whoami after logout exit %d", code)
	}
}

func TestNavAndPosts(t *testing.T) {
	base := newBackend(t)
	common := []string{"-base-url", base, "-storage", "memory"}

	code, out, _ := runCLI(t, append(common, "nav", "/admin")...)
	if code != exitOK || !strings.HasPrefix(out, "redirect_login /login?redirect=%2Fadmin") {
		t.Fatalf("nav exit %d: %q", code, out)
	}

	code, out, _ = runCLI(t, append(common, "posts")...)
	if code != exitOK || !strings.Contains(out, "Hello  [go, cli]") {
		t.Fatalf("posts exit %d: %q", code, out)
	}
}

func TestUsageErrors(t *testing.T) {
	if code, _, _ := runCLI(t); code != exitUsage {
		t.Fatalf("no args exit %d", code)
	}
	if code, _, _ := runCLI(t, "-storage", "memory", "frobnicate"); code != exitUsage {
		t.Fatalf("unknown command exit %d", code)
	}
	if code, _, _ := runCLI(t, "-storage", "memory", "nav"); code != exitUsage {
		t.Fatalf("nav without path exit %d", code)
	}
}

func TestMetricsWithMemRedis(t *testing.T) {
	base := newBackend(t)
	code, out, errOut := runCLI(t, "-base-url", base, "-storage", "memredis", "metrics")
	if code != exitOK {
		t.Fatalf("metrics exit %d: %s", code, errOut)
	}
	if !strings.Contains(out, "blog_client_login_success_total 0") {
		t.Fatalf("unexpected metrics output: %s", out)
	}
}

func TestSecurityReport(t *testing.T) {
	code, out, _ := runCLI(t, "-base-url", "http://blog.example.com/api", "-storage", "memory", "security")
	if code != exitOK {
		t.Fatalf("security exit %d", code)
	}
	if !strings.Contains(out, "plain http") || !strings.Contains(out, "memory only") {
		t.Fatalf("expected transport and storage warnings: %s", out)
	}
}
