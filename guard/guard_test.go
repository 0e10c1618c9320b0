package guard

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/MrEthical07/blogClient/roles"
)

type fakeSession struct {
	loggedIn bool
	roles    roles.Set
	inits    atomic.Int32
}

func (f *fakeSession) Initialize(context.Context) bool {
	f.inits.Add(1)
	return f.loggedIn
}

func (f *fakeSession) IsLoggedIn() bool { return f.loggedIn }

func (f *fakeSession) IsAdmin() bool { return f.roles.IsAdmin() }

func TestAdminRouteRequiresAdminRole(t *testing.T) {
	user := &fakeSession{loggedIn: true, roles: roles.Of(roles.User)}
	var notices []Decision
	g := New(user, Options{Notify: func(_ context.Context, d Decision) { notices = append(notices, d) }})

	d := g.Check(context.Background(), Navigation{Path: "/admin/users"})
	if d.Outcome != RedirectHome || d.Location != "/" {
		t.Fatalf("expected RedirectHome, got %+v", d)
	}
	if len(notices) != 1 || notices[0].Notice != NoticeAdminRequired {
		t.Fatalf("expected one admin notice, got %+v", notices)
	}

	admin := &fakeSession{loggedIn: true, roles: roles.Of(roles.Admin)}
	d = New(admin, Options{}).Check(context.Background(), Navigation{Path: "/admin"})
	if d.Outcome != Allowed || d.Location != "" {
		t.Fatalf("expected Allowed for admin, got %+v", d)
	}
}

func TestProtectedRouteRedirectsToLoginWithReturnPath(t *testing.T) {
	anon := &fakeSession{}
	g := New(anon, Options{})

	d := g.Check(context.Background(), Navigation{Path: "/posts/12/edit?draft=1"})
	if d.Outcome != RedirectLogin {
		t.Fatalf("expected RedirectLogin, got %v", d.Outcome)
	}
	if d.Location != "/login?redirect=%2Fposts%2F12%2Fedit%3Fdraft%3D1" {
		t.Fatalf("unexpected location %q", d.Location)
	}
	if d.Title != "Edit Post - Blog System" || d.Notice != NoticeLoginRequired {
		t.Fatalf("unexpected decision %+v", d)
	}

	d = g.Check(context.Background(), Navigation{Path: "/admin"})
	if d.Outcome != RedirectLogin {
		t.Fatalf("admin route must imply auth, got %v", d.Outcome)
	}
}

func TestPublicRoutesAllowedAndInitializeAwaited(t *testing.T) {
	anon := &fakeSession{}
	g := New(anon, Options{})

	for _, p := range []string{"/", "/posts", "/posts/3", "/login", "/register"} {
		if d := g.Check(context.Background(), Navigation{Path: p}); d.Outcome != Allowed {
			t.Fatalf("%s: expected Allowed, got %+v", p, d)
		}
	}
	if anon.inits.Load() != 5 {
		t.Fatalf("expected initialize on every navigation, got %d", anon.inits.Load())
	}
}

func TestPostCreateIsNotTreatedAsPostDetail(t *testing.T) {
	d := New(&fakeSession{}, Options{}).Check(context.Background(), Navigation{Path: "/posts/create"})
	if d.Outcome != RedirectLogin || d.Route != "post-create" {
		t.Fatalf("unexpected decision %+v", d)
	}
}

func TestUnknownPathRedirectsHome(t *testing.T) {
	var notified bool
	s := &fakeSession{loggedIn: true}
	g := New(s, Options{Notify: func(context.Context, Decision) { notified = true }})
	d := g.Check(context.Background(), Navigation{Path: "/no/such/page"})
	if d.Outcome != RedirectHome || d.Title != "Academic Blog - Blog System" {
		t.Fatalf("unexpected decision %+v", d)
	}
	if s.inits.Load() != 1 {
		t.Fatalf("initialize awaited %d times, want 1", s.inits.Load())
	}
	if notified {
		t.Fatal("catch-all redirect must not notify")
	}
}

func TestMiddleware(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})
	h := Middleware(New(&fakeSession{}, Options{}))(next)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/profile", nil))
	if rec.Code != http.StatusFound || rec.Header().Get("Location") != "/login?redirect=%2Fprofile" {
		t.Fatalf("expected redirect, got %d %q", rec.Code, rec.Header().Get("Location"))
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/posts", nil))
	if rec.Code != http.StatusTeapot || rec.Header().Get(HeaderPageTitle) != "Posts - Blog System" {
		t.Fatalf("expected pass-through with title, got %d %q", rec.Code, rec.Header().Get(HeaderPageTitle))
	}
}
