package session

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/MrEthical07/blogClient/gateway"
)

type fakeBackend struct {
	validateStatus atomic.Int32
	validateHits   atomic.Int32
	profileStatus  atomic.Int32
	profileHits    atomic.Int32
	loginStatus    atomic.Int32
	loginBody      atomic.Value
	registerBody   atomic.Value
	validateGate   chan struct{}
}

func newFakeBackend() *fakeBackend {
	b := &fakeBackend{}
	b.validateStatus.Store(http.StatusOK)
	b.profileStatus.Store(http.StatusOK)
	b.loginStatus.Store(http.StatusOK)
	b.loginBody.Store(`{"token":"tok-1","userId":7,"username":"alice","email":"alice@example.com","roles":["ROLE_USER"]}`)
	return b
}

func (b *fakeBackend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Path {
	case "/api/auth/validate-token":
		b.validateHits.Add(1)
		if b.validateGate != nil {
			<-b.validateGate
		}
		w.WriteHeader(int(b.validateStatus.Load()))
	case "/api/users/me":
		b.profileHits.Add(1)
		status := int(b.profileStatus.Load())
		w.WriteHeader(status)
		if status == http.StatusOK {
			_, _ = w.Write([]byte(`{"code":200,"data":{"userId":7,"username":"alice","email":"alice@example.com","avatar":"/api/uploads/a.png","roles":"ROLE_USER,ROLE_ADMIN"}}`))
		}
	case "/api/auth/register":
		data, _ := io.ReadAll(r.Body)
		b.registerBody.Store(string(data))
		w.WriteHeader(http.StatusOK)
	case "/api/auth/login":
		w.WriteHeader(int(b.loginStatus.Load()))
		_, _ = w.Write([]byte(b.loginBody.Load().(string)))
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func newTestStore(t *testing.T, backend *fakeBackend, storage Storage) (*Store, func()) {
	t.Helper()
	srv := httptest.NewServer(backend)

	gcfg := gateway.DefaultConfig()
	gcfg.BaseURL = srv.URL + "/api"
	gcfg.MaxRetries = 0
	gw, err := gateway.New(gcfg, gateway.Deps{HTTPClient: srv.Client()})
	if err != nil {
		t.Fatalf("gateway: %v", err)
	}

	cfg := DefaultConfig()
	cfg.AssetBaseURL = "http://assets.test"
	store := NewStore(cfg, gw, Deps{Storage: storage})
	gw.SetTokenSource(gateway.TokenFunc(store.Token))
	return store, srv.Close
}

func seed(t *testing.T, storage Storage, token string, user *UserProfile) {
	t.Helper()
	ctx := context.Background()
	if err := storage.Set(ctx, KeyToken, token); err != nil {
		t.Fatalf("seed token: %v", err)
	}
	if user != nil {
		raw, err := EncodeProfile(user)
		if err != nil {
			t.Fatalf("encode profile: %v", err)
		}
		if err := storage.Set(ctx, KeyUserInfo, raw); err != nil {
			t.Fatalf("seed profile: %v", err)
		}
	}
}

func mustAbsent(t *testing.T, storage Storage, keys ...string) {
	t.Helper()
	for _, k := range keys {
		if v, err := storage.Get(context.Background(), k); err != ErrNotFound {
			t.Fatalf("expected %q absent, got %q (%v)", k, v, err)
		}
	}
}
