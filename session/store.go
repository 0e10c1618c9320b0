package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/AdguardTeam/golibs/logutil/slogutil"
	"github.com/MrEthical07/blogClient/gateway"
	"github.com/MrEthical07/blogClient/internal/metrics"
	"github.com/MrEthical07/blogClient/jwt"
	"github.com/MrEthical07/blogClient/roles"
	"golang.org/x/sync/singleflight"
)

const initKey = "initialize"

// Sender performs backend requests. *gateway.Gateway implements it.
type Sender interface {
	Send(ctx context.Context, method, path string, body any, opts gateway.Options) (*gateway.Response, error)
}

// Config holds endpoint paths and session policy.
type Config struct {
	LoginPath    string `yaml:"login_path"`
	RegisterPath string `yaml:"register_path"`
	ValidatePath string `yaml:"validate_path"`
	ProfilePath  string `yaml:"profile_path"`

	// AssetBaseURL is the origin serving /uploads.
	AssetBaseURL string `yaml:"asset_base_url"`

	// LocalExpiryCheck rejects a persisted JWT whose exp has passed without
	// asking the server.
	LocalExpiryCheck bool          `yaml:"local_expiry_check"`
	ExpiryLeeway     time.Duration `yaml:"expiry_leeway"`

	// StorageTimeout bounds each durable storage call.
	StorageTimeout time.Duration `yaml:"storage_timeout"`
}

// DefaultConfig returns the paths used by the blog backend.
func DefaultConfig() Config {
	return Config{
		LoginPath:        "/auth/login",
		RegisterPath:     "/auth/register",
		ValidatePath:     "/auth/validate-token",
		ProfilePath:      "/users/me",
		AssetBaseURL:     "http://localhost:8080",
		LocalExpiryCheck: true,
		ExpiryLeeway:     0,
		StorageTimeout:   3 * time.Second,
	}
}

// Deps are optional collaborators of a Store.
type Deps struct {
	Storage Storage
	Metrics *metrics.Metrics
	Logger  *slog.Logger
	Clock   func() time.Time
	// OnRestore is called once per restoration attempt that found a
	// persisted token, with the restored user or the failure cause.
	OnRestore func(ctx context.Context, user *UserProfile, err error)
}

// Store owns the session state.
type Store struct {
	cfg       Config
	sender    Sender
	storage   Storage
	inspector *jwt.Inspector
	metrics   *metrics.Metrics
	logger    *slog.Logger
	now       func() time.Time
	onRestore func(ctx context.Context, user *UserProfile, err error)

	group singleflight.Group

	mu      sync.RWMutex
	state   Session
	version uint64

	persistMu sync.Mutex
	persisted uint64
}

// NewStore returns an uninitialized Store.
func NewStore(cfg Config, sender Sender, deps Deps) *Store {
	s := &Store{
		cfg:     cfg,
		sender:  sender,
		storage: deps.Storage,
		metrics: deps.Metrics,
		logger:  deps.Logger,
		now:     deps.Clock,

		onRestore: deps.OnRestore,
	}
	if s.storage == nil {
		s.storage = NewMemoryStorage()
	}
	if s.logger == nil {
		s.logger = slogutil.NewDiscardLogger()
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.cfg.StorageTimeout <= 0 {
		s.cfg.StorageTimeout = DefaultConfig().StorageTimeout
	}
	s.inspector = jwt.NewInspector(cfg.ExpiryLeeway).WithClock(s.now)
	return s
}

// Initialize restores the persisted session once. It reports whether a user is
// logged in afterwards and never returns an error; see Restore for the cause.
func (s *Store) Initialize(ctx context.Context) bool {
	ok, _ := s.Restore(ctx)
	return ok
}

// Restore is Initialize that also reports why restoration failed. Concurrent
// callers share one attempt. A caller whose ctx ends stops waiting but does
// not cancel the shared attempt.
func (s *Store) Restore(ctx context.Context) (bool, error) {
	s.mu.RLock()
	ready := s.state.Initialized && s.state.User != nil
	s.mu.RUnlock()
	if ready {
		return true, nil
	}

	ch := s.group.DoChan(initKey, func() (any, error) {
		return s.restore(context.WithoutCancel(ctx))
	})
	select {
	case res := <-ch:
		ok, _ := res.Val.(bool)
		return ok, res.Err
	case <-ctx.Done():
		return false, ctx.Err()
	}
}

func (s *Store) restore(ctx context.Context) (bool, error) {
	token, err := s.readStorage(ctx, KeyToken)
	if err != nil && !errors.Is(err, ErrNotFound) {
		s.logger.WarnContext(ctx, "reading persisted token", slogutil.KeyError, err)
	}
	token = strings.TrimSpace(strings.TrimPrefix(token, "Bearer "))

	s.mu.Lock()
	if s.state.User != nil {
		s.state.Initialized = true
		s.mu.Unlock()
		return true, nil
	}
	if token == "" {
		s.state = Session{Initialized: true}
		s.mu.Unlock()
		return false, nil
	}
	s.state = Session{Token: token}
	s.mu.Unlock()

	if s.cfg.LocalExpiryCheck && s.inspector.Expired(token) {
		return false, s.fail(ctx, token, &AuthError{Reason: TokenExpired}, true)
	}

	s.metrics.Inc(metrics.ValidateCall)
	_, err = s.sender.Send(ctx, http.MethodGet, s.cfg.ValidatePath, nil, gateway.Options{Quiet: true, Token: token})
	if err != nil {
		if aerr := authErrorOf(err); aerr != nil {
			return false, s.fail(ctx, token, aerr, true)
		}
		return false, s.fail(ctx, token, fmt.Errorf("validate token: %w", err), false)
	}

	user, err := s.loadProfile(ctx, token)
	if err != nil {
		if aerr := authErrorOf(err); aerr != nil {
			return false, s.fail(ctx, token, aerr, true)
		}
		unusable := errors.Is(err, ErrCorruptRecord) || errors.Is(err, ErrNotFound)
		return false, s.fail(ctx, token, fmt.Errorf("load profile: %w", err), unusable)
	}

	s.mu.Lock()
	if s.state.Token != token {
		// Login or logout won the race.
		loggedIn := s.state.LoggedIn()
		s.state.Initialized = true
		s.mu.Unlock()
		return loggedIn, nil
	}
	s.state = Session{Token: token, User: user, Initialized: true}
	s.version++
	v := s.version
	s.mu.Unlock()

	s.persist(ctx, v, token, user)
	s.metrics.Inc(metrics.SessionRestored)
	s.logger.DebugContext(ctx, "session restored", "user_id", user.ID)
	if s.onRestore != nil {
		s.onRestore(ctx, user.Clone(), nil)
	}
	return true, nil
}

// loadProfile fetches the current user, falling back to the persisted profile
// when the backend fails for a reason other than authentication.
func (s *Store) loadProfile(ctx context.Context, token string) (*UserProfile, error) {
	resp, err := s.sender.Send(ctx, http.MethodGet, s.cfg.ProfilePath, nil, gateway.Options{Quiet: true, Token: token})
	if err == nil {
		var m map[string]any
		if derr := resp.Decode(&m); derr == nil && m != nil {
			u := profileFromMap(m)
			if u.ID <= 0 {
				u.ID = s.inspector.UserID(token)
			}
			if len(u.Roles) == 0 {
				u.Roles = s.inspector.Roles(token)
			}
			if u.ID > 0 {
				return s.normalize(u), nil
			}
		}
		s.logger.WarnContext(ctx, "profile response unusable, using persisted profile")
	} else if authErrorOf(err) != nil {
		return nil, err
	}

	raw, rerr := s.readStorage(ctx, KeyUserInfo)
	if rerr != nil && !errors.Is(rerr, ErrNotFound) {
		s.logger.WarnContext(ctx, "reading persisted profile", slogutil.KeyError, rerr)
	}
	u, derr := DecodeProfile(raw)
	if derr != nil {
		if err != nil && !errors.Is(derr, ErrCorruptRecord) {
			return nil, err
		}
		return nil, derr
	}
	return s.normalize(u), nil
}

func (s *Store) fail(ctx context.Context, token string, cause error, clearDurable bool) error {
	s.mu.Lock()
	mine := s.state.Token == token && s.state.User == nil
	var v uint64
	if mine {
		s.state = Session{Initialized: true}
		s.version++
		v = s.version
	}
	s.mu.Unlock()

	if mine && clearDurable {
		s.erase(ctx, v)
		s.metrics.Inc(metrics.SessionInvalidated)
	}
	s.logger.InfoContext(ctx, "session not restored",
		"cleared_storage", mine && clearDurable,
		slogutil.KeyError, cause,
	)
	if mine && s.onRestore != nil {
		s.onRestore(ctx, nil, cause)
	}
	return cause
}

func authErrorOf(err error) *AuthError {
	switch gateway.KindOf(err) {
	case gateway.UnauthorizedExpired:
		return &AuthError{Reason: TokenExpired, Err: err}
	case gateway.UnauthorizedInvalid, gateway.Forbidden:
		return &AuthError{Reason: TokenInvalid, Err: err}
	default:
		return nil
	}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login authenticates and, on success, replaces the session atomically. On
// failure the session is unchanged.
func (s *Store) Login(ctx context.Context, identifier, password string) (*UserProfile, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" || password == "" {
		s.metrics.Inc(metrics.LoginFailure)
		return nil, &AuthError{Reason: InvalidCredentials}
	}

	resp, err := s.sender.Send(ctx, http.MethodPost, s.cfg.LoginPath,
		loginRequest{Email: identifier, Password: password},
		gateway.Options{Public: true, Quiet: true},
	)
	if err != nil {
		s.metrics.Inc(metrics.LoginFailure)
		switch gateway.KindOf(err) {
		case gateway.UnauthorizedExpired, gateway.UnauthorizedInvalid:
			return nil, &AuthError{Reason: InvalidCredentials, Err: err}
		case gateway.Forbidden:
			return nil, &AuthError{Reason: AccountDisabled, Err: err}
		default:
			return nil, fmt.Errorf("login: %w", err)
		}
	}

	var m map[string]any
	if err = resp.Decode(&m); err != nil || m == nil {
		s.metrics.Inc(metrics.LoginFailure)
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	token, user, err := decodeLoginResponse(m, identifier)
	if err != nil {
		s.metrics.Inc(metrics.LoginFailure)
		return nil, err
	}
	if user.Disabled {
		s.metrics.Inc(metrics.LoginFailure)
		return nil, &AuthError{Reason: AccountDisabled}
	}
	user = s.normalize(user)

	s.mu.Lock()
	s.state = Session{Token: token, User: user, Initialized: true}
	s.version++
	v := s.version
	s.mu.Unlock()

	s.persist(ctx, v, token, user)
	s.metrics.Inc(metrics.LoginSuccess)
	s.logger.InfoContext(ctx, "logged in", "user_id", user.ID)
	return user.Clone(), nil
}

// Register creates an account. It does not log in.
func (s *Store) Register(ctx context.Context, username, email, password string) error {
	_, err := s.sender.Send(ctx, http.MethodPost, s.cfg.RegisterPath,
		registerRequest{Username: strings.TrimSpace(username), Email: strings.TrimSpace(email), Password: password},
		gateway.Options{Public: true, Quiet: true},
	)
	if err != nil {
		return fmt.Errorf("register: %w", err)
	}
	return nil
}

// Logout clears the session in memory and storage. It never fails.
func (s *Store) Logout(ctx context.Context) {
	s.mu.Lock()
	s.state = Session{Initialized: true}
	s.version++
	v := s.version
	s.mu.Unlock()

	s.erase(ctx, v)
	s.metrics.Inc(metrics.Logout)
}

// Invalidate clears the session only if token is still current. It returns true
// for the one caller that cleared it.
func (s *Store) Invalidate(ctx context.Context, token string, reason Reason) bool {
	token = strings.TrimSpace(strings.TrimPrefix(token, "Bearer "))
	if token == "" {
		return false
	}

	s.mu.Lock()
	if s.state.Token != token {
		s.mu.Unlock()
		return false
	}
	s.state = Session{Initialized: true}
	s.version++
	v := s.version
	s.mu.Unlock()

	s.erase(ctx, v)
	s.metrics.Inc(metrics.SessionInvalidated)
	s.logger.InfoContext(ctx, "session invalidated", "reason", reason.String())
	return true
}

// UpdateProfile merges upd into the current user. It returns false when there
// is no session.
func (s *Store) UpdateProfile(ctx context.Context, upd ProfileUpdate) bool {
	s.mu.Lock()
	if s.state.User == nil {
		s.mu.Unlock()
		return false
	}
	u := s.state.User.Clone()
	if upd.Username != nil {
		u.Username = strings.TrimSpace(*upd.Username)
	}
	if upd.Email != nil {
		u.Email = strings.TrimSpace(*upd.Email)
	}
	if upd.Bio != nil {
		u.Bio = *upd.Bio
	}
	if upd.Avatar != nil {
		u.Avatar = ""
		if a := strings.TrimSpace(*upd.Avatar); a != "" {
			u.Avatar = AvatarURL(s.cfg.AssetBaseURL, a, s.now())
		}
	}
	token := s.state.Token
	s.state.User = u
	s.version++
	v := s.version
	s.mu.Unlock()

	s.persist(ctx, v, token, u)
	return true
}

// Initialized reports whether a restoration attempt, login or logout has
// completed.
func (s *Store) Initialized() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Initialized
}

// Token returns the current token or "".
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Token
}

// Snapshot returns a copy of the state.
func (s *Store) Snapshot() Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := s.state
	out.User = s.state.User.Clone()
	return out
}

// User returns a copy of the current user or nil.
func (s *Store) User() *UserProfile {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.User.Clone()
}

func (s *Store) IsLoggedIn() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.LoggedIn()
}

func (s *Store) IsAdmin() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.User != nil && s.state.User.Roles.IsAdmin()
}

func (s *Store) normalize(u *UserProfile) *UserProfile {
	if u.Avatar != "" {
		u.Avatar = AvatarURL(s.cfg.AssetBaseURL, u.Avatar, time.Time{})
	}
	if u.Roles == nil {
		u.Roles = roles.Set{}
	}
	return u
}

func (s *Store) storageContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), s.cfg.StorageTimeout)
}

func (s *Store) readStorage(ctx context.Context, key string) (string, error) {
	sctx, cancel := s.storageContext(ctx)
	defer cancel()
	return s.storage.Get(sctx, key)
}

// persist writes the state of version v unless a newer version was already
// written.
func (s *Store) persist(ctx context.Context, v uint64, token string, user *UserProfile) {
	s.persistMu.Lock()
	defer s.persistMu.Unlock()
	if v < s.persisted {
		return
	}
	s.persisted = v

	sctx, cancel := s.storageContext(ctx)
	defer cancel()

	if err := s.storage.Set(sctx, KeyToken, token); err != nil {
		s.logger.WarnContext(ctx, "persisting token", slogutil.KeyError, err)
	}
	raw, err := EncodeProfile(user)
	if err != nil {
		s.logger.WarnContext(ctx, "encoding profile", slogutil.KeyError, err)
		return
	}
	if err = s.storage.Set(sctx, KeyUserInfo, raw); err != nil {
		s.logger.WarnContext(ctx, "persisting profile", slogutil.KeyError, err)
	}
}

func (s *Store) erase(ctx context.Context, v uint64) {
	s.persistMu.Lock()
	defer s.persistMu.Unlock()
	if v < s.persisted {
		return
	}
	s.persisted = v

	sctx, cancel := s.storageContext(ctx)
	defer cancel()

	for _, key := range []string{KeyToken, KeyUserInfo} {
		if err := s.storage.Delete(sctx, key); err != nil {
			s.logger.WarnContext(ctx, "clearing persisted session", "key", key, slogutil.KeyError, err)
		}
	}
}
