package blogClient

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/AdguardTeam/golibs/logutil/slogutil"
	"github.com/google/uuid"

	"github.com/MrEthical07/blogClient/api"
	"github.com/MrEthical07/blogClient/gateway"
	"github.com/MrEthical07/blogClient/guard"
	"github.com/MrEthical07/blogClient/internal/audit"
	"github.com/MrEthical07/blogClient/internal/metrics"
	"github.com/MrEthical07/blogClient/session"
)

// User-facing messages for final request failures.
const (
	MessageExpired       = "login expired, please log in again"
	MessageInvalid       = "authentication failed, please log in again"
	MessageForbidden     = "permission denied"
	MessageBadRequest    = "invalid request"
	MessageServerError   = "server error, please try again later"
	MessageNetwork       = "network unavailable, check your connection"
	MessageLoginRequired = guard.NoticeLoginRequired
)

const loginLocation = "/login"

// Client wires the gateway, the session store and the route guard, and turns
// their outcomes into events. Create it with New().Build().
type Client struct {
	cfg      Config
	gateway  *gateway.Gateway
	session  *session.Store
	guard    *guard.Guard
	api      *api.Client
	sink     EventSink
	dispatch *audit.Dispatcher[Event]
	metrics  *metrics.Metrics
	logger   *slog.Logger
	now      func() time.Time
	closers  []func() error
	// custom is set when storage was injected rather than opened from cfg.
	custom   bool

	unread atomic.Int64
	closed atomic.Bool
}

// Initialize restores the persisted session once; concurrent callers share
// the attempt. It reports whether a user is logged in.
func (c *Client) Initialize(ctx context.Context) bool {
	return c.session.Initialize(ctx)
}

// Restore is Initialize that also returns the failure cause.
func (c *Client) Restore(ctx context.Context) (bool, error) {
	return c.session.Restore(ctx)
}

// Login authenticates. Errors match ErrInvalidCredentials, ErrAccountDisabled,
// ErrMalformedResponse or ErrNetwork.
func (c *Client) Login(ctx context.Context, identifier, password string) (*session.UserProfile, error) {
	if c.closed.Load() {
		return nil, ErrClosed
	}

	user, err := c.session.Login(ctx, identifier, password)
	if err != nil {
		c.emit(ctx, Event{
			Type:    EventLoginFailed,
			Level:   LevelError,
			Message: loginFailureMessage(err),
		})
		return nil, err
	}

	c.emit(ctx, Event{Type: EventLogin, Level: LevelInfo, UserID: user.ID})
	return user, nil
}

func loginFailureMessage(err error) string {
	switch {
	case errors.Is(err, ErrInvalidCredentials):
		return "invalid username or password"
	case errors.Is(err, ErrAccountDisabled):
		return "account disabled"
	case errors.Is(err, ErrNetwork):
		return MessageNetwork
	case errors.Is(err, ErrServer):
		return MessageServerError
	default:
		return "login failed"
	}
}

// Register creates an account without logging in.
func (c *Client) Register(ctx context.Context, username, email, password string) error {
	if c.closed.Load() {
		return ErrClosed
	}
	return c.session.Register(ctx, username, email, password)
}

// Logout clears the session everywhere. It never fails.
func (c *Client) Logout(ctx context.Context) {
	var uid int64
	if u := c.session.User(); u != nil {
		uid = u.ID
	}

	c.session.Logout(ctx)
	c.unread.Store(0)
	c.api.Users.Purge()
	c.emit(ctx, Event{Type: EventLogout, Level: LevelInfo, UserID: uid})
}

// UpdateProfile merges upd into the current user. It reports false without a
// session.
func (c *Client) UpdateProfile(ctx context.Context, upd session.ProfileUpdate) bool {
	ok := c.session.UpdateProfile(ctx, upd)
	if ok {
		if u := c.session.User(); u != nil {
			c.api.Users.Invalidate(u.ID)
		}
	}
	return ok
}

// SaveProfile writes upd to the backend and merges it into the session once
// the backend accepted it. Without a session nothing is sent.
func (c *Client) SaveProfile(ctx context.Context, upd session.ProfileUpdate) error {
	if c.closed.Load() {
		return ErrClosed
	}
	if !c.session.IsLoggedIn() {
		return ErrNoSession
	}

	err := c.api.Users.UpdateMe(ctx, api.MeUpdate{
		Username: upd.Username,
		Email:    upd.Email,
		Avatar:   upd.Avatar,
		Bio:      upd.Bio,
	})
	if err != nil {
		return fmt.Errorf("save profile: %w", err)
	}
	c.UpdateProfile(ctx, upd)
	return nil
}

// Session returns a snapshot of the session state.
func (c *Client) Session() session.Session { return c.session.Snapshot() }

// User returns a copy of the current user or nil.
func (c *Client) User() *session.UserProfile { return c.session.User() }

func (c *Client) IsLoggedIn() bool { return c.session.IsLoggedIn() }

func (c *Client) IsAdmin() bool { return c.session.IsAdmin() }

func (c *Client) Token() string { return c.session.Token() }

// Navigate runs the route guard for path. Redirects caused by missing
// authentication or privileges also emit a warning notification.
func (c *Client) Navigate(ctx context.Context, path string) guard.Decision {
	return c.guard.Check(ctx, guard.Navigation{Path: path})
}

// Send performs a backend request through the gateway. On a cold start it
// first waits for the persisted session to be restored so that its token is
// attached. API wrappers send through here.
func (c *Client) Send(ctx context.Context, method, path string, body any, opts gateway.Options) (*gateway.Response, error) {
	if c.closed.Load() {
		return nil, ErrClosed
	}
	if !opts.Public && opts.Token == "" {
		c.awaitSession(ctx)
	}
	return c.gateway.Send(ctx, method, path, body, opts)
}

func (c *Client) awaitSession(ctx context.Context) {
	if !c.session.Initialized() {
		c.session.Initialize(ctx)
	}
}

// Gateway returns the request gateway.
func (c *Client) Gateway() *gateway.Gateway { return c.gateway }

// API returns the typed endpoint wrappers.
func (c *Client) API() *api.Client { return c.api }

// HandleError turns one final request failure into exactly one effect. An
// authentication failure on a protected request ends the session and emits a
// single redirect to the login page; concurrent failures for the same token
// collapse into that redirect. Everything else becomes a notification.
func (c *Client) HandleError(ctx context.Context, f gateway.Failure) {
	if f.Err == nil {
		return
	}

	if f.Err.Kind.IsAuth() && !f.Public && !f.Rejected {
		reason := session.TokenInvalid
		msg := MessageInvalid
		if f.Err.Kind == gateway.UnauthorizedExpired {
			reason = session.TokenExpired
			msg = MessageExpired
		}

		var uid int64
		if u := c.session.User(); u != nil {
			uid = u.ID
		}
		if !c.session.Invalidate(ctx, f.Token, reason) {
			c.logger.DebugContext(ctx, "duplicate auth failure collapsed",
				"request_id", f.Err.RequestID,
				"kind", f.Err.Kind.String(),
			)
			return
		}

		c.unread.Store(0)
		c.emit(ctx, Event{
			Type:      EventSessionInvalidated,
			Level:     LevelWarning,
			RequestID: f.Err.RequestID,
			UserID:    uid,
			Metadata:  map[string]string{"reason": reason.String()},
		})
		c.emit(ctx, Event{
			Type:      EventRedirect,
			Level:     LevelWarning,
			Message:   msg,
			Location:  loginRedirect(currentPathFromContext(ctx)),
			RequestID: f.Err.RequestID,
		})
		return
	}

	c.emit(ctx, Event{
		Type:      EventNotification,
		Level:     levelOf(f.Err.Kind),
		Message:   failureMessage(f),
		RequestID: f.Err.RequestID,
		Metadata: map[string]string{
			"kind":   f.Err.Kind.String(),
			"method": f.Err.Method,
			"path":   f.Err.Path,
			"status": strconv.Itoa(f.Err.Status),
		},
	})
}

func loginRedirect(from string) string {
	if from == "" || from == loginLocation {
		return loginLocation
	}
	return loginLocation + "?redirect=" + url.QueryEscape(from)
}

func failureMessage(f gateway.Failure) string {
	if f.Rejected {
		return MessageLoginRequired
	}

	switch f.Err.Kind {
	case gateway.UnauthorizedExpired:
		return MessageExpired
	case gateway.UnauthorizedInvalid:
		return MessageInvalid
	case gateway.Forbidden:
		return orDefault(f.Err.Message, MessageForbidden)
	case gateway.BadRequest:
		return orDefault(f.Err.Message, MessageBadRequest)
	case gateway.ServerError:
		return MessageServerError
	default:
		return MessageNetwork
	}
}

func levelOf(k gateway.Kind) Level {
	switch k {
	case gateway.ServerError, gateway.NetworkUnavailable:
		return LevelError
	default:
		return LevelWarning
	}
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

// UnreadCount returns the cached number of unread notifications.
func (c *Client) UnreadCount() int64 { return c.unread.Load() }

// SetUnread replaces the cached unread count. Negative values store zero.
func (c *Client) SetUnread(n int64) {
	c.unread.Store(max(n, 0))
}

// DecrementUnread lowers the cached count by one, never below zero.
func (c *Client) DecrementUnread() {
	for {
		n := c.unread.Load()
		if n <= 0 || c.unread.CompareAndSwap(n, n-1) {
			return
		}
	}
}

// RefreshUnread fetches the unread count from the backend, restoring the
// persisted session first if needed. Without a session it resets the count to
// zero without a request.
func (c *Client) RefreshUnread(ctx context.Context) (int64, error) {
	c.awaitSession(ctx)
	if !c.session.IsLoggedIn() {
		c.unread.Store(0)
		return 0, nil
	}

	n, err := c.api.Messages.UnreadCount(ctx)
	if err != nil {
		return c.unread.Load(), err
	}
	c.SetUnread(int64(n))
	return c.unread.Load(), nil
}

// MetricsSnapshot returns a copy of the in-process metrics.
func (c *Client) MetricsSnapshot() MetricsSnapshot {
	if c == nil || c.metrics == nil {
		return MetricsSnapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
		}
	}
	return c.metrics.Snapshot()
}

// EventsDropped returns the number of events the async dispatcher dropped.
func (c *Client) EventsDropped() uint64 {
	if c == nil {
		return 0
	}
	return c.dispatch.Dropped()
}

// AuditDropped is EventsDropped under the name metric exporters read.
func (c *Client) AuditDropped() uint64 { return c.EventsDropped() }

// Close flushes pending events and releases storage connections. The session
// stays persisted.
func (c *Client) Close() error {
	if c == nil || !c.closed.CompareAndSwap(false, true) {
		return nil
	}

	c.dispatch.Close()

	var errs []error
	for i := len(c.closers) - 1; i >= 0; i-- {
		if err := c.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (c *Client) emit(ctx context.Context, ev Event) {
	if ev.ID == "" {
		ev.ID = uuid.NewString()
	}
	if ev.Timestamp.IsZero() {
		ev.Timestamp = c.now()
	}

	if ev.Level == LevelError {
		c.logger.WarnContext(ctx, "event", "type", string(ev.Type), "message", ev.Message)
	} else {
		c.logger.DebugContext(ctx, "event", "type", string(ev.Type), "message", ev.Message)
	}

	if c.dispatch != nil {
		c.dispatch.Emit(ctx, ev)
		return
	}
	c.sink.Emit(ctx, ev)
}

func (c *Client) onRestore(ctx context.Context, user *session.UserProfile, err error) {
	if err == nil && user != nil {
		c.emit(ctx, Event{Type: EventSessionRestored, Level: LevelInfo, UserID: user.ID})
		return
	}

	var aerr *session.AuthError
	if !errors.As(err, &aerr) {
		c.logger.DebugContext(ctx, "session restore deferred", slogutil.KeyError, err)
		return
	}
	c.emit(ctx, Event{
		Type:     EventSessionInvalidated,
		Level:    LevelInfo,
		Metadata: map[string]string{"reason": aerr.Reason.String()},
	})
}

func (c *Client) onGuardNotice(ctx context.Context, d guard.Decision) {
	c.emit(ctx, Event{
		Type:     EventNotification,
		Level:    LevelWarning,
		Message:  d.Notice,
		Metadata: map[string]string{"route": d.Route, "location": d.Location},
	})
}
