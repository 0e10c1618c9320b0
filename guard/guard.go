package guard

import (
	"context"
	"log/slog"
	"net/url"

	"github.com/AdguardTeam/golibs/logutil/slogutil"
	"github.com/MrEthical07/blogClient/internal/metrics"
)

// Outcome is the result of a navigation check.
type Outcome uint8

const (
	Allowed Outcome = iota
	RedirectLogin
	RedirectHome
)

const (
	defaultTitle = "Academic Blog"
	titleSuffix  = " - Blog System"

	loginPath = "/login"
	homePath  = "/"

	NoticeLoginRequired = "please log in first"
	NoticeAdminRequired = "admin privileges required to access this page"
)

func (o Outcome) String() string {
	switch o {
	case Allowed:
		return "allowed"
	case RedirectLogin:
		return "redirect_login"
	case RedirectHome:
		return "redirect_home"
	default:
		return "unknown"
	}
}

// Session is the view of the session store the guard needs.
type Session interface {
	Initialize(ctx context.Context) bool
	IsLoggedIn() bool
	IsAdmin() bool
}

// Navigation is a navigation attempt. Path is the full path including query.
type Navigation struct {
	Path string
}

// Decision is the guard's verdict.
type Decision struct {
	Outcome Outcome
	// Location is the redirect target; empty when Allowed.
	Location string
	// Title is the page title to display for the target route.
	Title string
	// Notice is the user-facing message for a redirect caused by missing
	// authentication or privileges. It is empty for Allowed and for the
	// catch-all redirect.
	Notice string
	Route  string
}

// Options configure a Guard.
type Options struct {
	Table   *Table
	Metrics *metrics.Metrics
	Logger  *slog.Logger
	// Notify receives every decision that carries a Notice.
	Notify func(ctx context.Context, d Decision)
}

// Guard checks navigations against a route table.
type Guard struct {
	session Session
	table   *Table
	metrics *metrics.Metrics
	logger  *slog.Logger
	notify  func(ctx context.Context, d Decision)
}

// New returns a Guard over s. A nil Table selects DefaultTable.
func New(s Session, opts Options) *Guard {
	g := &Guard{
		session: s,
		table:   opts.Table,
		metrics: opts.Metrics,
		logger:  opts.Logger,
		notify:  opts.Notify,
	}
	if g.table == nil {
		g.table = DefaultTable()
	}
	if g.logger == nil {
		g.logger = slogutil.NewDiscardLogger()
	}
	return g
}

// Check waits for session initialization and decides nav.
func (g *Guard) Check(ctx context.Context, nav Navigation) Decision {
	loggedIn := g.session.Initialize(ctx) && g.session.IsLoggedIn()

	route, ok := g.table.Resolve(nav.Path)
	if !ok {
		d := Decision{Outcome: RedirectHome, Location: homePath, Title: title("")}
		g.record(ctx, nav, d)
		return d
	}

	d := Decision{Outcome: Allowed, Title: title(route.Meta.Title), Route: route.Name}

	requiresAuth := route.Meta.RequiresAuth || route.Meta.RequiresAdmin

	switch {
	case requiresAuth && !loggedIn:
		d.Outcome = RedirectLogin
		d.Location = loginPath + "?redirect=" + url.QueryEscape(nav.Path)
		d.Notice = NoticeLoginRequired
	case route.Meta.RequiresAdmin && !g.session.IsAdmin():
		d.Outcome = RedirectHome
		d.Location = homePath
		d.Notice = NoticeAdminRequired
	}

	g.record(ctx, nav, d)
	return d
}

func (g *Guard) record(ctx context.Context, nav Navigation, d Decision) {
	switch d.Outcome {
	case Allowed:
		g.metrics.Inc(metrics.GuardAllowed)
	case RedirectLogin:
		g.metrics.Inc(metrics.GuardRedirectLogin)
	case RedirectHome:
		g.metrics.Inc(metrics.GuardRedirectHome)
	}

	g.logger.DebugContext(ctx, "navigation checked",
		"path", nav.Path,
		"route", d.Route,
		"outcome", d.Outcome.String(),
	)

	if d.Notice != "" && g.notify != nil {
		g.notify(ctx, d)
	}
}

func title(t string) string {
	if t == "" {
		t = defaultTitle
	}
	return t + titleSuffix
}
