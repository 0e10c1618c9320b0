package guard

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/gorilla/mux"
)

// Meta is the per-route access metadata.
type Meta struct {
	RequiresAuth  bool
	RequiresAdmin bool
	Title         string
}

// Route binds a gorilla/mux path template to Meta. Prefix routes match every
// path below Pattern.
type Route struct {
	Name    string
	Pattern string
	Prefix  bool
	Meta    Meta
}

// Table resolves paths to routes in registration order.
type Table struct {
	router *mux.Router
	routes map[string]Route
}

// NewTable registers routes in order; earlier routes win.
func NewTable(routes ...Route) *Table {
	t := &Table{router: mux.NewRouter(), routes: make(map[string]Route, len(routes))}
	for _, r := range routes {
		t.Add(r)
	}
	return t
}

// Add appends r. Routes with a duplicate name replace the earlier metadata but
// keep its position.
func (t *Table) Add(r Route) {
	if _, exists := t.routes[r.Name]; !exists {
		mr := t.router.NewRoute().Name(r.Name)
		if r.Prefix {
			mr.PathPrefix(r.Pattern)
		} else {
			mr.Path(r.Pattern)
		}
	}
	t.routes[r.Name] = r
}

// Resolve returns the route for path, ignoring query and fragment.
func (t *Table) Resolve(path string) (Route, bool) {
	u, err := url.Parse(path)
	if err != nil {
		return Route{}, false
	}
	p := u.Path
	if p == "" {
		p = "/"
	}
	if len(p) > 1 {
		p = strings.TrimRight(p, "/")
	}

	req := &http.Request{Method: http.MethodGet, URL: &url.URL{Path: p}}
	var match mux.RouteMatch
	if !t.router.Match(req, &match) || match.Route == nil {
		return Route{}, false
	}
	r, ok := t.routes[match.Route.GetName()]
	return r, ok
}

// DefaultRoutes mirrors the blog front end.
func DefaultRoutes() []Route {
	return []Route{
		{Name: "home", Pattern: "/", Meta: Meta{Title: "Home"}},
		{Name: "posts", Pattern: "/posts", Meta: Meta{Title: "Posts"}},
		{Name: "post-create", Pattern: "/posts/create", Meta: Meta{Title: "New Post", RequiresAuth: true}},
		{Name: "post-edit", Pattern: "/posts/{id}/edit", Meta: Meta{Title: "Edit Post", RequiresAuth: true}},
		{Name: "post-detail", Pattern: "/posts/{id}", Meta: Meta{Title: "Post"}},
		{Name: "profile", Pattern: "/profile", Meta: Meta{Title: "Profile", RequiresAuth: true}},
		{Name: "notifications", Pattern: "/notifications", Meta: Meta{RequiresAuth: true}},
		{Name: "messages", Pattern: "/messages", Meta: Meta{Title: "Academic Exchange", RequiresAuth: true}},
		{Name: "admin", Pattern: "/admin", Meta: Meta{RequiresAuth: true, RequiresAdmin: true}},
		{Name: "admin-children", Pattern: "/admin/", Prefix: true, Meta: Meta{RequiresAuth: true, RequiresAdmin: true}},
		{Name: "ai-chat", Pattern: "/ai-chat", Meta: Meta{Title: "AI Chat", RequiresAuth: true}},
		{Name: "login", Pattern: "/login", Meta: Meta{Title: "Login"}},
		{Name: "register", Pattern: "/register", Meta: Meta{Title: "Register"}},
	}
}

// DefaultTable is NewTable(DefaultRoutes()...).
func DefaultTable() *Table {
	return NewTable(DefaultRoutes()...)
}
