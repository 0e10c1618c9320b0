package guard

import (
	"net/http"

	"github.com/AdguardTeam/golibs/httphdr"
)

// HeaderPageTitle carries Decision.Title on allowed responses.
const HeaderPageTitle = "X-Page-Title"

// Middleware applies g to every request: redirects become 302 responses and
// allowed requests get the page title header.
func Middleware(g *Guard) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if g == nil {
				http.Error(w, "guard unavailable", http.StatusInternalServerError)
				return
			}

			d := g.Check(r.Context(), Navigation{Path: r.URL.RequestURI()})
			if d.Outcome != Allowed {
				w.Header().Set(httphdr.Location, d.Location)
				w.WriteHeader(http.StatusFound)
				return
			}

			w.Header().Set(HeaderPageTitle, d.Title)
			next.ServeHTTP(w, r)
		})
	}
}
