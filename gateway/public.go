package gateway

import (
	"net/http"
	"regexp"
	"strings"
)

var (
	publicAnyMethod = []string{"/auth/login", "/auth/register"}
	publicGetExact  = []string{"/posts", "/posts/tags"}
	neverPublic     = []string{"/users/me", "/users/favorites"}

	postByID = regexp.MustCompile(`^/posts/\d+$`)
	userByID = regexp.MustCompile(`^/users/\d+$`)
)

// IsPublic reports whether a request may be sent without a token. The query
// string is ignored.
func IsPublic(path, method string) bool {
	p := cleanPath(path)

	for _, pre := range publicAnyMethod {
		if strings.HasPrefix(p, pre) {
			return true
		}
	}
	for _, n := range neverPublic {
		if p == n || strings.HasPrefix(p, n+"/") {
			return false
		}
	}

	if !strings.EqualFold(method, http.MethodGet) {
		return false
	}
	for _, e := range publicGetExact {
		if p == e {
			return true
		}
	}
	return strings.HasPrefix(p, "/posts/bytags") || postByID.MatchString(p) || userByID.MatchString(p)
}

func cleanPath(path string) string {
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	if len(path) > 1 {
		path = strings.TrimRight(path, "/")
	}
	return path
}
