package roles

import (
	"encoding/json"
	"sort"
	"strings"
)

const (
	// Admin is the role required by admin-only routes.
	Admin = "ROLE_ADMIN"
	// User is the default role assigned by the backend.
	User = "ROLE_USER"

	prefix     = "ROLE_"
	adminAlias = "管理员"
)

// Set is an immutable-by-convention set of normalized role names.
type Set map[string]struct{}

// Of builds a Set from already known role names, normalizing each.
func Of(names ...string) Set {
	s := make(Set, len(names))
	for _, n := range names {
		if r, ok := normalize(n); ok {
			s[r] = struct{}{}
		}
	}
	return s
}

// Parse is the only place that interprets raw role data. Unknown shapes yield an
// empty set.
func Parse(raw any) Set {
	s := Set{}
	s.collect(raw, 0)
	return s
}

func (s Set) collect(raw any, depth int) {
	if depth > 4 {
		return
	}

	switch v := raw.(type) {
	case nil:
	case string:
		trimmed := strings.TrimSpace(v)
		if strings.HasPrefix(trimmed, "[") && strings.HasSuffix(trimmed, "]") {
			var items []any
			if err := json.Unmarshal([]byte(trimmed), &items); err == nil {
				s.collect(items, depth+1)
				return
			}
		}
		for _, part := range strings.Split(trimmed, ",") {
			if r, ok := normalize(part); ok {
				s[r] = struct{}{}
			}
		}
	case []string:
		for _, item := range v {
			s.collect(item, depth+1)
		}
	case []any:
		for _, item := range v {
			s.collect(item, depth+1)
		}
	case map[string]any:
		for _, key := range []string{"roleName", "name", "authority", "role"} {
			if name, ok := v[key]; ok {
				s.collect(name, depth+1)
				return
			}
		}
	case Set:
		for r := range v {
			s[r] = struct{}{}
		}
	}
}

func normalize(name string) (string, bool) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", false
	}
	if name == adminAlias {
		return Admin, true
	}

	name = strings.ToUpper(name)
	if !strings.HasPrefix(name, prefix) {
		name = prefix + name
	}
	if name == prefix {
		return "", false
	}
	return name, true
}

// Has reports whether role (normalized first) is in the set.
func (s Set) Has(role string) bool {
	r, ok := normalize(role)
	if !ok {
		return false
	}
	_, ok = s[r]
	return ok
}

func (s Set) IsAdmin() bool {
	_, ok := s[Admin]
	return ok
}

// Slice returns the roles sorted.
func (s Set) Slice() []string {
	out := make([]string, 0, len(s))
	for r := range s {
		out = append(out, r)
	}
	sort.Strings(out)
	return out
}

func (s Set) Clone() Set {
	out := make(Set, len(s))
	for r := range s {
		out[r] = struct{}{}
	}
	return out
}

func (s Set) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Slice())
}

func (s *Set) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*s = Parse(raw)
	return nil
}
