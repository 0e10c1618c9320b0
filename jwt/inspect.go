package jwt

import (
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/MrEthical07/blogClient/roles"
	"github.com/golang-jwt/jwt/v5"
)

// ErrNotJWT is returned for opaque tokens that are not three-part JWTs.
var ErrNotJWT = errors.New("token is not a jwt")

// Claims holds the fields the client cares about.
type Claims struct {
	Subject   string
	UserID    int64
	Username  string
	Roles     roles.Set
	IssuedAt  time.Time
	ExpiresAt time.Time
}

type rawClaims struct {
	UserID   any    `json:"userId,omitempty"`
	UID      any    `json:"uid,omitempty"`
	Username string `json:"username,omitempty"`
	Roles    any    `json:"roles,omitempty"`
	Role     any    `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// Inspector decodes tokens and applies a clock and leeway for expiry checks.
type Inspector struct {
	leeway time.Duration
	now    func() time.Time
}

// NewInspector returns an Inspector. leeway widens the validity window on both
// sides; a negative leeway makes tokens count as expired early.
func NewInspector(leeway time.Duration) *Inspector {
	return &Inspector{leeway: leeway, now: time.Now}
}

// WithClock overrides the time source, mainly for tests.
func (i *Inspector) WithClock(now func() time.Time) *Inspector {
	if now != nil {
		i.now = now
	}
	return i
}

// Inspect decodes token without verifying its signature. A leading "Bearer " is
// tolerated.
func (i *Inspector) Inspect(token string) (*Claims, error) {
	token = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(token), "Bearer "))
	if strings.Count(token, ".") != 2 {
		return nil, ErrNotJWT
	}

	raw := &rawClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, raw); err != nil {
		return nil, err
	}

	c := &Claims{
		Subject:  raw.Subject,
		Username: raw.Username,
		UserID:   toInt64(raw.UserID),
	}
	if c.UserID == 0 {
		c.UserID = toInt64(raw.UID)
	}
	if raw.Roles != nil {
		c.Roles = roles.Parse(raw.Roles)
	} else {
		c.Roles = roles.Parse(raw.Role)
	}
	if raw.IssuedAt != nil {
		c.IssuedAt = raw.IssuedAt.Time
	}
	if raw.ExpiresAt != nil {
		c.ExpiresAt = raw.ExpiresAt.Time
	}
	return c, nil
}

// Expired reports whether token carries an exp claim that has passed. Opaque
// tokens and tokens without exp are never reported as expired; the server
// decides for those.
func (i *Inspector) Expired(token string) bool {
	c, err := i.Inspect(token)
	if err != nil || c.ExpiresAt.IsZero() {
		return false
	}
	return !i.now().Before(c.ExpiresAt.Add(i.leeway))
}

// ExpiresWithin reports whether a decodable token expires within d.
func (i *Inspector) ExpiresWithin(token string, d time.Duration) bool {
	c, err := i.Inspect(token)
	if err != nil || c.ExpiresAt.IsZero() {
		return false
	}
	return !i.now().Add(d).Before(c.ExpiresAt)
}

// Roles returns the role claim of token, or an empty set.
func (i *Inspector) Roles(token string) roles.Set {
	c, err := i.Inspect(token)
	if err != nil {
		return roles.Set{}
	}
	return c.Roles
}

// UserID returns the numeric user id claim of token, or 0.
func (i *Inspector) UserID(token string) int64 {
	c, err := i.Inspect(token)
	if err != nil {
		return 0
	}
	return c.UserID
}

func toInt64(v any) int64 {
	switch n := v.(type) {
	case float64:
		return int64(n)
	case json.Number:
		out, _ := n.Int64()
		return out
	case string:
		out, _ := strconv.ParseInt(strings.TrimSpace(n), 10, 64)
		return out
	default:
		return 0
	}
}

// IsExpired is Inspector.Expired with the wall clock.
func IsExpired(token string, leeway time.Duration) bool {
	return NewInspector(leeway).Expired(token)
}

// Roles returns the role claim of token using a default Inspector.
func Roles(token string) roles.Set {
	return NewInspector(0).Roles(token)
}

// UserID returns the user id claim of token using a default Inspector.
func UserID(token string) int64 {
	return NewInspector(0).UserID(token)
}
