package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/bluele/gcache"

	"github.com/MrEthical07/blogClient/gateway"
	"github.com/MrEthical07/blogClient/roles"
)

const (
	defaultUserCacheSize = 128
	defaultUserCacheTTL  = 5 * time.Minute
)

// PublicProfile is what any visitor may see about a user.
type PublicProfile struct {
	ID        int64     `json:"userId"`
	Username  string    `json:"username"`
	Avatar    string    `json:"avatar,omitempty"`
	Bio       string    `json:"bio,omitempty"`
	Roles     roles.Set `json:"roles,omitempty"`
	CreatedAt string    `json:"createdAt,omitempty"`
}

// Users fetches public profiles through an LRU cache keyed by user id.
type Users struct {
	d     Doer
	cache gcache.Cache
}

func newUsers(d Doer, size int, ttl time.Duration) *Users {
	if size <= 0 {
		size = defaultUserCacheSize
	}
	if ttl <= 0 {
		ttl = defaultUserCacheTTL
	}

	return &Users{
		d:     d,
		cache: gcache.New(size).LRU().Expiration(ttl).Build(),
	}
}

// Profile returns the public profile of id, from cache when fresh.
func (u *Users) Profile(ctx context.Context, id int64) (PublicProfile, error) {
	v, err := u.cache.Get(id)
	if err == nil {
		return v.(PublicProfile), nil
	} else if !errors.Is(err, gcache.KeyNotFoundError) {
		return PublicProfile{}, err
	}

	p, err := call[PublicProfile](ctx, u.d, http.MethodGet, idPath("/users/%d", id), nil, gateway.Options{})
	if err != nil {
		return PublicProfile{}, err
	}

	// Set only fails for a nil key.
	_ = u.cache.Set(id, p)

	return p, nil
}

// Invalidate drops id from the cache, e.g. after the user edits their profile.
func (u *Users) Invalidate(id int64) {
	u.cache.Remove(id)
}

// Purge empties the cache.
func (u *Users) Purge() {
	u.cache.Purge()
}

// MeUpdate is the body of PUT /users/me. Nil fields are left out.
type MeUpdate struct {
	Username *string `json:"username,omitempty"`
	Email    *string `json:"email,omitempty"`
	Avatar   *string `json:"avatar,omitempty"`
	Bio      *string `json:"bio,omitempty"`
}

// UpdateMe saves the logged in user's profile.
func (u *Users) UpdateMe(ctx context.Context, in MeUpdate) error {
	return exec(ctx, u.d, http.MethodPut, "/users/me", in)
}
