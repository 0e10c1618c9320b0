package session

import (
	"time"

	"github.com/MrEthical07/blogClient/roles"
)

// UserProfile is the authenticated user as the backend describes it. It is
// replaced wholesale, never edited in place by readers.
type UserProfile struct {
	ID         int64      `json:"userId"`
	Username   string     `json:"username"`
	Email      string     `json:"email"`
	Avatar     string     `json:"avatar,omitempty"`
	Bio        string     `json:"bio,omitempty"`
	Roles      roles.Set  `json:"roles"`
	Disabled   bool       `json:"disabled,omitempty"`
	MutedUntil *time.Time `json:"muteEndTime,omitempty"`
}

// Clone returns a deep copy.
func (u *UserProfile) Clone() *UserProfile {
	if u == nil {
		return nil
	}
	out := *u
	out.Roles = u.Roles.Clone()
	if u.MutedUntil != nil {
		t := *u.MutedUntil
		out.MutedUntil = &t
	}
	return &out
}

// Muted reports whether the user is muted at now.
func (u *UserProfile) Muted(now time.Time) bool {
	return u != nil && u.MutedUntil != nil && now.Before(*u.MutedUntil)
}

// Session is a value snapshot of the store state. User != nil implies Token != "".
type Session struct {
	Token       string
	User        *UserProfile
	Initialized bool
}

// LoggedIn reports whether the snapshot carries an authenticated user.
func (s Session) LoggedIn() bool {
	return s.Token != "" && s.User != nil
}

// ProfileUpdate holds the fields a caller may change. Nil fields are kept.
type ProfileUpdate struct {
	Username *string
	Email    *string
	Avatar   *string
	Bio      *string
}
