package session

import (
	"net/url"
	"strconv"
	"strings"
	"time"
)

// DefaultAvatar is shown for users without an avatar.
const DefaultAvatar = "https://api.dicebear.com/7.x/bottts/png?seed=1234"

// AvatarURL resolves avatar against the asset base. Relative paths with or
// without an "api/" or "uploads/" prefix resolve to <base>/uploads/<name>. Any
// existing query is dropped; a non-zero stamp appends ?t=<unix millis>. An empty
// avatar yields DefaultAvatar.
func AvatarURL(base, avatar string, stamp time.Time) string {
	avatar = strings.TrimSpace(avatar)
	if avatar == "" {
		return DefaultAvatar
	}

	var full string
	if u, err := url.Parse(avatar); err == nil && u.Scheme != "" && u.Host != "" {
		u.RawQuery = ""
		u.Fragment = ""
		full = u.String()
	} else {
		name := avatar
		if i := strings.IndexAny(name, "?#"); i >= 0 {
			name = name[:i]
		}
		name = strings.TrimPrefix(name, "/")
		name = strings.TrimPrefix(name, "api/")
		name = strings.TrimPrefix(name, "uploads/")
		full = strings.TrimRight(base, "/") + "/uploads/" + name
	}

	if stamp.IsZero() {
		return full
	}
	return full + "?t=" + strconv.FormatInt(stamp.UnixMilli(), 10)
}
