package session

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/MrEthical07/blogClient/roles"
)

// EncodeProfile serializes u for the "userInfo" storage key.
func EncodeProfile(u *UserProfile) (string, error) {
	if u == nil {
		return "", fmt.Errorf("%w: nil profile", ErrCorruptRecord)
	}
	data, err := json.Marshal(u)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// DecodeProfile parses a persisted "userInfo" value. Legacy shapes written by
// older clients (UserId, id, role, name) are accepted; a record without a
// positive user id is rejected.
func DecodeProfile(raw string) (*UserProfile, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, ErrNotFound
	}
	dec := json.NewDecoder(strings.NewReader(raw))
	dec.UseNumber()
	var m map[string]any
	if err := dec.Decode(&m); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptRecord, err)
	}
	if dec.More() {
		return nil, fmt.Errorf("%w: trailing data", ErrCorruptRecord)
	}
	u := profileFromMap(m)
	if u.ID <= 0 {
		return nil, fmt.Errorf("%w: missing user id", ErrCorruptRecord)
	}
	return u, nil
}

// profileFromMap is the single adapter from backend user objects to
// UserProfile.
func profileFromMap(m map[string]any) *UserProfile {
	u := &UserProfile{
		ID:       int64Field(m, "userId", "UserId", "id"),
		Username: stringField(m, "username", "name"),
		Email:    stringField(m, "email"),
		Avatar:   stringField(m, "avatar"),
		Bio:      stringField(m, "bio", "description"),
		Disabled: boolField(m, "disabled", "isDisabled"),
	}
	if raw, ok := m["roles"]; ok && raw != nil {
		u.Roles = roles.Parse(raw)
	} else {
		u.Roles = roles.Parse(m["role"])
	}
	if t, ok := timeField(m, "muteEndTime"); ok {
		u.MutedUntil = &t
	}
	return u
}

func stringField(m map[string]any, keys ...string) string {
	for _, k := range keys {
		if s, ok := m[k].(string); ok && strings.TrimSpace(s) != "" {
			return strings.TrimSpace(s)
		}
	}
	return ""
}

func int64Field(m map[string]any, keys ...string) int64 {
	for _, k := range keys {
		switch v := m[k].(type) {
		case float64:
			if v >= 1 && v < math.MaxInt64 {
				return int64(v)
			}
		case json.Number:
			if n, err := v.Int64(); err == nil && n > 0 {
				return n
			}
		case string:
			if n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64); err == nil && n > 0 {
				return n
			}
		}
	}
	return 0
}

func boolField(m map[string]any, keys ...string) bool {
	for _, k := range keys {
		switch v := m[k].(type) {
		case bool:
			if v {
				return true
			}
		case float64:
			if v != 0 {
				return true
			}
		case json.Number:
			if f, err := v.Float64(); err == nil && f != 0 {
				return true
			}
		}
	}
	return false
}

var muteLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

func timeField(m map[string]any, key string) (time.Time, bool) {
	s, ok := m[key].(string)
	if !ok || strings.TrimSpace(s) == "" {
		return time.Time{}, false
	}
	for _, layout := range muteLayouts {
		if t, err := time.ParseInLocation(layout, strings.TrimSpace(s), time.Local); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// decodeLoginResponse accepts the flat {token, userId, ...} body and the nested
// {token, user: {...}} body. identifier fills username and email when the
// backend omits them.
func decodeLoginResponse(m map[string]any, identifier string) (string, *UserProfile, error) {
	token := stringField(m, "token", "accessToken", "access_token")
	if token == "" {
		return "", nil, fmt.Errorf("%w: missing token", ErrMalformedResponse)
	}

	src := m
	if nested, ok := m["user"].(map[string]any); ok {
		src = nested
	}
	u := profileFromMap(src)
	if u.ID <= 0 {
		return "", nil, fmt.Errorf("%w: missing user id", ErrMalformedResponse)
	}

	if u.Email == "" && strings.Contains(identifier, "@") {
		u.Email = identifier
	}
	if u.Username == "" {
		u.Username, _, _ = strings.Cut(identifier, "@")
	}
	if len(u.Roles) == 0 {
		u.Roles = roles.Of(roles.User)
	}
	return strings.TrimPrefix(token, "Bearer "), u, nil
}
