package session

import (
	"encoding/json"
	"strings"
	"testing"
)

// FuzzDecodeProfile feeds arbitrary persisted userInfo records to the decoder.
// Goal: no panics; an accepted profile has a positive id and normalized roles.
func FuzzDecodeProfile(f *testing.F) {
	u := &UserProfile{ID: 7, Username: "alice", Email: "alice@example.com"}
	if raw, err := EncodeProfile(u); err == nil {
		f.Add(raw)
	}

	f.Add(`{"UserId":"12","name":"carol","role":"管理员"}`)
	f.Add(`{"id":3,"roles":"[\"admin\",{\"roleName\":\"user\"}]"}`)
	f.Add(`{"userId":1e300}`)
	f.Add(`{"userId":-4,"id":0.5}`)
	f.Add(`{"userId":9,"muteEndTime":"2025-01-01 10:00:00"}`)
	f.Add(`[]`)
	f.Add(`null`)
	f.Add(``)
	f.Add(`{`)

	f.Fuzz(func(t *testing.T, raw string) {
		u, err := DecodeProfile(raw)
		if err != nil {
			return
		}
		if u.ID <= 0 {
			t.Fatalf("accepted profile with id %d", u.ID)
		}
		assertNormalizedRoles(t, u)

		// A decoded profile must survive the persistence round trip.
		enc, err := EncodeProfile(u)
		if err != nil {
			t.Fatalf("EncodeProfile after DecodeProfile: %v", err)
		}
		again, err := DecodeProfile(enc)
		if err != nil {
			t.Fatalf("re-decode: %v", err)
		}
		if again.ID != u.ID {
			t.Fatalf("id changed on round trip: %d vs %d", again.ID, u.ID)
		}
	})
}

// FuzzDecodeLoginResponse feeds arbitrary login bodies to the response adapter.
func FuzzDecodeLoginResponse(f *testing.F) {
	f.Add(`{"token":"tok-1","userId":7,"username":"alice","roles":["ROLE_USER"]}`, "alice@example.com")
	f.Add(`{"accessToken":"Bearer tok-2","user":{"id":"12","name":"carol","role":"管理员"}}`, "carol")
	f.Add(`{"token":"t","user":"not an object","userId":5}`, "")
	f.Add(`{"token":"","userId":1}`, "x@y")
	f.Add(`{"token":"t","userId":1e300}`, "x@y")
	f.Add(`{}`, "")

	f.Fuzz(func(t *testing.T, body, identifier string) {
		var m map[string]any
		if err := json.Unmarshal([]byte(body), &m); err != nil || m == nil {
			return
		}

		token, u, err := decodeLoginResponse(m, identifier)
		if err != nil {
			return
		}
		if token == "" {
			t.Fatal("accepted login response without token")
		}
		if u.ID <= 0 {
			t.Fatalf("accepted login response with id %d", u.ID)
		}
		if len(u.Roles) == 0 {
			t.Fatal("login user without roles")
		}
		assertNormalizedRoles(t, u)
	})
}

func assertNormalizedRoles(t *testing.T, u *UserProfile) {
	t.Helper()
	if u.Roles == nil {
		t.Fatal("nil role set")
	}
	for _, r := range u.Roles.Slice() {
		if !strings.HasPrefix(r, "ROLE_") || r == "ROLE_" || strings.TrimSpace(r) != r {
			t.Fatalf("role %q is not normalized", r)
		}
		if !u.Roles.Has(r) {
			t.Fatalf("role %q does not match itself", r)
		}
	}
}
