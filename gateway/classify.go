package gateway

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strings"
	"unicode/utf8"
)

// envelope is the backend's business wrapper {code, message, data}.
type envelope struct {
	Code    *int            `json:"code"`
	Message string          `json:"message"`
	Error   string          `json:"error"`
	Data    json.RawMessage `json:"data"`
}

// Classify maps a response status, body and transport error to a Kind. A 2xx body
// carrying an envelope with a failing HTTP-like code is classified by that code.
func Classify(status int, body []byte, transportErr error) Kind {
	if transportErr != nil || status == 0 {
		return NetworkUnavailable
	}

	if status >= 200 && status < 300 {
		env, ok := parseEnvelope(body)
		if !ok || env.Code == nil || *env.Code < 400 || *env.Code > 599 {
			return KindNone
		}
		status = *env.Code
	}

	switch {
	case status == http.StatusUnauthorized:
		if mentionsExpiry(messageOf(body)) {
			return UnauthorizedExpired
		}
		return UnauthorizedInvalid
	case status == http.StatusForbidden:
		return Forbidden
	case status >= 400 && status < 500:
		return BadRequest
	case status >= 500:
		return ServerError
	default:
		return KindNone
	}
}

func classifyResponse(status int, header http.Header, body []byte, transportErr error) Kind {
	k := Classify(status, body, transportErr)
	if k == UnauthorizedInvalid && header != nil && mentionsExpiry(header.Get(hdrWWWAuthenticate)) {
		return UnauthorizedExpired
	}
	return k
}

func mentionsExpiry(s string) bool {
	s = strings.ToLower(s)
	return strings.Contains(s, "expired") || strings.Contains(s, "过期")
}

func parseEnvelope(body []byte) (envelope, bool) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return envelope{}, false
	}
	var env envelope
	if err := json.Unmarshal(trimmed, &env); err != nil {
		return envelope{}, false
	}
	return env, true
}

// maxMessageLen bounds plain-text messages in bytes; cuts fall on a rune
// boundary.
const maxMessageLen = 200

// messageOf extracts a human readable message from an error body.
func messageOf(body []byte) string {
	if env, ok := parseEnvelope(body); ok {
		if env.Message != "" {
			return env.Message
		}
		if env.Error != "" {
			return env.Error
		}
		return ""
	}
	msg := strings.TrimSpace(string(body))
	if len(msg) > maxMessageLen {
		n := maxMessageLen
		for n > 0 && !utf8.RuneStart(msg[n]) {
			n--
		}
		msg = msg[:n]
	}
	return msg
}
