package security

import (
	"net"
	"net/url"
	"strings"
	"time"
)

// Warnings reported by BuildReport.
const (
	WarnPlaintextTransport  = "bearer token is sent over plain http to a non-loopback host"
	WarnEphemeralSession    = "session is kept in memory only and is lost on exit"
	WarnSharedWithoutAuth   = "session is shared through redis without a password"
	WarnNoLocalExpiryCheck  = "expired tokens are only detected by the server"
	WarnUnboundedSharedTTL  = "shared session has no expiry in redis"
	WarnAssetOriginMismatch = "asset base url uses a different scheme than the api"
)

type ReportInput struct {
	BaseURL          string
	AssetBaseURL     string
	StorageKind      string
	RedisPassword    string
	RedisTTL         time.Duration
	LocalExpiryCheck bool
	ExpiryLeeway     time.Duration
	MaxRetries       int
}

type Report struct {
	TransportEncrypted bool
	LoopbackBackend    bool
	DurableSession     bool
	SharedSession      bool
	LocalExpiryCheck   bool
	ExpiryLeeway       time.Duration
	RetriesEnabled     bool
	Warnings           []string
}

func BuildReport(input ReportInput) Report {
	api, _ := url.Parse(input.BaseURL)
	encrypted := api != nil && strings.EqualFold(api.Scheme, "https")
	loopback := api != nil && isLoopback(api.Hostname())

	kind := strings.ToLower(input.StorageKind)
	shared := kind == "redis"

	r := Report{
		TransportEncrypted: encrypted,
		LoopbackBackend:    loopback,
		DurableSession:     kind != "" && kind != "memory",
		SharedSession:      shared,
		LocalExpiryCheck:   input.LocalExpiryCheck,
		ExpiryLeeway:       input.ExpiryLeeway,
		RetriesEnabled:     input.MaxRetries > 0,
	}

	if !encrypted && !loopback {
		r.Warnings = append(r.Warnings, WarnPlaintextTransport)
	}
	if !r.DurableSession {
		r.Warnings = append(r.Warnings, WarnEphemeralSession)
	}
	if shared && input.RedisPassword == "" {
		r.Warnings = append(r.Warnings, WarnSharedWithoutAuth)
	}
	if shared && input.RedisTTL <= 0 {
		r.Warnings = append(r.Warnings, WarnUnboundedSharedTTL)
	}
	if !input.LocalExpiryCheck {
		r.Warnings = append(r.Warnings, WarnNoLocalExpiryCheck)
	}
	if assets, err := url.Parse(input.AssetBaseURL); err == nil && api != nil &&
		assets.Scheme != "" && !strings.EqualFold(assets.Scheme, api.Scheme) {
		r.Warnings = append(r.Warnings, WarnAssetOriginMismatch)
	}

	return r
}

func isLoopback(host string) bool {
	if strings.EqualFold(host, "localhost") {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}
