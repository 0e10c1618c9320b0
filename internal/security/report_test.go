package security

import (
	"slices"
	"testing"
	"time"
)

func TestBuildReportDefaultsOnLoopback(t *testing.T) {
	r := BuildReport(ReportInput{
		BaseURL:          "http://localhost:8080/api",
		AssetBaseURL:     "http://localhost:8080",
		StorageKind:      "bolt",
		LocalExpiryCheck: true,
		MaxRetries:       3,
	})

	if r.TransportEncrypted || !r.LoopbackBackend || !r.DurableSession || r.SharedSession {
		t.Fatalf("unexpected report: %+v", r)
	}
	if len(r.Warnings) != 0 {
		t.Fatalf("unexpected warnings: %v", r.Warnings)
	}
}

func TestBuildReportWarnings(t *testing.T) {
	r := BuildReport(ReportInput{
		BaseURL:      "http://blog.example.com/api",
		AssetBaseURL: "https://cdn.example.com",
		StorageKind:  "redis",
		ExpiryLeeway: time.Second,
	})

	for _, w := range []string{
		WarnPlaintextTransport,
		WarnSharedWithoutAuth,
		WarnUnboundedSharedTTL,
		WarnNoLocalExpiryCheck,
		WarnAssetOriginMismatch,
	} {
		if !slices.Contains(r.Warnings, w) {
			t.Fatalf("missing warning %q in %v", w, r.Warnings)
		}
	}
	if slices.Contains(r.Warnings, WarnEphemeralSession) {
		t.Fatal("redis storage reported as ephemeral")
	}
}

func TestBuildReportMemoryStorage(t *testing.T) {
	r := BuildReport(ReportInput{BaseURL: "https://blog.example.com/api", StorageKind: "memory", LocalExpiryCheck: true})
	if !r.TransportEncrypted || r.DurableSession {
		t.Fatalf("unexpected report: %+v", r)
	}
	if !slices.Equal(r.Warnings, []string{WarnEphemeralSession}) {
		t.Fatalf("unexpected warnings: %v", r.Warnings)
	}
}
