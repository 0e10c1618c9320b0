package internaldefs

import (
	blog "github.com/MrEthical07/blogClient"
)

// CounterDef names one counter.
type CounterDef struct {
	ID   blog.MetricID
	Name string
	Help string
}

// HistogramDef names one histogram.
type HistogramDef struct {
	ID   blog.MetricID
	Name string
	Help string
}

// EventsDroppedName is the counter of events dropped by the async dispatcher.
const EventsDroppedName = "blog_client_events_dropped_total"

var CounterDefs = []CounterDef{
	{ID: blog.MetricRequestSuccess, Name: "blog_client_request_success_total", Help: "Requests that completed with a 2xx response."},
	{ID: blog.MetricRequestFailure, Name: "blog_client_request_failure_total", Help: "Requests that ended in a classified failure."},
	{ID: blog.MetricRequestRetry, Name: "blog_client_request_retry_total", Help: "Retry attempts of idempotent requests."},
	{ID: blog.MetricRequestRejectedNoToken, Name: "blog_client_request_rejected_no_token_total", Help: "Protected requests rejected locally for lack of a token."},
	{ID: blog.MetricNetworkUnavailable, Name: "blog_client_network_unavailable_total", Help: "Failures without a response."},
	{ID: blog.MetricUnauthorizedExpired, Name: "blog_client_unauthorized_expired_total", Help: "Failures caused by an expired token."},
	{ID: blog.MetricUnauthorizedInvalid, Name: "blog_client_unauthorized_invalid_total", Help: "Failures caused by a rejected token."},
	{ID: blog.MetricForbidden, Name: "blog_client_forbidden_total", Help: "HTTP 403 failures."},
	{ID: blog.MetricBadRequest, Name: "blog_client_bad_request_total", Help: "Other 4xx failures."},
	{ID: blog.MetricServerError, Name: "blog_client_server_error_total", Help: "5xx failures after retries."},
	{ID: blog.MetricLoginSuccess, Name: "blog_client_login_success_total", Help: "Successful logins."},
	{ID: blog.MetricLoginFailure, Name: "blog_client_login_failure_total", Help: "Failed logins."},
	{ID: blog.MetricLogout, Name: "blog_client_logout_total", Help: "Logouts."},
	{ID: blog.MetricSessionRestored, Name: "blog_client_session_restored_total", Help: "Sessions restored from durable storage."},
	{ID: blog.MetricSessionInvalidated, Name: "blog_client_session_invalidated_total", Help: "Sessions ended by an authentication failure."},
	{ID: blog.MetricValidateCall, Name: "blog_client_validate_call_total", Help: "Token validation round-trips."},
	{ID: blog.MetricGuardAllowed, Name: "blog_client_guard_allowed_total", Help: "Navigations allowed by the route guard."},
	{ID: blog.MetricGuardRedirectLogin, Name: "blog_client_guard_redirect_login_total", Help: "Navigations redirected to login."},
	{ID: blog.MetricGuardRedirectHome, Name: "blog_client_guard_redirect_home_total", Help: "Navigations redirected home."},
}

var HistogramDefs = []HistogramDef{
	{ID: blog.MetricRequestLatency, Name: "blog_client_request_latency_seconds", Help: "Request latency including retries."},
}

// HistogramUpperBounds are the finite bucket bounds in seconds. The last
// snapshot bucket is +Inf.
var HistogramUpperBounds = []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5}

// HistogramBoundSuffix names each bucket, +Inf included, for exporters
// without native histograms.
var HistogramBoundSuffix = []string{
	"0_005",
	"0_01",
	"0_025",
	"0_05",
	"0_1",
	"0_25",
	"0_5",
	"inf",
}

// NormalizeBuckets copies raw into a fixed-size array, padding with zeros.
func NormalizeBuckets(raw []uint64) [8]uint64 {
	var out [8]uint64
	for i := 0; i < len(out) && i < len(raw); i++ {
		out[i] = raw[i]
	}
	return out
}

// CumulativeBuckets turns per-bucket counts into running totals.
func CumulativeBuckets(raw [8]uint64) [8]uint64 {
	var out [8]uint64
	var running uint64
	for i := 0; i < len(raw); i++ {
		running += raw[i]
		out[i] = running
	}
	return out
}
