package blogClient

import "github.com/MrEthical07/blogClient/internal/metrics"

// MetricID identifies a counter or histogram.
type MetricID = metrics.ID

// MetricsSnapshot is a point-in-time copy of all metrics. Histogram buckets
// are per-bucket counts for the bounds 5ms, 10ms, 25ms, 50ms, 100ms, 250ms,
// 500ms and +Inf.
type MetricsSnapshot = metrics.Snapshot

const (
	MetricRequestSuccess         = metrics.RequestSuccess
	MetricRequestFailure         = metrics.RequestFailure
	MetricRequestRetry           = metrics.RequestRetry
	MetricRequestRejectedNoToken = metrics.RequestRejectedNoToken

	// Per-kind counters of final classified failures.
	MetricNetworkUnavailable  = metrics.NetworkUnavailable
	MetricUnauthorizedExpired = metrics.UnauthorizedExpired
	MetricUnauthorizedInvalid = metrics.UnauthorizedInvalid
	MetricForbidden           = metrics.Forbidden
	MetricBadRequest          = metrics.BadRequest
	MetricServerError         = metrics.ServerError

	MetricLoginSuccess       = metrics.LoginSuccess
	MetricLoginFailure       = metrics.LoginFailure
	MetricLogout             = metrics.Logout
	MetricSessionRestored    = metrics.SessionRestored
	MetricSessionInvalidated = metrics.SessionInvalidated
	// MetricValidateCall counts token validation round-trips.
	MetricValidateCall = metrics.ValidateCall

	MetricGuardAllowed       = metrics.GuardAllowed
	MetricGuardRedirectLogin = metrics.GuardRedirectLogin
	MetricGuardRedirectHome  = metrics.GuardRedirectHome

	// MetricRequestLatency is the only histogram.
	MetricRequestLatency = metrics.RequestLatency
)
