package blogClient

import "github.com/MrEthical07/blogClient/internal/security"

// SecurityReport summarizes how the session credential is transported and
// stored, with human-readable warnings for risky settings.
type SecurityReport = security.Report

// SecurityReport builds the report for the client's configuration. Storage
// injected through the Builder is reported as durable.
func (c *Client) SecurityReport() SecurityReport {
	if c == nil {
		return SecurityReport{}
	}

	kind := string(c.cfg.Storage.Kind)
	if c.custom {
		kind = "custom"
	}

	return security.BuildReport(security.ReportInput{
		BaseURL:          c.cfg.Gateway.BaseURL,
		AssetBaseURL:     c.cfg.Session.AssetBaseURL,
		StorageKind:      kind,
		RedisPassword:    c.cfg.Storage.RedisPassword,
		RedisTTL:         c.cfg.Storage.RedisTTL,
		LocalExpiryCheck: c.cfg.Session.LocalExpiryCheck,
		ExpiryLeeway:     c.cfg.Session.ExpiryLeeway,
		MaxRetries:       c.cfg.Gateway.MaxRetries,
	})
}
