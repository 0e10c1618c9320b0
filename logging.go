package blogClient

import (
	"io"
	"log/slog"
	"strings"

	"github.com/AdguardTeam/golibs/logutil/slogutil"
)

// NewLogger builds a logger writing to w from cfg. Unknown formats fall back
// to the default format.
func NewLogger(cfg LogConfig, w io.Writer) *slog.Logger {
	if w == nil {
		return slogutil.NewDiscardLogger()
	}
	lvl, err := parseLevel(cfg.Level)
	if err != nil {
		lvl = slog.LevelInfo
	}

	return slogutil.New(&slogutil.Config{
		Output:       w,
		Format:       logFormat(cfg.Format),
		Level:        lvl,
		AddTimestamp: cfg.Timestamps,
	})
}

func logFormat(s string) slogutil.Format {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "json":
		return slogutil.FormatJSON
	case "text":
		return slogutil.FormatText
	case "legacy", "adguard_legacy":
		return slogutil.FormatAdGuardLegacy
	default:
		return slogutil.FormatDefault
	}
}
