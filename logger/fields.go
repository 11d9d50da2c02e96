package logger

import "log/slog"

// Field helpers shared by the pool packages so log attribute keys stay
// consistent across call sites.
var (
	ErrorField = func(err error) slog.Attr {
		if err == nil {
			return slog.String("error", "<nil>")
		}
		return slog.String("error", err.Error())
	}

	ConnID = func(id string) slog.Attr {
		return slog.String("conn_id", id)
	}

	PingQuery = func(query string) slog.Attr {
		return slog.String("ping_query", query)
	}
)
