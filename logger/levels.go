package logger

import "log/slog"

// Levels beyond the slog built-ins. TRACE is used for per-connection
// chatter that would drown DEBUG output under load.
const (
	LevelTrace slog.Level = -8
	LevelFatal slog.Level = 12
)

var levelNames = map[slog.Leveler]string{
	LevelTrace: "TRACE",
	LevelFatal: "FATAL",
}

// LevelName renders a level, giving the custom levels their own names
// instead of slog's "DEBUG-4" / "ERROR+4" forms.
func LevelName(level slog.Level) string {
	if name, ok := levelNames[level]; ok {
		return name
	}
	return level.String()
}
