package configuration

import "log/slog"

// AppConfiguration is the principal structure holding the application
// configuration.
type AppConfiguration struct {
	BundlePath string
	TmpDir     string
	Verify     bool
	LogLevel   slog.Level
}

// NewAppConfiguration returns a pointer to a new [AppConfiguration] holding
// the defaults.
func NewAppConfiguration() *AppConfiguration {
	return &AppConfiguration{
		LogLevel: slog.LevelInfo,
	}
}
