// Package configuration reads the env-style configuration file of texfind.
package configuration

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"
)

// Keys of the configuration file.
const (
	KeyBundle   = "BUNDLE"
	KeyTmpDir   = "TMPDIR"
	KeyVerify   = "VERIFY"
	KeyLogLevel = "LOGLEVEL"
)

// DefaultPath is the configuration file read when no other is given.
const DefaultPath = "/etc/texfind.conf"

type genericConfigProvider interface {
	Read(filenames ...string) (envMap map[string]string, err error)
}

// Handler is the principal implementation of the configuration reader.
type Handler struct {
	GenericHandler genericConfigProvider
}

// NewHandler returns a pointer to a new configuration [Handler].
func NewHandler(genericHandler genericConfigProvider) *Handler {
	return &Handler{
		GenericHandler: genericHandler,
	}
}

// ReadGeneric reads the given files into a map (map[key]value).
func (c *Handler) ReadGeneric(filenames ...string) (map[string]string, error) {
	return c.GenericHandler.Read(filenames...)
}

// MapKeyToString returns the value of key, or an empty string if not set.
func (c *Handler) MapKeyToString(envMap map[string]string, key string) string {
	if value, exists := envMap[key]; exists {
		return value
	}

	return ""
}

// MapKeyToBool returns whether key is set to an affirmative value.
func (c *Handler) MapKeyToBool(envMap map[string]string, key string) bool {
	switch strings.ToLower(c.MapKeyToString(envMap, key)) {
	case "yes", "true", "1", "on":
		return true
	default:
		return false
	}
}

// MapKeyToLevel returns the [slog.Level] named by key, or [slog.LevelInfo] if
// not set or not parseable.
func (c *Handler) MapKeyToLevel(envMap map[string]string, key string) slog.Level {
	var level slog.Level

	value := c.MapKeyToString(envMap, key)
	if value == "" {
		return slog.LevelInfo
	}

	if err := level.UnmarshalText([]byte(value)); err != nil {
		return slog.LevelInfo
	}

	return level
}

// Load reads the configuration file at path into an [AppConfiguration]. A
// file that does not exist yields the defaults.
func (c *Handler) Load(path string) (*AppConfiguration, error) {
	conf := NewAppConfiguration()

	envMap, err := c.ReadGeneric(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			slog.Debug("No configuration file found (using defaults)",
				"path", path,
			)

			return conf, nil
		}

		return nil, fmt.Errorf("(config) failed to read %s: %w", path, err)
	}

	conf.BundlePath = c.MapKeyToString(envMap, KeyBundle)
	conf.TmpDir = c.MapKeyToString(envMap, KeyTmpDir)
	conf.Verify = c.MapKeyToBool(envMap, KeyVerify)
	conf.LogLevel = c.MapKeyToLevel(envMap, KeyLogLevel)

	return conf, nil
}
