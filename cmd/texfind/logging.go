package main

import (
	"context"
	"log/slog"
	"sync"
)

// SlogManager is a [slog.Handler] passing every record on to a set of named
// handlers, e.g. the terminal and a log file.
type SlogManager struct {
	sync.RWMutex
	handlers map[string]slog.Handler
}

// NewSlogManager returns a pointer to a new, empty [SlogManager].
func NewSlogManager() *SlogManager {
	return &SlogManager{
		handlers: make(map[string]slog.Handler),
	}
}

// Enabled returns whether any of the handlers is enabled for level.
func (m *SlogManager) Enabled(ctx context.Context, level slog.Level) bool {
	m.RLock()
	defer m.RUnlock()

	for _, h := range m.handlers {
		if h.Enabled(ctx, level) {
			return true
		}
	}

	return false
}

// Handle passes the record to every handler enabled for its level.
func (m *SlogManager) Handle(ctx context.Context, r slog.Record) error {
	m.RLock()
	defer m.RUnlock()

	for _, h := range m.handlers {
		if h.Enabled(ctx, r.Level) {
			_ = h.Handle(ctx, r.Clone())
		}
	}

	return nil
}

// WithAttrs returns a new [SlogManager] whose handlers all carry attrs.
func (m *SlogManager) WithAttrs(attrs []slog.Attr) slog.Handler {
	return m.derive(func(h slog.Handler) slog.Handler {
		return h.WithAttrs(attrs)
	})
}

// WithGroup returns a new [SlogManager] whose handlers all open group name.
func (m *SlogManager) WithGroup(name string) slog.Handler {
	return m.derive(func(h slog.Handler) slog.Handler {
		return h.WithGroup(name)
	})
}

func (m *SlogManager) derive(fn func(slog.Handler) slog.Handler) *SlogManager {
	m.RLock()
	defer m.RUnlock()

	newLm := &SlogManager{
		handlers: make(map[string]slog.Handler, len(m.handlers)),
	}

	for name, h := range m.handlers {
		newLm.handlers[name] = fn(h)
	}

	return newLm
}

// AddHandler adds (or replaces) the handler under name.
func (m *SlogManager) AddHandler(name string, handler slog.Handler) {
	m.Lock()
	defer m.Unlock()

	m.handlers[name] = handler
}

// RemoveHandler removes the handler under name.
func (m *SlogManager) RemoveHandler(name string) {
	m.Lock()
	defer m.Unlock()

	delete(m.handlers, name)
}
