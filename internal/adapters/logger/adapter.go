// Package logger provides adapters for the logging interface.
package logger

import (
	"context"
	"maps"
)

// Logger defines the logging interface used throughout the application.
// External loggers that implement these methods can be wrapped with ReleaseAdapter.
type Logger interface {
	Info(ctx context.Context, msg string, fields map[string]any)
	Debug(ctx context.Context, msg string, fields map[string]any)
	Warn(ctx context.Context, msg string, fields map[string]any)
	Error(ctx context.Context, msg string, err error, fields map[string]any)
}

// ReleaseAdapter wraps a Logger and stamps every entry with the release being cut.
type ReleaseAdapter struct {
	log  Logger
	base map[string]any
}

// NewReleaseAdapter creates a ReleaseAdapter adding project and release fields.
func NewReleaseAdapter(log Logger, project, release string) *ReleaseAdapter {
	return &ReleaseAdapter{
		log: log,
		base: map[string]any{
			"project": project,
			"release": release,
		},
	}
}

// with merges the base fields under the caller's fields. Caller keys win.
func (a *ReleaseAdapter) with(fields map[string]any) map[string]any {
	merged := make(map[string]any, len(a.base)+len(fields))
	maps.Copy(merged, a.base)
	maps.Copy(merged, fields)
	return merged
}

// Info logs an info message.
func (a *ReleaseAdapter) Info(ctx context.Context, msg string, fields map[string]any) {
	a.log.Info(ctx, msg, a.with(fields))
}

// Debug logs a debug message.
func (a *ReleaseAdapter) Debug(ctx context.Context, msg string, fields map[string]any) {
	a.log.Debug(ctx, msg, a.with(fields))
}

// Warn logs a warning message.
func (a *ReleaseAdapter) Warn(ctx context.Context, msg string, fields map[string]any) {
	a.log.Warn(ctx, msg, a.with(fields))
}

// Error logs an error message.
func (a *ReleaseAdapter) Error(ctx context.Context, msg string, err error, fields map[string]any) {
	a.log.Error(ctx, msg, err, a.with(fields))
}
