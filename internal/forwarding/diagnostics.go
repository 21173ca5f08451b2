package forwarding

import (
	"context"
	"fmt"
	"log/slog"
)

// Diagnostics receives warnings raised while rendering, such as attributes a
// target does not declare
type Diagnostics interface {
	Warnf(format string, args ...any)
}

// SlogDiagnostics writes warnings to a slog logger
type SlogDiagnostics struct {
	ctx    context.Context
	logger *slog.Logger
}

// NewSlogDiagnostics returns a Diagnostics that logs at warn level. A nil logger
// means slog.Default().
func NewSlogDiagnostics(ctx context.Context, logger *slog.Logger) *SlogDiagnostics {
	if logger == nil {
		logger = slog.Default()
	}
	return &SlogDiagnostics{ctx: ctx, logger: logger}
}

// Warnf logs a formatted warning
func (d *SlogDiagnostics) Warnf(format string, args ...any) {
	d.logger.WarnContext(d.ctx, fmt.Sprintf(format, args...))
}

// DiagnosticsRecorder collects warnings in memory
type DiagnosticsRecorder struct {
	Warnings []string
}

// Warnf records a formatted warning
func (r *DiagnosticsRecorder) Warnf(format string, args ...any) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

type nopDiagnostics struct{}

func (nopDiagnostics) Warnf(string, ...any) {}

// NopDiagnostics discards every warning
var NopDiagnostics Diagnostics = nopDiagnostics{}
