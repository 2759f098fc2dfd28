// Package logger provides the structured logging interface used throughout
// the scheduler, decoupled from the concrete backend so call sites never
// import zerolog directly.
package logger

// Logger exposes logging methods for common severity levels.
type Logger interface {
	Debugf(format string, args ...any)
	Debugw(msg string, fields map[string]any)
	Infof(format string, args ...any)
	Infow(msg string, fields map[string]any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
	Errorw(msg string, err error, fields map[string]any)
}
