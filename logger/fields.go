package logger

import (
	"go.uber.org/zap"
)

// Standard field names for consistent structured logging across jsbind.
// Use these constants instead of raw strings to ensure consistency.
const (
	// Components
	FieldComponent = "component"
	FieldEngine    = "engine"

	// Binding and generation
	FieldType      = "type"
	FieldMember    = "member"
	FieldNamespace = "namespace"
	FieldMode      = "mode"

	// Programs
	FieldKey = "key"

	// Promises
	FieldHandle = "handle"

	// Build
	FieldRunID   = "run_id"
	FieldCommand = "command"
	FieldPID     = "pid"

	// Files and paths
	FieldPath = "path"
	FieldFile = "file"

	// Timing
	FieldDurationMS = "duration_ms"

	// Errors
	FieldError = "error"

	// Counts and sizes
	FieldCount = "count"
)

// ComponentLogger returns a named logger for a specific component.
// This is the preferred way to get a logger for dependency injection.
//
// Example:
//
//	type Generator struct {
//	    log *zap.SugaredLogger
//	}
//
//	func New(opts Options) *Generator {
//	    return &Generator{log: logger.ComponentLogger("typegen")}
//	}
func ComponentLogger(name string) *zap.SugaredLogger {
	return Logger.Named(name)
}

// ChildLogger creates a child logger with additional context.
//
// Example:
//
//	engineLog := logger.ChildLogger(base, logger.FieldEngine, "SampleEngine")
func ChildLogger(parent *zap.SugaredLogger, keysAndValues ...interface{}) *zap.SugaredLogger {
	return parent.With(keysAndValues...)
}

// OrComponent returns l, or a component logger for name when l is nil.
func OrComponent(l *zap.SugaredLogger, name string) *zap.SugaredLogger {
	if l != nil {
		return l
	}
	return ComponentLogger(name)
}
