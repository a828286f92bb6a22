// Package recovery contains panics from adapter and registry calls so a
// misbehaving data source degrades to an error on the affected request
// instead of crashing the server.
package recovery

import (
	"fmt"
	"log/slog"
	"runtime/debug"
)

// RecoverToError invokes fn and converts a panic into a returned error.
// The dispatcher wraps every adapter call this way; the resulting error
// maps to INTERNAL at the gRPC boundary. The panic value is logged at
// Error, the stack only at Debug so production logs stay trace-free.
func RecoverToError(logger *slog.Logger, operation string, fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			logPanic(logger, operation, r)
			err = fmt.Errorf("%s panicked: %v", operation, r)
		}
	}()

	return fn()
}

// RecoverToValue is RecoverToError for functions returning a value: on
// panic the zero value and an error come back instead.
func RecoverToValue[T any](logger *slog.Logger, operation string, fn func() (T, error)) (result T, err error) {
	defer func() {
		if r := recover(); r != nil {
			logPanic(logger, operation, r)
			var zero T
			result = zero
			err = fmt.Errorf("%s panicked: %v", operation, r)
		}
	}()

	return fn()
}

// Recover guards a void call, cleanup paths in particular, where no error
// can be returned. The panic is logged and swallowed.
func Recover(logger *slog.Logger, operation string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			logPanic(logger, operation, r)
		}
	}()

	fn()
}

func logPanic(logger *slog.Logger, operation string, r any) {
	logger.Error("panic recovered", "operation", operation, "panic", r)
	logger.Debug("panic stack", "operation", operation, "stack", string(debug.Stack()))
}
