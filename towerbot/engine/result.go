package engine

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// ErrorKind is the closed failure taxonomy every engine operation maps into.
type ErrorKind string

const (
	ErrValidation           ErrorKind = "validation_error"
	ErrInsufficientResource ErrorKind = "insufficient_resource"
	ErrInsufficientPower    ErrorKind = "insufficient_power"
	ErrCooldownActive       ErrorKind = "cooldown_active"
	ErrNotFound             ErrorKind = "not_found"
	ErrConfiguration        ErrorKind = "configuration_error"
	ErrInternal             ErrorKind = "internal_error"
)

// Error carries a taxonomy kind plus failure metadata. Shortage is set for
// insufficient-resource failures, Remaining for cooldown failures.
type Error struct {
	Kind      ErrorKind
	Message   string
	Shortage  int64
	Remaining time.Duration
}

func (e *Error) Error() string { return e.Message }

func validationf(format string, args ...any) *Error {
	return &Error{Kind: ErrValidation, Message: fmt.Sprintf(format, args...)}
}

func insufficientf(shortage int64, format string, args ...any) *Error {
	return &Error{Kind: ErrInsufficientResource, Shortage: shortage, Message: fmt.Sprintf(format, args...)}
}

func underpoweredf(format string, args ...any) *Error {
	return &Error{Kind: ErrInsufficientPower, Message: fmt.Sprintf(format, args...)}
}

func cooldownf(remaining time.Duration, format string, args ...any) *Error {
	return &Error{Kind: ErrCooldownActive, Remaining: remaining, Message: fmt.Sprintf(format, args...)}
}

func notFoundf(format string, args ...any) *Error {
	return &Error{Kind: ErrNotFound, Message: fmt.Sprintf(format, args...)}
}

func configurationf(format string, args ...any) *Error {
	return &Error{Kind: ErrConfiguration, Message: fmt.Sprintf(format, args...)}
}

// isNotFound matches both the driver-level and engine-level missing-row
// signals, so store implementations may surface either.
func isNotFound(err error) bool {
	if errors.Is(err, sql.ErrNoRows) {
		return true
	}
	var engineErr *Error
	return errors.As(err, &engineErr) && engineErr != nil && engineErr.Kind == ErrNotFound
}

// Result is the uniform envelope returned by every engine operation. Engines
// never surface raw errors to commands; failures land here, already
// classified.
type Result[T any] struct {
	Success   bool
	Data      T
	ErrorKind ErrorKind
	Message   string
	Shortage  int64
	Remaining time.Duration
}

// Err reconstructs the classified error for failed results, nil on success.
func (r Result[T]) Err() *Error {
	if r.Success {
		return nil
	}
	return &Error{
		Kind:      r.ErrorKind,
		Message:   r.Message,
		Shortage:  r.Shortage,
		Remaining: r.Remaining,
	}
}

func ok[T any](data T) Result[T] {
	return Result[T]{Success: true, Data: data}
}

// fail classifies err into the envelope and logs it according to severity:
// expected gameplay failures get a warning without a stack-style dump,
// configuration and internal failures get full error logging.
func fail[T any](op string, err error) Result[T] {
	var zero T

	var engineErr *Error
	if errors.As(err, &engineErr) && engineErr != nil {
		switch engineErr.Kind {
		case ErrConfiguration:
			slog.Error("Engine configuration failure",
				slog.String("type", "engine"),
				slog.String("operation", op),
				slog.String("error", engineErr.Message))
		default:
			slog.Warn("Engine operation rejected",
				slog.String("type", "engine"),
				slog.String("operation", op),
				slog.String("kind", string(engineErr.Kind)),
				slog.String("reason", engineErr.Message))
		}
		return Result[T]{
			Data:      zero,
			ErrorKind: engineErr.Kind,
			Message:   engineErr.Message,
			Shortage:  engineErr.Shortage,
			Remaining: engineErr.Remaining,
		}
	}

	if errors.Is(err, sql.ErrNoRows) {
		slog.Warn("Engine target not found",
			slog.String("type", "engine"),
			slog.String("operation", op))
		return Result[T]{Data: zero, ErrorKind: ErrNotFound, Message: "not found"}
	}

	slog.Error("Engine operation failed",
		slog.String("type", "engine"),
		slog.String("operation", op),
		slog.Any("error", err))
	return Result[T]{Data: zero, ErrorKind: ErrInternal, Message: "an unexpected error occurred"}
}
