package domain

import "errors"

var (
	ErrDecode         = errors.New("decode error")
	ErrContext        = errors.New("context error")
	ErrValidation     = errors.New("validation error")
	ErrRemote         = errors.New("remote error")
	ErrPartialFailure = errors.New("partial failure")
	ErrSuperseded     = errors.New("run superseded")
	ErrNotFound       = errors.New("not found")
)

// Kind reports the taxonomy name of err, or "internal" when err does not wrap
// one of the sentinel errors above.
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrDecode):
		return "decode_error"
	case errors.Is(err, ErrContext):
		return "context_error"
	case errors.Is(err, ErrValidation):
		return "validation_error"
	case errors.Is(err, ErrRemote):
		return "remote_error"
	case errors.Is(err, ErrPartialFailure):
		return "partial_failure"
	case errors.Is(err, ErrSuperseded):
		return "superseded"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	default:
		return "internal"
	}
}
