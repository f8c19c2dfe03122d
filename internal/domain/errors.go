package domain

import (
	"errors"

	domainerrors "github.com/pagetrail/pagetrail-server/internal/errors"
)

// Lifecycle errors. They are returned wrapped in validation-coded domain errors,
// so both errors.Is(err, ErrProgressDecrease) and
// errors.Is(err, domainerrors.ErrValidation) hold.
var (
	ErrProgressDecrease = errors.New("progress cannot decrease")
	ErrPageOutOfRange   = errors.New("page out of range")
	ErrInvalidStatus    = errors.New("invalid status")
	ErrInvalidISBN      = errors.New("invalid isbn")
)

func progressDecreasef(format string, args ...any) error {
	return domainerrors.Validationf(format, args...).WithCause(ErrProgressDecrease)
}

func pageOutOfRangef(format string, args ...any) error {
	return domainerrors.Validationf(format, args...).WithCause(ErrPageOutOfRange)
}

func invalidStatusf(format string, args ...any) error {
	return domainerrors.Validationf(format, args...).WithCause(ErrInvalidStatus)
}
