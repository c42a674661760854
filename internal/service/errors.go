package service

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidRequest = errors.New("invalid request")
	ErrNotFound       = errors.New("not found")
	ErrInternalError  = errors.New("internal error")
)

// storageErr marks storage failures other than a missing post as internal.
func storageErr(err error) error {
	if err == nil ||
		errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrInvalidRequest) ||
		errors.Is(err, ErrInternalError) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrInternalError, err)
}
