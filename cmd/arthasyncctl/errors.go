package main

import (
	"errors"
	"fmt"

	"arthasync/internal/core"
	"arthasync/internal/storage"
)

// describe rewrites domain errors into messages that name the offending flag
// or argument.
func describe(err error) error {
	var verr *core.ValidationError
	switch {
	case errors.As(err, &verr):
		return fmt.Errorf("invalid %s: %w", verr.Field, verr.Err)
	case errors.Is(err, storage.ErrNotFound):
		return fmt.Errorf("no such record: %w", err)
	default:
		return err
	}
}
