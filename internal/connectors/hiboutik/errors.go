package hiboutik

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrSyncDisabled      = errors.New("hiboutik sync is disabled")
	ErrInvalidExternalID = errors.New("invalid hiboutik id")
	ErrInvalidPayload    = errors.New("invalid sale payload")
	ErrUnknownProduct    = errors.New("unknown hiboutik product")
)

// PayloadError points at the field of an inbound sale that could not be read.
type PayloadError struct {
	Field  string
	Reason string
}

func (e *PayloadError) Error() string {
	return fmt.Sprintf("invalid sale payload: %s: %s", e.Field, e.Reason)
}

func (e *PayloadError) Is(target error) bool {
	return target == ErrInvalidPayload
}

// UnknownProductError lists the product ids of a sale that match no local item.
type UnknownProductError struct {
	ExternalIDs []string
}

func (e *UnknownProductError) Error() string {
	return fmt.Sprintf("unknown hiboutik product(s): %s", strings.Join(e.ExternalIDs, ", "))
}

func (e *UnknownProductError) Is(target error) bool {
	return target == ErrUnknownProduct
}
