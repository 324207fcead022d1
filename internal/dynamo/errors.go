package dynamo

import (
	"errors"
	"fmt"
)

// Domain errors for simulation operations.
var (
	// ErrInvalidParameter indicates a non-positive or non-finite value where the
	// simulation needs a positive finite one (dt, smoothing radius, mass, ...).
	ErrInvalidParameter = errors.New("dynamo: invalid parameter")

	// ErrNumericalInstability marks a density, pressure or force that went
	// non-finite. It is never returned from a step; it tags log records.
	ErrNumericalInstability = errors.New("dynamo: numerical instability")
)

// ParamError wraps a rejected parameter with its name and value.
type ParamError struct {
	Name   string
	Value  any
	Reason string
}

func (e *ParamError) Error() string {
	return fmt.Sprintf("%s: %s = %v: %s", ErrInvalidParameter, e.Name, e.Value, e.Reason)
}

func (e *ParamError) Unwrap() error {
	return ErrInvalidParameter
}

// Invalid is shorthand for building a *ParamError.
func Invalid(name string, value any, reason string) error {
	return &ParamError{Name: name, Value: value, Reason: reason}
}
