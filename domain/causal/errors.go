package causal

import (
	"errors"
	"fmt"
)

// Domain errors
var (
	// Model construction errors
	ErrInvalidModel       = errors.New("invalid structural ranking model")
	ErrCycle              = fmt.Errorf("%w: parent relation has a cycle", ErrInvalidModel)
	ErrUnknownParent      = fmt.Errorf("%w: unknown parent", ErrInvalidModel)
	ErrDuplicateVariable  = fmt.Errorf("%w: duplicate variable", ErrInvalidModel)
	ErrMissingMechanism   = fmt.Errorf("%w: missing mechanism", ErrInvalidModel)
	ErrUnknownVariable    = errors.New("unknown variable")
	ErrBackendUnavailable = errors.New("solver backend unavailable")
)

// NewUnknownParentError reports a parent reference that names no variable.
func NewUnknownParentError(variable, parent string) error {
	return fmt.Errorf("%w %q for variable %q", ErrUnknownParent, parent, variable)
}

// NewUnknownVariableError reports a query or intervention on a missing variable.
func NewUnknownVariableError(name string) error {
	return fmt.Errorf("%w: %q", ErrUnknownVariable, name)
}

// IsConstructionError reports whether err came from model validation.
func IsConstructionError(err error) bool {
	return errors.Is(err, ErrInvalidModel)
}
