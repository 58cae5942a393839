// Package solver selects a solver backend by name.
package solver

import (
	"fmt"
	"strings"
	"time"

	"rankcausal/adapters/solver/enumeration"
	"rankcausal/adapters/solver/sat"
	"rankcausal/domain/causal"
	"rankcausal/internal"
	"rankcausal/internal/errors"
	"rankcausal/ports"
)

// Options carries what a backend may need at construction.
type Options struct {
	Timeout time.Duration
	Logger  *internal.Logger
}

// GetBackend returns the backend registered under name. An empty name selects
// enumeration; any unregistered name fails with BACKEND_UNAVAILABLE and is
// never replaced by another backend.
func GetBackend(name string, opts Options) (ports.SolverBackend, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", enumeration.Name, "exhaustive", "reference":
		return enumeration.New(opts.Logger), nil

	case sat.Name, "gini":
		return sat.New(opts.Timeout, opts.Logger), nil

	default:
		return ports.SolverBackend{}, errors.BackendUnavailable(name,
			fmt.Errorf("%w (registered: %s)", causal.ErrBackendUnavailable, strings.Join(Backends(), ", ")))
	}
}

// Backends lists the canonical registered names.
func Backends() []string {
	return []string{enumeration.Name, sat.Name}
}
