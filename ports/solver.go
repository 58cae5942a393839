package ports

import (
	"rankcausal/domain/causal"
	"rankcausal/internal/srm"
)

// SeparatingSetFinder searches for a conditioning set that renders two
// variables independent
type SeparatingSetFinder interface {
	// Find returns the smallest Z found with CI(X, Y | Z), or ok == false when
	// none exists within KMax (or the backend gave up).
	Find(req causal.SeparatingSetRequest, ci causal.CITest) (z []string, ok bool, err error)
}

// MinimalRepairStrategy computes minimum-cardinality repair sets
type MinimalRepairStrategy interface {
	Repairs(m *srm.Model, req causal.RepairRequest) ([][]string, error)
}

// CounterexampleFinder looks for a plausible world violating an inequality
type CounterexampleFinder interface {
	FindViolation(m *srm.Model, ineq causal.Inequality, maxWorlds int) (causal.World, bool)
}

// SolverBackend bundles the strategies offered by one backend
type SolverBackend struct {
	Name            string
	Separating      SeparatingSetFinder
	Repair          MinimalRepairStrategy
	Counterexamples CounterexampleFinder
}
