// Package explanation finds minimal interventions that bring a target to a
// desired value and traces the causal chains from repaired variables to it.
package explanation

import (
	"rankcausal/domain/causal"
	"rankcausal/internal"
	"rankcausal/internal/srm"
	"rankcausal/internal/subsets"
)

// MinimalRepairSolver enumerates candidate subsets by increasing size and
// stops at the first size where any subset repairs the target.
type MinimalRepairSolver struct {
	Logger *internal.Logger
}

func (s *MinimalRepairSolver) logger() *internal.Logger {
	if s == nil || s.Logger == nil {
		return internal.DefaultLogger
	}
	return s.Logger
}

// Repairs returns every distinct repair set of the smallest size that works,
// each listed in candidate order. Sizes run from 1 to Config.MaxSize, or to the
// number of candidates when MaxSize <= 0. No repair within the bound yields an
// empty result.
func (s *MinimalRepairSolver) Repairs(m *srm.Model, req causal.RepairRequest) ([][]string, error) {
	candidates, err := PrepareCandidates(m, req)
	if err != nil || len(candidates) == 0 {
		return nil, err
	}

	for k := 1; k <= MaxRepairSize(req, len(candidates)); k++ {
		var level [][]string
		var fixErr error
		subsets.Each(candidates, k, func(set []string) bool {
			ok, err := IsFixed(m, req, set)
			if err != nil {
				fixErr = err
				return false
			}
			if ok {
				level = append(level, append([]string(nil), set...))
			}
			return true
		})
		if fixErr != nil {
			return nil, fixErr
		}
		s.logger().Debug("repair %s=%v: size %d, %d solutions", req.Target, req.Desired, k, len(level))
		if len(level) > 0 {
			return level, nil
		}
	}
	return nil, nil
}

// PrepareCandidates validates the request against m and returns the
// candidates with duplicates removed, first occurrence kept.
func PrepareCandidates(m *srm.Model, req causal.RepairRequest) ([]string, error) {
	if !m.Has(req.Target) {
		return nil, causal.NewUnknownVariableError(req.Target)
	}
	seen := make(map[string]struct{}, len(req.Candidates))
	out := make([]string, 0, len(req.Candidates))
	for _, c := range req.Candidates {
		if !m.Has(c) {
			return nil, causal.NewUnknownVariableError(c)
		}
		if _, dup := seen[c]; dup {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	return out, nil
}

// MaxRepairSize resolves the configured size bound for n candidates.
func MaxRepairSize(req causal.RepairRequest, n int) int {
	if req.Config.MaxSize <= 0 || req.Config.MaxSize > n {
		return n
	}
	return req.Config.MaxSize
}

// IsFixed applies the repair set to m by surgery and reports whether the
// target's desired value is strictly more plausible than any other value.
func IsFixed(m *srm.Model, req causal.RepairRequest, set []string) (bool, error) {
	interventions := make(map[string]any, len(set))
	for _, name := range set {
		interventions[name] = req.ValueFor(name)
	}
	repaired, err := m.Do(interventions)
	if err != nil {
		return false, err
	}
	joint := repaired.ToRanking()
	isDesired := causal.Equals(req.Target, req.Desired)
	return joint.DisbeliefRank(isDesired) < joint.DisbeliefRank(causal.Not(isDesired)), nil
}
