package app

import (
	"fmt"

	"rankcausal/domain/causal"
	"rankcausal/internal/testkit"
)

// CircuitRequest builds the fault-diagnosis analysis of the NOT/OR/OR circuit
// for the given inputs: which gate faults cause a failure, which fault repairs
// restore the output, and whether every failure is explained by some fault.
func CircuitRequest(i1, i2, i3 bool) AnalysisRequest {
	repairValues := make(map[string]any, len(testkit.CircuitFaults))
	for _, f := range testkit.CircuitFaults {
		repairValues[f] = false
	}
	// does the downstream wiring screen N_fault off from the failure?
	faultSeparation := causal.SeparatingSetRequest{
		X:          testkit.NFault,
		Y:          testkit.Fail,
		Candidates: []string{testkit.O2Fault, testkit.O1Fault, testkit.L2, testkit.Out},
		KMax:       2,
	}
	return AnalysisRequest{
		Title:            fmt.Sprintf("Circuit i1=%t i2=%t i3=%t", i1, i2, i3),
		Model:            testkit.Circuit(i1, i2, i3),
		Causes:           testkit.CircuitFaults,
		Effect:           testkit.Fail,
		Discovery:        append(append([]string{}, testkit.CircuitFaults...), testkit.Out),
		Separations:      []causal.SeparatingSetRequest{faultSeparation},
		RepairTarget:     testkit.Out,
		RepairValue:      true,
		RepairCandidates: testkit.CircuitFaults,
		RepairValues:     repairValues,
		Invariants: []causal.Inequality{{
			Name: "failure implies a fault",
			Holds: func(w causal.World) bool {
				if !causal.Truthy(w[testkit.Fail]) {
					return true
				}
				for _, f := range testkit.CircuitFaults {
					if causal.Truthy(w[f]) {
						return true
					}
				}
				return false
			},
		}},
	}
}
