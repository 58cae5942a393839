// Package testkit provides ready-made structural ranking models used by tests,
// the analysis service and the CLI.
package testkit

import (
	"sort"

	"rankcausal/domain/ranking"
	"rankcausal/internal/srm"
)

// Circuit variable names
const (
	NFault  = "N_fault"
	O1Fault = "O1_fault"
	O2Fault = "O2_fault"
	L1      = "L1"
	L2      = "L2"
	Out     = "Out"
	Fail    = "Fail"
)

// CircuitFaults are the gate-fault variables of the circuit, upstream first.
var CircuitFaults = []string{NFault, O1Fault, O2Fault}

// Fixture is a named model builder.
type Fixture struct {
	Name        string
	Description string
	Build       func() *srm.Model
}

var fixtures = map[string]Fixture{
	"chain": {
		Name:        "chain",
		Description: "A -> B -> C, A noisy (true at rank 1), B and C copy their parent",
		Build:       Chain,
	},
	"noisy-chain": {
		Name:        "noisy-chain",
		Description: "A -> B -> C with every link flipping at rank 2",
		Build:       func() *srm.Model { return NoisyChain(2) },
	},
	"fork": {
		Name:        "fork",
		Description: "Y <- X -> Z with noisy copies",
		Build:       Fork,
	},
	"collider": {
		Name:        "collider",
		Description: "A -> C <- B, C = A and B",
		Build:       Collider,
	},
	"collider-chain": {
		Name:        "collider-chain",
		Description: "A -> C <- B with C -> D, C a noisy AND and D a noisy copy",
		Build:       ColliderChain,
	},
	"confounded": {
		Name:        "confounded",
		Description: "U -> A -> B with U -> B (A = U, B = A or U)",
		Build:       ConfoundedFork,
	},
	"frontdoor": {
		Name:        "frontdoor",
		Description: "U -> A -> M -> B with U -> B",
		Build:       Frontdoor,
	},
	"circuit-screened": {
		Name:        "circuit-screened",
		Description: "NOT -> OR -> OR circuit with i3 = true",
		Build:       func() *srm.Model { return Circuit(false, false, true) },
	},
	"circuit-unshielded": {
		Name:        "circuit-unshielded",
		Description: "NOT -> OR -> OR circuit with i3 = false",
		Build:       func() *srm.Model { return Circuit(false, false, false) },
	},
}

// Fixtures lists the registered fixtures by name.
func Fixtures() []Fixture {
	out := make([]Fixture, 0, len(fixtures))
	for _, f := range fixtures {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Lookup finds a fixture by name.
func Lookup(name string) (Fixture, bool) {
	f, ok := fixtures[name]
	return f, ok
}

func boolVar(name string, mech srm.Mechanism, parents ...string) srm.Variable {
	return srm.Variable{Name: name, Domain: srm.Boolean, Parents: parents, Mechanism: mech}
}

func copyParent(parents ...any) any { return parents[0] }

// Chain is A -> B -> C where only A is uncertain.
func Chain() *srm.Model {
	return srm.MustNew(
		boolVar("A", srm.NoisyBool(1)),
		boolVar("B", srm.Func(copyParent), "A"),
		boolVar("C", srm.Func(copyParent), "B"),
	)
}

// NoisyChain is A -> B -> C where each link copies its parent at rank 0 and
// flips it at rank flip.
func NoisyChain(flip ranking.Rank) *srm.Model {
	return srm.MustNew(
		boolVar("A", srm.NoisyBool(1)),
		boolVar("B", srm.NoisyCopy(flip), "A"),
		boolVar("C", srm.NoisyCopy(flip), "B"),
	)
}

// Fork is Y <- X -> Z with noisy copies.
func Fork() *srm.Model {
	return srm.MustNew(
		boolVar("X", srm.NoisyBool(1)),
		boolVar("Y", srm.NoisyCopy(2), "X"),
		boolVar("Z", srm.NoisyCopy(2), "X"),
	)
}

// Collider is A -> C <- B with independent noisy roots and C = A and B.
func Collider() *srm.Model {
	return srm.MustNew(
		boolVar("A", srm.NoisyBool(1)),
		boolVar("B", srm.NoisyBool(1)),
		boolVar("C", srm.Func(func(p ...any) any {
			return p[0].(bool) && p[1].(bool)
		}), "A", "B"),
	)
}

// ColliderChain is A -> C <- B followed by C -> D. C is A and B, flipped at
// rank 3; D copies C, flipped at rank 2.
func ColliderChain() *srm.Model {
	return srm.MustNew(
		boolVar("A", srm.NoisyBool(1)),
		boolVar("B", srm.NoisyBool(1)),
		boolVar("C", func(p ...any) ranking.Ranking[any] {
			and := p[0].(bool) && p[1].(bool)
			return ranking.NrmExc[any](and, !and, 3)
		}, "A", "B"),
		boolVar("D", srm.NoisyCopy(2), "C"),
	)
}

// ConfoundedFork is U -> A -> B with U -> B.
func ConfoundedFork() *srm.Model {
	return srm.MustNew(
		boolVar("U", srm.NoisyBool(1)),
		boolVar("A", srm.Func(copyParent), "U"),
		boolVar("B", srm.Func(func(p ...any) any {
			return p[0].(bool) || p[1].(bool)
		}), "A", "U"),
	)
}

// Frontdoor is U -> A -> M -> B with U -> B and no direct A -> B.
func Frontdoor() *srm.Model {
	return srm.MustNew(
		boolVar("U", srm.NoisyBool(1)),
		boolVar("A", srm.Func(copyParent), "U"),
		boolVar("M", srm.Func(copyParent), "A"),
		boolVar("B", srm.Func(func(p ...any) any {
			return p[0].(bool) || p[1].(bool)
		}), "M", "U"),
	)
}

// Circuit models a NOT gate feeding two OR gates. Each gate fault is false at
// rank 0 and true at rank 1; a faulty gate outputs false. Fail is the negated
// output.
func Circuit(i1, i2, i3 bool) *srm.Model {
	return srm.MustNew(
		boolVar(NFault, srm.NoisyBool(1)),
		boolVar(O1Fault, srm.NoisyBool(1)),
		boolVar(O2Fault, srm.NoisyBool(1)),
		boolVar(L1, srm.Func(func(p ...any) any {
			return !p[0].(bool) && !i1
		}), NFault),
		boolVar(L2, srm.Func(func(p ...any) any {
			return !p[1].(bool) && (p[0].(bool) || i2)
		}), L1, O1Fault),
		boolVar(Out, srm.Func(func(p ...any) any {
			return !p[1].(bool) && (p[0].(bool) || i3)
		}), L2, O2Fault),
		boolVar(Fail, srm.Func(func(p ...any) any {
			return !p[0].(bool)
		}), Out),
	)
}
