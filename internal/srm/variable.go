package srm

import (
	"rankcausal/domain/ranking"
)

// Mechanism produces the ranking of a variable's value from the realized values
// of its parents, passed in the order the parents were declared.
type Mechanism func(parents ...any) ranking.Ranking[any]

// Variable is a named node of a structural ranking model.
type Variable struct {
	Name string
	// Domain lists the admissible values. It is informational only.
	Domain    []any
	Parents   []string
	Mechanism Mechanism
}

// Boolean is the domain of boolean variables.
var Boolean = []any{false, true}

// Func lifts a deterministic function of the parents into a Mechanism.
func Func(f func(parents ...any) any) Mechanism {
	return func(parents ...any) ranking.Ranking[any] {
		return ranking.Certain(f(parents...))
	}
}

// Constant always yields v at rank 0 and ignores its arguments.
func Constant(v any) Mechanism {
	certain := ranking.Certain(v)
	return func(...any) ranking.Ranking[any] {
		return certain
	}
}

// Exceptional yields normal at rank 0 and exceptional at rank.
func Exceptional(normal, exceptional any, rank ranking.Rank) Mechanism {
	r := ranking.NrmExc(normal, exceptional, rank)
	return func(...any) ranking.Ranking[any] {
		return r
	}
}

// NoisyBool is a root boolean that is false normally and true at rank.
func NoisyBool(rank ranking.Rank) Mechanism {
	return Exceptional(false, true, rank)
}

// NoisyCopy copies its single parent at rank 0 and flips it at rank.
func NoisyCopy(rank ranking.Rank) Mechanism {
	return func(parents ...any) ranking.Ranking[any] {
		v, _ := parents[0].(bool)
		return ranking.NrmExc[any](v, !v, rank)
	}
}

func (v Variable) clone() Variable {
	v.Parents = append([]string(nil), v.Parents...)
	v.Domain = append([]any(nil), v.Domain...)
	return v
}
