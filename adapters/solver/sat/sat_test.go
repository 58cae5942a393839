package sat

import (
	"bytes"
	"testing"
	"time"

	"rankcausal/adapters/solver/enumeration"
	"rankcausal/domain/causal"
	"rankcausal/internal"
	"rankcausal/internal/explanation"
	"rankcausal/internal/independence"
	"rankcausal/internal/srm"
	"rankcausal/internal/testkit"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRepairs_AgreesWithEnumeration(t *testing.T) {
	circuitReq := causal.RepairRequest{
		Target:     testkit.Out,
		Desired:    true,
		Candidates: []string{testkit.O2Fault, testkit.O1Fault, testkit.NFault},
		RepairValues: map[string]any{
			testkit.O2Fault: false,
			testkit.O1Fault: false,
			testkit.NFault:  false,
		},
	}
	tests := []struct {
		name  string
		model *srm.Model
		req   causal.RepairRequest
	}{
		{"chain", testkit.Chain(), causal.RepairRequest{Target: "C", Desired: true, Candidates: []string{"A", "B"}}},
		{"collider", testkit.Collider(), causal.RepairRequest{Target: "C", Desired: true, Candidates: []string{"A", "B"}}},
		{"collider bounded", testkit.Collider(), causal.RepairRequest{
			Target: "C", Desired: true, Candidates: []string{"A", "B"},
			Config: causal.RepairSearchConfig{MaxSize: 1},
		}},
		{"circuit repairable", testkit.Circuit(false, false, true), circuitReq},
		{"circuit unrepairable", testkit.Circuit(true, false, false), circuitReq},
	}
	reference := &explanation.MinimalRepairSolver{}
	solver := &Solver{Timeout: time.Second}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			want, err := reference.Repairs(tt.model, tt.req)
			require.NoError(t, err)
			got, err := solver.Repairs(tt.model, tt.req)
			require.NoError(t, err)
			if len(want) == 0 {
				assert.Empty(t, got)
				return
			}
			assert.Equal(t, want, got)
		})
	}
}

func TestRepairs_CollectsEverySetAtMinimumSize(t *testing.T) {
	got, err := (&Solver{}).Repairs(testkit.Chain(), causal.RepairRequest{
		Target: "C", Desired: true, Candidates: []string{"B", "A"},
	})
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"B"}, {"A"}}, got)
}

func TestRepairs_UnknownTarget(t *testing.T) {
	_, err := (&Solver{}).Repairs(testkit.Chain(), causal.RepairRequest{Target: "Q", Desired: true})
	assert.ErrorIs(t, err, causal.ErrUnknownVariable)
}

func TestFind_AgreesWithEnumeration(t *testing.T) {
	tests := []struct {
		name  string
		model *srm.Model
		req   causal.SeparatingSetRequest
	}{
		{"chain mediator", testkit.NoisyChain(2), causal.SeparatingSetRequest{X: "A", Y: "C", Candidates: []string{"B"}, KMax: 2}},
		{"fork", testkit.Fork(), causal.SeparatingSetRequest{X: "Y", Y: "Z", Candidates: []string{"X"}, KMax: 1}},
		{"collider", testkit.Collider(), causal.SeparatingSetRequest{X: "A", Y: "B", Candidates: []string{"C"}, KMax: 1}},
		{"adjacent", testkit.NoisyChain(2), causal.SeparatingSetRequest{X: "A", Y: "B", Candidates: []string{"C"}, KMax: 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ci := independence.NewOracle(tt.model, 0, 0).Test()
			wantZ, wantOK, err := enumeration.SeparatingSetFinder{}.Find(tt.req, ci)
			require.NoError(t, err)
			gotZ, gotOK, err := (&Solver{}).Find(tt.req, ci)
			require.NoError(t, err)
			assert.Equal(t, wantOK, gotOK)
			assert.Equal(t, wantZ, gotZ)
		})
	}
}

func TestNew_Backend(t *testing.T) {
	b := New(0, nil)
	assert.Equal(t, Name, b.Name)
	assert.NotNil(t, b.Counterexamples)
}

// stalled never decides within its budget.
type stalled struct{ proposals int }

func (s *stalled) propose(int, time.Duration) ([]int, int) {
	s.proposals++
	return nil, 0
}
func (s *stalled) cutSupersets([]int) {}
func (s *stalled) cutExactly([]int)   {}

func TestSolver_BudgetExhaustedMeansNoSolution(t *testing.T) {
	var buf bytes.Buffer
	stall := &stalled{}
	solver := &Solver{
		Timeout: time.Millisecond,
		Logger:  internal.NewWriterLogger(internal.LogLevelWarn, &buf),
		open:    func(int) proposer { return stall },
	}

	repairs, err := solver.Repairs(testkit.Chain(), causal.RepairRequest{
		Target: "C", Desired: true, Candidates: []string{"A", "B"},
	})
	require.NoError(t, err)
	assert.Nil(t, repairs)

	ci := independence.NewOracle(testkit.NoisyChain(2), 0, 0).Test()
	set, ok, err := solver.Find(causal.SeparatingSetRequest{X: "A", Y: "C", Candidates: []string{"B"}, KMax: 1}, ci)
	require.NoError(t, err)
	assert.Nil(t, set)
	assert.False(t, ok)

	assert.Equal(t, 2, stall.proposals, "each search gives up on its first timeout")
	assert.Contains(t, buf.String(), "[WARN] sat repair: solver budget 1ms exhausted at size 1")
	assert.Contains(t, buf.String(), "[WARN] sat separating set: solver budget 1ms exhausted at size 1")
}
