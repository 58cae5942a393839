package app

import (
	"bytes"
	"context"
	"math"
	"strings"
	"testing"
	"time"

	"rankcausal/adapters/solver/enumeration"
	"rankcausal/adapters/solver/sat"
	"rankcausal/domain/causal"
	"rankcausal/internal"
	"rankcausal/internal/causation"
	"rankcausal/internal/discovery"
	"rankcausal/internal/errors"
	"rankcausal/internal/testkit"
	"rankcausal/ports"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newService(backend ports.SolverBackend) *AnalysisService {
	return NewAnalysisService(&causation.Tester{}, discovery.NewPC(discovery.DefaultOptions()), backend, 0, nil)
}

func TestRun_ScreenedCircuit(t *testing.T) {
	report, err := newService(enumeration.New(nil)).Run(context.Background(), CircuitRequest(false, false, true))
	require.NoError(t, err)

	_, err = uuid.Parse(report.RunID)
	assert.NoError(t, err)
	assert.Equal(t, enumeration.Name, report.Backend)

	require.Len(t, report.Causes, 3)
	assert.Equal(t, causal.CauseResult{}, report.Causes[0].Result, "N_fault is screened off")
	assert.Equal(t, causal.CauseResult{}, report.Causes[1].Result, "O1_fault is screened off")
	assert.True(t, report.Causes[2].Result.IsCause)
	assert.Equal(t, 4, report.Causes[2].Result.TestedContexts)
	assert.Equal(t, 0.0, report.Causes[0].TotalEffect)
	assert.True(t, math.IsInf(report.Causes[2].TotalEffect, 1))

	assert.Equal(t, []Chain{{From: testkit.O2Fault, Path: []string{testkit.O2Fault, testkit.Out, testkit.Fail}}}, report.Chains)
	assert.Equal(t, Summary{Causes: 1, InfiniteStrengths: 1, FiniteEffects: 2}, report.Summary)

	require.NotNil(t, report.Discovery)
	assert.Equal(t, []causal.Edge{{From: testkit.O2Fault, To: testkit.Out}}, report.Discovery.Edges)
	assert.Empty(t, report.Discovery.Oriented)

	assert.Equal(t, []Separation{{X: testkit.NFault, Y: testkit.Fail, KMax: 2, Set: []string{}, Found: true}},
		report.Separations, "i3 cuts N_fault off outright")
	assert.Equal(t, [][]string{{testkit.NFault}, {testkit.O1Fault}, {testkit.O2Fault}}, report.Repairs)

	require.Len(t, report.Counterexamples, 1)
	assert.False(t, report.Counterexamples[0].Found)
}

func TestRun_UnshieldedCircuit(t *testing.T) {
	report, err := newService(enumeration.New(nil)).Run(context.Background(), CircuitRequest(false, false, false))
	require.NoError(t, err)

	for _, c := range report.Causes {
		assert.True(t, c.Result.IsCause, c.Variable)
		assert.Equal(t, 1, c.Result.TestedContexts, c.Variable)
		assert.True(t, math.IsInf(c.TotalEffect, 1), c.Variable)
	}
	assert.Equal(t, Summary{Causes: 3, InfiniteStrengths: 3}, report.Summary)
	assert.Len(t, report.Chains, 3)

	require.Len(t, report.Separations, 1)
	assert.True(t, report.Separations[0].Found)
	assert.Equal(t, []string{testkit.L2}, report.Separations[0].Set)

	assert.Empty(t, report.Discovery.Edges)
	assert.Equal(t, []causal.Edge{
		{From: testkit.NFault, To: testkit.Out},
		{From: testkit.O1Fault, To: testkit.Out},
		{From: testkit.O2Fault, To: testkit.Out},
	}, report.Discovery.Oriented)
}

func TestRun_CounterexampleWithoutFault(t *testing.T) {
	// i1 = true and i3 = false drive Out low with every gate working
	report, err := newService(enumeration.New(nil)).Run(context.Background(), CircuitRequest(true, false, false))
	require.NoError(t, err)

	require.Len(t, report.Counterexamples, 1)
	ce := report.Counterexamples[0]
	assert.True(t, ce.Found)
	assert.Equal(t, true, ce.World[testkit.Fail])
	for _, f := range testkit.CircuitFaults {
		assert.Equal(t, false, ce.World[f], f)
	}
	assert.Empty(t, report.Repairs)
}

func TestRun_BackendsAgree(t *testing.T) {
	ctx := context.Background()
	for _, in := range [][3]bool{{false, false, true}, {false, false, false}, {true, false, false}} {
		req := CircuitRequest(in[0], in[1], in[2])
		want, err := newService(enumeration.New(nil)).Run(ctx, req)
		require.NoError(t, err)
		got, err := newService(sat.New(time.Second, nil)).Run(ctx, req)
		require.NoError(t, err)
		assert.Equal(t, sat.Name, got.Backend)
		assert.Equal(t, want.Repairs, got.Repairs, req.Title)
		assert.Equal(t, want.Causes, got.Causes, req.Title)
		require.Len(t, got.Separations, 1)
		assert.Equal(t, want.Separations[0].Found, got.Separations[0].Found, req.Title)
		assert.Len(t, got.Separations[0].Set, len(want.Separations[0].Set), req.Title)
	}
}

func TestRun_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := newService(enumeration.New(nil)).Run(ctx, CircuitRequest(false, false, false))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRun_Errors(t *testing.T) {
	svc := newService(enumeration.New(nil))
	_, err := svc.Run(context.Background(), AnalysisRequest{Title: "empty"})
	assert.Equal(t, errors.CodeModelInvalid, errors.GetCode(err))

	_, err = svc.Run(context.Background(), AnalysisRequest{
		Model: testkit.Chain(), Causes: []string{"Q"}, Effect: "C",
	})
	assert.ErrorIs(t, err, causal.ErrUnknownVariable)
	assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))

	_, err = svc.Run(context.Background(), AnalysisRequest{
		Model:       testkit.Chain(),
		Separations: []causal.SeparatingSetRequest{{X: "A", Y: "Q", KMax: 1}},
	})
	assert.ErrorIs(t, err, causal.ErrUnknownVariable)
}

func TestRun_LogsAtInfo(t *testing.T) {
	var buf bytes.Buffer
	logger := internal.NewWriterLogger(internal.LogLevelInfo, &buf)
	svc := NewAnalysisService(&causation.Tester{}, discovery.NewPC(discovery.DefaultOptions()), enumeration.New(nil), 0, logger)

	report, err := svc.Run(context.Background(), CircuitRequest(false, false, true))
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "[INFO] analysis "+report.RunID+" (Circuit i1=false i2=false i3=true): starting with backend enumeration")
	assert.Contains(t, buf.String(), "1 causes, 3 repairs")
	assert.NotContains(t, buf.String(), "[DEBUG]")
}

func TestSummarize_FiniteValues(t *testing.T) {
	sum := summarize([]CauseFinding{
		{Result: causal.CauseResult{IsCause: true, Strength: 4, TestedContexts: 2}, TotalEffect: 4},
		{Result: causal.CauseResult{IsCause: true, Strength: 2, TestedContexts: 1}, TotalEffect: 1},
		{Result: causal.CauseResult{IsCause: false, Strength: math.Inf(-1), TestedContexts: 1}, TotalEffect: 0},
		{Result: causal.CauseResult{}, TotalEffect: math.Inf(1)},
	})
	assert.Equal(t, Summary{
		Causes:            2,
		FiniteStrengths:   2,
		InfiniteStrengths: 1,
		StrengthMean:      3,
		StrengthMax:       4,
		FiniteEffects:     3,
		EffectMedian:      1,
		EffectMax:         4,
	}, sum)
}

func TestReport_Rendering(t *testing.T) {
	report, err := newService(enumeration.New(nil)).Run(context.Background(), CircuitRequest(false, false, false))
	require.NoError(t, err)

	md := report.Markdown()
	assert.Contains(t, md, "# Circuit i1=false i2=false i3=false")
	assert.Contains(t, md, "| O2_fault | true | +inf | 1 | +inf |")
	assert.Contains(t, md, "N_fault → L1 → L2 → Out → Fail")
	assert.Contains(t, md, "- {N_fault}")
	assert.Contains(t, md, "- N_fault, Fail: {L2}")

	html := report.HTML()
	assert.Contains(t, html, "<table>")
	assert.Contains(t, html, "<h1")

	dot := report.DOT()
	assert.True(t, strings.HasPrefix(dot, "digraph rootcause {"))
	assert.Equal(t, 1, strings.Count(dot, `"L2" -> "Out";`), "shared edges are drawn once")
	assert.Contains(t, dot, `"O1_fault" -> "L2";`)
}

func TestFormatRank(t *testing.T) {
	assert.Equal(t, "+inf", formatRank(math.Inf(1)))
	assert.Equal(t, "-inf", formatRank(math.Inf(-1)))
	assert.Equal(t, "2.5", formatRank(2.5))
}
