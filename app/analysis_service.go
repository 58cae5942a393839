package app

import (
	"context"
	stderrors "errors"
	"fmt"
	"math"
	"time"

	"rankcausal/domain/causal"
	"rankcausal/internal"
	"rankcausal/internal/causation"
	"rankcausal/internal/discovery"
	"rankcausal/internal/errors"
	"rankcausal/internal/explanation"
	"rankcausal/internal/srm"
	"rankcausal/ports"

	"github.com/montanaflynn/stats"
)

// AnalysisService runs the causal analysis battery over one model: causation
// and total effect for each candidate cause, structure discovery, separating
// sets and minimal repairs through the configured backend, root-cause chains
// and invariant checks.
type AnalysisService struct {
	tester    *causation.Tester
	pc        *discovery.PC
	backend   ports.SolverBackend
	maxWorlds int
	logger    *internal.Logger
}

// NewAnalysisService creates an analysis service
func NewAnalysisService(tester *causation.Tester, pc *discovery.PC, backend ports.SolverBackend, maxWorlds int, logger *internal.Logger) *AnalysisService {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &AnalysisService{
		tester:    tester,
		pc:        pc,
		backend:   backend,
		maxWorlds: maxWorlds,
		logger:    logger,
	}
}

// AnalysisRequest describes one analysis run. Empty sections are skipped.
type AnalysisRequest struct {
	Title string
	Model *srm.Model

	// Causes are tested against Effect with IsCause and TotalEffect(true, false).
	Causes []string
	Effect string

	// Discovery lists the variables PC runs over.
	Discovery []string

	// Separations are answered by the backend's separating-set strategy with
	// the same ranked CI oracle discovery uses.
	Separations []causal.SeparatingSetRequest

	RepairTarget     string
	RepairValue      any
	RepairCandidates []string
	RepairValues     map[string]any
	RepairConfig     causal.RepairSearchConfig

	// Invariants are checked against the most plausible worlds.
	Invariants []causal.Inequality
}

// CauseFinding is the causation verdict for one candidate.
type CauseFinding struct {
	Variable    string
	Result      causal.CauseResult
	TotalEffect float64
}

// Chain is a directed path from a detected cause to the effect.
type Chain struct {
	From string
	Path []string
}

// Separation is the answer to one separating-set query. Set is empty when X
// and Y are independent outright.
type Separation struct {
	X     string
	Y     string
	KMax  int
	Set   []string
	Found bool
}

// Counterexample is a plausible world that breaks an invariant.
type Counterexample struct {
	Invariant string
	World     causal.World
	Found     bool
}

// Summary aggregates the finite numbers of a report. Infinite strengths and
// effects are counted, not averaged.
type Summary struct {
	Causes            int
	FiniteStrengths   int
	InfiniteStrengths int
	StrengthMean      float64
	StrengthMax       float64
	FiniteEffects     int
	EffectMedian      float64
	EffectMax         float64
}

// Report is the outcome of Run.
type Report struct {
	RunID           string
	Title           string
	Backend         string
	Effect          string
	Causes          []CauseFinding
	Discovery       *causal.PCResult
	Separations     []Separation
	RepairTarget    string
	Repairs         [][]string
	Chains          []Chain
	Counterexamples []Counterexample
	Summary         Summary
	StartedAt       time.Time
	Duration        time.Duration
}

// Run executes the battery. The context is checked between stages; a running
// engine call is not interrupted.
func (s *AnalysisService) Run(ctx context.Context, req AnalysisRequest) (*Report, error) {
	if req.Model == nil {
		return nil, errors.ModelInvalid(fmt.Sprintf("analysis %q: model cannot be nil", req.Title))
	}
	start := time.Now()
	report := &Report{
		RunID:        causal.NewRunID(),
		Title:        req.Title,
		Backend:      s.backend.Name,
		Effect:       req.Effect,
		RepairTarget: req.RepairTarget,
		StartedAt:    start,
	}
	s.logger.Info("analysis %s (%s): starting with backend %s", report.RunID, req.Title, report.Backend)

	stages := []struct {
		name string
		run  func(*Report, AnalysisRequest) error
	}{
		{"causation", s.runCausation},
		{"discovery", s.runDiscovery},
		{"separation", s.runSeparation},
		{"repair", s.runRepair},
		{"invariants", s.runInvariants},
	}
	for _, stage := range stages {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("analysis %s cancelled before %s: %w", report.RunID, stage.name, err)
		}
		if err := stage.run(report, req); err != nil {
			return nil, stageError(report.RunID, stage.name, err)
		}
	}

	report.Summary = summarize(report.Causes)
	report.Duration = time.Since(start)
	s.logger.Info("analysis %s: %d causes, %d repairs, done in %s",
		report.RunID, report.Summary.Causes, len(report.Repairs), report.Duration)
	return report, nil
}

func (s *AnalysisService) runCausation(report *Report, req AnalysisRequest) error {
	if req.Effect == "" {
		return nil
	}
	for _, cause := range req.Causes {
		res, err := s.tester.IsCause(req.Model, cause, req.Effect)
		if err != nil {
			return err
		}
		effect, err := s.tester.TotalEffect(req.Model, cause, req.Effect, true, false)
		if err != nil {
			return err
		}
		report.Causes = append(report.Causes, CauseFinding{Variable: cause, Result: res, TotalEffect: effect})
		if res.IsCause {
			report.Chains = append(report.Chains, Chain{
				From: cause,
				Path: explanation.RootCauseChain(req.Model, cause, req.Effect),
			})
		}
	}
	return nil
}

func (s *AnalysisService) runDiscovery(report *Report, req AnalysisRequest) error {
	if len(req.Discovery) == 0 {
		return nil
	}
	res, err := s.pc.Discover(req.Model, req.Discovery)
	if err != nil {
		return err
	}
	report.Discovery = res
	return nil
}

func (s *AnalysisService) runSeparation(report *Report, req AnalysisRequest) error {
	if len(req.Separations) == 0 {
		return nil
	}
	ci := s.pc.Oracle(req.Model).Test()
	for _, q := range req.Separations {
		set, found, err := s.backend.Separating.Find(q, ci)
		if err != nil {
			return err
		}
		report.Separations = append(report.Separations, Separation{
			X: q.X, Y: q.Y, KMax: q.KMax, Set: set, Found: found,
		})
	}
	return nil
}

func (s *AnalysisService) runRepair(report *Report, req AnalysisRequest) error {
	if req.RepairTarget == "" || len(req.RepairCandidates) == 0 {
		return nil
	}
	repairs, err := s.backend.Repair.Repairs(req.Model, causal.RepairRequest{
		Target:       req.RepairTarget,
		Desired:      req.RepairValue,
		Candidates:   req.RepairCandidates,
		RepairValues: req.RepairValues,
		Config:       req.RepairConfig,
	})
	if err != nil {
		return err
	}
	report.Repairs = repairs
	return nil
}

func (s *AnalysisService) runInvariants(report *Report, req AnalysisRequest) error {
	for _, ineq := range req.Invariants {
		w, found := s.backend.Counterexamples.FindViolation(req.Model, ineq, s.maxWorlds)
		report.Counterexamples = append(report.Counterexamples, Counterexample{
			Invariant: ineq.Name,
			World:     w,
			Found:     found,
		})
	}
	return nil
}

// stageError marks a request naming a variable the model lacks as invalid
// input.
func stageError(runID, stage string, err error) error {
	msg := fmt.Sprintf("analysis %s: %s", runID, stage)
	if stderrors.Is(err, causal.ErrUnknownVariable) {
		return errors.Wrap(errors.WithCode(errors.CodeInvalidInput, err), msg)
	}
	return fmt.Errorf("%s: %w", msg, err)
}

func summarize(findings []CauseFinding) Summary {
	var sum Summary
	var strengths, effects []float64
	for _, f := range findings {
		if f.Result.IsCause {
			sum.Causes++
		}
		if f.Result.TestedContexts > 0 {
			if math.IsInf(f.Result.Strength, 0) {
				sum.InfiniteStrengths++
			} else {
				strengths = append(strengths, f.Result.Strength)
			}
		}
		if !math.IsInf(f.TotalEffect, 0) {
			effects = append(effects, f.TotalEffect)
		}
	}
	sum.FiniteStrengths = len(strengths)
	sum.FiniteEffects = len(effects)

	// stats only errors on empty input, which is guarded by the length checks
	if len(strengths) > 0 {
		sum.StrengthMean, _ = stats.Mean(strengths)
		sum.StrengthMax, _ = stats.Max(strengths)
	}
	if len(effects) > 0 {
		sum.EffectMedian, _ = stats.Median(effects)
		sum.EffectMax, _ = stats.Max(effects)
	}
	return sum
}
