package scenario

import (
	"fmt"
	"log/slog"

	"github.com/espalier-dev/espalier/pkg/domain"
)

// Orchestrator is the turn-level façade composing the lifecycle maker, the
// reachability resolver and the contribution synthesizer. It is pure: one
// call per turn over immutable snapshots, decisions out, no retained state.
type Orchestrator struct {
	limits   Limits
	resolver *Resolver
	logger   *slog.Logger
}

// NewOrchestrator creates an orchestrator with the given limits and guard
// evaluator. A nil evaluator falls back to DefaultGuardEvaluator.
func NewOrchestrator(limits Limits, evaluate GuardEvaluator, logger *slog.Logger) *Orchestrator {
	if evaluate == nil {
		evaluate = DefaultGuardEvaluator
	}
	return &Orchestrator{
		limits:   limits,
		resolver: NewResolver(evaluate, logger),
		logger:   logger,
	}
}

// Result bundles the orchestrator's per-turn outputs. The caller applies the
// lifecycle and transition decisions back to the session snapshot; the plan
// feeds response planning downstream.
type Result struct {
	Lifecycle   []domain.LifecycleDecision
	Transitions []domain.TransitionDecision
	Plan        domain.ContributionPlan
}

// DecideTurn runs one turn: lifecycle decisions over active instances and
// candidates, step transitions (with skip shortcuts when enabled) for every
// continuing scenario, and the merged contribution plan. Missing definitions
// degrade to fewer decisions, never to an error.
func (o *Orchestrator) DecideTurn(
	scenarios map[string]*domain.Scenario,
	session *domain.Session,
	candidates []domain.ScenarioCandidate,
	signals map[string]domain.SignalKind,
	fields map[string]any,
	expanded []domain.MatchedRule,
) Result {
	maker := NewLifecycleMaker(scenarios, o.limits, o.logger)
	lifecycle := maker.Decide(session, candidates, signals)

	var transitions []domain.TransitionDecision
	for _, d := range lifecycle {
		if d.Action != domain.ActionContinue {
			continue
		}
		sc, ok := scenarios[d.ScenarioID]
		if !ok {
			continue
		}
		transitions = append(transitions, o.transition(sc, d.SourceStepID, fields))
	}

	synth := NewSynthesizer(scenarios, o.limits, o.logger)
	plan := synth.Synthesize(lifecycle, transitions, expanded, session, fields)

	return Result{Lifecycle: lifecycle, Transitions: transitions, Plan: plan}
}

// transition computes the step movement for one continuing scenario. With
// step skipping enabled the resolver may jump past steps whose data is
// already known; otherwise a single guarded hop is taken. A dead end yields
// a stay-in-place transition rather than no decision.
func (o *Orchestrator) transition(sc *domain.Scenario, sourceID string, fields map[string]any) domain.TransitionDecision {
	t := domain.TransitionDecision{
		ScenarioID:   sc.ID,
		SourceStepID: sourceID,
		Confidence:   1.0,
	}

	if o.limits.EnableStepSkipping {
		furthest, skipped := o.resolver.FindFurthestReachable(sc, sourceID, fields)
		t.TargetStepID = furthest
		if len(skipped) > 0 {
			t.WasSkipped = true
			t.SkippedStepIDs = skipped
			t.Reasoning = fmt.Sprintf("skipped %d step(s) with already-known data", len(skipped))
			return t
		}
		if furthest != sourceID {
			t.Reasoning = "advanced to next step"
			return t
		}
		t.Reasoning = "no eligible transition this turn"
		return t
	}

	if next, ok := o.resolver.NextStep(sc, sourceID, fields); ok {
		t.TargetStepID = next.ID
		t.Reasoning = "advanced to next step"
		return t
	}
	t.TargetStepID = sourceID
	t.Reasoning = "no eligible transition this turn"
	return t
}
