package espalier

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/espalier-dev/espalier/internal/ruleset"
	"github.com/espalier-dev/espalier/internal/scenario"
	"github.com/espalier-dev/espalier/pkg/domain"
	"github.com/espalier-dev/espalier/pkg/observability"
	"github.com/espalier-dev/espalier/pkg/ports"
)

// Engine is the high-level entry point for the Espalier library. It turns
// noisy, independently retrieved rule and scenario candidates into a
// consistent active set for the current turn. Stateless across turns: each
// DecideTurn call reads the catalogs once, computes in memory, and returns
// decisions for the caller to apply.
type Engine struct {
	rules     ports.RuleCatalog
	scenarios ports.ScenarioCatalog
	config    Config
	evaluator scenario.GuardEvaluator
	metrics   *observability.Metrics
	logger    *slog.Logger
	now       func() time.Time
}

// Option defines a functional option for configuring the Engine.
type Option func(*Engine)

// WithConfig overrides the default configuration.
func WithConfig(cfg Config) Option {
	return func(e *Engine) {
		e.config = cfg
	}
}

// WithLogger sets a custom structured logger for the engine.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithMetrics enables Prometheus instrumentation.
func WithMetrics(m *observability.Metrics) Option {
	return func(e *Engine) {
		e.metrics = m
	}
}

// WithGuardEvaluator sets a custom evaluator for transition guard conditions.
func WithGuardEvaluator(evaluate func(condition string, fields map[string]any) (bool, error)) Option {
	return func(e *Engine) {
		e.evaluator = evaluate
	}
}

// WithClock overrides the time source, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

// New initializes an Engine over the given catalogs. Configuration is
// validated here; this is the only point where the engine hard-fails.
func New(rules ports.RuleCatalog, scenarios ports.ScenarioCatalog, opts ...Option) (*Engine, error) {
	if rules == nil || scenarios == nil {
		return nil, fmt.Errorf("rule and scenario catalogs are required")
	}

	eng := &Engine{
		rules:     rules,
		scenarios: scenarios,
		config:    DefaultConfig(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(eng)
	}

	if err := eng.config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	if eng.logger == nil {
		eng.logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	return eng, nil
}

// TurnInput is everything the engine consumes for one turn. All of it is
// produced by upstream collaborators; the engine treats it as read-only.
type TurnInput struct {
	// Session is the snapshot of per-session scenario instances and
	// variables. Never mutated; decisions are returned instead.
	Session *domain.Session

	// MatchedRules is the confident set produced by upstream relevance
	// judgment, before relationship expansion.
	MatchedRules []domain.MatchedRule

	// Candidates are retrieval hits for scenarios not yet active.
	Candidates []domain.ScenarioCandidate

	// Signals carries per-scenario termination hints from situational
	// analysis, keyed by scenario ID.
	Signals map[string]domain.SignalKind

	// ProfileFields are customer-profile values merged over session
	// variables; on conflicts the profile wins.
	ProfileFields map[string]any
}

// TurnResult is the engine's full output for one turn.
type TurnResult struct {
	TurnID        string                      `json:"turn_id"`
	ExpandedRules []domain.MatchedRule        `json:"expanded_rules"`
	Lifecycle     []domain.LifecycleDecision  `json:"lifecycle_decisions"`
	Transitions   []domain.TransitionDecision `json:"transition_decisions"`
	Plan          domain.ContributionPlan     `json:"contribution_plan"`
}

// DecideTurn runs the full decision pipeline for one turn: batched catalog
// reads, rule relationship expansion, scenario lifecycle and transition
// decisions, and contribution synthesis. Catalog read failures are the only
// errors; once the data is in memory nothing can abort the turn.
func (e *Engine) DecideTurn(ctx context.Context, input TurnInput) (*TurnResult, error) {
	started := e.now()

	session := input.Session
	if session == nil {
		session = domain.NewSession("")
	}

	catalog, err := e.rules.Rules(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load rule catalog: %w", err)
	}
	edges, err := e.rules.Relationships(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load rule relationships: %w", err)
	}
	graphs, err := e.scenarios.Scenarios(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load scenario catalog: %w", err)
	}

	expander := ruleset.NewExpander(catalog, e.config.MaxExpansionDepth, e.logger)
	expanded := expander.Expand(input.MatchedRules, edges)

	fields := mergeFields(session.Variables, input.ProfileFields)

	orch := scenario.NewOrchestrator(e.limits(), e.evaluator, e.logger)
	result := orch.DecideTurn(graphs, session, input.Candidates, input.Signals, fields, expanded)

	out := &TurnResult{
		TurnID:        uuid.NewString(),
		ExpandedRules: expanded,
		Lifecycle:     result.Lifecycle,
		Transitions:   result.Transitions,
		Plan:          result.Plan,
	}
	e.observe(out, started)
	return out, nil
}

// limits translates the public configuration into the orchestrator's knobs.
func (e *Engine) limits() scenario.Limits {
	return scenario.Limits{
		MaxLoopCount:             e.config.MaxLoopCount,
		MaxSimultaneousScenarios: e.config.MaxSimultaneousScenarios,
		EnableStepSkipping:       e.config.EnableStepSkipping,
		EnableMultiScenario:      e.config.EnableMultiScenario,
		BlockOnMissingHardFields: e.config.BlockOnMissingHardFields,
		CancelOnLoopExceeded:     e.config.CancelOnLoopExceeded,
		SelectionThreshold:       e.config.SelectionThreshold,
	}
}

func (e *Engine) observe(out *TurnResult, started time.Time) {
	if e.metrics == nil {
		return
	}
	e.metrics.ObserveTurn(e.now().Sub(started))
	derived := 0
	for _, m := range out.ExpandedRules {
		if m.Derived {
			derived++
		}
	}
	e.metrics.ObserveExpansion(len(out.ExpandedRules), derived)
	for _, d := range out.Lifecycle {
		e.metrics.ObserveDecision(string(d.Action))
	}
	for _, t := range out.Transitions {
		e.metrics.ObserveSkippedSteps(len(t.SkippedStepIDs))
	}
}

// mergeFields builds the turn's available-field view: session variables
// overlaid by profile fields, profile taking precedence on conflicts.
func mergeFields(sessionVars, profile map[string]any) map[string]any {
	merged := make(map[string]any, len(sessionVars)+len(profile))
	for k, v := range sessionVars {
		merged[k] = v
	}
	for k, v := range profile {
		merged[k] = v
	}
	return merged
}
