package scenario

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/espalier-dev/espalier/pkg/domain"
)

// Limits carries the orchestration knobs, validated upstream at
// configuration-load time.
type Limits struct {
	MaxLoopCount             int
	MaxSimultaneousScenarios int
	EnableStepSkipping       bool
	EnableMultiScenario      bool
	BlockOnMissingHardFields bool
	CancelOnLoopExceeded     bool
	SelectionThreshold       float64
}

// Capacity returns the effective simultaneous-scenario ceiling.
func (l Limits) Capacity() int {
	if !l.EnableMultiScenario {
		return 1
	}
	return l.MaxSimultaneousScenarios
}

// LifecycleMaker evaluates each active scenario instance and each retrieval
// candidate and emits one lifecycle action per scenario. It never mutates the
// session snapshot; the caller applies the decisions.
type LifecycleMaker struct {
	scenarios map[string]*domain.Scenario
	limits    Limits
	logger    *slog.Logger
}

// NewLifecycleMaker creates a decision maker over the turn's scenario catalog.
func NewLifecycleMaker(scenarios map[string]*domain.Scenario, limits Limits, logger *slog.Logger) *LifecycleMaker {
	return &LifecycleMaker{scenarios: scenarios, limits: limits, logger: logger}
}

// Decide walks active instances first, then candidates, so that scenarios
// leaving the active set this turn free capacity for new starts within the
// same turn. Candidates that find no free slot are deferred silently.
func (m *LifecycleMaker) Decide(session *domain.Session, candidates []domain.ScenarioCandidate, signals map[string]domain.SignalKind) []domain.LifecycleDecision {
	var decisions []domain.LifecycleDecision

	active := make([]*domain.ScenarioInstance, 0, len(session.Instances))
	for _, inst := range session.Instances {
		if inst.Status == domain.StatusActive {
			active = append(active, inst)
		}
	}
	sort.Slice(active, func(i, j int) bool {
		if !active[i].StartedAt.Equal(active[j].StartedAt) {
			return active[i].StartedAt.Before(active[j].StartedAt)
		}
		return active[i].ScenarioID < active[j].ScenarioID
	})

	activeCount := len(active)
	for _, inst := range active {
		d, ok := m.decideInstance(inst, signals[inst.ScenarioID])
		if !ok {
			continue
		}
		if d.Action != domain.ActionContinue {
			// PAUSE, COMPLETE and CANCEL all leave the active set.
			activeCount--
		}
		decisions = append(decisions, d)
	}

	ranked := make([]domain.ScenarioCandidate, len(candidates))
	copy(ranked, candidates)
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		return ranked[i].ScenarioID < ranked[j].ScenarioID
	})

	for _, c := range ranked {
		d, ok := m.decideCandidate(session, c, activeCount)
		if !ok {
			continue
		}
		activeCount++
		decisions = append(decisions, d)
	}

	return decisions
}

// decideInstance resolves the lifecycle action for one active instance.
// Returns false when the instance must be skipped because its definitions
// are missing (data-integrity degradation, never fatal).
func (m *LifecycleMaker) decideInstance(inst *domain.ScenarioInstance, signal domain.SignalKind) (domain.LifecycleDecision, bool) {
	sc, ok := m.scenarios[inst.ScenarioID]
	if !ok {
		m.logger.Warn("active instance references unknown scenario",
			"scenario_id", inst.ScenarioID,
		)
		return domain.LifecycleDecision{}, false
	}

	if inst.Visits(inst.CurrentStepID) >= m.limits.MaxLoopCount {
		action := domain.ActionPause
		if m.limits.CancelOnLoopExceeded {
			action = domain.ActionCancel
		}
		return domain.LifecycleDecision{
			ScenarioID:   inst.ScenarioID,
			Action:       action,
			Reasoning:    "loop threshold exceeded",
			Confidence:   1.0,
			SourceStepID: inst.CurrentStepID,
		}, true
	}

	if signal != "" {
		return domain.LifecycleDecision{
			ScenarioID:   inst.ScenarioID,
			Action:       signalAction(signal),
			Reasoning:    fmt.Sprintf("termination signal %s detected upstream", signal),
			Confidence:   1.0,
			SourceStepID: inst.CurrentStepID,
		}, true
	}

	step, ok := sc.Step(inst.CurrentStepID)
	if !ok {
		m.logger.Warn("active instance positioned on unknown step",
			"scenario_id", inst.ScenarioID,
			"step_id", inst.CurrentStepID,
		)
		return domain.LifecycleDecision{}, false
	}
	if step.Terminal {
		return domain.LifecycleDecision{
			ScenarioID:   inst.ScenarioID,
			Action:       domain.ActionComplete,
			Reasoning:    "terminal step reached",
			Confidence:   1.0,
			SourceStepID: inst.CurrentStepID,
		}, true
	}

	return domain.LifecycleDecision{
		ScenarioID:   inst.ScenarioID,
		Action:       domain.ActionContinue,
		Reasoning:    "scenario in progress",
		Confidence:   1.0,
		SourceStepID: inst.CurrentStepID,
	}, true
}

// decideCandidate resolves whether a retrieval candidate starts this turn.
// Deferred candidates (capacity, threshold, existing instance) yield no
// decision at all rather than an error.
func (m *LifecycleMaker) decideCandidate(session *domain.Session, c domain.ScenarioCandidate, activeCount int) (domain.LifecycleDecision, bool) {
	if inst, ok := session.Instances[c.ScenarioID]; ok {
		if inst.Status == domain.StatusActive || inst.Status == domain.StatusPaused {
			return domain.LifecycleDecision{}, false
		}
	}
	if activeCount >= m.limits.Capacity() {
		m.logger.Debug("scenario candidate deferred, capacity reached",
			"scenario_id", c.ScenarioID,
			"active", activeCount,
		)
		return domain.LifecycleDecision{}, false
	}
	if c.Score < m.limits.SelectionThreshold {
		return domain.LifecycleDecision{}, false
	}

	sc, ok := m.scenarios[c.ScenarioID]
	if !ok {
		m.logger.Warn("candidate references unknown scenario",
			"scenario_id", c.ScenarioID,
		)
		return domain.LifecycleDecision{}, false
	}
	if _, ok := sc.Step(sc.EntryStepID); !ok {
		m.logger.Warn("scenario entry step missing from graph",
			"scenario_id", sc.ID,
			"entry_step_id", sc.EntryStepID,
		)
		return domain.LifecycleDecision{}, false
	}

	return domain.LifecycleDecision{
		ScenarioID:  c.ScenarioID,
		Action:      domain.ActionStart,
		Reasoning:   "retrieval candidate cleared selection threshold",
		Confidence:  c.Score,
		EntryStepID: sc.EntryStepID,
	}, true
}

// signalAction maps an upstream termination hint to its lifecycle action.
// EXIT is a graceful early completion; PAUSE and CANCEL map directly.
func signalAction(signal domain.SignalKind) domain.LifecycleAction {
	switch signal {
	case domain.SignalPause:
		return domain.ActionPause
	case domain.SignalCancel:
		return domain.ActionCancel
	default:
		return domain.ActionComplete
	}
}
