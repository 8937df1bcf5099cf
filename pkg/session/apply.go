package session

import (
	"time"

	"github.com/espalier-dev/espalier/pkg/domain"
)

// Apply folds one turn's lifecycle and transition decisions into a session
// snapshot and returns the updated copy. The input snapshot is not mutated,
// matching the engine's snapshot-in, decisions-out contract.
func Apply(
	sess *domain.Session,
	scenarios map[string]*domain.Scenario,
	lifecycle []domain.LifecycleDecision,
	transitions []domain.TransitionDecision,
	now time.Time,
) *domain.Session {
	next := sess.Clone()

	targets := make(map[string]domain.TransitionDecision, len(transitions))
	for _, t := range transitions {
		targets[t.ScenarioID] = t
	}

	for _, d := range lifecycle {
		switch d.Action {
		case domain.ActionStart:
			sc, ok := scenarios[d.ScenarioID]
			if !ok {
				continue
			}
			next.Instances[d.ScenarioID] = domain.NewInstance(sc, now)

		case domain.ActionContinue:
			inst, ok := next.Instances[d.ScenarioID]
			if !ok {
				continue
			}
			t, ok := targets[d.ScenarioID]
			if !ok {
				continue
			}
			if inst.StepVisits == nil {
				inst.StepVisits = make(map[string]int)
			}
			inst.CurrentStepID = t.TargetStepID
			inst.StepVisits[t.TargetStepID]++
			inst.LastActiveAt = now

		case domain.ActionPause:
			inst, ok := next.Instances[d.ScenarioID]
			if !ok {
				continue
			}
			paused := now
			inst.Status = domain.StatusPaused
			inst.PausedAt = &paused

		case domain.ActionComplete:
			inst, ok := next.Instances[d.ScenarioID]
			if !ok {
				continue
			}
			inst.Status = domain.StatusCompleted
			inst.LastActiveAt = now

		case domain.ActionCancel:
			inst, ok := next.Instances[d.ScenarioID]
			if !ok {
				continue
			}
			inst.Status = domain.StatusCancelled
			inst.LastActiveAt = now
		}
	}

	return next
}
