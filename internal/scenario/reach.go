package scenario

import (
	"log/slog"

	"github.com/espalier-dev/espalier/pkg/domain"
)

// Resolver computes step movement within one scenario's step graph: the
// normal single-hop transition, and the furthest step still safely reachable
// when later steps' data is already known (step skipping).
type Resolver struct {
	evaluate GuardEvaluator
	logger   *slog.Logger
}

// NewResolver creates a resolver using the given guard evaluator.
func NewResolver(evaluate GuardEvaluator, logger *slog.Logger) *Resolver {
	return &Resolver{evaluate: evaluate, logger: logger}
}

// NextStep returns the first transition target of stepID whose guard holds,
// or false when the step is a dead end this turn. Transitions pointing at
// steps missing from the graph are logged and skipped, never fatal.
func (r *Resolver) NextStep(sc *domain.Scenario, stepID string, fields map[string]any) (domain.ScenarioStep, bool) {
	step, ok := sc.Step(stepID)
	if !ok {
		r.logger.Warn("current step missing from scenario graph",
			"scenario_id", sc.ID,
			"step_id", stepID,
		)
		return domain.ScenarioStep{}, false
	}
	for _, t := range step.Transitions {
		pass, err := r.evaluate(t.Condition, fields)
		if err != nil {
			r.logger.Warn("guard evaluation failed, treating as false",
				"scenario_id", sc.ID,
				"step_id", stepID,
				"condition", t.Condition,
				"err", err,
			)
			continue
		}
		if !pass {
			continue
		}
		target, ok := sc.Step(t.ToStepID)
		if !ok {
			r.logger.Warn("transition targets unknown step",
				"scenario_id", sc.ID,
				"step_id", stepID,
				"target_id", t.ToStepID,
			)
			continue
		}
		return target, true
	}
	return domain.ScenarioStep{}, false
}

// FindFurthestReachable walks forward from currentStepID and returns the
// furthest step still safely reachable plus the ordered list of steps skipped
// on the way. A step may only be passed over when it is skippable, is not a
// checkpoint, and every field it collects is already available. The step the
// walk stops at carries no such requirement; stopping at a checkpoint is
// normal, skipping over one never happens. If nothing beyond the current step
// qualifies, the current step comes back with an empty skip list.
func (r *Resolver) FindFurthestReachable(sc *domain.Scenario, currentStepID string, fields map[string]any) (string, []string) {
	visited := map[string]bool{currentStepID: true}
	var path []string

	pos := currentStepID
	for {
		next, ok := r.NextStep(sc, pos, fields)
		if !ok {
			break
		}
		if visited[next.ID] {
			r.logger.Warn("cycle detected during step-skip walk",
				"scenario_id", sc.ID,
				"step_id", next.ID,
			)
			break
		}
		visited[next.ID] = true

		if !r.skippable(next, fields) {
			return next.ID, path
		}
		path = append(path, next.ID)
		pos = next.ID
	}

	// Ran out of road: the last step we advanced past becomes the stop.
	if len(path) > 0 {
		return path[len(path)-1], path[:len(path)-1]
	}
	return currentStepID, nil
}

// skippable reports whether the walk may pass over the step without stopping.
func (r *Resolver) skippable(step domain.ScenarioStep, fields map[string]any) bool {
	if !step.CanSkip || step.Checkpoint || step.Terminal {
		return false
	}
	for _, f := range step.CollectFields {
		if !present(fields, f) {
			return false
		}
	}
	return true
}
