package scenario

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/espalier-dev/espalier/internal/logging"
	"github.com/espalier-dev/espalier/pkg/domain"
)

func chainScenario(steps ...domain.ScenarioStep) *domain.Scenario {
	return &domain.Scenario{
		ID:          "booking",
		Version:     1,
		EntryStepID: steps[0].ID,
		Steps:       steps,
	}
}

func to(id string) []domain.StepTransition {
	return []domain.StepTransition{{ToStepID: id}}
}

func newTestResolver() *Resolver {
	return NewResolver(DefaultGuardEvaluator, logging.NewNop())
}

func TestFindFurthestReachable(t *testing.T) {
	t.Run("skips steps whose data is already known", func(t *testing.T) {
		sc := chainScenario(
			domain.ScenarioStep{ID: "ask_date", Transitions: to("ask_guests")},
			domain.ScenarioStep{ID: "ask_guests", CanSkip: true, CollectFields: []string{"guests"}, Transitions: to("ask_room")},
			domain.ScenarioStep{ID: "ask_room", CanSkip: true, CollectFields: []string{"room_type"}, Transitions: to("confirm")},
			domain.ScenarioStep{ID: "confirm", Checkpoint: true},
		)
		fields := map[string]any{"guests": 2, "room_type": "double"}

		furthest, skipped := newTestResolver().FindFurthestReachable(sc, "ask_date", fields)

		assert.Equal(t, "confirm", furthest)
		assert.Equal(t, []string{"ask_guests", "ask_room"}, skipped)
	})

	t.Run("stops at first step with missing data", func(t *testing.T) {
		sc := chainScenario(
			domain.ScenarioStep{ID: "ask_date", Transitions: to("ask_guests")},
			domain.ScenarioStep{ID: "ask_guests", CanSkip: true, CollectFields: []string{"guests"}, Transitions: to("ask_room")},
			domain.ScenarioStep{ID: "ask_room", CanSkip: true, CollectFields: []string{"room_type"}, Transitions: to("confirm")},
			domain.ScenarioStep{ID: "confirm", Checkpoint: true},
		)
		fields := map[string]any{"guests": 2}

		furthest, skipped := newTestResolver().FindFurthestReachable(sc, "ask_date", fields)

		assert.Equal(t, "ask_room", furthest)
		assert.Equal(t, []string{"ask_guests"}, skipped)
	})

	t.Run("checkpoint is never skipped even with data available", func(t *testing.T) {
		sc := chainScenario(
			domain.ScenarioStep{ID: "ask_date", Transitions: to("verify")},
			domain.ScenarioStep{ID: "verify", CanSkip: true, Checkpoint: true, CollectFields: []string{"guests"}, Transitions: to("done")},
			domain.ScenarioStep{ID: "done", Terminal: true},
		)
		fields := map[string]any{"guests": 2}

		furthest, skipped := newTestResolver().FindFurthestReachable(sc, "ask_date", fields)

		assert.Equal(t, "verify", furthest)
		assert.Empty(t, skipped)
	})

	t.Run("step without can_skip stops the walk", func(t *testing.T) {
		sc := chainScenario(
			domain.ScenarioStep{ID: "a", Transitions: to("b")},
			domain.ScenarioStep{ID: "b", CollectFields: []string{"guests"}, Transitions: to("c")},
			domain.ScenarioStep{ID: "c"},
		)
		fields := map[string]any{"guests": 2}

		furthest, skipped := newTestResolver().FindFurthestReachable(sc, "a", fields)

		assert.Equal(t, "b", furthest)
		assert.Empty(t, skipped)
	})

	t.Run("dead end returns current step as no-op", func(t *testing.T) {
		sc := chainScenario(domain.ScenarioStep{ID: "a"})

		furthest, skipped := newTestResolver().FindFurthestReachable(sc, "a", nil)

		assert.Equal(t, "a", furthest)
		assert.Empty(t, skipped)
	})

	t.Run("skippable step at end of road becomes the stop", func(t *testing.T) {
		sc := chainScenario(
			domain.ScenarioStep{ID: "a", Transitions: to("b")},
			domain.ScenarioStep{ID: "b", CanSkip: true, CollectFields: []string{"guests"}},
		)
		fields := map[string]any{"guests": 2}

		furthest, skipped := newTestResolver().FindFurthestReachable(sc, "a", fields)

		assert.Equal(t, "b", furthest)
		assert.Empty(t, skipped)
	})

	t.Run("guard conditions pick the branch", func(t *testing.T) {
		sc := chainScenario(
			domain.ScenarioStep{ID: "route", Transitions: []domain.StepTransition{
				{ToStepID: "vip", Condition: "tier == 'gold'"},
				{ToStepID: "standard"},
			}},
			domain.ScenarioStep{ID: "vip"},
			domain.ScenarioStep{ID: "standard"},
		)

		furthest, _ := newTestResolver().FindFurthestReachable(sc, "route", map[string]any{"tier": "gold"})
		assert.Equal(t, "vip", furthest)

		furthest, _ = newTestResolver().FindFurthestReachable(sc, "route", map[string]any{"tier": "silver"})
		assert.Equal(t, "standard", furthest)
	})

	t.Run("cyclic graph terminates", func(t *testing.T) {
		sc := chainScenario(
			domain.ScenarioStep{ID: "a", Transitions: to("b")},
			domain.ScenarioStep{ID: "b", CanSkip: true, Transitions: to("a")},
		)

		furthest, skipped := newTestResolver().FindFurthestReachable(sc, "a", nil)

		assert.Equal(t, "b", furthest)
		assert.Empty(t, skipped)
	})

	t.Run("transition to unknown step is skipped", func(t *testing.T) {
		sc := chainScenario(
			domain.ScenarioStep{ID: "a", Transitions: []domain.StepTransition{
				{ToStepID: "ghost"},
				{ToStepID: "b"},
			}},
			domain.ScenarioStep{ID: "b"},
		)

		furthest, _ := newTestResolver().FindFurthestReachable(sc, "a", nil)
		assert.Equal(t, "b", furthest)
	})
}
