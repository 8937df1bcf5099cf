package espalier_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/espalier-dev/espalier"
	"github.com/espalier-dev/espalier/pkg/adapters/memory"
	"github.com/espalier-dev/espalier/pkg/domain"
)

func refundCatalog() *memory.Catalog {
	return memory.NewCatalog().
		AddRule(domain.Rule{ID: "refund_policy", Scope: domain.ScopeScenario, ScenarioID: "refund", Enabled: true}).
		AddRule(domain.Rule{ID: "verify_identity", Scope: domain.ScopeScenario, ScenarioID: "refund", Enabled: true, HardConstraint: true, RequiredFields: []string{"customer_id"}}).
		AddRule(domain.Rule{ID: "upsell", Scope: domain.ScopeGlobal, Enabled: true}).
		AddRelationship(domain.RuleRelationship{SourceID: "refund_policy", TargetID: "verify_identity", Kind: domain.RelationDependsOn, Weight: 0.9}).
		AddRelationship(domain.RuleRelationship{SourceID: "refund_policy", TargetID: "upsell", Kind: domain.RelationExcludes}).
		AddScenario(&domain.Scenario{
			ID:          "refund",
			Version:     1,
			EntryStepID: "collect",
			Steps: []domain.ScenarioStep{
				{ID: "collect", CollectFields: []string{"order_id"}, Transitions: []domain.StepTransition{{ToStepID: "confirm"}}},
				{ID: "confirm", Checkpoint: true, ConfirmText: "issue the refund?", Transitions: []domain.StepTransition{{ToStepID: "done", Condition: "confirmed == 'yes'"}}},
				{ID: "done", Terminal: true},
			},
		})
}

func TestNew(t *testing.T) {
	cat := refundCatalog()

	t.Run("nil catalogs are rejected", func(t *testing.T) {
		_, err := espalier.New(nil, nil)
		assert.Error(t, err)
	})

	t.Run("invalid config is rejected", func(t *testing.T) {
		cfg := espalier.DefaultConfig()
		cfg.MaxLoopCount = 0
		_, err := espalier.New(cat, cat, espalier.WithConfig(cfg))
		assert.Error(t, err)
	})

	t.Run("defaults apply without options", func(t *testing.T) {
		eng, err := espalier.New(cat, cat)
		require.NoError(t, err)
		assert.NotNil(t, eng)
	})
}

func TestEngine_DecideTurn(t *testing.T) {
	ctx := context.Background()
	cat := refundCatalog()

	eng, err := espalier.New(cat, cat)
	require.NoError(t, err)

	t.Run("full pipeline over one turn", func(t *testing.T) {
		out, err := eng.DecideTurn(ctx, espalier.TurnInput{
			Session: domain.NewSession("s1"),
			MatchedRules: []domain.MatchedRule{
				{Rule: domain.Rule{ID: "refund_policy"}, Score: 0.9},
				{Rule: domain.Rule{ID: "upsell"}, Score: 0.7},
			},
			Candidates: []domain.ScenarioCandidate{{ScenarioID: "refund", Score: 0.8}},
		})
		require.NoError(t, err)
		assert.NotEmpty(t, out.TurnID)

		// Expansion pulls in the dependency and drops the excluded rule.
		ids := make([]string, 0, len(out.ExpandedRules))
		for _, m := range out.ExpandedRules {
			ids = append(ids, m.Rule.ID)
		}
		assert.ElementsMatch(t, []string{"refund_policy", "verify_identity"}, ids)

		require.Len(t, out.Lifecycle, 1)
		assert.Equal(t, domain.ActionStart, out.Lifecycle[0].Action)
		assert.Equal(t, "collect", out.Lifecycle[0].EntryStepID)

		require.Len(t, out.Plan.Contributions, 1)
		assert.Equal(t, domain.ContributionAsk, out.Plan.Contributions[0].Kind)
		assert.Equal(t, []string{"order_id"}, out.Plan.Contributions[0].FieldsToAsk)
	})

	t.Run("profile fields override session variables", func(t *testing.T) {
		sess := domain.NewSession("s2")
		sess.Instances["refund"] = &domain.ScenarioInstance{
			ScenarioID:    "refund",
			CurrentStepID: "collect",
			Status:        domain.StatusActive,
			StepVisits:    map[string]int{"collect": 1},
			StartedAt:     time.Now(),
		}
		sess.Variables["order_id"] = nil // stale, unset value

		out, err := eng.DecideTurn(ctx, espalier.TurnInput{
			Session:       sess,
			ProfileFields: map[string]any{"order_id": "A-1"},
		})
		require.NoError(t, err)

		require.Len(t, out.Transitions, 1)
		assert.Equal(t, "confirm", out.Transitions[0].TargetStepID)
	})

	t.Run("hard constraint blocks the checkpoint", func(t *testing.T) {
		sess := domain.NewSession("s3")
		sess.Instances["refund"] = &domain.ScenarioInstance{
			ScenarioID:    "refund",
			CurrentStepID: "confirm",
			Status:        domain.StatusActive,
			StepVisits:    map[string]int{"confirm": 1},
			StartedAt:     time.Now(),
		}

		out, err := eng.DecideTurn(ctx, espalier.TurnInput{
			Session:      sess,
			MatchedRules: []domain.MatchedRule{{Rule: domain.Rule{ID: "verify_identity"}, Score: 0.9}},
		})
		require.NoError(t, err)

		require.Len(t, out.Plan.Contributions, 1)
		assert.Equal(t, domain.ContributionAsk, out.Plan.Contributions[0].Kind)
		assert.Equal(t, []string{"customer_id"}, out.Plan.Contributions[0].FieldsToAsk)
	})

	t.Run("cancel signal ends the scenario", func(t *testing.T) {
		sess := domain.NewSession("s4")
		sess.Instances["refund"] = &domain.ScenarioInstance{
			ScenarioID:    "refund",
			CurrentStepID: "collect",
			Status:        domain.StatusActive,
			StepVisits:    map[string]int{"collect": 1},
			StartedAt:     time.Now(),
		}

		out, err := eng.DecideTurn(ctx, espalier.TurnInput{
			Session: sess,
			Signals: map[string]domain.SignalKind{"refund": domain.SignalCancel},
		})
		require.NoError(t, err)

		require.Len(t, out.Lifecycle, 1)
		assert.Equal(t, domain.ActionCancel, out.Lifecycle[0].Action)
		assert.Empty(t, out.Plan.Contributions)
	})

	t.Run("nil session is treated as empty", func(t *testing.T) {
		out, err := eng.DecideTurn(ctx, espalier.TurnInput{})
		require.NoError(t, err)
		assert.Empty(t, out.Lifecycle)
		assert.Empty(t, out.Plan.Contributions)
	})

	t.Run("input session is never mutated", func(t *testing.T) {
		sess := domain.NewSession("s5")
		sess.Instances["refund"] = &domain.ScenarioInstance{
			ScenarioID:    "refund",
			CurrentStepID: "collect",
			Status:        domain.StatusActive,
			StepVisits:    map[string]int{"collect": 1},
			StartedAt:     time.Now(),
		}

		_, err := eng.DecideTurn(ctx, espalier.TurnInput{
			Session:       sess,
			ProfileFields: map[string]any{"order_id": "A-1"},
		})
		require.NoError(t, err)

		assert.Equal(t, "collect", sess.Instances["refund"].CurrentStepID)
		assert.Equal(t, 1, sess.Instances["refund"].StepVisits["collect"])
		assert.NotContains(t, sess.Variables, "order_id")
	})
}
