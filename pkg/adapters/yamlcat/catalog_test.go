package yamlcat

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/espalier-dev/espalier/pkg/domain"
)

func writeCatalog(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return dir
}

const rulesYAML = `
rules:
  - id: refund_policy
    scope: SCENARIO
    scenario_id: refund
    enabled: true
    priority: 5
  - id: verify_identity
    scope: SCENARIO
    scenario_id: refund
    enabled: true
    hard_constraint: true
    required_fields: [customer_id]
relationships:
  - source: refund_policy
    target: verify_identity
    kind: DEPENDS_ON
    weight: 0.9
`

const refundYAML = `
id: refund
version: 3
name: Refund flow
entry: collect
priority: 2
steps:
  - id: collect
    collect_fields: [order_id, reason]
    transitions:
      - to: confirm
  - id: confirm
    checkpoint: true
    confirm_text: issue the refund?
    transitions:
      - to: done
        condition: confirmed == 'yes'
  - id: done
    terminal: true
`

func TestLoad(t *testing.T) {
	ctx := context.Background()

	t.Run("full catalog directory", func(t *testing.T) {
		dir := writeCatalog(t, map[string]string{
			"rules.yaml":            rulesYAML,
			"scenarios/refund.yaml": refundYAML,
		})

		cat, err := Load(dir)
		require.NoError(t, err)

		rules, err := cat.Rules(ctx)
		require.NoError(t, err)
		require.Len(t, rules, 2)
		assert.Equal(t, domain.ScopeScenario, rules["refund_policy"].Scope)
		assert.Equal(t, 5, rules["refund_policy"].Priority)
		assert.True(t, rules["verify_identity"].HardConstraint)
		assert.Equal(t, []string{"customer_id"}, rules["verify_identity"].RequiredFields)

		edges, err := cat.Relationships(ctx)
		require.NoError(t, err)
		require.Len(t, edges, 1)
		assert.Equal(t, domain.RelationDependsOn, edges[0].Kind)
		assert.Equal(t, 0.9, edges[0].Weight)

		sc, err := cat.Scenario(ctx, "refund")
		require.NoError(t, err)
		assert.Equal(t, 3, sc.Version)
		assert.Equal(t, "collect", sc.EntryStepID)
		assert.Equal(t, 2, sc.Priority)
		require.Len(t, sc.Steps, 3)

		collect, ok := sc.Step("collect")
		require.True(t, ok)
		assert.Equal(t, []string{"order_id", "reason"}, collect.CollectFields)
		require.Len(t, collect.Transitions, 1)
		assert.Equal(t, "confirm", collect.Transitions[0].ToStepID)

		confirm, ok := sc.Step("confirm")
		require.True(t, ok)
		assert.True(t, confirm.Checkpoint)
		assert.Equal(t, "confirmed == 'yes'", confirm.Transitions[0].Condition)
	})

	t.Run("missing rules.yaml is legal", func(t *testing.T) {
		dir := writeCatalog(t, map[string]string{
			"scenarios/refund.yaml": refundYAML,
		})
		cat, err := Load(dir)
		require.NoError(t, err)

		rules, err := cat.Rules(ctx)
		require.NoError(t, err)
		assert.Empty(t, rules)
	})

	t.Run("empty directory is legal", func(t *testing.T) {
		cat, err := Load(t.TempDir())
		require.NoError(t, err)
		scenarios, err := cat.Scenarios(ctx)
		require.NoError(t, err)
		assert.Empty(t, scenarios)
	})

	t.Run("unknown scenario keys are tolerated", func(t *testing.T) {
		dir := writeCatalog(t, map[string]string{
			"scenarios/x.yaml": "id: x\nentry: s\nowner: support-team\nsteps:\n  - id: s\n",
		})
		cat, err := Load(dir)
		require.NoError(t, err)
		_, err = cat.Scenario(ctx, "x")
		assert.NoError(t, err)
	})

	t.Run("scenario without an id fails the load", func(t *testing.T) {
		dir := writeCatalog(t, map[string]string{
			"scenarios/bad.yaml": "entry: s\nsteps:\n  - id: s\n",
		})
		_, err := Load(dir)
		assert.Error(t, err)
	})

	t.Run("scenario without an entry step fails the load", func(t *testing.T) {
		dir := writeCatalog(t, map[string]string{
			"scenarios/bad.yaml": "id: bad\nsteps:\n  - id: s\n",
		})
		_, err := Load(dir)
		assert.Error(t, err)
	})

	t.Run("malformed yaml fails the load", func(t *testing.T) {
		dir := writeCatalog(t, map[string]string{
			"rules.yaml": "rules: [unclosed",
		})
		_, err := Load(dir)
		assert.Error(t, err)
	})

	t.Run("unknown scenario lookup", func(t *testing.T) {
		cat, err := Load(t.TempDir())
		require.NoError(t, err)
		_, err = cat.Scenario(ctx, "nope")
		assert.ErrorIs(t, err, domain.ErrScenarioNotFound)
	})
}
