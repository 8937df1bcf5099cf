package ports

import (
	"context"

	"github.com/espalier-dev/espalier/pkg/domain"
)

// RuleCatalog defines how the engine retrieves rule definitions and their
// relationship edges. Both calls happen once per turn, before the pure core
// runs, so implementations may hit storage freely.
type RuleCatalog interface {
	// Rules returns the full rule catalog for the current tenant/agent,
	// keyed by rule ID.
	Rules(ctx context.Context) (map[string]domain.Rule, error)

	// Relationships returns the flat typed-edge list between rules.
	Relationships(ctx context.Context) ([]domain.RuleRelationship, error)
}

// ScenarioCatalog defines how the engine retrieves scenario step graphs.
type ScenarioCatalog interface {
	// Scenarios returns all scenario definitions keyed by scenario ID.
	Scenarios(ctx context.Context) (map[string]*domain.Scenario, error)

	// Scenario retrieves a single definition by ID.
	// Returns domain.ErrScenarioNotFound if the scenario does not exist.
	Scenario(ctx context.Context, id string) (*domain.Scenario, error)
}
