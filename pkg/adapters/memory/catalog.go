package memory

import (
	"context"

	"github.com/espalier-dev/espalier/pkg/domain"
)

// Catalog implements ports.RuleCatalog and ports.ScenarioCatalog from
// in-memory definitions. Intended for tests and embedders that already hold
// their configuration in process.
type Catalog struct {
	rules     map[string]domain.Rule
	edges     []domain.RuleRelationship
	scenarios map[string]*domain.Scenario
}

// NewCatalog creates an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{
		rules:     make(map[string]domain.Rule),
		scenarios: make(map[string]*domain.Scenario),
	}
}

// AddRule registers a rule definition.
func (c *Catalog) AddRule(r domain.Rule) *Catalog {
	c.rules[r.ID] = r
	return c
}

// AddRelationship registers a typed edge between rules.
func (c *Catalog) AddRelationship(rel domain.RuleRelationship) *Catalog {
	c.edges = append(c.edges, rel)
	return c
}

// AddScenario registers a scenario definition.
func (c *Catalog) AddScenario(sc *domain.Scenario) *Catalog {
	c.scenarios[sc.ID] = sc
	return c
}

// Rules returns a copy of the rule catalog.
func (c *Catalog) Rules(ctx context.Context) (map[string]domain.Rule, error) {
	out := make(map[string]domain.Rule, len(c.rules))
	for k, v := range c.rules {
		out[k] = v
	}
	return out, nil
}

// Relationships returns the edge list.
func (c *Catalog) Relationships(ctx context.Context) ([]domain.RuleRelationship, error) {
	out := make([]domain.RuleRelationship, len(c.edges))
	copy(out, c.edges)
	return out, nil
}

// Scenarios returns all scenario definitions.
func (c *Catalog) Scenarios(ctx context.Context) (map[string]*domain.Scenario, error) {
	out := make(map[string]*domain.Scenario, len(c.scenarios))
	for k, v := range c.scenarios {
		out[k] = v
	}
	return out, nil
}

// Scenario retrieves a single definition by ID.
func (c *Catalog) Scenario(ctx context.Context, id string) (*domain.Scenario, error) {
	sc, ok := c.scenarios[id]
	if !ok {
		return nil, domain.ErrScenarioNotFound
	}
	return sc, nil
}
