package yamlcat

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/espalier-dev/espalier/pkg/domain"
	"gopkg.in/yaml.v3"
)

// Catalog loads rule and scenario definitions from a directory of YAML
// files and serves them as ports.RuleCatalog / ports.ScenarioCatalog.
// Layout:
//
//	rules.yaml        rules: [...] plus optional relationships: [...]
//	scenarios/*.yaml  one scenario step graph per file
//
// Definitions are read once at Load time; the engine's per-turn batched
// read then hits memory only.
type Catalog struct {
	rules     map[string]domain.Rule
	edges     []domain.RuleRelationship
	scenarios map[string]*domain.Scenario
}

// ruleFile is the shape of rules.yaml.
type ruleFile struct {
	Rules         []domain.Rule             `yaml:"rules"`
	Relationships []domain.RuleRelationship `yaml:"relationships"`
}

// Load parses the catalog directory. Missing rules.yaml or an empty
// scenarios directory is legal; a malformed file is not.
func Load(dir string) (*Catalog, error) {
	c := &Catalog{
		rules:     make(map[string]domain.Rule),
		scenarios: make(map[string]*domain.Scenario),
	}

	rulesPath := filepath.Join(dir, "rules.yaml")
	if data, err := os.ReadFile(rulesPath); err == nil {
		var rf ruleFile
		if err := yaml.Unmarshal(data, &rf); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", rulesPath, err)
		}
		for _, r := range rf.Rules {
			c.rules[r.ID] = r
		}
		c.edges = rf.Relationships
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read %s: %w", rulesPath, err)
	}

	paths, err := filepath.Glob(filepath.Join(dir, "scenarios", "*.yaml"))
	if err != nil {
		return nil, fmt.Errorf("failed to scan scenarios: %w", err)
	}
	sort.Strings(paths)
	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", p, err)
		}
		sc, err := parseScenario(data)
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", p, err)
		}
		c.scenarios[sc.ID] = sc
	}

	return c, nil
}

// Rules returns a copy of the rule catalog.
func (c *Catalog) Rules(ctx context.Context) (map[string]domain.Rule, error) {
	out := make(map[string]domain.Rule, len(c.rules))
	for k, v := range c.rules {
		out[k] = v
	}
	return out, nil
}

// Relationships returns the typed edge list.
func (c *Catalog) Relationships(ctx context.Context) ([]domain.RuleRelationship, error) {
	out := make([]domain.RuleRelationship, len(c.edges))
	copy(out, c.edges)
	return out, nil
}

// Scenarios returns all loaded scenario definitions.
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
