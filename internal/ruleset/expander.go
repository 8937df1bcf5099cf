package ruleset

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/espalier-dev/espalier/pkg/domain"
)

// Expander grows a confidently matched rule set by following DEPENDS_ON and
// IMPLIES edges, then removes anything targeted by an EXCLUDES edge. Pure per
// turn: the same inputs always yield the same output.
type Expander struct {
	catalog  map[string]domain.Rule
	maxDepth int
	logger   *slog.Logger
}

// NewExpander creates an expander over the turn's rule catalog.
// maxDepth bounds expansion in hops from each original seed; 0 disables
// inclusion expansion but exclusion filtering still runs.
func NewExpander(catalog map[string]domain.Rule, maxDepth int, logger *slog.Logger) *Expander {
	return &Expander{catalog: catalog, maxDepth: maxDepth, logger: logger}
}

// Expand returns the expansion of matched over the relationship edges.
// Original matches keep Derived=false; every rule added by traversal carries
// its derivation chain. Exclusion removal runs strictly after inclusion
// expansion and may remove original seeds.
func (x *Expander) Expand(matched []domain.MatchedRule, edges []domain.RuleRelationship) []domain.MatchedRule {
	graph := BuildGraph(edges, x.logger)

	combined := make(map[string]domain.MatchedRule, len(matched))
	for _, m := range matched {
		m.Derived = false
		// Upstream matchers only carry rule IDs and scores; the catalog owns
		// the full definition.
		if rule, ok := x.catalog[m.Rule.ID]; ok {
			m.Rule = rule
		}
		combined[m.Rule.ID] = m
	}

	// Inclusion pass: depth is measured in hops from the original seed, so
	// each seed gets its own traversal and visited set.
	for _, m := range matched {
		visited := map[string]bool{m.Rule.ID: true}
		x.follow(graph, m.Rule.ID, 0, visited, combined)
	}

	// Exclusion pass: strictly after inclusion, never reversed this turn.
	// Sources that were themselves excluded still have their edges honored;
	// collecting targets before deleting keeps the result order-independent.
	var excluded []string
	for id := range combined {
		excluded = append(excluded, graph.excludedBy(id)...)
	}
	for _, id := range excluded {
		if _, ok := combined[id]; ok {
			x.logger.Debug("rule removed by exclusion edge", "rule_id", id)
			delete(combined, id)
		}
	}

	out := make([]domain.MatchedRule, 0, len(combined))
	for _, m := range combined {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Rule.ID < out[j].Rule.ID })
	return out
}

// follow recursively walks inclusion edges from ruleID. depth counts hops
// already taken from the seed; visited guards against cycles independently of
// the depth bound.
func (x *Expander) follow(graph *Graph, ruleID string, depth int, visited map[string]bool, combined map[string]domain.MatchedRule) {
	if depth >= x.maxDepth {
		return
	}
	for _, e := range graph.out(ruleID) {
		if !e.kind.Expands() {
			continue
		}
		if visited[e.targetID] {
			continue
		}
		visited[e.targetID] = true

		if _, ok := combined[e.targetID]; ok {
			// Already matched or derived via another path; still traverse
			// through it so deeper rules stay reachable from this seed.
			x.follow(graph, e.targetID, depth+1, visited, combined)
			continue
		}

		rule, ok := x.catalog[e.targetID]
		if !ok {
			x.logger.Warn("relationship edge targets unknown rule",
				"source_id", ruleID,
				"target_id", e.targetID,
			)
			continue
		}
		if !rule.Enabled {
			continue
		}

		combined[e.targetID] = domain.MatchedRule{
			Rule:        rule,
			Score:       e.weight,
			Derived:     true,
			DerivedFrom: ruleID,
			DerivedVia:  e.kind,
			Reason:      fmt.Sprintf("derived from %s via %s", ruleID, e.kind),
		}
		x.follow(graph, e.targetID, depth+1, visited, combined)
	}
}
