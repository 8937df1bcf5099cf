package ruleset

import (
	"log/slog"

	"github.com/espalier-dev/espalier/pkg/domain"
)

// edge is one outgoing relationship in the adjacency map.
type edge struct {
	targetID string
	kind     domain.RelationKind
	weight   float64
}

// Graph is an adjacency representation of the typed rule-relationship edges,
// built once per turn from the flat edge list.
type Graph struct {
	forward map[string][]edge
}

// BuildGraph indexes the edge list by source rule. Self-referential edges are
// dropped with a warning rather than poisoning traversal.
func BuildGraph(edges []domain.RuleRelationship, logger *slog.Logger) *Graph {
	g := &Graph{forward: make(map[string][]edge, len(edges))}
	for _, rel := range edges {
		if rel.SourceID == rel.TargetID {
			logger.Warn("dropping self-referential rule relationship",
				"rule_id", rel.SourceID,
				"kind", rel.Kind,
			)
			continue
		}
		g.forward[rel.SourceID] = append(g.forward[rel.SourceID], edge{
			targetID: rel.TargetID,
			kind:     rel.Kind,
			weight:   rel.Weight,
		})
	}
	return g
}

// out returns the outgoing edges of a rule, nil if it has none.
func (g *Graph) out(ruleID string) []edge {
	return g.forward[ruleID]
}

// excludedBy collects the targets of EXCLUDES edges leaving the given rule.
func (g *Graph) excludedBy(ruleID string) []string {
	var targets []string
	for _, e := range g.forward[ruleID] {
		if e.kind == domain.RelationExcludes {
			targets = append(targets, e.targetID)
		}
	}
	return targets
}
