package validator

import (
	"fmt"
	"sort"

	"github.com/espalier-dev/espalier/pkg/domain"
)

// Finding is one catalog defect. None of these stop the engine at runtime
// (it degrades per turn instead); operators fix them via the CLI lint.
type Finding struct {
	Kind    string
	Subject string
	Detail  string
}

func (f Finding) String() string {
	return fmt.Sprintf("%s: %s (%s)", f.Kind, f.Subject, f.Detail)
}

// ValidateScenario checks one step graph for structural defects: a missing
// or dangling entry step, transitions to unknown steps, unreachable steps,
// and self-transitions on steps without a skip escape.
func ValidateScenario(sc *domain.Scenario) []Finding {
	var findings []Finding

	steps := make(map[string]domain.ScenarioStep, len(sc.Steps))
	for _, st := range sc.Steps {
		steps[st.ID] = st
	}

	if sc.EntryStepID == "" {
		findings = append(findings, Finding{
			Kind:    "missing_entry",
			Subject: sc.ID,
			Detail:  "scenario declares no entry step",
		})
	} else if _, ok := steps[sc.EntryStepID]; !ok {
		findings = append(findings, Finding{
			Kind:    "dangling_entry",
			Subject: sc.ID,
			Detail:  fmt.Sprintf("entry step %q not in graph", sc.EntryStepID),
		})
	}

	for _, st := range sc.Steps {
		for _, t := range st.Transitions {
			if _, ok := steps[t.ToStepID]; !ok {
				findings = append(findings, Finding{
					Kind:    "dangling_transition",
					Subject: sc.ID + "/" + st.ID,
					Detail:  fmt.Sprintf("transition targets unknown step %q", t.ToStepID),
				})
			}
			if t.ToStepID == st.ID && t.Condition == "" {
				findings = append(findings, Finding{
					Kind:    "unconditional_self_loop",
					Subject: sc.ID + "/" + st.ID,
					Detail:  "step loops to itself without a guard",
				})
			}
		}
	}

	// Reachability crawl from the entry step.
	if _, ok := steps[sc.EntryStepID]; ok {
		visited := map[string]bool{}
		queue := []string{sc.EntryStepID}
		for len(queue) > 0 {
			id := queue[0]
			queue = queue[1:]
			if visited[id] {
				continue
			}
			visited[id] = true
			for _, t := range steps[id].Transitions {
				if _, exists := steps[t.ToStepID]; exists && !visited[t.ToStepID] {
					queue = append(queue, t.ToStepID)
				}
			}
		}
		var unreachable []string
		for id := range steps {
			if !visited[id] {
				unreachable = append(unreachable, id)
			}
		}
		sort.Strings(unreachable)
		for _, id := range unreachable {
			findings = append(findings, Finding{
				Kind:    "unreachable_step",
				Subject: sc.ID + "/" + id,
				Detail:  "no path from entry step",
			})
		}
	}

	return findings
}

// ValidateRules checks the rule catalog and its relationship edges for
// self-references and edges touching unknown rules.
func ValidateRules(rules map[string]domain.Rule, edges []domain.RuleRelationship) []Finding {
	var findings []Finding
	for _, e := range edges {
		if e.SourceID == e.TargetID {
			findings = append(findings, Finding{
				Kind:    "self_relationship",
				Subject: e.SourceID,
				Detail:  fmt.Sprintf("%s edge points at its own source", e.Kind),
			})
			continue
		}
		if _, ok := rules[e.SourceID]; !ok {
			findings = append(findings, Finding{
				Kind:    "unknown_rule",
				Subject: e.SourceID,
				Detail:  fmt.Sprintf("%s edge source not in catalog", e.Kind),
			})
		}
		if _, ok := rules[e.TargetID]; !ok {
			findings = append(findings, Finding{
				Kind:    "unknown_rule",
				Subject: e.TargetID,
				Detail:  fmt.Sprintf("%s edge target not in catalog", e.Kind),
			})
		}
	}
	return findings
}
