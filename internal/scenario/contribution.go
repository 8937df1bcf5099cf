package scenario

import (
	"log/slog"
	"sort"

	"github.com/espalier-dev/espalier/pkg/domain"
)

// Synthesizer combines lifecycle and transition decisions into a single
// ranked contribution plan: what each scenario that remains on stage wants
// from this turn's response.
type Synthesizer struct {
	scenarios map[string]*domain.Scenario
	limits    Limits
	logger    *slog.Logger
}

// NewSynthesizer creates a synthesizer over the turn's scenario catalog.
func NewSynthesizer(scenarios map[string]*domain.Scenario, limits Limits, logger *slog.Logger) *Synthesizer {
	return &Synthesizer{scenarios: scenarios, limits: limits, logger: logger}
}

// Synthesize builds the plan from every START or CONTINUE decision. The
// expanded rule set is read-only input: scenario-scoped rules raise a
// contribution's priority, and hard-constraint rules with unmet required
// fields turn a checkpoint confirmation into an ask when configured to block.
func (s *Synthesizer) Synthesize(
	lifecycle []domain.LifecycleDecision,
	transitions []domain.TransitionDecision,
	expanded []domain.MatchedRule,
	session *domain.Session,
	fields map[string]any,
) domain.ContributionPlan {
	targets := make(map[string]string, len(transitions))
	for _, t := range transitions {
		targets[t.ScenarioID] = t.TargetStepID
	}

	var entries []planEntry
	for _, d := range lifecycle {
		if d.Action != domain.ActionStart && d.Action != domain.ActionContinue {
			continue
		}
		sc, ok := s.scenarios[d.ScenarioID]
		if !ok {
			continue
		}

		stepID := d.EntryStepID
		if d.Action == domain.ActionContinue {
			stepID = targets[d.ScenarioID]
			if stepID == "" {
				stepID = d.SourceStepID
			}
		}
		step, ok := sc.Step(stepID)
		if !ok {
			s.logger.Warn("contribution step missing from scenario graph",
				"scenario_id", d.ScenarioID,
				"step_id", stepID,
			)
			continue
		}

		c := s.classify(sc, step, expanded, fields)
		if c.Kind == domain.ContributionNone {
			// The scenario stays present this turn, it just has nothing to say.
			continue
		}
		entries = append(entries, planEntry{
			contribution: c,
			startedNew:   d.Action == domain.ActionStart,
			startOrder:   startOrder(session, d.ScenarioID),
		})
	}

	sort.Slice(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.contribution.Priority != b.contribution.Priority {
			return a.contribution.Priority > b.contribution.Priority
		}
		// Earlier-started scenarios win ties; scenarios started this very
		// turn sort after every pre-existing instance.
		if a.startedNew != b.startedNew {
			return !a.startedNew
		}
		if a.startOrder != b.startOrder {
			return a.startOrder < b.startOrder
		}
		return a.contribution.ScenarioID < b.contribution.ScenarioID
	})

	plan := domain.ContributionPlan{}
	for _, e := range entries {
		plan.Contributions = append(plan.Contributions, e.contribution)
		switch e.contribution.Kind {
		case domain.ContributionAsk:
			plan.HasAsks = true
		case domain.ContributionConfirm:
			plan.HasConfirms = true
		case domain.ContributionActionHint:
			plan.HasActionHints = true
		}
	}
	if len(plan.Contributions) > 0 {
		plan.PrimaryScenarioID = plan.Contributions[0].ScenarioID
	}
	return plan
}

type planEntry struct {
	contribution domain.Contribution
	startedNew   bool
	startOrder   int64
}

// classify applies the fixed precedence chain: ask for missing fields, then
// confirm checkpoints, then hint bound tools, then inform from a template.
func (s *Synthesizer) classify(sc *domain.Scenario, step domain.ScenarioStep, expanded []domain.MatchedRule, fields map[string]any) domain.Contribution {
	c := domain.Contribution{
		ScenarioID: sc.ID,
		StepID:     step.ID,
		Priority:   sc.Priority + rulePriorityBoost(expanded, sc.ID),
	}

	var missing []string
	for _, f := range step.CollectFields {
		if !present(fields, f) {
			missing = append(missing, f)
		}
	}
	if len(missing) > 0 {
		c.Kind = domain.ContributionAsk
		c.FieldsToAsk = missing
		return c
	}

	if step.Checkpoint {
		if s.limits.BlockOnMissingHardFields {
			if hard := missingHardFields(expanded, sc.ID, fields); len(hard) > 0 {
				c.Kind = domain.ContributionAsk
				c.FieldsToAsk = hard
				return c
			}
		}
		c.Kind = domain.ContributionConfirm
		c.ActionToConfirm = step.ConfirmText
		return c
	}

	if len(step.ToolIDs) > 0 {
		c.Kind = domain.ContributionActionHint
		c.SuggestedTools = step.ToolIDs
		return c
	}

	if step.TemplateRef != "" {
		c.Kind = domain.ContributionInform
		c.TemplateRef = step.TemplateRef
		return c
	}

	c.Kind = domain.ContributionNone
	return c
}

// rulePriorityBoost returns the highest priority among expanded rules scoped
// to the scenario, so rule pressure surfaces in plan ordering.
func rulePriorityBoost(expanded []domain.MatchedRule, scenarioID string) int {
	boost := 0
	for _, m := range expanded {
		if m.Rule.ScenarioID == scenarioID && m.Rule.Priority > boost {
			boost = m.Rule.Priority
		}
	}
	return boost
}

// missingHardFields collects required fields of hard-constraint rules scoped
// to the scenario that the turn's available fields do not yet satisfy.
func missingHardFields(expanded []domain.MatchedRule, scenarioID string, fields map[string]any) []string {
	var missing []string
	seen := map[string]bool{}
	for _, m := range expanded {
		if !m.Rule.HardConstraint || m.Rule.ScenarioID != scenarioID {
			continue
		}
		for _, f := range m.Rule.RequiredFields {
			if !present(fields, f) && !seen[f] {
				seen[f] = true
				missing = append(missing, f)
			}
		}
	}
	return missing
}

// startOrder ranks pre-existing instances by start time for tie-breaking.
func startOrder(session *domain.Session, scenarioID string) int64 {
	if inst, ok := session.Instances[scenarioID]; ok {
		return inst.StartedAt.UnixNano()
	}
	return 0
}
