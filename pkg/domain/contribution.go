package domain

// ContributionKind classifies what an active scenario wants from this turn.
type ContributionKind string

const (
	// ContributionAsk collects missing fields from the user.
	ContributionAsk ContributionKind = "ASK"
	// ContributionInform renders a template with no input required.
	ContributionInform ContributionKind = "INFORM"
	// ContributionConfirm requests explicit confirmation of an action.
	ContributionConfirm ContributionKind = "CONFIRM"
	// ContributionActionHint suggests tools the planner may bind.
	ContributionActionHint ContributionKind = "ACTION_HINT"
	// ContributionNone means the scenario has nothing to say this turn.
	ContributionNone ContributionKind = "NONE"
)

// Contribution is the piece of guidance one active scenario offers toward
// the turn's eventual response.
type Contribution struct {
	ScenarioID string           `json:"scenario_id"`
	StepID     string           `json:"step_id"`
	Kind       ContributionKind `json:"kind"`

	FieldsToAsk     []string `json:"fields_to_ask,omitempty"`
	TemplateRef     string   `json:"template_ref,omitempty"`
	ActionToConfirm string   `json:"action_to_confirm,omitempty"`
	SuggestedTools  []string `json:"suggested_tools,omitempty"`

	Priority int `json:"priority"`
}

// ContributionPlan is the merged, ranked answer to "what does each active
// scenario want to say this turn".
type ContributionPlan struct {
	Contributions []Contribution `json:"contributions"`

	// PrimaryScenarioID is the scenario of the highest-ranked contribution.
	PrimaryScenarioID string `json:"primary_scenario_id,omitempty"`

	HasAsks        bool `json:"has_asks"`
	HasConfirms    bool `json:"has_confirms"`
	HasActionHints bool `json:"has_action_hints"`
}
