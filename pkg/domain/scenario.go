package domain

// StepTransition defines a directed edge from one step to another.
type StepTransition struct {
	ToStepID string `json:"to_step_id" yaml:"to"`

	// Condition is a guard expression that must evaluate to true for this
	// transition to be taken. e.g. "channel == 'voice'" or "has(order_id)".
	// If empty, it's considered an "always" transition (default).
	Condition string `json:"condition,omitempty" yaml:"condition,omitempty"`
}

// ScenarioStep is one node in a scenario's step graph.
type ScenarioStep struct {
	ID string `json:"id" yaml:"id"`

	// Transitions defines the possible paths from this step.
	Transitions []StepTransition `json:"transitions,omitempty" yaml:"transitions,omitempty"`

	// CanSkip marks a step the resolver may pass over when the data it
	// collects is already known.
	CanSkip bool `json:"can_skip,omitempty" yaml:"can_skip,omitempty"`

	// Checkpoint marks a step that requires explicit confirmation. A
	// checkpoint is never silently skipped, regardless of data availability.
	Checkpoint bool `json:"is_checkpoint,omitempty" yaml:"checkpoint,omitempty"`

	// Terminal marks a sink step; reaching it completes the scenario.
	Terminal bool `json:"is_terminal,omitempty" yaml:"terminal,omitempty"`

	// CollectFields names the fields this step asks the user for.
	CollectFields []string `json:"collect_fields,omitempty" yaml:"collect_fields,omitempty"`

	// ToolIDs are tools bound to this step, surfaced as action hints.
	ToolIDs []string `json:"tool_ids,omitempty" yaml:"tools,omitempty"`

	// TemplateRef references a response template for inform-style steps.
	TemplateRef string `json:"template_ref,omitempty" yaml:"template,omitempty"`

	// ConfirmText is the action description surfaced on checkpoint steps.
	ConfirmText string `json:"confirm_text,omitempty" yaml:"confirm_text,omitempty"`

	// Metadata allows for extensible key-value pairs.
	Metadata map[string]string `json:"metadata,omitempty" yaml:"metadata,omitempty"`
}

// Scenario is a versioned, immutable-within-a-turn definition of a multi-turn
// dialogue procedure modeled as a directed graph of steps.
type Scenario struct {
	ID      string `json:"id" yaml:"id"`
	Version int    `json:"version" yaml:"version"`
	Name    string `json:"name,omitempty" yaml:"name,omitempty"`

	// EntryStepID is where a freshly started instance begins.
	EntryStepID string `json:"entry_step_id" yaml:"entry"`

	// Priority orders this scenario's contributions against others.
	Priority int `json:"priority,omitempty" yaml:"priority,omitempty"`

	Steps []ScenarioStep `json:"steps" yaml:"steps"`
}

// Step returns the step with the given ID, or false if absent.
func (s *Scenario) Step(id string) (ScenarioStep, bool) {
	for _, st := range s.Steps {
		if st.ID == id {
			return st, true
		}
	}
	return ScenarioStep{}, false
}

// ScenarioCandidate is a retrieval hit for a scenario that is not yet active.
type ScenarioCandidate struct {
	ScenarioID string  `json:"scenario_id"`
	Score      float64 `json:"score"`
}
