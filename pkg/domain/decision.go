package domain

// LifecycleAction governs a scenario instance's life this turn.
type LifecycleAction string

const (
	ActionStart    LifecycleAction = "START"
	ActionContinue LifecycleAction = "CONTINUE"
	ActionPause    LifecycleAction = "PAUSE"
	ActionComplete LifecycleAction = "COMPLETE"
	ActionCancel   LifecycleAction = "CANCEL"
)

// SignalKind is a per-scenario termination hint detected upstream by
// situational analysis. The engine applies it verbatim.
type SignalKind string

const (
	SignalExit   SignalKind = "EXIT"
	SignalPause  SignalKind = "PAUSE"
	SignalCancel SignalKind = "CANCEL"
)

// LifecycleDecision is the engine's verdict for one scenario this turn.
type LifecycleDecision struct {
	ScenarioID string          `json:"scenario_id"`
	Action     LifecycleAction `json:"action"`
	Reasoning  string          `json:"reasoning,omitempty"`
	Confidence float64         `json:"confidence"`

	// EntryStepID is set for START decisions.
	EntryStepID string `json:"entry_step_id,omitempty"`
	// SourceStepID is the instance's current step for all other actions.
	SourceStepID string `json:"source_step_id,omitempty"`
}

// TransitionDecision describes the step movement for a scenario whose
// lifecycle action is CONTINUE.
type TransitionDecision struct {
	ScenarioID   string `json:"scenario_id"`
	SourceStepID string `json:"source_step_id"`
	TargetStepID string `json:"target_step_id"`

	// WasSkipped is true when the resolver jumped past intermediate steps
	// because their data was already known.
	WasSkipped     bool     `json:"was_skipped"`
	SkippedStepIDs []string `json:"skipped_step_ids,omitempty"`

	Reasoning  string  `json:"reasoning,omitempty"`
	Confidence float64 `json:"confidence"`
}
