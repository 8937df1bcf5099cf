package domain

import "time"

// InstanceStatus defines the lifecycle state of a scenario instance.
type InstanceStatus string

const (
	StatusActive    InstanceStatus = "active"
	StatusPaused    InstanceStatus = "paused"
	StatusCompleted InstanceStatus = "completed"
	StatusCancelled InstanceStatus = "cancelled"
)

// ScenarioInstance is the per-session runtime state of one scenario. The
// engine receives a snapshot and returns decisions; all mutation happens by
// the caller applying those decisions back, never in place.
type ScenarioInstance struct {
	ScenarioID      string         `json:"scenario_id"`
	ScenarioVersion int            `json:"scenario_version"`
	CurrentStepID   string         `json:"current_step_id"`
	Status          InstanceStatus `json:"status"`

	// StepVisits counts how many times each step has been entered.
	StepVisits map[string]int `json:"step_visits"`

	// Variables holds scenario-scoped collected values.
	Variables map[string]any `json:"variables,omitempty"`

	StartedAt    time.Time  `json:"started_at"`
	LastActiveAt time.Time  `json:"last_active_at"`
	PausedAt     *time.Time `json:"paused_at,omitempty"`
}

// NewInstance creates an active instance positioned at the scenario's entry
// step, with the entry counted as visited once.
func NewInstance(sc *Scenario, now time.Time) *ScenarioInstance {
	return &ScenarioInstance{
		ScenarioID:      sc.ID,
		ScenarioVersion: sc.Version,
		CurrentStepID:   sc.EntryStepID,
		Status:          StatusActive,
		StepVisits:      map[string]int{sc.EntryStepID: 1},
		Variables:       make(map[string]any),
		StartedAt:       now,
		LastActiveAt:    now,
	}
}

// Clone returns a deep copy safe for independent mutation.
func (i *ScenarioInstance) Clone() *ScenarioInstance {
	if i == nil {
		return nil
	}
	next := *i
	next.StepVisits = make(map[string]int, len(i.StepVisits))
	for k, v := range i.StepVisits {
		next.StepVisits[k] = v
	}
	next.Variables = make(map[string]any, len(i.Variables))
	for k, v := range i.Variables {
		next.Variables[k] = v
	}
	if i.PausedAt != nil {
		t := *i.PausedAt
		next.PausedAt = &t
	}
	return &next
}

// Visits returns how many times the given step has been entered.
func (i *ScenarioInstance) Visits(stepID string) int {
	if i.StepVisits == nil {
		return 0
	}
	return i.StepVisits[stepID]
}
