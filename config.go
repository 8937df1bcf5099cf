package espalier

import "fmt"

// Config holds the orchestration knobs. Values come from the embedding
// application's configuration layer; invalid values are rejected here, at
// construction time, so the per-turn core never has to re-validate them.
type Config struct {
	// MaxLoopCount is how many times one step may be visited before the
	// instance is forced out of the active set. Minimum 1.
	MaxLoopCount int `json:"max_loop_count" yaml:"max_loop_count"`

	// MaxSimultaneousScenarios caps concurrently active instances per
	// session. Minimum 1.
	MaxSimultaneousScenarios int `json:"max_simultaneous_scenarios" yaml:"max_simultaneous_scenarios"`

	// EnableStepSkipping allows the resolver to jump past steps whose data
	// is already known.
	EnableStepSkipping bool `json:"enable_step_skipping" yaml:"enable_step_skipping"`

	// EnableMultiScenario allows more than one active scenario at a time.
	// When false the effective capacity is 1 regardless of the cap above.
	EnableMultiScenario bool `json:"enable_multi_scenario" yaml:"enable_multi_scenario"`

	// BlockOnMissingHardFields turns a checkpoint confirmation into an ask
	// while hard-constraint rules still have unmet required fields.
	BlockOnMissingHardFields bool `json:"block_on_missing_hard_fields" yaml:"block_on_missing_hard_fields"`

	// CancelOnLoopExceeded treats loop exhaustion as abandonment (CANCEL)
	// instead of PAUSE.
	CancelOnLoopExceeded bool `json:"cancel_on_loop_exceeded" yaml:"cancel_on_loop_exceeded"`

	// MaxExpansionDepth bounds relationship expansion in hops from each
	// originally matched rule. 0 disables inclusion expansion; exclusion
	// filtering always runs.
	MaxExpansionDepth int `json:"max_expansion_depth" yaml:"max_expansion_depth"`

	// SelectionThreshold is the minimum retrieval score for a candidate
	// scenario to start. Range 0..1.
	SelectionThreshold float64 `json:"selection_threshold" yaml:"selection_threshold"`
}

// DefaultConfig returns the configuration used when the embedder supplies none.
func DefaultConfig() Config {
	return Config{
		MaxLoopCount:             3,
		MaxSimultaneousScenarios: 3,
		EnableStepSkipping:       true,
		EnableMultiScenario:      true,
		BlockOnMissingHardFields: true,
		MaxExpansionDepth:        2,
		SelectionThreshold:       0.5,
	}
}

// Validate rejects out-of-range values. This is the only hard failure the
// engine raises; everything after construction degrades instead of erroring.
func (c Config) Validate() error {
	if c.MaxLoopCount < 1 {
		return fmt.Errorf("max_loop_count must be >= 1, got %d", c.MaxLoopCount)
	}
	if c.MaxSimultaneousScenarios < 1 {
		return fmt.Errorf("max_simultaneous_scenarios must be >= 1, got %d", c.MaxSimultaneousScenarios)
	}
	if c.MaxExpansionDepth < 0 {
		return fmt.Errorf("max_expansion_depth must be >= 0, got %d", c.MaxExpansionDepth)
	}
	if c.SelectionThreshold < 0 || c.SelectionThreshold > 1 {
		return fmt.Errorf("selection_threshold must be within [0,1], got %v", c.SelectionThreshold)
	}
	return nil
}
