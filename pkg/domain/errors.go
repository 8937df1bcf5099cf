package domain

import "errors"

// ErrSessionNotFound is returned when a session ID cannot be found in the store.
var ErrSessionNotFound = errors.New("session not found")

// ErrScenarioNotFound is returned when a scenario ID is absent from the catalog.
var ErrScenarioNotFound = errors.New("scenario not found")

// ErrStepNotFound is returned when a step ID is absent from its scenario's graph.
var ErrStepNotFound = errors.New("step not found")

// ErrRuleNotFound is returned when a rule ID is absent from the catalog.
var ErrRuleNotFound = errors.New("rule not found")
