/*
Package domain contains the core domain models for the Espalier decision engine.

It defines the fundamental entities of the per-turn decision graph: Rules and
their typed relationships, Scenarios and their step graphs, per-session
ScenarioInstances, and the decision outputs (lifecycle, transition,
contribution). This package is kept pure and free of external dependencies
like I/O or persistence, following Hexagonal Architecture principles.

# Key Entities

  - Rule / RuleRelationship: the rule catalog and its typed dependency edges.
  - MatchedRule: a rule plus turn-scoped match annotations (scores, derivation).
  - Scenario / ScenarioStep: an immutable directed graph of dialogue steps.
  - ScenarioInstance: the runtime snapshot of one scenario within a session.
  - LifecycleDecision / TransitionDecision / ContributionPlan: the engine's
    per-turn outputs, applied back to the session by the caller.
*/
package domain
