package domain

// RuleScope defines where a rule applies.
type RuleScope string

const (
	// ScopeGlobal rules apply to every turn regardless of scenario state.
	ScopeGlobal RuleScope = "GLOBAL"
	// ScopeScenario rules apply while a specific scenario is active.
	ScopeScenario RuleScope = "SCENARIO"
	// ScopeStep rules apply only on a specific step of a scenario.
	ScopeStep RuleScope = "STEP"
)

// RelationKind is the type of a directed edge between two rules.
type RelationKind string

const (
	// RelationDependsOn means the target rule is a prerequisite of the source.
	RelationDependsOn RelationKind = "DEPENDS_ON"
	// RelationImplies means matching the source makes the target applicable.
	RelationImplies RelationKind = "IMPLIES"
	// RelationExcludes means matching the source invalidates the target.
	// Exclusion always wins over inclusion, regardless of evaluation order.
	RelationExcludes RelationKind = "EXCLUDES"
	// RelationSpecializes marks the source as a narrower variant of the target.
	RelationSpecializes RelationKind = "SPECIALIZES"
	// RelationRelated is an informational association with no expansion effect.
	RelationRelated RelationKind = "RELATED"
)

// Expands reports whether following this edge kind adds the target to the
// applicable set during relationship expansion.
func (k RelationKind) Expands() bool {
	return k == RelationDependsOn || k == RelationImplies
}

// Rule is one entry in the rule catalog. Definitions are owned by the
// configuration collaborator and immutable within a turn.
type Rule struct {
	ID             string    `json:"id" yaml:"id"`
	Scope          RuleScope `json:"scope" yaml:"scope"`
	HardConstraint bool      `json:"hard_constraint,omitempty" yaml:"hard_constraint,omitempty"`
	Priority       int       `json:"priority,omitempty" yaml:"priority,omitempty"`
	Enabled        bool      `json:"enabled" yaml:"enabled"`

	// ScenarioID binds SCENARIO and STEP scoped rules to their scenario.
	// Empty for GLOBAL rules.
	ScenarioID string `json:"scenario_id,omitempty" yaml:"scenario_id,omitempty"`

	// RequiredFields names the fields a hard-constraint rule needs before the
	// guarded action may proceed.
	RequiredFields []string `json:"required_fields,omitempty" yaml:"required_fields,omitempty"`
}

// RuleRelationship is a directed, typed edge between two rules. Multiple
// edges between the same pair with different kinds are legal.
type RuleRelationship struct {
	SourceID string       `json:"source_id" yaml:"source"`
	TargetID string       `json:"target_id" yaml:"target"`
	Kind     RelationKind `json:"kind" yaml:"kind"`
	Weight   float64      `json:"weight,omitempty" yaml:"weight,omitempty"`
}

// MatchedRule is a rule plus turn-scoped match annotations. Instances are
// created fresh each turn and never persisted.
type MatchedRule struct {
	Rule Rule `json:"rule"`

	// Score is the upstream relevance score for directly matched rules, or
	// the edge weight that produced a derived rule.
	Score float64 `json:"score,omitempty"`

	// Derived is false for rules matched upstream and true for rules added
	// by relationship expansion.
	Derived bool `json:"derived"`

	// DerivedFrom and DerivedVia record the audit chain for derived rules:
	// the rule that produced this one and the edge kind that was followed.
	DerivedFrom string       `json:"derived_from,omitempty"`
	DerivedVia  RelationKind `json:"derived_via,omitempty"`

	// Reason is a human-readable derivation note for audit logs.
	Reason string `json:"reason,omitempty"`
}
