package scenario

import (
	"fmt"
	"strings"
)

// GuardEvaluator decides whether a transition's guard condition holds against
// the turn's available fields. Embedders may plug in a richer expression
// language; the default covers the catalog conventions.
type GuardEvaluator func(condition string, fields map[string]any) (bool, error)

// DefaultGuardEvaluator evaluates the small guard grammar used in catalogs:
//
//	""                    always true
//	has(field)            field is present and non-nil
//	!has(field)           field is absent
//	field == 'value'      string equality against the field's value
//	field != 'value'      string inequality
func DefaultGuardEvaluator(condition string, fields map[string]any) (bool, error) {
	cond := strings.TrimSpace(condition)
	if cond == "" {
		return true, nil
	}

	if strings.HasPrefix(cond, "!has(") && strings.HasSuffix(cond, ")") {
		name := strings.TrimSpace(cond[len("!has(") : len(cond)-1])
		return !present(fields, name), nil
	}
	if strings.HasPrefix(cond, "has(") && strings.HasSuffix(cond, ")") {
		name := strings.TrimSpace(cond[len("has(") : len(cond)-1])
		return present(fields, name), nil
	}

	if parts := strings.SplitN(cond, "!=", 2); len(parts) == 2 {
		name, want := operands(parts)
		if !present(fields, name) {
			return false, nil
		}
		return fmt.Sprintf("%v", fields[name]) != want, nil
	}
	if parts := strings.SplitN(cond, "==", 2); len(parts) == 2 {
		name, want := operands(parts)
		if !present(fields, name) {
			return false, nil
		}
		return fmt.Sprintf("%v", fields[name]) == want, nil
	}

	return false, fmt.Errorf("unsupported guard condition: %q", condition)
}

func operands(parts []string) (name, value string) {
	name = strings.TrimSpace(parts[0])
	value = strings.Trim(strings.TrimSpace(parts[1]), "'\"")
	return name, value
}

func present(fields map[string]any, name string) bool {
	v, ok := fields[name]
	return ok && v != nil
}
