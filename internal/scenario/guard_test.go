package scenario

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultGuardEvaluator(t *testing.T) {
	fields := map[string]any{
		"channel": "voice",
		"tier":    "gold",
		"empty":   nil,
	}

	cases := []struct {
		name      string
		condition string
		want      bool
	}{
		{"empty condition is always true", "", true},
		{"whitespace condition is always true", "   ", true},
		{"has present field", "has(channel)", true},
		{"has absent field", "has(order_id)", false},
		{"has nil field", "has(empty)", false},
		{"negated has absent field", "!has(order_id)", true},
		{"negated has present field", "!has(channel)", false},
		{"equality match", "channel == 'voice'", true},
		{"equality mismatch", "channel == 'chat'", false},
		{"equality on absent field", "order_id == '42'", false},
		{"inequality match", "tier != 'silver'", true},
		{"inequality mismatch", "tier != 'gold'", false},
		{"double quotes accepted", `channel == "voice"`, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := DefaultGuardEvaluator(tc.condition, fields)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}

	t.Run("unsupported expression errors", func(t *testing.T) {
		_, err := DefaultGuardEvaluator("age >= 18", fields)
		assert.Error(t, err)
	})
}
