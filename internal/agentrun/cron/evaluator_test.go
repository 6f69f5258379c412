package cron

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNextRun(t *testing.T) {
	// 12:00 UTC on a Saturday; 08:00 in New York (EDT).
	after := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name       string
		expression string
		timezone   string
		expected   time.Time
	}{
		{
			name:       "daily 9am in New York",
			expression: "0 9 * * *",
			timezone:   "America/New_York",
			expected:   time.Date(2024, 6, 15, 13, 0, 0, 0, time.UTC),
		},
		{
			name:       "empty timezone defaults to UTC",
			expression: "0 9 * * *",
			timezone:   "",
			expected:   time.Date(2024, 6, 16, 9, 0, 0, 0, time.UTC),
		},
		{
			name:       "explicit UTC matches the default",
			expression: "0 9 * * *",
			timezone:   "UTC",
			expected:   time.Date(2024, 6, 16, 9, 0, 0, 0, time.UTC),
		},
		{
			name:       "every minute",
			expression: "* * * * *",
			timezone:   "",
			expected:   time.Date(2024, 6, 15, 12, 1, 0, 0, time.UTC),
		},
		{
			name:       "descriptor",
			expression: "@daily",
			timezone:   "",
			expected:   time.Date(2024, 6, 16, 0, 0, 0, 0, time.UTC),
		},
		{
			name:       "weekly monday in Tokyo",
			expression: "0 8 * * 1",
			timezone:   "Asia/Tokyo",
			expected:   time.Date(2024, 6, 16, 23, 0, 0, 0, time.UTC), // Monday 08:00 JST
		},
	}

	evaluator := NewEvaluator()

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next, err := evaluator.NextRun(tt.expression, tt.timezone, after)
			require.NoError(t, err)
			assert.True(t, tt.expected.Equal(next), "expected %s, got %s", tt.expected, next)
		})
	}
}

func TestNextRunMalformedExpression(t *testing.T) {
	evaluator := NewEvaluator()

	_, err := evaluator.NextRun("not a cron", "UTC", time.Now())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid cron expression")
}

func TestNextRunInvalidTimezone(t *testing.T) {
	evaluator := NewEvaluator()

	_, err := evaluator.NextRun("0 9 * * *", "Mars/Olympus_Mons", time.Now())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid timezone")
}

func TestValidate(t *testing.T) {
	evaluator := NewEvaluator()

	assert.NoError(t, evaluator.Validate("*/5 * * * *"))
	assert.Error(t, evaluator.Validate("61 * * * *"))
}
