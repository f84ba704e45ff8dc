package common

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddMonthClamped(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		from time.Time
		day  int
		want string
	}{
		{"plain", Date(2025, time.January, 1), 1, "2025-02-01"},
		{"clamped non leap", Date(2025, time.January, 31), 31, "2025-02-28"},
		{"clamped leap", Date(2024, time.January, 31), 31, "2024-02-29"},
		{"recovers after short month", Date(2025, time.February, 28), 31, "2025-03-31"},
		{"thirty day month", Date(2025, time.March, 31), 31, "2025-04-30"},
		{"year rollover", Date(2025, time.December, 15), 15, "2026-01-15"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := AddMonthClamped(tc.from, tc.day)
			assert.Equal(t, tc.want, got.Format(DateLayout))
		})
	}
}

func TestDateOfAndBetween(t *testing.T) {
	t.Parallel()
	at := time.Date(2025, time.March, 3, 22, 15, 0, 0, time.UTC)
	assert.Equal(t, "2025-03-03", DateOf(at).Format(DateLayout))

	d, err := ParseDate("2025-03-03")
	require.NoError(t, err)
	assert.True(t, Between(d, Date(2025, time.March, 1), Date(2025, time.March, 31)))
	assert.True(t, Between(d, d, d))
	assert.False(t, Between(d, Date(2025, time.April, 1), Date(2025, time.April, 30)))
	assert.Equal(t, 29, DaysIn(2024, time.February))
}
