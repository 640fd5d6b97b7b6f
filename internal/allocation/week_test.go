package allocation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPreviousWeek(t *testing.T) {
	cases := map[string]string{
		"2025-W43": "2025-W42",
		"2025-W10": "2025-W09",
		"2025-W01": "2024-W52",
		"2021-W01": "2020-W52",
	}
	for in, want := range cases {
		got, err := PreviousWeek(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
}

func TestPreviousWeekRejectsMalformed(t *testing.T) {
	for _, in := range []string{"", "2025-43", "2025-W00", "2025-W54", "25-W01", "2025-w01"} {
		_, err := PreviousWeek(in)
		assert.ErrorIs(t, err, ErrInvalidWeek, in)
	}
}

func TestHasISOWeek53(t *testing.T) {
	assert.True(t, HasISOWeek53(2020))
	assert.True(t, HasISOWeek53(2026))
	assert.False(t, HasISOWeek53(2024))
	assert.False(t, HasISOWeek53(2025))
}

func TestCurrentWeek(t *testing.T) {
	assert.Equal(t, "2025-W43", CurrentWeek(time.Date(2025, time.October, 22, 12, 0, 0, 0, time.UTC)))
	assert.Equal(t, "2026-W01", CurrentWeek(time.Date(2025, time.December, 29, 0, 0, 0, 0, time.UTC)))
}
