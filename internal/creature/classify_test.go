package creature

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestClassify_Boundaries(t *testing.T) {
	scheduled := time.Date(2024, 6, 3, 7, 0, 0, 0, time.UTC)

	cases := []struct {
		delay time.Duration
		want  Result
	}{
		{-5 * time.Minute, ResultOnTime},
		{0, ResultOnTime},
		{59 * time.Second, ResultOnTime},
		{59*time.Second + 999*time.Millisecond, ResultOnTime},
		{60 * time.Second, ResultLate},
		{299 * time.Second, ResultLate},
		{300 * time.Second, ResultVeryLate},
		{599 * time.Second, ResultVeryLate},
		{600 * time.Second, ResultMissed},
		{3 * time.Hour, ResultMissed},
	}

	for _, tc := range cases {
		t.Run(tc.delay.String(), func(t *testing.T) {
			assert.Equal(t, tc.want, Classify(scheduled, scheduled.Add(tc.delay)))
		})
	}
}

func TestResult_BreaksStreak(t *testing.T) {
	assert.False(t, ResultOnTime.BreaksStreak())
	assert.False(t, ResultLate.BreaksStreak())
	assert.True(t, ResultVeryLate.BreaksStreak())
	assert.True(t, ResultMissed.BreaksStreak())
}
