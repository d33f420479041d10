package streak

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLevelsTableIsOrdered(t *testing.T) {
	require.NotEmpty(t, Levels)
	assert.Equal(t, 0, Levels[0].SeedsRequired)

	for i := 1; i < len(Levels); i++ {
		assert.Equal(t, Levels[i-1].Level+1, Levels[i].Level)
		assert.Greater(t, Levels[i].SeedsRequired, Levels[i-1].SeedsRequired)
	}
}

func TestCurrentLevel(t *testing.T) {
	tests := []struct {
		seeds         int
		expectedLevel int
	}{
		{0, 1},
		{99, 1},
		{100, 2},
		{299, 2},
		{300, 3},
		{1000, 5},
		{4499, 9},
		{4500, 10},
		{999999, 10},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expectedLevel, CurrentLevel(tt.seeds).Level,
			"seeds=%d", tt.seeds)
	}
}

func TestCurrentLevelMonotonic(t *testing.T) {
	prev := 0
	for seeds := 0; seeds <= 5000; seeds += 10 {
		level := CurrentLevel(seeds).Level
		assert.GreaterOrEqual(t, level, prev)
		prev = level
	}
}

func TestNextLevel(t *testing.T) {
	next := NextLevel(1)
	require.NotNil(t, next)
	assert.Equal(t, 2, next.Level)

	assert.Nil(t, NextLevel(Levels[len(Levels)-1].Level))
}

func TestProgressToNextLevel(t *testing.T) {
	t.Run("mid tier", func(t *testing.T) {
		p := ProgressToNextLevel(150)
		require.NotNil(t, p.NextLevel)
		assert.Equal(t, 2, p.CurrentLevel.Level)
		assert.Equal(t, 3, p.NextLevel.Level)
		assert.Equal(t, 150, p.SeedsToNextLevel)
		assert.InDelta(t, 25.0, p.ProgressPercentage, 0.001)
	})

	t.Run("max tier", func(t *testing.T) {
		maxSeeds := Levels[len(Levels)-1].SeedsRequired
		p := ProgressToNextLevel(maxSeeds)
		assert.Nil(t, p.NextLevel)
		assert.Equal(t, 0, p.SeedsToNextLevel)
		assert.Equal(t, 100.0, p.ProgressPercentage)
	})

	t.Run("percentage always within bounds", func(t *testing.T) {
		for seeds := 0; seeds <= 6000; seeds += 7 {
			p := ProgressToNextLevel(seeds)
			assert.GreaterOrEqual(t, p.ProgressPercentage, 0.0, "seeds=%d", seeds)
			assert.LessOrEqual(t, p.ProgressPercentage, 100.0, "seeds=%d", seeds)
		}
	})
}
