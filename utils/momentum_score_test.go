package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCalculateMomentumScore(t *testing.T) {
	assert.Equal(t, 0.0, CalculateMomentumScore(0, 0, 0))

	// 10-day streak dominates a modest XP pile: 30 + 5 + 2 = 37
	assert.InDelta(t, 37.0, CalculateMomentumScore(10, 100, 2), 1e-9)

	// Streak growth is quadratic, XP linear
	low := CalculateMomentumScore(5, 1000, 0)
	high := CalculateMomentumScore(10, 1000, 0)
	assert.Greater(t, high-low, 20.0)
}
