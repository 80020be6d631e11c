package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPointsForDuration(t *testing.T) {
	cases := []struct {
		minutes float64
		points  int
	}{
		{0, 0},
		{10, 20},
		{4, 8},
		{2.3, 5},  // 4.6 rounds up
		{0.2, 0},  // 0.4 rounds down
		{0.25, 1}, // 0.5 rounds up
	}

	for _, tc := range cases {
		assert.Equal(t, tc.points, PointsForDuration(tc.minutes), "minutes=%v", tc.minutes)
	}
}
