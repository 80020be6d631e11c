package services

import "math"

// PointsPerMinute is the fixed award rate for watched lecture minutes.
const PointsPerMinute = 2

// PointsForDuration maps minutes watched to points. Pure; negative input is
// rejected by the progress service before it gets here.
func PointsForDuration(minutes float64) int {
	return int(math.Round(minutes * PointsPerMinute))
}
