package rules

import (
	"math"
	"time"
)

const (
	SwipeVelocityThreshold = 0.2
	SwipeAdvanceDelay      = 200 * time.Millisecond
	SwipeExitMargin        = 200.0
	DragScale              = 1.05
	StampThreshold         = 20.0
)

// ShouldCommit is velocity-only: a long slow drag never commits.
func ShouldCommit(releaseVX, threshold float64) bool {
	if threshold <= 0 {
		threshold = SwipeVelocityThreshold
	}
	return math.Abs(releaseVX) > threshold
}

// Direction maps a horizontal movement direction to -1 or +1.
// A zero direction counts as right.
func Direction(dirX float64) int {
	if dirX < 0 {
		return -1
	}
	return 1
}

func DragRotation(offsetX float64) float64 {
	return offsetX / 100
}

func ExitX(dir int, viewportWidth, margin float64) float64 {
	return (margin + viewportWidth) * float64(dir)
}

func ExitRotation(offsetX float64, dir int, releaseVX float64) float64 {
	return offsetX/100 + float64(dir)*10*math.Abs(releaseVX)
}

func LikeOpacity(x float64) float64 {
	if x > StampThreshold {
		return math.Min(x/100, 1)
	}
	return 0
}

func NopeOpacity(x float64) float64 {
	if x < -StampThreshold {
		return math.Min(math.Abs(x)/100, 1)
	}
	return 0
}
