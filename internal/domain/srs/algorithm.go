package srs

import (
	"math"

	"github.com/lumohq/lumo-api/internal/domain"
)

// Schedule is the scheduling state the algorithm evolves for one open
// revision entry: how long until the next review, how fast intervals grow,
// and how many consecutive successful repetitions have occurred.
type Schedule struct {
	IntervalDays    int
	EaseFactor      float64
	RepetitionCount int
}

// calculateNewEaseFactor applies the standard SM-2 ease adjustment:
//
//	EF' = EF + (0.1 - (5-q) * (0.08 + (5-q) * 0.02))
//
// Higher quality increases ease (longer future intervals), lower quality
// decreases it. The result is floored at params.MinEaseFactor so a topic
// repeatedly rated poorly but not failed cannot collapse its intervals
// indefinitely.
func calculateNewEaseFactor(
	currentEF float64,
	quality domain.ReviewQuality,
	params *Params,
) float64 {
	q := float64(quality)
	newEF := currentEF + (0.1 - (5-q)*(0.08+(5-q)*0.02))

	if newEF < params.MinEaseFactor {
		newEF = params.MinEaseFactor
	}

	return newEF
}

// calculateNextSchedule computes the next scheduling state from the current
// one and a recall quality rating.
//
// Algorithm behavior:
//   - The ease factor is always adjusted first, pass or fail.
//   - A failed review (quality < 3) restarts the spacing curve: repetition
//     count drops to 0 and the interval resets to params.FailInterval,
//     independent of the ease factor.
//   - A passed review increments the repetition count. The first two passed
//     repetitions use the fixed anchor intervals; from the third on, the
//     interval grows geometrically: round(intervalDays * newEaseFactor).
func calculateNextSchedule(
	current Schedule,
	quality domain.ReviewQuality,
	params *Params,
) Schedule {
	next := Schedule{
		EaseFactor: calculateNewEaseFactor(current.EaseFactor, quality, params),
	}

	if !quality.Passing() {
		next.RepetitionCount = 0
		next.IntervalDays = params.FailInterval
		return next
	}

	next.RepetitionCount = current.RepetitionCount + 1

	switch next.RepetitionCount {
	case 1:
		next.IntervalDays = params.FirstInterval
	case 2:
		next.IntervalDays = params.SecondInterval
	default:
		next.IntervalDays = int(math.Round(float64(current.IntervalDays) * next.EaseFactor))
	}

	return next
}

// InitialIntervalForScore derives the first review interval for a newly
// scheduled weak topic from its mastery score at creation time:
// max(1, score/20) days. The weaker the topic, the sooner the first review.
func InitialIntervalForScore(masteryScore int) int {
	interval := masteryScore / 20
	if interval < 1 {
		interval = 1
	}
	return interval
}
