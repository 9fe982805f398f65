package srs

import (
	"math"
	"testing"

	"github.com/lumohq/lumo-api/internal/domain"
)

const easeEpsilon = 1e-9

func TestCalculateNewEaseFactor(t *testing.T) {
	t.Parallel()
	params := NewDefaultParams()

	testCases := []struct {
		name     string
		current  float64
		quality  domain.ReviewQuality
		expected float64
	}{
		{
			name:     "Easy recall should increase ease factor",
			current:  2.5,
			quality:  domain.QualityEasy,
			expected: 2.6, // 2.5 + 0.1
		},
		{
			name:     "Good recall should not change ease factor",
			current:  2.5,
			quality:  domain.QualityGood,
			expected: 2.5, // adjustment is exactly 0
		},
		{
			name:     "Hard recall should decrease ease factor",
			current:  2.5,
			quality:  domain.QualityHard,
			expected: 2.36, // 2.5 - 0.14
		},
		{
			name:     "Familiar-but-wrong should decrease ease factor sharply",
			current:  2.5,
			quality:  domain.QualityFamiliar,
			expected: 2.18, // 2.5 - 0.32
		},
		{
			name:     "Incorrect recall adjustment",
			current:  2.0,
			quality:  domain.QualityIncorrect,
			expected: 1.46, // 2.0 - 0.54
		},
		{
			name:     "Blackout should decrease ease factor most",
			current:  2.5,
			quality:  domain.QualityBlackout,
			expected: 1.7, // 2.5 - 0.8
		},
		{
			name:     "Minimum ease factor should be enforced",
			current:  1.4,
			quality:  domain.QualityBlackout,
			expected: 1.3, // 1.4 - 0.8 = 0.6, floored at 1.3
		},
		{
			name:     "Ease factor at the floor stays at the floor",
			current:  1.3,
			quality:  domain.QualityIncorrect,
			expected: 1.3,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			newEF := calculateNewEaseFactor(tc.current, tc.quality, params)

			if math.Abs(newEF-tc.expected) > easeEpsilon {
				t.Errorf("Expected ease factor %v, got %v", tc.expected, newEF)
			}
		})
	}
}

func TestCalculateNextSchedule(t *testing.T) {
	t.Parallel()
	params := NewDefaultParams()

	testCases := []struct {
		name     string
		current  Schedule
		quality  domain.ReviewQuality
		expected Schedule
	}{
		{
			name:     "First passed repetition uses the one-day anchor",
			current:  Schedule{IntervalDays: 1, EaseFactor: 2.5, RepetitionCount: 0},
			quality:  domain.QualityEasy,
			expected: Schedule{IntervalDays: 1, EaseFactor: 2.6, RepetitionCount: 1},
		},
		{
			name:     "Second passed repetition uses the six-day anchor",
			current:  Schedule{IntervalDays: 1, EaseFactor: 2.6, RepetitionCount: 1},
			quality:  domain.QualityGood,
			expected: Schedule{IntervalDays: 6, EaseFactor: 2.6, RepetitionCount: 2},
		},
		{
			name:     "Third passed repetition grows geometrically",
			current:  Schedule{IntervalDays: 6, EaseFactor: 2.6, RepetitionCount: 2},
			quality:  domain.QualityGood,
			expected: Schedule{IntervalDays: 16, EaseFactor: 2.6, RepetitionCount: 3}, // round(6 * 2.6)
		},
		{
			name:     "Hard pass uses the already-lowered ease factor",
			current:  Schedule{IntervalDays: 6, EaseFactor: 2.5, RepetitionCount: 2},
			quality:  domain.QualityHard,
			expected: Schedule{IntervalDays: 14, EaseFactor: 2.36, RepetitionCount: 3}, // round(6 * 2.36)
		},
		{
			name:     "Failed review resets repetitions and interval",
			current:  Schedule{IntervalDays: 15, EaseFactor: 2.0, RepetitionCount: 3},
			quality:  domain.QualityIncorrect,
			expected: Schedule{IntervalDays: 1, EaseFactor: 1.46, RepetitionCount: 0},
		},
		{
			name:     "Blackout on a mature schedule resets hard",
			current:  Schedule{IntervalDays: 40, EaseFactor: 2.5, RepetitionCount: 5},
			quality:  domain.QualityBlackout,
			expected: Schedule{IntervalDays: 1, EaseFactor: 1.7, RepetitionCount: 0},
		},
		{
			name:     "Failure at the ease floor cannot sink below it",
			current:  Schedule{IntervalDays: 1, EaseFactor: 1.3, RepetitionCount: 0},
			quality:  domain.QualityBlackout,
			expected: Schedule{IntervalDays: 1, EaseFactor: 1.3, RepetitionCount: 0},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			next := calculateNextSchedule(tc.current, tc.quality, params)

			if next.IntervalDays != tc.expected.IntervalDays {
				t.Errorf("Expected interval %d, got %d", tc.expected.IntervalDays, next.IntervalDays)
			}
			if next.RepetitionCount != tc.expected.RepetitionCount {
				t.Errorf(
					"Expected repetition count %d, got %d",
					tc.expected.RepetitionCount,
					next.RepetitionCount,
				)
			}
			if math.Abs(next.EaseFactor-tc.expected.EaseFactor) > easeEpsilon {
				t.Errorf("Expected ease factor %v, got %v", tc.expected.EaseFactor, next.EaseFactor)
			}
		})
	}
}

func TestInitialIntervalForScore(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		score    int
		expected int
	}{
		{score: 0, expected: 1},
		{score: 10, expected: 1},
		{score: 19, expected: 1},
		{score: 20, expected: 1},
		{score: 39, expected: 1},
		{score: 40, expected: 2},
		{score: 59, expected: 2},
		{score: 80, expected: 4},
		{score: 99, expected: 4},
		{score: 100, expected: 5},
	}

	for _, tc := range testCases {
		got := InitialIntervalForScore(tc.score)
		if got != tc.expected {
			t.Errorf("InitialIntervalForScore(%d): expected %d, got %d", tc.score, tc.expected, got)
		}
	}
}
