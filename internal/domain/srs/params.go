package srs

import (
	"github.com/lumohq/lumo-api/internal/domain"
)

// Params defines all configurable parameters for the SRS algorithm
type Params struct {
	// Core limits
	MinEaseFactor     float64
	InitialEaseFactor float64

	// Fixed anchor intervals for the first two passed repetitions. The
	// ease-factor multiplication is unstable with too little history, so
	// early repetitions use these instead.
	FirstInterval  int
	SecondInterval int

	// FailInterval is the interval a failed review resets to, independent
	// of the ease factor.
	FailInterval int
}

// ParamsConfig allows overriding the default parameters when creating a new
// Params instance
type ParamsConfig struct {
	MinEaseFactor     float64
	InitialEaseFactor float64
	FirstInterval     int
	SecondInterval    int
	FailInterval      int
}

// NewDefaultParams creates a new Params instance with the classical SM-2
// defaults: ease floor 1.3, initial ease 2.5, anchor intervals of 1 and 6
// days, failure reset to 1 day.
func NewDefaultParams() *Params {
	return &Params{
		MinEaseFactor:     domain.MinEaseFactor,
		InitialEaseFactor: domain.DefaultEaseFactor,
		FirstInterval:     1,
		SecondInterval:    6,
		FailInterval:      1,
	}
}

// NewParams creates a new Params instance with custom configuration.
// Zero-valued fields keep their defaults.
func NewParams(config ParamsConfig) *Params {
	params := NewDefaultParams()

	if config.MinEaseFactor > 0 {
		params.MinEaseFactor = config.MinEaseFactor
	}
	if config.InitialEaseFactor > 0 {
		params.InitialEaseFactor = config.InitialEaseFactor
	}
	if config.FirstInterval > 0 {
		params.FirstInterval = config.FirstInterval
	}
	if config.SecondInterval > 0 {
		params.SecondInterval = config.SecondInterval
	}
	if config.FailInterval > 0 {
		params.FailInterval = config.FailInterval
	}

	return params
}
