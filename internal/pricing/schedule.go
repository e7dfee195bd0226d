package pricing

import (
	"fmt"
	"math"

	"github.com/omishoninjp-sys/daigo/internal/config"
)

// Band is one markup tier of the fee schedule. Prices in [Low, High)
// resell at Rate times the origin price. The last band's High is
// math.MaxInt (unbounded).
type Band struct {
	Low  int
	High int
	Rate float64
}

// Schedule is an ordered, gapless partition of the non-negative price
// axis into markup bands. Build one with NewSchedule; a validated
// schedule matches every non-negative price to exactly one band.
type Schedule struct {
	bands []Band
}

// NewSchedule builds a schedule from configured tiers and validates it.
// A tier with MaxJPY == 0 is treated as unbounded and must be last.
func NewSchedule(tiers []config.Tier) (*Schedule, error) {
	if len(tiers) == 0 {
		return nil, fmt.Errorf("pricing: empty fee schedule")
	}

	bands := make([]Band, len(tiers))
	for i, t := range tiers {
		high := t.MaxJPY
		if high == 0 {
			high = math.MaxInt
		}
		bands[i] = Band{Low: t.MinJPY, High: high, Rate: t.Markup}
	}

	s := &Schedule{bands: bands}
	if err := s.validate(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Schedule) validate() error {
	if s.bands[0].Low != 0 {
		return fmt.Errorf("pricing: first band must start at 0, got %d", s.bands[0].Low)
	}
	if s.bands[len(s.bands)-1].High != math.MaxInt {
		return fmt.Errorf("pricing: last band must be unbounded")
	}
	for i, b := range s.bands {
		if b.High <= b.Low {
			return fmt.Errorf("pricing: band %d is empty [%d, %d)", i, b.Low, b.High)
		}
		if b.Rate <= 1.0 {
			return fmt.Errorf("pricing: band %d markup %.3f must exceed 1.0", i, b.Rate)
		}
		if i > 0 && b.Low != s.bands[i-1].High {
			return fmt.Errorf("pricing: gap or overlap between band %d and %d", i-1, i)
		}
	}
	return nil
}

// Match returns the band containing price and its index. Negative
// prices never reach here; the extractor rejects them.
func (s *Schedule) Match(priceJPY int) (Band, int) {
	for i, b := range s.bands {
		if priceJPY >= b.Low && priceJPY < b.High {
			return b, i
		}
	}
	// Unreachable on a validated schedule.
	last := len(s.bands) - 1
	return s.bands[last], last
}

// Bands returns a copy of the schedule's bands
func (s *Schedule) Bands() []Band {
	out := make([]Band, len(s.bands))
	copy(out, s.bands)
	return out
}

// Tiers returns the schedule in config form, for the /api/rate snapshot
func (s *Schedule) Tiers() []config.Tier {
	out := make([]config.Tier, len(s.bands))
	for i, b := range s.bands {
		max := b.High
		if max == math.MaxInt {
			max = 0
		}
		out[i] = config.Tier{MinJPY: b.Low, MaxJPY: max, Markup: b.Rate}
	}
	return out
}
