package pricing

import (
	"context"
	"math"

	"github.com/omishoninjp-sys/daigo/internal/domain"
)

// Engine computes resale quotes from a validated fee schedule and the
// current JPY to TWD rate.
type Engine struct {
	schedule *Schedule
	minFee   int
	rates    *RateProvider
}

// NewEngine creates a pricing engine
func NewEngine(schedule *Schedule, minFeeJPY int, rates *RateProvider) *Engine {
	return &Engine{schedule: schedule, minFee: minFeeJPY, rates: rates}
}

// Schedule returns the engine's fee schedule
func (e *Engine) Schedule() *Schedule { return e.schedule }

// Rates returns the engine's rate provider
func (e *Engine) Rates() *RateProvider { return e.rates }

// Quote prices a product. Rate lookup degrades to the last known or
// configured default and never fails the quote; RateStale marks a
// degraded conversion.
func (e *Engine) Quote(ctx context.Context, originJPY int) domain.Pricing {
	band, _ := e.schedule.Match(originJPY)
	selling := SellingPrice(e.schedule, originJPY, e.minFee)

	rate, stale := e.rates.Rate(ctx)

	return domain.Pricing{
		OriginalPriceJPY:  originJPY,
		MarkupRate:        band.Rate,
		ServiceFeeJPY:     selling - originJPY,
		SellingPriceJPY:   selling,
		ReferencePriceTWD: roundHalfUp(float64(selling) * rate),
		TWDRate:           rate,
		RateStale:         stale,
	}
}

// SellingPrice computes the resale price for an origin price under the
// given schedule and minimum fee.
//
// Within a band the price is round-half-up(origin * rate), floored at
// origin + minFee. Because band rates typically decrease as prices
// rise, the naive formula can dip at a band boundary (a slightly more
// expensive item reselling cheaper); the result is therefore clamped to
// the selling price at the previous band's last integer price, which
// makes the whole curve non-decreasing.
func SellingPrice(s *Schedule, originJPY, minFeeJPY int) int {
	band, idx := s.Match(originJPY)

	selling := roundHalfUp(float64(originJPY) * band.Rate)
	if selling-originJPY < minFeeJPY {
		selling = originJPY + minFeeJPY
	}

	if idx > 0 {
		if prev := SellingPrice(s, band.Low-1, minFeeJPY); selling < prev {
			selling = prev
		}
	}
	return selling
}

func roundHalfUp(v float64) int {
	return int(math.Floor(v + 0.5))
}
