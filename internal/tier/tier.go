// Package tier classifies traders into volume bands.
package tier

import "github.com/shopspring/decimal"

// Tier is the volume-derived classification band shown on the leaderboard.
type Tier string

const (
	Dolphin Tier = "DOLPHIN"
	Shark   Tier = "SHARK"
	Whale   Tier = "WHALE"
)

// Band thresholds in USD. Lower bounds are inclusive: a volume exactly at
// a threshold belongs to the higher band.
var (
	sharkMinVolumeUSD = decimal.NewFromInt(50_000)
	whaleMinVolumeUSD = decimal.NewFromInt(250_000)
)

// Classify maps a trading volume to its tier. Total over all inputs;
// negative and zero volumes classify as Dolphin.
func Classify(volumeUSD decimal.Decimal) Tier {
	switch {
	case volumeUSD.GreaterThanOrEqual(whaleMinVolumeUSD):
		return Whale
	case volumeUSD.GreaterThanOrEqual(sharkMinVolumeUSD):
		return Shark
	default:
		return Dolphin
	}
}

// Valid reports whether s is a known tier label.
func Valid(s string) bool {
	switch Tier(s) {
	case Dolphin, Shark, Whale:
		return true
	}
	return false
}

// rank orders tiers low to high for monotonicity checks.
func (t Tier) rank() int {
	switch t {
	case Shark:
		return 1
	case Whale:
		return 2
	default:
		return 0
	}
}

// AtLeast reports whether t is the same band as other or a higher one.
func (t Tier) AtLeast(other Tier) bool {
	return t.rank() >= other.rank()
}
