package checkout

import (
	"strings"

	"github.com/shopspring/decimal"
)

// FeePolicy computes the delivery fee for a subtotal and delivery zone.
type FeePolicy interface {
	Fee(subtotal decimal.Decimal, zone string) decimal.Decimal
	// KnownZone reports whether zone can be chosen at checkout.
	KnownZone(zone string) bool
}

// Delivery zones offered at checkout.
const (
	ZoneNairobiCBD     = "nairobi-cbd"
	ZoneNairobiSuburbs = "nairobi-suburbs"
	ZoneOutsideNairobi = "outside-nairobi"
)

var (
	DefaultFreeThreshold = decimal.NewFromInt(2000)
	DefaultBaseFee       = decimal.NewFromInt(200)
)

// DefaultZoneFees are the per-zone flat fees charged below the free threshold.
func DefaultZoneFees() map[string]decimal.Decimal {
	return map[string]decimal.Decimal{
		ZoneNairobiCBD:     decimal.NewFromInt(200),
		ZoneNairobiSuburbs: decimal.NewFromInt(300),
		ZoneOutsideNairobi: decimal.NewFromInt(500),
	}
}

// ThresholdPolicy charges nothing once the subtotal reaches FreeThreshold and
// BaseFee otherwise. ZoneFees, keyed by zone, replace BaseFee for that zone.
type ThresholdPolicy struct {
	FreeThreshold decimal.Decimal
	BaseFee       decimal.Decimal
	ZoneFees      map[string]decimal.Decimal
}

// NewThresholdPolicy returns the flat policy with no zone overrides.
func NewThresholdPolicy(freeThreshold, baseFee decimal.Decimal) ThresholdPolicy {
	return ThresholdPolicy{FreeThreshold: freeThreshold, BaseFee: baseFee}
}

func (p ThresholdPolicy) Fee(subtotal decimal.Decimal, zone string) decimal.Decimal {
	if subtotal.GreaterThanOrEqual(p.FreeThreshold) {
		return decimal.Zero
	}
	if fee, ok := p.ZoneFees[NormalizeZone(zone)]; ok {
		return fee
	}
	return p.BaseFee
}

// KnownZone accepts a blank zone, any zone when no overrides are configured,
// and otherwise only the configured zones.
func (p ThresholdPolicy) KnownZone(zone string) bool {
	zone = NormalizeZone(zone)
	if zone == "" || len(p.ZoneFees) == 0 {
		return true
	}
	_, ok := p.ZoneFees[zone]
	return ok
}

// NormalizeZone trims and lower-cases a zone name.
func NormalizeZone(zone string) string {
	return strings.ToLower(strings.TrimSpace(zone))
}
