package scoring

import (
	"fmt"

	"github.com/yshirakawa/station-fit/internal/domain"
)

// FeatureKey selects a single station feature rating.
type FeatureKey string

const (
	FeatureRentLevel      FeatureKey = "housing.rent_level"
	FeatureFamilyFriendly FeatureKey = "housing.family_friendly"
	FeatureQuietness      FeatureKey = "housing.quietness"
	FeatureConnections    FeatureKey = "transport.connections"
	FeatureFrequency      FeatureKey = "transport.frequency"
	FeatureTerminalAccess FeatureKey = "transport.terminal_access"
	FeatureShopping       FeatureKey = "commercial.shopping"
	FeatureDining         FeatureKey = "commercial.dining"
	FeatureParks          FeatureKey = "culture.parks"
	FeatureEntertainment  FeatureKey = "culture.entertainment"
	FeatureCommunity      FeatureKey = "culture.community"
	FeatureCostOfLiving   FeatureKey = "price.cost_of_living"
	FeatureDiningCost     FeatureKey = "price.dining_cost"
)

// TagBonus maps a priority tag to the feature rating that earns bonus points
// for it. Invert uses 6-rating so that low cost levels score high.
type TagBonus struct {
	Feature    FeatureKey
	Invert     bool
	Multiplier float64
}

// Config carries the scoring constants. The literal values are behavioral
// constants: they must stay as shipped for score compatibility, but live in
// config rather than inline so the table is explicit and testable.
type Config struct {
	// MaxConnections caps the transport line count before averaging.
	MaxConnections int

	// PriceBoostThreshold and PriceBoostFactor implement the extra boost of
	// the price category weight when price is the user's dominant priority.
	PriceBoostThreshold float64
	PriceBoostFactor    float64

	// BonusCap limits the total priority-tag bonus.
	BonusCap float64

	// TagBonuses is the tag -> feature bonus lookup. Tags not present here
	// contribute nothing.
	TagBonuses map[string]TagBonus
}

func DefaultConfig() Config {
	return Config{
		MaxConnections:      5,
		PriceBoostThreshold: 3.0,
		PriceBoostFactor:    1.5,
		BonusCap:            20.0,
		TagBonuses: map[string]TagBonus{
			"family-friendly": {Feature: FeatureFamilyFriendly, Multiplier: 2},
			"affordable":      {Feature: FeatureCostOfLiving, Invert: true, Multiplier: 2},
			"low-rent":        {Feature: FeatureRentLevel, Invert: true, Multiplier: 2},
			"quiet":           {Feature: FeatureQuietness, Multiplier: 2},
			"well-connected":  {Feature: FeatureConnections, Multiplier: 2},
			"convenient":      {Feature: FeatureFrequency, Multiplier: 2},
			"shopping":        {Feature: FeatureShopping, Multiplier: 2},
			"dining":          {Feature: FeatureDining, Multiplier: 2},
			"green":           {Feature: FeatureParks, Multiplier: 2},
			"nightlife":       {Feature: FeatureEntertainment, Multiplier: 2},
		},
	}
}

func (c Config) Validate() error {
	if c.MaxConnections <= 0 {
		return fmt.Errorf("max connections must be positive, got %d", c.MaxConnections)
	}
	if c.PriceBoostFactor < 1 {
		return fmt.Errorf("price boost factor must be >= 1, got %v", c.PriceBoostFactor)
	}
	if c.BonusCap < 0 {
		return fmt.Errorf("bonus cap must be non-negative, got %v", c.BonusCap)
	}
	for tag, b := range c.TagBonuses {
		if b.Multiplier <= 0 {
			return fmt.Errorf("tag %q: multiplier must be positive, got %v", tag, b.Multiplier)
		}
		if _, ok := featureValueFuncs[b.Feature]; !ok {
			return fmt.Errorf("tag %q: unknown feature key %q", tag, b.Feature)
		}
	}
	return nil
}

// FeatureValue resolves a FeatureKey against a station's feature record.
// Keys are validated by Config.Validate, so an unknown key means a programming
// error; it resolves to 0 rather than panicking.
func FeatureValue(key FeatureKey, f domain.StationFeatures) int {
	fn, ok := featureValueFuncs[key]
	if !ok {
		return 0
	}
	return fn(f)
}

// featureValueFuncs resolves a FeatureKey against a station's feature record.
var featureValueFuncs = map[FeatureKey]func(domain.StationFeatures) int{
	FeatureRentLevel:      func(f domain.StationFeatures) int { return f.Housing.RentLevel },
	FeatureFamilyFriendly: func(f domain.StationFeatures) int { return f.Housing.FamilyFriendly },
	FeatureQuietness:      func(f domain.StationFeatures) int { return f.Housing.Quietness },
	FeatureConnections:    func(f domain.StationFeatures) int { return f.Transport.Connections },
	FeatureFrequency:      func(f domain.StationFeatures) int { return f.Transport.Frequency },
	FeatureTerminalAccess: func(f domain.StationFeatures) int { return f.Transport.TerminalAccess },
	FeatureShopping:       func(f domain.StationFeatures) int { return f.Commercial.Shopping },
	FeatureDining:         func(f domain.StationFeatures) int { return f.Commercial.Dining },
	FeatureParks:          func(f domain.StationFeatures) int { return f.Culture.Parks },
	FeatureEntertainment:  func(f domain.StationFeatures) int { return f.Culture.Entertainment },
	FeatureCommunity:      func(f domain.StationFeatures) int { return f.Culture.Community },
	FeatureCostOfLiving:   func(f domain.StationFeatures) int { return f.Price.CostOfLiving },
	FeatureDiningCost:     func(f domain.StationFeatures) int { return f.Price.DiningCost },
}
