// Package scoring computes the 0..100 compatibility score between a user
// preference profile and one station's feature vector.
package scoring

import (
	"fmt"
	"math"

	"github.com/yshirakawa/station-fit/internal/domain"
)

type Scorer struct {
	cfg Config
}

func NewScorer(cfg Config) (*Scorer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid scoring config: %w", err)
	}
	return &Scorer{cfg: cfg}, nil
}

// Config returns the scoring constants in use.
func (s *Scorer) Config() Config {
	return s.cfg
}

// Score is total over well-formed input: it never fails and always returns a
// value in [0,100]. Stations with incomplete feature data must be filtered
// out by the catalog before they reach this function.
func (s *Scorer) Score(p domain.UserProfile, st domain.Station) float64 {
	var sum, sumWeight float64

	for _, cat := range domain.Categories {
		pref := p.Preferences[cat]
		if pref <= 0 {
			continue
		}

		sub := s.subScore(cat, st.Features) * (pref / 5)
		w := pref * s.categoryWeight(cat, p.CategoryWeights)

		sum += sub * w
		sumWeight += w
	}

	base := 0.0
	if sumWeight > 0 {
		// Sub-scores live in a nominal 0..5 range; x20 rescales to 0..100.
		base = sum / sumWeight * 20
	}

	bonus := s.priorityBonus(p.Priorities, st.Features)

	return clamp(base+bonus, 0, 100)
}

// subScore averages the category's relevant ratings into a nominal 0..5
// value. Transport's line count is capped before averaging; price averages
// inverted cost levels plus the inverted housing rent level, so that cheap
// areas score high.
func (s *Scorer) subScore(cat domain.Category, f domain.StationFeatures) float64 {
	switch cat {
	case domain.CategoryHousing:
		return avg(
			float64(f.Housing.FamilyFriendly),
			float64(f.Housing.Quietness),
		)
	case domain.CategoryTransport:
		return avg(
			math.Min(float64(f.Transport.Connections), float64(s.cfg.MaxConnections)),
			float64(f.Transport.Frequency),
			float64(f.Transport.TerminalAccess),
		)
	case domain.CategoryCommercial:
		return avg(
			float64(f.Commercial.Shopping),
			float64(f.Commercial.Dining),
		)
	case domain.CategoryCulture:
		return avg(
			float64(f.Culture.Parks),
			float64(f.Culture.Entertainment),
			float64(f.Culture.Community),
		)
	case domain.CategoryPrice:
		return avg(
			invert(f.Price.CostOfLiving),
			invert(f.Price.DiningCost),
			invert(f.Housing.RentLevel),
		)
	default:
		return 0
	}
}

// categoryWeight returns the priority multiplier for a category. The price
// category borrows the housing weight when that is higher (rent is
// cost-related) and gets an extra boost when price is the dominant priority.
func (s *Scorer) categoryWeight(cat domain.Category, weights map[domain.Category]float64) float64 {
	w := weightOrBalanced(weights, cat)
	if cat != domain.CategoryPrice {
		return w
	}

	priceW := w
	if housingW := weightOrBalanced(weights, domain.CategoryHousing); housingW > priceW {
		priceW = housingW
	}
	if weightOrBalanced(weights, domain.CategoryPrice) >= s.cfg.PriceBoostThreshold {
		priceW *= s.cfg.PriceBoostFactor
	}
	return priceW
}

// priorityBonus adds up the bonus terms for the first three priority tags.
// Unmapped tags contribute nothing; the total is capped.
func (s *Scorer) priorityBonus(priorities []string, f domain.StationFeatures) float64 {
	var bonus float64

	for i, tag := range priorities {
		if i >= 3 {
			break
		}
		rule, ok := s.cfg.TagBonuses[tag]
		if !ok {
			continue
		}
		bonus += s.bonusValue(rule, f)
	}

	return math.Min(bonus, s.cfg.BonusCap)
}

func (s *Scorer) bonusValue(rule TagBonus, f domain.StationFeatures) float64 {
	rating := featureValueFuncs[rule.Feature](f)
	if rule.Feature == FeatureConnections && rating > s.cfg.MaxConnections {
		rating = s.cfg.MaxConnections
	}

	v := float64(rating)
	if rule.Invert {
		v = 6 - v
	}
	return v * rule.Multiplier
}

func avg(vs ...float64) float64 {
	var sum float64
	for _, v := range vs {
		sum += v
	}
	return sum / float64(len(vs))
}

// invert maps a cost level (1=cheap, 5=expensive) to a desirability rating.
func invert(rating int) float64 {
	return 6 - float64(rating)
}

func weightOrBalanced(weights map[domain.Category]float64, cat domain.Category) float64 {
	if w, ok := weights[cat]; ok {
		return w
	}
	return 1.0
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
