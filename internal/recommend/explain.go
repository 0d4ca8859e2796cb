package recommend

import (
	"fmt"

	"github.com/yshirakawa/station-fit/internal/domain"
	"github.com/yshirakawa/station-fit/internal/scoring"
)

// Explanation thresholds. A feature is worth mentioning when its rating is
// strong and the user actually cares about that dimension.
const (
	strongRating   = 4
	lowCostRating  = 2
	prefGate       = 3.0
	maxPriorityTag = 3
)

// Explain inspects the station's raw feature values against fixed thresholds,
// gated by the profile's preferences, and cross-checks the top priority tags.
// It is independent of scoring and never fails.
func (r *Ranker) Explain(p domain.UserProfile, station domain.Station) domain.Explanation {
	ex := domain.Explanation{
		MatchingFeatures: []string{},
		Strengths:        []string{},
		Considerations:   []string{},
	}
	f := station.Features

	if p.Preferences[domain.CategoryHousing] > prefGate {
		if f.Housing.FamilyFriendly >= strongRating {
			ex.MatchingFeatures = append(ex.MatchingFeatures, "family-friendly housing")
			ex.Strengths = append(ex.Strengths, "Highly rated for raising a family")
		}
		if f.Housing.Quietness >= strongRating {
			ex.Strengths = append(ex.Strengths, "Quiet residential streets")
		}
	}

	if p.Preferences[domain.CategoryTransport] > prefGate {
		if f.Transport.Connections >= strongRating {
			ex.MatchingFeatures = append(ex.MatchingFeatures, "well-connected station")
			ex.Strengths = append(ex.Strengths, fmt.Sprintf("%d train lines within reach", f.Transport.Connections))
		}
		if f.Transport.Frequency >= strongRating {
			ex.Strengths = append(ex.Strengths, "Trains run frequently through the day")
		}
	}

	if p.Preferences[domain.CategoryCommercial] > prefGate {
		if f.Commercial.Shopping >= strongRating {
			ex.Strengths = append(ex.Strengths, "Strong shopping options around the station")
		}
		if f.Commercial.Dining >= strongRating {
			ex.Strengths = append(ex.Strengths, "Plenty of restaurants to choose from")
		}
	}

	if p.Preferences[domain.CategoryCulture] > prefGate {
		if f.Culture.Parks >= strongRating {
			ex.Strengths = append(ex.Strengths, "Parks and green space nearby")
		}
		if f.Culture.Entertainment >= strongRating {
			ex.Strengths = append(ex.Strengths, "Lively entertainment scene")
		}
	}

	if p.Preferences[domain.CategoryPrice] > prefGate {
		if f.Price.CostOfLiving <= lowCostRating {
			ex.MatchingFeatures = append(ex.MatchingFeatures, "low cost of living")
			ex.Strengths = append(ex.Strengths, "Everyday costs are low")
		}
		if f.Price.CostOfLiving >= strongRating {
			ex.Considerations = append(ex.Considerations, "Day-to-day costs run high here")
		}
		if f.Housing.RentLevel >= strongRating {
			ex.Considerations = append(ex.Considerations, "Rent is on the high side")
		}
	}

	r.explainPriorities(p, f, &ex)

	if len(ex.MatchingFeatures) == 0 && len(ex.Strengths) == 0 {
		ex.Considerations = append(ex.Considerations, "A balanced area without a single standout feature")
	}

	return ex
}

// explainPriorities cross-checks the top priority tags against the same
// feature thresholds the scorer's bonus table uses.
func (r *Ranker) explainPriorities(p domain.UserProfile, f domain.StationFeatures, ex *domain.Explanation) {
	tagBonuses := r.scorer.Config().TagBonuses

	for i, tag := range p.Priorities {
		if i >= maxPriorityTag {
			break
		}
		rule, ok := tagBonuses[tag]
		if !ok {
			continue
		}
		if r.tagMatches(rule, f) {
			ex.MatchingFeatures = append(ex.MatchingFeatures, "matches your priority: "+tag)
		}
	}
}

func (r *Ranker) tagMatches(rule scoring.TagBonus, f domain.StationFeatures) bool {
	rating := scoring.FeatureValue(rule.Feature, f)
	if rule.Feature == scoring.FeatureConnections && rating > r.scorer.Config().MaxConnections {
		rating = r.scorer.Config().MaxConnections
	}
	if rule.Invert {
		return rating <= lowCostRating
	}
	return rating >= strongRating
}
