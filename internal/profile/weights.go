package profile

import "github.com/yshirakawa/station-fit/internal/domain"

// presetBaseline is the weight every category starts from when the user has
// picked a concrete priority: the chosen dimensions are raised from here.
const presetBaseline = 0.5

// balancedWeight is used when no priority was expressed, or the user chose
// the explicit "none" option.
const balancedWeight = 1.0

// WeightPresets maps a priority token (the Target of the selected option of
// the priority meta-question) to the category weights it raises above the
// 0.5 baseline. These multipliers are product-tuning constants; changing them
// changes every score the engine produces.
type WeightPresets map[string]map[domain.Category]float64

// DefaultWeightPresets returns the shipped preset table. A price priority also
// strongly boosts housing because rent is cost-related.
func DefaultWeightPresets() WeightPresets {
	return WeightPresets{
		"housing": {
			domain.CategoryHousing: 2.0,
			domain.CategoryPrice:   2.0,
		},
		"transport": {
			domain.CategoryTransport: 2.0,
		},
		"commercial": {
			domain.CategoryCommercial: 2.0,
		},
		"culture": {
			domain.CategoryCulture: 2.0,
		},
		"price": {
			domain.CategoryPrice:   3.0,
			domain.CategoryHousing: 2.5,
		},
	}
}

// Resolve turns a priority token into a full category-weight vector.
// Empty token (no priority answered), "none", and unknown tokens all resolve
// to the balanced vector.
func (p WeightPresets) Resolve(token string) map[domain.Category]float64 {
	weights := make(map[domain.Category]float64, len(domain.Categories))

	overrides, ok := p[token]
	if token == "" || token == "none" || !ok {
		for _, cat := range domain.Categories {
			weights[cat] = balancedWeight
		}
		return weights
	}

	for _, cat := range domain.Categories {
		weights[cat] = presetBaseline
	}
	for cat, w := range overrides {
		weights[cat] = w
	}
	return weights
}
