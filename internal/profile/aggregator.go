// Package profile folds a session's answers into a user preference profile:
// normalized per-category preference strengths, a category-weight vector
// derived from the priority meta-question, and the top answer tags.
package profile

import (
	"sort"

	"github.com/rs/zerolog"

	"github.com/yshirakawa/station-fit/internal/catalog"
	"github.com/yshirakawa/station-fit/internal/domain"
)

// maxPriorities is how many top tags a profile carries.
const maxPriorities = 5

type Aggregator struct {
	questions *catalog.QuestionCatalog
	presets   WeightPresets
	logger    zerolog.Logger
}

func NewAggregator(questions *catalog.QuestionCatalog, presets WeightPresets, logger zerolog.Logger) *Aggregator {
	if presets == nil {
		presets = DefaultWeightPresets()
	}
	return &Aggregator{
		questions: questions,
		presets:   presets,
		logger:    logger.With().Str("component", "profile").Logger(),
	}
}

// ComputeProfile derives a UserProfile from the retained answers. Answers
// referencing unknown questions or options are skipped for normalization but
// kept verbatim in the answers snapshot: reference validity is enforced at
// submission time, so a stale reference here means the catalog changed under
// a live session and should not poison the whole profile.
func (a *Aggregator) ComputeProfile(answers []domain.Answer) domain.UserProfile {
	numerator := make(map[domain.Category]float64, len(domain.Categories))
	denominator := make(map[domain.Category]float64, len(domain.Categories))
	tagTally := make(map[string]float64)
	var tagOrder []string
	priorityToken := ""

	for _, ans := range answers {
		q, ok := a.questions.Question(ans.QuestionID)
		if !ok {
			a.logger.Debug().Str("question_id", ans.QuestionID).Msg("skipping answer to unknown question")
			continue
		}
		opt, ok := a.questions.Option(ans.QuestionID, ans.OptionID)
		if !ok {
			a.logger.Debug().
				Str("question_id", ans.QuestionID).
				Str("option_id", ans.OptionID).
				Msg("skipping answer with unknown option")
			continue
		}

		if q.Category == domain.CategoryPriority {
			priorityToken = opt.Target
			continue
		}
		if !q.Category.IsSubstantive() {
			continue
		}

		numerator[q.Category] += opt.Value * q.Weight
		denominator[q.Category] += q.Weight

		for _, tag := range opt.Tags {
			if _, seen := tagTally[tag]; !seen {
				tagOrder = append(tagOrder, tag)
			}
			tagTally[tag] += q.Weight
		}
	}

	preferences := make(map[domain.Category]float64, len(domain.Categories))
	for _, cat := range domain.Categories {
		if denominator[cat] > 0 {
			preferences[cat] = numerator[cat] / denominator[cat]
		} else {
			preferences[cat] = 0
		}
	}

	snapshot := make([]domain.Answer, len(answers))
	copy(snapshot, answers)

	return domain.UserProfile{
		Preferences:     preferences,
		CategoryWeights: a.presets.Resolve(priorityToken),
		Priorities:      topTags(tagTally, tagOrder, maxPriorities),
		Answers:         snapshot,
	}
}

// topTags returns up to n tags ordered by weight-summed tally descending,
// ties broken by first-encountered order.
func topTags(tally map[string]float64, order []string, n int) []string {
	ranked := make([]string, len(order))
	copy(ranked, order)

	sort.SliceStable(ranked, func(i, j int) bool {
		return tally[ranked[i]] > tally[ranked[j]]
	})

	if len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}
