package profile

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/yshirakawa/station-fit/internal/catalog"
	"github.com/yshirakawa/station-fit/internal/domain"
)

func testQuestions(t *testing.T) *catalog.QuestionCatalog {
	t.Helper()

	qc, err := catalog.NewQuestionCatalog([]domain.Question{
		{
			ID: "q-housing-1", Category: domain.CategoryHousing, Text: "calm area?", Weight: 2.0,
			Options: []domain.Option{
				{ID: "a", Text: "yes", Value: 4, Tags: []string{"quiet", "family-friendly"}},
				{ID: "b", Text: "no", Value: 1},
			},
		},
		{
			ID: "q-housing-2", Category: domain.CategoryHousing, Text: "kids?", Weight: 1.0,
			Options: []domain.Option{
				{ID: "a", Text: "yes", Value: 3, Tags: []string{"quiet"}},
				{ID: "b", Text: "no", Value: 5},
			},
		},
		{
			ID: "q-transport-1", Category: domain.CategoryTransport, Text: "commute?", Weight: 1.0,
			Options: []domain.Option{
				{ID: "a", Text: "daily", Value: 5, Tags: []string{"well-connected"}},
				{ID: "b", Text: "rarely", Value: 2},
			},
		},
		{
			ID: "q-priority", Category: domain.CategoryPriority, Text: "what matters most?", Weight: 1.0,
			Options: []domain.Option{
				{ID: "housing", Text: "home", Target: "housing"},
				{ID: "price", Text: "cost", Target: "price"},
				{ID: "none", Text: "balanced", Target: "none"},
			},
		},
	})
	require.NoError(t, err)
	return qc
}

func answer(q, o string) domain.Answer {
	return domain.Answer{QuestionID: q, OptionID: o, AnsweredAt: time.Now()}
}

func TestComputeProfile_SingleAnswerIdentity(t *testing.T) {
	t.Parallel()

	agg := NewAggregator(testQuestions(t), nil, zerolog.Nop())
	p := agg.ComputeProfile([]domain.Answer{answer("q-housing-1", "a")})

	// value*weight / weight must reduce to the option value exactly.
	require.Equal(t, 4.0, p.Preferences[domain.CategoryHousing])
	require.Equal(t, 0.0, p.Preferences[domain.CategoryTransport])
}

func TestComputeProfile_WeightedAverage(t *testing.T) {
	t.Parallel()

	agg := NewAggregator(testQuestions(t), nil, zerolog.Nop())
	p := agg.ComputeProfile([]domain.Answer{
		answer("q-housing-1", "a"), // 4 * 2.0
		answer("q-housing-2", "a"), // 3 * 1.0
	})

	require.InDelta(t, 11.0/3.0, p.Preferences[domain.CategoryHousing], 1e-9)
}

func TestComputeProfile_UnknownReferencesSkippedButRetained(t *testing.T) {
	t.Parallel()

	agg := NewAggregator(testQuestions(t), nil, zerolog.Nop())
	answers := []domain.Answer{
		answer("nope", "a"),
		answer("q-housing-1", "nope"),
		answer("q-transport-1", "a"),
	}
	p := agg.ComputeProfile(answers)

	require.Equal(t, 0.0, p.Preferences[domain.CategoryHousing])
	require.Equal(t, 5.0, p.Preferences[domain.CategoryTransport])
	// The snapshot keeps every answer verbatim, including stale references.
	require.Len(t, p.Answers, 3)
}

func TestComputeProfile_EmptyAnswers(t *testing.T) {
	t.Parallel()

	agg := NewAggregator(testQuestions(t), nil, zerolog.Nop())
	p := agg.ComputeProfile(nil)

	for _, cat := range domain.Categories {
		require.Equal(t, 0.0, p.Preferences[cat])
		require.Equal(t, 1.0, p.CategoryWeights[cat])
	}
	require.Empty(t, p.Priorities)
	require.Empty(t, p.Answers)
}

func TestComputeProfile_PriorityPresets(t *testing.T) {
	t.Parallel()

	agg := NewAggregator(testQuestions(t), nil, zerolog.Nop())

	t.Run("price", func(t *testing.T) {
		p := agg.ComputeProfile([]domain.Answer{answer("q-priority", "price")})
		require.Equal(t, 3.0, p.CategoryWeights[domain.CategoryPrice])
		require.Equal(t, 2.5, p.CategoryWeights[domain.CategoryHousing])
		require.Equal(t, 0.5, p.CategoryWeights[domain.CategoryTransport])
		require.Equal(t, 0.5, p.CategoryWeights[domain.CategoryCommercial])
		require.Equal(t, 0.5, p.CategoryWeights[domain.CategoryCulture])
	})

	t.Run("housing", func(t *testing.T) {
		p := agg.ComputeProfile([]domain.Answer{answer("q-priority", "housing")})
		require.Equal(t, 2.0, p.CategoryWeights[domain.CategoryHousing])
		require.Equal(t, 2.0, p.CategoryWeights[domain.CategoryPrice])
		require.Equal(t, 0.5, p.CategoryWeights[domain.CategoryCulture])
	})

	t.Run("none overrides baseline", func(t *testing.T) {
		p := agg.ComputeProfile([]domain.Answer{answer("q-priority", "none")})
		for _, cat := range domain.Categories {
			require.Equal(t, 1.0, p.CategoryWeights[cat])
		}
	})
}

func TestComputeProfile_TopTags(t *testing.T) {
	t.Parallel()

	agg := NewAggregator(testQuestions(t), nil, zerolog.Nop())
	p := agg.ComputeProfile([]domain.Answer{
		answer("q-housing-1", "a"), // quiet +2, family-friendly +2
		answer("q-housing-2", "a"), // quiet +1
	})

	// quiet (3.0) beats family-friendly (2.0).
	require.Equal(t, []string{"quiet", "family-friendly"}, p.Priorities)
}

func TestComputeProfile_TagTieBreakByInsertionOrder(t *testing.T) {
	t.Parallel()

	agg := NewAggregator(testQuestions(t), nil, zerolog.Nop())
	// Single answer: both tags get the same 2.0 tally; order of appearance
	// on the option decides.
	p := agg.ComputeProfile([]domain.Answer{answer("q-housing-1", "a")})

	require.Equal(t, []string{"quiet", "family-friendly"}, p.Priorities)
}

func TestWeightPresets_UnknownTokenIsBalanced(t *testing.T) {
	t.Parallel()

	weights := DefaultWeightPresets().Resolve("something-else")
	for _, cat := range domain.Categories {
		require.Equal(t, 1.0, weights[cat])
	}
}
