package recommend

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/yshirakawa/station-fit/internal/domain"
	"github.com/yshirakawa/station-fit/internal/scoring"
)

func testStation(id string, r, cost int) domain.Station {
	return domain.Station{
		ID:   id,
		Name: id,
		Features: domain.StationFeatures{
			Housing:    domain.HousingFeatures{RentLevel: cost, FamilyFriendly: r, Quietness: r},
			Transport:  domain.TransportFeatures{Connections: r, Frequency: r, TerminalAccess: r},
			Commercial: domain.CommercialFeatures{Shopping: r, Dining: r},
			Culture:    domain.CultureFeatures{Parks: r, Entertainment: r, Community: r},
			Price:      domain.PriceFeatures{CostOfLiving: cost, DiningCost: cost},
		},
	}
}

func flatProfile(pref float64) domain.UserProfile {
	prefs := make(map[domain.Category]float64)
	weights := make(map[domain.Category]float64)
	for _, cat := range domain.Categories {
		prefs[cat] = pref
		weights[cat] = 1.0
	}
	return domain.UserProfile{Preferences: prefs, CategoryWeights: weights, Priorities: []string{}}
}

func newTestRanker(t *testing.T) *Ranker {
	t.Helper()
	scorer, err := scoring.NewScorer(scoring.DefaultConfig())
	require.NoError(t, err)
	return NewRanker(scorer)
}

func TestTopRecommendations_OrderRanksAndRounding(t *testing.T) {
	t.Parallel()

	r := newTestRanker(t)
	// Catalog order deliberately not score order.
	stations := []domain.Station{
		testStation("mid", 3, 3),
		testStation("best", 5, 1),
		testStation("worst", 1, 5),
	}

	recs := r.TopRecommendations(flatProfile(5), stations, 2)

	require.Len(t, recs, 2)
	require.Equal(t, "best", recs[0].Station.ID)
	require.Equal(t, "mid", recs[1].Station.ID)
	require.Equal(t, 1, recs[0].Rank)
	require.Equal(t, 2, recs[1].Rank)
	require.GreaterOrEqual(t, recs[0].Score, recs[1].Score)
	// All ratings 5 and all costs 1 make a perfect 100; the mid station's
	// sub-scores are uniformly 3, so its base is exactly 60.
	require.Equal(t, 100.0, recs[0].Score)
	require.Equal(t, 60.0, recs[1].Score)
}

func TestTopRecommendations_DefaultK(t *testing.T) {
	t.Parallel()

	r := newTestRanker(t)
	stations := []domain.Station{
		testStation("a", 5, 1),
		testStation("b", 4, 2),
		testStation("c", 3, 3),
		testStation("d", 2, 4),
	}

	recs := r.TopRecommendations(flatProfile(5), stations, 0)
	require.Len(t, recs, DefaultTopK)
}

func TestTopRecommendations_StableTieKeepsCatalogOrder(t *testing.T) {
	t.Parallel()

	r := newTestRanker(t)
	stations := []domain.Station{
		testStation("first", 3, 3),
		testStation("second", 3, 3),
	}

	recs := r.TopRecommendations(flatProfile(5), stations, 2)

	require.Equal(t, recs[0].Score, recs[1].Score)
	require.Equal(t, "first", recs[0].Station.ID)
	require.Equal(t, "second", recs[1].Station.ID)
}

func TestTopRecommendations_Deterministic(t *testing.T) {
	t.Parallel()

	r := newTestRanker(t)
	stations := []domain.Station{
		testStation("a", 4, 2),
		testStation("b", 2, 4),
		testStation("c", 5, 1),
	}
	p := flatProfile(4)

	first := r.TopRecommendations(p, stations, 3)
	second := r.TopRecommendations(p, stations, 3)

	require.Equal(t, first, second)
}

func TestFullRanking_EveryStationRankedWithEmptyExplanations(t *testing.T) {
	t.Parallel()

	r := newTestRanker(t)
	stations := []domain.Station{
		testStation("a", 3, 3),
		testStation("b", 5, 1),
		testStation("c", 1, 5),
	}

	ranking := r.FullRanking(flatProfile(5), stations)

	require.Len(t, ranking, 3)
	for i, rec := range ranking {
		require.Equal(t, i+1, rec.Rank)
		require.Empty(t, rec.Explanation.MatchingFeatures)
		require.Empty(t, rec.Explanation.Strengths)
		require.Empty(t, rec.Explanation.Considerations)
		if i > 0 {
			require.LessOrEqual(t, rec.Score, ranking[i-1].Score)
		}
	}
}

func TestFullRanking_AgreesWithTopRecommendationsPrefix(t *testing.T) {
	t.Parallel()

	r := newTestRanker(t)
	stations := []domain.Station{
		testStation("a", 2, 4),
		testStation("b", 5, 1),
		testStation("c", 4, 2),
		testStation("d", 1, 5),
	}
	p := flatProfile(5)

	top := r.TopRecommendations(p, stations, 2)
	full := r.FullRanking(p, stations)

	for i := range top {
		require.Equal(t, full[i].Station.ID, top[i].Station.ID)
		require.Equal(t, full[i].Score, top[i].Score)
		require.Equal(t, full[i].Rank, top[i].Rank)
	}
}

func TestScoreAll_CoversEveryStationWithinRange(t *testing.T) {
	t.Parallel()

	r := newTestRanker(t)
	stations := []domain.Station{
		testStation("a", 5, 1),
		testStation("b", 3, 3),
		testStation("c", 1, 5),
	}

	scores := r.ScoreAll(flatProfile(5), stations)

	require.Len(t, scores, 3)
	for id, score := range scores {
		require.GreaterOrEqual(t, score, 0.0, id)
		require.LessOrEqual(t, score, 100.0, id)
	}
}

func TestExplain_StrengthsGatedByPreference(t *testing.T) {
	t.Parallel()

	r := newTestRanker(t)
	st := testStation("great", 5, 1)

	// A user who only cares about transport should not hear about housing.
	p := domain.UserProfile{
		Preferences: map[domain.Category]float64{
			domain.CategoryTransport: 5,
		},
	}
	ex := r.Explain(p, st)

	require.Contains(t, ex.MatchingFeatures, "well-connected station")
	require.NotContains(t, ex.MatchingFeatures, "family-friendly housing")
	for _, s := range ex.Strengths {
		require.NotContains(t, s, "family")
	}
}

func TestExplain_PriorityTagPraise(t *testing.T) {
	t.Parallel()

	r := newTestRanker(t)
	st := testStation("great", 5, 1)

	p := flatProfile(5)
	p.Priorities = []string{"family-friendly", "affordable"}

	ex := r.Explain(p, st)

	require.Contains(t, ex.MatchingFeatures, "matches your priority: family-friendly")
	require.Contains(t, ex.MatchingFeatures, "matches your priority: affordable")
	require.NotEmpty(t, ex.Strengths)
	require.Empty(t, ex.Considerations)
}

func TestExplain_ExpensiveStationGetsConsiderations(t *testing.T) {
	t.Parallel()

	r := newTestRanker(t)
	st := testStation("pricey", 5, 5)

	ex := r.Explain(flatProfile(5), st)

	require.Contains(t, ex.Considerations, "Rent is on the high side")
	require.Contains(t, ex.Considerations, "Day-to-day costs run high here")
}

func TestExplain_BalancedFallback(t *testing.T) {
	t.Parallel()

	r := newTestRanker(t)
	st := testStation("average", 3, 3)

	ex := r.Explain(flatProfile(5), st)

	require.Empty(t, ex.MatchingFeatures)
	require.Empty(t, ex.Strengths)
	require.Equal(t, []string{"A balanced area without a single standout feature"}, ex.Considerations)
}
