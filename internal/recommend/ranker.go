// Package recommend ranks scored stations and generates human-readable
// justification bullets for the top picks.
package recommend

import (
	"math"
	"sort"

	"github.com/yshirakawa/station-fit/internal/domain"
	"github.com/yshirakawa/station-fit/internal/scoring"
)

// DefaultTopK is how many recommendations a shortlist carries when the caller
// does not ask for a specific count.
const DefaultTopK = 3

type Ranker struct {
	scorer *scoring.Scorer
}

func NewRanker(scorer *scoring.Scorer) *Ranker {
	return &Ranker{scorer: scorer}
}

// ScoreAll scores every station against the profile.
func (r *Ranker) ScoreAll(p domain.UserProfile, stations []domain.Station) map[string]float64 {
	scores := make(map[string]float64, len(stations))
	for _, st := range stations {
		scores[st.ID] = r.scorer.Score(p, st)
	}
	return scores
}

// TopRecommendations scores every station, orders them by score descending
// (stable: ties keep catalog order) and returns the first k with ranks,
// rounded scores, and explanations attached. Deterministic and idempotent.
func (r *Ranker) TopRecommendations(p domain.UserProfile, stations []domain.Station, k int) []domain.Recommendation {
	if k <= 0 {
		k = DefaultTopK
	}

	ranked := r.rank(p, stations)
	if len(ranked) > k {
		ranked = ranked[:k]
	}
	for i := range ranked {
		ranked[i].Explanation = r.Explain(p, ranked[i].Station)
	}
	return ranked
}

// FullRanking returns every station ranked 1..N with empty explanation
// bundles: explanations are verbose and only produced for the shortlist.
func (r *Ranker) FullRanking(p domain.UserProfile, stations []domain.Station) []domain.Recommendation {
	return r.rank(p, stations)
}

func (r *Ranker) rank(p domain.UserProfile, stations []domain.Station) []domain.Recommendation {
	type scored struct {
		station domain.Station
		score   float64
	}

	items := make([]scored, 0, len(stations))
	for _, st := range stations {
		items = append(items, scored{station: st, score: r.scorer.Score(p, st)})
	}

	sort.SliceStable(items, func(i, j int) bool { return items[i].score > items[j].score })

	out := make([]domain.Recommendation, 0, len(items))
	for i, it := range items {
		out = append(out, domain.Recommendation{
			Station: it.station,
			Score:   round2(it.score),
			Rank:    i + 1,
			Explanation: domain.Explanation{
				MatchingFeatures: []string{},
				Strengths:        []string{},
				Considerations:   []string{},
			},
		})
	}
	return out
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
