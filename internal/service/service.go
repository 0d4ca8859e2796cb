// Package service exposes the session-facing quiz operations: answer
// submission, profile computation with caching, and recommendation queries.
package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/yshirakawa/station-fit/internal/catalog"
	"github.com/yshirakawa/station-fit/internal/domain"
	"github.com/yshirakawa/station-fit/internal/profile"
	"github.com/yshirakawa/station-fit/internal/recommend"
	"github.com/yshirakawa/station-fit/internal/session"
)

type Service struct {
	questions  *catalog.QuestionCatalog
	stations   *catalog.StationCatalog
	aggregator *profile.Aggregator
	ranker     *recommend.Ranker
	sessions   session.Store
	logger     zerolog.Logger

	// Per-session locks serialize read-modify-write cycles on a session's
	// answer list so concurrent submissions to one session cannot lose
	// updates. Scoring and ranking are pure and need no locking.
	locksMu sync.Mutex
	locks   map[string]*sync.Mutex
}

func New(
	questions *catalog.QuestionCatalog,
	stations *catalog.StationCatalog,
	aggregator *profile.Aggregator,
	ranker *recommend.Ranker,
	sessions session.Store,
	logger zerolog.Logger,
) *Service {
	return &Service{
		questions:  questions,
		stations:   stations,
		aggregator: aggregator,
		ranker:     ranker,
		sessions:   sessions,
		logger:     logger.With().Str("component", "service").Logger(),
		locks:      make(map[string]*sync.Mutex),
	}
}

func (s *Service) sessionLock(sessionID string) *sync.Mutex {
	s.locksMu.Lock()
	defer s.locksMu.Unlock()

	mu, ok := s.locks[sessionID]
	if !ok {
		mu = &sync.Mutex{}
		s.locks[sessionID] = mu
	}
	return mu
}

func (s *Service) dropSessionLock(sessionID string) {
	s.locksMu.Lock()
	defer s.locksMu.Unlock()
	delete(s.locks, sessionID)
}

// StartSession creates an empty session and returns its id.
func (s *Service) StartSession(ctx context.Context) (string, error) {
	id := uuid.NewString()
	if err := s.sessions.Put(ctx, id, session.State{}); err != nil {
		return "", fmt.Errorf("create session: %w", err)
	}
	s.logger.Debug().Str("session_id", id).Msg("session started")
	return id, nil
}

// SubmitAnswer validates the referenced question and option against the
// catalog and retains the answer. Re-answering a question replaces the prior
// answer (last-write-wins by question id). The cached profile, if any, is
// invalidated.
func (s *Service) SubmitAnswer(ctx context.Context, sessionID, questionID, optionID string) error {
	q, ok := s.questions.Question(questionID)
	if !ok {
		return fmt.Errorf("%w: %s", catalog.ErrUnknownQuestion, questionID)
	}
	if _, ok := s.questions.Option(questionID, optionID); !ok {
		return fmt.Errorf("%w: %s for question %s", catalog.ErrUnknownOption, optionID, questionID)
	}

	mu := s.sessionLock(sessionID)
	mu.Lock()
	defer mu.Unlock()

	state, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return err
	}

	answer := domain.Answer{
		QuestionID: questionID,
		OptionID:   optionID,
		AnsweredAt: time.Now().UTC(),
	}

	replaced := false
	for i, a := range state.Answers {
		if a.QuestionID == questionID {
			state.Answers[i] = answer
			replaced = true
			break
		}
	}
	if !replaced {
		state.Answers = append(state.Answers, answer)
	}

	state.Profile = nil

	if err := s.sessions.Put(ctx, sessionID, state); err != nil {
		return fmt.Errorf("store answer: %w", err)
	}

	s.logger.Debug().
		Str("session_id", sessionID).
		Str("question_id", questionID).
		Str("category", string(q.Category)).
		Bool("replaced", replaced).
		Msg("answer submitted")
	return nil
}

// Profile returns the session's preference profile, computing and caching it
// on first read after the latest answer. Subsequent reads return the cached
// profile unchanged.
func (s *Service) Profile(ctx context.Context, sessionID string) (*domain.UserProfile, error) {
	mu := s.sessionLock(sessionID)
	mu.Lock()
	defer mu.Unlock()

	state, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	if state.Profile != nil {
		return state.Profile, nil
	}

	p := s.aggregator.ComputeProfile(state.Answers)
	state.Profile = &p
	if err := s.sessions.Put(ctx, sessionID, state); err != nil {
		return nil, fmt.Errorf("cache profile: %w", err)
	}
	return state.Profile, nil
}

// AnswerCount returns how many questions the session has answered, together
// with the catalog size, for progress reporting.
func (s *Service) AnswerCount(ctx context.Context, sessionID string) (answered, total int, err error) {
	state, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return 0, 0, err
	}
	return len(state.Answers), s.questions.Len(), nil
}

// ScoreAll returns the compatibility score for every valid station.
func (s *Service) ScoreAll(ctx context.Context, sessionID string) (map[string]float64, error) {
	p, err := s.Profile(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return s.ranker.ScoreAll(*p, s.stations.Stations()), nil
}

// TopRecommendations returns the k best-matching stations with explanations.
func (s *Service) TopRecommendations(ctx context.Context, sessionID string, k int) ([]domain.Recommendation, error) {
	p, err := s.Profile(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return s.ranker.TopRecommendations(*p, s.stations.Stations(), k), nil
}

// FullRanking ranks every station without explanations.
func (s *Service) FullRanking(ctx context.Context, sessionID string) ([]domain.Recommendation, error) {
	p, err := s.Profile(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return s.ranker.FullRanking(*p, s.stations.Stations()), nil
}

// Explain generates the justification bundle for one station.
func (s *Service) Explain(ctx context.Context, sessionID, stationID string) (domain.Explanation, error) {
	st, ok := s.stations.Station(stationID)
	if !ok {
		return domain.Explanation{}, fmt.Errorf("%w: %s", catalog.ErrUnknownStation, stationID)
	}

	p, err := s.Profile(ctx, sessionID)
	if err != nil {
		return domain.Explanation{}, err
	}
	return s.ranker.Explain(*p, st), nil
}

// ClearSession destroys the session's answers and cached profile.
func (s *Service) ClearSession(ctx context.Context, sessionID string) error {
	mu := s.sessionLock(sessionID)
	mu.Lock()
	defer mu.Unlock()

	if err := s.sessions.Delete(ctx, sessionID); err != nil {
		return err
	}
	s.dropSessionLock(sessionID)
	s.logger.Debug().Str("session_id", sessionID).Msg("session cleared")
	return nil
}
