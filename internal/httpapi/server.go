// Package httpapi is the HTTP host layer over the quiz service. It owns JSON
// shaping and status-code mapping; all domain logic lives below it.
package httpapi

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/yshirakawa/station-fit/internal/catalog"
	"github.com/yshirakawa/station-fit/internal/domain"
	"github.com/yshirakawa/station-fit/internal/service"
	"github.com/yshirakawa/station-fit/internal/session"
)

type Server struct {
	svc       *service.Service
	questions *catalog.QuestionCatalog
	stations  StationDirectory
	logger    zerolog.Logger
	rateLimit int
	defaultK  int
	maxK      int
}

type Options struct {
	// RateLimit is requests per minute per client IP; 0 disables limiting.
	RateLimit int
	DefaultK  int
	MaxK      int
}

func NewServer(svc *service.Service, questions *catalog.QuestionCatalog, stations StationDirectory, logger zerolog.Logger, opts Options) *Server {
	if opts.DefaultK <= 0 {
		opts.DefaultK = 3
	}
	if opts.MaxK < opts.DefaultK {
		opts.MaxK = opts.DefaultK
	}
	return &Server{
		svc:       svc,
		questions: questions,
		stations:  stations,
		logger:    logger.With().Str("component", "httpapi").Logger(),
		rateLimit: opts.RateLimit,
		defaultK:  opts.DefaultK,
		maxK:      opts.MaxK,
	}
}

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete},
		AllowedHeaders: []string{"Content-Type"},
	}))
	if s.rateLimit > 0 {
		r.Use(httprate.LimitByIP(s.rateLimit, time.Minute))
	}

	r.Get("/health", s.handleHealth)
	r.Get("/questions", s.handleQuestionsList)
	r.Get("/stations", s.handleStationsList)
	r.Get("/stations/{stationID}", s.handleStationGet)

	r.Route("/sessions", func(r chi.Router) {
		r.Post("/", s.handleSessionCreate)
		r.Route("/{sessionID}", func(r chi.Router) {
			r.Delete("/", s.handleSessionDelete)
			r.Post("/answers", s.handleAnswerSubmit)
			r.Get("/profile", s.handleProfile)
			r.Get("/scores", s.handleScores)
			r.Get("/recommendations", s.handleRecommendations)
			r.Get("/recommendations/{stationID}", s.handleExplain)
			r.Get("/ranking", s.handleRanking)
		})
	})

	return r
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("elapsed", time.Since(start)).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("request")
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleQuestionsList(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"questions": s.questions.Questions(),
		"total":     s.questions.Len(),
	})
}

type stationsListResponse struct {
	Limit  int              `json:"limit"`
	Offset int              `json:"offset"`
	Total  int              `json:"total"`
	Items  []domain.Station `json:"items"`
}

func (s *Server) handleStationsList(w http.ResponseWriter, r *http.Request) {
	limit, offset := parseLimitOffset(r, 20, 0)

	q := r.URL.Query()
	filter := catalog.StationFilter{
		NameContains: q.Get("name"),
		Sort:         q.Get("sort"),
	}
	if v, err := strconv.Atoi(q.Get("max_rent")); err == nil {
		filter.MaxRentLevel = v
	}
	if v, err := strconv.Atoi(q.Get("min_connections")); err == nil {
		filter.MinConnections = v
	}

	items, total, err := s.stations.List(r.Context(), limit, offset, filter)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if items == nil {
		items = []domain.Station{}
	}
	writeJSON(w, http.StatusOK, stationsListResponse{Limit: limit, Offset: offset, Total: total, Items: items})
}

func (s *Server) handleStationGet(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "stationID")

	st, ok, err := s.stations.Get(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if !ok {
		writeJSON(w, http.StatusNotFound, errorBody("unknown_station", "station not found"))
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (s *Server) handleSessionCreate(w http.ResponseWriter, r *http.Request) {
	id, err := s.svc.StartSession(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"session_id": id})
}

func (s *Server) handleSessionDelete(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.ClearSession(r.Context(), chi.URLParam(r, "sessionID")); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

type submitAnswerRequest struct {
	QuestionID string `json:"question_id"`
	OptionID   string `json:"option_id"`
}

func (s *Server) handleAnswerSubmit(w http.ResponseWriter, r *http.Request) {
	var req submitAnswerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid_json", "request body is not valid JSON"))
		return
	}
	if req.QuestionID == "" || req.OptionID == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("missing_fields", "question_id and option_id are required"))
		return
	}

	if err := s.svc.SubmitAnswer(r.Context(), chi.URLParam(r, "sessionID"), req.QuestionID, req.OptionID); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "accepted"})
}

type profileResponse struct {
	Profile  *domain.UserProfile `json:"profile"`
	Answered int                 `json:"answered"`
	Total    int                 `json:"total"`
}

func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	p, err := s.svc.Profile(r.Context(), sessionID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	answered, total, err := s.svc.AnswerCount(r.Context(), sessionID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, profileResponse{Profile: p, Answered: answered, Total: total})
}

func (s *Server) handleScores(w http.ResponseWriter, r *http.Request) {
	scores, err := s.svc.ScoreAll(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"scores": scores})
}

func (s *Server) handleRecommendations(w http.ResponseWriter, r *http.Request) {
	k := s.defaultK
	if v := r.URL.Query().Get("k"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			k = parsed
		}
	}
	if k > s.maxK {
		k = s.maxK
	}

	recs, err := s.svc.TopRecommendations(r.Context(), chi.URLParam(r, "sessionID"), k)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"recommendations": recs})
}

func (s *Server) handleRanking(w http.ResponseWriter, r *http.Request) {
	recs, err := s.svc.FullRanking(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ranking": recs})
}

func (s *Server) handleExplain(w http.ResponseWriter, r *http.Request) {
	ex, err := s.svc.Explain(r.Context(), chi.URLParam(r, "sessionID"), chi.URLParam(r, "stationID"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ex)
}

// writeError maps domain errors to status codes. Validation errors surface
// where they were caused; anything unrecognized is a 500.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, session.ErrSessionNotFound):
		writeJSON(w, http.StatusNotFound, errorBody("session_not_found", err.Error()))
	case errors.Is(err, catalog.ErrUnknownStation):
		writeJSON(w, http.StatusNotFound, errorBody("unknown_station", err.Error()))
	case errors.Is(err, catalog.ErrUnknownQuestion):
		writeJSON(w, http.StatusBadRequest, errorBody("unknown_question", err.Error()))
	case errors.Is(err, catalog.ErrUnknownOption):
		writeJSON(w, http.StatusBadRequest, errorBody("unknown_option", err.Error()))
	default:
		s.logger.Error().
			Err(err).
			Str("path", r.URL.Path).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("request failed")
		writeJSON(w, http.StatusInternalServerError, errorBody("internal", "internal error"))
	}
}

func errorBody(code, message string) map[string]string {
	return map[string]string{"error": code, "message": message}
}

func parseLimitOffset(r *http.Request, defLimit, defOffset int) (int, int) {
	q := r.URL.Query()

	limit := defLimit
	if v := q.Get("limit"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			limit = parsed
		}
	}
	if limit <= 0 {
		limit = defLimit
	}
	// safety cap
	if limit > 200 {
		limit = 200
	}

	offset := defOffset
	if v := q.Get("offset"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			offset = parsed
		}
	}
	if offset < 0 {
		offset = defOffset
	}

	return limit, offset
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
