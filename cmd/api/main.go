package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"

	"github.com/yshirakawa/station-fit/internal/catalog"
	"github.com/yshirakawa/station-fit/internal/config"
	"github.com/yshirakawa/station-fit/internal/httpapi"
	"github.com/yshirakawa/station-fit/internal/logging"
	"github.com/yshirakawa/station-fit/internal/profile"
	"github.com/yshirakawa/station-fit/internal/recommend"
	"github.com/yshirakawa/station-fit/internal/scoring"
	"github.com/yshirakawa/station-fit/internal/service"
	"github.com/yshirakawa/station-fit/internal/session"
)

func main() {
	cfg, err := config.Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		// Logger is not configured yet.
		fallback := zerolog.New(os.Stderr)
		fallback.Fatal().Err(err).Msg("load config")
	}

	logger := logging.New(logging.Config{Level: cfg.Log.Level, Format: cfg.Log.Format})

	questions, stations, directory, cleanup := loadCatalogs(cfg, logger)
	defer cleanup()

	store, storeCleanup := newSessionStore(cfg, logger)
	defer storeCleanup()

	scorer, err := scoring.NewScorer(scoring.DefaultConfig())
	if err != nil {
		logger.Fatal().Err(err).Msg("build scorer")
	}
	aggregator := profile.NewAggregator(questions, profile.DefaultWeightPresets(), logger)
	ranker := recommend.NewRanker(scorer)
	svc := service.New(questions, stations, aggregator, ranker, store, logger)

	srv := httpapi.NewServer(svc, questions, directory, logger, httpapi.Options{
		RateLimit: cfg.Server.RateLimit,
		DefaultK:  cfg.Recommend.DefaultK,
		MaxK:      cfg.Recommend.MaxK,
	})

	httpServer := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      srv.Routes(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info().Str("address", cfg.Server.Address).Msg("API listening")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	<-ctx.Done()
	logger.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("shutdown")
	}
}

func loadCatalogs(cfg *config.Config, logger zerolog.Logger) (*catalog.QuestionCatalog, *catalog.StationCatalog, httpapi.StationDirectory, func()) {
	rawQuestions, err := catalog.LoadQuestionsFromFile(cfg.Data.QuestionsPath)
	if err != nil {
		logger.Fatal().Err(err).Msg("load questions")
	}
	questions, err := catalog.NewQuestionCatalog(rawQuestions)
	if err != nil {
		logger.Fatal().Err(err).Msg("build question catalog")
	}

	rawStations, err := catalog.LoadStationsFromFile(cfg.Data.StationsPath)
	if err != nil {
		logger.Fatal().Err(err).Msg("load stations")
	}
	stations := catalog.NewStationCatalog(rawStations, logger)
	if stations.Len() == 0 {
		logger.Fatal().Msg("no valid stations in catalog")
	}

	cleanup := func() {}
	var directory httpapi.StationDirectory = &httpapi.CatalogDirectory{Catalog: stations}

	if cfg.SQLite.Path != "" {
		sqlStore, err := catalog.OpenSQLite(cfg.SQLite.Path)
		if err != nil {
			logger.Fatal().Err(err).Msg("open sqlite")
		}
		if err := sqlStore.EnsureSchema(); err != nil {
			logger.Fatal().Err(err).Msg("ensure sqlite schema")
		}
		// Seed only validated stations; incomplete records never reach SQLite.
		if err := sqlStore.UpsertMany(stations.Stations()); err != nil {
			logger.Fatal().Err(err).Msg("seed stations")
		}
		directory = &httpapi.SQLiteDirectory{Store: sqlStore}
		cleanup = func() { _ = sqlStore.Close() }

		n, err := sqlStore.CountStations()
		if err == nil {
			logger.Info().Int("stations", n).Msg("sqlite catalog ready")
		}
	}

	logger.Info().
		Int("questions", questions.Len()).
		Int("stations", stations.Len()).
		Msg("catalogs loaded")

	return questions, stations, directory, cleanup
}

func newSessionStore(cfg *config.Config, logger zerolog.Logger) (session.Store, func()) {
	if cfg.Session.Backend == "badger" {
		store, err := session.OpenBadger(cfg.Session.BadgerDir)
		if err != nil {
			logger.Fatal().Err(err).Msg("open badger session store")
		}
		logger.Info().Str("dir", cfg.Session.BadgerDir).Msg("badger session store ready")
		return store, func() { _ = store.Close() }
	}
	return session.NewMemoryStore(), func() {}
}
