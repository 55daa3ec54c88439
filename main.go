package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	gorilllaHandlers "github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/gorilla/sessions"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"almostArchiveAPI/handlers"
	"almostArchiveAPI/internal/config"
	"almostArchiveAPI/internal/docstore"
	"almostArchiveAPI/internal/identity"
	"almostArchiveAPI/internal/logger"
	statstypes "almostArchiveAPI/internal/types/stats"
	"almostArchiveAPI/internal/types/story"
	"almostArchiveAPI/internal/validation"
	"almostArchiveAPI/internal/workers"
	"almostArchiveAPI/middleware"
	"almostArchiveAPI/services"
)

var (
	cfg             *config.Config
	store           docstore.Store
	sessionStore    sessions.Store
	storyService    *services.StoryService
	commentService  *services.CommentService
	reactionService *services.ReactionService
	statsService    *services.StatsService
)

func init() {
	foundEnv := config.LoadDotEnv()

	var err error
	cfg, err = config.Load()
	if err != nil {
		log.Fatal("Invalid configuration: ", err)
	}
	if err := cfg.ValidateSessions(); err != nil {
		log.Fatal("Invalid configuration: ", err)
	}
	if err := logger.Init(cfg.LogLevel, cfg.LogFormat); err != nil {
		log.Fatal(err)
	}
	if !foundEnv {
		logger.Log.Info("dotenv_missing")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	store, err = cfg.OpenStore(ctx)
	if err != nil {
		logger.Log.Fatal("store_open_failed", zap.String("backend", cfg.StoreBackend), zap.Error(err))
	}
	logger.Log.Info("store_opened", zap.String("backend", cfg.StoreBackend))

	sessionStore, err = identity.NewSessionStore(cfg.SessionStore, cfg.SessionSecret, cfg.SessionDir)
	if err != nil {
		logger.Log.Fatal("session_store_failed", zap.Error(err))
	}

	validator := validation.New()
	storyService = services.NewStoryService(store, validator)
	commentService = services.NewCommentService(store, validator)
	reactionService = services.NewReactionService(store)
	statsService = services.NewStatsService(store, storyService, commentService)

	middleware.InitPrometheus()
}

func main() {
	defer logger.Sync()
	defer func() {
		logger.Log.Info("closing_store")
		if err := store.Close(); err != nil {
			logger.Log.Warn("store_close_failed", zap.Error(err))
		}
	}()

	storyHandler := handlers.NewStoryHandler(storyService, commentService, reactionService)
	reactionHandler := handlers.NewReactionHandler(reactionService)
	commentHandler := handlers.NewCommentHandler(commentService)
	statsHandler := handlers.NewStatsHandler(statsService)

	rootCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	r := mux.NewRouter()
	r.Use(middleware.MonitorMiddleware)

	limiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	go limiter.CleanupVisitors(rootCtx)

	if cfg.StatsRefresh > 0 {
		workers.StartStatsRefresher(rootCtx, statsService, cfg.StatsRefresh)
	}

	r.Handle("/metrics", middleware.BasicAuthMiddleware(cfg.MetricsUser, cfg.MetricsPass)(promhttp.Handler()))

	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		_, err := store.Get(ctx, story.CollectionSiteStats, statstypes.CurrentDocID)
		if err != nil && !errors.Is(err, docstore.ErrNotFound) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"status": "unhealthy", "error": "document store unreachable"}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status": "healthy", "service": "almost-archive-api"}`))
	}).Methods("GET")

	// -------------------------------------------------------------------------
	// API V1 SUBROUTER
	// -------------------------------------------------------------------------
	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(limiter.Middleware)
	api.Use(middleware.IdentityMiddleware(sessionStore))

	api.HandleFunc("/stories", storyHandler.ListStories).Methods("GET")
	api.HandleFunc("/stories", storyHandler.SubmitStory).Methods("POST")
	api.HandleFunc("/stories/tags", storyHandler.GetTags).Methods("GET")
	api.HandleFunc("/stories/{id}", storyHandler.GetStory).Methods("GET")
	api.HandleFunc("/stories/{id}/like", storyHandler.LikeStory).Methods("POST")
	api.HandleFunc("/stories/{id}/reactions", reactionHandler.React).Methods("POST")
	api.HandleFunc("/stories/{id}/comments", commentHandler.ListComments).Methods("GET")
	api.HandleFunc("/stories/{id}/comments", commentHandler.SubmitComment).Methods("POST")
	api.HandleFunc("/comments/{id}/hearts", commentHandler.HeartComment).Methods("POST")

	api.HandleFunc("/stats", statsHandler.GetStats).Methods("GET")
	api.HandleFunc("/moods", statsHandler.GetMoods).Methods("GET")
	api.HandleFunc("/reactions", reactionHandler.GetReactionOptions).Methods("GET")

	if cfg.StaticDir != "" {
		r.PathPrefix("/").Handler(http.FileServer(http.Dir(cfg.StaticDir)))
		logger.Log.Info("serving_static", zap.String("dir", cfg.StaticDir))
	}

	// CORS configuration
	corsHandler := middleware.CORS(cfg.AllowedOrigins)
	recovery := gorilllaHandlers.RecoveryHandler(gorilllaHandlers.PrintRecoveryStack(true))

	port := ":" + cfg.Port
	server := http.Server{
		Addr:         port,
		Handler:      recovery(corsHandler(r)),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logger.Log.Info("server_starting", zap.String("addr", port))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Fatal("server_failed", zap.Error(err))
		}
	}()

	<-rootCtx.Done()
	logger.Log.Info("shutdown_signal")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Log.Error("server_shutdown_failed", zap.Error(err))
	}

	logger.Log.Info("server_shutdown_complete")
}
