package main

import (
	"context"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"medlama-backend/internal/ai"
	"medlama-backend/internal/analytics"
	"medlama-backend/internal/chat"
	"medlama-backend/internal/config"
	"medlama-backend/internal/health"
	"medlama-backend/internal/platform/logger"
	"medlama-backend/internal/progress"
	"medlama-backend/internal/quiz"
	"medlama-backend/internal/report"
	"medlama-backend/internal/storage"
	"medlama-backend/internal/user"
)

func main() {
	// 1. Configuration and logging
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logg, err := logger.New(cfg.LogMode)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer logg.Sync()

	if err := cfg.Validate(); err != nil {
		logg.Fatal("configuration invalid", "error", err)
	}

	// 2. Clients and stores
	aiClient := ai.NewGeminiClient(cfg.GeminiAPIKey, ai.GeminiConfig{
		Model:       cfg.GeminiModel,
		Temperature: cfg.Temperature,
		MaxTokens:   cfg.MaxTokens,
	})

	var (
		userRepo     user.Repository
		chatRepo     chat.Repository
		quizRepo     quiz.Repository
		progressRepo progress.Repository
		dbPinger     health.Pinger
	)
	if cfg.MongoURI != "" {
		m, err := storage.Connect(context.Background(), cfg.MongoURI, cfg.DatabaseName)
		if err != nil {
			logg.Fatal("connect to mongodb", "error", err)
		}
		defer m.Close(context.Background())

		userRepo = user.NewMongoRepository(m.DB)
		chatRepo = chat.NewMongoRepository(m.DB)
		quizRepo = quiz.NewMongoRepository(m.DB)
		progressRepo = progress.NewMongoRepository(m.DB)
		dbPinger = m
		logg.Info("connected to mongodb", "database", cfg.DatabaseName)
	} else {
		userRepo = user.NewMemoryRepository()
		chatRepo = chat.NewMemoryRepository()
		quizRepo = quiz.NewMemoryRepository()
		progressRepo = progress.NewMemoryRepository()
		logg.Warn("MONGODB_URI not set, running with in-memory store; data will not survive restarts")
	}

	// 3. Services and handlers
	chatSvc := chat.NewService(chatRepo, aiClient, userRepo, progressRepo, logg)
	chatHandler := chat.NewHandler(chatSvc, logg)

	quizSvc := quiz.NewService(quizRepo, aiClient, userRepo, progressRepo, logg)
	quizHandler := quiz.NewHandler(quizSvc, logg)

	analyticsSvc := analytics.NewService(chatRepo, quizRepo, progressRepo)
	analyticsHandler := analytics.NewHandler(analyticsSvc, logg)

	reportSvc := report.NewService()
	reportHandler := report.NewHandler(reportSvc, chatSvc, logg)

	healthHandler := health.NewHandler(aiClient, dbPinger)

	// 4. Router
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(corsMiddleware(cfg.AllowedOrigins))

	r.Get("/health", healthHandler.Check)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(user.EnsureUser(userRepo, logg))
		r.Route("/chat", func(r chi.Router) {
			chat.RegisterRoutes(r, chatHandler)
			analytics.RegisterRoutes(r, analyticsHandler)
			report.RegisterRoutes(r, reportHandler)
		})
		r.Route("/stream", func(r chi.Router) {
			chat.RegisterStreamRoutes(r, chatHandler)
		})
		r.Route("/quiz", func(r chi.Router) {
			quiz.RegisterRoutes(r, quizHandler)
		})
	})

	logg.Info("server starting", "port", cfg.Port)
	if err := http.ListenAndServe(":"+cfg.Port, r); err != nil {
		logg.Fatal("server stopped", "error", err)
	}
}

func corsMiddleware(allowedOrigins []string) func(http.Handler) http.Handler {
	allowed := make(map[string]struct{}, len(allowedOrigins))
	for _, origin := range allowedOrigins {
		allowed[origin] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if _, ok := allowed[origin]; ok {
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS, PUT, DELETE")
				w.Header().Set("Access-Control-Allow-Headers", "Accept, Content-Type, Content-Length, Accept-Encoding, Authorization, X-User-ID")
				w.Header().Set("Access-Control-Expose-Headers", "X-User-ID")
			}
			if r.Method == http.MethodOptions {
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
