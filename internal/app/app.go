package app

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/markdave123-py/NexSupply/internal/api/handlers"
	middleware "github.com/markdave123-py/NexSupply/internal/api/middlewares"
	"github.com/markdave123-py/NexSupply/internal/api/views"
	"github.com/markdave123-py/NexSupply/internal/config"
	"github.com/markdave123-py/NexSupply/internal/core"
	db "github.com/markdave123-py/NexSupply/internal/core/database"
	"github.com/markdave123-py/NexSupply/internal/core/extraction"
	"github.com/markdave123-py/NexSupply/internal/core/llm"
	"github.com/markdave123-py/NexSupply/internal/core/mailer"
	objectclient "github.com/markdave123-py/NexSupply/internal/core/object-client"
	"github.com/markdave123-py/NexSupply/internal/platform/logger"
	"github.com/markdave123-py/NexSupply/internal/services"
	"github.com/markdave123-py/NexSupply/internal/session"
)

type App struct {
	DBClient *db.DatabaseClient
	Analyzer *llm.GeminiLLM
	Sessions session.Store
	Server   *Server
	log      *logger.Logger
}

// NewApp wires every collaborator. Missing optional configuration never
// fails startup; the matching feature is disabled and logged.
func NewApp(ctx context.Context, cfg *config.Config, log *logger.Logger) (*App, error) {
	appCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	for name, ok := range cfg.Validate() {
		if !ok {
			log.Warn("integration not configured", "integration", name)
		}
	}

	dbClient := db.NewDatabaseClient(cfg.DatabaseURL)
	if dbClient.Available() {
		log.Info("database configured; connecting on first use")
	}

	extractor := extraction.NewDocconvExtractor(false, extraction.DefaultMaxChars)

	var analyzer core.Analyzer
	gemini, err := llm.NewGeminiLLM(appCtx, cfg.AIAPIKey, cfg.GenModel, extractor, log)
	switch {
	case err == nil:
		analyzer = gemini
		log.Info("analyzer ready", "model", cfg.GenModel)
	case errors.Is(err, llm.ErrNoAPIKey):
	default:
		return nil, err
	}

	var storage core.ObjectClient
	s3Client, err := objectclient.NewS3Client(appCtx, cfg)
	switch {
	case err == nil:
		storage = s3Client
		log.Info("upload archive ready", "bucket", cfg.BucketName)
	case errors.Is(err, objectclient.ErrNotConfigured):
	default:
		log.Warn("upload archive disabled", "error", err.Error())
	}

	var mail core.Mailer
	sg, err := mailer.New(log, mailer.Config{APIKey: cfg.SendGridAPIKey, FromEmail: cfg.SendGridFromEmail, FromName: "NexSupply"})
	if err == nil {
		mail = sg
	}

	sessions := newSessionStore(appCtx, cfg, log)

	renderer, err := views.New()
	if err != nil {
		return nil, err
	}

	validate := validator.New()
	projects := services.NewProjectService(dbClient)
	uploads := services.NewUploadService(storage, cfg.BucketName)
	analysis := services.NewAnalysisService(analyzer, projects, uploads, log, services.AnalysisOptions{
		Timeout:      cfg.GeminiTimeout,
		SupportEmail: cfg.ConsultationEmail,
	})
	consult := services.NewConsultationService(mail, cfg.ConsultationEmail, validate)

	pages := handlers.NewPageHandler(sessions, renderer, analysis, projects, consult, validate, log, handlers.PageConfig{
		SupportEmail: cfg.ConsultationEmail,
		StoreURL:     cfg.LemonSqueezyStoreURL,
	})
	projectAPI := handlers.NewProjectHandler(projects, validate, log)
	health := handlers.NewHealthHandler(cfg.Validate())
	auth := middleware.NewAuth(cfg.SupabaseJWTSecret)

	server := NewServer(cfg, log, auth, pages, projectAPI, health)

	return &App{DBClient: dbClient, Analyzer: gemini, Sessions: sessions, Server: server, log: log}, nil
}

func newSessionStore(ctx context.Context, cfg *config.Config, log *logger.Logger) session.Store {
	if strings.TrimSpace(cfg.RedisURL) == "" {
		return session.NewMemoryStore(session.DefaultTTL)
	}
	rs, err := session.NewRedisStoreFromURL(ctx, cfg.RedisURL, session.DefaultTTL)
	if err != nil {
		log.Warn("redis sessions unavailable; using in-memory sessions", "error", err.Error())
		return session.NewMemoryStore(session.DefaultTTL)
	}
	log.Info("redis sessions ready")
	return rs
}

func (a *App) Close() {
	if a.DBClient != nil {
		if err := a.DBClient.Close(); err != nil {
			a.log.Warn("database close failed", "error", err.Error())
		}
	}
	if a.Analyzer != nil {
		_ = a.Analyzer.Close()
	}
	if rs, ok := a.Sessions.(*session.RedisStore); ok {
		_ = rs.Close()
	}
}
