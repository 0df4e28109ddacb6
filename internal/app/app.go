// Package app wires configuration, storage and services into one process.
package app

import (
	"fmt"
	"time"

	"kollab-api/internal/auth"
	"kollab-api/internal/autoupdate"
	"kollab-api/internal/config"
	"kollab-api/internal/database"
	"kollab-api/internal/handlers"
	"kollab-api/internal/mailer"
	"kollab-api/internal/profiles"
	"kollab-api/internal/realtime"
	"kollab-api/internal/repository"
	"kollab-api/internal/routes"
	"kollab-api/internal/services"
	"kollab-api/internal/summary"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type App struct {
	Config     config.Config
	Log        *zap.SugaredLogger
	DB         *gorm.DB
	Store      *repository.Store
	Profiles   *profiles.Resolver
	Workflows  *services.WorkflowService
	Tasks      *services.TaskService
	Accounts   *services.AccountService
	Hub        *realtime.Hub
	Summarizer summary.Summarizer
	Mailer     mailer.Mailer
	Dispatcher *autoupdate.Dispatcher
	Tokens     *auth.Tokens
	Identity   *auth.ProviderVerifier
}

// Open connects to the configured database and builds the App on it.
func Open(cfg config.Config, log *zap.SugaredLogger) (*App, error) {
	db, err := database.Open(cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	return New(cfg, log, db)
}

// New builds the App on an existing connection.
func New(cfg config.Config, log *zap.SugaredLogger, db *gorm.DB) (*App, error) {
	summarizer, err := newSummarizer(cfg, log)
	if err != nil {
		return nil, err
	}

	store := repository.NewStore(db)
	hub := realtime.NewHub()
	resolver := profiles.NewResolver(store, log.Named("profiles"), profiles.Options{TTL: cfg.ProfileCacheTTL})
	deps := services.Deps{Store: store, Events: hub, Now: time.Now, Log: log.Named("services")}
	mail := newMailer(cfg, log)

	var identity *auth.ProviderVerifier
	if cfg.AuthProviderSecret != "" {
		identity = auth.NewProviderVerifier(cfg.AuthProviderSecret, cfg.AuthProviderIssuer)
	} else {
		log.Warn("AUTH_PROVIDER_SECRET not set; login is disabled")
	}

	return &App{
		Config:     cfg,
		Log:        log,
		DB:         db,
		Store:      store,
		Profiles:   resolver,
		Workflows:  services.NewWorkflowService(deps),
		Tasks:      services.NewTaskService(deps, resolver),
		Accounts:   services.NewAccountService(deps, resolver),
		Hub:        hub,
		Summarizer: summarizer,
		Mailer:     mail,
		Dispatcher: autoupdate.NewDispatcher(store, summarizer, mail, cfg.MailFrom, time.Now, log.Named("autoupdate")),
		Tokens:     auth.NewTokens(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTAudience),
		Identity:   identity,
	}, nil
}

// Router returns the HTTP routes bound to this App.
func (a *App) Router() *gin.Engine {
	h := handlers.New(handlers.Options{
		Workflows:  a.Workflows,
		Tasks:      a.Tasks,
		Accounts:   a.Accounts,
		Profiles:   a.Profiles,
		Summarizer: a.Summarizer,
		Dispatcher: a.Dispatcher,
		Hub:        a.Hub,
		Tokens:     a.Tokens,
		Identity:   a.Identity,
		Log:        a.Log.Named("http"),
	})
	return routes.SetupRoutes(routes.Options{
		Handler:           h,
		Tokens:            a.Tokens,
		InternalAuthToken: a.Config.InternalAuthToken,
		CORSOrigins:       a.Config.CORSOrigins,
		Log:               a.Log.Named("http"),
	})
}

// Close releases the database connection.
func (a *App) Close() error {
	sqlDB, err := a.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func newSummarizer(cfg config.Config, log *zap.SugaredLogger) (summary.Summarizer, error) {
	if cfg.LLMAPIKey == "" {
		log.Warn("LLM_API_KEY not set; summaries are disabled")
		return summary.Disabled{}, nil
	}
	s, err := summary.NewOpenAI(cfg.LLMAPIKey, cfg.LLMBaseURL, cfg.LLMModel)
	if err != nil {
		return nil, fmt.Errorf("creating summarizer: %w", err)
	}
	return s, nil
}

func newMailer(cfg config.Config, log *zap.SugaredLogger) mailer.Mailer {
	if cfg.SMTPHost == "" {
		log.Warn("SMTP_HOST not set; client updates are logged instead of mailed")
		return mailer.NewLogMailer(log.Named("mailer"))
	}
	return mailer.NewSMTPMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword)
}
