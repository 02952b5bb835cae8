package routes

import (
	"SurgiFlow/config"
	"SurgiFlow/controllers"
	"SurgiFlow/database"
	"SurgiFlow/events"
	"SurgiFlow/handlers"
	"SurgiFlow/logger"
	"SurgiFlow/middlewares"
	"SurgiFlow/repositories"
	"SurgiFlow/services"
	"SurgiFlow/templates"
	"SurgiFlow/utils"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Deps are the collaborators the router is built from.
type Deps struct {
	Config    *config.AppConfig
	DB        *gorm.DB
	Locker    services.Locker
	Logger    *logger.Logger
	Templates templates.Loader
	// Mailer overrides the SMTP mailer built from Config.SMTP.
	Mailer services.Mailer
	Now    func() time.Time
}

// SetupRoutes initializes the services, routes and middleware for the server
func SetupRoutes(deps Deps) (http.Handler, error) {
	cfg := deps.Config
	log := deps.Logger
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	locker := deps.Locker
	if locker == nil {
		locker = database.NopLocker{}
	}
	loader := deps.Templates
	if loader == nil {
		loader = templates.NewDirStore(cfg.TemplateDir)
	}

	if cfg.Env != "development" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())

	router.Use(middlewares.CorsMiddleware(&middlewares.CorsConfig{
		AllowedOrigins:   cfg.CorsOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	}))
	router.Use(middlewares.NewRateLimiterMiddleware(middlewares.RateLimiterConfig{
		RequestsPerSecond: cfg.RateLimitRPS,
		Burst:             cfg.RateLimitBurst,
	}))
	router.Use(middlewares.LoggingMiddleware(log))

	tx := database.NewTxRunner(deps.DB)
	bus := events.NewBus(log)

	patientRepo := repositories.NewPatientRepository(deps.DB)
	fileRepo := repositories.NewPatientFileRepository(deps.DB)
	caseRepo := repositories.NewCaseRepository(deps.DB)
	promRepo := repositories.NewPromRepository(deps.DB)

	patientService := services.NewPatientService(tx, patientRepo, fileRepo, cfg.UploadDir)
	caseService := services.NewCaseService(tx, caseRepo, patientRepo, bus, log, now)
	scheduler := services.NewPromScheduler(tx, caseRepo, promRepo, loader, locker, bus, log)
	promService := services.NewPromService(tx, promRepo, caseRepo, patientRepo, loader, locker, log, now)

	bus.Subscribe(events.CaseCompleted{}.EventName(), scheduler.HandleCaseCompleted)

	var links services.FormLinker
	var tokens *utils.FormTokens
	if cfg.FormLinksEnabled() {
		var err error
		tokens, err = utils.NewFormTokens(cfg.FormTokenKey, cfg.FormBaseURL, now)
		if err != nil {
			return nil, err
		}
		links = tokens

		mailer := deps.Mailer
		if mailer == nil && cfg.SMTP.Enabled() {
			mailer = utils.NewSMTPMailer(cfg.SMTP)
		}
		if mailer != nil {
			notifier := services.NewPromNotifier(patientRepo, promRepo, mailer, tokens, log)
			bus.Subscribe(events.SchedulesCreated{}.EventName(), notifier.HandleSchedulesCreated)
		}
	}

	controllers.SetupRootRoute(router)

	staff := router.Group("/", middlewares.ValidateBearerToken(cfg.GetBearerToken()))
	controllers.SetupPatientRoutes(staff, handlers.NewPatientHandler(patientService, log), handlers.NewPatientFileHandler(patientService, log))
	controllers.SetupCaseRoutes(staff, handlers.NewCaseHandler(caseService, log))

	promHandler := handlers.NewPromHandler(promService, scheduler, links, log)
	controllers.SetupPromRoutes(staff, promHandler)
	if tokens != nil {
		controllers.SetupPublicPromRoutes(router, promHandler, tokens)
	}

	return router, nil
}
