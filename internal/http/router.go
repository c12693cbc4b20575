package httpapi

import (
	"html/template"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/reservation_insight/backend/internal/config"
	"github.com/reservation_insight/backend/internal/http/handlers"
	"github.com/reservation_insight/backend/internal/http/middleware"
	"github.com/reservation_insight/backend/internal/presenter"
	"github.com/reservation_insight/backend/internal/service"
	"github.com/reservation_insight/backend/internal/session"

	_ "github.com/reservation_insight/backend/docs"
)

// Router wires the HTTP surface. store may be nil when run history is off.
func Router(cfg config.Config, pipeline *service.Pipeline, sessions *session.Registry, store handlers.RunStore, logger zerolog.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.MaxMultipartMemory = cfg.MaxUploadSizeMB << 20
	r.SetHTMLTemplate(template.Must(presenter.Templates()))

	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "X-Request-Id"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if cfg.CORSAllowed == "*" {
		corsCfg.AllowAllOrigins = true
		corsCfg.AllowCredentials = false
	} else {
		corsCfg.AllowOrigins = []string{cfg.CORSAllowed}
	}
	r.Use(cors.New(corsCfg))

	h := &handlers.Handler{
		Pipeline:  pipeline,
		Store:     store,
		Validator: validator.New(),
		Logger:    logger,
	}

	r.GET("/healthz", h.Healthz)
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	web := r.Group("")
	web.Use(middleware.Session(sessions, cfg.SessionCookie))
	{
		web.GET("/", h.Page)
		web.POST("/upload", h.UploadForm)
	}

	api := r.Group("/api")
	{
		api.GET("/prompt", h.Prompt)
		api.GET("/runs/latest", h.RunsLatest)
	}

	sessionAPI := api.Group("")
	sessionAPI.Use(middleware.Session(sessions, cfg.SessionCookie))
	{
		sessionAPI.POST("/upload", h.UploadAPI)
		sessionAPI.GET("/session", h.SessionState)
	}

	return r
}
