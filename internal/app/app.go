package app

import (
	"io"
	"log/slog"

	"github.com/gin-gonic/gin"

	"github.com/vk/rockiq/internal/docstore"
	"github.com/vk/rockiq/internal/httpapi"
	"github.com/vk/rockiq/internal/session"
	"github.com/vk/rockiq/internal/watch"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW    io.Writer
	logger  *slog.Logger
	config  *Config
	store   *docstore.FileStore
	session *session.Session
	hub     *watch.Hub
	router  *gin.Engine
}

// NewApp is the constructor for the main application. It returns a fully
// initialized App instance with its own isolated logger, document store,
// session, and router.
func NewApp(outW io.Writer, cfg *Config) *App {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, outW)
	logger.Debug("Logger configured successfully.")

	store := docstore.NewFileStore(cfg.DocumentPath)
	sess := session.New(store)
	hub := watch.NewHub()

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(httpapi.LoggerMiddleware(logger))
	httpapi.RegisterRoutes(router, httpapi.NewHandlers(sess, cfg.DocumentPath))
	router.GET("/ws", hub.Handler())
	logger.Debug("Routes registered.")

	return &App{
		outW:    outW,
		logger:  logger,
		config:  cfg,
		store:   store,
		session: sess,
		hub:     hub,
		router:  router,
	}
}

// Session returns the application's document session. This is primarily for testing.
func (a *App) Session() *session.Session {
	return a.session
}

// Router returns the application's HTTP router. This is primarily for testing.
func (a *App) Router() *gin.Engine {
	return a.router
}
