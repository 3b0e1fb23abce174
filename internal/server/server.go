package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"lifelevel/internal/engine"
	"lifelevel/internal/metrics"
)

type Config struct {
	Addr  string
	CORS  bool
	Debug bool
	// Gatherer backs /metrics; the default registry when nil.
	Gatherer prometheus.Gatherer
}

// Server exposes the engine over HTTP and a WebSocket event stream.
type Server struct {
	svc      *engine.Service
	metrics  *metrics.Metrics
	logger   *log.Logger
	config   Config
	router   *gin.Engine
	upgrader websocket.Upgrader
}

func New(cfg Config, svc *engine.Service, m *metrics.Metrics, logger *log.Logger) *Server {
	if !cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestLogger(logger, m))

	if cfg.CORS {
		corsConfig := cors.DefaultConfig()
		corsConfig.AllowAllOrigins = true
		corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
		corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept"}
		corsConfig.AllowWebSockets = true
		router.Use(cors.New(corsConfig))
	}

	s := &Server{
		svc:     svc,
		metrics: m,
		logger:  logger,
		config:  cfg,
		router:  router,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// The web front-end may be served from any local port.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
	s.setupRoutes()
	return s
}

func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) setupRoutes() {
	s.router.GET("/healthz", s.handleHealth)
	s.router.GET("/ws", s.handleWebSocket)

	gatherer := s.config.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	s.router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))

	api := s.router.Group("/api")
	{
		api.GET("/state", s.getState)
		api.GET("/areas", s.listAreas)
		api.GET("/areas/:id", s.getArea)
		api.GET("/areas/:id/activities", s.listActivities)
		api.GET("/areas/:id/skills", s.listSkills)
		api.POST("/areas/:id/skills/:skill/unlock", s.unlockSkill)

		api.POST("/activities/:id/complete", s.completeActivity)
		api.GET("/history", s.listHistory)
		api.GET("/daily-quests", s.listDailyQuests)

		api.GET("/quests", s.listQuests)
		api.POST("/quests/:id/accept", s.acceptQuest)
		api.POST("/quests/:id/abandon", s.abandonQuest)

		api.GET("/achievements", s.listAchievements)

		api.PUT("/profile/enneagram", s.setEnneagram)
		api.GET("/enneagram", s.listEnneagram)
		api.GET("/avatar", s.getAvatar)
		api.PUT("/avatar", s.putAvatar)

		api.GET("/planned", s.listPlanned)
		api.POST("/planned", s.createPlanned)
		api.DELETE("/planned/:id", s.deletePlanned)
	}
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.config.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", "addr", s.config.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("listen: %w", err)
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return <-errCh
}

func requestLogger(logger *log.Logger, m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		d := time.Since(start)
		status := c.Writer.Status()
		m.ObserveRequest(c.Request.Method, c.FullPath(), status, d)
		logger.Debug("request", "method", c.Request.Method, "path", c.Request.URL.Path, "status", status, "duration", d)
	}
}
