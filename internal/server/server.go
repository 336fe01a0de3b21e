package server

import (
	"net/http"
	"strings"
	"time"

	"madhughor-backend/internal/config"
	"madhughor-backend/internal/usecase"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type Server struct {
	cfg    config.Config
	intake *usecase.OrderIntakeService
	carts  *usecase.CartService
	events *usecase.EventService
	admin  *usecase.AdminService
	auth   *usecase.AuthService
	log    *logrus.Logger
	engine *gin.Engine
}

type Services struct {
	Intake *usecase.OrderIntakeService
	Carts  *usecase.CartService
	Events *usecase.EventService
	Admin  *usecase.AdminService
	Auth   *usecase.AuthService
}

func New(cfg config.Config, svcs Services, log *logrus.Logger) *Server {
	if cfg.Env == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	s := &Server{
		cfg:    cfg,
		intake: svcs.Intake,
		carts:  svcs.Carts,
		events: svcs.Events,
		admin:  svcs.Admin,
		auth:   svcs.Auth,
		log:    log,
		engine: gin.New(),
	}
	s.engine.Use(gin.Recovery(), s.requestLog(), s.cors())
	s.routes()
	return s
}

func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) routes() {
	s.engine.POST("/functions/submit-order", s.handleSubmitOrder)
	s.engine.POST("/functions/track-event", s.handleTrackEvent)
	s.engine.GET("/functions/districts", s.handleDistricts)
	s.engine.POST("/api/login", s.handleLogin)

	api := s.engine.Group("/api", s.requireAdmin)
	api.GET("/orders", s.handleListOrders)
	api.PATCH("/orders/:id/status", s.handleUpdateStatus)
	api.PATCH("/orders/:id/payment", s.handleUpdatePayment)
	api.GET("/carts", s.handleListCarts)
	api.POST("/carts/:id/contact", s.handleContactCart)
	api.GET("/stats", s.handleStats)
	api.GET("/settings/:key", s.handleGetSetting)
	api.PUT("/settings/:key", s.handlePutSetting)
}

// cors mirrors the storefront's permissive policy: any origin, the
// fixed header set the web client sends, and a bare 200 "ok" preflight.
func (s *Server) cors() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Headers", "authorization, x-client-info, apikey, content-type")
		c.Header("Access-Control-Allow-Methods", "GET,POST,PATCH,PUT,OPTIONS")
		if c.Request.Method == http.MethodOptions {
			c.String(http.StatusOK, "ok")
			c.Abort()
			return
		}
		c.Next()
	}
}

func (s *Server) requestLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.log.WithFields(logrus.Fields{
			"method":      c.Request.Method,
			"path":        c.Request.URL.Path,
			"status":      c.Writer.Status(),
			"duration_ms": time.Since(start).Milliseconds(),
		}).Info("request")
	}
}

func (s *Server) requireAdmin(c *gin.Context) {
	h := c.GetHeader("Authorization")
	if !strings.HasPrefix(h, "Bearer ") {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authorization required"})
		return
	}
	uid, role, err := s.auth.Verify(strings.TrimSpace(strings.TrimPrefix(h, "Bearer ")))
	if err != nil || uid == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		return
	}
	if role != "admin" {
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "admin role required"})
		return
	}
	c.Set("user_id", uid)
	c.Next()
}

// clientIP takes the first forwarding hop, "unknown" when the header is
// absent. The service never trusts the socket address: deployments sit
// behind a proxy.
func clientIP(r *http.Request) string {
	if v := r.Header.Get("X-Forwarded-For"); v != "" {
		if first := strings.TrimSpace(strings.Split(v, ",")[0]); first != "" {
			return first
		}
	}
	return "unknown"
}
