package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"gapfade-bot/internal/broker"
)

// secretHeader carries the shared webhook secret.
const secretHeader = "X-Webhook-Secret"

// ServerConfig holds webhook server configuration.
type ServerConfig struct {
	Host           string
	Port           int
	WebhookSecret  string // empty disables the secret check
	ProductionMode bool
}

// Server is the HTTP surface that receives signal webhooks and forwards
// them to a broker adapter.
type Server struct {
	router     *gin.Engine
	httpServer *http.Server
	config     ServerConfig
	broker     broker.Broker
	logger     zerolog.Logger
}

// NewServer creates the webhook server.
func NewServer(config ServerConfig, b broker.Broker, logger zerolog.Logger) *Server {
	if config.ProductionMode {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())

	router.Use(cors.New(cors.Config{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST"},
		AllowHeaders: []string{"Origin", "Content-Type", secretHeader},
		MaxAge:       12 * time.Hour,
	}))

	s := &Server{
		router: router,
		config: config,
		broker: b,
		logger: logger.With().Str("component", "api").Logger(),
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.router.GET("/health", s.handleHealth)
	s.router.POST("/webhook", s.handleWebhook)
}

// Start begins serving. Blocks until the server stops.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	s.logger.Info().Str("addr", addr).Msg("webhook server listening")

	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}

// Router exposes the gin engine for tests.
func (s *Server) Router() http.Handler {
	return s.router
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"broker": s.broker.Name(),
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

// handleWebhook validates the shared secret and the minimum payload
// fields, then forwards the order to the broker adapter.
func (s *Server) handleWebhook(c *gin.Context) {
	if s.config.WebhookSecret != "" && c.GetHeader(secretHeader) != s.config.WebhookSecret {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid webhook secret"})
		return
	}

	var req broker.OrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}

	if req.Symbol == "" || req.Side == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing required fields"})
		return
	}

	result, err := s.broker.PlaceOrder(c.Request.Context(), req)
	if err != nil {
		s.logger.Error().Err(err).Str("symbol", req.Symbol).Msg("broker rejected order")
		c.JSON(http.StatusBadGateway, gin.H{"error": "broker error"})
		return
	}

	s.logger.Info().
		Str("symbol", req.Symbol).
		Str("side", req.Side).
		Str("order_id", result.OrderID).
		Msg("webhook forwarded")

	c.JSON(http.StatusOK, gin.H{"ok": true, "result": result})
}
