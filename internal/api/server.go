// internal/api/server.go
package api

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/sshreyx1/hot-triage/internal/common/config"
	stderrors "github.com/sshreyx1/hot-triage/internal/common/errors"
	"github.com/sshreyx1/hot-triage/internal/common/logger"
	"github.com/sshreyx1/hot-triage/internal/common/metrics"
	"github.com/sshreyx1/hot-triage/internal/diagnosis"
	"github.com/sshreyx1/hot-triage/internal/symptoms"
)

const headerRequestID = "X-Request-Id"

// Server exposes the proxy's HTTP surface: the two forwarding routes plus
// health and metrics.
type Server struct {
	engine    *gin.Engine
	cfg       *config.Config
	symptoms  *symptoms.Service
	diagnosis *diagnosis.Service
	logger    logger.Logger
}

func NewServer(cfg *config.Config, parseSvc *symptoms.Service, diagSvc *diagnosis.Service, log logger.Logger) *Server {
	s := &Server{
		cfg:       cfg,
		symptoms:  parseSvc,
		diagnosis: diagSvc,
		logger: log.With(map[string]interface{}{
			"component": "api",
		}),
	}

	engine := gin.New()
	engine.Use(s.requestID())
	engine.Use(s.recovery())
	engine.Use(s.measure())
	engine.Use(cors.New(cors.Config{
		AllowOrigins:     []string{cfg.CORS.AllowedOrigin},
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders:     []string{"Content-Type", "Authorization", "Interview-Id", "App-Id", "App-Key", "Model"},
		ExposeHeaders:    []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	engine.POST("/parse", s.handleParse)
	engine.POST("/diagnosis", s.handleDiagnosis)
	engine.GET("/healthz", s.handleHealthz)
	engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	s.engine = engine
	return s
}

// Handler returns the router for serving and for tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) handleParse(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		s.writeError(c, "Failed to parse symptoms", stderrors.NewInvalidRequestError(err.Error()))
		return
	}
	if err := validateBody(parseSchema, body); err != nil {
		s.writeError(c, "Failed to parse symptoms", err)
		return
	}

	var in symptoms.Input
	if err := json.Unmarshal(body, &in); err != nil {
		s.writeError(c, "Failed to parse symptoms", stderrors.NewInvalidRequestError(err.Error()))
		return
	}

	raw, err := s.symptoms.Parse(c.Request.Context(), in)
	if err != nil {
		s.writeError(c, "Failed to parse symptoms", err)
		return
	}

	c.Data(http.StatusOK, "application/json", raw)
}

func (s *Server) handleDiagnosis(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		s.writeError(c, "Failed to process diagnosis", stderrors.NewInvalidRequestError(err.Error()))
		return
	}
	if err := validateBody(diagnosisSchema, body); err != nil {
		s.writeError(c, "Failed to process diagnosis", err)
		return
	}

	var in diagnosis.Input
	if err := json.Unmarshal(body, &in); err != nil {
		s.writeError(c, "Failed to process diagnosis", stderrors.NewInvalidRequestError(err.Error()))
		return
	}
	if in.InterviewToken == "" {
		in.InterviewToken = c.GetHeader("Interview-Id")
	}

	payload, err := s.diagnosis.Compute(c.Request.Context(), in)
	if err != nil {
		s.writeError(c, "Failed to process diagnosis", err)
		return
	}

	c.JSON(http.StatusOK, payload)
}

func (s *Server) handleHealthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"service": s.cfg.App.Name,
		"version": s.cfg.App.Version,
	})
}

// writeError converts any error to the structured JSON body the front end
// expects. Upstream JSON error bodies are surfaced as-is under details.
func (s *Server) writeError(c *gin.Context, label string, err error) {
	std := stderrors.Normalize(err)
	status := stderrors.HTTPStatus(std.Code)

	s.logger.Error("request failed", map[string]interface{}{
		"route":     c.FullPath(),
		"requestId": c.GetString(headerRequestID),
		"code":      string(std.Code),
		"category":  stderrors.GetErrorCategory(std.Code),
		"details":   std.Details,
	})

	var details interface{} = std.Details
	if json.Valid([]byte(std.Details)) {
		details = json.RawMessage(std.Details)
	}

	c.AbortWithStatusJSON(status, gin.H{
		"error":   label,
		"details": details,
	})
}

func (s *Server) requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(headerRequestID)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(headerRequestID, id)
		c.Header(headerRequestID, id)
		c.Next()
	}
}

// recovery converts panics into the generic 500 body instead of crashing the
// process.
func (s *Server) recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				s.logger.Error("panic recovered", map[string]interface{}{
					"route": c.FullPath(),
					"panic": fmt.Sprintf("%v", r),
				})
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
					"error":   "Internal server error",
					"details": fmt.Sprintf("%v", r),
				})
			}
		}()
		c.Next()
	}
}

func (s *Server) measure() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		metrics.HTTPRequestsTotal.WithLabelValues(route, fmt.Sprintf("%d", c.Writer.Status())).Inc()
		metrics.HTTPRequestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	}
}
