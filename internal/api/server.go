package api

import (
	"errors"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"hall-compliance/internal/pipeline"
)

// Config defines server dependencies.
type Config struct {
	Pipeline       *pipeline.Service
	AllowedOrigins []string
}

// Server wires HTTP handlers with the compliance pipeline.
type Server struct {
	pipeline       *pipeline.Service
	allowedOrigins []string
}

// NewServer constructs the API server.
func NewServer(cfg Config) (*Server, error) {
	if cfg.Pipeline == nil {
		return nil, errors.New("pipeline service required")
	}
	return &Server{
		pipeline:       cfg.Pipeline,
		allowedOrigins: cfg.AllowedOrigins,
	}, nil
}

// Router configures the gin engine with all routes.
func (s *Server) Router() (*gin.Engine, error) {
	router := gin.Default()

	corsCfg := cors.DefaultConfig()
	if len(s.allowedOrigins) > 0 {
		corsCfg.AllowOrigins = s.allowedOrigins
	} else {
		corsCfg.AllowAllOrigins = true
	}
	corsCfg.AllowMethods = []string{"GET", "POST", "DELETE", "OPTIONS"}
	corsCfg.AllowHeaders = []string{"Origin", "Content-Type", "Authorization"}
	corsCfg.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsCfg))

	apiGroup := router.Group("/api")
	{
		apiGroup.GET("/health", s.handleHealth)
		apiGroup.POST("/policies/:name", s.handleIndexPolicy)
		apiGroup.GET("/rules/search", s.handleSearchRules)
		apiGroup.DELETE("/rules", s.handleClearRules)
		apiGroup.POST("/assessments", s.handleAssess)
		apiGroup.POST("/assessments/image", s.handleAssessImage)
		apiGroup.POST("/assessments/object", s.handleCheckObject)
		apiGroup.GET("/assessments", s.handleHistory)
	}

	return router, nil
}
