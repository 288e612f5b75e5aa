// Package api publishes a composing session over HTTP
package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/james-see/tasteofcontrol/pkg/engine"
	"github.com/james-see/tasteofcontrol/pkg/errlog"
	"github.com/james-see/tasteofcontrol/pkg/logger"
	"github.com/james-see/tasteofcontrol/pkg/notation"
)

// @title Taste of Control API
// @version 1.0
// @description Drives a generative score one measure at a time and publishes the result
// @host localhost:8080
// @BasePath /api/v1

// Server publishes one session.
type Server struct {
	session *engine.Session
	record  errlog.Record
	midi    *notation.MIDIWriter
	hub     *hub
}

// NewServer wires a server to session. Every measure the session writes is
// pushed to stream clients.
func NewServer(session *engine.Session, record errlog.Record) *Server {
	s := &Server{
		session: session,
		record:  record,
		midi:    notation.NewMIDIWriter(),
		hub:     newHub(),
	}
	session.Subscribe(s.publish)
	return s
}

// Router builds the gin engine.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(requestLogger())
	r.Use(corsMiddleware())

	r.GET("/health", healthCheck)

	v1 := r.Group("/api/v1")
	{
		v1.GET("/health", healthCheck)
		v1.POST("/advance", s.handleAdvance)
		v1.GET("/state", s.handleState)
		v1.GET("/measures/latest", s.handleLatest)
		v1.GET("/instruments/:name", s.handleInstrument)
		v1.GET("/score", s.handleScore)
		v1.GET("/score/midi", s.handleMIDI)
		v1.GET("/errors", s.handleErrors)
		v1.GET("/stream", s.handleStream)
	}

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	return r
}

// Run serves on port until the listener fails.
func (s *Server) Run(port int) error {
	logger.Info("API server listening", logger.Fields{"port": port, "session_id": s.session.ID()})
	return s.Router().Run(fmt.Sprintf(":%d", port))
}

// StartServer starts the API server for session on the specified port
func StartServer(port int, session *engine.Session, record errlog.Record) error {
	return NewServer(session, record).Run(port)
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.LogAPIRequest(c, time.Since(start), c.Writer.Status(), nil)
	}
}

// healthCheck godoc
// @Summary Health check endpoint
// @Description Returns the health status of the API
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string
// @Router /health [get]
func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "tasteofcontrol",
	})
}
