// Package main is the entry point for the tasteofcontrol API server
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/james-see/tasteofcontrol/pkg/api"
	"github.com/james-see/tasteofcontrol/pkg/config"
	"github.com/james-see/tasteofcontrol/pkg/engine"
	"github.com/james-see/tasteofcontrol/pkg/logger"
)

var releaseVersion = "dev"

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}
	cfg := config.Load()

	defaultPort, err := strconv.Atoi(cfg.Port)
	if err != nil {
		defaultPort = 8080
	}
	port := flag.Int("port", defaultPort, "Server port")
	flag.Parse()

	os.Exit(serve(cfg, *port))
}

func serve(cfg *config.Config, port int) int {
	flush := logger.InitSentry(cfg.SentryDSN, cfg.Environment, releaseVersion)
	defer flush()

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	session, record, err := engine.Open(cfg)
	if err != nil {
		logger.Error("Failed to open session", err, nil)
		return 1
	}
	defer func() { _ = record.Close() }()

	fmt.Printf("Starting tasteofcontrol API server on port %d...\n", port)
	fmt.Printf("Swagger docs available at http://localhost:%d/swagger/index.html\n", port)

	if err := api.StartServer(port, session, record); err != nil {
		fmt.Fprintf(os.Stderr, "Server error: %v\n", err)
		return 1
	}
	return 0
}
