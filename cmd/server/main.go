package main

import (
	"flag"
	"os"

	"github.com/ashishacharya123/pkms-todos/internal/config"
	"github.com/ashishacharya123/pkms-todos/internal/database"
	"github.com/ashishacharya123/pkms-todos/internal/handlers"
	"github.com/ashishacharya123/pkms-todos/internal/logging"
	"github.com/gin-gonic/gin"
)

func main() {
	configPath := flag.String("config", "", "optional TOML config file")
	flag.Parse()

	// Load configuration
	cfg, err := config.LoadFile(*configPath)
	if err != nil {
		logging.New("info", "server").Fatal("Failed to load configuration", "err", err)
	}

	logger := logging.New(cfg.LogLevel, "server")

	// Set Gin mode
	gin.SetMode(cfg.GinMode)

	// Connect to database
	db, err := database.Connect(cfg)
	if err != nil {
		logger.Fatal("Failed to connect to database", "err", err)
	}

	// Run migrations
	if err := database.MigrateDatabase(db); err != nil {
		logger.Fatal("Failed to run migrations", "err", err)
	}

	r := handlers.NewRouter(db, logger)

	// Start server
	logger.Info("Server starting", "addr", cfg.ServerAddr, "driver", cfg.DBDriver)
	if err := r.Run(cfg.ServerAddr); err != nil {
		logger.Error("Server stopped", "err", err)
		os.Exit(1)
	}
}
