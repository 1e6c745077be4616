// main.go
//
// Persistence and API service for a cohort-scoped anonymous song message board
// Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC
//
// This file is part of menfessdb.
// menfessdb is free software: you can redistribute it and/or modify it
// under the terms of the GNU Affero General Public License as published by the Free Software
// Foundation, either version 3 of the License, or (at your option) any later version.
// menfessdb is distributed in the hope that it will be useful, but WITHOUT ANY WARRANTY;
// without even the implied warranty of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
// See the GNU Affero General Public License for more details.
// You should have received a copy of the GNU Affero General Public License along with menfessdb.
// If not, see <https://www.gnu.org/licenses/>.
// Additional terms under GNU AGPL version 3 section 7:
// a) The reasonable legal notice of original copyright and author attribution must be preserved
//    by including the string: "Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC"
//    in this material, copies, or source code of derived works.

package main

import (
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	swagger "github.com/gofiber/swagger"
	"github.com/localnerve/menfessdb/internal/config"
	"github.com/localnerve/menfessdb/internal/database"
	"github.com/localnerve/menfessdb/internal/handlers"
	"github.com/localnerve/menfessdb/internal/middleware"
	"github.com/localnerve/menfessdb/internal/observability"
	"github.com/localnerve/menfessdb/internal/utils"
	"github.com/sirupsen/logrus"

	_ "github.com/localnerve/menfessdb/docs/api" // Swagger docs
)

// @title menfessdb API
// @version 1.0.0
// @description Cohort-scoped anonymous song message board
// @termsOfService http://swagger.io/terms/

// @contact.name API Support
// @contact.url https://github.com/localnerve/menfessdb
// @contact.email info@localnerve.com

// @license.name AGPL-3.0
// @license.url https://www.gnu.org/licenses/agpl-3.0.html

// @host localhost:3000
// @BasePath /api
// @schemes http https

// @securityDefinitions.apikey CookieAuth
// @in cookie
// @name cookie_session

func main() {
	var envFilename string
	flag.StringVar(&envFilename, "f", "", "path to an .env file")
	flag.Parse()

	log := observability.Logger()

	// Load configuration
	cfg, err := config.LoadFile(envFilename)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if err := cfg.RequireAuthorizer(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}
	if err := observability.Configure(cfg.LogLevel, os.Stdout); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	// Connect to database
	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close(db)

	// Create or upgrade the schema
	if err := database.InitializeSchema(db); err != nil {
		log.Fatalf("Failed to initialize schema: %v", err)
	}

	// Create Fiber app
	app := fiber.New(fiber.Config{
		ErrorHandler: handlers.ErrorHandler,
	})

	// Global middleware
	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(compress.New())

	// Prometheus metrics
	prometheus := fiberprometheus.New("menfessdb")
	prometheus.RegisterAt(app, "/metrics")
	app.Use(prometheus.Middleware)

	// Swagger documentation
	app.Get("/swagger/*", swagger.HandlerDefault)

	// API routes under /api
	api := app.Group("/api")

	// Version middleware
	api.Use(middleware.VersionMiddleware())

	// Authorizer is initialized on the first authenticated request
	gate := middleware.NewAuthGate(cfg, db)
	routes := &handlers.Routes{
		DB:           db,
		PageSize:     cfg.FeedPageSize,
		QueryTimeout: cfg.FeedQueryTimeout,
		AuthUser:     gate.AuthUser(),
		AuthAdmin:    gate.AuthAdmin(),
	}
	routes.Register(api)

	// 404 handler
	app.Use(func(c *fiber.Ctx) error {
		return utils.NotFoundResponse(c, "[404] Resource Not Found")
	})

	// Graceful shutdown
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		log.Info("Gracefully shutting down...")
		_ = app.Shutdown()
	}()

	// Start server
	log.WithFields(logrus.Fields{
		"port":    cfg.Port,
		"db_type": cfg.DBType,
	}).Info("Starting server")
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}

	log.Info("Server stopped")
}
