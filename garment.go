//go:build !cli
// +build !cli

package main

import (
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"

	"garment.GO/api"
	_ "garment.GO/api/catalog"
	_ "garment.GO/api/delivery"
	_ "garment.GO/api/order"
	"garment.GO/config"
	"garment.GO/core/auth"
	"garment.GO/core/registry"
	garmentcron "garment.GO/cron"
	_ "garment.GO/cron/jobs"
)

func main() {
	config.LoadEnv()
	config.LoadAppConfig()
	log := config.GetLogger()

	config.InitRedis()
	if config.RedisClient != nil {
		if err := config.RedisClient.Ping(config.RedisCtx()).Err(); err != nil {
			config.RedisClient = nil
			log.Warn("Redis configured but not reachable, idempotency and locking disabled")
		} else {
			log.Info("Redis connection successful")
		}
	} else {
		log.Info("Redis not configured, idempotency and locking disabled")
	}

	db, err := config.NewDB()
	if err != nil {
		log.Fatalf("failed to connect to DB: %v", err)
	}
	sqldb, err := db.DB()
	if err != nil {
		log.Fatalf("failed to get DB instance: %v", err)
	}
	if err := sqldb.Ping(); err != nil {
		log.Fatalf("database connection failed: %v", err)
	}
	log.Info("Database connection successful")

	e := echo.New()
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.Gzip())
	e.Use(middleware.Decompress())

	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			c.Set(registry.KeyRequestStart, start)
			err := next(c)
			duration := time.Since(start).Milliseconds()
			c.Response().Header().Set("X-Request-Duration-ms", strconv.FormatInt(duration, 10))
			return err
		}
	})

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, echo.Map{"status": "ok"})
	})

	apiGroup := e.Group("/api")
	apiGroup.Use(auth.Middleware(db))
	api.ApplyModules(apiGroup, db)
	api.ApplyRoutes(e, db)

	if os.Getenv("CRON_ENABLED") == "true" {
		c := garmentcron.StartCron()
		defer c.Stop()
		log.WithFields(logrus.Fields{"jobs": len(garmentcron.Jobs())}).Info("cron scheduler started")
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	log.Infof("Server running on :%s", port)
	e.Logger.Fatal(e.Start(":" + port))
}
