package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	log "github.com/sirupsen/logrus"

	"nodepulse/config"
	"nodepulse/handlers"
	"nodepulse/middleware"
	"nodepulse/services"
	"nodepulse/utils"
)

func main() {
	// 1. Config
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if level, err := log.ParseLevel(os.Getenv("LOG_LEVEL")); err == nil {
		log.SetLevel(level)
	}

	log.Println("=== Configuration ===")
	log.Printf("Server: %s:%d", cfg.Server.Host, cfg.Server.Port)
	log.Printf("Redis: %s (enabled: %v)", cfg.Redis.Address, cfg.Redis.Enabled)
	log.Printf("MongoDB: %s (enabled: %v)", cfg.MongoDB.Database, cfg.MongoDB.Enabled)

	// 2. Core Services - Initialize
	geo := utils.NewGeoResolver(cfg.GeoIP.DBPath)
	defer geo.Close()

	mongoService, err := services.NewMongoDBService(cfg)
	if err != nil {
		log.Warnf("MongoDB connection failed: %v", err)
		log.Println("History and alert persistence will be disabled")
		mongoService = nil
	}
	if mongoService != nil {
		defer mongoService.Close()
	}

	discordBot, err := services.NewDiscordNotifier(cfg.Alerts.DiscordToken, cfg.Alerts.DiscordChannelID)
	if err != nil {
		log.Warnf("Discord bot initialization failed: %v", err)
		log.Println("Discord notifications will be disabled")
		discordBot = nil
	} else if discordBot.Enabled() {
		defer discordBot.Close()
	}

	registry := services.NewRegistry(cfg, geo)
	alertService := services.NewAlertService(cfg, registry, mongoService, discordBot)
	historyService := services.NewHistoryService(registry, mongoService)

	// 3. Start Background Services
	log.Println("=== Starting Services ===")

	registry.Start()
	log.Println("✓ Device Registry started")

	historyService.Start()
	log.Println("✓ History Service started")

	alertService.Start()
	log.Println("✓ Alert Service started")

	// 4. Web Server
	e := echo.New()
	e.HideBanner = true

	e.Use(middleware.LoggerMiddleware())
	e.Use(middleware.CORSMiddleware(cfg.Server.AllowedOrigins))
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			defer func() {
				if r := recover(); r != nil {
					log.Errorf("Recovered from panic: %v", r)
					c.Error(fmt.Errorf("internal server error"))
				}
			}()
			return next(c)
		}
	})

	// 5. Handlers
	h := handlers.NewHandler(cfg, registry, mongoService)

	// 6. Routes
	e.GET("/health", h.GetHealth)

	// JSON-RPC endpoint - this is what devices report to
	e.POST("/rpc", h.HandleRPC)

	api := e.Group("/api")
	api.GET("/status", h.GetStatus)
	api.GET("/devices", h.GetDevices)
	api.GET("/devices/:id", h.GetDevice)
	api.GET("/devices/:id/history", h.GetDeviceHistory)
	api.GET("/alerts", h.GetAlerts)

	// 7. Start HTTP Server
	serverAddr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)

	go func() {
		log.Printf("🚀 Collector running on http://%s", serverAddr)
		if err := e.Start(serverAddr); err != nil && err != http.ErrServerClosed {
			log.Fatalf("shutting down the server: %v", err)
		}
	}()

	// 8. Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	log.Println("⏳ Graceful shutdown initiated...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	log.Println("Stopping services...")
	alertService.Stop()
	historyService.Stop()
	registry.Stop()
	log.Println("✓ All services stopped")

	if err := e.Shutdown(ctx); err != nil {
		e.Logger.Fatal(err)
	}
	log.Println("✓ Server exited cleanly")
}
