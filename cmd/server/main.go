package main

import (
	"context"
	"log"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/tahmidr/glowfeed/backend/internal/chat"
	"github.com/tahmidr/glowfeed/backend/internal/ephemeral"
	"github.com/tahmidr/glowfeed/backend/internal/fanout"
	"github.com/tahmidr/glowfeed/backend/internal/router"
	"github.com/tahmidr/glowfeed/backend/pkg/config"
)

func main() {
	cfg := config.Load()

	db, err := config.InitDB()
	if err != nil {
		log.Fatalf("Failed to initialize databases: %v", err)
	}
	defer db.CloseDB()

	mailer := fanout.NewSMTPMailer(fanout.SMTPConfig{
		Host:        cfg.SMTPHost,
		Port:        cfg.SMTPPort,
		Username:    cfg.SMTPUsername,
		Password:    cfg.SMTPPassword,
		From:        cfg.EmailFrom,
		MaxAttempts: uint64(cfg.EmailRetries),
	})

	var chatClient chat.Client
	if cfg.ChatAPIURL != "" {
		chatClient = chat.NewHTTPClient(cfg.ChatAPIURL, cfg.ChatAPIKey)
	}

	e := echo.New()
	router.SetupMiddleware(e)

	manager, err := router.SetupRoutes(e, db, cfg, mailer, chatClient)
	if err != nil {
		log.Fatalf("Failed to set up routes: %v", err)
	}

	go runSweepLoop(manager, cfg.SweepInterval)

	log.Printf("Starting server on port %s (%s)", cfg.Port, cfg.Env)
	if err := e.Start(":" + cfg.Port); err != nil {
		log.Fatalf("Server stopped: %v", err)
	}
}

// runSweepLoop reclaims expired stories and notes on a fixed interval. The
// external scheduler hitting /internal/cleanup covers deployments where this
// process is not long-lived.
func runSweepLoop(manager *ephemeral.Manager, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for range ticker.C {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		result, err := manager.Sweep(ctx)
		cancel()
		if err != nil {
			log.Printf("sweep failed: %v", err)
			continue
		}
		if result.Stories > 0 || result.Notes > 0 {
			log.Printf("sweep removed %d stories, %d notes", result.Stories, result.Notes)
		}
	}
}
