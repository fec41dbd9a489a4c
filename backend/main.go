package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"academy/backend/assistant"
	"academy/backend/audit"
	"academy/backend/cache"
	"academy/backend/certificate"
	"academy/backend/config"
	"academy/backend/events"
	"academy/backend/metrics"
	"academy/backend/routes"
	"academy/backend/stats"
	"academy/backend/store"
	"academy/backend/tracker"
	"academy/backend/utils"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Error loading config: %v", err)
	}

	// Initialize logger
	logger := utils.InitLogger(utils.LoggerConfig{Format: cfg.LogFormat})

	// Initialize database
	db, err := utils.InitDB(cfg)
	if err != nil {
		log.Fatalf("Error initializing database: %v", err)
	}

	deps := routes.Dependencies{
		DB:           db,
		Cfg:          cfg,
		Logger:       logger,
		Progress:     store.NewProgressStore(db),
		Certificates: certificate.NewIssuer(db),
		Stats:        stats.NewRecorder(db),
	}

	gormContent := store.NewContentStore(db)
	gormContent.DefaultThreshold = cfg.PassThreshold
	var content tracker.ContentStore = gormContent
	if cfg.RedisAddr != "" {
		client, err := cache.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword)
		if err != nil {
			logger.Printf("Course cache disabled: %v", err)
		} else {
			defer client.Close()
			cached := cache.NewContentCache(content, cache.NewRedisBackend(client), cfg.CourseCacheTTL, utils.ComponentLogger(logger, "CACHE"))
			content = cached
			deps.Cache = cached
		}
	}
	deps.Content = content

	notifiers := tracker.Notifiers{deps.Certificates, deps.Stats, metrics.CompletionCounter}
	if cfg.AMQPURL != "" {
		publisher, err := events.NewPublisher(cfg.AMQPURL, cfg.AMQPExchange, utils.ComponentLogger(logger, "EVENTS"))
		if err != nil {
			logger.Printf("Event publishing disabled: %v", err)
		} else {
			defer publisher.Close()
			notifiers = append(notifiers, publisher)
		}
	}

	deps.Tracker = tracker.New(content, deps.Progress,
		tracker.WithNotifier(notifiers),
		tracker.WithLogger(utils.ComponentLogger(logger, "TRACKER")),
	)

	if cfg.LLMAPIKey != "" {
		client := assistant.NewClient(cfg.LLMBaseURL, cfg.LLMAPIKey, cfg.LLMModel)
		deps.Assistant = assistant.NewService(db, client, deps.Progress, utils.ComponentLogger(logger, "ASSISTANT"))
	}

	if cfg.AuditSchedule != "" {
		auditor := audit.NewAuditor(content, deps.Progress, utils.ComponentLogger(logger, "PROGRESS-AUDIT"))
		scheduler, err := auditor.Schedule(cfg.AuditSchedule)
		if err != nil {
			log.Fatalf("Error scheduling audit: %v", err)
		}
		defer scheduler.Stop()
	}

	app := routes.NewApp(deps)

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
		<-quit
		logger.Println("Shutting down...")
		if err := app.Shutdown(); err != nil {
			logger.Printf("Error during shutdown: %v", err)
		}
	}()

	// Start server
	if err := app.Listen(":" + cfg.ServerPort); err != nil {
		log.Fatalf("Error starting server: %v", err)
	}
}
