package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	documentapp "github.com/facturio/backend/internal/application/document"
	"github.com/facturio/backend/internal/infrastructure/config"
	"github.com/facturio/backend/internal/infrastructure/event"
	"github.com/facturio/backend/internal/infrastructure/logger"
	"github.com/facturio/backend/internal/infrastructure/persistence"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting Facturio backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
	)

	// Create GORM logger backed by zap
	gormLogLevel := logger.MapGormLogLevel(cfg.Log.Level)
	gormLog := logger.NewGormLogger(log, gormLogLevel)

	// Initialize database connection with custom logger
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	// Initialize repositories
	documentRepo := persistence.NewGormDocumentRepository(db.DB)
	outboxRepo := event.NewGormOutboxRepository(db.DB)

	// Initialize event serializer and register all document event types
	eventSerializer := event.NewEventSerializer()
	event.RegisterDocumentEvents(eventSerializer)

	// Create outbox publisher for reliable event delivery
	outboxPublisher := event.NewOutboxPublisher(outboxRepo, eventSerializer, log)

	// Initialize application services
	quoteService := documentapp.NewQuoteService(documentRepo)
	invoiceService := documentapp.NewInvoiceService(documentRepo)
	quoteService.SetEventPublisher(outboxPublisher)
	invoiceService.SetEventPublisher(outboxPublisher)

	// Initialize event bus and handlers
	eventBus := event.NewInMemoryEventBus(log)

	// Log every delivered document event for observability
	auditHandler := event.NewLoggingHandler(log)
	eventBus.Subscribe(auditHandler)

	// Start event bus
	if err := eventBus.Start(context.Background()); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}
	defer func() {
		if err := eventBus.Stop(context.Background()); err != nil {
			log.Error("Error stopping event bus", zap.Error(err))
		}
	}()

	// Start outbox processor for guaranteed event delivery
	if cfg.Event.ProcessorEnabled {
		processorConfig := event.DefaultOutboxProcessorConfig()
		processorConfig.BatchSize = cfg.Event.BatchSize
		processorConfig.PollInterval = cfg.Event.PollInterval
		processorConfig.CleanupEnabled = cfg.Event.CleanupEnabled
		processorConfig.CleanupRetention = cfg.Event.CleanupRetention

		outboxProcessor := event.NewOutboxProcessor(outboxRepo, eventBus, eventSerializer, processorConfig, log)
		if err := outboxProcessor.Start(context.Background()); err != nil {
			log.Fatal("Failed to start outbox processor", zap.Error(err))
		}
		defer func() {
			if err := outboxProcessor.Stop(context.Background()); err != nil {
				log.Error("Error stopping outbox processor", zap.Error(err))
			}
		}()
		log.Info("Outbox processor started",
			zap.Int("batch_size", processorConfig.BatchSize),
			zap.Duration("poll_interval", processorConfig.PollInterval),
		)
	}

	// Start overdue invoice sweep
	sweepCtx, sweepCancel := context.WithCancel(context.Background())
	defer sweepCancel()
	if cfg.Overdue.SweepEnabled {
		go runOverdueSweep(sweepCtx, invoiceService, cfg.Overdue.SweepInterval, log)
		log.Info("Overdue invoice sweep started",
			zap.Duration("interval", cfg.Overdue.SweepInterval),
		)
	}

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down...")

	sweepCancel()
	log.Info("Shutdown complete")
}

// runOverdueSweep periodically marks sent and partially paid invoices past
// their due date as overdue.
func runOverdueSweep(ctx context.Context, invoices *documentapp.InvoiceService, interval time.Duration, log *zap.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			marked, err := invoices.MarkOverdueInvoices(ctx, time.Now())
			if err != nil {
				log.Error("Overdue sweep failed", zap.Error(err))
				continue
			}
			if marked > 0 {
				log.Info("Marked overdue invoices", zap.Int("count", marked))
			}
		}
	}
}
