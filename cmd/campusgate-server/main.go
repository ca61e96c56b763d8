package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "modernc.org/sqlite"

	"github.com/jjayakar/campusgate/internal/campusgate/imagestore"
	"github.com/jjayakar/campusgate/internal/campusgate/notify"
	"github.com/jjayakar/campusgate/internal/campusgate/service"
	"github.com/jjayakar/campusgate/internal/campusgate/store/sqlite"
	"github.com/jjayakar/campusgate/internal/config"
	"github.com/jjayakar/campusgate/internal/db"
	"github.com/jjayakar/campusgate/internal/httpapi"
)

func main() {
	cfg := config.FromEnv()
	logger := log.New(os.Stdout, "campusgate-server ", log.LstdFlags|log.LUTC)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	conn, err := db.Open(ctx, db.Config{Path: cfg.DBPath, Env: cfg.Env})
	if err != nil {
		logger.Fatalf("open db: %v", err)
	}
	defer conn.Close()

	if cfg.Env == "dev" {
		if err := db.SeedDev(ctx, conn); err != nil {
			logger.Printf("dev seed: %v", err)
		}
	}

	writer := db.NewWorker(conn)
	defer writer.Close()

	// Stores
	people := sqlite.NewPersonStore(conn, writer)
	events := sqlite.NewEventStore(conn, writer)
	attempts := sqlite.NewAttemptStore(conn, writer)

	images, err := imagestore.NewDir(cfg.UploadDir)
	if err != nil {
		logger.Fatalf("image store: %v", err)
	}

	// Notification pipeline
	var notifier notify.Notifier
	if cfg.SenderEmail == "" || cfg.SecurityEmail == "" {
		logger.Printf("smtp not configured, security alerts go to the log")
		notifier = notify.LogNotifier{Logger: logger}
	} else {
		mailer, err := notify.NewMailer(notify.MailerConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SenderEmail,
			Password: cfg.SenderPassword,
			From:     cfg.SenderEmail,
			To:       cfg.SecurityEmail,
			BaseURL:  cfg.BaseURL,
		})
		if err != nil {
			logger.Fatalf("mailer: %v", err)
		}
		notifier = mailer
	}

	dispatcher := notify.NewDispatcher(notifier, images, notify.Config{
		QueueSize:   cfg.NotifyQueueSize,
		MaxAttempts: cfg.NotifyMaxAttempts,
	}, logger)
	dispatcher.Start()

	// Services
	registry := service.NewFaceRegistry(people, cfg.FaceTolerance)
	verification := service.NewVerificationService(attempts, logger)
	accessSvc := service.NewAccessService(registry, events, attempts, verification, dispatcher, logger)
	enrollment := service.NewEnrollmentService(people)
	reports := service.NewReportService(people, events, attempts)

	pruner := service.NewAttemptPruner(attempts, service.PrunerConfig{
		RetentionHours:  cfg.AttemptRetentionHours,
		IntervalMinutes: cfg.PruneIntervalMinutes,
	}, logger)
	pruner.Start(ctx)

	// HTTP
	srv := httpapi.NewServer(httpapi.Dependencies{
		Logger:     logger,
		Addr:       cfg.HTTPAddr,
		Access:     accessSvc,
		Enrollment: enrollment,
		Reports:    reports,
		Images:     images,
		DB:         conn,
	})

	go func() {
		logger.Printf("listening on %s", cfg.HTTPAddr)
		if err := srv.Start(); err != nil {
			logger.Printf("server error: %v", err)
			stop()
		}
	}()

	<-ctx.Done()

	// Shut the request surface down before the dispatcher so nothing
	// enqueues into a closed queue; then let queued alerts drain.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)

	pruner.Stop()
	dispatcher.Stop()
}
