package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"cmms/internal/alert"
	"cmms/internal/auth"
	"cmms/internal/config"
	"cmms/internal/db"
	httpx "cmms/internal/http"
	"cmms/internal/jobs"
	"cmms/internal/maintenance"
	"cmms/internal/scheduler"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}

	gdb, err := db.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("db connect")
	}
	if err := db.AutoMigrateAndIndexes(gdb); err != nil {
		log.Fatal().Err(err).Msg("db migrate")
	}

	jwtSvc := auth.NewJWT(cfg.JWTSecret)

	ctx, cancel := context.WithCancel(context.Background())

	// alert sink
	var sink alert.Sink = alert.LogSink{}
	if cfg.AlertSink == "ses" {
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
		if err != nil {
			log.Fatal().Err(err).Msg("load aws config")
		}
		ses, err := alert.NewSESSink(awsCfg, cfg.SESFromEmail)
		if err != nil {
			log.Fatal().Err(err).Msg("init ses sink")
		}
		sink = ses
	}

	// scheduler
	mSvc := &maintenance.Service{DB: gdb}
	bridge := &jobs.Bridge{DB: gdb, Recipients: jobs.NotificationRecipients(gdb)}
	sched := scheduler.New(scheduler.Options{
		Clock:        scheduler.NewClock(),
		Sink:         sink,
		Bridge:       bridge,
		State:        &scheduler.GormStateStore{DB: gdb},
		Source:       &scheduler.GormSource{DB: gdb},
		DueHour:      cfg.DueHour,
		ReminderTick: cfg.ReminderTick,
		OverdueSweep: cfg.OverdueSweep,
		PreSweep: func(ctx context.Context) {
			if n, err := mSvc.MarkOverdue(ctx, time.Now()); err != nil {
				log.Error().Err(err).Msg("mark overdue")
			} else if n > 0 {
				log.Info().Int64("count", n).Msg("maintenances marked overdue")
			}
		},
	})
	go sched.Run(ctx)

	// dispatch worker
	worker := &jobs.Worker{
		ID:    cfg.WorkerID,
		Repo:  &jobs.Repo{DB: gdb},
		Sink:  sink,
		Shown: sched,
	}
	go worker.Run(ctx)

	r := httpx.NewRouter(cfg, gdb, jwtSvc, sched)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Info().Str("addr", cfg.HTTPAddr).Msg("listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("http server")
		}
	}()

	// graceful shutdown
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	<-ch

	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	_ = srv.Shutdown(shutdownCtx)
}
