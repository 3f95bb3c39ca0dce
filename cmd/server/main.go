package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"redhanded/internal/auth"
	"redhanded/internal/config"
	"redhanded/internal/gateway"
	"redhanded/internal/httpapi"
	"redhanded/internal/ledger"
	"redhanded/internal/lobby"
	"redhanded/npc"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("load config")
	}
	log := cfg.Logger()

	dsn := cfg.SQLitePath
	if cfg.LedgerMode == config.LedgerModePostgres {
		dsn = cfg.DatabaseURL
	}
	ledgerService, err := ledger.NewService(cfg.LedgerMode, dsn)
	if err != nil {
		log.WithError(err).Fatal("init ledger service")
	}
	defer ledgerService.Close()

	personas := npc.NewDefaultRegistry()
	if cfg.PersonasFile != "" {
		if err := personas.LoadFromFile(cfg.PersonasFile); err != nil {
			log.WithError(err).Fatal("load NPC personas")
		}
	}

	lby := lobby.New(lobby.Options{
		Game:        cfg.Game.EngineConfig(),
		Messages:    cfg.Messages,
		Personas:    personas,
		Ledger:      ledgerService,
		Hosts:       auth.NewHostManager(),
		MaxRooms:    cfg.MaxRooms,
		IdleTimeout: cfg.RoomIdleTimeout,
		Log:         log,
	})
	defer lby.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go lby.Run(ctx)

	gw := gateway.New(lby, log)
	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           httpapi.New(lby, ledgerService, gw, log).Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.WithError(err).Warn("shutdown")
		}
	}()

	log.WithFields(logrus.Fields{
		"addr":     cfg.Addr,
		"ledger":   cfg.LedgerMode,
		"personas": personas.Count(),
	}).Info("server starting")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.WithError(err).Fatal("server failed")
	}
	log.Info("server stopped")
}
