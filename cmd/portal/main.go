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

	"team-portal/internal/api"
	"team-portal/internal/config"
	"team-portal/internal/handler"
	"team-portal/internal/repository"
	"team-portal/internal/service"
	"team-portal/pkg/logger"
	"team-portal/pkg/telegram"
)

func main() {
	logrus.Info("Initializing config...")
	cfg := config.Get()
	log := logger.New(cfg.LogLevel)
	log.Info("Config initialized")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := repository.Open(cfg.DatabaseDriver, cfg.DatabaseURL, log)
	if err != nil {
		log.WithError(err).Fatal("Failed to connect to database")
	}
	defer func() {
		if err := repository.Close(db); err != nil {
			log.WithError(err).Warn("Error closing database")
		}
	}()

	store, err := repository.NewStore(db, log)
	if err != nil {
		log.WithError(err).Fatal("Failed to create store")
	}

	users := service.NewUserService(store.Users, log)
	entries := service.NewTimeEntryService(store, cfg.Location, log)
	status := service.NewStatusService(store, cfg.Location)
	orders := service.NewServiceOrderService(store.Orders, log)
	documents := service.NewDocumentService(store.Documents, log)
	tokens := service.NewTokenService(cfg.JWTSecret, cfg.TokenTTL)

	if cfg.AdminConfigured() {
		if _, err := users.InitializeAdmin(ctx, cfg.AdminUsername, cfg.AdminEmail, cfg.AdminPassword); err != nil {
			log.WithError(err).Warn("Failed to initialize admin")
		} else {
			log.WithField("username", cfg.AdminUsername).Info("Admin initialized")
		}
	}

	if cfg.BotEnabled() {
		client, err := telegram.NewClient(cfg.TelegramToken, cfg.TelegramDebug)
		if err != nil {
			log.WithError(err).Fatal("Failed to create Telegram client")
		}
		log.Infof("Authorized on account %s", client.Bot.Self.UserName)

		bot := handler.NewHandler(client, users, entries, status, log)
		go bot.HandleUpdates(ctx, client.Updates())
		defer client.Stop()
	} else {
		log.Info("TELEGRAM_BOT_TOKEN not set, bot disabled")
	}

	router := api.NewRouter(api.NewHandler(api.Services{
		Users:     users,
		Entries:   entries,
		Status:    status,
		Orders:    orders,
		Documents: documents,
		Tokens:    tokens,
	}, log))

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Infof("HTTP server listening on %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("HTTP server failed")
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Warn("HTTP server shutdown")
	}

	log.Info("Stopped gracefully")
}
