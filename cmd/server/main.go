package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"poolledger/internal/config"
	"poolledger/internal/db"
	"poolledger/internal/handlers"
	"poolledger/internal/identity"
	"poolledger/internal/services"
	"poolledger/internal/store"

	"github.com/rs/zerolog"
)

func main() {
	cfg := config.Load()
	log := zerolog.New(os.Stderr).With().Timestamp().Str("service", "poolledger").Logger()
	if cfg.AppEnv == "development" {
		log = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	database, err := db.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect database")
	}
	defer database.Close()

	profiles := store.NewProfileStore(database)
	investors := store.NewInvestorStore(database)
	cycles := store.NewCycleStore(database)
	deposits := store.NewDepositStore(database)
	withdrawals := store.NewWithdrawalStore(database)
	shares := store.NewShareStore(database)
	txRunner := db.NewTxRunner(database)

	sessions := identity.NewSessionVerifier(cfg.JWTSecret)
	payloads := identity.NewPayloadVerifier(cfg.TelegramBotToken, cfg.InitDataTTL)
	resolver := identity.NewResolver(profiles, sessions, payloads, log)

	service := services.NewPoolService(txRunner, investors, cycles, deposits, withdrawals, shares, log)
	handler := handlers.New(cfg, service, shares, resolver, resolver, log)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler.Routes(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", server.Addr).Msg("pool ledger API listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)
	<-shutdown

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("shutdown error")
	}
}
