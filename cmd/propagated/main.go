package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/fredc1/propagate-uncertainty-project/internal/config"
	"github.com/fredc1/propagate-uncertainty-project/internal/server"
)

func main() {
	var cfgname, addr string
	flag.StringVar(&cfgname, "config", "", "YAML settings file")
	flag.StringVar(&addr, "addr", "", "address to listen on (overrides the settings file)")
	flag.Parse()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	cfg, err := config.Load(cfgname)
	if err != nil {
		log.Fatal().Err(err).Msg("loading settings")
	}
	if addr != "" {
		cfg.Addr = addr
	}
	lvl, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		log.Fatal().Err(err).Str("log_level", cfg.LogLevel).Msg("bad log level")
	}
	zerolog.SetGlobalLevel(lvl)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := server.New(cfg, log.Logger)
	go srv.SweepSessions(ctx, cfg.SessionTTL/4)
	hs := &http.Server{
		Addr:              cfg.Addr,
		Handler:           srv,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       time.Minute,
		WriteTimeout:      time.Minute,
	}
	go func() {
		<-ctx.Done()
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := hs.Shutdown(sctx); err != nil {
			log.Error().Err(err).Msg("shutting down")
		}
	}()
	log.Info().Str("addr", cfg.Addr).Msg("listening")
	if err := hs.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Msg("serving")
	}
}
