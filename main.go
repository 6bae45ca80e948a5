package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/wordle/apps/rusdle-server/internal/auth"
	"github.com/robalobadob/wordle/apps/rusdle-server/internal/config"
	"github.com/robalobadob/wordle/apps/rusdle-server/internal/game"
	"github.com/robalobadob/wordle/apps/rusdle-server/internal/httpserver"
	"github.com/robalobadob/wordle/apps/rusdle-server/internal/storage"
	"github.com/robalobadob/wordle/apps/rusdle-server/internal/store"
	"github.com/robalobadob/wordle/apps/rusdle-server/internal/words"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	setupLogger(cfg)

	dict, err := words.Default(words.WithWordLength(cfg.Game.WordLength))
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load default dictionary")
	}
	if f := cfg.Game.DictionaryFile; f != "" {
		if err := dict.LoadFile(f, cfg.Game.DictionaryAppend); err != nil {
			log.Fatal().Err(err).Str("file", f).Msg("failed to load dictionary file")
		}
	}
	log.Info().Int("words", dict.Len()).Int("wordLength", dict.WordLength()).Msg("dictionary ready")

	db, err := storage.Open(cfg.DBPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.DBPath).Msg("failed to open database")
	}
	defer db.Close()
	if err := storage.Migrate(context.Background(), db); err != nil {
		log.Fatal().Err(err).Msg("failed to migrate database")
	}

	srv := httpserver.New(httpserver.Options{
		Store:  store.NewMemoryStore(cfg.SessionTTL, 10*time.Minute),
		Dict:   dict,
		Rounds: storage.NewRoundRepo(db),
		Users:  storage.NewUserRepo(db),
		Issuer: auth.NewIssuer(cfg.JWTSecret, cfg.TokenTTL()),
		Defaults: game.Config{
			HardMode: cfg.Game.HardMode,
			MaxTries: cfg.Game.MaxTries,
		},
		DailySalt:      cfg.Game.DailySalt,
		CookieName:     cfg.CookieName,
		ClientOrigin:   cfg.ClientOrigin,
		SecureCookies:  cfg.Production(),
		RequestTimeout: cfg.RequestTimeout,
	})

	hs := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Info().Str("addr", hs.Addr).Msg("starting rusdle-server")
		if err := hs.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server exited")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := hs.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}

func setupLogger(cfg *config.Config) {
	zerolog.TimeFieldFormat = time.RFC3339
	if lvl, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}
	if cfg.LogFormat == "console" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	}
}
