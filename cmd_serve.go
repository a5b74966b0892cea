package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api"
	"github.com/spf13/cobra"

	"github.com/pivolan/stay_dashboard/pipeline"
)

const (
	uploadMaxAge    = 2 * time.Hour
	cleanupInterval = time.Minute
)

var withBot bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the web dashboard",
	RunE:  runServe,
}

var botCmd = &cobra.Command{
	Use:   "bot",
	Short: "Run only the Telegram bot",
	RunE:  runBot,
}

func init() {
	serveCmd.Flags().BoolVar(&withBot, "bot", false, "also run the Telegram bot (needs TG_TOKEN)")
	rootCmd.AddCommand(serveCmd, botCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cache := newCache()
	dash := NewDashboard(cache, logger)
	if _, err := cache.Get(); err != nil {
		// the page reports the error; an upload can still fix it
		logger.Warn().Err(err).Str("source", cfg.DataPath).Msg("initial load failed")
	}

	if withBot {
		api, err := newBotAPI()
		if err != nil {
			return err
		}
		bot := newTelegramBot(api, dash, cache, cfg, logger)
		go func() {
			if err := bot.Run(ctx, api); err != nil {
				logger.Error().Err(err).Msg("telegram bot stopped")
			}
		}()
	}
	go cleanupUploads(ctx, cache)

	h := newWebHandler(dash, cache, cfg, logger)
	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           h.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", cfg.ListenAddr).Str("source", cfg.DataPath).Msg("listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func runBot(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	api, err := newBotAPI()
	if err != nil {
		return err
	}
	cache := newCache()
	go cleanupUploads(ctx, cache)
	return newTelegramBot(api, NewDashboard(cache, logger), cache, cfg, logger).Run(ctx, api)
}

func newBotAPI() (*tgbotapi.BotAPI, error) {
	if cfg.TgToken == "" {
		return nil, errors.New("TG_TOKEN is required for the Telegram bot")
	}
	api, err := tgbotapi.NewBotAPI(cfg.TgToken)
	if err != nil {
		return nil, fmt.Errorf("tg error: %w", err)
	}
	return api, nil
}

// cleanupUploads removes stale uploads every minute, keeping the active source.
func cleanupUploads(ctx context.Context, cache *pipeline.Cache) {
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			err := removeOldFiles(cfg.UploadDir, time.Now().Add(-uploadMaxAge), cache.Source(), logger)
			if err != nil && !errors.Is(err, fs.ErrNotExist) {
				logger.Warn().Err(err).Msg("upload cleanup failed")
			}
		}
	}
}
