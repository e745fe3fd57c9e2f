package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/linemk/wolt-backend/internal/app"
	"github.com/linemk/wolt-backend/internal/config"
	"github.com/linemk/wolt-backend/internal/lib/logger"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

func main() {
	// загрузка конфигурации
	cfg := config.MustLoad()

	// инициализация логгера, зависит от настройки окружения
	log := logger.SetupLogger(cfg.Env)
	log.Info("starting app", slog.String("env", cfg.Env))

	// цены в ответах числами, а не строками
	decimal.MarshalJSONWithoutQuotes = true

	// загружаем объект приложения, конфигом и подключением к БД
	application, err := app.NewApp(log, cfg)
	if err != nil {
		log.Error("failed to initialize app", logger.Err(err))
		panic(errors.Wrap(err, "failed to initialize app"))
	}
	defer application.DB.Close()

	router := app.NewRouter(application.Logger, cfg.JWT, application.Services)

	srv := &http.Server{
		Addr:         cfg.HTTPServer.Address,
		Handler:      router,
		ReadTimeout:  cfg.HTTPServer.Timeout,
		WriteTimeout: cfg.HTTPServer.Timeout,
		IdleTimeout:  cfg.HTTPServer.IdleTimeout,
	}

	go func() {
		log.Info("starting server", slog.String("address", cfg.HTTPServer.Address))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", logger.Err(err))
		}
	}()

	// graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	stopSign := <-stop
	log.Info("received shutdown signal", slog.String("signal", stopSign.String()))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("server shutdown failed", logger.Err(err))
	}
	log.Info("server gracefully stopped")
}
