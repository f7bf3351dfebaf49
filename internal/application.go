package application

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rocketscienceinc/tictactoe-web/internal/config"
	"github.com/rocketscienceinc/tictactoe-web/internal/repository"
	"github.com/rocketscienceinc/tictactoe-web/internal/repository/storage"
	"github.com/rocketscienceinc/tictactoe-web/internal/tictactoe"
	"github.com/rocketscienceinc/tictactoe-web/internal/usecase"
	"github.com/rocketscienceinc/tictactoe-web/transport/rest"
	"github.com/rocketscienceinc/tictactoe-web/transport/websocket"
	"github.com/rocketscienceinc/tictactoe-web/web"
)

// RunApp - runs the application.
func RunApp(logger *slog.Logger, conf *config.Config) error {
	log := logger.With("component", "app")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigs
		log.Info("Received signal, shutting down", "signal", sig)
		cancel()
	}()

	sessionRepo, closeStorage, err := newSessionRepository(ctx, conf)
	if err != nil {
		return err
	}

	defer func() {
		if err = closeStorage(); err != nil {
			log.Error("could not close session storage", "error", err)
		}
	}()

	gameController := tictactoe.NewGameController(time.Now)
	sessionUseCase := usecase.NewSessionManager(logger, sessionRepo, gameController)

	mux := http.NewServeMux()
	rest.NewHandlers(logger, sessionUseCase, web.Index, conf.Storage.SessionTTL).Register(mux)
	mux.Handle("GET /ws", websocket.New(logger, sessionUseCase))

	// run HTTP server
	httpErrCh := make(chan error, 1)
	go func() {
		if httpErr := rest.NewServer(logger, conf.HTTPPort, mux).Start(ctx); httpErr != nil {
			log.Error("HTTP server error", "error", httpErr)
			httpErrCh <- httpErr
		}
		close(httpErrCh)
	}()

	select {
	case err = <-httpErrCh:
		if err != nil {
			return fmt.Errorf("HTTP server error: %w", err)
		}

		return nil
	case <-ctx.Done():
		log.Info("Application context canceled, shutting down")

		// wait for the graceful shutdown to finish
		if err = <-httpErrCh; err != nil {
			return fmt.Errorf("HTTP server error: %w", err)
		}

		return nil
	}
}

// newSessionRepository picks the session storage named by the config.
func newSessionRepository(ctx context.Context, conf *config.Config) (repository.SessionRepository, func() error, error) {
	switch conf.Storage.Driver {
	case config.StorageRedis:
		redisStorage, err := storage.NewRedisStorage(ctx, conf.Redis.GetRedisAddr(), conf.Redis.DB)
		if err != nil {
			return nil, nil, fmt.Errorf("could not connect to redis storage: %w", err)
		}

		return repository.NewSessionRepository(redisStorage.Connection, conf.Storage.SessionTTL), redisStorage.Close, nil
	default:
		noop := func() error { return nil }

		return repository.NewMemorySessionRepository(conf.Storage.SessionTTL), noop, nil
	}
}
