// Package depanneo wires the marketplace service together: storage,
// cache, broker, services, router and the HTTP server lifecycle.
package depanneo

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/streadway/amqp"

	"github.com/depanneo/backend/internal/cache"
	"github.com/depanneo/backend/internal/config"
	"github.com/depanneo/backend/internal/lib/jwt"
	"github.com/depanneo/backend/internal/migrations"
	"github.com/depanneo/backend/internal/rabbitmq"
	authservice "github.com/depanneo/backend/internal/services/auth"
	requestservice "github.com/depanneo/backend/internal/services/request"
	subscriptionservice "github.com/depanneo/backend/internal/services/subscription"
	"github.com/depanneo/backend/internal/storage"
)

// App is the assembled service.
type App struct {
	server *http.Server
	logger *slog.Logger
	db     *storage.Storage
	broker *amqp.Connection
}

// New builds the application from config.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	db, err := storage.New(cfg.StorageConnectionString)
	if err != nil {
		return nil, err
	}
	if err = migrations.Run(db.DB, cfg.MigrationsPath); err != nil {
		return nil, err
	}
	if err = storage.CheckDatabaseReady(db); err != nil {
		return nil, err
	}

	cacheRedis, err := cache.InitServer(ctx, cfg.RedisConnection)
	if err != nil {
		return nil, err
	}

	broker, err := rabbitmq.Connect(cfg.AddressRabbit, cfg.Retries, cfg.RetryDelay)
	if err != nil {
		return nil, err
	}
	channel, err := rabbitmq.SetupChannel(broker, rabbitmq.DefaultQueues)
	if err != nil {
		return nil, err
	}
	publisher := rabbitmq.NewPublisher(channel)

	jwtMaker := jwt.NewJWTMaker(cfg.JWTSecretKey, cfg.TokenTTL)
	authService := authservice.New(db, jwtMaker)
	subscriptionService := subscriptionservice.New(db, logger)
	requestService := requestservice.New(db, cacheRedis, publisher, logger)

	router := chi.NewRouter()
	RegisterRoutes(router, logger, cfg, jwtMaker, authService, requestService, subscriptionService)

	srv := &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return &App{
		server: srv,
		logger: logger,
		db:     db,
		broker: broker,
	}, nil
}

// Run serves HTTP until ctx is cancelled, then shuts down gracefully.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		err := a.server.Shutdown(timeoutCtx)
		_ = a.broker.Close()
		_ = a.db.DB.Close()
		return err
	}
}
