package server

import (
    "context"
    "log/slog"
    "time"

    "github.com/gofiber/fiber/v2"
    "github.com/jackc/pgx/v5/pgxpool"
    "github.com/redis/go-redis/v9"

    "github.com/congo-pay/offline_pay/internal/config"
    "github.com/congo-pay/offline_pay/internal/ledger"
    "github.com/congo-pay/offline_pay/internal/routes"
)

// Server wraps the Fiber application and the wallet it serves.
type Server struct {
    app   *fiber.App
    cfg   config.Config
    store *ledger.Store
}

// New instantiates the HTTP server and delegates route wiring to routes.Setup.
// db and cache may be nil.
func New(cfg config.Config, store *ledger.Store, db *pgxpool.Pool, cache *redis.Client, logger *slog.Logger) (*Server, error) {
    app := fiber.New(fiber.Config{
        AppName:      cfg.AppName,
        ReadTimeout:  30 * time.Second,
        WriteTimeout: 30 * time.Second,
    })

    if err := routes.Setup(app, routes.Deps{Cfg: cfg, Store: store, DB: db, Cache: cache, Logger: logger}); err != nil {
        return nil, err
    }

    return &Server{app: app, cfg: cfg, store: store}, nil
}

// App exposes the underlying Fiber app, mainly for tests.
func (s *Server) App() *fiber.App {
    return s.app
}

// Listen starts the HTTP server.
func (s *Server) Listen() error {
    return s.app.Listen(s.cfg.Address())
}

// Shutdown gracefully stops the HTTP server and persists the final wallet state.
func (s *Server) Shutdown(ctx context.Context) error {
    if err := s.app.ShutdownWithContext(ctx); err != nil {
        return err
    }
    return s.store.Flush(ctx)
}
