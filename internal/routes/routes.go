package routes

import (
    "fmt"
    "log/slog"
    "net/http"
    "time"

    "github.com/gofiber/fiber/v2"
    "github.com/gofiber/fiber/v2/middleware/logger"
    "github.com/gofiber/fiber/v2/middleware/recover"
    "github.com/jackc/pgx/v5/pgxpool"
    "github.com/redis/go-redis/v9"

    "github.com/congo-pay/offline_pay/internal/config"
    "github.com/congo-pay/offline_pay/internal/funding"
    "github.com/congo-pay/offline_pay/internal/ledger"
    "github.com/congo-pay/offline_pay/internal/metrics"
    "github.com/congo-pay/offline_pay/internal/middleware"
    "github.com/congo-pay/offline_pay/internal/notification"
    "github.com/congo-pay/offline_pay/internal/payments"
    "github.com/congo-pay/offline_pay/internal/token"
    "github.com/congo-pay/offline_pay/internal/wallet"
)

// Deps aggregates shared dependencies required to wire routes.
// DB and Cache are optional.
type Deps struct {
    Cfg    config.Config
    Store  *ledger.Store
    DB     *pgxpool.Pool
    Cache  *redis.Client
    Logger *slog.Logger
}

// Setup configures middlewares and all application routes.
func Setup(app *fiber.App, d Deps) error {
    if d.Store == nil {
        return fmt.Errorf("ledger store is required")
    }
    if d.Logger == nil {
        return fmt.Errorf("logger is required")
    }

    // Middlewares
    app.Use(recover.New())
    app.Use(middleware.RequestID())
    if d.Cfg.IsDev() {
        // Plain text access log in desired format: [HH:MM:SS] 200 -  145ms METHOD /path
        app.Use(logger.New(logger.Config{
            Format:     "[${time}] ${status} -  ${latency} ${method} ${path}\n",
            TimeFormat: "15:04:05",
            TimeZone:   "Local",
        }))
    }
    app.Use(middleware.Audit(d.Logger))

    // Health
    RegisterHealthRoutes(app, d)
    app.Get("/metrics", metrics.Handler())

    // Services and handlers
    var notifier notification.Notifier = notification.NewLoggerNotifier(d.Logger)
    if d.Cache != nil {
        notifier = notification.Multi{notifier, notification.NewRedisNotifier(d.Cache, d.Cfg.EventsChannel)}
    }
    codec := token.NewCodec(d.Cfg.TokenScheme)
    signer := token.NewSigner(d.Cfg.SigningSecret)

    walletSvc := wallet.NewService(d.Store)
    paymentSvc := payments.NewService(d.Store, codec, signer, notifier, d.Logger)
    fundingSvc, err := funding.NewService(d.Store, funding.StaticBank{}, notifier, d.Logger)
    if err != nil {
        return err
    }

    // API routes
    api := app.Group("/api/v1")
    api.Get("/ping", func(c *fiber.Ctx) error {
        return c.Status(http.StatusOK).JSON(fiber.Map{
            "status":     "ok",
            "request_id": middleware.RequestIDFrom(c),
            "timestamp":  time.Now().UTC().Format(time.RFC3339Nano),
        })
    })

    mutating := api.Group("")
    if d.Cache != nil {
        mutating.Use(middleware.Idempotency(d.Cache, d.Cfg.IdempotencyTTL, d.Logger))
    }

    RegisterWalletRoutes(api, wallet.NewHandler(walletSvc))
    RegisterPaymentRoutes(mutating, payments.NewHandler(paymentSvc), middleware.RedeemRateLimit(d.Cache, d.Cfg.RedeemRateLimit))
    RegisterFundingRoutes(mutating, funding.NewHandler(fundingSvc))

    return nil
}
