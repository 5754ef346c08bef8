package routes

import (
    "github.com/gofiber/fiber/v2"

    "github.com/congo-pay/offline_pay/internal/wallet"
)

// RegisterWalletRoutes wires wallet-related endpoints.
func RegisterWalletRoutes(r fiber.Router, h *wallet.Handler) {
    r.Get("/wallet", h.Get)
    r.Get("/wallet/transactions", h.Transactions)
}
