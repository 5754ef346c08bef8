package routes

import (
    "github.com/gofiber/fiber/v2"

    "github.com/congo-pay/offline_pay/internal/payments"
)

// RegisterPaymentRoutes wires token issuance and redemption.
func RegisterPaymentRoutes(r fiber.Router, h *payments.Handler, redeemLimiter fiber.Handler) {
    r.Post("/tokens", h.Issue)
    r.Post("/tokens/redeem", redeemLimiter, h.Redeem)
}
