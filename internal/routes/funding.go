package routes

import (
    "github.com/gofiber/fiber/v2"

    "github.com/congo-pay/offline_pay/internal/funding"
)

// RegisterFundingRoutes wires bank top-up and withdrawal endpoints.
func RegisterFundingRoutes(r fiber.Router, h *funding.Handler) {
    r.Post("/bank/topup", h.TopUp)
    r.Post("/bank/withdraw", h.Withdraw)
}
