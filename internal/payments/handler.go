package payments

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

// Handler exposes token endpoints. It is a manual-entry transport: token
// strings pass through unmodified.
type Handler struct {
	service *Service
}

// NewHandler constructs a payment handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type issueRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

type redeemRequest struct {
	Token string `json:"token"`
}

// Issue creates a token for the requested amount.
func (h *Handler) Issue(c *fiber.Ctx) error {
	var req issueRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, Reason(ErrInvalidAmount))
	}

	res, err := h.service.Issue(c.UserContext(), req.Amount)
	if err != nil {
		return toHTTPError(err)
	}

	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"token":          res.Token,
		"transaction_id": res.TransactionID,
		"amount":         res.Amount,
		"nonce":          res.Nonce,
		"balance":        res.Balance,
		"issued_at":      res.IssuedAt,
	})
}

// Redeem verifies and credits an incoming token.
func (h *Handler) Redeem(c *fiber.Ctx) error {
	var req redeemRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, Reason(ErrMalformedInput))
	}

	res, err := h.service.Redeem(c.UserContext(), req.Token)
	if err != nil {
		return toHTTPError(err)
	}

	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"success":        true,
		"transaction_id": res.TransactionID,
		"amount":         res.Amount,
		"sender_id":      res.SenderID,
		"balance":        res.Balance,
		"redeemed_at":    res.RedeemedAt,
	})
}

func toHTTPError(err error) error {
	switch {
	case errors.Is(err, ErrAlreadyClaimed):
		return fiber.NewError(http.StatusConflict, Reason(err))
	case errors.Is(err, ErrInvalidSignature):
		return fiber.NewError(http.StatusUnprocessableEntity, Reason(err))
	case errors.Is(err, ErrInsufficientFunds), errors.Is(err, ErrMalformedInput):
		return fiber.NewError(http.StatusBadRequest, Reason(err))
	default:
		return fiber.NewError(http.StatusInternalServerError, Reason(err))
	}
}
