package funding

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"github.com/congo-pay/offline_pay/internal/ledger"
)

// Handler exposes HTTP endpoints for bank funding flows.
type Handler struct {
	service *Service
}

// NewHandler constructs a funding handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type bankRequest struct {
	Provider string          `json:"provider"`
	Amount   decimal.Decimal `json:"amount"`
}

type fundingResponse struct {
	TransactionID string          `json:"transaction_id"`
	Status        string          `json:"status"`
	Amount        decimal.Decimal `json:"amount"`
	WalletBalance decimal.Decimal `json:"wallet_balance"`
	BankReference string          `json:"bank_reference"`
}

// TopUp processes wallet top-ups from a linked bank.
func (h *Handler) TopUp(c *fiber.Ctx) error {
	var req bankRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}

	result, err := h.service.TopUp(c.UserContext(), TopUpInput{Provider: req.Provider, Amount: req.Amount})
	if err != nil {
		return toHTTPError(err)
	}

	return c.Status(http.StatusCreated).JSON(toResponse(result))
}

// Withdraw processes wallet withdrawals to a linked bank.
func (h *Handler) Withdraw(c *fiber.Ctx) error {
	var req bankRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}

	result, err := h.service.Withdraw(c.UserContext(), WithdrawInput{Provider: req.Provider, Amount: req.Amount})
	if err != nil {
		return toHTTPError(err)
	}

	return c.Status(http.StatusCreated).JSON(toResponse(result))
}

func toHTTPError(err error) error {
	switch {
	case errors.Is(err, ledger.ErrInsufficientFunds):
		return fiber.NewError(http.StatusBadRequest, "insufficient funds")
	case errors.Is(err, ErrBelowMinimum):
		return fiber.NewError(http.StatusBadRequest, "minimum withdrawal is "+MinWithdrawal.String())
	case errors.Is(err, ErrInvalidAmount), errors.Is(err, ledger.ErrAmountOutOfRange):
		return fiber.NewError(http.StatusBadRequest, "enter a valid amount")
	case errors.Is(err, ErrProvider):
		return fiber.NewError(http.StatusBadRequest, ErrProvider.Error())
	default:
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
}

func toResponse(result FundingResult) fundingResponse {
	return fundingResponse{
		TransactionID: result.TransactionID,
		Status:        result.Status,
		Amount:        result.Amount,
		WalletBalance: result.WalletBalance,
		BankReference: result.BankReference,
	}
}
