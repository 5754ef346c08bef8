package wallet

import (
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

// Handler exposes wallet HTTP endpoints.
type Handler struct {
	service *Service
}

// NewHandler builds a wallet HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type transactionResponse struct {
	ID        string          `json:"id"`
	Type      string          `json:"type"`
	Amount    decimal.Decimal `json:"amount"`
	PeerID    string          `json:"peer_id,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
	Status    string          `json:"status"`
	Hash      string          `json:"hash,omitempty"`
}

// Get returns the wallet summary.
func (h *Handler) Get(c *fiber.Ctx) error {
	summary := h.service.Summary()
	return c.Status(http.StatusOK).JSON(fiber.Map{
		"user_id":           summary.UserID,
		"balance":           summary.Balance,
		"nonce":             summary.Nonce,
		"transaction_count": summary.TransactionCount,
		"last_updated":      summary.LastUpdated,
	})
}

// Transactions returns a page of wallet history.
func (h *Handler) Transactions(c *fiber.Ctx) error {
	history := h.service.History(c.QueryInt("offset", 0), c.QueryInt("limit", defaultPageSize))

	items := make([]transactionResponse, 0, len(history.Transactions))
	for _, tx := range history.Transactions {
		items = append(items, transactionResponse{
			ID:        tx.ID,
			Type:      string(tx.Type),
			Amount:    tx.Amount,
			PeerID:    tx.PeerID,
			Timestamp: tx.Timestamp,
			Status:    tx.Status,
			Hash:      tx.Hash,
		})
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{
		"transactions": items,
		"total":        history.Total,
	})
}
