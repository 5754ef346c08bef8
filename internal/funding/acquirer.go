package funding

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Bank represents a connector to a linked bank or payment rail.
type Bank interface {
	AuthorizeTopUp(ctx context.Context, input Authorization) (AuthorizationDecision, error)
	AuthorizeWithdrawal(ctx context.Context, input Authorization) (AuthorizationDecision, error)
}

// AuthorizationDecision captures the simulated response from the bank.
type AuthorizationDecision struct {
	Reference string
	Status    string
}

// Authorization carries the data sent to the bank for either direction.
type Authorization struct {
	Provider string
	UserID   string
	Amount   decimal.Decimal
}

// StaticBank simulates a linked bank that approves every request.
type StaticBank struct{}

// AuthorizeTopUp approves the funding request with a synthetic reference.
func (StaticBank) AuthorizeTopUp(_ context.Context, _ Authorization) (AuthorizationDecision, error) {
	return AuthorizationDecision{Reference: uuid.NewString(), Status: "approved"}, nil
}

// AuthorizeWithdrawal approves the withdrawal request with a synthetic reference.
func (StaticBank) AuthorizeWithdrawal(_ context.Context, _ Authorization) (AuthorizationDecision, error) {
	return AuthorizationDecision{Reference: uuid.NewString(), Status: "approved"}, nil
}
