package payments

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/congo-pay/offline_pay/internal/ledger"
	"github.com/congo-pay/offline_pay/internal/metrics"
	"github.com/congo-pay/offline_pay/internal/notification"
	"github.com/congo-pay/offline_pay/internal/token"
)

// RedeemResult describes an accepted token.
type RedeemResult struct {
	TransactionID string
	Amount        decimal.Decimal
	SenderID      string
	Balance       decimal.Decimal
	RedeemedAt    time.Time
}

// Redeem validates an incoming token string and credits the wallet. The gates
// run in order: scheme, structure, double-spend, signature. Nothing is credited
// unless all of them pass.
func (s *Service) Redeem(ctx context.Context, raw string) (RedeemResult, error) {
	tok, err := s.codec.Decode(raw)
	if err != nil {
		metrics.TokenRedeemed(metrics.OutcomeMalformed)
		return RedeemResult{}, fmt.Errorf("%w: %v", ErrMalformedInput, err)
	}

	state, err := s.store.Mutate(ctx, func(current ledger.WalletState) (ledger.Transaction, error) {
		if current.HasTransaction(tok.ID) {
			return ledger.Transaction{}, ErrAlreadyClaimed
		}
		if !s.signer.Verify(tok) {
			return ledger.Transaction{}, ErrInvalidSignature
		}
		return ledger.Transaction{
			ID:        tok.ID,
			Type:      ledger.TypeReceived,
			Amount:    tok.Amount,
			PeerID:    tok.SenderID,
			Timestamp: time.Now().UTC(),
			Status:    ledger.StatusCompleted,
			Hash:      tok.Signature,
		}, nil
	})
	if err != nil {
		s.logRejection(tok, err)
		return RedeemResult{}, err
	}
	metrics.TokenRedeemed(metrics.OutcomeAccepted)

	s.notify(ctx, notification.Message{
		Kind:          notification.KindTokenRedeemed,
		Destination:   state.UserID,
		TransactionID: tok.ID,
		Amount:        tok.Amount,
		Peer:          tok.SenderID,
		Body:          fmt.Sprintf("Received %s from %s", tok.Amount, tok.SenderID),
		At:            state.LastUpdated,
	})

	return RedeemResult{
		TransactionID: tok.ID,
		Amount:        tok.Amount,
		SenderID:      tok.SenderID,
		Balance:       state.Balance,
		RedeemedAt:    state.LastUpdated,
	}, nil
}

func (s *Service) logRejection(tok token.PaymentToken, err error) {
	attrs := []any{slog.String("token_id", tok.ID), slog.String("sender", tok.SenderID)}
	switch {
	case errors.Is(err, ErrAlreadyClaimed):
		metrics.TokenRedeemed(metrics.OutcomeAlreadyClaimed)
		s.logger.Warn("double spend attempt blocked", attrs...)
	case errors.Is(err, ErrInvalidSignature):
		metrics.TokenRedeemed(metrics.OutcomeInvalidSignature)
		s.logger.Warn("token signature mismatch", attrs...)
	default:
		metrics.TokenRedeemed(metrics.OutcomeError)
		s.logger.Error("redeem failed", append(attrs, slog.Any("error", err))...)
	}
}
