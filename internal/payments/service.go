package payments

import (
    "context"
    "fmt"
    "log/slog"
    "time"

    "github.com/google/uuid"
    "github.com/shopspring/decimal"

    "github.com/congo-pay/offline_pay/internal/ledger"
    "github.com/congo-pay/offline_pay/internal/metrics"
    "github.com/congo-pay/offline_pay/internal/notification"
    "github.com/congo-pay/offline_pay/internal/token"
)

// Service issues outgoing payment tokens and redeems incoming ones against the
// local ledger.
type Service struct {
    store    *ledger.Store
    codec    token.Codec
    signer   token.Signer
    notifier notification.Notifier
    logger   *slog.Logger
    newID    func() string
}

// NewService constructs a payment service.
func NewService(store *ledger.Store, codec token.Codec, signer token.Signer, notifier notification.Notifier, logger *slog.Logger) *Service {
    if logger == nil {
        logger = slog.Default()
    }
    return &Service{
        store:    store,
        codec:    codec,
        signer:   signer,
        notifier: notifier,
        logger:   logger,
        newID:    uuid.NewString,
    }
}

// IssueResult describes a freshly issued token.
type IssueResult struct {
    Token         string
    TransactionID string
    Amount        decimal.Decimal
    Nonce         int64
    Balance       decimal.Decimal
    IssuedAt      time.Time
}

// Issue signs a token for amount and debits the wallet immediately. If the
// token is never redeemed the funds are not returned.
func (s *Service) Issue(ctx context.Context, amount decimal.Decimal) (IssueResult, error) {
    if !amount.IsPositive() {
        return IssueResult{}, ErrInvalidAmount
    }
    if err := ledger.ValidAmount(amount); err != nil {
        return IssueResult{}, fmt.Errorf("%w: %v", ErrInvalidAmount, err)
    }

    var tok token.PaymentToken
    state, err := s.store.Mutate(ctx, func(current ledger.WalletState) (ledger.Transaction, error) {
        if amount.GreaterThan(current.Balance) {
            return ledger.Transaction{}, ErrInsufficientFunds
        }

        tok = token.PaymentToken{
            ID:       s.newID(),
            Amount:   amount,
            SenderID: current.UserID,
            Nonce:    current.Nonce + 1,
        }
        tok.Signature = s.signer.Sign(tok.ID, tok.Amount, tok.SenderID, tok.Nonce)

        return ledger.Transaction{
            ID:        tok.ID,
            Type:      ledger.TypeSent,
            Amount:    amount,
            Timestamp: time.Now().UTC(),
            Status:    ledger.StatusCompleted,
            Hash:      tok.Signature,
        }, nil
    })
    metrics.TokenIssued(err == nil)
    if err != nil {
        return IssueResult{}, err
    }

    outcome := IssueResult{
        Token:         s.codec.Encode(tok),
        TransactionID: tok.ID,
        Amount:        amount,
        Nonce:         tok.Nonce,
        Balance:       state.Balance,
        IssuedAt:      state.LastUpdated,
    }

    s.notify(ctx, notification.Message{
        Kind:          notification.KindTokenIssued,
        Destination:   tok.SenderID,
        TransactionID: tok.ID,
        Amount:        amount,
        Body:          fmt.Sprintf("Token %s issued for %s", tok.ID, amount),
        At:            state.LastUpdated,
    })

    return outcome, nil
}

func (s *Service) notify(ctx context.Context, msg notification.Message) {
    if s.notifier == nil {
        return
    }
    if err := s.notifier.Send(ctx, msg); err != nil {
        s.logger.Warn("notification failed", slog.String("kind", msg.Kind), slog.Any("error", err))
    }
}
