package funding

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/congo-pay/offline_pay/internal/ledger"
	"github.com/congo-pay/offline_pay/internal/logging"
	"github.com/congo-pay/offline_pay/internal/metrics"
	"github.com/congo-pay/offline_pay/internal/notification"
)

const (
	bankTxPrefix = "bank_"
	maxProvider  = 64
)

var (
	// DefaultTopUpAmount is credited when a top-up request names no amount.
	DefaultTopUpAmount = decimal.NewFromInt(500)
	// DefaultWithdrawalAmount is debited when a withdrawal request names no amount.
	DefaultWithdrawalAmount = decimal.NewFromInt(100)
	// MinWithdrawal is the smallest amount that can be sent to a bank.
	MinWithdrawal = decimal.NewFromInt(100)

	// ErrBelowMinimum is returned for withdrawals smaller than MinWithdrawal.
	ErrBelowMinimum = errors.New("below minimum withdrawal")
	// ErrProvider is returned when no bank provider is named.
	ErrProvider = errors.New("invalid bank provider")
	// ErrInvalidAmount is returned for non-positive amounts and for amounts
	// outside the ledger's scale and magnitude window.
	ErrInvalidAmount = errors.New("invalid amount")
)

// Service coordinates bank top-ups and withdrawals through the local ledger.
type Service struct {
	store    *ledger.Store
	bank     Bank
	notifier notification.Notifier
	logger   *slog.Logger
}

// NewService prepares a funding service. A nil bank falls back to StaticBank
// and a nil logger discards output.
func NewService(store *ledger.Store, bank Bank, notifier notification.Notifier, logger *slog.Logger) (*Service, error) {
	if store == nil {
		return nil, fmt.Errorf("ledger store is required")
	}
	if bank == nil {
		bank = StaticBank{}
	}
	if logger == nil {
		logger = logging.Discard()
	}
	return &Service{store: store, bank: bank, notifier: notifier, logger: logger}, nil
}

// TopUpInput captures the data required to add funds from a bank.
type TopUpInput struct {
	Provider string
	Amount   decimal.Decimal
}

// WithdrawInput captures the data required to send funds to a bank.
type WithdrawInput struct {
	Provider string
	Amount   decimal.Decimal
}

// FundingResult represents the outcome of a bank operation.
type FundingResult struct {
	TransactionID string
	Status        string
	Amount        decimal.Decimal
	WalletBalance decimal.Decimal
	BankReference string
	CompletedAt   time.Time
}

// TopUp authorizes and credits a bank top-up.
func (s *Service) TopUp(ctx context.Context, input TopUpInput) (FundingResult, error) {
	provider, err := validateProvider(input.Provider)
	if err != nil {
		return FundingResult{}, err
	}
	amount := input.Amount
	if amount.IsZero() {
		amount = DefaultTopUpAmount
	}
	if err := checkAmount(amount); err != nil {
		return FundingResult{}, err
	}

	current := s.store.Snapshot()
	decision, err := s.bank.AuthorizeTopUp(ctx, Authorization{Provider: provider, UserID: current.UserID, Amount: amount})
	if err != nil {
		return FundingResult{}, err
	}

	return s.post(ctx, ledger.TypeReceived, provider, amount, decision)
}

// Withdraw authorizes and debits a bank withdrawal.
func (s *Service) Withdraw(ctx context.Context, input WithdrawInput) (FundingResult, error) {
	provider, err := validateProvider(input.Provider)
	if err != nil {
		return FundingResult{}, err
	}
	amount := input.Amount
	if amount.IsZero() {
		amount = DefaultWithdrawalAmount
	}
	if err := checkAmount(amount); err != nil {
		return FundingResult{}, err
	}
	if amount.LessThan(MinWithdrawal) {
		return FundingResult{}, ErrBelowMinimum
	}

	current := s.store.Snapshot()
	if amount.GreaterThan(current.Balance) {
		return FundingResult{}, ledger.ErrInsufficientFunds
	}

	decision, err := s.bank.AuthorizeWithdrawal(ctx, Authorization{Provider: provider, UserID: current.UserID, Amount: amount})
	if err != nil {
		return FundingResult{}, err
	}

	return s.post(ctx, ledger.TypeSent, provider, amount, decision)
}

func (s *Service) post(ctx context.Context, typ ledger.TxType, provider string, amount decimal.Decimal, decision AuthorizationDecision) (FundingResult, error) {
	txID := bankTxPrefix + uuid.NewString()
	state, err := s.store.Mutate(ctx, func(current ledger.WalletState) (ledger.Transaction, error) {
		// the balance may have moved while the bank was authorizing
		if typ == ledger.TypeSent && amount.GreaterThan(current.Balance) {
			return ledger.Transaction{}, ledger.ErrInsufficientFunds
		}
		return ledger.Transaction{
			ID:        txID,
			Type:      typ,
			Amount:    amount,
			PeerID:    provider,
			Timestamp: time.Now().UTC(),
			Status:    ledger.StatusCompleted,
			Hash:      decision.Reference,
		}, nil
	})
	kind := "topup"
	if typ == ledger.TypeSent {
		kind = "withdrawal"
	}
	metrics.BankOperation(kind, err == nil)
	if err != nil {
		return FundingResult{}, err
	}

	if s.notifier != nil {
		msg := notification.Message{
			Kind:          notification.KindBankTopUp,
			Destination:   state.UserID,
			TransactionID: txID,
			Amount:        amount,
			Peer:          provider,
			Body:          fmt.Sprintf("%s added via %s", amount, provider),
			At:            state.LastUpdated,
		}
		if typ == ledger.TypeSent {
			msg.Kind = notification.KindBankWithdrawal
			msg.Body = fmt.Sprintf("%s sent to %s", amount, provider)
		}
		if err := s.notifier.Send(ctx, msg); err != nil {
			s.logger.Warn("notification failed", slog.String("kind", msg.Kind), slog.Any("error", err))
		}
	}

	return FundingResult{
		TransactionID: txID,
		Status:        ledger.StatusCompleted,
		Amount:        amount,
		WalletBalance: state.Balance,
		BankReference: decision.Reference,
		CompletedAt:   state.LastUpdated,
	}, nil
}

func checkAmount(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return fmt.Errorf("%w: amount must be positive", ErrInvalidAmount)
	}
	if err := ledger.ValidAmount(amount); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidAmount, err)
	}
	return nil
}

func validateProvider(provider string) (string, error) {
	provider = strings.TrimSpace(provider)
	if provider == "" || len(provider) > maxProvider {
		return "", ErrProvider
	}
	return provider, nil
}
