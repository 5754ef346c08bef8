package ledger

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	// ErrInsufficientFunds occurs when the wallet lacks available balance
	// to cover a requested debit.
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrDuplicateTransaction indicates a transaction with the same identifier
	// already exists in the wallet history.
	ErrDuplicateTransaction = errors.New("duplicate transaction")
)

// TxType distinguishes debits from credits.
type TxType string

const (
	// TypeSent debits the wallet.
	TypeSent TxType = "sent"
	// TypeReceived credits the wallet.
	TypeReceived TxType = "received"
)

const (
	// StatusCompleted marks a settled transaction. It is the only status this ledger produces.
	StatusCompleted = "completed"
	// StatusPending is accepted when decoding persisted state.
	StatusPending = "pending"

	userIDPrefix = "user_"
	userIDLength = 12
)

// BootstrapBalance is the starting credit granted to a freshly initialised wallet.
var BootstrapBalance = decimal.NewFromInt(1000)

// Transaction is an immutable wallet history entry. ID doubles as the replay key.
type Transaction struct {
	ID        string          `json:"id"`
	Type      TxType          `json:"type"`
	Amount    decimal.Decimal `json:"amount"`
	PeerID    string          `json:"peerId,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
	Status    string          `json:"status"`
	Hash      string          `json:"hash,omitempty"`
}

// WalletState is the ledger root held by a Store.
type WalletState struct {
	Balance      decimal.Decimal `json:"balance"`
	Transactions []Transaction   `json:"transactions"`
	UserID       string          `json:"userId"`
	Nonce        int64           `json:"nonce"`
	LastUpdated  time.Time       `json:"lastUpdated"`
}

// NewWalletState returns first-run state: a fresh identity, the given grant and
// an empty history.
func NewWalletState(grant decimal.Decimal) WalletState {
	return WalletState{
		Balance:      grant,
		Transactions: []Transaction{},
		UserID:       NewUserID(),
		Nonce:        0,
		LastUpdated:  time.Now().UTC(),
	}
}

// NewUserID derives a readable device identity from a random seed. The hash is
// for formatting only and carries no security property.
func NewUserID() string {
	seed := uuid.New()
	sum := sha256.Sum256(seed[:])
	return userIDPrefix + hex.EncodeToString(sum[:])[:userIDLength]
}

// HasTransaction reports whether id is already present in the history.
func (s WalletState) HasTransaction(id string) bool {
	for _, tx := range s.Transactions {
		if tx.ID == id {
			return true
		}
	}
	return false
}

// Fold recomputes a balance from a starting grant and a transaction history.
func Fold(grant decimal.Decimal, txs []Transaction) decimal.Decimal {
	balance := grant
	for _, tx := range txs {
		balance = apply(balance, tx)
	}
	return balance
}

func apply(balance decimal.Decimal, tx Transaction) decimal.Decimal {
	if tx.Type == TypeReceived {
		return balance.Add(tx.Amount)
	}
	return balance.Sub(tx.Amount)
}

func (s WalletState) clone() WalletState {
	out := s
	out.Transactions = make([]Transaction, len(s.Transactions))
	copy(out.Transactions, s.Transactions)
	return out
}
