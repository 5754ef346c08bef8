package wallet

import (
    "github.com/congo-pay/offline_pay/internal/ledger"
)

const defaultPageSize = 50

// Service exposes read-only wallet views over the ledger store.
type Service struct {
    store *ledger.Store
}

// NewService builds a wallet service instance.
func NewService(store *ledger.Store) *Service {
    return &Service{store: store}
}

// Summary returns balance and identity.
func (s *Service) Summary() Summary {
    state := s.store.Snapshot()
    return Summary{
        UserID:           state.UserID,
        Balance:          state.Balance,
        Nonce:            state.Nonce,
        TransactionCount: len(state.Transactions),
        LastUpdated:      state.LastUpdated,
    }
}

// History returns up to limit transactions starting at offset.
func (s *Service) History(offset, limit int) History {
    state := s.store.Snapshot()
    total := len(state.Transactions)
    if limit <= 0 {
        limit = defaultPageSize
    }
    if offset < 0 {
        offset = 0
    }
    if offset > total {
        offset = total
    }
    end := offset + limit
    if end > total {
        end = total
    }
    return History{Transactions: state.Transactions[offset:end], Total: total}
}
