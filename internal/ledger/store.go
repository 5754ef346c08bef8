package ledger

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// CommitHook runs after every successful mutation with the new state. A hook
// error rolls the mutation back.
type CommitHook func(ctx context.Context, state WalletState) error

// Option configures a Store.
type Option func(*Store)

// WithCommitHook registers the post-mutation hook, typically the vault save.
func WithCommitHook(hook CommitHook) Option {
	return func(s *Store) { s.hook = hook }
}

// WithClock overrides the time source used for LastUpdated.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// Store owns the wallet state for the lifetime of the process. Mutations are
// serialized; the commit hook runs while the lock is held so a save completes
// before the next operation reads state.
type Store struct {
	mu    sync.RWMutex
	state WalletState
	hook  CommitHook
	now   func() time.Time
}

// NewStore wraps an initial state, usually the result of a vault load.
func NewStore(state WalletState, opts ...Option) *Store {
	s := &Store{state: state.clone(), now: func() time.Time { return time.Now().UTC() }}
	if s.state.Transactions == nil {
		s.state.Transactions = []Transaction{}
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Snapshot returns a copy of the current state.
func (s *Store) Snapshot() WalletState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.clone()
}

// AppendTransaction applies tx to the balance, bumps the nonce and prepends it
// to the history. Callers validate beforehand.
func (s *Store) AppendTransaction(ctx context.Context, tx Transaction) (WalletState, error) {
	return s.Mutate(ctx, func(WalletState) (Transaction, error) {
		return tx, nil
	})
}

// Mutate gives fn exclusive access to the current state for one operation. The
// transaction fn returns is appended; if fn fails, or the amount or resulting
// balance falls outside the amount window, nothing changes.
func (s *Store) Mutate(ctx context.Context, fn func(current WalletState) (Transaction, error)) (WalletState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := fn(s.state.clone())
	if err != nil {
		return WalletState{}, err
	}
	if err := ValidAmount(tx.Amount); err != nil {
		return WalletState{}, fmt.Errorf("transaction %s: %w", tx.ID, err)
	}

	prev := s.state
	next := s.state.clone()
	next.Balance = apply(next.Balance, tx)
	if err := ValidAmount(next.Balance); err != nil {
		return WalletState{}, fmt.Errorf("balance after %s: %w", tx.ID, err)
	}
	next.Nonce++
	next.Transactions = append([]Transaction{tx}, next.Transactions...)
	next.LastUpdated = s.now()

	s.state = next
	if s.hook != nil {
		if err := s.hook(ctx, next.clone()); err != nil {
			s.state = prev
			return WalletState{}, fmt.Errorf("commit transaction %s: %w", tx.ID, err)
		}
	}

	return next.clone(), nil
}

// Flush hands the current state to the commit hook without mutating it.
func (s *Store) Flush(ctx context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.hook == nil {
		return nil
	}
	return s.hook(ctx, s.state.clone())
}
