package vault

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/congo-pay/offline_pay/internal/ledger"
)

// DefaultKeyID is the fixed storage identifier of the wallet blob.
const DefaultKeyID = "offline_pay_vault_v2"

// Vault couples the codec with a blob store under one storage identifier.
type Vault struct {
	store  BlobStore
	codec  *Codec
	keyID  string
	logger *slog.Logger
}

// New builds a vault. An empty keyID falls back to DefaultKeyID.
func New(store BlobStore, codec *Codec, keyID string, logger *slog.Logger) *Vault {
	if keyID == "" {
		keyID = DefaultKeyID
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Vault{store: store, codec: codec, keyID: keyID, logger: logger}
}

// Load reads and decrypts the persisted state. It returns ErrNotFound when
// nothing was saved yet and ErrCorrupt when the blob is unreadable.
func (v *Vault) Load(ctx context.Context) (ledger.WalletState, error) {
	blob, err := v.store.Get(ctx, v.keyID)
	if err != nil {
		return ledger.WalletState{}, err
	}
	return v.codec.Open(blob)
}

// Save encrypts and persists state. Its signature matches ledger.CommitHook.
func (v *Vault) Save(ctx context.Context, state ledger.WalletState) error {
	blob, err := v.codec.Seal(state)
	if err != nil {
		return err
	}
	if err := v.store.Put(ctx, v.keyID, blob); err != nil {
		return fmt.Errorf("persist vault: %w", err)
	}
	return nil
}

// LoadOrInit returns the persisted state, or first-run state when none exists.
// A corrupt blob is discarded and replaced by fresh state. Storage failures are
// returned unchanged; they are not evidence of tampering.
func (v *Vault) LoadOrInit(ctx context.Context, grant decimal.Decimal) (ledger.WalletState, bool, error) {
	state, err := v.Load(ctx)
	switch {
	case err == nil:
		return state, false, nil
	case errors.Is(err, ErrNotFound):
		v.logger.Info("vault empty, initialising wallet", slog.String("key", v.keyID))
	case errors.Is(err, ErrCorrupt):
		v.logger.Error("vault unreadable, resetting wallet", slog.String("key", v.keyID), slog.Any("error", err))
	default:
		return ledger.WalletState{}, false, fmt.Errorf("load vault: %w", err)
	}

	fresh := ledger.NewWalletState(grant)
	if err := v.Save(ctx, fresh); err != nil {
		return ledger.WalletState{}, false, err
	}
	return fresh, true, nil
}
