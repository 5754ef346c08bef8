package vault

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"

	"github.com/congo-pay/offline_pay/internal/ledger"
)

// DefaultPassphrase is the vault secret embedded in the build.
const DefaultPassphrase = "OFFLINE_PAY_TOP_SECRET_VAULT_KEY_2026"

const keyInfo = "offline_pay vault v2"

// ErrCorrupt means a blob could not be decrypted or parsed. Corruption and
// tampering are indistinguishable.
var ErrCorrupt = errors.New("vault corrupt")

// Codec seals wallet state into an encrypted text blob and back.
type Codec struct {
	aead cipher.AEAD
}

// NewCodec derives an AES-256-GCM key from passphrase.
func NewCodec(passphrase string) (*Codec, error) {
	if passphrase == "" {
		passphrase = DefaultPassphrase
	}

	key := make([]byte, 32)
	if _, err := io.ReadFull(hkdf.New(sha256.New, []byte(passphrase), nil, []byte(keyInfo)), key); err != nil {
		return nil, fmt.Errorf("derive vault key: %w", err)
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	return &Codec{aead: aead}, nil
}

// Seal serializes state to JSON and encrypts it. The blob is base64(nonce || ciphertext).
func (c *Codec) Seal(state ledger.WalletState) ([]byte, error) {
	plain, err := json.Marshal(state)
	if err != nil {
		return nil, fmt.Errorf("encode wallet state: %w", err)
	}

	nonce := make([]byte, c.aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, err
	}
	sealed := c.aead.Seal(nonce, nonce, plain, nil)

	out := make([]byte, base64.StdEncoding.EncodedLen(len(sealed)))
	base64.StdEncoding.Encode(out, sealed)
	return out, nil
}

// Open reverses Seal. Every failure is reported as ErrCorrupt.
func (c *Codec) Open(blob []byte) (ledger.WalletState, error) {
	raw := make([]byte, base64.StdEncoding.DecodedLen(len(blob)))
	n, err := base64.StdEncoding.Decode(raw, blob)
	if err != nil {
		return ledger.WalletState{}, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	raw = raw[:n]

	ns := c.aead.NonceSize()
	if len(raw) < ns {
		return ledger.WalletState{}, fmt.Errorf("%w: short blob", ErrCorrupt)
	}
	plain, err := c.aead.Open(nil, raw[:ns], raw[ns:], nil)
	if err != nil {
		return ledger.WalletState{}, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}

	var state ledger.WalletState
	if err := json.Unmarshal(plain, &state); err != nil {
		return ledger.WalletState{}, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	if err := validate(state); err != nil {
		return ledger.WalletState{}, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	if state.Transactions == nil {
		state.Transactions = []ledger.Transaction{}
	}
	return state, nil
}

func validate(state ledger.WalletState) error {
	if state.UserID == "" {
		return errors.New("missing user id")
	}
	if state.Balance.IsNegative() {
		return errors.New("negative balance")
	}
	if err := ledger.ValidAmount(state.Balance); err != nil {
		return fmt.Errorf("balance: %w", err)
	}
	if state.Nonce < 0 {
		return errors.New("negative nonce")
	}
	seen := make(map[string]struct{}, len(state.Transactions))
	for _, tx := range state.Transactions {
		if _, dup := seen[tx.ID]; dup {
			return fmt.Errorf("duplicate transaction %s", tx.ID)
		}
		seen[tx.ID] = struct{}{}
		if tx.Type != ledger.TypeSent && tx.Type != ledger.TypeReceived {
			return fmt.Errorf("transaction %s: unknown type %q", tx.ID, tx.Type)
		}
		if err := ledger.ValidAmount(tx.Amount); err != nil {
			return fmt.Errorf("transaction %s: %w", tx.ID, err)
		}
	}
	return nil
}
