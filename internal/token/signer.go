package token

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/congo-pay/offline_pay/internal/ledger"
)

// DefaultSecret is the shared signing secret embedded in every build. Anyone
// holding the binary can forge tokens with it.
const DefaultSecret = "OFFLINE_PAY_SHARED_SIGNING_SECRET_2026"

// Signer computes and checks token MACs.
type Signer struct {
	secret []byte
}

// NewSigner returns an HMAC-SHA256 signer, falling back to DefaultSecret.
func NewSigner(secret string) Signer {
	if secret == "" {
		secret = DefaultSecret
	}
	return Signer{secret: []byte(secret)}
}

// Payload builds the canonical "id:amount:senderId:nonce" string. The field
// order is part of the wire contract.
func Payload(id string, amount decimal.Decimal, senderID string, nonce int64) string {
	return strings.Join([]string{id, amount.String(), senderID, strconv.FormatInt(nonce, 10)}, ":")
}

// Sign returns the hex MAC over the token fields.
func (s Signer) Sign(id string, amount decimal.Decimal, senderID string, nonce int64) string {
	mac := hmac.New(sha256.New, s.secret)
	mac.Write([]byte(Payload(id, amount, senderID, nonce)))
	return hex.EncodeToString(mac.Sum(nil))
}

// Verify recomputes the MAC for t and compares it in constant time. Amounts
// outside the ledger window never verify.
func (s Signer) Verify(t PaymentToken) bool {
	if ledger.ValidAmount(t.Amount) != nil {
		return false
	}
	provided, err := hex.DecodeString(t.Signature)
	if err != nil {
		return false
	}
	expected, _ := hex.DecodeString(s.Sign(t.ID, t.Amount, t.SenderID, t.Nonce))
	return hmac.Equal(provided, expected)
}
