package token

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/congo-pay/offline_pay/internal/ledger"
)

const (
	// DefaultScheme prefixes every token URI.
	DefaultScheme = "offlinepay"

	payPath = "pay"

	paramSender    = "pa"
	paramAmount    = "am"
	paramID        = "id"
	paramNonce     = "no"
	paramSignature = "sig"
)

var (
	// ErrScheme is returned when the string does not carry the token prefix.
	ErrScheme = errors.New("missing token scheme")
	// ErrStructure is returned when a field is missing or does not parse.
	ErrStructure = errors.New("invalid token structure")
)

// PaymentToken is the transient wire entity moved between devices.
type PaymentToken struct {
	ID        string
	Amount    decimal.Decimal
	SenderID  string
	Nonce     int64
	Signature string
}

// Codec renders and parses token URIs for one scheme.
type Codec struct {
	scheme string
}

// NewCodec returns a codec for scheme, falling back to DefaultScheme.
func NewCodec(scheme string) Codec {
	if scheme == "" {
		scheme = DefaultScheme
	}
	return Codec{scheme: scheme}
}

// Prefix is the string every token must start with.
func (c Codec) Prefix() string {
	return c.scheme + "://"
}

// Encode renders t as scheme://pay?pa=..&am=..&id=..&no=..&sig=..
func (c Codec) Encode(t PaymentToken) string {
	var b strings.Builder
	b.WriteString(c.Prefix())
	b.WriteString(payPath)
	b.WriteString("?")
	b.WriteString(paramSender + "=" + url.QueryEscape(t.SenderID))
	b.WriteString("&" + paramAmount + "=" + url.QueryEscape(t.Amount.String()))
	b.WriteString("&" + paramID + "=" + url.QueryEscape(t.ID))
	b.WriteString("&" + paramNonce + "=" + strconv.FormatInt(t.Nonce, 10))
	b.WriteString("&" + paramSignature + "=" + url.QueryEscape(t.Signature))
	return b.String()
}

// Decode parses a token string. It never panics; every failure wraps ErrScheme
// or ErrStructure.
func (c Codec) Decode(raw string) (PaymentToken, error) {
	raw = strings.TrimSpace(raw)
	if !strings.HasPrefix(raw, c.Prefix()) {
		return PaymentToken{}, ErrScheme
	}

	rest := strings.TrimPrefix(raw, c.Prefix())
	path, query, found := strings.Cut(rest, "?")
	if !found {
		return PaymentToken{}, fmt.Errorf("%w: no query", ErrStructure)
	}
	if path != payPath {
		return PaymentToken{}, fmt.Errorf("%w: unknown path %q", ErrStructure, path)
	}
	params, err := url.ParseQuery(query)
	if err != nil {
		return PaymentToken{}, fmt.Errorf("%w: %v", ErrStructure, err)
	}

	t := PaymentToken{
		SenderID:  params.Get(paramSender),
		ID:        params.Get(paramID),
		Signature: params.Get(paramSignature),
	}
	if t.SenderID == "" || t.ID == "" || t.Signature == "" {
		return PaymentToken{}, fmt.Errorf("%w: missing field", ErrStructure)
	}

	amount, err := ledger.ParseAmount(params.Get(paramAmount))
	if err != nil {
		return PaymentToken{}, fmt.Errorf("%w: amount: %v", ErrStructure, err)
	}
	if !amount.IsPositive() {
		return PaymentToken{}, fmt.Errorf("%w: amount must be positive", ErrStructure)
	}
	t.Amount = amount

	nonce, err := strconv.ParseInt(params.Get(paramNonce), 10, 64)
	if err != nil {
		return PaymentToken{}, fmt.Errorf("%w: nonce: %v", ErrStructure, err)
	}
	if nonce < 0 {
		return PaymentToken{}, fmt.Errorf("%w: negative nonce", ErrStructure)
	}
	t.Nonce = nonce

	return t, nil
}
