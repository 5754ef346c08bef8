package payments

import (
	"errors"
	"fmt"

	"github.com/congo-pay/offline_pay/internal/ledger"
)

var (
	// ErrMalformedInput covers a missing scheme, missing fields or an unparseable amount.
	ErrMalformedInput = errors.New("malformed input")

	// ErrAlreadyClaimed indicates the token id is already present in the ledger.
	ErrAlreadyClaimed = errors.New("token already claimed")

	// ErrInvalidSignature indicates the token fields do not match their MAC.
	ErrInvalidSignature = errors.New("invalid signature")

	// ErrInsufficientFunds is returned by Issue when the amount exceeds the balance.
	ErrInsufficientFunds = ledger.ErrInsufficientFunds

	// ErrInvalidAmount is returned by Issue for non-positive amounts and for
	// amounts outside the ledger's scale and magnitude window.
	ErrInvalidAmount = fmt.Errorf("%w: amount must be positive", ErrMalformedInput)
)

// Reason renders a rejection as a message suitable for the device owner.
func Reason(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrAlreadyClaimed):
		return "This token has already been claimed."
	case errors.Is(err, ErrInvalidSignature):
		return "Security alert: the token signature is invalid."
	case errors.Is(err, ErrInsufficientFunds):
		return "Insufficient balance for this payment."
	case errors.Is(err, ErrInvalidAmount):
		return "Enter a valid amount."
	case errors.Is(err, ErrMalformedInput):
		return "Invalid token format."
	default:
		return "The payment could not be processed."
	}
}
