package ledger

import (
	"time"

	"github.com/shopspring/decimal"
)

// SeedHistory is a test helper that builds a state whose balance is the fold of
// the provided transactions over the grant, keeping the balance invariant intact.
func SeedHistory(userID string, grant decimal.Decimal, txs ...Transaction) WalletState {
	ordered := make([]Transaction, 0, len(txs))
	for i := len(txs) - 1; i >= 0; i-- {
		ordered = append(ordered, txs[i])
	}
	return WalletState{
		Balance:      Fold(grant, txs),
		Transactions: ordered,
		UserID:       userID,
		Nonce:        int64(len(txs)),
		LastUpdated:  time.Now().UTC(),
	}
}
