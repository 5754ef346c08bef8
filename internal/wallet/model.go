package wallet

import (
    "time"

    "github.com/shopspring/decimal"

    "github.com/congo-pay/offline_pay/internal/ledger"
)

// Summary is the read model a UI renders on its home screen.
type Summary struct {
    UserID           string
    Balance          decimal.Decimal
    Nonce            int64
    TransactionCount int
    LastUpdated      time.Time
}

// History is a page of transactions, most recent first.
type History struct {
    Transactions []ledger.Transaction
    Total        int
}
