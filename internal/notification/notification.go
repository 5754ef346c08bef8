package notification

import (
    "context"
    "encoding/json"
    "errors"
    "fmt"
    "log/slog"
    "time"

    "github.com/redis/go-redis/v9"
    "github.com/shopspring/decimal"
)

const (
    // KindTokenIssued indicates an outgoing payment token was created.
    KindTokenIssued = "token_issued"
    // KindTokenRedeemed indicates an incoming token was credited.
    KindTokenRedeemed = "token_redeemed"
    // KindBankTopUp indicates funds were added from a linked bank.
    KindBankTopUp = "bank_topup"
    // KindBankWithdrawal indicates funds were sent to a linked bank.
    KindBankWithdrawal = "bank_withdrawal"

    // DefaultChannel is the pub/sub channel used by RedisNotifier.
    DefaultChannel = "offline_pay:wallet_events"
)

// Message describes a wallet event. Destination is the local user id.
type Message struct {
    Kind          string          `json:"kind"`
    Destination   string          `json:"destination"`
    TransactionID string          `json:"transaction_id,omitempty"`
    Amount        decimal.Decimal `json:"amount"`
    Peer          string          `json:"peer,omitempty"`
    Body          string          `json:"body"`
    At            time.Time       `json:"at"`
}

// Notifier delivers notifications to the device owner.
type Notifier interface {
    Send(ctx context.Context, message Message) error
}

// LoggerNotifier writes notifications to the structured logger.
type LoggerNotifier struct {
    logger *slog.Logger
}

// NewLoggerNotifier constructs a logging notifier.
func NewLoggerNotifier(logger *slog.Logger) *LoggerNotifier {
    return &LoggerNotifier{logger: logger}
}

// Send writes the message to the structured logger.
func (n *LoggerNotifier) Send(_ context.Context, message Message) error {
    if n == nil || n.logger == nil {
        return nil
    }
    n.logger.Info("notification",
        slog.String("kind", message.Kind),
        slog.String("destination", message.Destination),
        slog.String("transaction_id", message.TransactionID),
        slog.String("amount", message.Amount.String()),
        slog.String("body", message.Body),
    )
    return nil
}

// RedisNotifier publishes messages as JSON on a pub/sub channel so a companion
// UI can follow wallet activity.
type RedisNotifier struct {
    client  *redis.Client
    channel string
}

// NewRedisNotifier returns a publisher on channel, or DefaultChannel when empty.
func NewRedisNotifier(client *redis.Client, channel string) *RedisNotifier {
    if channel == "" {
        channel = DefaultChannel
    }
    return &RedisNotifier{client: client, channel: channel}
}

// Send publishes the message.
func (n *RedisNotifier) Send(ctx context.Context, message Message) error {
    payload, err := json.Marshal(message)
    if err != nil {
        return fmt.Errorf("encode notification: %w", err)
    }
    if err := n.client.Publish(ctx, n.channel, payload).Err(); err != nil {
        return fmt.Errorf("publish notification: %w", err)
    }
    return nil
}

// Multi fans a message out to every notifier and joins their errors.
type Multi []Notifier

// Send delivers to all notifiers even if some fail.
func (m Multi) Send(ctx context.Context, message Message) error {
    var errs []error
    for _, n := range m {
        if n == nil {
            continue
        }
        if err := n.Send(ctx, message); err != nil {
            errs = append(errs, err)
        }
    }
    return errors.Join(errs...)
}
