package metrics

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Redemption outcomes.
const (
	OutcomeAccepted         = "accepted"
	OutcomeMalformed        = "malformed"
	OutcomeAlreadyClaimed   = "already_claimed"
	OutcomeInvalidSignature = "invalid_signature"
	OutcomeError            = "error"
)

var (
	tokensIssued = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "offline_pay_tokens_issued_total",
			Help: "Total number of token issuance attempts",
		},
		[]string{"status"},
	)

	tokenRedemptions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "offline_pay_token_redemptions_total",
			Help: "Total number of token redemption attempts by outcome",
		},
		[]string{"outcome"},
	)

	bankOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "offline_pay_bank_operations_total",
			Help: "Total number of bank top-ups and withdrawals",
		},
		[]string{"kind", "status"},
	)
)

// TokenIssued records an issuance attempt.
func TokenIssued(ok bool) {
	tokensIssued.WithLabelValues(status(ok)).Inc()
}

// TokenRedeemed records a redemption attempt with one of the Outcome values.
func TokenRedeemed(outcome string) {
	tokenRedemptions.WithLabelValues(outcome).Inc()
}

// BankOperation records a top-up or withdrawal.
func BankOperation(kind string, ok bool) {
	bankOperations.WithLabelValues(kind, status(ok)).Inc()
}

// Handler serves the default registry in the Prometheus text format.
func Handler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.Handler())
}

func status(ok bool) string {
	if ok {
		return "ok"
	}
	return "failed"
}
