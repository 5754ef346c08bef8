package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestCounters(t *testing.T) {
	before := testutil.ToFloat64(tokenRedemptions.WithLabelValues(OutcomeAlreadyClaimed))
	TokenRedeemed(OutcomeAlreadyClaimed)
	if got := testutil.ToFloat64(tokenRedemptions.WithLabelValues(OutcomeAlreadyClaimed)); got != before+1 {
		t.Fatalf("expected %v got %v", before+1, got)
	}

	before = testutil.ToFloat64(tokensIssued.WithLabelValues("failed"))
	TokenIssued(false)
	if got := testutil.ToFloat64(tokensIssued.WithLabelValues("failed")); got != before+1 {
		t.Fatalf("expected %v got %v", before+1, got)
	}

	BankOperation("topup", true)
	if got := testutil.ToFloat64(bankOperations.WithLabelValues("topup", "ok")); got < 1 {
		t.Fatalf("expected bank counter to move, got %v", got)
	}
}

func TestHandlerExposesCounters(t *testing.T) {
	TokenIssued(true)

	app := fiber.New()
	app.Get("/metrics", Handler())

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/metrics", nil))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK || !strings.Contains(string(body), "offline_pay_tokens_issued_total") {
		t.Fatalf("unexpected metrics response %d: %s", resp.StatusCode, body)
	}
}
