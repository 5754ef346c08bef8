package payments

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"

	"github.com/congo-pay/offline_pay/internal/token"
)

func setupHandlerApp(t *testing.T) *fiber.App {
	t.Helper()
	svc, _, _ := newTestService(t)
	h := NewHandler(svc)
	app := fiber.New()
	app.Post("/tokens", h.Issue)
	app.Post("/tokens/redeem", h.Redeem)
	return app
}

func post(t *testing.T, app *fiber.App, path, body string) (int, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(fiber.MethodPost, path, strings.NewReader(body))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	var decoded map[string]any
	_ = json.NewDecoder(resp.Body).Decode(&decoded)
	return resp.StatusCode, decoded
}

func TestHandlerIssue(t *testing.T) {
	app := setupHandlerApp(t)

	status, body := post(t, app, "/tokens", `{"amount":"200"}`)
	if status != fiber.StatusCreated {
		t.Fatalf("expected %d got %d", fiber.StatusCreated, status)
	}
	raw, _ := body["token"].(string)
	if !strings.HasPrefix(raw, "offlinepay://pay?") {
		t.Fatalf("unexpected token %v", body["token"])
	}
	if body["balance"] != "800" {
		t.Fatalf("expected balance 800, got %v", body["balance"])
	}
}

func TestHandlerIssueRejections(t *testing.T) {
	app := setupHandlerApp(t)

	if status, _ := post(t, app, "/tokens", `{"amount":"5000"}`); status != fiber.StatusBadRequest {
		t.Fatalf("expected %d for insufficient funds, got %d", fiber.StatusBadRequest, status)
	}
	if status, _ := post(t, app, "/tokens", `{"amount":0}`); status != fiber.StatusBadRequest {
		t.Fatalf("expected %d for zero amount, got %d", fiber.StatusBadRequest, status)
	}
	for _, amount := range []string{"1e-2000000", "1e999999999", strings.Repeat("9", 40)} {
		if status, _ := post(t, app, "/tokens", `{"amount":"`+amount+`"}`); status != fiber.StatusBadRequest {
			t.Fatalf("expected %d for amount %.20s, got %d", fiber.StatusBadRequest, amount, status)
		}
	}
}

func TestHandlerRedeem(t *testing.T) {
	app := setupHandlerApp(t)
	raw := token.NewCodec("").Encode(foreignToken("tx-http", 150, "user_sender00001", 2))
	payload, _ := json.Marshal(map[string]string{"token": raw})

	status, body := post(t, app, "/tokens/redeem", string(payload))
	if status != fiber.StatusCreated {
		t.Fatalf("expected %d got %d", fiber.StatusCreated, status)
	}
	if body["balance"] != "1150" || body["sender_id"] != "user_sender00001" {
		t.Fatalf("unexpected body %v", body)
	}

	if status, _ := post(t, app, "/tokens/redeem", string(payload)); status != fiber.StatusConflict {
		t.Fatalf("expected %d on replay, got %d", fiber.StatusConflict, status)
	}
}

func TestHandlerRedeemRejections(t *testing.T) {
	app := setupHandlerApp(t)

	if status, _ := post(t, app, "/tokens/redeem", `{"token":"not a token"}`); status != fiber.StatusBadRequest {
		t.Fatalf("expected %d for malformed token, got %d", fiber.StatusBadRequest, status)
	}

	forged := foreignToken("tx-forged", 150, "user_sender00001", 2)
	forged.Signature = strings.Repeat("a", 64)
	payload, _ := json.Marshal(map[string]string{"token": token.NewCodec("").Encode(forged)})
	if status, _ := post(t, app, "/tokens/redeem", string(payload)); status != fiber.StatusUnprocessableEntity {
		t.Fatalf("expected %d for forged token, got %d", fiber.StatusUnprocessableEntity, status)
	}
}
