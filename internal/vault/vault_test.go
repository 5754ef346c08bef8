package vault

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/congo-pay/offline_pay/internal/ledger"
	"github.com/congo-pay/offline_pay/internal/logging"
)

func sampleState() ledger.WalletState {
	now := time.Date(2026, 10, 14, 9, 30, 0, 123456789, time.UTC)
	return ledger.SeedHistory("user_0123456789ab", ledger.BootstrapBalance,
		ledger.Transaction{ID: "t1", Type: ledger.TypeSent, Amount: decimal.RequireFromString("200"), Timestamp: now, Status: ledger.StatusCompleted, Hash: "abc"},
		ledger.Transaction{ID: "t2", Type: ledger.TypeReceived, Amount: decimal.RequireFromString("150.05"), PeerID: "user_other", Timestamp: now.Add(time.Second), Status: ledger.StatusCompleted, Hash: "def"},
	)
}

func assertStateEqual(t *testing.T, want, got ledger.WalletState) {
	t.Helper()
	if !want.Balance.Equal(got.Balance) {
		t.Fatalf("balance: want %s got %s", want.Balance, got.Balance)
	}
	if want.UserID != got.UserID || want.Nonce != got.Nonce || !want.LastUpdated.Equal(got.LastUpdated) {
		t.Fatalf("header mismatch: want %+v got %+v", want, got)
	}
	if len(want.Transactions) != len(got.Transactions) {
		t.Fatalf("transactions: want %d got %d", len(want.Transactions), len(got.Transactions))
	}
	for i := range want.Transactions {
		w, g := want.Transactions[i], got.Transactions[i]
		if w.ID != g.ID || w.Type != g.Type || !w.Amount.Equal(g.Amount) || w.PeerID != g.PeerID ||
			!w.Timestamp.Equal(g.Timestamp) || w.Status != g.Status || w.Hash != g.Hash {
			t.Fatalf("transaction %d: want %+v got %+v", i, w, g)
		}
	}
}

func newCodec(t *testing.T) *Codec {
	t.Helper()
	codec, err := NewCodec("")
	if err != nil {
		t.Fatalf("new codec: %v", err)
	}
	return codec
}

func TestCodecRoundTrip(t *testing.T) {
	codec := newCodec(t)
	state := sampleState()

	blob, err := codec.Seal(state)
	if err != nil {
		t.Fatalf("seal: %v", err)
	}
	if bytes.Contains(blob, []byte("user_0123456789ab")) {
		t.Fatalf("blob leaks plaintext")
	}

	got, err := codec.Open(blob)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	assertStateEqual(t, state, got)
}

func TestCodecOpenCorrupt(t *testing.T) {
	codec := newCodec(t)
	blob, err := codec.Seal(sampleState())
	if err != nil {
		t.Fatalf("seal: %v", err)
	}

	flipped := append([]byte(nil), blob...)
	if flipped[10] == 'A' {
		flipped[10] = 'B'
	} else {
		flipped[10] = 'A'
	}

	other, err := NewCodec("some other passphrase")
	if err != nil {
		t.Fatalf("new codec: %v", err)
	}
	foreign, err := other.Seal(sampleState())
	if err != nil {
		t.Fatalf("seal: %v", err)
	}

	cases := map[string][]byte{
		"empty":          {},
		"not base64":     []byte("!!!not-base64!!!"),
		"short":          []byte("AAAA"),
		"tampered":       flipped,
		"wrong key":      foreign,
		"truncated blob": blob[:len(blob)-8],
	}
	for name, input := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := codec.Open(input); !errors.Is(err, ErrCorrupt) {
				t.Fatalf("expected ErrCorrupt, got %v", err)
			}
		})
	}
}

func TestCodecRejectsInvalidPlaintext(t *testing.T) {
	codec := newCodec(t)
	bad := sampleState()
	bad.Transactions = append(bad.Transactions, bad.Transactions[0])

	blob, err := codec.Seal(bad)
	if err != nil {
		t.Fatalf("seal: %v", err)
	}
	if _, err := codec.Open(blob); !errors.Is(err, ErrCorrupt) {
		t.Fatalf("expected ErrCorrupt for duplicate ids, got %v", err)
	}
}

func TestCodecRejectsOutOfRangeAmounts(t *testing.T) {
	codec := newCodec(t)

	dust := sampleState()
	dust.Transactions[0].Amount = decimal.New(1, -200)
	whale := sampleState()
	whale.Balance = decimal.New(1, 40)

	for name, state := range map[string]ledger.WalletState{"transaction": dust, "balance": whale} {
		blob, err := codec.Seal(state)
		if err != nil {
			t.Fatalf("%s: seal: %v", name, err)
		}
		if _, err := codec.Open(blob); !errors.Is(err, ErrCorrupt) {
			t.Fatalf("%s: expected ErrCorrupt, got %v", name, err)
		}
	}
}

func TestVaultLoadOrInit_FirstRun(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	v := New(store, newCodec(t), "", logging.Discard())

	state, reset, err := v.LoadOrInit(ctx, ledger.BootstrapBalance)
	if err != nil {
		t.Fatalf("load or init: %v", err)
	}
	if !reset {
		t.Fatalf("expected first run to report reset")
	}
	if !state.Balance.Equal(decimal.NewFromInt(1000)) || len(state.Transactions) != 0 {
		t.Fatalf("unexpected first-run state %+v", state)
	}

	again, reset, err := v.LoadOrInit(ctx, ledger.BootstrapBalance)
	if err != nil {
		t.Fatalf("second load: %v", err)
	}
	if reset || again.UserID != state.UserID {
		t.Fatalf("expected persisted identity %s, got %s (reset=%v)", state.UserID, again.UserID, reset)
	}
}

func TestVaultLoadOrInit_CorruptResets(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	v := New(store, newCodec(t), "", logging.Discard())

	if err := v.Save(ctx, sampleState()); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := store.Put(ctx, DefaultKeyID, []byte("garbage")); err != nil {
		t.Fatalf("put: %v", err)
	}

	state, reset, err := v.LoadOrInit(ctx, ledger.BootstrapBalance)
	if err != nil {
		t.Fatalf("load or init: %v", err)
	}
	if !reset {
		t.Fatalf("expected corrupt vault to reset")
	}
	if state.UserID == "user_0123456789ab" || !state.Balance.Equal(ledger.BootstrapBalance) {
		t.Fatalf("expected fresh identity and balance, got %+v", state)
	}

	persisted, err := v.Load(ctx)
	if err != nil {
		t.Fatalf("fresh state was not persisted: %v", err)
	}
	if persisted.UserID != state.UserID {
		t.Fatalf("expected persisted %s, got %s", state.UserID, persisted.UserID)
	}
}

type failingStore struct{ err error }

func (f failingStore) Get(context.Context, string) ([]byte, error) { return nil, f.err }
func (f failingStore) Put(context.Context, string, []byte) error   { return f.err }

func TestVaultLoadOrInit_StorageErrorIsNotCorruption(t *testing.T) {
	boom := errors.New("connection refused")
	v := New(failingStore{err: boom}, newCodec(t), "", logging.Discard())

	if _, _, err := v.LoadOrInit(context.Background(), ledger.BootstrapBalance); !errors.Is(err, boom) {
		t.Fatalf("expected storage error, got %v", err)
	}
}

func TestVaultAsCommitHook(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	v := New(store, newCodec(t), "wallet", logging.Discard())

	led := ledger.NewStore(ledger.NewWalletState(ledger.BootstrapBalance), ledger.WithCommitHook(v.Save))
	if _, err := led.AppendTransaction(ctx, ledger.Transaction{
		ID: "t1", Type: ledger.TypeSent, Amount: decimal.NewFromInt(200), Timestamp: time.Now().UTC(), Status: ledger.StatusCompleted,
	}); err != nil {
		t.Fatalf("append: %v", err)
	}

	loaded, err := v.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	assertStateEqual(t, led.Snapshot(), loaded)
}

func TestFileStore(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	store, err := NewFileStore(filepath.Join(dir, "data"))
	if err != nil {
		t.Fatalf("new file store: %v", err)
	}

	if _, err := store.Get(ctx, "k"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if err := store.Put(ctx, "k", []byte("first")); err != nil {
		t.Fatalf("put: %v", err)
	}
	if err := store.Put(ctx, "k", []byte("second")); err != nil {
		t.Fatalf("overwrite: %v", err)
	}

	got, err := store.Get(ctx, "k")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if string(got) != "second" {
		t.Fatalf("expected second, got %s", got)
	}

	entries, err := os.ReadDir(filepath.Join(dir, "data"))
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), ".tmp") {
			t.Fatalf("temp file left behind: %s", e.Name())
		}
	}
}

func TestFileStoreVaultIsEncryptedOnDisk(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	store, err := NewFileStore(dir)
	if err != nil {
		t.Fatalf("new file store: %v", err)
	}
	v := New(store, newCodec(t), "", logging.Discard())
	if err := v.Save(ctx, sampleState()); err != nil {
		t.Fatalf("save: %v", err)
	}

	raw, err := os.ReadFile(filepath.Join(dir, DefaultKeyID+".vault"))
	if err != nil {
		t.Fatalf("read vault file: %v", err)
	}
	if strings.Contains(string(raw), "user_0123456789ab") || strings.Contains(string(raw), "balance") {
		t.Fatalf("vault file contains plaintext")
	}
}
