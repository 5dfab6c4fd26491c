package reconcile

import (
	"context"
	"errors"
	"testing"

	"github.com/angelmondragon/cartvault/internal/cart"
	"github.com/angelmondragon/cartvault/internal/cartcodec"
	"github.com/angelmondragon/cartvault/internal/oracle"
	"github.com/angelmondragon/cartvault/internal/store"
	"github.com/shopspring/decimal"
)

type stubPriceSource struct {
	quotes oracle.QuoteMap
	err    error
	calls  int
}

func (s *stubPriceSource) Lookup(ctx context.Context, productIDs []string) (oracle.QuoteMap, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.quotes, nil
}

type failingStore struct{}

func (failingStore) Read(ctx context.Context) (string, error) {
	return "", errors.New("storage disabled")
}
func (failingStore) Write(ctx context.Context, envelope string) error { return nil }
func (failingStore) Clear(ctx context.Context) error                  { return nil }

func newTestCodec(t *testing.T) *cartcodec.Codec {
	t.Helper()
	codec, err := cartcodec.New("secret", "salt", cartcodec.MinIterations)
	if err != nil {
		t.Fatalf("building codec: %v", err)
	}
	return codec
}

func persistedLine(productID, price string, qty int) cart.Line {
	return cart.Line{
		ID:        cart.NewLineID(),
		ProductID: productID,
		Name:      "Cached " + productID,
		UnitPrice: decimal.RequireFromString(price),
		Quantity:  qty,
	}
}

func newPipeline(t *testing.T, st store.Store, codec *cartcodec.Codec, prices priceSource) (*Pipeline, *cart.Machine) {
	t.Helper()
	machine := cart.NewMachine()
	p, err := New(st, codec, prices, machine, nil, nil)
	if err != nil {
		t.Fatalf("building pipeline: %v", err)
	}
	return p, machine
}

func TestRunFreshSession(t *testing.T) {
	t.Parallel()

	source := &stubPriceSource{}
	p, machine := newPipeline(t, store.NewMemStore(), newTestCodec(t), source)

	if p.Ready() {
		t.Fatal("pipeline must start not ready")
	}
	p.Run(context.Background())

	if !p.Ready() {
		t.Fatal("expected ready after run")
	}
	state := machine.Snapshot()
	if len(state.Lines) != 0 || !state.Subtotal().IsZero() {
		t.Fatalf("expected empty cart, got %+v", state)
	}
	if source.calls != 0 {
		t.Fatal("oracle must not be called for an empty store")
	}
}

func TestRunCorruptEnvelopeResetsCart(t *testing.T) {
	t.Parallel()

	st := store.NewMemStore()
	if err := st.Write(context.Background(), "garbage-not-an-envelope"); err != nil {
		t.Fatalf("seeding store: %v", err)
	}
	source := &stubPriceSource{}
	p, machine := newPipeline(t, st, newTestCodec(t), source)

	p.Run(context.Background())

	if !p.Ready() {
		t.Fatal("expected ready despite corrupt envelope")
	}
	if len(machine.Snapshot().Lines) != 0 {
		t.Fatal("corrupt envelope must yield an empty cart")
	}
	if source.calls != 0 {
		t.Fatal("oracle must not be called for a discarded envelope")
	}
}

func TestRunOraclePriceWins(t *testing.T) {
	t.Parallel()

	codec := newTestCodec(t)
	st := store.NewMemStore()
	line := persistedLine("P1", "50", 2)
	if err := st.Write(context.Background(), codec.Encode([]cart.Line{line})); err != nil {
		t.Fatalf("seeding store: %v", err)
	}

	source := &stubPriceSource{quotes: oracle.QuoteMap{
		"P1": {Price: decimal.RequireFromString("40"), Name: "Server Name", Slug: "p1"},
	}}
	p, machine := newPipeline(t, st, codec, source)

	p.Run(context.Background())

	state := machine.Snapshot()
	if len(state.Lines) != 1 {
		t.Fatalf("expected one line, got %d", len(state.Lines))
	}
	got := state.Lines[0]
	if !got.UnitPrice.Equal(decimal.RequireFromString("40")) {
		t.Fatalf("expected corrected price 40, got %s", got.UnitPrice)
	}
	if got.Name != "Server Name" {
		t.Fatalf("expected refreshed name, got %q", got.Name)
	}
	if got.ID != line.ID {
		t.Fatal("correction must not change the line id")
	}
	if got.Quantity != 2 {
		t.Fatalf("correction must not change quantity, got %d", got.Quantity)
	}
}

func TestRunMatchingPriceLeavesLineUntouched(t *testing.T) {
	t.Parallel()

	codec := newTestCodec(t)
	st := store.NewMemStore()
	line := persistedLine("P1", "50", 1)
	st.Write(context.Background(), codec.Encode([]cart.Line{line}))

	source := &stubPriceSource{quotes: oracle.QuoteMap{
		"P1": {Price: decimal.RequireFromString("50"), Name: "Server Name"},
	}}
	p, machine := newPipeline(t, st, codec, source)

	p.Run(context.Background())

	got := machine.Snapshot().Lines[0]
	if got.Name != line.Name {
		t.Fatalf("matching price must keep the cached name, got %q", got.Name)
	}
}

func TestRunMissingQuoteKeepsStoredPrice(t *testing.T) {
	t.Parallel()

	codec := newTestCodec(t)
	st := store.NewMemStore()
	st.Write(context.Background(), codec.Encode([]cart.Line{
		persistedLine("KNOWN", "10", 1),
		persistedLine("GONE", "25", 1),
	}))

	source := &stubPriceSource{quotes: oracle.QuoteMap{
		"KNOWN": {Price: decimal.RequireFromString("12"), Name: "Known"},
	}}
	p, machine := newPipeline(t, st, codec, source)

	p.Run(context.Background())

	state := machine.Snapshot()
	if len(state.Lines) != 2 {
		t.Fatalf("expected both lines retained, got %d", len(state.Lines))
	}
	if !state.Lines[0].UnitPrice.Equal(decimal.RequireFromString("12")) {
		t.Fatalf("known product must be corrected, got %s", state.Lines[0].UnitPrice)
	}
	if !state.Lines[1].UnitPrice.Equal(decimal.RequireFromString("25")) {
		t.Fatalf("unquoted product must keep stored price, got %s", state.Lines[1].UnitPrice)
	}
}

func TestRunOracleDownFallsBackToCachedPrices(t *testing.T) {
	t.Parallel()

	codec := newTestCodec(t)
	st := store.NewMemStore()
	st.Write(context.Background(), codec.Encode([]cart.Line{persistedLine("P1", "50", 1)}))

	source := &stubPriceSource{err: errors.New("connection refused")}
	p, machine := newPipeline(t, st, codec, source)

	p.Run(context.Background())

	if !p.Ready() {
		t.Fatal("oracle failure must still reach ready")
	}
	got := machine.Snapshot().Lines[0]
	if !got.UnitPrice.Equal(decimal.RequireFromString("50")) {
		t.Fatalf("expected cached price kept, got %s", got.UnitPrice)
	}
}

func TestRunUnreadableStoreDegradesToEmpty(t *testing.T) {
	t.Parallel()

	source := &stubPriceSource{}
	p, machine := newPipeline(t, failingStore{}, newTestCodec(t), source)

	p.Run(context.Background())

	if !p.Ready() {
		t.Fatal("store failure must still reach ready")
	}
	if len(machine.Snapshot().Lines) != 0 {
		t.Fatal("unreadable store must yield an empty cart")
	}
}

func TestRunIsIdempotent(t *testing.T) {
	t.Parallel()

	codec := newTestCodec(t)
	st := store.NewMemStore()
	st.Write(context.Background(), codec.Encode([]cart.Line{persistedLine("P1", "10", 1)}))

	source := &stubPriceSource{quotes: oracle.QuoteMap{}}
	p, _ := newPipeline(t, st, codec, source)

	p.Run(context.Background())
	p.Run(context.Background())

	if source.calls != 1 {
		t.Fatalf("expected a single oracle call, got %d", source.calls)
	}
}
