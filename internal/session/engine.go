package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/angelmondragon/cartvault/internal/cart"
	"github.com/angelmondragon/cartvault/internal/reconcile"
	"github.com/angelmondragon/cartvault/internal/store"
	pkgerrors "github.com/angelmondragon/cartvault/pkg/errors"
	"github.com/angelmondragon/cartvault/pkg/logger"
	"github.com/shopspring/decimal"
)

const persistTimeout = 5 * time.Second

type envelopeEncoder interface {
	Encode(value any) string
}

// Engine bundles one session's cart machinery: the state machine, its
// reconciliation pipeline, and the persister that mirrors every state change
// into the durable store.
type Engine struct {
	sessionID string
	machine   *cart.Machine
	pipeline  *reconcile.Pipeline
	codec     envelopeEncoder
	store     store.Store
	logg      *logger.Logger

	writes   sync.WaitGroup
	lastSeen time.Time
	seenMu   sync.Mutex
}

func newEngine(sessionID string, machine *cart.Machine, pipeline *reconcile.Pipeline, codec envelopeEncoder, st store.Store, logg *logger.Logger) (*Engine, error) {
	if machine == nil || pipeline == nil || codec == nil || st == nil {
		return nil, fmt.Errorf("engine requires machine, pipeline, codec and store")
	}
	e := &Engine{
		sessionID: sessionID,
		machine:   machine,
		pipeline:  pipeline,
		codec:     codec,
		store:     st,
		logg:      logg,
		lastSeen:  time.Now(),
	}
	machine.Subscribe(e.persist)
	return e, nil
}

// Ready reports whether the session's reconciliation has completed.
func (e *Engine) Ready() bool {
	return e.pipeline.Ready()
}

// Snapshot returns the current state plus readiness. Until reconciliation
// completes the state presents as empty so unvalidated prices never surface.
func (e *Engine) Snapshot() (cart.State, bool) {
	if !e.Ready() {
		return cart.State{}, false
	}
	return e.machine.Snapshot(), true
}

// Dispatch applies a user action. Actions are refused until the session is
// ready: a mutation derived from unvalidated data must not reach the machine.
func (e *Engine) Dispatch(ctx context.Context, action cart.Action) (cart.State, error) {
	if !e.Ready() {
		return cart.State{}, pkgerrors.New(pkgerrors.CodeStateConflict, "cart is still reconciling")
	}
	return e.machine.Dispatch(action), nil
}

// CheckoutSnapshot is the read-only view handed to the order-submission
// collaborator.
type CheckoutSnapshot struct {
	Lines     []cart.Line
	Subtotal  decimal.Decimal
	ItemCount int
}

// Checkout returns the snapshot consumed by order placement. It is refused
// until reconciliation completes so an order can never be submitted against
// unverified prices.
func (e *Engine) Checkout(ctx context.Context) (CheckoutSnapshot, error) {
	if !e.Ready() {
		return CheckoutSnapshot{}, pkgerrors.New(pkgerrors.CodeStateConflict, "cart prices are not yet verified")
	}
	state := e.machine.Snapshot()
	return CheckoutSnapshot{
		Lines:     state.Lines,
		Subtotal:  state.Subtotal(),
		ItemCount: state.ItemCount(),
	}, nil
}

// persist mirrors a state change into the durable store. Fire-and-forget:
// failures are logged and swallowed, the in-memory cart stays authoritative.
func (e *Engine) persist(state cart.State) {
	e.writes.Add(1)
	go func() {
		defer e.writes.Done()

		ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
		defer cancel()

		envelope := e.codec.Encode(state.Lines)
		if envelope == "" && len(state.Lines) > 0 {
			if e.logg != nil {
				e.logg.Warn(e.logg.WithSessionID(ctx, e.sessionID), "persist.encode_failed")
			}
			return
		}
		if err := e.store.Write(ctx, envelope); err != nil {
			if e.logg != nil {
				e.logg.Warn(e.logg.WithFields(ctx, map[string]any{
					"session_id": e.sessionID,
					"error":      err.Error(),
				}), "persist.write_failed")
			}
		}
	}()
}

// Flush waits for in-flight persistence writes to settle.
func (e *Engine) Flush() {
	e.writes.Wait()
}

// Close drains outstanding writes. The stored envelope is left in place for
// the next session.
func (e *Engine) Close() error {
	e.Flush()
	return nil
}

func (e *Engine) touch(now time.Time) {
	e.seenMu.Lock()
	e.lastSeen = now
	e.seenMu.Unlock()
}

func (e *Engine) idleSince(now time.Time) time.Duration {
	e.seenMu.Lock()
	defer e.seenMu.Unlock()
	return now.Sub(e.lastSeen)
}
