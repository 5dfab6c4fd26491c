package reconcile

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/angelmondragon/cartvault/internal/cart"
	"github.com/angelmondragon/cartvault/internal/oracle"
	"github.com/angelmondragon/cartvault/internal/store"
	"github.com/angelmondragon/cartvault/pkg/logger"
	"github.com/angelmondragon/cartvault/pkg/metrics"
)

// Phase tracks the pipeline's lifecycle. It only ever moves forward:
// Uninitialized -> Loading -> Ready.
type Phase int32

const (
	PhaseUninitialized Phase = iota
	PhaseLoading
	PhaseReady
)

func (p Phase) String() string {
	switch p {
	case PhaseLoading:
		return "loading"
	case PhaseReady:
		return "ready"
	default:
		return "uninitialized"
	}
}

type envelopeDecoder interface {
	Decode(encoded string, dest any) bool
}

type priceSource interface {
	Lookup(ctx context.Context, productIDs []string) (oracle.QuoteMap, error)
}

// Pipeline restores a session's persisted cart, validates every stored price
// against the oracle, and seeds the machine with the corrected lines. It runs
// once per session; until it reaches Ready the cart presents as empty.
type Pipeline struct {
	store   store.Store
	codec   envelopeDecoder
	prices  priceSource
	machine *cart.Machine
	logg    *logger.Logger
	metrics *metrics.ReconcileMetrics

	phase atomic.Int32
}

// New wires a pipeline for one session.
func New(st store.Store, codec envelopeDecoder, prices priceSource, machine *cart.Machine, logg *logger.Logger, m *metrics.ReconcileMetrics) (*Pipeline, error) {
	if st == nil {
		return nil, fmt.Errorf("store required")
	}
	if codec == nil {
		return nil, fmt.Errorf("codec required")
	}
	if prices == nil {
		return nil, fmt.Errorf("price source required")
	}
	if machine == nil {
		return nil, fmt.Errorf("machine required")
	}
	return &Pipeline{
		store:   st,
		codec:   codec,
		prices:  prices,
		machine: machine,
		logg:    logg,
		metrics: m,
	}, nil
}

// Phase returns the current lifecycle phase.
func (p *Pipeline) Phase() Phase {
	return Phase(p.phase.Load())
}

// Ready reports whether reconciliation has completed.
func (p *Pipeline) Ready() bool {
	return p.Phase() == PhaseReady
}

// Run performs the cold-start reconciliation. Every failure degrades to a
// safe state rather than surfacing: a corrupt envelope becomes an empty cart,
// an unreachable oracle leaves the cached prices in place. Repeat calls after
// the first are no-ops.
func (p *Pipeline) Run(ctx context.Context) {
	if !p.phase.CompareAndSwap(int32(PhaseUninitialized), int32(PhaseLoading)) {
		return
	}

	start := time.Now()
	outcome := p.run(ctx)
	p.phase.Store(int32(PhaseReady))

	if p.metrics != nil {
		p.metrics.ObserveDuration(outcome, time.Since(start))
	}
	if p.logg != nil {
		ctx = p.logg.WithField(ctx, "outcome", outcome)
		p.logg.Info(ctx, "reconcile.complete")
	}
}

func (p *Pipeline) run(ctx context.Context) string {
	envelope, err := p.store.Read(ctx)
	if err != nil {
		// A store that cannot be read is indistinguishable from a first visit.
		if p.logg != nil {
			p.logg.Warn(p.logg.WithField(ctx, "error", err.Error()), "reconcile.store_unreadable")
		}
		p.machine.Load(nil)
		return "store_unreadable"
	}
	if envelope == "" {
		p.machine.Load(nil)
		return "fresh"
	}

	var lines []cart.Line
	if !p.codec.Decode(envelope, &lines) {
		if p.logg != nil {
			p.logg.Warn(ctx, "reconcile.envelope_discarded")
		}
		if p.metrics != nil {
			p.metrics.IncDiscarded()
		}
		p.machine.Load(nil)
		return "discarded"
	}
	if len(lines) == 0 {
		p.machine.Load(nil)
		return "fresh"
	}

	quotes, err := p.prices.Lookup(ctx, productIDs(lines))
	if err != nil {
		// Degraded mode: the user keeps their cart at the cached prices.
		if p.logg != nil {
			p.logg.Warn(p.logg.WithField(ctx, "error", err.Error()), "reconcile.prices_unverified")
		}
		if p.metrics != nil {
			p.metrics.IncUnverified()
		}
		p.machine.Load(lines)
		return "unverified"
	}

	corrected, corrections := applyQuotes(ctx, lines, quotes, p.logg)
	if p.metrics != nil {
		p.metrics.IncCorrections(corrections)
	}
	p.machine.Load(corrected)
	return "restored"
}

// applyQuotes overwrites each line's price and name with the oracle's values
// when the stored price differs. The server is always authoritative; a line
// whose product id is absent from the quote map keeps its stored values.
func applyQuotes(ctx context.Context, lines []cart.Line, quotes oracle.QuoteMap, logg *logger.Logger) ([]cart.Line, int) {
	corrections := 0
	out := make([]cart.Line, len(lines))
	for i, line := range lines {
		quote, ok := quotes[line.ProductID]
		if ok && !quote.Price.Equal(line.UnitPrice) {
			if logg != nil {
				qctx := logg.WithFields(ctx, map[string]any{
					"product_id":   line.ProductID,
					"stored_price": line.UnitPrice.String(),
					"oracle_price": quote.Price.String(),
				})
				logg.Warn(qctx, "reconcile.price_corrected")
			}
			line.UnitPrice = quote.Price
			line.Name = quote.Name
			corrections++
		}
		out[i] = line
	}
	return out, corrections
}

func productIDs(lines []cart.Line) []string {
	ids := make([]string, 0, len(lines))
	for _, line := range lines {
		ids = append(ids, line.ProductID)
	}
	return ids
}
