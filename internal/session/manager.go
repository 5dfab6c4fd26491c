package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/angelmondragon/cartvault/internal/cart"
	"github.com/angelmondragon/cartvault/internal/cartcodec"
	"github.com/angelmondragon/cartvault/internal/oracle"
	"github.com/angelmondragon/cartvault/internal/reconcile"
	"github.com/angelmondragon/cartvault/internal/store"
	pkgerrors "github.com/angelmondragon/cartvault/pkg/errors"
	"github.com/angelmondragon/cartvault/pkg/logger"
	"github.com/angelmondragon/cartvault/pkg/metrics"
	"go.uber.org/multierr"
)

// StoreFactory builds the durable store bound to one session's envelope key.
type StoreFactory func(sessionID string) (store.Store, error)

type priceSource interface {
	Lookup(ctx context.Context, productIDs []string) (oracle.QuoteMap, error)
}

// ManagerParams captures the stack shared by every session engine.
type ManagerParams struct {
	Codec        *cartcodec.Codec
	Stores       StoreFactory
	Prices       priceSource
	Logger       *logger.Logger
	Metrics      *metrics.ReconcileMetrics
	IdleTTL      time.Duration
	ReconcileNow bool // run reconciliation synchronously; used by tests and CLIs
}

// Manager owns the per-session engines: one engine per browsing session,
// constructed lazily on first touch, reconciled once, evicted after idling.
type Manager struct {
	params  ManagerParams
	mu      sync.Mutex
	engines map[string]*Engine
}

// NewManager validates the shared stack and returns an empty manager.
func NewManager(params ManagerParams) (*Manager, error) {
	if params.Codec == nil {
		return nil, fmt.Errorf("codec required")
	}
	if params.Stores == nil {
		return nil, fmt.Errorf("store factory required")
	}
	if params.Prices == nil {
		return nil, fmt.Errorf("price source required")
	}
	return &Manager{
		params:  params,
		engines: map[string]*Engine{},
	}, nil
}

// Engine returns the session's engine, constructing and reconciling it on
// first touch. Reconciliation runs asynchronously; callers observe readiness
// through the engine.
func (m *Manager) Engine(ctx context.Context, sessionID string) (*Engine, error) {
	if sessionID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "session id is required")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if engine, ok := m.engines[sessionID]; ok {
		engine.touch(time.Now())
		return engine, nil
	}

	st, err := m.params.Stores(sessionID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "building session store")
	}

	machine := cart.NewMachine()
	pipeline, err := reconcile.New(st, m.params.Codec, m.params.Prices, machine, m.params.Logger, m.params.Metrics)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "building reconcile pipeline")
	}

	engine, err := newEngine(sessionID, machine, pipeline, m.params.Codec, st, m.params.Logger)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "building session engine")
	}
	m.engines[sessionID] = engine

	if m.params.ReconcileNow {
		pipeline.Run(ctx)
	} else {
		go pipeline.Run(context.WithoutCancel(ctx))
	}
	return engine, nil
}

// Sweep closes engines idle for longer than the configured TTL and returns
// how many were evicted. The stored envelope survives eviction; the next
// touch reconciles it again.
func (m *Manager) Sweep(now time.Time) int {
	if m.params.IdleTTL <= 0 {
		return 0
	}

	m.mu.Lock()
	var evicted []*Engine
	for id, engine := range m.engines {
		if engine.idleSince(now) > m.params.IdleTTL {
			evicted = append(evicted, engine)
			delete(m.engines, id)
		}
	}
	m.mu.Unlock()

	for _, engine := range evicted {
		engine.Close()
	}
	return len(evicted)
}

// StartSweeper runs Sweep on the given interval until the context ends.
func (m *Manager) StartSweeper(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				if n := m.Sweep(now); n > 0 && m.params.Logger != nil {
					lctx := m.params.Logger.WithField(ctx, "evicted", n)
					m.params.Logger.Info(lctx, "session.sweep")
				}
			}
		}
	}()
}

// Close drains every engine, combining any close errors.
func (m *Manager) Close() error {
	m.mu.Lock()
	engines := make([]*Engine, 0, len(m.engines))
	for _, engine := range m.engines {
		engines = append(engines, engine)
	}
	m.engines = map[string]*Engine{}
	m.mu.Unlock()

	var errs []error
	for _, engine := range engines {
		if err := engine.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return multierr.Combine(errs...)
}
