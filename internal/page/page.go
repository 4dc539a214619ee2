// Package page assembles what a host page mounts: one calculator unit per
// definition and one visitor counter with its WebSocket hub.
package page

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/iwvelando/smart-calc-suite/internal/calculator"
	"github.com/iwvelando/smart-calc-suite/internal/insight"
	"github.com/iwvelando/smart-calc-suite/internal/visitors"
	"go.uber.org/zap"
)

var (
	// ErrPageNotFound is returned for an unknown or unmounted page id.
	ErrPageNotFound = errors.New("page not found")
	// ErrCalculatorNotFound is returned for a calculator id the page does not mount.
	ErrCalculatorNotFound = errors.New("calculator not found")
)

// Options describes what every mounted page contains.
type Options struct {
	Definitions    []calculator.Definition
	Collaborator   insight.Collaborator
	CounterOptions []visitors.Option
	Logger         *zap.Logger
}

// Page is one mounted set of calculators plus a visitor counter. Units share
// no state with each other.
type Page struct {
	ID        string
	MountedAt time.Time

	units   []*calculator.Unit
	byID    map[string]*calculator.Unit
	counter *visitors.Counter
	hub     *visitors.Hub
	logger  *zap.Logger

	seen      atomic.Int64 // unix nanos of the last lookup
	closeOnce sync.Once
}

// State is a snapshot of the whole page.
type State struct {
	ID          string             `json:"id" yaml:"id"`
	MountedAt   time.Time          `json:"mountedAt" yaml:"mountedAt"`
	Visitors    int64              `json:"visitors" yaml:"visitors"`
	Calculators []calculator.State `json:"calculators" yaml:"calculators"`
}

// Mount creates a page and starts its visitor counter. The counter stops
// when ctx ends or the page is closed.
func Mount(ctx context.Context, opts Options) (*Page, error) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	if len(opts.Definitions) == 0 {
		return nil, errors.New("page needs at least one calculator definition")
	}

	id := uuid.NewString()
	logger = logger.With(zap.String("page", id))

	p := &Page{
		ID:        id,
		MountedAt: time.Now(),
		byID:      make(map[string]*calculator.Unit, len(opts.Definitions)),
		logger:    logger,
	}

	for _, def := range opts.Definitions {
		if _, dup := p.byID[def.ID]; dup {
			return nil, fmt.Errorf("duplicate calculator id %q", def.ID)
		}
		unit, err := calculator.New(def, opts.Collaborator, logger)
		if err != nil {
			return nil, err
		}
		p.units = append(p.units, unit)
		p.byID[def.ID] = unit
	}

	counterOpts := append([]visitors.Option{visitors.WithLogger(logger)}, opts.CounterOptions...)
	counterOpts = append(counterOpts, visitors.WithOnTick(func(n int64) {
		p.hub.Publish(n)
	}))
	p.counter = visitors.New(counterOpts...)
	p.hub = visitors.NewHub(p.counter.Value, logger)

	if err := p.counter.Start(ctx); err != nil {
		return nil, err
	}

	logger.Info("page mounted",
		zap.String("op", "page.Mount"),
		zap.Int("calculators", len(p.units)),
		zap.Int64("visitors", p.counter.Value()),
	)
	return p, nil
}

func (p *Page) touch(t time.Time) {
	p.seen.Store(t.UnixNano())
}

func (p *Page) lastSeen() time.Time {
	return time.Unix(0, p.seen.Load())
}

// Unit returns the mounted calculator with the given id.
func (p *Page) Unit(id string) (*calculator.Unit, error) {
	unit, ok := p.byID[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrCalculatorNotFound, id)
	}
	return unit, nil
}

// Units returns the calculators in page order.
func (p *Page) Units() []*calculator.Unit {
	return append([]*calculator.Unit(nil), p.units...)
}

// Visitors returns the page's visitor counter.
func (p *Page) Visitors() *visitors.Counter {
	return p.counter
}

// Hub returns the WebSocket hub streaming the visitor count.
func (p *Page) Hub() *visitors.Hub {
	return p.hub
}

// Snapshot returns the state of every unit and the visitor count.
func (p *Page) Snapshot() State {
	state := State{
		ID:          p.ID,
		MountedAt:   p.MountedAt,
		Visitors:    p.counter.Value(),
		Calculators: make([]calculator.State, 0, len(p.units)),
	}
	for _, unit := range p.units {
		state.Calculators = append(state.Calculators, unit.Snapshot())
	}
	return state
}

// Close unmounts the page: the counter stops and WebSocket clients are
// disconnected. In-flight insight requests still resolve into their units.
func (p *Page) Close() {
	p.closeOnce.Do(func() {
		p.counter.Stop()
		p.hub.Close()
		p.logger.Info("page unmounted",
			zap.String("op", "page.Close"),
			zap.Int64("visitors", p.counter.Value()),
		)
	})
}
