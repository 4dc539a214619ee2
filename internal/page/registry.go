package page

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// ErrTooManyPages is returned by Mount when the registry is full.
var ErrTooManyPages = errors.New("too many mounted pages")

const minSweepInterval = 10 * time.Millisecond

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithIdleTimeout unmounts pages that nobody has looked up for d. Pages with
// connected WebSocket clients are never idle. Zero disables the sweep.
func WithIdleTimeout(d time.Duration) RegistryOption {
	return func(r *Registry) {
		if d > 0 {
			r.idleTimeout = d
		}
	}
}

// WithMaxPages caps the number of mounted pages. Zero means no cap.
func WithMaxPages(n int) RegistryOption {
	return func(r *Registry) {
		if n > 0 {
			r.maxPages = n
		}
	}
}

// WithRegistryClock replaces time.Now for idle accounting.
func WithRegistryClock(clock func() time.Time) RegistryOption {
	return func(r *Registry) {
		if clock != nil {
			r.now = clock
		}
	}
}

// Registry keeps the pages mounted by a long-running process.
type Registry struct {
	opts        Options
	ctx         context.Context
	logger      *zap.Logger
	idleTimeout time.Duration
	maxPages    int
	now         func() time.Time

	mu    sync.RWMutex
	pages map[string]*Page
}

// NewRegistry creates a registry that mounts pages with opts. Counters of
// every page stop when ctx ends. With an idle timeout set, a sweeper runs
// until ctx ends.
func NewRegistry(ctx context.Context, opts Options, regOpts ...RegistryOption) *Registry {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	r := &Registry{
		opts:   opts,
		ctx:    ctx,
		logger: opts.Logger,
		now:    time.Now,
		pages:  make(map[string]*Page),
	}
	for _, opt := range regOpts {
		opt(r)
	}
	if r.idleTimeout > 0 {
		go r.sweepLoop()
	}
	return r
}

// Mount creates and stores a new page.
func (r *Registry) Mount() (*Page, error) {
	if r.full() {
		return nil, fmt.Errorf("%w: limit is %d", ErrTooManyPages, r.maxPages)
	}
	p, err := Mount(r.ctx, r.opts)
	if err != nil {
		return nil, err
	}
	p.touch(r.now())

	r.mu.Lock()
	if r.maxPages > 0 && len(r.pages) >= r.maxPages {
		r.mu.Unlock()
		p.Close()
		return nil, fmt.Errorf("%w: limit is %d", ErrTooManyPages, r.maxPages)
	}
	r.pages[p.ID] = p
	r.mu.Unlock()
	return p, nil
}

func (r *Registry) full() bool {
	if r.maxPages <= 0 {
		return false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.pages) >= r.maxPages
}

// Get returns the page with the given id and marks it as seen.
func (r *Registry) Get(id string) (*Page, error) {
	r.mu.RLock()
	p, ok := r.pages[id]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrPageNotFound, id)
	}
	p.touch(r.now())
	return p, nil
}

// Unmount closes and forgets the page with the given id.
func (r *Registry) Unmount(id string) error {
	r.mu.Lock()
	p, ok := r.pages[id]
	delete(r.pages, id)
	r.mu.Unlock()

	if !ok {
		return fmt.Errorf("%w: %q", ErrPageNotFound, id)
	}
	p.Close()
	return nil
}

// Sweep unmounts every page idle for longer than the idle timeout and returns
// their ids. It does nothing when no idle timeout is configured.
func (r *Registry) Sweep() []string {
	if r.idleTimeout <= 0 {
		return nil
	}
	cutoff := r.now().Add(-r.idleTimeout)

	var idle []*Page
	r.mu.Lock()
	for id, p := range r.pages {
		if p.hub.Count() > 0 {
			p.touch(r.now())
			continue
		}
		if p.lastSeen().Before(cutoff) {
			idle = append(idle, p)
			delete(r.pages, id)
		}
	}
	r.mu.Unlock()

	ids := make([]string, 0, len(idle))
	for _, p := range idle {
		p.Close()
		ids = append(ids, p.ID)
	}
	if len(ids) > 0 {
		r.logger.Info("unmounted idle pages",
			zap.String("op", "page.Registry.Sweep"),
			zap.Strings("pages", ids),
			zap.Duration("idleTimeout", r.idleTimeout),
		)
	}
	return ids
}

func (r *Registry) sweepLoop() {
	interval := r.idleTimeout / 2
	if interval < minSweepInterval {
		interval = minSweepInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-r.ctx.Done():
			return
		case <-ticker.C:
			r.Sweep()
		}
	}
}

// Len returns the number of mounted pages.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.pages)
}

// CloseAll unmounts every page.
func (r *Registry) CloseAll() {
	r.mu.Lock()
	pages := r.pages
	r.pages = make(map[string]*Page)
	r.mu.Unlock()

	for _, p := range pages {
		p.Close()
	}
}
