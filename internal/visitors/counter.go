package visitors

import (
	"context"
	"errors"
	"math"
	"sync"
	"time"

	"github.com/iwvelando/smart-calc-suite/pkg/constants"
	"github.com/iwvelando/smart-calc-suite/pkg/datetime"
	"go.uber.org/zap"
)

// ErrAlreadyStarted is returned when Start is called on a running or stopped counter.
var ErrAlreadyStarted = errors.New("visitor counter already started")

// LaunchEpoch is the default simulated launch instant.
var LaunchEpoch = datetime.MustParseTime(time.RFC3339, constants.VisitorLaunchEpoch)

// Counter is a display-only visitor count scoped to one mounted page.
type Counter struct {
	clock    func() time.Time
	interval time.Duration
	base     float64
	rate     float64
	epoch    time.Time
	onTick   func(int64)
	logger   *zap.Logger

	mu      sync.Mutex
	value   int64
	mounted bool
	started bool
	cancel  context.CancelFunc
	done    chan struct{}
}

// Option configures a Counter.
type Option func(*Counter)

// WithClock replaces time.Now as the source of the mount instant.
func WithClock(clock func() time.Time) Option {
	return func(c *Counter) {
		if clock != nil {
			c.clock = clock
		}
	}
}

// WithInterval sets the period between increments.
func WithInterval(d time.Duration) Option {
	return func(c *Counter) {
		if d > 0 {
			c.interval = d
		}
	}
}

// WithBase sets the count at the launch epoch.
func WithBase(base float64) Option {
	return func(c *Counter) { c.base = base }
}

// WithGrowthRate sets the simulated visitors per minute since launch.
func WithGrowthRate(rate float64) Option {
	return func(c *Counter) { c.rate = rate }
}

// WithEpoch sets the launch instant.
func WithEpoch(epoch time.Time) Option {
	return func(c *Counter) {
		if !epoch.IsZero() {
			c.epoch = epoch
		}
	}
}

// WithOnTick registers a callback invoked with the new value after every
// increment. It runs outside the counter's lock.
func WithOnTick(fn func(int64)) Option {
	return func(c *Counter) { c.onTick = fn }
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Counter) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// New creates an unmounted counter with the default constants.
func New(opts ...Option) *Counter {
	c := &Counter{
		clock:    time.Now,
		interval: constants.VisitorTickInterval,
		base:     constants.VisitorBaseCount,
		rate:     constants.VisitorGrowthPerMinute,
		epoch:    LaunchEpoch,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Baseline returns floor(base + rate × minutes between epoch and now).
func Baseline(base, rate float64, epoch, now time.Time) int64 {
	return int64(math.Floor(base + rate*datetime.MinutesSince(epoch, now)))
}

// Mount sets the displayed value to the time-derived baseline. Mounting an
// already mounted counter keeps its current value.
func (c *Counter) Mount() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mountLocked()
}

func (c *Counter) mountLocked() int64 {
	if !c.mounted {
		c.value = Baseline(c.base, c.rate, c.epoch, c.clock())
		c.mounted = true
	}
	return c.value
}

// Start mounts the counter if needed and begins incrementing it every
// interval until ctx is done or Stop is called.
func (c *Counter) Start(ctx context.Context) error {
	c.mu.Lock()
	if c.started {
		c.mu.Unlock()
		return ErrAlreadyStarted
	}
	value := c.mountLocked()
	ctx, cancel := context.WithCancel(ctx)
	c.started = true
	c.cancel = cancel
	c.done = make(chan struct{})
	done := c.done
	c.mu.Unlock()

	c.logger.Debug("visitor counter started",
		zap.String("op", "visitors.Start"),
		zap.Int64("value", value),
		zap.Duration("interval", c.interval),
	)

	go c.run(ctx, done)
	return nil
}

func (c *Counter) run(ctx context.Context, done chan struct{}) {
	defer close(done)
	t := time.NewTicker(c.interval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			c.Tick()
		}
	}
}

// Tick adds one visitor and returns the new value.
func (c *Counter) Tick() int64 {
	c.mu.Lock()
	c.mountLocked()
	c.value++
	value := c.value
	c.mu.Unlock()

	if c.onTick != nil {
		c.onTick(value)
	}
	return value
}

// Stop cancels the ticker and waits for it to exit. It is safe to call more
// than once and on a counter that was never started.
func (c *Counter) Stop() {
	c.mu.Lock()
	cancel, done := c.cancel, c.done
	c.cancel = nil
	c.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done

	c.logger.Debug("visitor counter stopped",
		zap.String("op", "visitors.Stop"),
		zap.Int64("value", c.Value()),
	)
}

// Value returns the displayed count, mounting the counter first if needed.
func (c *Counter) Value() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mountLocked()
}
