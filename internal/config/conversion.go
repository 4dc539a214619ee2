package config

import (
	"github.com/iwvelando/smart-calc-suite/internal/insight"
	"github.com/iwvelando/smart-calc-suite/internal/visitors"
	"go.uber.org/zap"
)

// ToInsightConfig converts the configuration into the insight client's config.
func (c InsightConfig) ToInsightConfig() insight.Config {
	return insight.Config{
		APIKey:  c.Key(),
		Model:   c.Model,
		Timeout: c.Timeout,
	}
}

// CounterOptions converts the configuration into visitor counter options.
// An unparsable epoch keeps the default launch epoch.
func (v VisitorsConfig) CounterOptions(logger *zap.Logger) []visitors.Option {
	opts := []visitors.Option{
		visitors.WithBase(v.Base),
		visitors.WithGrowthRate(v.GrowthRate),
		visitors.WithInterval(v.Interval),
		visitors.WithLogger(logger),
	}
	if epoch, err := v.EpochTime(); err == nil {
		opts = append(opts, visitors.WithEpoch(epoch))
	}
	return opts
}
