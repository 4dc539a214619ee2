package server

import (
	"context"

	"github.com/fsnotify/fsnotify"
	"github.com/iwvelando/smart-calc-suite/internal/config"
	"go.uber.org/zap"
)

// WatchConfig reloads the server configuration at path whenever the file is
// written and passes it to onChange. A reload that fails keeps the previous
// configuration. It runs until ctx is cancelled.
func WatchConfig(ctx context.Context, path string, logger *zap.Logger, onChange func(*Config)) error {
	if logger == nil {
		logger = zap.NewNop()
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	if err := watcher.Add(path); err != nil {
		return err
	}

	logger.Info("watching server config",
		zap.String("op", "server.WatchConfig"),
		zap.String("path", path),
	)

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			// Atomic saves arrive as a create.
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}

			cfg, err := LoadConfig(path)
			if err != nil {
				logger.Error("server config reload failed, keeping previous config",
					zap.String("op", "server.WatchConfig"),
					zap.String("path", path),
					zap.Error(err),
				)
				continue
			}

			logger.Info("server config reloaded",
				zap.String("op", "server.WatchConfig"),
				zap.String("path", path),
			)
			onChange(cfg)

			_ = watcher.Add(path)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("server config watcher error",
				zap.String("op", "server.WatchConfig"),
				zap.Error(err),
			)
		}
	}
}

// LevelUpdater returns an onChange callback that applies the reloaded log
// level to level. Only the level is applied while running; other settings
// need a restart.
func LevelUpdater(level zap.AtomicLevel, logger *zap.Logger) func(*Config) {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(cfg *Config) {
		if cfg.Logging.Level == "" {
			return
		}
		parsed, err := config.ParseLevel(cfg.Logging.Level)
		if err != nil {
			logger.Warn("ignoring invalid log level",
				zap.String("op", "server.LevelUpdater"),
				zap.String("level", cfg.Logging.Level),
				zap.Error(err),
			)
			return
		}
		if parsed == level.Level() {
			return
		}
		level.SetLevel(parsed)
		logger.Info("log level changed",
			zap.String("op", "server.LevelUpdater"),
			zap.String("level", parsed.String()),
		)
	}
}
