package main

import (
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/google/uuid"

	"metacache/internal/config"
	"metacache/internal/logging"
	"metacache/internal/metadatacache"
)

type commandContext struct {
	configFlag *string
	jsonFlag   *bool

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(configFlag *string, jsonFlag *bool) *commandContext {
	return &commandContext{
		configFlag: configFlag,
		jsonFlag:   jsonFlag,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) JSONMode() bool {
	return c.jsonFlag != nil && *c.jsonFlag
}

// newLogger builds the per-invocation logger. Log lines go to stderr so
// JSON command output on stdout stays parseable, and every line carries a
// run_id so interleaved invocations can be told apart.
func (c *commandContext) newLogger(cfg *config.Config) (*slog.Logger, error) {
	logger, err := logging.New(logging.Options{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: os.Stderr,
	})
	if err != nil {
		return nil, err
	}
	return logger.With(logging.String("run_id", uuid.NewString())), nil
}

// openCache constructs the metadata cache from the loaded configuration.
// The caller owns the Close call.
func (c *commandContext) openCache() (*metadatacache.Cache, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	logger, err := c.newLogger(cfg)
	if err != nil {
		return nil, err
	}
	return metadatacache.New(metadatacache.Options{
		Path:     cfg.Cache.Path,
		Disabled: !cfg.Cache.Enabled,
		TTL:      cfg.TTL(),
		Logger:   logger,
	}), nil
}
