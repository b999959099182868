package main

import (
	"log/slog"
	"strings"
	"sync"

	"dumpcheck/internal/config"
	"dumpcheck/internal/convert"
	"dumpcheck/internal/logging"
	"dumpcheck/internal/tools"
)

type commandContext struct {
	configFlag  *string
	verboseFlag *bool

	setupOnce sync.Once
	config    *config.Config
	logger    *slog.Logger
	setupErr  error
}

func newCommandContext(configFlag *string, verboseFlag *bool) *commandContext {
	return &commandContext{configFlag: configFlag, verboseFlag: verboseFlag}
}

func (c *commandContext) ensureSetup() (*config.Config, *slog.Logger, error) {
	c.setupOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.setupErr = err
			return
		}
		verbose := c.verboseFlag != nil && *c.verboseFlag
		logger, err := logging.NewFromConfig(cfg, verbose)
		if err != nil {
			c.setupErr = err
			return
		}
		c.config = cfg
		c.logger = logger
	})
	return c.config, c.logger, c.setupErr
}

// converter builds the tool clients and converter from configuration.
func (c *commandContext) converter() (*convert.Converter, error) {
	cfg, logger, err := c.ensureSetup()
	if err != nil {
		return nil, err
	}
	chdman, err := tools.NewChdman(cfg.Tools.Chdman)
	if err != nil {
		return nil, err
	}
	binmerge, err := tools.NewBinmerge(cfg.Tools.Binmerge)
	if err != nil {
		return nil, err
	}
	return convert.New(chdman, binmerge, logger), nil
}

func (c *commandContext) dolphinTool() (*tools.DolphinTool, error) {
	cfg, _, err := c.ensureSetup()
	if err != nil {
		return nil, err
	}
	return tools.NewDolphinTool(cfg.Tools.DolphinTool)
}
