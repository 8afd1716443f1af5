package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/jwong2529/humor-study/internal/config"
	"github.com/jwong2529/humor-study/internal/infra/logger"
	pgrepo "github.com/jwong2529/humor-study/internal/repo/postgres"
)

const defaultConfigPath = "configs/config.yaml"

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     config.Config
	configErr  error

	loggerOnce sync.Once
	logger     *zap.Logger
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (config.Config, error) {
	c.configOnce.Do(func() {
		c.config, c.configErr = config.Load(c.configPath())
	})
	return c.config, c.configErr
}

func (c *commandContext) configPath() string {
	if c.configFlag != nil {
		if path := strings.TrimSpace(*c.configFlag); path != "" {
			return path
		}
	}
	if path := strings.TrimSpace(os.Getenv("APP_CONFIG")); path != "" {
		return path
	}
	return defaultConfigPath
}

// cliLogger writes human-readable logs to stderr at warn and above.
func (c *commandContext) cliLogger() *zap.Logger {
	c.loggerOnce.Do(func() {
		log, err := logger.New("warn", "console")
		if err != nil {
			log = zap.NewNop()
		}
		c.logger = log
	})
	return c.logger
}

func (c *commandContext) openPool(ctx context.Context) (*pgxpool.Pool, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	pool, err := pgrepo.NewPool(ctx, cfg.Postgres.DSN)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	return pool, nil
}
