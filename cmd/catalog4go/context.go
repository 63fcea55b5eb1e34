package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/ammar0144/catalog4go/pkg/config"
	"github.com/ammar0144/catalog4go/pkg/db"
	"github.com/ammar0144/catalog4go/pkg/logging"
	"github.com/ammar0144/catalog4go/pkg/reaper"
	"github.com/ammar0144/catalog4go/pkg/redis"
	"github.com/ammar0144/catalog4go/pkg/session"

	"github.com/prometheus/client_golang/prometheus"
)

var errResultFailed = errors.New("operation failed")

type commandContext struct {
	configFlag  *string
	metricsFlag *string

	// cache collectors of the managers this run opened
	registry *prometheus.Registry

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(configFlag, metricsFlag *string) *commandContext {
	return &commandContext{
		configFlag:  configFlag,
		metricsFlag: metricsFlag,
		registry:    prometheus.NewRegistry(),
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var (
			cfg *config.Config
			err error
		)
		if path := strings.TrimSpace(*c.configFlag); path != "" {
			cfg, err = config.LoadFile(path)
		} else {
			cfg, err = config.Load()
		}
		if err != nil {
			c.configErr = err
			return
		}
		logging.Init(cfg.Logging.Logging())
		c.config = cfg
	})
	return c.config, c.configErr
}

// connections holds what a command opened; close releases it
type connections struct {
	db    *db.Manager
	redis *redis.Manager
}

func (c *commandContext) open() (*connections, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}

	dbManager, err := db.NewManager(&cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("database: %w", err)
	}

	conns := &connections{db: dbManager}
	if cfg.Redis.Enabled {
		redisManager, err := redis.NewManager(&cfg.Redis)
		if err != nil {
			_ = dbManager.Close()
			return nil, fmt.Errorf("redis: %w", err)
		}
		conns.redis = redisManager
		if err := c.registry.Register(redisManager.Metrics()); err != nil {
			log := logging.WithComponent("cli")
			log.Debug().Err(err).Msg("cache metrics not registered")
		}
	}
	return conns, nil
}

// writeMetrics dumps every metric in text exposition format to the
// --metrics-textfile path, for pickup by a node exporter textfile collector.
func (c *commandContext) writeMetrics() {
	path := strings.TrimSpace(*c.metricsFlag)
	if path == "" {
		return
	}
	gatherers := prometheus.Gatherers{prometheus.DefaultGatherer, c.registry}
	if err := prometheus.WriteToTextfile(path, gatherers); err != nil {
		log := logging.WithComponent("cli")
		log.Warn().Err(err).Str("path", path).Msg("failed to write metrics textfile")
	}
}

func (c *connections) close() {
	if c.redis != nil {
		_ = c.redis.Close()
	}
	_ = c.db.Close()
}

// sessionFlags select who the caller is. --identity and --role are taken on
// trust, so they are refused once security.jwt_secret is configured.
type sessionFlags struct {
	token    string
	identity string
	role     string
}

func (f *sessionFlags) resolve(ctx context.Context, cfg *config.Config) (reaper.Session, error) {
	if f.token == "" {
		if cfg.Security.JWTSecret != "" && (f.identity != "" || f.role != "") {
			return nil, errors.New("--identity and --role are disabled when security.jwt_secret is set; pass --token")
		}
		return session.Static{IdentityValue: f.identity, RoleValue: f.role}, nil
	}
	if f.identity != "" || f.role != "" {
		return nil, errors.New("--token cannot be combined with --identity or --role")
	}

	manager, err := session.NewJWTManager(cfg.Security.JWTSecret, cfg.Security.SessionTimeout)
	if err != nil {
		return nil, fmt.Errorf("token sessions: %w", err)
	}
	return manager.Resolver(ctx, f.token), nil
}
