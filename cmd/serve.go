package cmd

import (
	"context"
	"errors"
	"fmt"
	"image"
	"net"
	"os"
	"path/filepath"
	"time"

	"grimm.is/wingwifi/internal/api"
	"grimm.is/wingwifi/internal/auth"
	"grimm.is/wingwifi/internal/brand"
	"grimm.is/wingwifi/internal/clock"
	"grimm.is/wingwifi/internal/config"
	"grimm.is/wingwifi/internal/logging"
	"grimm.is/wingwifi/internal/metrics"
	"grimm.is/wingwifi/internal/ratelimit"
	"grimm.is/wingwifi/internal/receipt"
	"grimm.is/wingwifi/internal/scheduler"
	"grimm.is/wingwifi/internal/session"
	"grimm.is/wingwifi/internal/state"
	"grimm.is/wingwifi/internal/voucher"
)

// sweepInterval is how often expired sessions are purged and counted.
const sweepInterval = time.Minute

// ServeOptions configures RunServe.
type ServeOptions struct {
	ConfigFile string
	EnvFile    string
	// Listen overrides the configured listen address.
	Listen string
	// Debug raises the log level to debug regardless of the configuration.
	Debug bool
}

// RunServe runs the web server until ctx is cancelled. A missing
// configuration does not stop the server: every page shows the error until
// the file is fixed and the server restarted.
func RunServe(ctx context.Context, opts ServeOptions) error {
	cfg, err := loadConfig(opts.ConfigFile, opts.EnvFile)
	logger := setupLogging(cfg)
	if opts.Debug {
		logger.SetLevel(logging.LevelDebug)
	}

	listen := opts.Listen
	if listen == "" && cfg != nil {
		listen = cfg.Listen
	}
	if listen == "" {
		listen = brand.DefaultListen
	}

	var srv *api.Server
	switch {
	case config.IsMissing(err):
		logger.Error("configuration incomplete, serving error page", "file", opts.ConfigFile, "error", err)
		srv, err = api.NewServer(api.ServerOptions{ConfigErr: err, Metrics: metrics.Get()})
		if err != nil {
			return err
		}
	case err != nil:
		return fmt.Errorf("configuration invalid: %w", err)
	default:
		var cleanup func()
		srv, cleanup, err = buildServer(ctx, cfg, logger)
		if err != nil {
			return err
		}
		defer cleanup()
	}

	ln, err := net.Listen("tcp", listen)
	if err != nil {
		return fmt.Errorf("listen %s: %w", listen, err)
	}
	return srv.Serve(ctx, ln)
}

func buildServer(ctx context.Context, cfg *config.Config, logger *logging.Logger) (*api.Server, func(), error) {
	clk := clock.Default
	reg := metrics.Get()

	store, closeStore, err := openSessionStore(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	sessions := session.NewManager(store, session.Options{
		Timeout:    cfg.SessionTimeout(),
		CookieName: brand.SessionCookie,
		Clock:      clk,
	})

	logo, err := loadLogo(cfg.PrinterLogo)
	if err != nil {
		logger.Warn("printer logo unusable, using the default", "file", cfg.PrinterLogo, "error", err)
		logo = receipt.DefaultLogo()
	}
	desk := voucher.NewService(voucher.Options{
		PrinterAddr:    cfg.PrinterIP,
		PrinterTimeout: cfg.PrinterDialTimeout(),
		SSID:           cfg.WirelessName,
		Logo:           logo,
		Clock:          clk,
		Metrics:        reg,
	})

	limiter := ratelimit.NewLimiter(clk)
	gate := auth.NewGate(cfg.AdminUsername, cfg.AdminPassword, limiter, reg)

	srv, err := api.NewServer(api.ServerOptions{
		Config:   cfg,
		Sessions: sessions,
		Desk:     desk,
		Gate:     gate,
		Metrics:  reg,
		Clock:    clk,
	})
	if err != nil {
		closeStore()
		return nil, nil, err
	}

	collector := metrics.NewCollector(reg, sessions, logging.WithComponent("session"))
	sched := scheduler.New(clk, nil)
	if err := sched.AddTask(scheduler.Task{
		ID:         "session-sweep",
		Name:       "Expire idle sessions",
		Every:      sweepInterval,
		Func:       collector.Collect,
		RunOnStart: true,
		Timeout:    30 * time.Second,
	}); err != nil {
		closeStore()
		return nil, nil, err
	}
	if err := sched.AddTask(scheduler.Task{
		ID:    "login-throttle-cleanup",
		Name:  "Forget stale login attempts",
		Every: time.Hour,
		Func: func(context.Context) error {
			if n := limiter.CleanupExpired(auth.AttemptWindow); n > 0 {
				logger.Debug("login throttle entries dropped", "count", n, "tracked", limiter.Len())
			}
			return nil
		},
	}); err != nil {
		closeStore()
		return nil, nil, err
	}
	schedCtx, cancel := context.WithCancel(ctx)
	go sched.Run(schedCtx)

	logger.Info("starting",
		"version", brand.Version,
		"controller", cfg.Location,
		"sessions", cfg.Session.Backend,
		"controllers", len(cfg.Controllers),
		"admin_gate", cfg.AdminGateEnabled(),
		"printer", cfg.PrinterIP,
		"log_level", logger.GetLevel().String(),
	)
	return srv, func() {
		cancel()
		closeStore()
	}, nil
}

func openSessionStore(ctx context.Context, cfg *config.Config) (session.Store, func(), error) {
	switch cfg.Session.Backend {
	case config.SessionBackendSQLite:
		path := cfg.Session.Path
		if path == "" {
			path = filepath.Join(brand.GetStateDir(), "sessions.db")
		}
		if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
			return nil, nil, fmt.Errorf("state dir: %w", err)
		}
		db, err := state.NewSQLiteStore(state.DefaultOptions(path))
		if err != nil {
			return nil, nil, err
		}
		store, err := session.NewStateStore(db, cfg.SessionTimeout())
		if err != nil {
			db.Close()
			return nil, nil, err
		}
		return store, func() { db.Close() }, nil

	case config.SessionBackendRedis:
		client, err := session.DialRedis(ctx, cfg.Session.RedisURL)
		if err != nil {
			return nil, nil, err
		}
		store := session.NewRedisStore(client, brand.LowerName+":session:", cfg.SessionTimeout())
		return store, func() { client.Close() }, nil

	case config.SessionBackendMemory:
		return session.NewMemoryStore(), func() {}, nil
	}
	return nil, nil, errors.New("unknown session backend: " + cfg.Session.Backend)
}

func loadLogo(path string) (image.Image, error) {
	if path == "" {
		return receipt.DefaultLogo(), nil
	}
	return receipt.LoadLogo(path)
}
