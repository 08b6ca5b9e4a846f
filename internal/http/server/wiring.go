// Package server arma el grafo de dependencias del gateway a partir de la config.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/dropDatabas3/essgate/internal/cache"
	"github.com/dropDatabas3/essgate/internal/config"
	"github.com/dropDatabas3/essgate/internal/email"
	"github.com/dropDatabas3/essgate/internal/errorlog"
	healthctrl "github.com/dropDatabas3/essgate/internal/http/controllers/health"
	mobilectrl "github.com/dropDatabas3/essgate/internal/http/controllers/mobile"
	"github.com/dropDatabas3/essgate/internal/http/helpers"
	"github.com/dropDatabas3/essgate/internal/http/router"
	healthsvc "github.com/dropDatabas3/essgate/internal/http/services/health"
	mobilesvc "github.com/dropDatabas3/essgate/internal/http/services/mobile"
	"github.com/dropDatabas3/essgate/internal/i18n"
	jwtx "github.com/dropDatabas3/essgate/internal/jwt"
	"github.com/dropDatabas3/essgate/internal/metrics"
	"github.com/dropDatabas3/essgate/internal/observability/logger"
	"github.com/dropDatabas3/essgate/internal/permission"
	"github.com/dropDatabas3/essgate/internal/rate"
	"github.com/dropDatabas3/essgate/internal/security/password"
	"github.com/dropDatabas3/essgate/internal/security/secretbox"
	"github.com/dropDatabas3/essgate/internal/session"
	"github.com/dropDatabas3/essgate/internal/store"
	"github.com/dropDatabas3/essgate/internal/store/memory"
	"github.com/dropDatabas3/essgate/internal/store/pg"
	"github.com/dropDatabas3/essgate/internal/store/seed"
)

// App es el gateway armado: handler raíz más los recursos a cerrar.
type App struct {
	Handler http.Handler
	Stores  store.Stores
	Cache   cache.Client
	Metrics *metrics.Metrics

	closers []func() error
}

// Build instancia store, cache, sesiones, services y router según cfg.
// Ante error libera lo que ya se abrió.
func Build(ctx context.Context, cfg *config.Config, version string) (_ *App, err error) {
	log := logger.From(ctx).With(logger.Component("wiring"))
	app := &App{}
	defer func() {
		if err != nil {
			_ = app.Close()
		}
	}()

	// 1. Persistencia
	stores, err := store.Open(ctx, store.Config{
		Driver:         cfg.Storage.Driver,
		DSN:            cfg.Storage.DSN,
		Postgres:       poolConfig(cfg),
		ConnectRetries: cfg.Storage.Postgres.ConnectRetries,
	})
	if err != nil {
		return nil, fmt.Errorf("store: %w", err)
	}
	app.Stores = stores
	app.closers = append(app.closers, func() error { stores.Close(); return nil })

	// 2. Cache (sesiones + ventanas de rate limit)
	cc, err := cache.New(ctx, cache.Config{
		Driver:          cfg.Cache.Kind,
		Addr:            cfg.Cache.Redis.Addr,
		Password:        cfg.Cache.Redis.Password,
		DB:              cfg.Cache.Redis.DB,
		Prefix:          cfg.Cache.Redis.Prefix,
		DefaultTTL:      cfg.CacheDefaultTTL(),
		CleanupInterval: time.Minute,
	})
	if err != nil {
		return nil, fmt.Errorf("cache: %w", err)
	}
	app.Cache = cc
	app.closers = append(app.closers, cc.Close)

	// 3. Métricas (registry propio + runtime)
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m, err := metrics.New(reg)
	if err != nil {
		return nil, fmt.Errorf("metrics: %w", err)
	}
	if ps, ok := stores.(*pg.Store); ok {
		if err := m.RegisterPool(ps.PoolStats); err != nil {
			return nil, fmt.Errorf("metrics pool: %w", err)
		}
	}
	app.Metrics = m

	// 4. Sesiones firmadas
	keys, err := signingKeys(cfg)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(cfg.Session.SigningSeed) == "" {
		log.Warn("session signing seed not set, using ephemeral key (sessions die on restart)")
	}
	sessions := session.NewManager(jwtx.NewIssuer(cfg.Session.Issuer, keys), cc, cfg.SessionTTL())

	box, err := secretbox.New(cfg.Security.SecretBoxMasterKey)
	if err != nil {
		return nil, fmt.Errorf("secretbox: %w", err)
	}

	if cfg.Storage.SeedFile != "" {
		f, err := seed.Load(cfg.Storage.SeedFile)
		if err != nil {
			return nil, err
		}
		if err := seed.Apply(ctx, stores, box, f); err != nil {
			return nil, fmt.Errorf("seed: %w", err)
		}
	} else if _, ok := stores.(*memory.Store); ok {
		log.Warn("memory store without storage.seed_file, no employee can log in")
	}

	policy, err := passwordPolicy(cfg)
	if err != nil {
		return nil, err
	}

	tr, err := i18n.New(cfg.I18n.DefaultLanguage)
	if err != nil {
		return nil, fmt.Errorf("i18n: %w", err)
	}

	notifier, err := email.NewNotifier(email.NewSender(email.SMTPConfig{
		Host:               cfg.SMTP.Host,
		Port:               cfg.SMTP.Port,
		Username:           cfg.SMTP.Username,
		Password:           cfg.SMTP.Password,
		From:               cfg.SMTP.From,
		TLSMode:            cfg.SMTP.TLS,
		InsecureSkipVerify: cfg.SMTP.InsecureSkipVerify,
	}))
	if err != nil {
		return nil, fmt.Errorf("email templates: %w", err)
	}
	if cfg.SMTP.Host == "" {
		log.Info("smtp host not set, security notices disabled")
	}

	sink := errorlog.NewStoreSink(stores.ErrorLogs())

	// 5. Services y controllers
	services := mobilesvc.NewServices(mobilesvc.Deps{
		Employees:   stores.Employees(),
		Users:       stores.Users(),
		Sessions:    sessions,
		Permissions: permission.NewRoleChecker(stores.Users(), cfg.RBAC.Roles),
		Box:         box,
		Policy:      policy,
		Notifier:    notifier,
		Metrics:     m,
	})
	cookie := helpers.CookieConfig{
		Name:     cfg.Session.CookieName,
		Domain:   cfg.Session.Domain,
		SameSite: cfg.Session.SameSite,
		Secure:   cfg.Session.Secure,
	}
	checks := map[string]healthsvc.CheckFunc{
		"store": stores.Ping,
		"cache": cc.Ping,
	}
	health := healthsvc.NewHealthService(healthsvc.Deps{Checks: checks, Version: version})

	var limiter rate.Limiter
	if cfg.Rate.Enabled {
		limiter = rate.NewFixedWindow(cc, "rl:login", cfg.Rate.Login.Limit, cfg.RateLoginWindow())
	}

	deps := router.Deps{
		Mobile:       mobilectrl.NewMobileController(services, sink, cookie),
		Health:       healthctrl.NewHealthController(health),
		Sessions:     sessions,
		APITokens:    session.NewAPITokenAuthenticator(stores.Users(), box),
		CookieName:   cfg.Session.CookieName,
		Translator:   tr,
		LoginLimiter: limiter,
		Sink:         sink,
	}
	if cfg.Server.MetricsEnabled {
		deps.Metrics = m
	}
	app.Handler = router.New(deps)

	log.Info("gateway wired",
		logger.String("storage", cfg.Storage.Driver),
		logger.String("cache", cfg.Cache.Kind),
		logger.Bool("rate_limit", limiter != nil),
		logger.Bool("metrics", cfg.Server.MetricsEnabled),
	)
	return app, nil
}

// HTTPServer devuelve el http.Server con los timeouts configurados.
func (a *App) HTTPServer(cfg *config.Config) *http.Server {
	return &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           a.Handler,
		ReadTimeout:       cfg.ServerReadTimeout(),
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      cfg.ServerWriteTimeout(),
		IdleTimeout:       120 * time.Second,
	}
}

// Close libera los recursos en orden inverso de apertura.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

func poolConfig(cfg *config.Config) pg.PoolConfig {
	pc := pg.PoolConfig{
		MaxOpenConns: cfg.Storage.Postgres.MaxOpenConns,
		MaxIdleConns: cfg.Storage.Postgres.MaxIdleConns,
	}
	if d, err := time.ParseDuration(cfg.Storage.Postgres.ConnMaxLifetime); err == nil {
		pc.ConnMaxLifetime = d
	}
	return pc
}

func signingKeys(cfg *config.Config) (*jwtx.KeySet, error) {
	if s := strings.TrimSpace(cfg.Session.SigningSeed); s != "" {
		ks, err := jwtx.NewFromSeed(s)
		if err != nil {
			return nil, fmt.Errorf("session signing seed: %w", err)
		}
		return ks, nil
	}
	ks, err := jwtx.NewEphemeral()
	if err != nil {
		return nil, fmt.Errorf("ephemeral signing key: %w", err)
	}
	return ks, nil
}

func passwordPolicy(cfg *config.Config) (password.Policy, error) {
	pc := cfg.Security.AppPasswordPolicy
	p := password.Policy{
		MinLength:     pc.MinLength,
		RequireUpper:  pc.RequireUpper,
		RequireLower:  pc.RequireLower,
		RequireDigit:  pc.RequireDigit,
		RequireSymbol: pc.RequireSymbol,
	}
	if path := strings.TrimSpace(pc.BlacklistPath); path != "" {
		bl, err := password.LoadBlacklist(path)
		if err != nil {
			return p, fmt.Errorf("password blacklist: %w", err)
		}
		p.Blacklist = bl
	}
	return p, nil
}
