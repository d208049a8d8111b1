// cmd/logviewer/main.go
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"logviewer/internal/gate"
	"logviewer/internal/policy"
	"logviewer/internal/viewer"
	"logviewer/pkg/config"
	"logviewer/pkg/db"
	"logviewer/pkg/identity"
	"logviewer/pkg/logger"
	"logviewer/pkg/logs"
	"logviewer/pkg/middleware"
	"logviewer/pkg/tenants"
)

func main() {
	cfg := config.Load()
	log := logger.New(cfg.Env, cfg.LogLevel)
	defer func() { _ = log.Sync() }()

	startCtx, cancelStart := context.WithTimeout(context.Background(), 30*time.Second)
	storeOpts := logs.Options{EveryoneFold: cfg.WhitelistEveryoneFold, Log: log}
	reg, err := tenants.Build(startCtx, config.Namespace(cfg.EnvFile), func(ctx context.Context, uri string) (logs.Store, error) {
		return logs.Open(ctx, uri, storeOpts)
	}, log)
	cancelStart()
	if err != nil {
		log.Fatalw("tenant registry", "err", err)
	}
	if reg.Len() == 0 {
		log.Warnw("no MONGO_URI_<guild id> entries found; every log will be not found")
	}

	var sessions identity.SessionStore
	if rdb := db.MustRedis(cfg, log); rdb != nil {
		sessions = identity.NewRedisSessions(rdb, cfg.SessionTTL)
	} else {
		sessions = identity.NewMemorySessions(cfg.SessionTTL)
	}
	var bearer *identity.BearerVerifier
	if cfg.JWKSURL != "" {
		bearer = identity.NewBearerVerifier(cfg.Issuer, cfg.Audience, cfg.JWKSURL)
	}
	prov := identity.NewProvider(sessions, bearer, log)

	var roles identity.RoleResolver
	if cfg.DiscordBotToken != "" {
		roles = identity.NewDiscordRoles(cfg.DiscordAPIURL, cfg.DiscordBotToken, &http.Client{Timeout: 5 * time.Second})
	}
	pol, err := policy.New(context.Background(), policy.Options{Enabled: cfg.UsingOAuth(), Roles: roles})
	if err != nil {
		log.Fatalw("policy", "err", err)
	}
	if pol.Enabled() && roles == nil {
		log.Warnw("OAuth enabled without DISCORD_BOT_TOKEN; role whitelist entries will never match")
	}
	g := gate.New(reg, pol, log)

	r := chi.NewRouter()
	r.Use(middleware.RequestID())
	r.Use(middleware.Recover(log))
	r.Use(middleware.DebugWriteHeader(log))
	r.Use(middleware.Tracing(cfg, log))
	r.Use(middleware.Metrics())
	r.Use(middleware.WithIdentity(prov, log))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) { _, _ = w.Write([]byte("ok")) })
	r.Get("/metrics", promhttp.Handler().ServeHTTP)
	viewer.RegisterRoutes(r, cfg, log, g, prov)

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: r, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		log.Infow("logviewer listening", "addr", cfg.HTTPAddr, "oauth", pol.Enabled(), "tenants", reg.IDs())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalw("ListenAndServe", "err", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(ctx)
	if err := reg.Close(ctx); err != nil {
		log.Warnw("closing tenant stores", "err", err)
	}
	_ = middleware.ShutdownTracing(ctx)
	log.Infow("logviewer stopped")
}
