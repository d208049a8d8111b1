// Package gate runs the per-request pipeline: resolve the guild, fetch the
// log (and, with auth on, the bot config), then ask the policy.
package gate

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"logviewer/internal/policy"
	"logviewer/internal/telemetry"
	"logviewer/pkg/identity"
	"logviewer/pkg/logs"
	"logviewer/pkg/tenants"
)

type Resolver interface {
	Resolve(id tenants.ID) (tenants.Tenant, bool)
}

type Authorizer interface {
	Enabled() bool
	Evaluate(ctx context.Context, ident identity.Identity, tenant tenants.Tenant, cfg logs.TenantConfig, doc *logs.LogDocument) (policy.Decision, error)
}

type Request struct {
	GID      string // raw path segment
	Key      string
	Identity identity.Identity
}

type Result struct {
	Tenant   tenants.Tenant
	Document logs.LogDocument
	Decision policy.Decision
}

type Gate struct {
	tenants Resolver
	policy  Authorizer
	log     *zap.SugaredLogger
	tracer  trace.Tracer
}

func New(reg Resolver, pol Authorizer, log *zap.SugaredLogger) *Gate {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Gate{tenants: reg, policy: pol, log: log, tracer: otel.Tracer("logviewer/gate")}
}

// Open stops at the first failing stage and returns one of the package
// errors wrapped with detail. It performs reads only.
func (g *Gate) Open(ctx context.Context, req Request) (res Result, err error) {
	ctx, span := g.tracer.Start(ctx, "gate.Open", trace.WithAttributes(
		attribute.String("logviewer.gid", req.GID),
		attribute.Bool("logviewer.auth", g.policy.Enabled()),
	))
	defer func() {
		outcome := Outcome(err)
		telemetry.GateOutcomesTotal.WithLabelValues(outcome).Inc()
		span.SetAttributes(attribute.String("logviewer.outcome", outcome))
		if outcome == "store_unavailable" {
			span.SetStatus(codes.Error, err.Error())
			g.log.Warnw("log store unavailable", "gid", req.GID, "err", err)
		} else if err != nil {
			g.log.Debugw("log access refused", "gid", req.GID, "outcome", outcome, "err", err)
		}
		span.End()
	}()

	id, perr := tenants.ParseID(req.GID)
	if perr != nil {
		return Result{}, fmt.Errorf("%w: %q", ErrInvalidIdentifier, req.GID)
	}
	tenant, ok := g.tenants.Resolve(id)
	if !ok {
		return Result{}, fmt.Errorf("%w: %s", ErrTenantNotOnboarded, id)
	}

	if !g.policy.Enabled() {
		return g.openPublic(ctx, tenant, req)
	}
	return g.openGated(ctx, tenant, req)
}

func (g *Gate) openPublic(ctx context.Context, tenant tenants.Tenant, req Request) (Result, error) {
	doc, found, err := g.fetchLog(ctx, tenant, req.Key)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	if !found {
		return Result{}, fmt.Errorf("%w: %s/%s", ErrDocumentNotFound, tenant.ID, req.Key)
	}
	dec, err := g.authorize(ctx, req.Identity, tenant, logs.TenantConfig{}, &doc)
	if err != nil {
		return Result{}, err
	}
	return Result{Tenant: tenant, Document: doc, Decision: dec}, nil
}

func (g *Gate) openGated(ctx context.Context, tenant tenants.Tenant, req Request) (Result, error) {
	// No point touching the store for someone who has to log in first.
	if !req.Identity.Authenticated {
		if _, err := g.authorize(ctx, req.Identity, tenant, logs.TenantConfig{}, nil); err != nil {
			return Result{}, err
		}
	}

	var (
		cfg   logs.TenantConfig
		doc   logs.LogDocument
		found bool
	)
	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		c, ok, err := tenant.Store.FindConfig(egCtx, tenant.BotID)
		if err != nil {
			return err
		}
		if ok {
			cfg = c
		}
		return nil
	})
	eg.Go(func() error {
		var err error
		doc, found, err = g.fetchLog(egCtx, tenant, req.Key)
		return err
	})
	if err := eg.Wait(); err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	var docp *logs.LogDocument
	if found {
		docp = &doc
	}
	dec, err := g.authorize(ctx, req.Identity, tenant, cfg, docp)
	if err != nil {
		return Result{}, err
	}
	// Only whitelisted viewers learn whether the key exists.
	if !found {
		return Result{}, fmt.Errorf("%w: %s/%s", ErrDocumentNotFound, tenant.ID, req.Key)
	}
	return Result{Tenant: tenant, Document: doc, Decision: dec}, nil
}

func (g *Gate) fetchLog(ctx context.Context, tenant tenants.Tenant, key string) (logs.LogDocument, bool, error) {
	ctx, span := g.tracer.Start(ctx, "store.FindLog", trace.WithAttributes(attribute.String("logviewer.gid", tenant.ID.String())))
	defer span.End()
	doc, found, err := tenant.Store.FindLog(ctx, key)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
	}
	span.SetAttributes(attribute.Bool("logviewer.found", found))
	return doc, found, err
}

// authorize maps a decision onto the error taxonomy. Policy errors are
// reported as unavailable, never as a denial.
func (g *Gate) authorize(ctx context.Context, ident identity.Identity, tenant tenants.Tenant, cfg logs.TenantConfig, doc *logs.LogDocument) (policy.Decision, error) {
	ctx, span := g.tracer.Start(ctx, "policy.Evaluate")
	defer span.End()
	dec, err := g.policy.Evaluate(ctx, ident, tenant, cfg, doc)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return policy.Decision{}, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	span.SetAttributes(attribute.String("logviewer.decision", string(dec.Status)), attribute.String("logviewer.reason", string(dec.Reason)))
	if dec.Allowed() {
		return dec, nil
	}
	if dec.Reason == policy.ReasonMustAuthenticate {
		return dec, ErrUnauthenticated
	}
	return dec, fmt.Errorf("%w (%s)", ErrUnauthorized, dec.Reason)
}
