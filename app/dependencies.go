// Package app wires the gateway's dependencies together.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/polyglot-hub/llm-router/audit"
	"github.com/polyglot-hub/llm-router/config"
	"github.com/polyglot-hub/llm-router/middleware"
	"github.com/polyglot-hub/llm-router/providers"
	"github.com/polyglot-hub/llm-router/repositories"
	"github.com/polyglot-hub/llm-router/repositories/postgres"
	"github.com/polyglot-hub/llm-router/routing"
	"go.uber.org/zap"
)

// Dependencies holds all gateway dependencies. This is the central wiring
// point for dependency injection.
type Dependencies struct {
	Config *config.Config
	Logger *zap.Logger

	Registry *providers.Registry
	Router   *routing.Router

	// Decision audit trail; nil when no audit database is configured
	DB        *postgres.DB
	Decisions repositories.DecisionRepository
	Audit     *audit.Service

	AuthMiddleware *middleware.AuthMiddleware
}

// NewDependencies creates and wires up all gateway dependencies. The
// provider set is supplied by the caller and owned by the router for its
// lifetime.
func NewDependencies(ctx context.Context, cfg *config.Config, logger *zap.Logger, provs ...providers.Provider) (*Dependencies, error) {
	deps := &Dependencies{
		Config: cfg,
		Logger: logger,
	}

	if cfg.EnableLoopback {
		provs = append(provs, providers.NewLoopback("loopback"))
	}
	if len(provs) == 0 {
		logger.Warn("no providers registered; every routing attempt will fail")
	}

	registry, err := providers.NewRegistry(logger, provs...)
	if err != nil {
		return nil, fmt.Errorf("failed to build provider registry: %w", err)
	}
	registry.Initialize(ctx)
	deps.Registry = registry

	router, err := routing.New(registry, routing.Config{
		PriorityOrder:           cfg.Router.PriorityOrder,
		FallbackEnabled:         cfg.Router.FallbackEnabled,
		CostOptimization:        cfg.Router.CostOptimization,
		PrivacyFirst:            cfg.Router.PrivacyFirst,
		PreferredVisionProvider: cfg.Router.PreferredVisionProvider,
		CallTimeout:             cfg.Router.CallTimeout,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to build router: %w", err)
	}
	deps.Router = router

	if err := deps.initAudit(ctx, cfg); err != nil {
		return nil, fmt.Errorf("failed to initialize decision audit: %w", err)
	}

	deps.AuthMiddleware = middleware.NewAuthMiddleware(cfg.Auth.JWTSecret, logger)

	logger.Info("all dependencies initialized",
		zap.Int("providers", registry.Count()),
		zap.Bool("audit_enabled", deps.Audit != nil))
	return deps, nil
}

// initAudit sets up the optional postgres-backed decision audit trail
func (d *Dependencies) initAudit(ctx context.Context, cfg *config.Config) error {
	if cfg.AuditDatabase == nil {
		d.Logger.Info("no audit database configured, decisions are not persisted")
		return nil
	}

	db, err := postgres.NewDB(cfg.AuditDatabase, d.Logger)
	if err != nil {
		return err
	}
	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("audit database ping failed: %w", err)
	}
	if err := db.InitSchema(ctx); err != nil {
		return err
	}
	d.DB = db
	d.Decisions = postgres.NewDecisionRepository(db, d.Logger)

	auditCfg := audit.DefaultConfig()
	d.Audit = audit.NewService(d.Decisions, d.Logger, auditCfg)
	if err := d.Audit.Start(auditCfg.WorkerCount); err != nil {
		return err
	}

	d.Logger.Info("decision audit trail enabled",
		zap.String("database", cfg.AuditDatabase.LogString()))
	return nil
}

// Close releases held resources, draining the audit buffer first
func (d *Dependencies) Close(timeout time.Duration) {
	if d.Audit != nil {
		if err := d.Audit.Stop(timeout); err != nil {
			d.Logger.Warn("audit service shutdown incomplete", zap.Error(err))
		}
	}
	if d.DB != nil {
		if err := d.DB.Close(); err != nil {
			d.Logger.Warn("database close failed", zap.Error(err))
		}
	}
}
