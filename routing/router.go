package routing

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/polyglot-hub/llm-router/providers"
	"go.uber.org/zap"
)

// Config holds the router-wide policy flags. The provider set lives in the
// registry; everything here is replaced wholesale by Reconfigure.
type Config struct {
	// PriorityOrder is an optional explicit fallback order. When empty,
	// fallback traversal uses registration order. Must be a permutation or
	// subset of registered provider names.
	PriorityOrder []string

	// FallbackEnabled turns on fallback traversal after a failed execution
	FallbackEnabled bool

	// CostOptimization biases scoring toward cheap providers
	CostOptimization bool

	// PrivacyFirst biases scoring and vision ordering toward local providers
	PrivacyFirst bool

	// PreferredVisionProvider gets a scoring edge for vision-analysis tasks
	PreferredVisionProvider string

	// CallTimeout bounds each individual provider call. Zero means no
	// router-imposed deadline; the provider's own transport timeout applies.
	CallTimeout time.Duration
}

// Router is the top-level entry point: it accepts a request, decides which
// provider should execute it, and executes with transparent failover. One
// Router instance owns its ledger and is safe for concurrent use.
type Router struct {
	registry *providers.Registry
	ledger   *Ledger
	logger   *zap.Logger

	mu  sync.RWMutex // guards cfg
	cfg Config
}

// New creates a Router over an already-populated registry
func New(registry *providers.Registry, cfg Config, logger *zap.Logger) (*Router, error) {
	if err := validateConfig(registry, cfg); err != nil {
		return nil, err
	}
	return &Router{
		registry: registry,
		ledger:   NewLedger(),
		logger:   logger,
		cfg:      cfg,
	}, nil
}

func validateConfig(registry *providers.Registry, cfg Config) error {
	for _, name := range cfg.PriorityOrder {
		if _, err := registry.Get(name); err != nil {
			return fmt.Errorf("priority order references unknown provider %q: %w", name, err)
		}
	}
	return nil
}

// Reconfigure replaces the policy flags wholesale. The provider set itself
// is immutable for the life of the router.
func (r *Router) Reconfigure(cfg Config) error {
	if err := validateConfig(r.registry, cfg); err != nil {
		return err
	}
	r.mu.Lock()
	r.cfg = cfg
	r.mu.Unlock()
	r.logger.Info("router reconfigured",
		zap.Bool("fallback_enabled", cfg.FallbackEnabled),
		zap.Bool("cost_optimization", cfg.CostOptimization),
		zap.Bool("privacy_first", cfg.PrivacyFirst),
		zap.Strings("priority_order", cfg.PriorityOrder))
	return nil
}

// Configuration returns a copy of the current policy flags
func (r *Router) Configuration() Config {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.cfg
}

// Registry returns the router's provider registry
func (r *Router) Registry() *providers.Registry {
	return r.registry
}

// Stats returns the per-provider observability snapshot
func (r *Router) Stats() map[string]ProviderStats {
	return r.ledger.Stats()
}

// ResetStats clears the performance ledger
func (r *Router) ResetStats() {
	r.ledger.Reset()
}

// Route decides which provider executes the request and runs it.
// Decision order: explicit provider preference, then the vision path for
// image-bearing requests, then the scored path with fallback.
func (r *Router) Route(ctx context.Context, req Request) (*Result, error) {
	cfg := r.Configuration()

	if req.PreferredProvider != "" {
		return r.routePreferred(ctx, req, cfg)
	}
	if len(req.Image) > 0 {
		return r.routeVision(ctx, req, cfg)
	}
	return r.routeScored(ctx, req, cfg)
}

// routePreferred executes directly against the named provider. An explicit
// preference is a hard constraint: no scoring, no fallback.
func (r *Router) routePreferred(ctx context.Context, req Request, cfg Config) (*Result, error) {
	p, err := r.registry.Get(req.PreferredProvider)
	if err != nil {
		return nil, NewRouteError(KindProviderNotFound,
			fmt.Sprintf("preferred provider %q is not registered", req.PreferredProvider), err)
	}
	if !p.ValidateConnection(ctx) {
		return nil, NewRouteError(KindProviderUnavailable,
			fmt.Sprintf("preferred provider %q failed its connectivity probe", req.PreferredProvider), nil)
	}

	resp, err := r.invoke(ctx, p, req, cfg)
	if err != nil {
		return nil, err
	}
	return &Result{Response: resp, Provider: p.Name()}, nil
}

// routeScored classifies the task, scores every reachable provider, and
// hands the winner to the fallback executor.
func (r *Router) routeScored(ctx context.Context, req Request, cfg Config) (*Result, error) {
	task := req.TaskCategory
	if task == TaskUnspecified {
		task = ClassifyTask(req.LastMessage())
	}

	scores := r.scoreReachable(ctx, req, task, cfg)
	if len(scores) == 0 {
		return nil, NewRouteError(KindNoProvidersAvailable, "no reachable providers to score", nil)
	}

	// Stable sort keeps registration order among ties: the first provider
	// encountered wins, deterministically.
	sort.SliceStable(scores, func(i, j int) bool {
		return scores[i].Score > scores[j].Score
	})
	winner := scores[0]

	r.logger.Info("routing decision",
		zap.String("provider", winner.Provider),
		zap.String("task", string(task)),
		zap.Float64("score", winner.Score),
		zap.Strings("reasons", winner.Reasons))

	result, err := r.executeWithFallback(ctx, winner.Provider, req, cfg)
	if err != nil {
		return nil, err
	}
	result.TaskCategory = task
	result.Score = winner.Score
	result.Reasons = winner.Reasons
	return result, nil
}

// scoreReachable probes every registered provider and scores the reachable
// ones, in registration order. Unreachable providers never appear in the
// result.
func (r *Router) scoreReachable(ctx context.Context, req Request, task TaskCategory, cfg Config) []ScoreResult {
	var scores []ScoreResult
	for _, name := range r.registry.Names() {
		p, err := r.registry.Get(name)
		if err != nil {
			continue
		}
		if !p.ValidateConnection(ctx) {
			r.logger.Debug("provider unreachable, excluded from scoring",
				zap.String("provider", name))
			continue
		}
		scores = append(scores, r.scoreProvider(p, req, task, cfg))
	}
	return scores
}

// invoke runs a single chat call against a provider and updates the ledger.
// Caller cancellation is recorded as neither a success nor a countable
// failure. No ledger lock is held while the call is in flight.
func (r *Router) invoke(ctx context.Context, p providers.Provider, req Request, cfg Config) (*providers.ChatResponse, error) {
	callCtx := ctx
	if cfg.CallTimeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, cfg.CallTimeout)
		defer cancel()
	}

	start := time.Now()
	resp, err := p.Chat(callCtx, req.Messages, req.Options)
	elapsed := time.Since(start)

	if err != nil {
		if ctx.Err() != nil {
			r.ledger.RecordCancellation(p.Name())
			return nil, ctx.Err()
		}
		r.ledger.RecordFailure(p.Name())
		if callCtx.Err() != nil {
			// Router-imposed deadline, not a caller cancellation: a later
			// attempt may succeed, so mark it retryable.
			return nil, providers.NewProviderError(p.Name(),
				"provider call exceeded the configured deadline", true, err)
		}
		return nil, err
	}

	r.ledger.RecordSuccess(p.Name(), elapsed)
	if resp.Latency == 0 {
		resp.Latency = elapsed
	}
	if resp.Provider == "" {
		resp.Provider = p.Name()
	}
	return resp, nil
}
