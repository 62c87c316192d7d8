package routing

import (
	"context"
	"fmt"
	"time"

	"github.com/polyglot-hub/llm-router/providers"
	"go.uber.org/zap"
)

// executeWithFallback runs the named provider and, on failure, walks the
// priority order starting just after the failed entry. The traversal is a
// single linear pass: candidates are probed and tried directly, with no
// re-scoring and no nesting. Re-scoring on every hop would add latency
// disproportionate to the benefit; the static walk is deliberate.
func (r *Router) executeWithFallback(ctx context.Context, name string, req Request, cfg Config) (*Result, error) {
	p, err := r.registry.Get(name)
	if err != nil {
		return nil, NewRouteError(KindProviderNotFound,
			fmt.Sprintf("provider %q is not registered", name), err)
	}

	resp, err := r.invoke(ctx, p, req, cfg)
	if err == nil {
		return &Result{Response: resp, Provider: name}, nil
	}
	if ctx.Err() != nil {
		// Caller cancelled: abandon the request, no fallback attempt.
		return nil, err
	}

	r.logger.Warn("provider execution failed",
		zap.String("provider", name),
		zap.Error(err))

	if !cfg.FallbackEnabled {
		return nil, err
	}
	return r.fallbackTraversal(ctx, name, req, cfg, err)
}

// fallbackTraversal tries each candidate after the failed provider in
// priority order until one succeeds or the list is exhausted.
func (r *Router) fallbackTraversal(ctx context.Context, failed string, req Request, cfg Config, lastErr error) (*Result, error) {
	order := cfg.PriorityOrder
	if len(order) == 0 {
		order = r.registry.Names()
	}

	start := indexOf(order, failed) + 1
	depth := 0
	for i := start; i < len(order); i++ {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		candidate, err := r.registry.Get(order[i])
		if err != nil {
			continue
		}
		if !candidate.ValidateConnection(ctx) {
			r.logger.Debug("fallback candidate unreachable",
				zap.String("provider", candidate.Name()))
			continue
		}
		depth++

		r.logger.Info("attempting fallback",
			zap.String("from", failed),
			zap.String("to", candidate.Name()),
			zap.Int("depth", depth))

		resp, err := r.invoke(ctx, candidate, req, cfg)
		if err == nil {
			return &Result{Response: resp, Provider: candidate.Name(), FallbackDepth: depth}, nil
		}
		if ctx.Err() != nil {
			return nil, err
		}
		lastErr = err
	}

	return nil, NewRouteError(KindAllProvidersFailed,
		"fallback traversal exhausted all providers", lastErr)
}

// routeVision serves image-bearing requests. Vision capability is a hard
// filter, not a soft preference: a non-vision provider cannot serve the
// request at all, so the general scoring engine is skipped.
func (r *Router) routeVision(ctx context.Context, req Request, cfg Config) (*Result, error) {
	if len(req.Image) == 0 {
		return nil, NewRouteError(KindMissingImage,
			"vision path entered without an image payload", nil)
	}

	instruction := req.LastMessage().Text()
	opts := req.Options.Clone()
	opts["response_format"] = "json"

	for _, name := range r.visionPriority(cfg) {
		p, err := r.registry.Get(name)
		if err != nil {
			continue
		}
		vp, ok := p.(providers.VisionProvider)
		if !ok || !p.Capabilities().Vision {
			continue
		}
		if !vp.ValidateConnection(ctx) {
			r.logger.Debug("vision candidate unreachable", zap.String("provider", name))
			continue
		}

		start := time.Now()
		resp, err := vp.AnalyzeImage(ctx, req.Image, instruction, opts)
		elapsed := time.Since(start)
		if err != nil {
			if ctx.Err() != nil {
				r.ledger.RecordCancellation(name)
				return nil, ctx.Err()
			}
			r.ledger.RecordFailure(name)
			r.logger.Warn("vision analysis failed",
				zap.String("provider", name),
				zap.Error(err))
			continue
		}

		r.ledger.RecordSuccess(name, elapsed)
		if resp.Provider == "" {
			resp.Provider = name
		}
		return &Result{Response: resp, Provider: name, TaskCategory: TaskVisionAnalysis}, nil
	}

	return nil, NewRouteError(KindNoVisionProvider,
		"no vision-capable provider could serve the request", nil)
}

// visionPriority orders providers local-first under the privacy-first
// policy and cloud-first otherwise, preserving registration order within
// each class.
func (r *Router) visionPriority(cfg Config) []string {
	var local, cloud []string
	for _, snap := range r.registry.Snapshots() {
		if snap.Type == providers.TypeLocal {
			local = append(local, snap.Name)
		} else {
			cloud = append(cloud, snap.Name)
		}
	}
	if cfg.PrivacyFirst {
		return append(local, cloud...)
	}
	return append(cloud, local...)
}

func indexOf(names []string, target string) int {
	for i, n := range names {
		if n == target {
			return i
		}
	}
	return -1
}
