package routing

import (
	"fmt"
	"time"

	"github.com/polyglot-hub/llm-router/providers"
)

const (
	baseScore = 50.0

	// largeContextThreshold is the context capacity that qualifies a
	// provider for the code-task bonus.
	largeContextThreshold = 32000

	// fastLatencyThreshold qualifies a provider for the latency bonus
	fastLatencyThreshold = 1000 * time.Millisecond

	// reliableSuccessRate qualifies a provider for the reliability bonus
	reliableSuccessRate = 0.95

	// cheapCompletionTokens and cheapCompletionCost define the nominal
	// completion used for the cheap-provider bonus.
	cheapCompletionTokens = 1000
	cheapCompletionCost   = 0.01
)

// scoreProvider computes the suitability score for one provider. It is a
// pure function of the request, the policy flags, the registry's model
// cache, and the current ledger snapshot; it mutates nothing. Only invoked
// for providers that already passed a connectivity probe.
func (r *Router) scoreProvider(p providers.Provider, req Request, task TaskCategory, cfg Config) ScoreResult {
	name := p.Name()
	result := ScoreResult{
		Provider: name,
		Score:    baseScore,
		Reasons:  []string{},
	}
	add := func(delta float64, reason string) {
		result.Score += delta
		result.Reasons = append(result.Reasons, fmt.Sprintf("%+.0f: %s", delta, reason))
	}

	maxContext := r.registry.MaxContextLength(name)
	caps := p.Capabilities()

	// Task-category bonuses: at most one category block applies.
	switch task {
	case TaskCodeGeneration, TaskCodeReview:
		if maxContext >= largeContextThreshold {
			add(30, fmt.Sprintf("context window %d suits code tasks", maxContext))
		}
		if caps.Code {
			add(20, "code capability")
		}
	case TaskVisionAnalysis:
		if caps.Vision {
			add(50, "vision capability")
		}
		if name == cfg.PreferredVisionProvider {
			add(10, "preferred vision provider")
		}
	case TaskTranslation:
		if r.registry.HasModelTag(name, "multilingual") {
			add(40, "multilingual model available")
		}
	case TaskCreativeWriting:
		if p.Type() == providers.TypeCloud {
			add(20, "cloud provider for creative writing")
		}
	default:
		if req.PreferLocal && p.Type() == providers.TypeLocal {
			add(30, "local provider preferred by caller")
		}
	}

	// Performance bonuses from the ledger. Providers with no history
	// receive neither bonus, not a penalty.
	if rec, ok := r.ledger.Record(name); ok && rec.TotalRequests > 0 {
		if rec.SuccessfulRequests > 0 && rec.AverageLatency() < fastLatencyThreshold {
			add(15, fmt.Sprintf("average latency %dms", rec.AverageLatency().Milliseconds()))
		}
		if rec.SuccessRate() > reliableSuccessRate {
			add(10, fmt.Sprintf("success rate %.0f%%", rec.SuccessRate()*100))
		}
	}

	// Privacy bonus
	if cfg.PrivacyFirst && p.Type() == providers.TypeLocal {
		add(25, "local provider under privacy-first policy")
	}

	// Cost bonus: local providers are assumed free under cost optimization;
	// metered providers qualify when a nominal completion prices cheaply.
	if cfg.CostOptimization {
		if p.Type() == providers.TypeLocal {
			add(20, "zero marginal cost (local)")
		} else if estimator, ok := p.(providers.CostEstimator); ok {
			if cost := estimator.EstimateCost(cheapCompletionTokens); cost < cheapCompletionCost {
				add(10, fmt.Sprintf("estimated cost $%.4f per 1k tokens", cost))
			}
		}
	}

	// Context-capacity penalty: the request must fit the provider's best
	// cached model. No cache means no known capacity.
	if estimate := estimateTokens(req); maxContext < estimate {
		add(-30, fmt.Sprintf("estimated %d tokens exceeds context capacity %d", estimate, maxContext))
	}

	return result
}

// estimateTokens approximates the request's token footprint as total text
// characters divided by four, rounded up.
func estimateTokens(req Request) int {
	chars := req.TextLength()
	return (chars + 3) / 4
}
