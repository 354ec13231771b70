// internal/llm/fromconfig.go
package llm

import "macromaps/internal/common/config"

// NewRetryPolicy builds a policy from the millisecond-based config block.
func NewRetryPolicy(cfg config.RetryConfig) RetryPolicy {
	return RetryPolicy{
		MaxRetries:   cfg.MaxRetries,
		InitialDelay: config.GetDuration(cfg.InitialDelay),
		MaxDelay:     config.GetDuration(cfg.MaxDelay),
	}
}

// NewTier builds a model tier from its config block.
func NewTier(name string, cfg config.ModelTierConfig) Tier {
	return Tier{
		Name:      name,
		Model:     cfg.Model,
		MaxTokens: cfg.MaxTokens,
		Timeout:   config.GetDuration(cfg.Timeout),
	}
}
