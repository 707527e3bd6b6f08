// Package ratelimit keeps API calls under the per-token request ceiling.
//
// Two strategies are available. TokenBucket refills to full capacity once per
// period, which matches the "N calls per second" rule the VK API enforces.
// SlidingWindow spreads calls more evenly at the cost of a timestamp slice.
//
//	limiter, _ := ratelimit.New(ratelimit.StrategyTokenBucket, 3)
//	if err := limiter.Wait(ctx); err != nil {
//	    return err
//	}
package ratelimit
