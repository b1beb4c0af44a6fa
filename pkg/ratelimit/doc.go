// Package ratelimit caps how many image requests a run sends per minute.
//
// The stagger delay spaces out when downloads start; a Limiter adds a hard
// ceiling on top of it when download.requests_per_minute is set.
//
//	limiter := ratelimit.PerMinute(cfg.Download.RequestsPerMinute)
//	if err := limiter.Wait(ctx); err != nil {
//	    return err // context cancelled
//	}
package ratelimit
