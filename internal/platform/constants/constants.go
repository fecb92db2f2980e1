// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package constants holds the fixed values that are not worth an environment
variable: server timeouts, rate limiting, token issuer, purchase retry
tuning and cache key prefixes.

Values a deployment is expected to tune (chapter price, retry budget, cache
TTL) are only defaults here; config.Config overrides them.
*/
package constants

import "time"

// # Server Timing

const (
	DefaultReadTimeout       = 5 * time.Second
	DefaultWriteTimeout      = 15 * time.Second
	DefaultIdleTimeout       = 120 * time.Second
	DefaultReadHeaderTimeout = 2 * time.Second

	// GlobalRequestTimeout is enforced by chi's Timeout middleware and mirrored
	// as the Postgres statement_timeout.
	GlobalRequestTimeout = 10 * time.Second

	ShutdownTimeout = 30 * time.Second

	CORSMaxAge = 5 * time.Minute
)

// # Rate Limiting

const (
	// DefaultRateLimitRPS and DefaultRateLimitBurst apply per client IP.
	DefaultRateLimitRPS   = 20
	DefaultRateLimitBurst = 40

	RateLimitCleanupInterval = time.Minute

	// RateLimitClientTTL is how long an idle IP keeps its bucket.
	RateLimitClientTTL = 3 * time.Minute
)

// # Authentication

// AuthIssuer is the required "iss" of access tokens.
const AuthIssuer = "comicpass.app"

// # Purchasing

const (
	// DefaultChapterPrice is the coin price of one chapter unlock.
	DefaultChapterPrice = 299

	// MaxGrant caps a single credit so repeated grants stay far from the
	// BIGINT range of the balance column.
	MaxGrant = 1_000_000_000

	// DefaultPurchaseMaxAttempts counts the first attempt.
	DefaultPurchaseMaxAttempts = 3

	// PurchaseTxTimeout bounds one purchase transaction, independent of the
	// caller's context.
	PurchaseTxTimeout = 5 * time.Second

	// PurchaseRetryBackoff is multiplied by the attempt number.
	PurchaseRetryBackoff = 15 * time.Millisecond
)

// # HTTP Headers

const (
	HeaderXRequestID    = "X-Request-ID"
	HeaderXRealIP       = "X-Real-IP"
	HeaderXForwardedFor = "X-Forwarded-For"
)

// # Redis

const (
	RedisPrefixEntitlement = "entitlement:"

	// RedisPrefixEntitlementGeneration counts invalidations per (user, comic).
	// A fill only lands if the counter has not moved since its load began.
	RedisPrefixEntitlementGeneration = "entitlement_gen:"

	DefaultEntitlementCacheTTL = 10 * time.Minute

	// EntitlementLoadTimeout bounds one shared cache fill. The fill is
	// detached from the caller that started it.
	EntitlementLoadTimeout = 2 * time.Second
)
