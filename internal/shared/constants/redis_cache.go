package constants

import "time"

// Redis keys follow eventbook:{module}:{purpose}:{identifier}

const CACHE_PREFIX = "eventbook"

// ================== AUTH MODULE ==================

const (
	CACHE_KEY_USER_PROFILE  = CACHE_PREFIX + ":auth:user:profile:uuid:" // + user-id
	CACHE_KEY_REVOKED_TOKEN = CACHE_PREFIX + ":auth:revoked:jti:"       // + token-id
)

const (
	TTL_USER_PROFILE = 10 * time.Minute
)

// ================== RATE LIMITING ==================

const (
	CACHE_KEY_RATE_LIMIT = CACHE_PREFIX + ":ratelimit:" // + type:client-ip
)

func BuildUserProfileKey(userID string) string {
	return CACHE_KEY_USER_PROFILE + userID
}

func BuildRevokedTokenKey(jti string) string {
	return CACHE_KEY_REVOKED_TOKEN + jti
}

func BuildRateLimitKey(limitType, clientIP string) string {
	return CACHE_KEY_RATE_LIMIT + limitType + ":" + clientIP
}

// ================== ANALYTICS MODULE ==================

const (
	CACHE_KEY_ANALYTICS_OVERVIEW = CACHE_PREFIX + ":analytics:overview"
	CACHE_KEY_ANALYTICS_EVENT    = CACHE_PREFIX + ":analytics:event:uuid:" // + event-id
)

const (
	TTL_ANALYTICS = time.Minute
)

func BuildAnalyticsEventKey(eventID string) string {
	return CACHE_KEY_ANALYTICS_EVENT + eventID
}
