// File: utils/constants.go
package utils

import "time"

// SessionCachePrefix is the prefix used for Redis session keys.
const SessionCachePrefix = "session:"

// WebhookEventPrefix is the prefix used for processed webhook event ids.
const WebhookEventPrefix = "webhook:event:"

// WebhookEventTTL bounds how long a processed event id is remembered.
const WebhookEventTTL = 72 * time.Hour
