package middleware

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"golang.org/x/time/rate"
)

func TestRateLimiterAllow(t *testing.T) {
	rl := NewRateLimiter(rate.Limit(1), 2)

	assert.True(t, rl.Allow("user-1"))
	assert.True(t, rl.Allow("user-1"))
	// Burst exhausted.
	assert.False(t, rl.Allow("user-1"))

	// Keys are independent buckets.
	assert.True(t, rl.Allow("user-2"))
}
