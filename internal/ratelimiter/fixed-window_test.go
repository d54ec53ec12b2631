package ratelimiter

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFixedWindow_AllowsUpToLimit(t *testing.T) {
	rl := NewFixedWindowLimiter(3, time.Minute)

	for i := 0; i < 3; i++ {
		ok, _ := rl.Allow("1.2.3.4")
		assert.True(t, ok, "request %d should pass", i)
	}

	ok, retryAfter := rl.Allow("1.2.3.4")
	assert.False(t, ok)
	assert.Greater(t, retryAfter, time.Duration(0))
}

func TestFixedWindow_SeparateClients(t *testing.T) {
	rl := NewFixedWindowLimiter(1, time.Minute)

	ok, _ := rl.Allow("1.1.1.1")
	assert.True(t, ok)

	ok, _ = rl.Allow("2.2.2.2")
	assert.True(t, ok, "other clients have their own window")
}

func TestFixedWindow_ResetsAfterWindow(t *testing.T) {
	rl := NewFixedWindowLimiter(1, 20*time.Millisecond)

	ok, _ := rl.Allow("1.2.3.4")
	assert.True(t, ok)
	ok, _ = rl.Allow("1.2.3.4")
	assert.False(t, ok)

	time.Sleep(30 * time.Millisecond)

	ok, _ = rl.Allow("1.2.3.4")
	assert.True(t, ok, "window should have rolled over")
}
