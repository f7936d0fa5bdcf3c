package ratelimit

import (
	"context"
	"sync"
	"time"
)

// TokenLimiter enforces a per-minute token budget using a sliding window.
type TokenLimiter struct {
	mu             sync.Mutex
	maxPerMinute   int
	windowStart    time.Time
	consumedTokens int
}

// NewTokenLimiter creates a new TokenLimiter with the given per-minute budget.
func NewTokenLimiter(maxPerMinute int) *TokenLimiter {
	return &TokenLimiter{
		maxPerMinute: maxPerMinute,
		windowStart:  time.Now(),
	}
}

// Wait blocks until the given number of tokens fits in the current window.
func (l *TokenLimiter) Wait(ctx context.Context, tokens int) error {
	for {
		l.mu.Lock()
		l.rotateWindow()
		if l.consumedTokens+tokens <= l.maxPerMinute || tokens > l.maxPerMinute {
			// Requests larger than the whole budget are admitted alone rather
			// than blocking forever.
			l.consumedTokens += tokens
			l.mu.Unlock()
			return nil
		}
		waitUntil := l.windowStart.Add(time.Minute)
		l.mu.Unlock()

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Until(waitUntil)):
		}
	}
}

// GetRemaining returns the number of tokens left in the current window.
func (l *TokenLimiter) GetRemaining() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.rotateWindow()
	remaining := l.maxPerMinute - l.consumedTokens
	if remaining < 0 {
		return 0
	}
	return remaining
}

func (l *TokenLimiter) rotateWindow() {
	if time.Since(l.windowStart) >= time.Minute {
		l.windowStart = time.Now()
		l.consumedTokens = 0
	}
}
