package client

import (
	"io"
	"sync"
	"time"
)

// RateLimiter is a token bucket counting bytes per second. One bucket is
// shared by every in-flight upload, so the cap holds across concurrent
// transfers.
type RateLimiter struct {
	mu     sync.Mutex
	rate   int64   // bytes per second
	tokens float64 // current available tokens
	last   time.Time
}

var (
	uploadLimiter   *RateLimiter
	uploadLimiterMu sync.RWMutex
)

// SetUploadRateLimit caps outbound asset transfers at bytesPerSecond.
// A zero or negative value removes the cap.
func SetUploadRateLimit(bytesPerSecond int64) {
	uploadLimiterMu.Lock()
	lim := uploadLimiter
	if bytesPerSecond <= 0 {
		uploadLimiter = nil
		uploadLimiterMu.Unlock()
		return
	}
	if lim == nil {
		uploadLimiter = &RateLimiter{rate: bytesPerSecond, tokens: float64(bytesPerSecond), last: time.Now()}
		uploadLimiterMu.Unlock()
		return
	}
	// Update existing limiter outside of uploadLimiterMu to avoid lock ordering issues
	uploadLimiterMu.Unlock()
	lim.mu.Lock()
	lim.rate = bytesPerSecond
	if lim.tokens > float64(bytesPerSecond) {
		lim.tokens = float64(bytesPerSecond)
	}
	lim.last = time.Now()
	lim.mu.Unlock()
}

type limitedReader struct {
	under io.Reader
	lim   *RateLimiter
}

func (lr *limitedReader) Read(p []byte) (int, error) {
	if lr.lim == nil || lr.lim.rate <= 0 {
		return lr.under.Read(p)
	}
	lr.lim.mu.Lock()
	// Refill tokens
	now := time.Now()
	elapsed := now.Sub(lr.lim.last).Seconds()
	if elapsed > 0 {
		lr.lim.tokens += elapsed * float64(lr.lim.rate)
		maxTokens := float64(lr.lim.rate)
		if lr.lim.tokens > maxTokens {
			lr.lim.tokens = maxTokens
		}
		lr.lim.last = now
	}
	// Decide max bytes we can read now
	allowed := int(lr.lim.tokens)
	if allowed <= 0 {
		// Need to wait for next refill cycle
		lr.lim.mu.Unlock()
		sleepDur := time.Duration(float64(time.Second) * (1.0 / float64(lr.lim.rate)))
		time.Sleep(sleepDur)
		return lr.Read(p)
	}
	if len(p) > allowed {
		p = p[:allowed]
	}
	lr.lim.mu.Unlock()
	n, err := lr.under.Read(p)
	if n > 0 {
		lr.lim.mu.Lock()
		lr.lim.tokens -= float64(n)
		lr.lim.mu.Unlock()
	}
	return n, err
}

func wrapWithUploadRateLimiter(r io.Reader) io.Reader {
	uploadLimiterMu.RLock()
	lim := uploadLimiter
	uploadLimiterMu.RUnlock()

	if lim == nil {
		return r
	}
	return &limitedReader{under: r, lim: lim}
}
