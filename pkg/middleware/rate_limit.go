package middleware

import (
	"net/http"
	"sync"
	"time"

	"bookable/pkg/logger"
)

// HostExtractor pulls the host identifier a request is acting on, so that one
// host's invitees cannot exhaust capacity for everyone else.
type HostExtractor func(r *http.Request) string

type HostRateLimiter struct {
	mu        sync.RWMutex
	requests  map[string][]time.Time
	limit     int
	window    time.Duration
	extractor HostExtractor
	log       *logger.Logger
	stopCh    chan struct{}
}

func NewHostRateLimiter(limit int, window time.Duration, extractor HostExtractor, log *logger.Logger) *HostRateLimiter {
	limiter := &HostRateLimiter{
		requests:  make(map[string][]time.Time),
		limit:     limit,
		window:    window,
		extractor: extractor,
		log:       log,
		stopCh:    make(chan struct{}),
	}

	go limiter.cleanup()

	return limiter
}

func (rl *HostRateLimiter) cleanup() {
	ticker := time.NewTicker(1 * time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.mu.Lock()
			for host, timestamps := range rl.requests {
				if len(timestamps) == 0 || time.Since(timestamps[len(timestamps)-1]) > rl.window {
					delete(rl.requests, host)
				}
			}
			rl.mu.Unlock()
		case <-rl.stopCh:
			return
		}
	}
}

func (rl *HostRateLimiter) Stop() {
	close(rl.stopCh)
}

func (rl *HostRateLimiter) Allow(host string) bool {
	if host == "" {
		return true
	}

	now := time.Now()

	rl.mu.RLock()
	timestamps := rl.requests[host]
	rl.mu.RUnlock()

	validTimestamps := make([]time.Time, 0)
	for _, ts := range timestamps {
		if now.Sub(ts) < rl.window {
			validTimestamps = append(validTimestamps, ts)
		}
	}

	if len(validTimestamps) >= rl.limit {
		return false
	}

	validTimestamps = append(validTimestamps, now)

	rl.mu.Lock()
	rl.requests[host] = validTimestamps
	rl.mu.Unlock()

	return true
}

func HostRateLimit(limiter *HostRateLimiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			host := extractHostID(r, limiter.extractor)

			if host == "" {
				next.ServeHTTP(w, r)
				return
			}

			if !limiter.Allow(host) {
				rejectRateLimited(w, limiter.log, r, host)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func extractHostID(r *http.Request, extractor HostExtractor) string {
	if extractor == nil {
		return DefaultHostExtractor(r)
	}
	return extractor(r)
}

func rejectRateLimited(w http.ResponseWriter, log *logger.Logger, r *http.Request, host string) {
	requestID := ""
	if rid := r.Context().Value(RequestIDKey); rid != nil {
		requestID = rid.(string)
	}

	log.Warn("Rate limit exceeded",
		"request_id", requestID,
		"host_id", host,
		"path", r.URL.Path,
	)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusTooManyRequests)
	_, _ = w.Write([]byte(`{"error":"Rate limit exceeded"}`))
}

func DefaultHostExtractor(r *http.Request) string {
	if host := r.URL.Query().Get("host_id"); host != "" {
		return host
	}
	return r.Header.Get("X-Host-ID")
}
