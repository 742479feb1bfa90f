// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package middleware

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"
)

// writeWindow tracks recent write timestamps for one client.
type writeWindow struct {
	mu     sync.Mutex
	stamps []time.Time
}

// WriteLimiter throttles mutating requests per client IP using a sliding
// window. Safe methods (GET, HEAD, OPTIONS) are never counted, so reads and
// CORS preflights stay unthrottled.
type WriteLimiter struct {
	mu      sync.RWMutex
	clients map[string]*writeWindow
	limit   int
	window  time.Duration
	now     func() time.Time
	stopCh  chan struct{}
}

// NewWriteLimiter allows limit writes per window for each client and starts
// a background sweep of idle clients. Call Stop when done.
func NewWriteLimiter(limit int, window time.Duration) *WriteLimiter {
	wl := &WriteLimiter{
		clients: make(map[string]*writeWindow),
		limit:   limit,
		window:  window,
		now:     time.Now,
		stopCh:  make(chan struct{}),
	}

	go func() {
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				wl.sweep()
			case <-wl.stopCh:
				return
			}
		}
	}()

	return wl
}

// Stop terminates the background sweep.
func (wl *WriteLimiter) Stop() {
	close(wl.stopCh)
}

// take records a write for key. It returns false and the wait until the
// oldest write leaves the window when the client is over its limit.
func (wl *WriteLimiter) take(key string) (bool, time.Duration) {
	wl.mu.RLock()
	win, ok := wl.clients[key]
	wl.mu.RUnlock()

	if !ok {
		wl.mu.Lock()
		if win, ok = wl.clients[key]; !ok {
			win = &writeWindow{}
			wl.clients[key] = win
		}
		wl.mu.Unlock()
	}

	now := wl.now()
	cutoff := now.Add(-wl.window)

	win.mu.Lock()
	defer win.mu.Unlock()

	kept := win.stamps[:0]
	for _, ts := range win.stamps {
		if ts.After(cutoff) {
			kept = append(kept, ts)
		}
	}
	win.stamps = kept

	if len(win.stamps) >= wl.limit {
		return false, win.stamps[0].Add(wl.window).Sub(now)
	}
	win.stamps = append(win.stamps, now)
	return true, 0
}

// sweep drops clients with no writes inside the window.
func (wl *WriteLimiter) sweep() {
	cutoff := wl.now().Add(-wl.window)

	wl.mu.Lock()
	defer wl.mu.Unlock()

	for key, win := range wl.clients {
		win.mu.Lock()
		idle := len(win.stamps) == 0 || !win.stamps[len(win.stamps)-1].After(cutoff)
		win.mu.Unlock()

		if idle {
			delete(wl.clients, key)
		}
	}
}

// Middleware answers 429 with a Retry-After header once a client exceeds
// its write budget.
func (wl *WriteLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if isSafeMethod(r.Method) {
			next.ServeHTTP(w, r)
			return
		}

		ip := clientIP(r)
		ok, wait := wl.take(ip)
		if !ok {
			secs := int(wait.Round(time.Second) / time.Second)
			if secs < 1 {
				secs = 1
			}
			slog.Warn("write rate limit exceeded",
				"request_id", GetRequestID(r.Context()),
				"remote", ip,
				"method", r.Method,
				"path", r.URL.Path,
			)
			w.Header().Set("Retry-After", strconv.Itoa(secs))
			http.Error(w, "Too Many Requests", http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func isSafeMethod(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return true
	}
	return false
}

// clientIP extracts the client's IP address, preferring X-Forwarded-For
// and X-Real-IP since the API is usually deployed behind a proxy.
func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		// Leftmost entry is the original client.
		if idx := strings.IndexByte(xff, ','); idx != -1 {
			return strings.TrimSpace(xff[:idx])
		}
		return strings.TrimSpace(xff)
	}

	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}

	addr := r.RemoteAddr
	if idx := strings.LastIndex(addr, ":"); idx != -1 {
		return addr[:idx]
	}
	return addr
}
