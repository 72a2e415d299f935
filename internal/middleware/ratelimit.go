package middleware

import (
	"log"
	"net"
	"net/http"

	"github.com/rcmp123/backend/internal/ratelimit"
	"github.com/rcmp123/backend/internal/services"
)

// RateLimit wraps a handler with per-IP sliding-window admission control.
// Denial is a distinct 429, never conflated with an authentication failure.
func RateLimit(limiter *ratelimit.Limiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := clientIP(r.RemoteAddr)
			if !limiter.Allow(key) {
				log.Printf("[RATELIMIT] Denied %s %s for %s", r.Method, r.URL.Path, key)
				services.SendErrorResponse(w, "Too many attempts, try again later", http.StatusTooManyRequests, nil)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// clientIP reduces a remote address to the bare IP. Direct connections carry
// ip:port and every connection gets a fresh ephemeral port, so the port must
// never be part of the limiter key. chi's RealIP middleware may already have
// rewritten the address to a bare IP from forwarding headers; that form has
// no port and passes through unchanged.
func clientIP(remoteAddr string) string {
	if host, _, err := net.SplitHostPort(remoteAddr); err == nil {
		return host
	}
	return remoteAddr
}
