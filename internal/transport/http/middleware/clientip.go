package middleware

import (
	"context"
	"net"
	"net/http"
	"strings"
)

const clientIPKey contextKey = "client_ip"

// ClientIP resolves the caller address once per request and stores it in
// the context. Forwarding headers are honoured only when the socket peer is
// one of the trusted proxies; with none configured the peer address is used.
func ClientIP(trusted []*net.IPNet) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := context.WithValue(r.Context(), clientIPKey, realIP(r, trusted))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ClientIPFromContext returns the address stored by ClientIP, or "" if the
// middleware did not run.
func ClientIPFromContext(ctx context.Context) string {
	ip, _ := ctx.Value(clientIPKey).(string)
	return ip
}

// realIP returns the right-most X-Forwarded-For hop that is not a trusted
// proxy, then X-Real-Ip, then the host part of RemoteAddr. Headers are
// ignored unless RemoteAddr itself is trusted.
func realIP(r *http.Request, trusted []*net.IPNet) string {
	peer := remoteHost(r)
	if !isTrusted(peer, trusted) {
		return peer
	}
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		hops := strings.Split(xff, ",")
		client := peer
		for i := len(hops) - 1; i >= 0; i-- {
			hop := strings.TrimSpace(hops[i])
			if net.ParseIP(hop) == nil {
				break
			}
			client = hop
			if !isTrusted(hop, trusted) {
				return hop
			}
		}
		return client
	}
	if xr := strings.TrimSpace(r.Header.Get("X-Real-Ip")); net.ParseIP(xr) != nil {
		return xr
	}
	return peer
}

func remoteHost(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func isTrusted(addr string, trusted []*net.IPNet) bool {
	ip := net.ParseIP(addr)
	if ip == nil {
		return false
	}
	for _, n := range trusted {
		if n.Contains(ip) {
			return true
		}
	}
	return false
}
