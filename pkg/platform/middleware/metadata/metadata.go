package metadata

import (
	"net"
	"net/http"
	"net/netip"
	"strings"

	"docverify/pkg/requestcontext"
)

// HeaderDeviceFingerprint carries an optional client-computed device fingerprint.
const HeaderDeviceFingerprint = "X-Device-Fingerprint"

// ClientMetadata extracts client IP address, User-Agent and device
// fingerprint from the request and stores them in the request context.
// Apply it early in the chain. Forwarding headers are only believed when
// the direct peer is one of the trusted proxies.
func ClientMetadata(trusted []netip.Prefix) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := requestcontext.WithClientMetadata(r.Context(), ClientIPFromRequest(r, trusted), r.Header.Get("User-Agent"))
			if fp := strings.TrimSpace(r.Header.Get(HeaderDeviceFingerprint)); fp != "" {
				ctx = requestcontext.WithDeviceFingerprint(ctx, fp)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ClientIPFromRequest returns the client address. Behind trusted proxies the
// X-Forwarded-For chain is walked from the right and the first hop that is
// not itself a trusted proxy wins; X-Real-IP is the fallback. Any other peer
// is reported as is, whatever headers it sends.
func ClientIPFromRequest(r *http.Request, trusted []netip.Prefix) string {
	peer := peerAddr(r.RemoteAddr)
	if peer == "" {
		return "unknown"
	}
	if !isTrusted(peer, trusted) {
		return peer
	}

	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		hops := strings.Split(xff, ",")
		for i := len(hops) - 1; i >= 0; i-- {
			hop := strings.TrimSpace(hops[i])
			if hop == "" {
				continue
			}
			if i == 0 || !isTrusted(hop, trusted) {
				return hop
			}
		}
	}
	if xri := strings.TrimSpace(r.Header.Get("X-Real-IP")); xri != "" {
		return xri
	}
	return peer
}

func peerAddr(addr string) string {
	if addr == "" {
		return ""
	}
	if host, _, err := net.SplitHostPort(addr); err == nil {
		return host
	}
	return addr
}

func isTrusted(ip string, trusted []netip.Prefix) bool {
	if len(trusted) == 0 {
		return false
	}
	addr, err := netip.ParseAddr(ip)
	if err != nil {
		return false
	}
	addr = addr.Unmap()
	for _, p := range trusted {
		if p.Contains(addr) {
			return true
		}
	}
	return false
}
