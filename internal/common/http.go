package common

import (
	"net"
	"net/http"
	"strings"
)

// ClientIDHeader lets dashboards and scripts identify themselves for rate limiting.
const ClientIDHeader = "X-Client-ID"

// ClientIP attempts to determine the real client IP address from the request.
func ClientIP(r *http.Request) string {
	if r == nil {
		return ""
	}
	if fwd := strings.TrimSpace(r.Header.Get("X-Forwarded-For")); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		if candidate := strings.TrimSpace(first); candidate != "" {
			return candidate
		}
	}
	if ip := strings.TrimSpace(r.Header.Get("X-Real-IP")); ip != "" {
		return ip
	}
	host, _, err := net.SplitHostPort(strings.TrimSpace(r.RemoteAddr))
	if err == nil {
		return host
	}
	return strings.TrimSpace(r.RemoteAddr)
}

// ClientKey identifies the caller for quota purposes: the X-Client-ID header
// when present, the client IP otherwise.
func ClientKey(r *http.Request) string {
	if r == nil {
		return "anonymous"
	}
	if id := strings.TrimSpace(r.Header.Get(ClientIDHeader)); id != "" {
		return "client:" + id
	}
	if ip := ClientIP(r); ip != "" {
		return "ip:" + ip
	}
	return "anonymous"
}
