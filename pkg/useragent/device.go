package useragent

import (
	"hash/fnv"
	"net"
	"net/http"
	"strconv"
	"strings"
)

// ExtractDeviceInfo parses the User-Agent header into a short label such as
// "Chrome 120 on macOS". Only used for logs.
func ExtractDeviceInfo(r *http.Request) string {
	ua := r.Header.Get("User-Agent")
	if ua == "" {
		return "Unknown Device"
	}

	browser := "Unknown Browser"
	switch {
	case strings.Contains(ua, "Edg/"):
		browser = "Edge"
	case strings.Contains(ua, "Chrome/"):
		browser = "Chrome"
	case strings.Contains(ua, "Firefox/"):
		browser = "Firefox"
	case strings.Contains(ua, "Safari/"):
		browser = "Safari"
	}

	version := ""
	browserKey := browser + "/"
	if browser == "Edge" {
		browserKey = "Edg/"
	}
	if idx := strings.Index(ua, browserKey); idx != -1 {
		start := idx + len(browserKey)
		end := start
		for end < len(ua) && (ua[end] >= '0' && ua[end] <= '9') {
			end++
		}
		version = ua[start:end]
	}

	os := "Unknown OS"
	switch {
	case strings.Contains(ua, "Windows"):
		os = "Windows"
	case strings.Contains(ua, "iPhone"), strings.Contains(ua, "iPad"):
		os = "iOS"
	case strings.Contains(ua, "Mac OS X"):
		os = "macOS"
	case strings.Contains(ua, "Android"):
		os = "Android"
	case strings.Contains(ua, "Linux"):
		os = "Linux"
	}

	if version != "" {
		return browser + " " + version + " on " + os
	}
	return browser + " on " + os
}

// ExtractIPAddress gets the client IP, trusting the edge proxy headers
// first: CF-Connecting-IP, then the first X-Forwarded-For hop, then
// X-Real-IP, then the socket address.
func ExtractIPAddress(r *http.Request) string {
	if cf := strings.TrimSpace(r.Header.Get("CF-Connecting-IP")); cf != "" {
		return cf
	}

	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if first := strings.TrimSpace(strings.Split(xff, ",")[0]); first != "" {
			return first
		}
	}

	if xri := strings.TrimSpace(r.Header.Get("X-Real-IP")); xri != "" {
		return xri
	}

	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil && host != "" {
		return host
	}
	if r.RemoteAddr != "" {
		return r.RemoteAddr
	}
	return "unknown"
}

// Fingerprint is a stable, non-cryptographic hash of the headers that tend
// to identify a browser install. Observability only, never a credential.
func Fingerprint(r *http.Request) string {
	h := fnv.New64a()
	h.Write([]byte(r.Header.Get("User-Agent")))
	h.Write([]byte{'|'})
	h.Write([]byte(r.Header.Get("Accept-Language")))
	h.Write([]byte{'|'})
	h.Write([]byte(r.Header.Get("Accept-Encoding")))
	return strconv.FormatUint(h.Sum64(), 36)
}
