package useragent

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractIPAddress(t *testing.T) {
	tests := []struct {
		name       string
		headers    map[string]string
		remoteAddr string
		want       string
	}{
		{name: "cloudflare wins", headers: map[string]string{"CF-Connecting-IP": "1.1.1.1", "X-Forwarded-For": "2.2.2.2"}, remoteAddr: "9.9.9.9:1", want: "1.1.1.1"},
		{name: "first forwarded hop", headers: map[string]string{"X-Forwarded-For": "2.2.2.2, 10.0.0.1"}, remoteAddr: "9.9.9.9:1", want: "2.2.2.2"},
		{name: "real ip", headers: map[string]string{"X-Real-IP": "3.3.3.3"}, remoteAddr: "9.9.9.9:1", want: "3.3.3.3"},
		{name: "socket v4", remoteAddr: "9.9.9.9:443", want: "9.9.9.9"},
		{name: "socket v6", remoteAddr: "[2001:db8::1]:443", want: "2001:db8::1"},
		{name: "nothing", remoteAddr: "", want: "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			r.RemoteAddr = tt.remoteAddr
			for k, v := range tt.headers {
				r.Header.Set(k, v)
			}
			assert.Equal(t, tt.want, ExtractIPAddress(r))
		})
	}
}

func TestFingerprint_Stable(t *testing.T) {
	newReq := func(lang string) *http.Request {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.Header.Set("User-Agent", "Mozilla/5.0")
		r.Header.Set("Accept-Language", lang)
		r.Header.Set("Accept-Encoding", "gzip")
		return r
	}

	assert.Equal(t, Fingerprint(newReq("en")), Fingerprint(newReq("en")))
	assert.NotEqual(t, Fingerprint(newReq("en")), Fingerprint(newReq("zh-CN")))
}

func TestExtractDeviceInfo(t *testing.T) {
	tests := []struct {
		ua   string
		want string
	}{
		{ua: "", want: "Unknown Device"},
		{ua: "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36", want: "Chrome 120 on macOS"},
		{ua: "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36 Edg/120.0.0.0", want: "Edge 120 on Windows"},
		{ua: "Mozilla/5.0 (X11; Linux x86_64; rv:121.0) Gecko/20100101 Firefox/121.0", want: "Firefox 121 on Linux"},
	}

	for _, tt := range tests {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.Header.Set("User-Agent", tt.ua)
		assert.Equal(t, tt.want, ExtractDeviceInfo(r))
	}
}
