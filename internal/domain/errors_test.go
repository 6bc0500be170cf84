package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	storeErr := errors.New("connection refused")

	tests := []struct {
		name string
		err  error
		want ErrorKind
	}{
		{name: "validation", err: ValidationError("empty"), want: KindValidation},
		{name: "auth", err: AuthError("bad"), want: KindAuth},
		{name: "rate limit", err: RateLimitError("slow down"), want: KindRateLimit},
		{name: "config", err: ConfigError("missing"), want: KindConfig},
		{name: "upstream wrapped", err: fmt.Errorf("load: %w", UpstreamError(storeErr)), want: KindUpstream},
		{name: "plain", err: storeErr, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, KindOf(tt.err))
		})
	}
}

func TestUpstreamError_HidesCause(t *testing.T) {
	cause := errors.New("dial tcp 10.0.0.1:6379: refused")
	err := UpstreamError(cause)

	var de *Error
	assert.True(t, errors.As(err, &de))
	assert.NotContains(t, de.Message, "10.0.0.1")
	assert.ErrorIs(t, err, cause)
}

func TestSessionView_StripsTokens(t *testing.T) {
	s := &Session{
		SessionID:    "sid",
		AccessToken:  "access",
		RefreshToken: "refresh",
		DeviceInfo:   DeviceInfo{UserAgent: "ua", IP: "1.2.3.4", Fingerprint: "fp"},
		IsActive:     true,
	}

	v := s.View()

	assert.Equal(t, "sid", v.SessionID)
	assert.Equal(t, "ua", v.DeviceInfo.UserAgent)
	assert.Equal(t, "1.2.3.4", v.DeviceInfo.IP)
	assert.True(t, v.IsActive)
}
