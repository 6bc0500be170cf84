package domain

import "time"

// Session is the authoritative record of a login. Token mappings in the
// store are derived from it, never the other way round.
type Session struct {
	SessionID    string     `json:"sessionId"`
	UserID       string     `json:"userId"`
	AccessToken  string     `json:"accessToken"`
	RefreshToken string     `json:"refreshToken"`
	CreatedAt    time.Time  `json:"createdAt"`
	LastAccessAt time.Time  `json:"lastAccessAt"`
	ExpiresAt    time.Time  `json:"expiresAt"`
	DeviceInfo   DeviceInfo `json:"deviceInfo"`
	IsActive     bool       `json:"isActive"`
}

type DeviceInfo struct {
	UserAgent   string `json:"userAgent"`
	IP          string `json:"ip"`
	Fingerprint string `json:"fingerprint"`
}

// SessionView is what the admin UI is allowed to see of a session.
type SessionView struct {
	SessionID    string         `json:"sessionId"`
	CreatedAt    time.Time      `json:"createdAt"`
	LastAccessAt time.Time      `json:"lastAccessAt"`
	DeviceInfo   DeviceInfoView `json:"deviceInfo"`
	IsActive     bool           `json:"isActive"`
}

type DeviceInfoView struct {
	UserAgent string `json:"userAgent"`
	IP        string `json:"ip"`
}

// View strips tokens and the fingerprint.
func (s *Session) View() SessionView {
	return SessionView{
		SessionID:    s.SessionID,
		CreatedAt:    s.CreatedAt,
		LastAccessAt: s.LastAccessAt,
		DeviceInfo: DeviceInfoView{
			UserAgent: s.DeviceInfo.UserAgent,
			IP:        s.DeviceInfo.IP,
		},
		IsActive: s.IsActive,
	}
}
