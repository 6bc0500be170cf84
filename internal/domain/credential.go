package domain

import "time"

// Credential is the admin principal's salted PBKDF2 hash, hex encoded.
type Credential struct {
	PasswordHash string `json:"passwordHash"`
	PasswordSalt string `json:"passwordSalt"`
}

// Valid reports whether both halves are present.
func (c *Credential) Valid() bool {
	return c != nil && c.PasswordHash != "" && c.PasswordSalt != ""
}

type LockoutRecord struct {
	Attempts    int        `json:"attempts"`
	LastAttempt time.Time  `json:"lastAttempt"`
	LockedUntil *time.Time `json:"lockedUntil,omitempty"`
}

type LockoutStatus struct {
	Locked           bool
	RemainingSeconds int
	Attempts         int
}

// LoginLogEntry is written once per login attempt and never updated.
type LoginLogEntry struct {
	Timestamp time.Time `json:"timestamp"`
	UserID    string    `json:"userId"`
	IP        string    `json:"ip"`
	UserAgent string    `json:"userAgent"`
	Success   bool      `json:"success"`
	Reason    string    `json:"reason"`
}
