package uid

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// NewSessionID returns a random (v4) UUID string.
func NewSessionID() string {
	return uuid.NewString()
}

// NewLogKeySuffix returns "<unixMillis>:<uuid>", unique and time ordered.
func NewLogKeySuffix(ts time.Time) string {
	return fmt.Sprintf("%d:%s", ts.UnixMilli(), uuid.NewString())
}
