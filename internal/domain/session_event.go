package domain

import (
	"time"

	"github.com/google/uuid"
)

type SessionEventType string

const (
	SessionCreated   SessionEventType = "session.created"
	SessionRefreshed SessionEventType = "session.refreshed"
	SessionRevoked   SessionEventType = "session.revoked"
)

// SessionEvent tells a user's open connections that one of their device
// sessions changed. Count is set for revocations.
type SessionEvent struct {
	Type   SessionEventType  `json:"type"`
	UserID uuid.UUID         `json:"userId"`
	Device DeviceFingerprint `json:"device"`
	Count  int64             `json:"count,omitempty"`
	At     time.Time         `json:"at"`
}
