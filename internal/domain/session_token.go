package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Column sizes shared by the device parser and the session_tokens mapping.
const (
	MaxDeviceFieldLength = 128
	MaxUserAgentLength   = 512
)

// UnknownDevicePart fills any fingerprint component the user agent does not reveal.
const UnknownDevicePart = "Unknown"

// DeviceFingerprint identifies a client by operating system, platform and
// browser family. Two fingerprints are the same device when all three match.
type DeviceFingerprint struct {
	OS       string `json:"os"`
	Platform string `json:"platform"`
	Browser  string `json:"browser"`
}

func (f DeviceFingerprint) String() string {
	return f.OS + "/" + f.Platform + "/" + f.Browser
}

// SessionToken is the stored half of one authenticated device session.
// The (UserID, OS, Platform, Browser) tuple is unique.
type SessionToken struct {
	ID        uuid.UUID         `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	UserID    uuid.UUID         `json:"userId" gorm:"type:uuid;not null;uniqueIndex:idx_session_tokens_device,priority:1"`
	OS        string            `json:"os" gorm:"size:128;not null;uniqueIndex:idx_session_tokens_device,priority:2"`
	Platform  string            `json:"platform" gorm:"size:128;not null;uniqueIndex:idx_session_tokens_device,priority:3"`
	Browser   string            `json:"browser" gorm:"size:128;not null;uniqueIndex:idx_session_tokens_device,priority:4"`
	Token     string            `json:"-" gorm:"not null"`
	UserAgent string            `json:"userAgent" gorm:"size:512"`
	Client    datatypes.JSONMap `json:"client,omitempty" gorm:"type:jsonb"`
	CreatedAt time.Time         `json:"createdAt"`
	UpdatedAt time.Time         `json:"updatedAt"`
}

func (t *SessionToken) Fingerprint() DeviceFingerprint {
	return DeviceFingerprint{OS: t.OS, Platform: t.Platform, Browser: t.Browser}
}

func (t *SessionToken) SetFingerprint(fp DeviceFingerprint) {
	t.OS = fp.OS
	t.Platform = fp.Platform
	t.Browser = fp.Browser
}
