// Package device derives a device fingerprint from a User-Agent header.
package device

import (
	"strings"
	"unicode/utf8"

	"github.com/dragomirurdov/AtrijumApi/internal/domain"
	"github.com/mssola/useragent"
)

// Fingerprint parses userAgent into an (OS, platform, browser) triple.
// Parts the header does not reveal are reported as domain.UnknownDevicePart,
// so every client, recognised or not, maps to a stable device slot.
func Fingerprint(userAgent string) domain.DeviceFingerprint {
	userAgent = strings.TrimSpace(userAgent)
	if userAgent == "" {
		return Unknown()
	}

	ua := useragent.New(userAgent)
	browser, _ := ua.Browser()

	return domain.DeviceFingerprint{
		OS:       normalize(ua.OS()),
		Platform: normalize(ua.Platform()),
		Browser:  normalize(browser),
	}
}

// Unknown is the fingerprint of a client that sent no usable User-Agent.
func Unknown() domain.DeviceFingerprint {
	return domain.DeviceFingerprint{
		OS:       domain.UnknownDevicePart,
		Platform: domain.UnknownDevicePart,
		Browser:  domain.UnknownDevicePart,
	}
}

// Describe returns informational client details stored next to a session.
// It plays no part in device identity.
func Describe(userAgent string) map[string]any {
	userAgent = strings.TrimSpace(userAgent)
	if userAgent == "" {
		return nil
	}

	ua := useragent.New(userAgent)
	_, browserVersion := ua.Browser()
	engine, engineVersion := ua.Engine()

	details := map[string]any{
		"mobile": ua.Mobile(),
		"bot":    ua.Bot(),
	}
	if browserVersion != "" {
		details["browserVersion"] = browserVersion
	}
	if engine != "" {
		details["engine"] = engine
		details["engineVersion"] = engineVersion
	}
	if info := ua.OSInfo(); info.Version != "" {
		details["osVersion"] = info.Version
	}
	return details
}

// TruncateUserAgent bounds the raw header to the stored column size.
func TruncateUserAgent(userAgent string) string {
	return truncate(strings.TrimSpace(userAgent), domain.MaxUserAgentLength)
}

func normalize(part string) string {
	part = strings.TrimSpace(part)
	if part == "" {
		return domain.UnknownDevicePart
	}
	return truncate(part, domain.MaxDeviceFieldLength)
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	s = s[:max]
	for !utf8.ValidString(s) {
		s = s[:len(s)-1]
	}
	return s
}
