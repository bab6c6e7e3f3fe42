package protocol

import "time"

// Default TTLs by message type. Telemetry goes stale quickly; control
// messages are kept long enough for a restarting dashboard to catch up.
var defaultTTLs = map[string]time.Duration{
	TypeRobotTelemetry: 5 * time.Minute,
	TypePickerActivity: 5 * time.Minute,
	TypeCartMovement:   5 * time.Minute,
	TypeOrderEvents:    10 * time.Minute,

	TypeShiftPopulated: 30 * time.Minute,
	TypeShiftCleared:   30 * time.Minute,
}

// FallbackTTL is used when no specific TTL is configured.
const FallbackTTL = 10 * time.Minute

// DefaultTTLFor returns the default TTL for a message type.
func DefaultTTLFor(msgType string) time.Duration {
	if ttl, ok := defaultTTLs[msgType]; ok {
		return ttl
	}
	return FallbackTTL
}

// IsExpired returns true if the envelope has passed its expiry time.
func IsExpired(env *Envelope) bool {
	return expired(env.ExpiresAt, time.Now().UTC())
}

// IsExpiredHeader checks expiry using only the raw header.
func IsExpiredHeader(hdr *RawHeader) bool {
	return expired(hdr.ExpiresAt, time.Now().UTC())
}

func expired(exp, now time.Time) bool {
	return !exp.IsZero() && now.After(exp)
}
