package domain

import "time"

// Challenge is a pending numeric one-time code for a staff login,
// persisted so issuance and verification survive a process restart.
// Keyed by (email, role); single-use; lazily ignored after expiry.
type Challenge struct {
	Email     string
	Role      Role
	Code      string // exactly six decimal digits
	ExpiresAt time.Time
	CreatedAt time.Time
}

// Expired reports whether the challenge is past its expiry instant.
func (c Challenge) Expired(now time.Time) bool {
	return now.After(c.ExpiresAt)
}

// ChallengeResult is returned by the challenge issuer. Either TwoFA is
// set (TOTP enabled, no code issued) or a code was generated and
// dispatched.
type ChallengeResult struct {
	TwoFA     bool
	Code      string // populated only for echoing in non-production environments
	ExpiresAt time.Time
}

// TOTPEnrollment is returned by enrollment setup. The secret lives in
// the pending slot until confirmed.
type TOTPEnrollment struct {
	Secret     string // base32 encoded
	OTPAuthURL string // otpauth:// URI for authenticator apps
	QR         string // data:image/png;base64 QR of the URI
}
