package cryptox

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/binary"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// OTPDigits is the length of a numeric one-time code.
const OTPDigits = 6

// BackupCodeLength is the length of a single-use backup code.
const BackupCodeLength = 8

// GenerateOTP returns a uniformly random numeric code in 100000-999999.
// The range deliberately excludes leading zeroes so the transmitted
// string is always exactly six digits.
func GenerateOTP() (string, error) {
	const span = 900000 // 100000..999999 inclusive

	// Rejection sampling to keep the distribution uniform.
	for {
		var buf [4]byte
		if _, err := rand.Read(buf[:]); err != nil {
			return "", fmt.Errorf("failed to generate otp: %w", err)
		}
		n := binary.BigEndian.Uint32(buf[:])
		if n >= (1<<32)-((1<<32)%span) {
			continue
		}
		return fmt.Sprintf("%06d", 100000+n%span), nil
	}
}

// GenerateBackupCode returns a short single-use recovery code derived
// from a random UUID (lowercase hex, no separators).
func GenerateBackupCode() string {
	raw := strings.ReplaceAll(uuid.NewString(), "-", "")
	return raw[:BackupCodeLength]
}

// FingerprintCode returns a deterministic SHA-256 fingerprint of a code
// for storage and lookup. Codes are normalized to lowercase first so
// comparisons are case-insensitive.
func FingerprintCode(code string) string {
	sum := sha256.Sum256([]byte(strings.ToLower(strings.TrimSpace(code))))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}
