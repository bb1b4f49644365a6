package accounts

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"

	"github.com/oklog/ulid/v2"
)

const suffixCharset = "abcdefghijklmnopqrstuvwxyz0123456789"

// GenerateReferralCode derives a referral code from the username plus a
// random 4-character suffix, e.g. "ref_alice_x7k2".
func GenerateReferralCode(username string) (string, error) {
	suffix, err := randomSuffix(4)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("ref_%s_%s", username, suffix), nil
}

// NewVoucherCode returns a unique voucher code. ULIDs are monotonic
// enough to never collide and stay human-readable on a receipt.
func NewVoucherCode() string {
	return "VCR-" + ulid.Make().String()
}

// NewResetToken generates a 32-byte random token encoded as URL-safe
// base64. The raw token goes into the reset link; only its hash is
// stored.
func NewResetToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate random bytes: %w", err)
	}
	return base64.URLEncoding.EncodeToString(b), nil
}

// HashResetToken hashes a reset token with SHA-256 for storage.
func HashResetToken(token string) string {
	hash := sha256.Sum256([]byte(token))
	return base64.URLEncoding.EncodeToString(hash[:])
}

func randomSuffix(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate random bytes: %w", err)
	}
	for i := range b {
		b[i] = suffixCharset[int(b[i])%len(suffixCharset)]
	}
	return string(b), nil
}
