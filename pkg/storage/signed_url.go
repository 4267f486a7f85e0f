package storage

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// SignedURLSigner mints and verifies download tokens. A token is four
// dot-separated fields (job id, unix expiry, base64 path, hex HMAC) so it
// can travel as a single URL path segment.
type SignedURLSigner struct {
	secret []byte
	ttl    time.Duration
}

// NewSignedURLSigner constructs a signer. ttl bounds token lifetime and
// falls back to 24h when unset.
func NewSignedURLSigner(secret string, ttl time.Duration) *SignedURLSigner {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &SignedURLSigner{secret: []byte(secret), ttl: ttl}
}

func (s *SignedURLSigner) sign(jobID, expiry, encodedPath string) string {
	mac := hmac.New(sha256.New, s.secret)
	mac.Write([]byte(jobID + "|" + expiry + "|" + encodedPath)) //nolint:errcheck
	return hex.EncodeToString(mac.Sum(nil))
}

// Generate returns a token for the given job and artifact path, together
// with the moment it stops being valid.
func (s *SignedURLSigner) Generate(jobID, relPath string) (string, time.Time, error) {
	if jobID == "" || relPath == "" {
		return "", time.Time{}, fmt.Errorf("jobID and relPath required")
	}
	if len(s.secret) == 0 {
		return "", time.Time{}, fmt.Errorf("signing secret missing")
	}

	expiresAt := time.Now().Add(s.ttl)
	expiry := strconv.FormatInt(expiresAt.Unix(), 10)
	encodedPath := base64.RawURLEncoding.EncodeToString([]byte(relPath))

	token := strings.Join([]string{jobID, expiry, encodedPath, s.sign(jobID, expiry, encodedPath)}, ".")
	return token, expiresAt, nil
}

// Parse verifies a token and returns its embedded job id, artifact path
// and expiry. allowExpired skips the expiry check; cleanup routines use
// it to resolve paths of already-expired artifacts.
func (s *SignedURLSigner) Parse(token string, allowExpired bool) (jobID, relPath string, expiresAt time.Time, err error) {
	parts := strings.Split(token, ".")
	if len(parts) != 4 {
		return "", "", time.Time{}, fmt.Errorf("invalid token format")
	}
	jobID, expiry, encodedPath, signature := parts[0], parts[1], parts[2], parts[3]

	if !hmac.Equal([]byte(s.sign(jobID, expiry, encodedPath)), []byte(signature)) {
		return "", "", time.Time{}, fmt.Errorf("invalid token signature")
	}

	expUnix, err := strconv.ParseInt(expiry, 10, 64)
	if err != nil {
		return "", "", time.Time{}, fmt.Errorf("invalid timestamp")
	}
	expiresAt = time.Unix(expUnix, 0)
	if !allowExpired && time.Now().After(expiresAt) {
		return "", "", time.Time{}, fmt.Errorf("token expired")
	}

	rawPath, err := base64.RawURLEncoding.DecodeString(encodedPath)
	if err != nil {
		return "", "", time.Time{}, fmt.Errorf("decode path: %w", err)
	}
	return jobID, string(rawPath), expiresAt, nil
}
