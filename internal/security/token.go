package security

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// SessionClaims is the payload of a session token. Verification is purely
// signature plus expiry; no server-side state is consulted.
type SessionClaims struct {
	UserID string `json:"uid"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

func GenerateSessionToken(secret string, userID string, role string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := SessionClaims{
		UserID: userID,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			Subject:   userID,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS512, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("sign jwt: %w", err)
	}
	return signed, nil
}

// ParseSessionToken returns the claims of a valid token. Malformed, expired
// and mis-signed tokens all come back as an ordinary error.
func ParseSessionToken(tokenStr string, secret string) (*SessionClaims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &SessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}
	if claims, ok := token.Claims.(*SessionClaims); ok && token.Valid {
		return claims, nil
	}
	return nil, fmt.Errorf("invalid token")
}

// GenerateResetToken issues a password-reset credential: the plaintext goes
// out-of-band to the account holder, only the sha256 digest is stored.
func GenerateResetToken(ttl time.Duration) (plain string, hash []byte, expiresAt time.Time, err error) {
	buf := make([]byte, 20)
	if _, err := rand.Read(buf); err != nil {
		return "", nil, time.Time{}, fmt.Errorf("generate reset token: %w", err)
	}

	plain = hex.EncodeToString(buf)
	return plain, HashResetToken(plain), time.Now().Add(ttl), nil
}

func HashResetToken(plain string) []byte {
	sum := sha256.Sum256([]byte(plain))
	return sum[:]
}

// VerifyResetToken checks both the digest and the expiry. An expired token
// fails even when the digest matches.
func VerifyResetToken(plain string, storedHash []byte, expiresAt time.Time, now time.Time) bool {
	if len(storedHash) == 0 || now.After(expiresAt) {
		return false
	}
	computed := HashResetToken(plain)
	return subtle.ConstantTimeCompare(storedHash, computed) == 1
}
