// Package token issues and verifies the signed, short-lived tokens that
// carry auth state between requests: pending-verification sessions,
// password-reset links and login sessions. Tokens are tamper-evident and
// self-expiring; they are never single-use by themselves, the database
// rows provide that where it matters.
package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Purpose tags. A token is only accepted by an endpoint expecting its
// exact purpose; a valid signature with the wrong purpose is rejected.
const (
	PurposeVerifySession = "verify-session"
	PurposePasswordReset = "password_reset"
	PurposeSession       = "session"
)

var (
	ErrInvalidToken = errors.New("token: invalid token")
	ErrTokenExpired = errors.New("token: token expired")
	ErrWrongPurpose = errors.New("token: unexpected purpose")
)

// Claims is the payload embedded in every signed token. Login sessions
// additionally carry the user's profile and a LastRefresh marker for the
// sliding-session behavior.
type Claims struct {
	UserID        string `json:"uid"`
	Email         string `json:"email,omitempty"`
	Name          string `json:"name,omitempty"`
	Purpose       string `json:"purpose"`
	EmailVerified bool   `json:"email_verified,omitempty"`
	LastRefresh   int64  `json:"last_refresh,omitempty"`
	jwt.RegisteredClaims
}

// Signer signs and verifies tokens with a shared symmetric secret. The
// secret is provisioned at process start and passed in explicitly; there
// is no ambient fallback.
type Signer struct {
	secret []byte
}

func NewSigner(secret string) *Signer {
	return &Signer{secret: []byte(secret)}
}

// Issue signs claims with a fresh issued-at and the given ttl.
func (s *Signer) Issue(claims Claims, ttl time.Duration) (string, error) {
	now := time.Now()
	claims.IssuedAt = jwt.NewNumericDate(now)
	claims.ExpiresAt = jwt.NewNumericDate(now.Add(ttl))
	return s.sign(claims)
}

// Refresh re-signs a session with an updated last-activity marker. The
// absolute expiry is deliberately left untouched: sliding behavior is
// bounded by the original ttl.
func (s *Signer) Refresh(claims Claims) (string, error) {
	claims.LastRefresh = time.Now().Unix()
	return s.sign(claims)
}

func (s *Signer) sign(claims Claims) (string, error) {
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return tok.SignedString(s.secret)
}

// Verify checks signature, expiry and purpose. Expiry is checked
// explicitly on top of the library validation: a token without an exp
// claim is never accepted.
func (s *Signer) Verify(tokenString, expectedPurpose string) (*Claims, error) {
	claims := &Claims{}
	tok, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrInvalidToken
	}
	if !tok.Valid || claims.UserID == "" {
		return nil, ErrInvalidToken
	}
	if claims.ExpiresAt == nil {
		return nil, ErrInvalidToken
	}
	if time.Now().After(claims.ExpiresAt.Time) {
		return nil, ErrTokenExpired
	}
	if claims.Purpose != expectedPurpose {
		return nil, ErrWrongPurpose
	}
	return claims, nil
}
