package token

import (
	"errors"
	"log"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken is the uniform rejection for every verification failure.
// Callers must not be able to distinguish an expired token from a forged one.
var ErrInvalidToken = errors.New("invalid or expired token")

// ResetService issues and verifies self-contained password reset tokens.
// Validity is entirely a function of signature and expiry; there is no
// server-side revocation list.
type ResetService struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

type resetClaims struct {
	jwt.RegisteredClaims
}

func NewResetService(secret []byte, ttl time.Duration) *ResetService {
	return &ResetService{
		secret: secret,
		ttl:    ttl,
		now:    time.Now,
	}
}

// Issue produces a signed token binding the username as subject with expiry
// now + TTL.
func (s *ResetService) Issue(username string) (string, error) {
	now := s.now()
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, resetClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	})
	return t.SignedString(s.secret)
}

// Verify returns the bound username when signature and expiry both hold.
// Only HS256 is accepted; a token carrying any other algorithm is treated as
// tampering and rejected. All failures collapse to ErrInvalidToken.
func (s *ResetService) Verify(tokenString string) (string, error) {
	claims := &resetClaims{}
	parsed, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenSignatureInvalid) {
			log.Printf("[TOKEN] Rejected token with invalid signature or algorithm: %v", err)
		}
		return "", ErrInvalidToken
	}
	if !parsed.Valid || claims.Subject == "" {
		return "", ErrInvalidToken
	}
	return claims.Subject, nil
}
