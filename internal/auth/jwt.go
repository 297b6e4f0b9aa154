package auth

import (
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrTokenExpired means the token was well formed but its expiry has passed.
	ErrTokenExpired = errors.New("session token expired")
	// ErrTokenInvalid covers bad signatures, malformed tokens, and issuer mismatches.
	ErrTokenInvalid = errors.New("session token invalid")
)

// Claims represents the session token payload: subject account id plus the
// registered expiry. Verification is a pure function of token and secret, so
// issued tokens stay valid until expiry regardless of later account changes.
type Claims struct {
	jwt.RegisteredClaims
}

// Codec signs and verifies session tokens with a process-wide HS256 secret.
type Codec struct {
	key    []byte
	issuer string
}

// NewCodec creates a codec for the given signing key and issuer.
func NewCodec(key, issuer string) *Codec {
	return &Codec{key: []byte(key), issuer: issuer}
}

// Issue signs a token for subject valid for ttl and returns it with its expiry.
func (c *Codec) Issue(subject int64, ttl time.Duration) (string, time.Time, error) {
	exp := time.Now().Add(ttl)
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    c.issuer,
			Subject:   strconv.FormatInt(subject, 10),
			ExpiresAt: jwt.NewNumericDate(exp),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.key)
	if err != nil {
		return "", time.Time{}, err
	}
	return token, exp, nil
}

// Verify checks signature and expiry and returns the subject account id.
func (c *Codec) Verify(tokenStr string) (int64, error) {
	parsed, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return c.key, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return 0, ErrTokenExpired
		}
		return 0, ErrTokenInvalid
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return 0, ErrTokenInvalid
	}
	if c.issuer != "" && claims.Issuer != c.issuer {
		return 0, ErrTokenInvalid
	}
	subject, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil {
		return 0, ErrTokenInvalid
	}
	return subject, nil
}
