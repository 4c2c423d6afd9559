package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/Skotchmaster/cinema_reservation/internal/models"
)

var (
	ErrTokenMalformed = errors.New("invalid token")
	ErrTokenExpired   = errors.New("token expired")
)

// Codec signs and verifies both token purposes with one process-wide
// secret. Refresh tokens are tagged so the two are never interchangeable.
type Codec struct {
	Secret     []byte
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

func (c *Codec) EncodeAccess(userUUID string, role models.Role) (string, error) {
	claims := jwt.MapClaims{
		"uuid": userUUID,
		"role": string(role),
		"exp":  time.Now().Add(c.AccessTTL).Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(c.Secret)
}

// EncodeRefresh takes an explicit ttl: rotation re-issues the token with
// the remaining window of the one it replaces, login with the full window.
func (c *Codec) EncodeRefresh(userUUID string, role models.Role, ttl time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"sub":    "refresh_token",
		"verify": userUUID,
		"role":   string(role),
		"exp":    time.Now().Add(ttl).Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(c.Secret)
}

func (c *Codec) Decode(rawToken string) (jwt.MapClaims, error) {
	return c.parse(rawToken)
}

// DecodeExpired verifies the signature but not the expiry. Only for
// reading claims off a stale token, never for authorization.
func (c *Codec) DecodeExpired(rawToken string) (jwt.MapClaims, error) {
	return c.parse(rawToken, jwt.WithoutClaimsValidation())
}

// ExpiresAt returns the absolute expiry of a still-valid token.
func (c *Codec) ExpiresAt(rawToken string) (time.Time, error) {
	claims, err := c.Decode(rawToken)
	if err != nil {
		return time.Time{}, err
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, ErrTokenMalformed
	}
	return exp.Time, nil
}

func (c *Codec) parse(rawToken string, opts ...jwt.ParserOption) (jwt.MapClaims, error) {
	t, err := jwt.Parse(rawToken, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signature method: %v", t.Header["alg"])
		}
		return c.Secret, nil
	}, opts...)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenMalformed
	}

	claims, ok := t.Claims.(jwt.MapClaims)
	if !ok || !t.Valid {
		return nil, ErrTokenMalformed
	}

	return claims, nil
}
