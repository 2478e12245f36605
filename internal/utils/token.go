package utils

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/example/tribuna/internal/apperr"
)

// TokenClaims is the payload carried by every issued token. KeyVersion is
// checked against the user row on each authenticated request; OrigIat keeps
// the first issuance time across refreshes so the refresh window is absolute.
type TokenClaims struct {
	UserID     string `json:"user_id"`
	KeyVersion int    `json:"key_version"`
	OrigIat    int64  `json:"orig_iat"`
	jwt.RegisteredClaims
}

// User returns the embedded user ID.
func (c *TokenClaims) User() (uuid.UUID, error) {
	return uuid.Parse(c.UserID)
}

// GenerateToken creates a signed JWT for the user with the given key version
// and original-issuance timestamp.
func GenerateToken(secret string, userID uuid.UUID, keyVersion int, origIat time.Time, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &TokenClaims{
		UserID:     userID.String(),
		KeyVersion: keyVersion,
		OrigIat:    origIat.Unix(),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// ParseToken validates the token signature and expiry and returns its claims.
func ParseToken(secret, tokenString string) (*TokenClaims, error) {
	return parse(secret, tokenString, false)
}

// ParseTokenForRefresh validates the signature but tolerates an expired
// token; refresh has its own absolute window check.
func ParseTokenForRefresh(secret, tokenString string) (*TokenClaims, error) {
	return parse(secret, tokenString, true)
}

func parse(secret, tokenString string, allowExpired bool) (*TokenClaims, error) {
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{"HS256"})}
	if allowExpired {
		opts = append(opts, jwt.WithoutClaimsValidation())
	}

	token, err := jwt.ParseWithClaims(tokenString, &TokenClaims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	}, opts...)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, apperr.TokenExpired()
		}
		return nil, apperr.TokenInvalid("invalid token")
	}

	claims, ok := token.Claims.(*TokenClaims)
	if !ok || !token.Valid {
		return nil, apperr.TokenInvalid("invalid token claims")
	}
	return claims, nil
}
