package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"divebooks/internal/core"
)

var ErrInvalidToken = errors.New("invalid token")

// Claims carries the signed-in user's identity alongside the registered
// claim set.
type Claims struct {
	jwt.RegisteredClaims
	UserID   int64     `json:"uid"`
	Username string    `json:"username"`
	Role     core.Role `json:"role"`
}

// IssueToken mints an HS256 session token for the given user.
func IssueToken(u core.User, secret []byte, validity time.Duration) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(validity)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Subject:   u.Username,
		},
		UserID:   u.ID,
		Username: u.Username,
		Role:     u.Role,
	})
	return token.SignedString(secret)
}

// ParseToken validates a token string and returns its claims.
func ParseToken(tokenString string, secret []byte) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return secret, nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
