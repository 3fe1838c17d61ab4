package account

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// resetClaims is the payload of a password-reset token. The token is the
// only secret in the reset flow, so it is short-lived and bound to one
// username.
type resetClaims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

const resetIssuer = "visitor-monitoring"

func signResetToken(username, key string, ttl time.Duration) (string, time.Time, error) {
	exp := time.Now().Add(ttl)
	claims := resetClaims{
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    resetIssuer,
			Subject:   username,
			ExpiresAt: jwt.NewNumericDate(exp),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(key))
	if err != nil {
		return "", time.Time{}, err
	}
	return token, exp, nil
}

func parseResetToken(tokenStr, key string) (string, error) {
	parsed, err := jwt.ParseWithClaims(tokenStr, &resetClaims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, ErrInvalidResetToken
		}
		return []byte(key), nil
	})
	if err != nil {
		return "", ErrInvalidResetToken
	}
	claims, ok := parsed.Claims.(*resetClaims)
	if !ok || !parsed.Valid || claims.Issuer != resetIssuer || claims.Username == "" {
		return "", ErrInvalidResetToken
	}
	return claims.Username, nil
}
