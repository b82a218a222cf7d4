package auth

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type Claims struct {
	AdminID int64 `json:"adminId"`
	jwt.RegisteredClaims
}

const bearerPrefix = "Bearer "

var errEmptySigningKey = errors.New("auth: token signing key is empty")

// ParseBearer extracts the token from an Authorization header value of the
// form "Bearer <token>".
func ParseBearer(header string) (string, error) {
	if !strings.HasPrefix(header, bearerPrefix) {
		return "", ErrMissingToken
	}
	token := strings.TrimSpace(strings.TrimPrefix(header, bearerPrefix))
	if token == "" {
		return "", ErrMissingToken
	}
	return token, nil
}

type tokenManager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func (m *tokenManager) issue(adminID int64) (string, time.Time, error) {
	if len(m.secret) == 0 {
		return "", time.Time{}, errEmptySigningKey
	}
	issuedAt := m.now()
	expiresAt := issuedAt.Add(m.ttl)
	claims := Claims{
		AdminID: adminID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

// verify returns the admin id carried by a valid, unexpired token.
func (m *tokenManager) verify(token string) (int64, error) {
	if len(m.secret) == 0 {
		return 0, errors.Join(ErrInvalidToken, errEmptySigningKey)
	}
	var claims Claims
	parsed, err := jwt.ParseWithClaims(
		token,
		&claims,
		func(*jwt.Token) (any, error) { return m.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		return 0, errors.Join(ErrInvalidToken, err)
	}
	if !parsed.Valid || claims.AdminID < 1 {
		return 0, ErrInvalidToken
	}
	return claims.AdminID, nil
}
