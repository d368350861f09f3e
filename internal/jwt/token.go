package jwt

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt"
)

var ErrInvalidToken = errors.New("invalid token")

// Issuer signs and verifies the short lived tokens that admit a connection
// to one room code.
type Issuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewIssuer(secret string, ttl time.Duration) *Issuer {
	return &Issuer{secret: []byte(secret), ttl: ttl, now: time.Now}
}

func (i *Issuer) CreateToken(code string) (string, error) {
	if len(i.secret) == 0 {
		return "", fmt.Errorf("token secret is not configured")
	}
	now := i.now()
	claims := jwt.MapClaims{
		"code": code,
		"iat":  now.Unix(),
		"exp":  now.Add(i.ttl).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(i.secret)
}

// ParseToken returns the room code the token was issued for.
func (i *Issuer) ParseToken(tokenString string) (string, error) {
	if tokenString == "" {
		return "", fmt.Errorf("%w: token string is empty", ErrInvalidToken)
	}

	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method")
		}
		return i.secret, nil
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid {
		return "", ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", fmt.Errorf("%w: claims of unexpected type", ErrInvalidToken)
	}
	code, _ := claims["code"].(string)
	if code == "" {
		return "", fmt.Errorf("%w: missing code claim", ErrInvalidToken)
	}
	return code, nil
}
