package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Identity is what the gateway resolves from a bearer token:
// the tenant every query is scoped by, plus the caller's role.
type Identity struct {
	UserID   uint64
	TenantID string
	Role     string
}

type JWT struct {
	secret []byte
}

func NewJWT(secret string) *JWT {
	return &JWT{secret: []byte(secret)}
}

func (j *JWT) Sign(u User) (string, error) {
	claims := jwt.MapClaims{
		"sub":    u.ID,
		"tenant": u.TenantID,
		"role":   u.Role,
		"iat":    time.Now().Unix(),
		"exp":    time.Now().Add(7 * 24 * time.Hour).Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(j.secret)
}

func (j *JWT) Verify(tokenStr string) (Identity, error) {
	t, err := jwt.Parse(tokenStr, func(token *jwt.Token) (any, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return j.secret, nil
	})
	if err != nil || !t.Valid {
		return Identity{}, errors.New("invalid token")
	}

	claims, ok := t.Claims.(jwt.MapClaims)
	if !ok {
		return Identity{}, errors.New("invalid claims")
	}

	// jwt MapClaims numbers are float64
	idf, ok := claims["sub"].(float64)
	if !ok {
		return Identity{}, errors.New("invalid sub")
	}
	tenant, ok := claims["tenant"].(string)
	if !ok || tenant == "" {
		return Identity{}, errors.New("missing tenant")
	}
	role, _ := claims["role"].(string)

	return Identity{UserID: uint64(idf), TenantID: tenant, Role: role}, nil
}
