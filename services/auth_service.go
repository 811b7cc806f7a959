package services

import (
	"time"

	"github.com/cockroachdb/errors"
	"github.com/golang-jwt/jwt/v5"

	"github.com/JorjanDorjan/ML-for-agile-methodology/config"
)

const tokenIssuer = "agilerisk"

var ErrInvalidToken = errors.New("invalid token")

// AuthService mints and verifies the bearer tokens accepted by the API.
// Identity is managed elsewhere; tokens only carry a subject and a role.
type AuthService struct {
	jwtSecret []byte
	expiryH   int
}

func NewAuthService(cfg config.JWTConfig) *AuthService {
	return &AuthService{
		jwtSecret: []byte(cfg.Secret),
		expiryH:   cfg.ExpiryHours,
	}
}

// Enabled reports whether a signing secret is configured.
func (s *AuthService) Enabled() bool {
	return len(s.jwtSecret) > 0
}

type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

func (s *AuthService) GenerateToken(subject, role string) (string, error) {
	if !s.Enabled() {
		return "", errors.New("JWT_SECRET is not configured")
	}
	now := time.Now()
	claims := Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			Issuer:    tokenIssuer,
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Duration(s.expiryH) * time.Hour)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.jwtSecret)
}

func (s *AuthService) ValidateToken(tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{},
		func(t *jwt.Token) (any, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, errors.New("unexpected signing method")
			}
			return s.jwtSecret, nil
		},
		jwt.WithIssuer(tokenIssuer),
	)
	if err != nil {
		return nil, errors.Mark(err, ErrInvalidToken)
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
