package security

import (
	"errors"
	"time"

	"pet-emergency-api/src/infrastructure/utils"

	"github.com/golang-jwt/jwt/v4"
)

// IJWTService issues and validates operator access tokens
type IJWTService interface {
	GenerateAccessToken(subject string) (string, time.Time, error)
	ValidateToken(tokenString string) (jwt.MapClaims, error)
}

type jwtService struct {
	accessSecret []byte
	accessTTL    time.Duration
}

// NewJWTService creates a JWT service configured from the environment
func NewJWTService() IJWTService {
	return &jwtService{
		accessSecret: []byte(utils.GetEnv("JWT_ACCESS_SECRET_KEY", "")),
		accessTTL:    utils.GetEnvDuration("JWT_ACCESS_TTL", time.Hour),
	}
}

func (s *jwtService) GenerateAccessToken(subject string) (string, time.Time, error) {
	if len(s.accessSecret) == 0 {
		return "", time.Time{}, errors.New("JWT_ACCESS_SECRET_KEY not configured")
	}

	expiresAt := jwt.TimeFunc().Add(s.accessTTL)
	claims := jwt.MapClaims{
		"sub":  subject,
		"role": "operator",
		"type": "access",
		"exp":  expiresAt.Unix(),
		"iat":  jwt.TimeFunc().Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.accessSecret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

func (s *jwtService) ValidateToken(tokenString string) (jwt.MapClaims, error) {
	if len(s.accessSecret) == 0 {
		return nil, errors.New("JWT_ACCESS_SECRET_KEY not configured")
	}

	claims := jwt.MapClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.accessSecret, nil
	})
	if err != nil {
		return nil, err
	}

	if t, ok := claims["type"].(string); !ok || t != "access" {
		return nil, errors.New("token type mismatch")
	}
	return claims, nil
}
