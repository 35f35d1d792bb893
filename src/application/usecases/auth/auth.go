package auth

import (
	"errors"
	"time"

	domainErrors "pet-emergency-api/src/domain/errors"
	logger "pet-emergency-api/src/infrastructure/logger"
	"pet-emergency-api/src/infrastructure/security"
	"pet-emergency-api/src/infrastructure/utils"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// AuthTokens carries an issued operator access token
type AuthTokens struct {
	AccessToken              string
	ExpirationAccessDateTime time.Time
}

// IAuthUseCase authenticates operators for the message control surface.
// Owner-facing authentication lives in a separate identity service.
type IAuthUseCase interface {
	Login(email, password string) (*AuthTokens, error)
}

type AuthUseCase struct {
	JWTService security.IJWTService
	Logger     *logger.Logger
}

func NewAuthUseCase(jwtService security.IJWTService, loggerInstance *logger.Logger) IAuthUseCase {
	return &AuthUseCase{
		JWTService: jwtService,
		Logger:     loggerInstance,
	}
}

// Login verifies the operator credentials configured in the environment
// (OPERATOR_EMAIL, bcrypt OPERATOR_PASSWORD_HASH) and issues an access token.
func (s *AuthUseCase) Login(email, password string) (*AuthTokens, error) {
	s.Logger.Info("Operator login attempt", zap.String("email", email))

	operatorEmail := utils.GetEnv("OPERATOR_EMAIL", "")
	operatorHash := utils.GetEnv("OPERATOR_PASSWORD_HASH", "")
	if operatorEmail == "" || operatorHash == "" {
		s.Logger.Error("Operator credentials not configured")
		return nil, domainErrors.NewAppError(errors.New("operator login not configured"), domainErrors.NotAuthenticated)
	}

	if email != operatorEmail || bcrypt.CompareHashAndPassword([]byte(operatorHash), []byte(password)) != nil {
		s.Logger.Warn("Operator login failed", zap.String("email", email))
		return nil, domainErrors.NewAppError(errors.New("email or password does not match"), domainErrors.NotAuthenticated)
	}

	token, expiresAt, err := s.JWTService.GenerateAccessToken(email)
	if err != nil {
		s.Logger.Error("Error generating access token", zap.Error(err))
		return nil, domainErrors.NewAppErrorWithType(domainErrors.UnknownError)
	}

	return &AuthTokens{
		AccessToken:              token,
		ExpirationAccessDateTime: expiresAt,
	}, nil
}
