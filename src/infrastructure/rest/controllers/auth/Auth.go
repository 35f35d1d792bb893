package auth

import (
	"errors"
	"net/http"
	"time"

	authUseCase "pet-emergency-api/src/application/usecases/auth"
	"pet-emergency-api/src/domain/common"
	logger "pet-emergency-api/src/infrastructure/logger"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

type IAuthController interface {
	Login(c *gin.Context)
}

type AuthController struct {
	commonService common.CommonService
	authUseCase   authUseCase.IAuthUseCase
	Logger        *logger.Logger
}

func NewAuthController(
	commonService common.CommonService,
	authUC authUseCase.IAuthUseCase,
	loggerInstance *logger.Logger,
) IAuthController {
	return &AuthController{
		commonService: commonService,
		authUseCase:   authUC,
		Logger:        loggerInstance,
	}
}

// Login authenticates an operator and returns an access token
func (ctrl *AuthController) Login(ctx *gin.Context) {
	var request LoginRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		ctrl.Logger.Error("Couldn't process login - invalid request", zap.Error(err))
		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			ctrl.commonService.AppendValidationErrors(ctx, ve, request)
			return
		}
		ctx.AbortWithError(http.StatusBadRequest, err)
		return
	}

	tokens, err := ctrl.authUseCase.Login(request.Email, request.Password)
	if err != nil {
		_ = ctx.Error(err)
		return
	}

	ctx.JSON(http.StatusOK, LoginResponse{
		AccessToken: tokens.AccessToken,
		ExpiresAt:   tokens.ExpirationAccessDateTime.Format(time.RFC3339),
	})
}
