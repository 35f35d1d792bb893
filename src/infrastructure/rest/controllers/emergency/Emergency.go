package emergency

import (
	"errors"
	"net/http"
	"time"

	emergencyUseCase "pet-emergency-api/src/application/usecases/emergency"
	statusUseCase "pet-emergency-api/src/application/usecases/status"
	"pet-emergency-api/src/domain/common"
	logger "pet-emergency-api/src/infrastructure/logger"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

type IEmergencyController interface {
	Create(c *gin.Context)
	GetStatus(c *gin.Context)
}

type EmergencyController struct {
	commonService    common.CommonService
	emergencyUseCase emergencyUseCase.IEmergencyUseCase
	statusUseCase    statusUseCase.IStatusUseCase
	Logger           *logger.Logger
}

func NewEmergencyController(
	commonService common.CommonService,
	emergencyUC emergencyUseCase.IEmergencyUseCase,
	statusUC statusUseCase.IStatusUseCase,
	loggerInstance *logger.Logger,
) IEmergencyController {
	return &EmergencyController{
		commonService:    commonService,
		emergencyUseCase: emergencyUC,
		statusUseCase:    statusUC,
		Logger:           loggerInstance,
	}
}

// Create accepts an emergency submission, persists it and triggers the
// broadcast fan-out. Validation failures are rejected here, before anything
// could reach a queue.
func (ctrl *EmergencyController) Create(ctx *gin.Context) {
	var request CreateEmergencyRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		ctrl.Logger.Error("Couldn't process emergency submission - invalid request", zap.Error(err))
		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			ctrl.commonService.AppendValidationErrors(ctx, ve, request)
			return
		}
		ctx.AbortWithError(http.StatusBadRequest, err)
		return
	}

	response, err := ctrl.emergencyUseCase.CreateEmergencyRequest(&emergencyUseCase.CreateRequest{
		PetName:             request.PetName,
		Species:             request.Species,
		Symptom:             request.Symptom,
		OwnerName:           request.OwnerName,
		OwnerContact:        request.OwnerContact,
		ShareMedicalRecords: request.ShareMedicalRecords,
	})
	if err != nil {
		ctrl.Logger.Error("Error creating emergency request", zap.Error(err))
		_ = ctx.Error(err)
		return
	}

	ctrl.Logger.Info("Emergency request created",
		zap.Int("emergencyRequestID", response.Request.ID),
		zap.Int("messagesDispatched", response.Dispatch.Created))

	ctx.JSON(http.StatusCreated, CreateEmergencyResponse{
		ID:                 response.Request.ID,
		PetName:            response.Request.PetName,
		Symptom:            response.Request.Symptom,
		CreatedAt:          response.Request.CreatedAt.Format(time.RFC3339),
		MessagesDispatched: response.Dispatch.Created,
	})
}

// GetStatus returns the aggregated per-status counts for one request
func (ctrl *EmergencyController) GetStatus(ctx *gin.Context) {
	var request StatusRequest
	if err := ctx.ShouldBindUri(&request); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request ID"})
		return
	}

	counts, err := ctrl.statusUseCase.RequestStatus(request.ID)
	if err != nil {
		ctrl.Logger.Error("Error aggregating request status", zap.Error(err), zap.Int("emergencyRequestID", request.ID))
		_ = ctx.Error(err)
		return
	}

	ctx.JSON(http.StatusOK, StatusResponse{
		EmergencyRequestID: request.ID,
		Total:              counts.Total,
		Queued:             counts.Queued,
		Sent:               counts.Sent,
		Delivered:          counts.Delivered,
		Read:               counts.Read,
		Failed:             counts.Failed,
	})
}
