package messages

import (
	"errors"
	"net/http"
	"time"

	deliveryUseCase "pet-emergency-api/src/application/usecases/delivery"
	statusUseCase "pet-emergency-api/src/application/usecases/status"
	"pet-emergency-api/src/domain/common"
	domainEmergency "pet-emergency-api/src/domain/emergency"
	logger "pet-emergency-api/src/infrastructure/logger"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

type IMessagesController interface {
	List(c *gin.Context)
	Stats(c *gin.Context)
	Retry(c *gin.Context)
	ProviderCallback(c *gin.Context)
}

type MessagesController struct {
	commonService   common.CommonService
	statusUseCase   statusUseCase.IStatusUseCase
	deliveryUseCase deliveryUseCase.IDeliveryUseCase
	Logger          *logger.Logger
}

func NewMessagesController(
	commonService common.CommonService,
	statusUC statusUseCase.IStatusUseCase,
	deliveryUC deliveryUseCase.IDeliveryUseCase,
	loggerInstance *logger.Logger,
) IMessagesController {
	return &MessagesController{
		commonService:   commonService,
		statusUseCase:   statusUC,
		deliveryUseCase: deliveryUC,
		Logger:          loggerInstance,
	}
}

// List returns broadcast messages for the operator dashboard
func (ctrl *MessagesController) List(ctx *gin.Context) {
	var request ListMessagesRequest
	if err := ctx.ShouldBindQuery(&request); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters"})
		return
	}

	msgs, err := ctrl.statusUseCase.ListMessages(request.RequestID, request.Status)
	if err != nil {
		ctrl.Logger.Error("Error listing broadcast messages", zap.Error(err))
		_ = ctx.Error(err)
		return
	}

	out := make([]MessageResponse, len(*msgs))
	for i := range *msgs {
		out[i] = toMessageResponse(&(*msgs)[i])
	}
	ctx.JSON(http.StatusOK, gin.H{"messages": out})
}

// Stats returns per-channel delivery statistics
func (ctrl *MessagesController) Stats(ctx *gin.Context) {
	var request StatsRequest
	if err := ctx.ShouldBindQuery(&request); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters"})
		return
	}

	stats, err := ctrl.statusUseCase.ChannelStats(request.RequestID)
	if err != nil {
		ctrl.Logger.Error("Error aggregating channel stats", zap.Error(err))
		_ = ctx.Error(err)
		return
	}

	out := make([]ChannelStatsResponse, len(*stats))
	for i, s := range *stats {
		out[i] = ChannelStatsResponse{
			Channel:   string(s.Channel),
			Total:     s.Counts.Total,
			Queued:    s.Counts.Queued,
			Sent:      s.Counts.Sent,
			Delivered: s.Counts.Delivered,
			Read:      s.Counts.Read,
			Failed:    s.Counts.Failed,
		}
	}
	ctx.JSON(http.StatusOK, gin.H{"stats": out})
}

// Retry re-queues a failed message at the operator's request
func (ctrl *MessagesController) Retry(ctx *gin.Context) {
	var request RetryRequest
	if err := ctx.ShouldBindUri(&request); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid message ID"})
		return
	}

	updated, err := ctrl.deliveryUseCase.RetryMessage(request.ID)
	if err != nil {
		ctrl.Logger.Error("Error retrying broadcast message", zap.Error(err), zap.Int("messageID", request.ID))
		_ = ctx.Error(err)
		return
	}

	response := toMessageResponse(updated)
	ctx.JSON(http.StatusOK, response)
}

// ProviderCallback ingests delivery lifecycle webhooks from channel providers
func (ctrl *MessagesController) ProviderCallback(ctx *gin.Context) {
	channel := domainEmergency.Channel(ctx.Param("channel"))
	if !channel.IsValid() {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Unknown channel"})
		return
	}

	var request CallbackRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		ctrl.Logger.Error("Couldn't process provider callback - invalid payload", zap.Error(err))
		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			ctrl.commonService.AppendValidationErrors(ctx, ve, request)
			return
		}
		ctx.AbortWithError(http.StatusBadRequest, err)
		return
	}

	err := ctrl.deliveryUseCase.HandleProviderEvent(channel, request.Reference, request.Event, request.ErrorMessage)
	if err != nil {
		ctrl.Logger.Error("Error applying provider callback",
			zap.Error(err),
			zap.String("reference", request.Reference),
			zap.String("event", request.Event))
		_ = ctx.Error(err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"success": true})
}

func toMessageResponse(m *domainEmergency.BroadcastMessage) MessageResponse {
	response := MessageResponse{
		ID:                 m.ID,
		Reference:          m.Reference,
		EmergencyRequestID: m.EmergencyRequestID,
		HospitalID:         m.HospitalID,
		Channel:            string(m.Channel),
		Recipient:          m.Recipient,
		Status:             string(m.Status),
		RetryCount:         m.RetryCount,
		ErrorMessage:       m.ErrorMessage,
		CreatedAt:          m.CreatedAt.Format(time.RFC3339),
	}
	if m.SentAt != nil {
		response.SentAt = m.SentAt.Format(time.RFC3339)
	}
	if m.DeliveredAt != nil {
		response.DeliveredAt = m.DeliveredAt.Format(time.RFC3339)
	}
	if m.ReadAt != nil {
		response.ReadAt = m.ReadAt.Format(time.RFC3339)
	}
	if m.FailedAt != nil {
		response.FailedAt = m.FailedAt.Format(time.RFC3339)
	}
	return response
}
