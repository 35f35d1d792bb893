package messages

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"pet-emergency-api/src/domain/common"
	domainEmergency "pet-emergency-api/src/domain/emergency"
	domainErrors "pet-emergency-api/src/domain/errors"
	"pet-emergency-api/src/infrastructure/helper"
	logger "pet-emergency-api/src/infrastructure/logger"

	"github.com/gin-gonic/gin"
)

// MockStatusUseCase implements IStatusUseCase for testing
type MockStatusUseCase struct {
	requestStatusFunc func(int) (*domainEmergency.StatusCounts, error)
	channelStatsFunc  func(int) (*[]domainEmergency.ChannelStats, error)
	listMessagesFunc  func(int, string) (*[]domainEmergency.BroadcastMessage, error)
}

func (m *MockStatusUseCase) RequestStatus(id int) (*domainEmergency.StatusCounts, error) {
	if m.requestStatusFunc != nil {
		return m.requestStatusFunc(id)
	}
	return &domainEmergency.StatusCounts{}, nil
}

func (m *MockStatusUseCase) ChannelStats(id int) (*[]domainEmergency.ChannelStats, error) {
	if m.channelStatsFunc != nil {
		return m.channelStatsFunc(id)
	}
	return &[]domainEmergency.ChannelStats{}, nil
}

func (m *MockStatusUseCase) ListMessages(id int, status string) (*[]domainEmergency.BroadcastMessage, error) {
	if m.listMessagesFunc != nil {
		return m.listMessagesFunc(id, status)
	}
	return &[]domainEmergency.BroadcastMessage{}, nil
}

// MockDeliveryUseCase implements IDeliveryUseCase for testing
type MockDeliveryUseCase struct {
	handleProviderEventFunc func(domainEmergency.Channel, string, string, string) error
	retryMessageFunc        func(int) (*domainEmergency.BroadcastMessage, error)
}

func (m *MockDeliveryUseCase) HandleProviderEvent(channel domainEmergency.Channel, reference, event, errorMessage string) error {
	if m.handleProviderEventFunc != nil {
		return m.handleProviderEventFunc(channel, reference, event, errorMessage)
	}
	return nil
}

func (m *MockDeliveryUseCase) RetryMessage(id int) (*domainEmergency.BroadcastMessage, error) {
	if m.retryMessageFunc != nil {
		return m.retryMessageFunc(id)
	}
	return nil, nil
}

func setupLogger(t *testing.T) *logger.Logger {
	loggerInstance, err := logger.NewLogger()
	if err != nil {
		t.Fatalf("Failed to create logger: %v", err)
	}
	return loggerInstance
}

func setupController(t *testing.T, statusUC *MockStatusUseCase, deliveryUC *MockDeliveryUseCase) IMessagesController {
	loggerInstance := setupLogger(t)
	commonService := common.NewCommonService(helper.NewValidator(loggerInstance))
	return NewMessagesController(commonService, statusUC, deliveryUC, loggerInstance)
}

func TestMessagesController_Callback_Success(t *testing.T) {
	gin.SetMode(gin.TestMode)

	var gotChannel domainEmergency.Channel
	var gotEvent string
	deliveryUC := &MockDeliveryUseCase{
		handleProviderEventFunc: func(channel domainEmergency.Channel, reference, event, errorMessage string) error {
			gotChannel = channel
			gotEvent = event
			return nil
		},
	}
	controller := setupController(t, &MockStatusUseCase{}, deliveryUC)

	requestBody, _ := json.Marshal(CallbackRequest{Reference: "ref-1", Event: "delivered"})
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/callbacks/whatsapp", bytes.NewBuffer(requestBody))
	req.Header.Set("Content-Type", "application/json")

	c, _ := gin.CreateTestContext(w)
	c.Request = req
	c.Params = gin.Params{{Key: "channel", Value: "whatsapp"}}

	controller.ProviderCallback(c)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}
	if gotChannel != domainEmergency.ChannelWhatsApp {
		t.Errorf("Expected whatsapp channel, got %s", gotChannel)
	}
	if gotEvent != "delivered" {
		t.Errorf("Expected delivered event, got %s", gotEvent)
	}
}

func TestMessagesController_Callback_UnknownChannel(t *testing.T) {
	gin.SetMode(gin.TestMode)
	controller := setupController(t, &MockStatusUseCase{}, &MockDeliveryUseCase{})

	requestBody, _ := json.Marshal(CallbackRequest{Reference: "ref-1", Event: "sent"})
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/callbacks/fax", bytes.NewBuffer(requestBody))
	req.Header.Set("Content-Type", "application/json")

	c, _ := gin.CreateTestContext(w)
	c.Request = req
	c.Params = gin.Params{{Key: "channel", Value: "fax"}}

	controller.ProviderCallback(c)

	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", w.Code)
	}
}

func TestMessagesController_Callback_InvalidEvent(t *testing.T) {
	gin.SetMode(gin.TestMode)
	controller := setupController(t, &MockStatusUseCase{}, &MockDeliveryUseCase{})

	// "bounced" is not one of the lifecycle events
	requestBody := []byte(`{"reference":"ref-1","event":"bounced"}`)
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/callbacks/email", bytes.NewBuffer(requestBody))
	req.Header.Set("Content-Type", "application/json")

	c, _ := gin.CreateTestContext(w)
	c.Request = req
	c.Params = gin.Params{{Key: "channel", Value: "email"}}

	controller.ProviderCallback(c)

	if w.Code == http.StatusOK {
		t.Error("Expected validation rejection, got 200")
	}
}

func TestMessagesController_Callback_UseCaseError(t *testing.T) {
	gin.SetMode(gin.TestMode)

	deliveryUC := &MockDeliveryUseCase{
		handleProviderEventFunc: func(domainEmergency.Channel, string, string, string) error {
			return domainErrors.NewAppErrorWithType(domainErrors.NotFound)
		},
	}
	controller := setupController(t, &MockStatusUseCase{}, deliveryUC)

	requestBody, _ := json.Marshal(CallbackRequest{Reference: "nope", Event: "sent"})
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/callbacks/line", bytes.NewBuffer(requestBody))
	req.Header.Set("Content-Type", "application/json")

	c, _ := gin.CreateTestContext(w)
	c.Request = req
	c.Params = gin.Params{{Key: "channel", Value: "line"}}

	controller.ProviderCallback(c)

	if len(c.Errors) == 0 {
		t.Error("Expected error to be added to context")
	}
}

func TestMessagesController_Retry_Success(t *testing.T) {
	gin.SetMode(gin.TestMode)

	deliveryUC := &MockDeliveryUseCase{
		retryMessageFunc: func(id int) (*domainEmergency.BroadcastMessage, error) {
			return &domainEmergency.BroadcastMessage{
				ID:         id,
				Reference:  "ref-9",
				Channel:    domainEmergency.ChannelEmail,
				Status:     domainEmergency.StatusQueued,
				RetryCount: 2,
			}, nil
		},
	}
	controller := setupController(t, &MockStatusUseCase{}, deliveryUC)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/messages/9/retry", nil)

	c, _ := gin.CreateTestContext(w)
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "9"}}

	controller.Retry(c)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}

	var response MessageResponse
	if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
	if response.ID != 9 || response.Status != "queued" || response.RetryCount != 2 {
		t.Errorf("Unexpected response: %+v", response)
	}
}

func TestMessagesController_Retry_InvalidID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	controller := setupController(t, &MockStatusUseCase{}, &MockDeliveryUseCase{})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/messages/abc/retry", nil)

	c, _ := gin.CreateTestContext(w)
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "abc"}}

	controller.Retry(c)

	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", w.Code)
	}
}

func TestMessagesController_List_FiltersByStatus(t *testing.T) {
	gin.SetMode(gin.TestMode)

	var gotRequestID int
	var gotStatus string
	statusUC := &MockStatusUseCase{
		listMessagesFunc: func(requestID int, status string) (*[]domainEmergency.BroadcastMessage, error) {
			gotRequestID = requestID
			gotStatus = status
			return &[]domainEmergency.BroadcastMessage{{ID: 1, Status: domainEmergency.StatusFailed}}, nil
		},
	}
	controller := setupController(t, statusUC, &MockDeliveryUseCase{})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/messages?request_id=4&status=failed", nil)

	c, _ := gin.CreateTestContext(w)
	c.Request = req

	controller.List(c)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}
	if gotRequestID != 4 || gotStatus != "failed" {
		t.Errorf("Filters not forwarded: requestID=%d status=%s", gotRequestID, gotStatus)
	}
}

func TestMessagesController_List_RejectsUnknownStatus(t *testing.T) {
	gin.SetMode(gin.TestMode)
	controller := setupController(t, &MockStatusUseCase{}, &MockDeliveryUseCase{})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/messages?status=bogus", nil)

	c, _ := gin.CreateTestContext(w)
	c.Request = req

	controller.List(c)

	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", w.Code)
	}
}

func TestMessagesController_Stats(t *testing.T) {
	gin.SetMode(gin.TestMode)

	statusUC := &MockStatusUseCase{
		channelStatsFunc: func(int) (*[]domainEmergency.ChannelStats, error) {
			return &[]domainEmergency.ChannelStats{
				{Channel: domainEmergency.ChannelWhatsApp, Counts: domainEmergency.StatusCounts{Total: 3, Delivered: 2, Failed: 1}},
			}, nil
		},
	}
	controller := setupController(t, statusUC, &MockDeliveryUseCase{})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/messages/stats", nil)

	c, _ := gin.CreateTestContext(w)
	c.Request = req

	controller.Stats(c)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}

	var response struct {
		Stats []ChannelStatsResponse `json:"stats"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
	if len(response.Stats) != 1 || response.Stats[0].Channel != "whatsapp" || response.Stats[0].Delivered != 2 {
		t.Errorf("Unexpected stats: %+v", response.Stats)
	}
}
