package delivery

import (
	"testing"

	domainEmergency "pet-emergency-api/src/domain/emergency"
	domainErrors "pet-emergency-api/src/domain/errors"
	logger "pet-emergency-api/src/infrastructure/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockBroadcastMessageRepository struct {
	mock.Mock
}

func (m *MockBroadcastMessageRepository) CreateIgnoreConflict(message *domainEmergency.BroadcastMessage) (bool, *domainEmergency.BroadcastMessage, error) {
	args := m.Called(message)
	return args.Bool(0), args.Get(1).(*domainEmergency.BroadcastMessage), args.Error(2)
}

func (m *MockBroadcastMessageRepository) GetByID(id int) (*domainEmergency.BroadcastMessage, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domainEmergency.BroadcastMessage), args.Error(1)
}

func (m *MockBroadcastMessageRepository) GetByReference(reference string) (*domainEmergency.BroadcastMessage, error) {
	args := m.Called(reference)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domainEmergency.BroadcastMessage), args.Error(1)
}

func (m *MockBroadcastMessageRepository) List(emergencyRequestID int, status string) (*[]domainEmergency.BroadcastMessage, error) {
	args := m.Called(emergencyRequestID, status)
	return args.Get(0).(*[]domainEmergency.BroadcastMessage), args.Error(1)
}

func (m *MockBroadcastMessageRepository) TransitionStatus(id int, from, to domainEmergency.Status, updates map[string]interface{}) (bool, error) {
	args := m.Called(id, from, to, updates)
	return args.Bool(0), args.Error(1)
}

func (m *MockBroadcastMessageRepository) CountsByRequest(emergencyRequestID int) (*domainEmergency.StatusCounts, error) {
	args := m.Called(emergencyRequestID)
	return args.Get(0).(*domainEmergency.StatusCounts), args.Error(1)
}

func (m *MockBroadcastMessageRepository) StatsByChannel(emergencyRequestID int) (*[]domainEmergency.ChannelStats, error) {
	args := m.Called(emergencyRequestID)
	return args.Get(0).(*[]domainEmergency.ChannelStats), args.Error(1)
}

type recordingEnqueuer struct {
	enqueued []*domainEmergency.BroadcastMessage
}

func (r *recordingEnqueuer) EnqueueMessage(msg *domainEmergency.BroadcastMessage) {
	r.enqueued = append(r.enqueued, msg)
}

func setupLogger(t *testing.T) *logger.Logger {
	loggerInstance, err := logger.NewLogger()
	if err != nil {
		t.Fatalf("Failed to create logger: %v", err)
	}
	return loggerInstance
}

func testMessage(status domainEmergency.Status) *domainEmergency.BroadcastMessage {
	return &domainEmergency.BroadcastMessage{
		ID:                 10,
		Reference:          "ref-123",
		EmergencyRequestID: 1,
		HospitalID:         2,
		Channel:            domainEmergency.ChannelWhatsApp,
		Status:             status,
	}
}

func TestHandleProviderEventAppliesForwardTransition(t *testing.T) {
	repo := &MockBroadcastMessageRepository{}
	enqueuer := &recordingEnqueuer{}
	uc := NewDeliveryUseCase(repo, enqueuer, setupLogger(t))

	msg := testMessage(domainEmergency.StatusSent)
	repo.On("GetByReference", "ref-123").Return(msg, nil)
	repo.On("TransitionStatus", 10, domainEmergency.StatusSent, domainEmergency.StatusDelivered, mock.Anything).Return(true, nil)

	err := uc.HandleProviderEvent(domainEmergency.ChannelWhatsApp, "ref-123", EventDelivered, "")
	require.NoError(t, err)
	repo.AssertExpectations(t)
	assert.Empty(t, enqueuer.enqueued)
}

func TestHandleProviderEventDiscardsStaleCallback(t *testing.T) {
	repo := &MockBroadcastMessageRepository{}
	uc := NewDeliveryUseCase(repo, &recordingEnqueuer{}, setupLogger(t))

	// a late "sent" after the delivery receipt already arrived
	msg := testMessage(domainEmergency.StatusDelivered)
	repo.On("GetByReference", "ref-123").Return(msg, nil)

	err := uc.HandleProviderEvent(domainEmergency.ChannelWhatsApp, "ref-123", EventSent, "")
	require.NoError(t, err)
	repo.AssertNotCalled(t, "TransitionStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestHandleProviderEventRejectsUnknownEvent(t *testing.T) {
	repo := &MockBroadcastMessageRepository{}
	uc := NewDeliveryUseCase(repo, &recordingEnqueuer{}, setupLogger(t))

	err := uc.HandleProviderEvent(domainEmergency.ChannelWhatsApp, "ref-123", "bounced", "")
	require.Error(t, err)
	appErr, ok := err.(*domainErrors.AppError)
	require.True(t, ok)
	assert.Equal(t, domainErrors.ValidationError, appErr.Type)
}

func TestHandleProviderEventRejectsChannelMismatch(t *testing.T) {
	repo := &MockBroadcastMessageRepository{}
	uc := NewDeliveryUseCase(repo, &recordingEnqueuer{}, setupLogger(t))

	msg := testMessage(domainEmergency.StatusSent)
	repo.On("GetByReference", "ref-123").Return(msg, nil)

	err := uc.HandleProviderEvent(domainEmergency.ChannelEmail, "ref-123", EventDelivered, "")
	require.Error(t, err)
	appErr, ok := err.(*domainErrors.AppError)
	require.True(t, ok)
	assert.Equal(t, domainErrors.ValidationError, appErr.Type)
}

func TestHandleProviderEventFailedRecordsErrorAndRetryCount(t *testing.T) {
	repo := &MockBroadcastMessageRepository{}
	uc := NewDeliveryUseCase(repo, &recordingEnqueuer{}, setupLogger(t))

	msg := testMessage(domainEmergency.StatusSent)
	msg.RetryCount = 2
	repo.On("GetByReference", "ref-123").Return(msg, nil)
	repo.On("TransitionStatus", 10, domainEmergency.StatusSent, domainEmergency.StatusFailed,
		mock.MatchedBy(func(updates map[string]interface{}) bool {
			return updates["errorMessage"] == "number unreachable" && updates["retryCount"] == 3
		})).Return(true, nil)

	err := uc.HandleProviderEvent(domainEmergency.ChannelWhatsApp, "ref-123", EventFailed, "number unreachable")
	require.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestHandleProviderEventRetriesAfterLostRace(t *testing.T) {
	repo := &MockBroadcastMessageRepository{}
	uc := NewDeliveryUseCase(repo, &recordingEnqueuer{}, setupLogger(t))

	queued := testMessage(domainEmergency.StatusQueued)
	sent := testMessage(domainEmergency.StatusSent)

	// first read sees queued but the CAS loses to the concurrent "sent"
	// callback; the re-read sees sent and the transition applies there
	repo.On("GetByReference", "ref-123").Return(queued, nil).Once()
	repo.On("TransitionStatus", 10, domainEmergency.StatusQueued, domainEmergency.StatusDelivered, mock.Anything).Return(false, nil).Once()
	repo.On("GetByReference", "ref-123").Return(sent, nil).Once()
	repo.On("TransitionStatus", 10, domainEmergency.StatusSent, domainEmergency.StatusDelivered, mock.Anything).Return(true, nil).Once()

	err := uc.HandleProviderEvent(domainEmergency.ChannelWhatsApp, "ref-123", EventDelivered, "")
	require.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestRetryMessageRequeuesFailedMessage(t *testing.T) {
	repo := &MockBroadcastMessageRepository{}
	enqueuer := &recordingEnqueuer{}
	uc := NewDeliveryUseCase(repo, enqueuer, setupLogger(t))

	failed := testMessage(domainEmergency.StatusFailed)
	failed.RetryCount = 4
	requeued := testMessage(domainEmergency.StatusQueued)
	requeued.RetryCount = 4

	repo.On("GetByID", 10).Return(failed, nil).Once()
	repo.On("TransitionStatus", 10, domainEmergency.StatusFailed, domainEmergency.StatusQueued,
		map[string]interface{}{"errorMessage": ""}).Return(true, nil)
	repo.On("GetByID", 10).Return(requeued, nil).Once()

	updated, err := uc.RetryMessage(10)
	require.NoError(t, err)
	require.Len(t, enqueuer.enqueued, 1)
	assert.Equal(t, domainEmergency.StatusQueued, updated.Status)
	// the cumulative count survives the retry for operator visibility
	assert.Equal(t, 4, updated.RetryCount)
}

func TestRetryMessageRejectsNonFailedMessage(t *testing.T) {
	repo := &MockBroadcastMessageRepository{}
	enqueuer := &recordingEnqueuer{}
	uc := NewDeliveryUseCase(repo, enqueuer, setupLogger(t))

	repo.On("GetByID", 10).Return(testMessage(domainEmergency.StatusSent), nil)

	updated, err := uc.RetryMessage(10)
	assert.Nil(t, updated)
	require.Error(t, err)
	appErr, ok := err.(*domainErrors.AppError)
	require.True(t, ok)
	assert.Equal(t, domainErrors.InvalidTransition, appErr.Type)
	assert.Empty(t, enqueuer.enqueued)
}
