package status

import (
	domainEmergency "pet-emergency-api/src/domain/emergency"
	logger "pet-emergency-api/src/infrastructure/logger"
	"pet-emergency-api/src/infrastructure/repository/db/broadcast"
	"pet-emergency-api/src/infrastructure/repository/db/emergencyrequest"
)

// IStatusUseCase is the read-side view combining per-message states into
// request-level progress. It is polled by the UI at a short fixed interval; it
// pushes nothing.
type IStatusUseCase interface {
	RequestStatus(emergencyRequestID int) (*domainEmergency.StatusCounts, error)
	ChannelStats(emergencyRequestID int) (*[]domainEmergency.ChannelStats, error)
	ListMessages(emergencyRequestID int, status string) (*[]domainEmergency.BroadcastMessage, error)
}

type StatusUseCase struct {
	emergencyRequestRepository emergencyrequest.EmergencyRequestRepositoryInterface
	broadcastMessageRepository broadcast.BroadcastMessageRepositoryInterface
	Logger                     *logger.Logger
}

func NewStatusUseCase(
	emergencyRequestRepository emergencyrequest.EmergencyRequestRepositoryInterface,
	broadcastMessageRepository broadcast.BroadcastMessageRepositoryInterface,
	loggerInstance *logger.Logger,
) IStatusUseCase {
	return &StatusUseCase{
		emergencyRequestRepository: emergencyRequestRepository,
		broadcastMessageRepository: broadcastMessageRepository,
		Logger:                     loggerInstance,
	}
}

// RequestStatus returns per-status counts for one request. A request whose
// fan-out produced no messages (no hospital had a reachable channel) yields
// all-zero counts, not an error.
func (u *StatusUseCase) RequestStatus(emergencyRequestID int) (*domainEmergency.StatusCounts, error) {
	if _, err := u.emergencyRequestRepository.GetByID(emergencyRequestID); err != nil {
		return nil, err
	}
	return u.broadcastMessageRepository.CountsByRequest(emergencyRequestID)
}

// ChannelStats returns the per-channel breakdown for the operator dashboard.
// emergencyRequestID zero means all requests.
func (u *StatusUseCase) ChannelStats(emergencyRequestID int) (*[]domainEmergency.ChannelStats, error) {
	return u.broadcastMessageRepository.StatsByChannel(emergencyRequestID)
}

// ListMessages returns broadcast messages, optionally filtered
func (u *StatusUseCase) ListMessages(emergencyRequestID int, status string) (*[]domainEmergency.BroadcastMessage, error) {
	return u.broadcastMessageRepository.List(emergencyRequestID, status)
}
