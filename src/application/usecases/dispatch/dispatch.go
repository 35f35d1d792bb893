package dispatch

import (
	"fmt"
	"strings"

	"pet-emergency-api/src/domain/consent"
	domainEmergency "pet-emergency-api/src/domain/emergency"
	"pet-emergency-api/src/domain/hospital"
	logger "pet-emergency-api/src/infrastructure/logger"
	"pet-emergency-api/src/infrastructure/repository/db/broadcast"

	"github.com/gofrs/uuid"
	"go.uber.org/zap"
)

// ChannelCatalog reports which channels have a configured provider
type ChannelCatalog interface {
	EnabledChannels() []domainEmergency.Channel
}

// MessageEnqueuer hands created messages to the send worker pool
type MessageEnqueuer interface {
	EnqueueMessage(msg *domainEmergency.BroadcastMessage)
}

// DispatchResult summarizes one fan-out pass
type DispatchResult struct {
	Created int
	Skipped int // tuples that already had a row (idempotent re-dispatch)
}

// IDispatchUseCase fans one accepted emergency request out to the ranked
// hospital candidates over every enabled channel.
type IDispatchUseCase interface {
	DispatchBroadcast(request *domainEmergency.EmergencyRequest) (*DispatchResult, error)
}

type DispatchUseCase struct {
	rankingService             hospital.RankingService
	consentService             consent.Service
	catalog                    ChannelCatalog
	broadcastMessageRepository broadcast.BroadcastMessageRepositoryInterface
	enqueuer                   MessageEnqueuer
	Logger                     *logger.Logger
}

func NewDispatchUseCase(
	rankingService hospital.RankingService,
	consentService consent.Service,
	catalog ChannelCatalog,
	broadcastMessageRepository broadcast.BroadcastMessageRepositoryInterface,
	enqueuer MessageEnqueuer,
	loggerInstance *logger.Logger,
) IDispatchUseCase {
	return &DispatchUseCase{
		rankingService:             rankingService,
		consentService:             consentService,
		catalog:                    catalog,
		broadcastMessageRepository: broadcastMessageRepository,
		enqueuer:                   enqueuer,
		Logger:                     loggerInstance,
	}
}

// DispatchBroadcast creates exactly one broadcast message per reachable
// (candidate, channel) pair. Idempotency is enforced by the repository's
// unique constraint: re-dispatching an already-processed tuple never creates a
// duplicate row. A candidate without any contact channel simply contributes
// nothing.
func (u *DispatchUseCase) DispatchBroadcast(request *domainEmergency.EmergencyRequest) (*DispatchResult, error) {
	candidates, err := u.rankingService.RankCandidates(request)
	if err != nil {
		u.Logger.Error("Error ranking hospital candidates", zap.Error(err), zap.Int("emergencyRequestID", request.ID))
		return nil, err
	}

	var medicalContext *consent.MedicalContext
	if request.ShareMedicalRecords {
		medicalContext, err = u.consentService.MedicalContextFor(request.ID)
		if err != nil {
			// the broadcast is more urgent than the attachment; send without it
			u.Logger.Warn("Consent lookup failed, dispatching without medical context",
				zap.Error(err),
				zap.Int("emergencyRequestID", request.ID))
			medicalContext = nil
		}
	}

	enabledChannels := u.catalog.EnabledChannels()
	result := &DispatchResult{}

	for _, candidate := range candidates {
		for _, channel := range enabledChannels {
			recipient := candidate.Recipient(channel)
			if recipient == "" {
				continue
			}

			reference, err := uuid.NewV4()
			if err != nil {
				return nil, err
			}

			message := &domainEmergency.BroadcastMessage{
				Reference:          reference.String(),
				EmergencyRequestID: request.ID,
				HospitalID:         candidate.ID,
				Channel:            channel,
				Recipient:          recipient,
				Content:            renderContent(request, candidate, channel, medicalContext),
				Status:             domainEmergency.StatusQueued,
			}

			created, stored, err := u.broadcastMessageRepository.CreateIgnoreConflict(message)
			if err != nil {
				u.Logger.Error("Error creating broadcast message",
					zap.Error(err),
					zap.Int("emergencyRequestID", request.ID),
					zap.Int("hospitalID", candidate.ID),
					zap.String("channel", string(channel)))
				return nil, err
			}
			if !created {
				result.Skipped++
				continue
			}

			result.Created++
			u.enqueuer.EnqueueMessage(stored)
		}
	}

	u.Logger.Info("Broadcast fan-out dispatched",
		zap.Int("emergencyRequestID", request.ID),
		zap.Int("candidates", len(candidates)),
		zap.Int("created", result.Created),
		zap.Int("skipped", result.Skipped))
	return result, nil
}

// renderContent builds channel-appropriate message text: the symptom, the
// consented medical context when available, and callback instructions.
func renderContent(
	request *domainEmergency.EmergencyRequest,
	candidate hospital.Candidate,
	channel domainEmergency.Channel,
	medicalContext *consent.MedicalContext,
) string {
	var b strings.Builder

	switch channel {
	case domainEmergency.ChannelEmail:
		fmt.Fprintf(&b, "Dear %s,\n\n", candidate.Name)
		fmt.Fprintf(&b, "An emergency case needs immediate attention.\n\n")
		fmt.Fprintf(&b, "Pet: %s (%s)\n", request.PetName, request.Species)
		fmt.Fprintf(&b, "Symptom: %s\n", request.Symptom)
		if medicalContext != nil {
			fmt.Fprintf(&b, "\nMedical history (shared with owner consent):\n%s\n", medicalContext.Summary)
			if medicalContext.RecordsLink != "" {
				fmt.Fprintf(&b, "Full records: %s\n", medicalContext.RecordsLink)
			}
		}
		fmt.Fprintf(&b, "\nPlease contact %s at %s if you can take this case.\n", request.OwnerName, request.OwnerContact)
	default:
		// messaging channels get a compact single message
		fmt.Fprintf(&b, "🚨 Emergency: %s (%s) - %s.", request.PetName, request.Species, request.Symptom)
		if medicalContext != nil && medicalContext.Summary != "" {
			fmt.Fprintf(&b, " History: %s.", medicalContext.Summary)
		}
		fmt.Fprintf(&b, " Reply or call %s (%s) if you can take this case.", request.OwnerName, request.OwnerContact)
	}

	return b.String()
}
