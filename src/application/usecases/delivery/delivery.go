package delivery

import (
	"time"

	domainEmergency "pet-emergency-api/src/domain/emergency"
	domainErrors "pet-emergency-api/src/domain/errors"
	logger "pet-emergency-api/src/infrastructure/logger"
	"pet-emergency-api/src/infrastructure/repository/db/broadcast"

	"go.uber.org/zap"
)

// ProviderEvent names the lifecycle events channel providers report back
const (
	EventSent      = "sent"
	EventDelivered = "delivered"
	EventRead      = "read"
	EventFailed    = "failed"
)

// MessageEnqueuer re-submits a message to the send worker pool after an
// operator retry.
type MessageEnqueuer interface {
	EnqueueMessage(msg *domainEmergency.BroadcastMessage)
}

// IDeliveryUseCase drives the per-message delivery state machine from provider
// callbacks and operator actions.
type IDeliveryUseCase interface {
	HandleProviderEvent(channel domainEmergency.Channel, reference, event, errorMessage string) error
	RetryMessage(id int) (*domainEmergency.BroadcastMessage, error)
}

type DeliveryUseCase struct {
	broadcastMessageRepository broadcast.BroadcastMessageRepositoryInterface
	enqueuer                   MessageEnqueuer
	Logger                     *logger.Logger
}

func NewDeliveryUseCase(
	broadcastMessageRepository broadcast.BroadcastMessageRepositoryInterface,
	enqueuer MessageEnqueuer,
	loggerInstance *logger.Logger,
) IDeliveryUseCase {
	return &DeliveryUseCase{
		broadcastMessageRepository: broadcastMessageRepository,
		enqueuer:                   enqueuer,
		Logger:                     loggerInstance,
	}
}

// HandleProviderEvent applies one provider callback to the message it
// references. Transitions are applied monotonically: callbacks arriving out of
// order (a stale "sent" after "delivered") are discarded, not errors. Two
// concurrent callbacks for the same message are serialized by the repository's
// compare-and-set, retried here against the fresh state.
func (u *DeliveryUseCase) HandleProviderEvent(channel domainEmergency.Channel, reference, event, errorMessage string) error {
	target, ok := eventTarget(event)
	if !ok {
		return domainErrors.NewAppErrorWithType(domainErrors.ValidationError)
	}

	for attempt := 0; attempt < 3; attempt++ {
		message, err := u.broadcastMessageRepository.GetByReference(reference)
		if err != nil {
			return err
		}
		if message.Channel != channel {
			u.Logger.Warn("Provider callback channel mismatch",
				zap.String("reference", reference),
				zap.String("callbackChannel", string(channel)),
				zap.String("messageChannel", string(message.Channel)))
			return domainErrors.NewAppErrorWithType(domainErrors.ValidationError)
		}

		if !domainEmergency.CanTransition(message.Status, target) {
			u.Logger.Info("Discarding out-of-order provider callback",
				zap.String("reference", reference),
				zap.String("current", string(message.Status)),
				zap.String("event", event))
			return nil
		}

		updates := transitionUpdates(message, target, errorMessage)
		applied, err := u.broadcastMessageRepository.TransitionStatus(message.ID, message.Status, target, updates)
		if err != nil {
			return err
		}
		if applied {
			u.Logger.Info("Broadcast message transitioned",
				zap.Int("messageID", message.ID),
				zap.String("from", string(message.Status)),
				zap.String("to", string(target)))
			return nil
		}
		// lost the race against a concurrent callback; re-read and re-check
	}

	u.Logger.Warn("Provider callback dropped after repeated CAS conflicts", zap.String("reference", reference))
	return nil
}

// RetryMessage is the operator-triggered retry of a failed message: status
// goes back to queued and the message re-enters the worker pool. The
// cumulative retryCount is preserved for operator visibility, never reset.
// There is no server-side cap on manual retries.
func (u *DeliveryUseCase) RetryMessage(id int) (*domainEmergency.BroadcastMessage, error) {
	message, err := u.broadcastMessageRepository.GetByID(id)
	if err != nil {
		return nil, err
	}

	if message.Status != domainEmergency.StatusFailed {
		u.Logger.Warn("Retry requested for a message that is not failed",
			zap.Int("messageID", id),
			zap.String("status", string(message.Status)))
		return nil, domainErrors.NewAppErrorWithType(domainErrors.InvalidTransition)
	}

	applied, err := u.broadcastMessageRepository.TransitionStatus(
		message.ID,
		domainEmergency.StatusFailed,
		domainEmergency.StatusQueued,
		map[string]interface{}{"errorMessage": ""},
	)
	if err != nil {
		return nil, err
	}
	if !applied {
		// someone else already moved it; report the current state
		return nil, domainErrors.NewAppErrorWithType(domainErrors.InvalidTransition)
	}

	updated, err := u.broadcastMessageRepository.GetByID(id)
	if err != nil {
		return nil, err
	}

	u.enqueuer.EnqueueMessage(updated)
	u.Logger.Info("Operator retry queued", zap.Int("messageID", id), zap.Int("retryCount", updated.RetryCount))
	return updated, nil
}

func eventTarget(event string) (domainEmergency.Status, bool) {
	switch event {
	case EventSent:
		return domainEmergency.StatusSent, true
	case EventDelivered:
		return domainEmergency.StatusDelivered, true
	case EventRead:
		return domainEmergency.StatusRead, true
	case EventFailed:
		return domainEmergency.StatusFailed, true
	}
	return "", false
}

// transitionUpdates builds the column updates for a transition. Timestamps are
// only set when the corresponding state is actually entered, so readAt implies
// deliveredAt implies sentAt.
func transitionUpdates(message *domainEmergency.BroadcastMessage, target domainEmergency.Status, errorMessage string) map[string]interface{} {
	now := time.Now()
	updates := map[string]interface{}{}

	switch target {
	case domainEmergency.StatusSent:
		updates["sentAt"] = &now
	case domainEmergency.StatusDelivered:
		updates["deliveredAt"] = &now
		if message.SentAt == nil {
			updates["sentAt"] = &now
		}
	case domainEmergency.StatusRead:
		updates["readAt"] = &now
		if message.DeliveredAt == nil {
			updates["deliveredAt"] = &now
		}
		if message.SentAt == nil {
			updates["sentAt"] = &now
		}
	case domainEmergency.StatusFailed:
		updates["failedAt"] = &now
		updates["errorMessage"] = errorMessage
		updates["retryCount"] = message.RetryCount + 1
	}

	return updates
}
