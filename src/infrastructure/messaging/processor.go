package messaging

import (
	"sync"
	"time"

	domainEmergency "pet-emergency-api/src/domain/emergency"
	"pet-emergency-api/src/infrastructure/channels"
	logger "pet-emergency-api/src/infrastructure/logger"
	"pet-emergency-api/src/infrastructure/repository/db/broadcast"

	"go.uber.org/zap"
)

// BroadcastProcessor sends queued broadcast messages using a worker pool.
// Messages for different (hospital, channel) pairs are independent units of
// work and may be sent concurrently; the per-message state machine is guarded
// by the repository's compare-and-set transition.
type BroadcastProcessor struct {
	registry                   *channels.Registry
	broadcastMessageRepository broadcast.BroadcastMessageRepositoryInterface
	Logger                     *logger.Logger
	workerCount                int
	messageQueue               chan *domainEmergency.BroadcastMessage
	wg                         sync.WaitGroup
	shutdown                   chan struct{}
	closeOnce                  sync.Once
}

// NewBroadcastProcessor creates a new processor with the specified number of workers
func NewBroadcastProcessor(
	registry *channels.Registry,
	broadcastMessageRepository broadcast.BroadcastMessageRepositoryInterface,
	loggerInstance *logger.Logger,
	workerCount int,
) *BroadcastProcessor {
	if workerCount <= 0 {
		workerCount = 5
	}

	processor := &BroadcastProcessor{
		registry:                   registry,
		broadcastMessageRepository: broadcastMessageRepository,
		Logger:                     loggerInstance,
		workerCount:                workerCount,
		messageQueue:               make(chan *domainEmergency.BroadcastMessage, 100),
		shutdown:                   make(chan struct{}),
	}

	processor.startWorkers()
	go processor.watchQueuedMessages()

	return processor
}

func (p *BroadcastProcessor) startWorkers() {
	p.Logger.Info("Starting broadcast processor workers", zap.Int("workerCount", p.workerCount))

	for i := 0; i < p.workerCount; i++ {
		p.wg.Add(1)
		go p.worker(i)
	}
}

func (p *BroadcastProcessor) worker(id int) {
	defer p.wg.Done()

	for {
		select {
		case msg := <-p.messageQueue:
			p.processMessage(msg)
		case <-p.shutdown:
			p.Logger.Info("Shutting down broadcast processor worker", zap.Int("workerID", id))
			return
		}
	}
}

// watchQueuedMessages periodically re-enqueues messages still in queued state,
// recovering work lost to a restart or a full in-memory queue.
func (p *BroadcastProcessor) watchQueuedMessages() {
	ticker := time.NewTicker(1 * time.Minute)
	defer ticker.Stop()

	p.checkQueuedMessages()

	for {
		select {
		case <-ticker.C:
			p.checkQueuedMessages()
		case <-p.shutdown:
			return
		}
	}
}

func (p *BroadcastProcessor) checkQueuedMessages() {
	queuedMessages, err := p.broadcastMessageRepository.List(0, string(domainEmergency.StatusQueued))
	if err != nil {
		p.Logger.Error("Error getting queued broadcast messages", zap.Error(err))
		return
	}

	if len(*queuedMessages) == 0 {
		return
	}

	p.Logger.Info("Found queued broadcast messages to process", zap.Int("count", len(*queuedMessages)))

	for i := range *queuedMessages {
		msg := (*queuedMessages)[i]
		select {
		case p.messageQueue <- &msg:
		default:
			p.Logger.Warn("Broadcast queue is full, message will be picked up on the next sweep", zap.Int("messageID", msg.ID))
		}
	}
}

// EnqueueMessage adds a message to the processing queue
func (p *BroadcastProcessor) EnqueueMessage(msg *domainEmergency.BroadcastMessage) {
	select {
	case p.messageQueue <- msg:
		p.Logger.Info("Broadcast message added to processing queue", zap.Int("messageID", msg.ID))
	default:
		p.Logger.Warn("Broadcast queue is full, message will be picked up by the watcher", zap.Int("messageID", msg.ID))
	}
}

func (p *BroadcastProcessor) processMessage(msg *domainEmergency.BroadcastMessage) {
	// Re-read before sending: the watcher and direct enqueue can both hand the
	// same message to a worker, and an operator retry may have touched it.
	fresh, err := p.broadcastMessageRepository.GetByID(msg.ID)
	if err != nil {
		p.Logger.Error("Error loading broadcast message before send", zap.Error(err), zap.Int("messageID", msg.ID))
		return
	}
	if fresh.Status != domainEmergency.StatusQueued {
		return
	}

	provider := p.registry.ProviderByChannel(fresh.Channel)
	if provider == nil {
		p.failMessage(fresh, "channel provider not configured")
		return
	}

	providerMessageID, err := provider.Send(fresh.Recipient, fresh.Content, fresh.Reference)
	if err != nil {
		p.Logger.Error("Channel provider send failed",
			zap.Error(err),
			zap.Int("messageID", fresh.ID),
			zap.String("channel", string(fresh.Channel)))
		p.failMessage(fresh, err.Error())
		return
	}

	// A synchronous success response is the provider acknowledgment that moves
	// queued to sent.
	now := time.Now()
	applied, err := p.broadcastMessageRepository.TransitionStatus(
		fresh.ID,
		domainEmergency.StatusQueued,
		domainEmergency.StatusSent,
		map[string]interface{}{"sentAt": &now},
	)
	if err != nil {
		p.Logger.Error("Error marking broadcast message sent", zap.Error(err), zap.Int("messageID", fresh.ID))
		return
	}
	if !applied {
		p.Logger.Warn("Stale sent transition discarded", zap.Int("messageID", fresh.ID))
		return
	}

	p.Logger.Info("Broadcast message sent",
		zap.Int("messageID", fresh.ID),
		zap.String("channel", string(fresh.Channel)),
		zap.String("providerMessageID", providerMessageID))
}

func (p *BroadcastProcessor) failMessage(msg *domainEmergency.BroadcastMessage, errorMessage string) {
	now := time.Now()
	applied, err := p.broadcastMessageRepository.TransitionStatus(
		msg.ID,
		domainEmergency.StatusQueued,
		domainEmergency.StatusFailed,
		map[string]interface{}{
			"errorMessage": errorMessage,
			"retryCount":   msg.RetryCount + 1,
			"failedAt":     &now,
		},
	)
	if err != nil {
		p.Logger.Error("Error marking broadcast message failed", zap.Error(err), zap.Int("messageID", msg.ID))
		return
	}
	if !applied {
		p.Logger.Warn("Stale failed transition discarded", zap.Int("messageID", msg.ID))
	}
}

// Shutdown stops the workers and waits for in-flight sends to finish
func (p *BroadcastProcessor) Shutdown() {
	p.closeOnce.Do(func() {
		close(p.shutdown)
	})
	p.wg.Wait()
	p.Logger.Info("Broadcast processor shut down")
}
