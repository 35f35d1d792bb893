package offline

import (
	"bytes"
	"context"
	"net/http"
	"sync"
	"time"

	domainOffline "pet-emergency-api/src/domain/offline"
	logger "pet-emergency-api/src/infrastructure/logger"

	"go.uber.org/zap"
)

// SubmissionSender replays one queued submission against the server.
// ErrTransient failures leave the record queued; permanent outcomes remove it.
type SubmissionSender interface {
	Send(record *domainOffline.QueuedSubmission) SendOutcome
}

// SendOutcome classifies a resend attempt
type SendOutcome int

const (
	// SendSuccess means the server accepted the submission
	SendSuccess SendOutcome = iota
	// SendTransientFailure means the attempt failed in a retryable way
	// (transport error or server-side 5xx)
	SendTransientFailure
	// SendPermanentFailure means the server rejected the submission and a
	// retry can never succeed (4xx)
	SendPermanentFailure
)

// HTTPSender replays submissions with a plain HTTP client. Requests are built
// on a detached context: a resend in progress must survive the page or tab
// that triggered it.
type HTTPSender struct {
	Client *http.Client
}

func NewHTTPSender(client *http.Client) *HTTPSender {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &HTTPSender{Client: client}
}

func (s *HTTPSender) Send(record *domainOffline.QueuedSubmission) SendOutcome {
	req, err := http.NewRequestWithContext(context.Background(), record.Method, record.URL, bytes.NewReader(record.Body))
	if err != nil {
		return SendPermanentFailure
	}
	for k, v := range record.Headers {
		req.Header.Set(k, v)
	}

	resp, err := s.Client.Do(req)
	if err != nil {
		return SendTransientFailure
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode < http.StatusBadRequest:
		return SendSuccess
	case resp.StatusCode >= http.StatusInternalServerError:
		return SendTransientFailure
	default:
		return SendPermanentFailure
	}
}

// QueueProcessor drains the durable queue when connectivity allows. It runs on
// a single goroutine and replays items one at a time in enqueue order, so
// hospital notifications keep their ordering and retry bursts never overwhelm
// the network.
type QueueProcessor struct {
	store  domainOffline.Store
	sender SubmissionSender
	bridge *Bridge
	Logger *logger.Logger

	// fallbackInterval drives the periodic trigger for platforms without
	// background-wake support
	fallbackInterval time.Duration

	trigger  chan struct{}
	stop     chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

func NewQueueProcessor(
	store domainOffline.Store,
	sender SubmissionSender,
	bridge *Bridge,
	loggerInstance *logger.Logger,
	fallbackInterval time.Duration,
) *QueueProcessor {
	if fallbackInterval <= 0 {
		fallbackInterval = time.Minute
	}

	p := &QueueProcessor{
		store:            store,
		sender:           sender,
		bridge:           bridge,
		Logger:           loggerInstance,
		fallbackInterval: fallbackInterval,
		trigger:          make(chan struct{}, 1),
		stop:             make(chan struct{}),
	}

	bridge.RegisterCountHandler(p.queuedCount)
	bridge.RegisterTriggerHandler(p.Trigger)

	return p
}

// Start launches the drain loop
func (p *QueueProcessor) Start() {
	p.wg.Add(1)
	go p.run()
}

// Stop shuts the drain loop down. An attempt already in flight completes first.
func (p *QueueProcessor) Stop() {
	p.stopOnce.Do(func() {
		close(p.stop)
	})
	p.wg.Wait()
}

// Trigger requests a drain pass. Used by the connectivity-restored signal, the
// background-wake callback and PROCESS_QUEUE messages. Coalesces when a pass
// is already pending.
func (p *QueueProcessor) Trigger() {
	select {
	case p.trigger <- struct{}{}:
	default:
	}
}

func (p *QueueProcessor) run() {
	defer p.wg.Done()

	ticker := time.NewTicker(p.fallbackInterval)
	defer ticker.Stop()

	for {
		select {
		case <-p.stop:
			return
		case <-p.trigger:
			p.ProcessQueue()
		case <-ticker.C:
			p.ProcessQueue()
		}
	}
}

// ProcessQueue replays every queued item once, in enqueue order. Success
// removes the record and broadcasts OFFLINE_REQUEST_SYNCED. A transient
// failure increments retryCount, keeping the invariant retryCount <=
// maxRetries. When the budget would be exceeded the record is removed and
// OFFLINE_REQUEST_FAILED is broadcast with an explicit reason: a submission is
// never silently dropped.
func (p *QueueProcessor) ProcessQueue() {
	records, err := p.store.ListAll()
	if err != nil {
		p.Logger.Error("Error listing queued submissions", zap.Error(err))
		return
	}

	for i := range records {
		record := records[i]
		outcome := p.sender.Send(&record)

		switch outcome {
		case SendSuccess:
			if err := p.store.Remove(record.ID); err != nil {
				p.Logger.Error("Error removing synced submission", zap.Error(err), zap.Int64("id", record.ID))
				continue
			}
			p.Logger.Info("Queued submission synced", zap.Int64("id", record.ID))
			p.bridge.Broadcast(Notification{Kind: KindOfflineRequestSynced, RequestID: record.ID})

		case SendPermanentFailure:
			if err := p.store.Remove(record.ID); err != nil {
				p.Logger.Error("Error removing rejected submission", zap.Error(err), zap.Int64("id", record.ID))
				continue
			}
			p.Logger.Warn("Queued submission rejected by server", zap.Int64("id", record.ID))
			p.bridge.Broadcast(Notification{Kind: KindOfflineRequestFailed, RequestID: record.ID, Reason: "rejected_by_server"})

		case SendTransientFailure:
			// the failed attempt counts toward the budget; once it is used up
			// the record is removed rather than attempted a sixth time
			if record.RetryCount+1 >= record.MaxRetries {
				if err := p.store.Remove(record.ID); err != nil {
					p.Logger.Error("Error removing exhausted submission", zap.Error(err), zap.Int64("id", record.ID))
					continue
				}
				p.Logger.Warn("Queued submission exhausted its retries",
					zap.Int64("id", record.ID),
					zap.Int("maxRetries", record.MaxRetries))
				p.bridge.Broadcast(Notification{
					Kind:      KindOfflineRequestFailed,
					RequestID: record.ID,
					Reason:    ReasonMaxRetriesExceeded,
				})
				continue
			}
			if err := p.store.Update(record.ID, map[string]interface{}{"retryCount": record.RetryCount + 1}); err != nil {
				p.Logger.Error("Error updating retry count", zap.Error(err), zap.Int64("id", record.ID))
				continue
			}
			p.Logger.Info("Queued submission retry failed, will retry later",
				zap.Int64("id", record.ID),
				zap.Int("retryCount", record.RetryCount+1),
				zap.Int("maxRetries", record.MaxRetries))
		}
	}
}

func (p *QueueProcessor) queuedCount() int {
	records, err := p.store.ListAll()
	if err != nil {
		p.Logger.Error("Error counting queued submissions", zap.Error(err))
		return 0
	}
	return len(records)
}
