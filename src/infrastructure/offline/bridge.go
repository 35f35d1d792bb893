package offline

import (
	"sync"
	"time"

	domainErrors "pet-emergency-api/src/domain/errors"
	logger "pet-emergency-api/src/infrastructure/logger"

	"go.uber.org/zap"
)

// MessageKind tags every message crossing the bridge. Kinds are validated at
// the boundary and routed through a single dispatch table so handlers stay
// independently testable.
type MessageKind string

const (
	KindGetQueuedCount       MessageKind = "GET_QUEUED_COUNT"
	KindProcessQueue         MessageKind = "PROCESS_QUEUE"
	KindOfflineRequestQueued MessageKind = "OFFLINE_REQUEST_QUEUED"
	KindOfflineRequestSynced MessageKind = "OFFLINE_REQUEST_SYNCED"
	KindOfflineRequestFailed MessageKind = "OFFLINE_REQUEST_FAILED"
)

// ReasonMaxRetriesExceeded is the terminal failure reason attached to
// OFFLINE_REQUEST_FAILED when the retry budget runs out.
const ReasonMaxRetriesExceeded = "max_retries_exceeded"

// IsValid reports whether k is a known message kind
func (k MessageKind) IsValid() bool {
	switch k {
	case KindGetQueuedCount, KindProcessQueue,
		KindOfflineRequestQueued, KindOfflineRequestSynced, KindOfflineRequestFailed:
		return true
	}
	return false
}

// Notification is a fire-and-forget broadcast delivered to every open context
type Notification struct {
	Kind      MessageKind `json:"type"`
	RequestID int64       `json:"requestId,omitempty"`
	Reason    string      `json:"reason,omitempty"`
}

// CountRequest is a request/response query answered over Reply
type CountRequest struct {
	Reply chan int
}

func NewCountRequest() *CountRequest {
	return &CountRequest{Reply: make(chan int, 1)}
}

// Message is a context-emitted request routed through the dispatch table.
// Count carries the reply channel for GET_QUEUED_COUNT and is nil otherwise.
type Message struct {
	Kind  MessageKind
	Count *CountRequest
}

// CountHandler answers GET_QUEUED_COUNT queries
type CountHandler func() int

// TriggerHandler reacts to PROCESS_QUEUE triggers
type TriggerHandler func()

const defaultCountTimeout = 2 * time.Second

// Bridge keeps every open UI context consistent with the queue state. The
// worker side is the single source of truth; contexts are thin observers that
// subscribe for notifications and query counts through the bridge instead of
// re-deriving state from storage.
type Bridge struct {
	Logger *logger.Logger

	mu           sync.Mutex
	subscribers  map[int]chan Notification
	nextSub      int
	countHandler CountHandler
	trigger      TriggerHandler
	countTimeout time.Duration
}

func NewBridge(loggerInstance *logger.Logger) *Bridge {
	return &Bridge{
		Logger:       loggerInstance,
		subscribers:  make(map[int]chan Notification),
		countTimeout: defaultCountTimeout,
	}
}

// RegisterCountHandler installs the GET_QUEUED_COUNT responder (the queue processor)
func (b *Bridge) RegisterCountHandler(handler CountHandler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.countHandler = handler
}

// RegisterTriggerHandler installs the PROCESS_QUEUE handler (the queue processor)
func (b *Bridge) RegisterTriggerHandler(handler TriggerHandler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.trigger = handler
}

// Subscribe registers a context and returns its notification channel. The
// channel is buffered; a slow context drops notifications rather than blocking
// the bridge.
func (b *Bridge) Subscribe() (int, <-chan Notification) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextSub++
	id := b.nextSub
	ch := make(chan Notification, 16)
	b.subscribers[id] = ch
	return id, ch
}

// Unsubscribe removes a context registration
func (b *Bridge) Unsubscribe(id int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if ch, ok := b.subscribers[id]; ok {
		delete(b.subscribers, id)
		close(ch)
	}
}

// Dispatch validates and routes a message coming in from a context. Broadcast
// kinds are not accepted here: contexts observe, they do not emit.
func (b *Bridge) Dispatch(msg Message) error {
	if !msg.Kind.IsValid() {
		b.Logger.Warn("Dropping bridge message of unknown kind", zap.String("kind", string(msg.Kind)))
		return domainErrors.NewAppErrorWithType(domainErrors.ValidationError)
	}

	switch msg.Kind {
	case KindProcessQueue:
		b.mu.Lock()
		trigger := b.trigger
		b.mu.Unlock()
		if trigger != nil {
			trigger()
		}
		return nil
	case KindGetQueuedCount:
		if msg.Count == nil || msg.Count.Reply == nil {
			return domainErrors.NewAppErrorWithType(domainErrors.ValidationError)
		}
		select {
		case msg.Count.Reply <- b.QueuedCount():
		default:
		}
		return nil
	default:
		return domainErrors.NewAppErrorWithType(domainErrors.ValidationError)
	}
}

// QueuedCount asks the worker side for the current queue depth. The query is
// bounded: if no answer arrives within the timeout it degrades to zero instead
// of hanging the calling context.
func (b *Bridge) QueuedCount() int {
	b.mu.Lock()
	handler := b.countHandler
	timeout := b.countTimeout
	b.mu.Unlock()

	if handler == nil {
		return 0
	}

	reply := make(chan int, 1)
	go func() {
		reply <- handler()
	}()

	select {
	case count := <-reply:
		return count
	case <-time.After(timeout):
		b.Logger.Warn("Queued count query timed out, degrading to zero")
		return 0
	}
}

// Broadcast delivers a notification to every subscribed context without blocking
func (b *Bridge) Broadcast(n Notification) {
	if !n.Kind.IsValid() {
		b.Logger.Warn("Refusing to broadcast unknown notification kind", zap.String("kind", string(n.Kind)))
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	for id, ch := range b.subscribers {
		select {
		case ch <- n:
		default:
			b.Logger.Warn("Subscriber too slow, notification dropped", zap.Int("subscriberID", id))
		}
	}
}
