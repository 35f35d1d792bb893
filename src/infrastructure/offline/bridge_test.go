package offline

import (
	"testing"
	"time"

	domainErrors "pet-emergency-api/src/domain/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMessageKindValidation(t *testing.T) {
	assert.True(t, KindGetQueuedCount.IsValid())
	assert.True(t, KindProcessQueue.IsValid())
	assert.True(t, KindOfflineRequestQueued.IsValid())
	assert.True(t, KindOfflineRequestSynced.IsValid())
	assert.True(t, KindOfflineRequestFailed.IsValid())
	assert.False(t, MessageKind("SOMETHING_ELSE").IsValid())
	assert.False(t, MessageKind("").IsValid())
}

func TestDispatchRejectsUnknownKind(t *testing.T) {
	bridge := NewBridge(setupLogger(t))

	err := bridge.Dispatch(Message{Kind: MessageKind("BOGUS")})
	require.Error(t, err)
	appErr, ok := err.(*domainErrors.AppError)
	require.True(t, ok)
	assert.Equal(t, domainErrors.ValidationError, appErr.Type)
}

func TestDispatchProcessQueueInvokesTrigger(t *testing.T) {
	bridge := NewBridge(setupLogger(t))

	triggered := 0
	bridge.RegisterTriggerHandler(func() { triggered++ })

	require.NoError(t, bridge.Dispatch(Message{Kind: KindProcessQueue}))
	assert.Equal(t, 1, triggered)
}

func TestDispatchQueuedCountAnswersOverReply(t *testing.T) {
	bridge := NewBridge(setupLogger(t))
	bridge.RegisterCountHandler(func() int { return 4 })

	request := NewCountRequest()
	require.NoError(t, bridge.Dispatch(Message{Kind: KindGetQueuedCount, Count: request}))

	select {
	case count := <-request.Reply:
		assert.Equal(t, 4, count)
	default:
		t.Fatal("count request was not answered")
	}
}

func TestDispatchQueuedCountWithoutReplyChannel(t *testing.T) {
	bridge := NewBridge(setupLogger(t))

	err := bridge.Dispatch(Message{Kind: KindGetQueuedCount})
	require.Error(t, err)
	appErr, ok := err.(*domainErrors.AppError)
	require.True(t, ok)
	assert.Equal(t, domainErrors.ValidationError, appErr.Type)
}

func TestDispatchRejectsBroadcastKinds(t *testing.T) {
	bridge := NewBridge(setupLogger(t))

	// observers cannot emit state-change notifications themselves
	err := bridge.Dispatch(Message{Kind: KindOfflineRequestSynced})
	require.Error(t, err)
}

func TestQueuedCountWithoutHandlerIsZero(t *testing.T) {
	bridge := NewBridge(setupLogger(t))
	assert.Equal(t, 0, bridge.QueuedCount())
}

func TestQueuedCountReturnsHandlerValue(t *testing.T) {
	bridge := NewBridge(setupLogger(t))
	bridge.RegisterCountHandler(func() int { return 7 })
	assert.Equal(t, 7, bridge.QueuedCount())
}

func TestQueuedCountDegradesToZeroOnTimeout(t *testing.T) {
	bridge := NewBridge(setupLogger(t))
	bridge.countTimeout = 20 * time.Millisecond

	release := make(chan struct{})
	defer close(release)
	bridge.RegisterCountHandler(func() int {
		<-release
		return 99
	})

	assert.Equal(t, 0, bridge.QueuedCount())
}

func TestBroadcastReachesAllSubscribers(t *testing.T) {
	bridge := NewBridge(setupLogger(t))

	_, first := bridge.Subscribe()
	_, second := bridge.Subscribe()

	bridge.Broadcast(Notification{Kind: KindOfflineRequestSynced, RequestID: 12})

	for _, ch := range []<-chan Notification{first, second} {
		select {
		case n := <-ch:
			assert.Equal(t, KindOfflineRequestSynced, n.Kind)
			assert.Equal(t, int64(12), n.RequestID)
		default:
			t.Fatal("subscriber did not receive the notification")
		}
	}
}

func TestBroadcastSkipsUnsubscribedContext(t *testing.T) {
	bridge := NewBridge(setupLogger(t))

	id, ch := bridge.Subscribe()
	bridge.Unsubscribe(id)

	bridge.Broadcast(Notification{Kind: KindOfflineRequestQueued, RequestID: 3})

	_, open := <-ch
	assert.False(t, open)
}

func TestBroadcastDoesNotBlockOnSlowSubscriber(t *testing.T) {
	bridge := NewBridge(setupLogger(t))
	_, ch := bridge.Subscribe()

	// overflow the buffer; the bridge drops instead of blocking
	for i := 0; i < 32; i++ {
		bridge.Broadcast(Notification{Kind: KindOfflineRequestSynced, RequestID: int64(i)})
	}

	assert.Len(t, ch, 16)
}

func TestBroadcastRefusesUnknownKind(t *testing.T) {
	bridge := NewBridge(setupLogger(t))
	_, ch := bridge.Subscribe()

	bridge.Broadcast(Notification{Kind: MessageKind("BOGUS")})
	assert.Empty(t, ch)
}
