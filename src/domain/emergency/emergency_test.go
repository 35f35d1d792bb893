package emergency

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestChannelIsValid(t *testing.T) {
	assert.True(t, ChannelWhatsApp.IsValid())
	assert.True(t, ChannelEmail.IsValid())
	assert.True(t, ChannelLine.IsValid())
	assert.False(t, Channel("sms").IsValid())
	assert.False(t, Channel("").IsValid())
}

func TestCanTransitionForward(t *testing.T) {
	assert.True(t, CanTransition(StatusQueued, StatusSent))
	assert.True(t, CanTransition(StatusSent, StatusDelivered))
	assert.True(t, CanTransition(StatusDelivered, StatusRead))

	// skipping intermediate states is still a forward move
	assert.True(t, CanTransition(StatusQueued, StatusDelivered))
	assert.True(t, CanTransition(StatusQueued, StatusRead))
	assert.True(t, CanTransition(StatusSent, StatusRead))
}

func TestCanTransitionRejectsRegressions(t *testing.T) {
	assert.False(t, CanTransition(StatusDelivered, StatusSent))
	assert.False(t, CanTransition(StatusRead, StatusDelivered))
	assert.False(t, CanTransition(StatusRead, StatusSent))
	assert.False(t, CanTransition(StatusSent, StatusQueued))
}

func TestCanTransitionSelfIsNoop(t *testing.T) {
	for _, s := range []Status{StatusQueued, StatusSent, StatusDelivered, StatusRead, StatusFailed} {
		assert.False(t, CanTransition(s, s), "self transition for %s", s)
	}
}

func TestCanTransitionFailed(t *testing.T) {
	assert.True(t, CanTransition(StatusQueued, StatusFailed))
	assert.True(t, CanTransition(StatusSent, StatusFailed))

	// delivered and read messages already reached the hospital
	assert.False(t, CanTransition(StatusDelivered, StatusFailed))
	assert.False(t, CanTransition(StatusRead, StatusFailed))

	// operator retry is the only way out of failed
	assert.True(t, CanTransition(StatusFailed, StatusQueued))
	assert.False(t, CanTransition(StatusFailed, StatusSent))
	assert.False(t, CanTransition(StatusFailed, StatusDelivered))
	assert.False(t, CanTransition(StatusFailed, StatusRead))
}
