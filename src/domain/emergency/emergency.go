package emergency

import (
	"time"
)

// Channel is a delivery medium for one broadcast message
type Channel string

const (
	ChannelWhatsApp Channel = "whatsapp"
	ChannelEmail    Channel = "email"
	ChannelLine     Channel = "line"
)

// AllChannels lists every channel the dispatcher may fan out over, in a fixed order
var AllChannels = []Channel{ChannelWhatsApp, ChannelEmail, ChannelLine}

// IsValid reports whether c is a known channel
func (c Channel) IsValid() bool {
	switch c {
	case ChannelWhatsApp, ChannelEmail, ChannelLine:
		return true
	}
	return false
}

// Status is the delivery lifecycle state of a broadcast message
type Status string

const (
	StatusQueued    Status = "queued"
	StatusSent      Status = "sent"
	StatusDelivered Status = "delivered"
	StatusRead      Status = "read"
	StatusFailed    Status = "failed"
)

// statusRank orders the happy-path lifecycle. failed sits outside the ordering
// and is handled explicitly by CanTransition.
var statusRank = map[Status]int{
	StatusQueued:    0,
	StatusSent:      1,
	StatusDelivered: 2,
	StatusRead:      3,
}

// Rank returns the position of s in the lifecycle ordering, or -1 for failed.
func (s Status) Rank() int {
	if r, ok := statusRank[s]; ok {
		return r
	}
	return -1
}

// CanTransition reports whether moving from current to next is a legal, forward
// transition. Provider callbacks can arrive out of order, so anything that would
// regress the ordering queued < sent < delivered < read is rejected. failed is
// reachable from queued and sent only.
func CanTransition(current, next Status) bool {
	if current == next {
		return false
	}
	if next == StatusFailed {
		return current == StatusQueued || current == StatusSent
	}
	if current == StatusFailed {
		// only an operator retry resets a failed message, and that goes back to queued
		return next == StatusQueued
	}
	return next.Rank() > current.Rank()
}

// EmergencyRequest is one owner-submitted emergency. It owns the broadcast
// messages fanned out to candidate hospitals.
type EmergencyRequest struct {
	ID           int
	PetName      string
	Species      string
	Symptom      string
	OwnerName    string
	OwnerContact string
	// ShareMedicalRecords signals that the consent service may be asked for
	// medical context to embed in rendered messages.
	ShareMedicalRecords bool
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// BroadcastMessage is one outbound notification unit: one hospital, one channel,
// one emergency request. Rows are never deleted; they are the audit trail.
type BroadcastMessage struct {
	ID                 int
	Reference          string // uuid echoed back by provider callbacks
	EmergencyRequestID int
	HospitalID         int
	Channel            Channel
	Recipient          string
	Content            string
	Status             Status
	RetryCount         int
	ErrorMessage       string
	CreatedAt          time.Time
	UpdatedAt          time.Time
	SentAt             *time.Time
	DeliveredAt        *time.Time
	ReadAt             *time.Time
	FailedAt           *time.Time
}

// StatusCounts is the aggregated per-request view polled by the UI
type StatusCounts struct {
	Total     int
	Queued    int
	Sent      int
	Delivered int
	Read      int
	Failed    int
}

// ChannelStats is a per-channel breakdown for the operator dashboard
type ChannelStats struct {
	Channel Channel
	Counts  StatusCounts
}
