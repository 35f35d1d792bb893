package hospital

import "pet-emergency-api/src/domain/emergency"

// Candidate is one hospital selected by the ranking service for an emergency.
// Contact addresses may be empty; a candidate without any reachable channel
// simply produces no broadcast messages.
type Candidate struct {
	ID             int
	Name           string
	WhatsAppNumber string
	EmailAddress   string
	LineID         string
}

// Recipient returns the candidate's address for the given channel, or "" when
// the hospital cannot be reached over it.
func (c Candidate) Recipient(channel emergency.Channel) string {
	switch channel {
	case emergency.ChannelWhatsApp:
		return c.WhatsAppNumber
	case emergency.ChannelEmail:
		return c.EmailAddress
	case emergency.ChannelLine:
		return c.LineID
	}
	return ""
}

// RankingService supplies the ranked candidate list consumed by the broadcast
// dispatcher. Candidate selection itself (distance, specialty, load) lives in a
// separate service and is not part of this repository.
type RankingService interface {
	RankCandidates(request *emergency.EmergencyRequest) ([]Candidate, error)
}
