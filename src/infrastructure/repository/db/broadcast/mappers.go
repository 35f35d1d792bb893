package broadcast

import (
	domainEmergency "pet-emergency-api/src/domain/emergency"
)

func (m *BroadcastMessage) toDomainMapper() *domainEmergency.BroadcastMessage {
	return &domainEmergency.BroadcastMessage{
		ID:                 m.ID,
		Reference:          m.Reference,
		EmergencyRequestID: m.EmergencyRequestID,
		HospitalID:         m.HospitalID,
		Channel:            domainEmergency.Channel(m.Channel),
		Recipient:          m.Recipient,
		Content:            m.Content,
		Status:             domainEmergency.Status(m.Status),
		RetryCount:         m.RetryCount,
		ErrorMessage:       m.ErrorMessage,
		CreatedAt:          m.CreatedAt,
		UpdatedAt:          m.UpdatedAt,
		SentAt:             m.SentAt,
		DeliveredAt:        m.DeliveredAt,
		ReadAt:             m.ReadAt,
		FailedAt:           m.FailedAt,
	}
}

func broadcastMessageFromDomainMapper(m *domainEmergency.BroadcastMessage) *BroadcastMessage {
	return &BroadcastMessage{
		ID:                 m.ID,
		Reference:          m.Reference,
		EmergencyRequestID: m.EmergencyRequestID,
		HospitalID:         m.HospitalID,
		Channel:            string(m.Channel),
		Recipient:          m.Recipient,
		Content:            m.Content,
		Status:             string(m.Status),
		RetryCount:         m.RetryCount,
		ErrorMessage:       m.ErrorMessage,
		SentAt:             m.SentAt,
		DeliveredAt:        m.DeliveredAt,
		ReadAt:             m.ReadAt,
		FailedAt:           m.FailedAt,
	}
}

func broadcastMessageArrayToDomainMapper(messages *[]BroadcastMessage) *[]domainEmergency.BroadcastMessage {
	out := make([]domainEmergency.BroadcastMessage, len(*messages))
	for i := range *messages {
		out[i] = *(*messages)[i].toDomainMapper()
	}
	return &out
}
