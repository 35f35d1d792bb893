package emergency

// CreateEmergencyRequest is the owner-facing submission payload
type CreateEmergencyRequest struct {
	PetName             string `json:"pet_name" binding:"required,max=100"`
	Species             string `json:"species" binding:"required,max=50"`
	Symptom             string `json:"symptom" binding:"required,min=3"`
	OwnerName           string `json:"owner_name" binding:"required,max=100"`
	OwnerContact        string `json:"owner_contact" binding:"required,max=100"`
	ShareMedicalRecords bool   `json:"share_medical_records"`
}

// CreateEmergencyResponse returns the created request and its fan-out summary
type CreateEmergencyResponse struct {
	ID                 int    `json:"id"`
	PetName            string `json:"pet_name"`
	Symptom            string `json:"symptom"`
	CreatedAt          string `json:"created_at"`
	MessagesDispatched int    `json:"messages_dispatched"`
}

// StatusRequest identifies the request being polled
type StatusRequest struct {
	ID int `uri:"id" binding:"required"`
}

// StatusResponse is the aggregated delivery progress polled by the UI
type StatusResponse struct {
	EmergencyRequestID int `json:"emergency_request_id"`
	Total              int `json:"total"`
	Queued             int `json:"queued"`
	Sent               int `json:"sent"`
	Delivered          int `json:"delivered"`
	Read               int `json:"read"`
	Failed             int `json:"failed"`
}
