package messages

// ListMessagesRequest filters the operator message list
type ListMessagesRequest struct {
	RequestID int    `form:"request_id"`
	Status    string `form:"status" binding:"omitempty,oneof=queued sent delivered read failed"`
}

// MessageResponse is one broadcast message on the operator surface
type MessageResponse struct {
	ID                 int    `json:"id"`
	Reference          string `json:"reference"`
	EmergencyRequestID int    `json:"emergency_request_id"`
	HospitalID         int    `json:"hospital_id"`
	Channel            string `json:"channel"`
	Recipient          string `json:"recipient"`
	Status             string `json:"status"`
	RetryCount         int    `json:"retry_count"`
	ErrorMessage       string `json:"error_message,omitempty"`
	CreatedAt          string `json:"created_at"`
	SentAt             string `json:"sent_at,omitempty"`
	DeliveredAt        string `json:"delivered_at,omitempty"`
	ReadAt             string `json:"read_at,omitempty"`
	FailedAt           string `json:"failed_at,omitempty"`
}

// RetryRequest identifies the message being retried
type RetryRequest struct {
	ID int `uri:"id" binding:"required"`
}

// StatsRequest filters statistics to one request; zero means all
type StatsRequest struct {
	RequestID int `form:"request_id"`
}

// ChannelStatsResponse is one channel's breakdown in the stats endpoint
type ChannelStatsResponse struct {
	Channel   string `json:"channel"`
	Total     int    `json:"total"`
	Queued    int    `json:"queued"`
	Sent      int    `json:"sent"`
	Delivered int    `json:"delivered"`
	Read      int    `json:"read"`
	Failed    int    `json:"failed"`
}

// CallbackRequest is the provider webhook payload
type CallbackRequest struct {
	Reference    string `json:"reference" binding:"required"`
	Event        string `json:"event" binding:"required,oneof=sent delivered read failed"`
	ErrorMessage string `json:"error,omitempty"`
}
