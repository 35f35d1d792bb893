package ranking

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"time"

	domainEmergency "pet-emergency-api/src/domain/emergency"
	"pet-emergency-api/src/domain/hospital"
	logger "pet-emergency-api/src/infrastructure/logger"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

const defaultTimeout = 15 * time.Second

// Client calls the hospital ranking service to obtain the ordered candidate
// list for an emergency. Ranking logic (distance, specialty, load) lives in
// that service; this is only the boundary.
type Client struct {
	BaseURL string
	Logger  *logger.Logger
	client  *http.Client
}

func NewClient(baseURL string, loggerInstance *logger.Logger) hospital.RankingService {
	return &Client{
		BaseURL: baseURL,
		Logger:  loggerInstance,
		client:  &http.Client{Timeout: defaultTimeout},
	}
}

func (c *Client) RankCandidates(request *domainEmergency.EmergencyRequest) ([]hospital.Candidate, error) {
	payload, _ := sjson.Set("", "emergency_request_id", request.ID)
	payload, _ = sjson.Set(payload, "species", request.Species)
	payload, _ = sjson.Set(payload, "symptom", request.Symptom)

	url := fmt.Sprintf("%s/v1/rank", c.BaseURL)
	req, err := http.NewRequest(http.MethodPost, url, bytes.NewBufferString(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ranking service: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode >= http.StatusBadRequest {
		return nil, fmt.Errorf("ranking service returned %d: %s", resp.StatusCode, string(body))
	}

	var candidates []hospital.Candidate
	gjson.GetBytes(body, "candidates").ForEach(func(_, value gjson.Result) bool {
		candidates = append(candidates, hospital.Candidate{
			ID:             int(value.Get("id").Int()),
			Name:           value.Get("name").String(),
			WhatsAppNumber: value.Get("whatsapp_number").String(),
			EmailAddress:   value.Get("email_address").String(),
			LineID:         value.Get("line_id").String(),
		})
		return true
	})
	return candidates, nil
}
