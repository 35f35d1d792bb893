package consentclient

import (
	"fmt"
	"io"
	"net/http"
	"time"

	"pet-emergency-api/src/domain/consent"
	logger "pet-emergency-api/src/infrastructure/logger"

	"github.com/tidwall/gjson"
)

const defaultTimeout = 15 * time.Second

// Client fetches the consented medical context from the medical-record
// service. Consent storage and revocation live there; this only reads the
// boundary at dispatch time.
type Client struct {
	BaseURL string
	Logger  *logger.Logger
	client  *http.Client
}

func NewClient(baseURL string, loggerInstance *logger.Logger) consent.Service {
	return &Client{
		BaseURL: baseURL,
		Logger:  loggerInstance,
		client:  &http.Client{Timeout: defaultTimeout},
	}
}

func (c *Client) MedicalContextFor(emergencyRequestID int) (*consent.MedicalContext, error) {
	url := fmt.Sprintf("%s/v1/medical-context/%d", c.BaseURL, emergencyRequestID)
	resp, err := c.client.Get(url)
	if err != nil {
		return nil, fmt.Errorf("consent service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		// no consent on record; dispatch proceeds without context
		return nil, nil
	}

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode >= http.StatusBadRequest {
		return nil, fmt.Errorf("consent service returned %d: %s", resp.StatusCode, string(body))
	}

	return &consent.MedicalContext{
		Summary:     gjson.GetBytes(body, "summary").String(),
		RecordsLink: gjson.GetBytes(body, "records_link").String(),
	}, nil
}

// Disabled is the consent service used when no URL is configured. It reports
// no context for every request.
type Disabled struct{}

func NewDisabled() consent.Service { return &Disabled{} }

func (Disabled) MedicalContextFor(int) (*consent.MedicalContext, error) {
	return nil, nil
}
