package whatsapp

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

const defaultTimeout = 15 * time.Second

// Provider sends broadcast messages through the WhatsApp Business Cloud API
type Provider struct {
	APIURL        string `yaml:"api-url"`
	PhoneNumberID string `yaml:"phone-number-id"`
	AccessToken   string `yaml:"access-token"`

	client *http.Client
}

// Validate the provider's configuration
func (p *Provider) Validate() error {
	if p.APIURL == "" {
		return errors.New("whatsapp provider requires api-url")
	}
	if p.PhoneNumberID == "" || p.AccessToken == "" {
		return errors.New("whatsapp provider requires phone-number-id and access-token")
	}
	return nil
}

// Send pushes one text message to the hospital's WhatsApp number. The provider
// message id from the response is returned for callback correlation.
func (p *Provider) Send(recipient, content, reference string) (string, error) {
	payload, _ := sjson.Set("", "messaging_product", "whatsapp")
	payload, _ = sjson.Set(payload, "to", recipient)
	payload, _ = sjson.Set(payload, "type", "text")
	payload, _ = sjson.Set(payload, "text.body", content)
	payload, _ = sjson.Set(payload, "biz_opaque_callback_data", reference)

	url := fmt.Sprintf("%s/%s/messages", p.APIURL, p.PhoneNumberID)
	req, err := http.NewRequest(http.MethodPost, url, bytes.NewBufferString(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.AccessToken)

	resp, err := p.httpClient().Do(req)
	if err != nil {
		return "", fmt.Errorf("whatsapp send to %s: %w", recipient, err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode >= http.StatusBadRequest {
		apiError := gjson.GetBytes(body, "error.message").String()
		if apiError == "" {
			apiError = string(body)
		}
		return "", fmt.Errorf("whatsapp api returned %d: %s", resp.StatusCode, apiError)
	}

	return gjson.GetBytes(body, "messages.0.id").String(), nil
}

func (p *Provider) httpClient() *http.Client {
	if p.client == nil {
		p.client = &http.Client{Timeout: defaultTimeout}
	}
	return p.client
}
