package line

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

// Provider sends broadcast messages through the LINE Messaging API push endpoint
type Provider struct {
	APIURL             string `yaml:"api-url"`
	ChannelAccessToken string `yaml:"channel-access-token"`

	client *http.Client
}

// Validate the provider's configuration
func (p *Provider) Validate() error {
	if p.APIURL == "" {
		return errors.New("line provider requires api-url")
	}
	if p.ChannelAccessToken == "" {
		return errors.New("line provider requires channel-access-token")
	}
	return nil
}

// Send pushes one text message to the hospital's LINE account
func (p *Provider) Send(recipient, content, reference string) (string, error) {
	payload, _ := sjson.Set("", "to", recipient)
	payload, _ = sjson.Set(payload, "messages.0.type", "text")
	payload, _ = sjson.Set(payload, "messages.0.text", content)
	payload, _ = sjson.Set(payload, "customAggregationUnits.0", reference)

	req, err := http.NewRequest(http.MethodPost, p.APIURL+"/v2/bot/message/push", bytes.NewBufferString(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.ChannelAccessToken)
	req.Header.Set("X-Line-Retry-Key", reference)

	resp, err := p.httpClient().Do(req)
	if err != nil {
		return "", fmt.Errorf("line push to %s: %w", recipient, err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode >= http.StatusBadRequest {
		apiError := gjson.GetBytes(body, "message").String()
		if apiError == "" {
			apiError = string(body)
		}
		return "", fmt.Errorf("line api returned %d: %s", resp.StatusCode, apiError)
	}

	return gjson.GetBytes(body, "sentMessages.0.id").String(), nil
}

func (p *Provider) httpClient() *http.Client {
	if p.client == nil {
		p.client = &http.Client{Timeout: defaultTimeout}
	}
	return p.client
}
