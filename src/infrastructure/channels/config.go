package channels

import (
	"fmt"
	"os"

	"pet-emergency-api/src/infrastructure/channels/email"
	"pet-emergency-api/src/infrastructure/channels/line"
	"pet-emergency-api/src/infrastructure/channels/whatsapp"

	"gopkg.in/yaml.v2"
)

// Config is the configuration for channel providers, loaded from a yaml file.
// A nil provider means the channel is disabled.
type Config struct {
	// WhatsApp is the configuration for the WhatsApp Business API provider
	WhatsApp *whatsapp.Provider `yaml:"whatsapp,omitempty"`

	// Email is the configuration for the SMTP email provider
	Email *email.Provider `yaml:"email,omitempty"`

	// Line is the configuration for the LINE Messaging API provider
	Line *line.Provider `yaml:"line,omitempty"`
}

// LoadConfig reads and validates the channel provider configuration. Providers
// that fail validation are dropped (disabled) rather than failing startup, so a
// misconfigured secondary channel never blocks the primary ones.
func LoadConfig(path string) (*Config, []error, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("reading channel config %s: %w", path, err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, nil, fmt.Errorf("parsing channel config %s: %w", path, err)
	}

	var dropped []error
	if config.WhatsApp != nil {
		if err := config.WhatsApp.Validate(); err != nil {
			dropped = append(dropped, fmt.Errorf("whatsapp: %w", err))
			config.WhatsApp = nil
		}
	}
	if config.Email != nil {
		if err := config.Email.Validate(); err != nil {
			dropped = append(dropped, fmt.Errorf("email: %w", err))
			config.Email = nil
		}
	}
	if config.Line != nil {
		if err := config.Line.Validate(); err != nil {
			dropped = append(dropped, fmt.Errorf("line: %w", err))
			config.Line = nil
		}
	}

	return &config, dropped, nil
}
