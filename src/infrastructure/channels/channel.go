package channels

import (
	domainEmergency "pet-emergency-api/src/domain/emergency"
	"pet-emergency-api/src/infrastructure/channels/email"
	"pet-emergency-api/src/infrastructure/channels/line"
	"pet-emergency-api/src/infrastructure/channels/whatsapp"
)

// ChannelProvider is the interface each outbound channel implements
type ChannelProvider interface {
	// Validate the provider's configuration
	Validate() error

	// Send delivers one broadcast message and returns the provider-side
	// message identifier when the provider exposes one
	Send(recipient, content, reference string) (string, error)
}

var (
	// Validate provider interface implementation on compile
	_ ChannelProvider = (*whatsapp.Provider)(nil)
	_ ChannelProvider = (*email.Provider)(nil)
	_ ChannelProvider = (*line.Provider)(nil)
)

// Registry resolves a provider for a channel, hiding nil (disabled) providers
type Registry struct {
	config *Config
}

func NewRegistry(config *Config) *Registry {
	return &Registry{config: config}
}

// ProviderByChannel returns the configured provider for the channel, or nil
// when the channel is not enabled in the configuration
func (r *Registry) ProviderByChannel(channel domainEmergency.Channel) ChannelProvider {
	switch channel {
	case domainEmergency.ChannelWhatsApp:
		if r.config.WhatsApp == nil {
			return nil
		}
		return r.config.WhatsApp
	case domainEmergency.ChannelEmail:
		if r.config.Email == nil {
			return nil
		}
		return r.config.Email
	case domainEmergency.ChannelLine:
		if r.config.Line == nil {
			return nil
		}
		return r.config.Line
	}
	return nil
}

// EnabledChannels returns the channels with a valid provider configured, in
// the fixed fan-out order
func (r *Registry) EnabledChannels() []domainEmergency.Channel {
	enabled := make([]domainEmergency.Channel, 0, len(domainEmergency.AllChannels))
	for _, channel := range domainEmergency.AllChannels {
		if r.ProviderByChannel(channel) != nil {
			enabled = append(enabled, channel)
		}
	}
	return enabled
}
