package mailgun

import (
	"strings"

	"github.com/goliatone/go-mailhooks/core"
)

const ProviderID = "mailgun"

type Config struct {
	// APIKey is the shared secret used to sign webhook calls. It is used
	// as configured, surrounding whitespace included.
	APIKey    string
	BasicAuth []string
}

func DefaultConfig(apiKey string) Config {
	return Config{APIKey: apiKey}
}

func ConfigFromCore(cfg core.Config) Config {
	return Config{
		APIKey:    cfg.Mailgun.APIKey,
		BasicAuth: append([]string(nil), cfg.Webhook.BasicAuth...),
	}
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.APIKey) == "" {
		return core.ConfigInvalid("providers/mailgun: api key is required", map[string]any{
			"provider_id": ProviderID,
			"setting":     "mailgun.api_key",
		})
	}
	return nil
}
