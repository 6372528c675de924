package core

import (
	"fmt"
	"strings"
)

type WebhookConfig struct {
	// BasicAuth holds "username:password" credentials accepted on webhook
	// calls. Empty disables the basic auth check.
	BasicAuth []string `koanf:"basic_auth" mapstructure:"basic_auth" yaml:"basic_auth"`
}

type MailgunConfig struct {
	APIKey string `koanf:"api_key" mapstructure:"api_key" yaml:"api_key"`
}

type Config struct {
	ServiceName string        `koanf:"service_name" mapstructure:"service_name" yaml:"service_name"`
	Webhook     WebhookConfig `koanf:"webhook" mapstructure:"webhook" yaml:"webhook"`
	Mailgun     MailgunConfig `koanf:"mailgun" mapstructure:"mailgun" yaml:"mailgun"`
}

func DefaultConfig() Config {
	return Config{
		ServiceName: "mailhooks",
		Webhook:     WebhookConfig{},
		Mailgun:     MailgunConfig{},
	}
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.ServiceName) == "" {
		return fmt.Errorf("core: service_name is required")
	}
	for i, credential := range c.Webhook.BasicAuth {
		if !strings.Contains(credential, ":") {
			return fmt.Errorf("core: webhook.basic_auth[%d] must be formatted as username:password", i)
		}
	}
	return nil
}
