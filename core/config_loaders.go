package core

import (
	"context"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// YAMLConfigLoader reads the raw configuration tree from a YAML file.
type YAMLConfigLoader struct {
	Path     string
	ReadFile func(name string) ([]byte, error)
}

func (l YAMLConfigLoader) LoadRaw(context.Context) (map[string]any, error) {
	path := strings.TrimSpace(l.Path)
	if path == "" {
		return nil, fmt.Errorf("core: yaml config path is required")
	}
	readFile := l.ReadFile
	if readFile == nil {
		readFile = os.ReadFile
	}
	data, err := readFile(path)
	if err != nil {
		return nil, fmt.Errorf("core: read config %s: %w", path, err)
	}
	raw := map[string]any{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("core: parse config %s: %w", path, err)
	}
	return raw, nil
}

const DefaultEnvPrefix = "MAILHOOKS_"

// EnvConfigLoader reads configuration from environment variables:
//
//	<prefix>SERVICE_NAME
//	<prefix>MAILGUN_API_KEY (falls back to a bare MAILGUN_API_KEY)
//	<prefix>WEBHOOK_BASIC_AUTH (comma separated username:password list)
type EnvConfigLoader struct {
	Prefix string
	Lookup func(key string) (string, bool)
}

func (l EnvConfigLoader) LoadRaw(context.Context) (map[string]any, error) {
	prefix := l.Prefix
	if prefix == "" {
		prefix = DefaultEnvPrefix
	}
	lookup := l.Lookup
	if lookup == nil {
		lookup = os.LookupEnv
	}

	raw := map[string]any{}
	if value, ok := lookup(prefix + "SERVICE_NAME"); ok && strings.TrimSpace(value) != "" {
		raw["service_name"] = strings.TrimSpace(value)
	}

	apiKey, ok := lookup(prefix + "MAILGUN_API_KEY")
	if !ok {
		apiKey, ok = lookup("MAILGUN_API_KEY")
	}
	if ok && strings.TrimSpace(apiKey) != "" {
		raw["mailgun"] = map[string]any{"api_key": apiKey}
	}

	if value, ok := lookup(prefix + "WEBHOOK_BASIC_AUTH"); ok {
		credentials := make([]any, 0)
		for _, credential := range strings.Split(value, ",") {
			if credential = strings.TrimSpace(credential); credential != "" {
				credentials = append(credentials, credential)
			}
		}
		if len(credentials) > 0 {
			raw["webhook"] = map[string]any{"basic_auth": credentials}
		}
	}
	return raw, nil
}

// ChainConfigLoader merges the raw trees of several loaders; later loaders
// override earlier ones key by key.
type ChainConfigLoader []RawConfigLoader

func (c ChainConfigLoader) LoadRaw(ctx context.Context) (map[string]any, error) {
	merged := map[string]any{}
	for _, loader := range c {
		if loader == nil {
			continue
		}
		raw, err := loader.LoadRaw(ctx)
		if err != nil {
			return nil, err
		}
		mergeRaw(merged, raw)
	}
	return merged, nil
}

func mergeRaw(dst map[string]any, src map[string]any) {
	for key, value := range src {
		nested, ok := value.(map[string]any)
		if !ok {
			dst[key] = value
			continue
		}
		existing, ok := dst[key].(map[string]any)
		if !ok {
			existing = map[string]any{}
		}
		mergeRaw(existing, nested)
		dst[key] = existing
	}
}
