package core

import (
	"net/url"
	"strings"
)

const RedactedValue = "[REDACTED]"

// RedactSensitiveMap copies metadata with credential-bearing values replaced,
// descending into nested maps, lists and form values. Routing keys such as
// provider_id and request_id always stay visible.
func RedactSensitiveMap(metadata map[string]any) map[string]any {
	if len(metadata) == 0 {
		return map[string]any{}
	}
	return redactSensitiveMap(metadata)
}

func redactSensitiveMap(source map[string]any) map[string]any {
	target := make(map[string]any, len(source))
	for key, value := range source {
		if shouldRedactKey(key) {
			target[key] = RedactedValue
			continue
		}
		target[key] = redactSensitiveValue(value)
	}
	return target
}

func redactSensitiveValue(value any) any {
	switch typed := value.(type) {
	case map[string]any:
		return redactSensitiveMap(typed)
	case []any:
		out := make([]any, len(typed))
		for i := range typed {
			out[i] = redactSensitiveValue(typed[i])
		}
		return out
	case url.Values:
		out := make(url.Values, len(typed))
		for key, values := range typed {
			if shouldRedactKey(key) {
				out[key] = []string{RedactedValue}
				continue
			}
			out[key] = append([]string(nil), values...)
		}
		return out
	default:
		return value
	}
}

func shouldRedactKey(key string) bool {
	key = strings.ToLower(strings.TrimSpace(key))
	if key == "" || isRoutingKey(key) {
		return false
	}
	sensitiveTokens := []string{
		"password",
		"secret",
		"token",
		"authorization",
		"api_key",
		"apikey",
		"basic_auth",
		"credential",
		"signature",
	}
	for _, token := range sensitiveTokens {
		if strings.Contains(key, token) {
			return true
		}
	}
	return false
}

func isRoutingKey(key string) bool {
	switch key {
	case "provider_id",
		"surface",
		"request_id",
		"event_id",
		"message_id",
		"status_code",
		"error_code":
		return true
	default:
		return false
	}
}
