package webhooks

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"strings"

	"github.com/goliatone/go-mailhooks/core"
)

type Verifier interface {
	Verify(ctx context.Context, req core.InboundRequest) error
}

type VerifierFunc func(ctx context.Context, req core.InboundRequest) error

func (f VerifierFunc) Verify(ctx context.Context, req core.InboundRequest) error {
	if f == nil {
		return nil
	}
	return f(ctx, req)
}

// FormHMACVerifier checks an HMAC-SHA256 signature carried in a form field.
// The signed message is the concatenation of Fields values, in order. Secret
// is used exactly as configured.
type FormHMACVerifier struct {
	Fields         []string
	SignatureField string
	Secret         string
	Encoding       string // hex | base64
}

func (v FormHMACVerifier) Verify(_ context.Context, req core.InboundRequest) error {
	if strings.TrimSpace(v.Secret) == "" {
		return core.ConfigInvalid("webhooks: signature secret is required", nil)
	}
	signatureField := strings.TrimSpace(v.SignatureField)
	if signatureField == "" || len(v.Fields) == 0 {
		return core.ConfigInvalid("webhooks: signature fields are required", nil)
	}

	missing := []string{}
	parts := make([]string, 0, len(v.Fields))
	for _, field := range v.Fields {
		value, ok := formValue(req, field)
		if !ok {
			missing = append(missing, field)
			continue
		}
		parts = append(parts, value)
	}
	signature, ok := formValue(req, signatureField)
	if !ok {
		missing = append(missing, signatureField)
	}
	if len(missing) > 0 {
		return core.ValidationFailure(
			"webhooks: webhook called without required security fields",
			map[string]any{"provider_id": req.ProviderID, "missing_fields": missing},
		)
	}

	mac := hmac.New(sha256.New, []byte(v.Secret))
	_, _ = mac.Write([]byte(strings.Join(parts, "")))
	digest := mac.Sum(nil)

	var expected string
	switch strings.ToLower(strings.TrimSpace(v.Encoding)) {
	case "base64":
		expected = base64.StdEncoding.EncodeToString(digest)
	default:
		expected = hex.EncodeToString(digest)
	}
	if subtle.ConstantTimeCompare([]byte(signature), []byte(expected)) != 1 {
		return core.ValidationFailure(
			"webhooks: webhook called with incorrect signature",
			map[string]any{"provider_id": req.ProviderID},
		)
	}
	return nil
}

// BasicAuthVerifier accepts calls carrying any of the configured
// "username:password" credentials. No credentials disables the check.
type BasicAuthVerifier struct {
	Credentials []string
}

func (v BasicAuthVerifier) Verify(_ context.Context, req core.InboundRequest) error {
	if len(v.Credentials) == 0 {
		return nil
	}
	provided, ok := requestBasicAuth(req)
	if ok {
		matched := 0
		for _, credential := range v.Credentials {
			matched |= subtle.ConstantTimeCompare([]byte(provided), []byte(credential))
		}
		if matched == 1 {
			return nil
		}
	}
	return core.ValidationFailure(
		"webhooks: missing or invalid basic auth",
		map[string]any{"provider_id": req.ProviderID},
	)
}

func requestBasicAuth(req core.InboundRequest) (string, bool) {
	header := req.Header("Authorization")
	scheme, encoded, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "basic") {
		return "", false
	}
	decoded, err := base64.StdEncoding.DecodeString(strings.TrimSpace(encoded))
	if err != nil {
		return "", false
	}
	return string(decoded), true
}

type chainVerifier []Verifier

func (c chainVerifier) Verify(ctx context.Context, req core.InboundRequest) error {
	for _, verifier := range c {
		if verifier == nil {
			continue
		}
		if err := verifier.Verify(ctx, req); err != nil {
			return err
		}
	}
	return nil
}

// ChainVerifiers runs verifiers in order and stops at the first failure.
func ChainVerifiers(verifiers ...Verifier) Verifier {
	return chainVerifier(append([]Verifier(nil), verifiers...))
}

// formValue returns the last submitted value of field.
func formValue(req core.InboundRequest, field string) (string, bool) {
	values, ok := req.Form[field]
	if !ok || len(values) == 0 {
		return "", false
	}
	return values[len(values)-1], true
}
