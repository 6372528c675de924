package mailgun

import "github.com/goliatone/go-mailhooks/webhooks"

// NewSignatureVerifier checks hex(HMAC-SHA256(apiKey, timestamp+token))
// against the signature field.
func NewSignatureVerifier(apiKey string) webhooks.FormHMACVerifier {
	return webhooks.FormHMACVerifier{
		Fields:         []string{fieldTimestamp, fieldToken},
		SignatureField: fieldSignature,
		Secret:         apiKey,
		Encoding:       "hex",
	}
}

// NewVerifier runs the optional basic auth check before the signature check.
func NewVerifier(cfg Config) webhooks.Verifier {
	return webhooks.ChainVerifiers(
		webhooks.BasicAuthVerifier{Credentials: cfg.BasicAuth},
		NewSignatureVerifier(cfg.APIKey),
	)
}
