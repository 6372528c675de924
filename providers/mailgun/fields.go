package mailgun

import "net/url"

// Field names are part of Mailgun's webhook contract and must match
// byte-for-byte.
const (
	fieldToken     = "token"
	fieldTimestamp = "timestamp"
	fieldSignature = "signature"

	fieldEvent          = "event"
	fieldDescription    = "description"
	fieldCode           = "code"
	fieldMessageHeaders = "message-headers"
	fieldRecipient      = "recipient"
	fieldURL            = "url"
	fieldUserAgent      = "user-agent"

	fieldBodyMIME        = "body-mime"
	fieldBodyPlain       = "body-plain"
	fieldBodyHTML        = "body-html"
	fieldStrippedText    = "stripped-text"
	fieldStrippedHTML    = "stripped-html"
	fieldSender          = "sender"
	fieldAttachmentCount = "attachment-count"
	fieldContentIDMap    = "content-id-map"

	headerVariables  = "X-Mailgun-Variables"
	headerSpamFlag   = "X-Mailgun-Sflag"
	headerSpamScore  = "X-Mailgun-Sscore"
	attachmentPrefix = "attachment-"
)

// Candidate key lists, consulted in priority order.
var (
	messageIDFields   = []string{"Message-Id", "message-id"}
	mtaResponseFields = []string{"error", "notification"}
	tagFields         = []string{"tag", "X-Mailgun-Tag"}
)

// lookupField returns the value of the first candidate key present in form.
// A present key wins even when its value is empty; within one key the last
// submitted value is used.
func lookupField(form url.Values, keys ...string) (string, bool) {
	for _, key := range keys {
		if values, ok := form[key]; ok && len(values) > 0 {
			return values[len(values)-1], true
		}
	}
	return "", false
}

// fieldValue is lookupField without the presence flag.
func fieldValue(form url.Values, keys ...string) string {
	value, _ := lookupField(form, keys...)
	return value
}

// lookupList returns every value of the first candidate key present in form.
func lookupList(form url.Values, keys ...string) ([]string, bool) {
	for _, key := range keys {
		if values, ok := form[key]; ok {
			return append([]string(nil), values...), true
		}
	}
	return nil, false
}
