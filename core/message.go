package core

import (
	"mime"
	"net/mail"
	"strings"
	"time"
)

type HeaderField struct {
	Name  string
	Value string
}

// Header is an ordered list of message header fields. Lookups are
// case-insensitive; duplicates are preserved in arrival order.
type Header []HeaderField

func (h Header) Lookup(name string) (string, bool) {
	for _, field := range h {
		if strings.EqualFold(field.Name, name) {
			return field.Value, true
		}
	}
	return "", false
}

func (h Header) Get(name string) string {
	value, _ := h.Lookup(name)
	return value
}

func (h Header) Values(name string) []string {
	var values []string
	for _, field := range h {
		if strings.EqualFold(field.Name, name) {
			values = append(values, field.Value)
		}
	}
	return values
}

func (h Header) Clone() Header {
	if h == nil {
		return nil
	}
	return append(Header(nil), h...)
}

type Attachment struct {
	Content     []byte
	Filename    string
	ContentType string
	ContentID   string
	Inline      bool
}

// Message is a received email reconstructed from a provider payload.
type Message struct {
	Header      Header
	Text        string
	HTML        string
	Attachments []Attachment

	EnvelopeSender    string
	EnvelopeRecipient string
	StrippedText      string
	StrippedHTML      string

	SpamDetected bool
	SpamScore    *float64
}

var headerDecoder = mime.WordDecoder{}

func decodeHeader(value string) string {
	decoded, err := headerDecoder.DecodeHeader(value)
	if err != nil {
		return value
	}
	return decoded
}

func (m Message) Subject() string {
	return decodeHeader(m.Header.Get("Subject"))
}

func (m Message) MessageID() string {
	return strings.TrimSpace(m.Header.Get("Message-ID"))
}

// From returns the parsed From address, or nil when absent or unparseable.
func (m Message) From() *mail.Address {
	addresses := parseAddressList(m.Header.Get("From"))
	if len(addresses) == 0 {
		return nil
	}
	return addresses[0]
}

func (m Message) To() []*mail.Address {
	return parseAddressList(strings.Join(m.Header.Values("To"), ", "))
}

func (m Message) Cc() []*mail.Address {
	return parseAddressList(strings.Join(m.Header.Values("Cc"), ", "))
}

func (m Message) Date() (time.Time, bool) {
	raw := strings.TrimSpace(m.Header.Get("Date"))
	if raw == "" {
		return time.Time{}, false
	}
	parsed, err := mail.ParseDate(raw)
	if err != nil {
		return time.Time{}, false
	}
	return parsed, true
}

// InlineAttachments returns inline parts keyed by their bracket-less content id.
func (m Message) InlineAttachments() map[string]Attachment {
	out := map[string]Attachment{}
	for _, attachment := range m.Attachments {
		if !attachment.Inline || attachment.ContentID == "" {
			continue
		}
		out[strings.Trim(attachment.ContentID, "<>")] = attachment
	}
	return out
}

func (m Message) RegularAttachments() []Attachment {
	var out []Attachment
	for _, attachment := range m.Attachments {
		if attachment.Inline {
			continue
		}
		out = append(out, attachment)
	}
	return out
}

func parseAddressList(raw string) []*mail.Address {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	parser := mail.AddressParser{WordDecoder: &headerDecoder}
	addresses, err := parser.ParseList(raw)
	if err != nil {
		return nil
	}
	return addresses
}
