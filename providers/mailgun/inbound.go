package mailgun

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/goliatone/go-mailhooks/core"
	"github.com/goliatone/go-mailhooks/message"
)

// InboundMapper turns a Mailgun inbound route call into a received message.
// Routes forwarding to a URL ending in "mime" post the raw message in
// body-mime; all other routes post it already parsed into discrete fields.
type InboundMapper struct{}

// Parse maps req into a single inbound event.
func (m InboundMapper) Parse(_ context.Context, req core.InboundRequest) ([]core.InboundEvent, error) {
	event, err := m.Map(req)
	if err != nil {
		return nil, err
	}
	return []core.InboundEvent{event}, nil
}

// Map rebuilds the message from req and attaches the envelope, stripped
// bodies and spam verdict.
func (InboundMapper) Map(req core.InboundRequest) (core.InboundEvent, error) {
	form := req.Form
	timestamp, err := ParseTimestamp(form)
	if err != nil {
		return core.InboundEvent{}, err
	}

	var msg core.Message
	if raw, ok := lookupField(form, fieldBodyMIME); ok {
		msg, err = message.ParseRaw(raw)
		if err != nil {
			return core.InboundEvent{}, core.WrapBadPayload(err, "providers/mailgun: parse body-mime", map[string]any{
				"provider_id": ProviderID,
				"field":       fieldBodyMIME,
			})
		}
	} else {
		msg, err = constructMessage(req)
		if err != nil {
			return core.InboundEvent{}, err
		}
	}

	msg.EnvelopeSender = fieldValue(form, fieldSender)
	msg.EnvelopeRecipient = fieldValue(form, fieldRecipient)
	msg.StrippedText = fieldValue(form, fieldStrippedText)
	msg.StrippedHTML = fieldValue(form, fieldStrippedHTML)
	msg.SpamDetected = SpamDetected(msg.Header)
	msg.SpamScore = SpamScore(msg.Header)

	return core.InboundEvent{
		EventType: core.EventTypeInbound,
		Timestamp: timestamp,
		EventID:   fieldValue(form, fieldToken),
		Message:   msg,
		Raw:       req,
	}, nil
}

// SpamDetected reports whether the X-Mailgun-Sflag message header flags the
// message as spam.
func SpamDetected(header core.Header) bool {
	flag, ok := header.Lookup(headerSpamFlag)
	if !ok {
		return false
	}
	return strings.EqualFold(strings.TrimSpace(flag), "yes")
}

// SpamScore returns the X-Mailgun-Sscore message header as a number, or nil
// when it is missing or not a number.
func SpamScore(header core.Header) *float64 {
	raw, ok := header.Lookup(headerSpamScore)
	if !ok {
		return nil
	}
	score, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return nil
	}
	return &score
}

func constructMessage(req core.InboundRequest) (core.Message, error) {
	form := req.Form
	rawHeaders, ok := lookupField(form, fieldMessageHeaders)
	if !ok {
		return core.Message{}, badInboundField(fieldMessageHeaders, "is required", nil)
	}
	header, ok := decodeHeaderList(rawHeaders)
	if !ok {
		return core.Message{}, badInboundField(fieldMessageHeaders, "must be a JSON list of header pairs", nil)
	}

	attachments, err := uploadedAttachments(req)
	if err != nil {
		return core.Message{}, err
	}

	return message.Construct(
		header,
		fieldValue(form, fieldBodyPlain),
		fieldValue(form, fieldBodyHTML),
		attachments,
	), nil
}

// uploadedAttachments collects attachment-1 ... attachment-N, where N comes
// from attachment-count. Content ids come from the inverted content-id-map.
func uploadedAttachments(req core.InboundRequest) ([]core.Attachment, error) {
	count, err := AttachmentCount(req.Form)
	if err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, nil
	}
	contentIDs, err := ContentIDsByField(req.Form)
	if err != nil {
		return nil, err
	}

	attachments := make([]core.Attachment, 0, count)
	for n := 1; n <= count; n++ {
		field := attachmentPrefix + strconv.Itoa(n)
		file, ok := req.File(field)
		if !ok {
			return nil, badInboundField(field, "is missing", map[string]any{"attachment_count": count})
		}
		attachments = append(attachments, message.AttachmentFromUpload(file, contentIDs[field]))
	}
	return attachments, nil
}

// AttachmentCount reads the optional attachment-count field. Absent means no
// attachments.
func AttachmentCount(form url.Values) (int, error) {
	raw, ok := lookupField(form, fieldAttachmentCount)
	if !ok {
		return 0, nil
	}
	count, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || count < 0 {
		return 0, badInboundField(fieldAttachmentCount, "must be a non-negative integer", map[string]any{"value": raw})
	}
	return count, nil
}

// ContentIDsByField inverts content-id-map, which Mailgun sends as
// {"<cid>": "attachment-N"}, into field name => content id.
func ContentIDsByField(form url.Values) (map[string]string, error) {
	raw, ok := lookupField(form, fieldContentIDMap)
	if !ok {
		return map[string]string{}, nil
	}
	byContentID := map[string]string{}
	if err := json.Unmarshal([]byte(raw), &byContentID); err != nil {
		return nil, core.WrapBadPayload(err, fmt.Sprintf("providers/mailgun: %s must be a JSON object of strings", fieldContentIDMap), map[string]any{
			"provider_id": ProviderID,
			"field":       fieldContentIDMap,
		})
	}
	byField := make(map[string]string, len(byContentID))
	for contentID, field := range byContentID {
		byField[field] = contentID
	}
	return byField, nil
}

func badInboundField(field string, problem string, extra map[string]any) error {
	metadata := map[string]any{
		"provider_id": ProviderID,
		"field":       field,
	}
	for key, value := range extra {
		metadata[key] = value
	}
	return core.BadPayload(fmt.Sprintf("providers/mailgun: %s %s", field, problem), metadata)
}
