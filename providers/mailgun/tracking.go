package mailgun

import (
	"context"
	"encoding/json"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/goliatone/go-mailhooks/core"
)

// trackingEventTypes maps Mailgun event names to normalized types. Mailgun
// sends no events corresponding to queued or deferred.
var trackingEventTypes = map[string]core.EventType{
	"delivered":    core.EventTypeDelivered,
	"dropped":      core.EventTypeRejected,
	"bounced":      core.EventTypeBounced,
	"complained":   core.EventTypeComplained,
	"unsubscribed": core.EventTypeUnsubscribed,
	"opened":       core.EventTypeOpened,
	"clicked":      core.EventTypeClicked,
}

// EventTypeFor maps a Mailgun event name; unlisted names are unknown.
func EventTypeFor(event string) core.EventType {
	if eventType, ok := trackingEventTypes[event]; ok {
		return eventType
	}
	return core.EventTypeUnknown
}

// TrackingMapper turns a Mailgun delivery or engagement call into a
// tracking event.
type TrackingMapper struct{}

// Parse maps the request form into a single tracking event.
func (m TrackingMapper) Parse(_ context.Context, req core.InboundRequest) ([]core.TrackingEvent, error) {
	event, err := m.Map(req.Form)
	if err != nil {
		return nil, err
	}
	return []core.TrackingEvent{event}, nil
}

// Map builds the tracking event from a Mailgun form payload.
func (TrackingMapper) Map(form url.Values) (core.TrackingEvent, error) {
	timestamp, err := ParseTimestamp(form)
	if err != nil {
		return core.TrackingEvent{}, err
	}
	code, hasCode := lookupField(form, fieldCode)
	messageHeaders, hasHeaders := lookupField(form, fieldMessageHeaders)

	return core.TrackingEvent{
		EventType:    EventTypeFor(fieldValue(form, fieldEvent)),
		Timestamp:    timestamp,
		MessageID:    core.NormalizeMessageID(fieldValue(form, messageIDFields...)),
		EventID:      fieldValue(form, fieldToken),
		Recipient:    fieldValue(form, fieldRecipient),
		RejectReason: ResolveRejectReason(code, hasCode),
		Description:  fieldValue(form, fieldDescription),
		MTAResponse:  fieldValue(form, mtaResponseFields...),
		Tags:         ExtractTags(form),
		Metadata:     ExtractMetadata(messageHeaders, hasHeaders),
		ClickURL:     fieldValue(form, fieldURL),
		UserAgent:    fieldValue(form, fieldUserAgent),
		Raw:          form,
	}, nil
}

// ParseTimestamp reads the required integer epoch timestamp field as UTC.
func ParseTimestamp(form url.Values) (time.Time, error) {
	raw, ok := lookupField(form, fieldTimestamp)
	if !ok {
		return time.Time{}, core.BadPayload("providers/mailgun: timestamp is required", map[string]any{
			"provider_id": ProviderID,
			"field":       fieldTimestamp,
		})
	}
	seconds, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return time.Time{}, core.WrapBadPayload(err, "providers/mailgun: timestamp must be an integer epoch", map[string]any{
			"provider_id": ProviderID,
			"field":       fieldTimestamp,
		})
	}
	return time.Unix(seconds, 0).UTC(), nil
}

// ExtractTags prefers "tag" over "X-Mailgun-Tag"; Mailgun uses both spellings.
func ExtractTags(form url.Values) []string {
	tags, ok := lookupList(form, tagFields...)
	if !ok {
		return []string{}
	}
	return tags
}

// ExtractMetadata merges every X-Mailgun-Variables entry of a JSON header
// list. Later entries override earlier keys. An absent or malformed header
// list yields empty metadata; malformed variable entries are skipped.
func ExtractMetadata(messageHeaders string, present bool) map[string]any {
	metadata := map[string]any{}
	if !present {
		return metadata
	}
	header, ok := decodeHeaderList(messageHeaders)
	if !ok {
		return metadata
	}
	for _, value := range header.Values(headerVariables) {
		variables := map[string]any{}
		if err := json.Unmarshal([]byte(value), &variables); err != nil {
			continue
		}
		for key, variable := range variables {
			metadata[key] = variable
		}
	}
	return metadata
}

// decodeHeaderList parses Mailgun's [["Name", "Value"], ...] header JSON.
// Entries that are not name/value string pairs are dropped.
func decodeHeaderList(raw string) (core.Header, bool) {
	var entries []json.RawMessage
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		return nil, false
	}
	header := make(core.Header, 0, len(entries))
	for _, entry := range entries {
		var pair []string
		if err := json.Unmarshal(entry, &pair); err != nil || len(pair) != 2 {
			continue
		}
		header = append(header, core.HeaderField{Name: pair[0], Value: pair[1]})
	}
	return header, true
}
