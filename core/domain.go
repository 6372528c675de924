package core

import (
	"net/url"
	"strings"
	"time"
)

type EventType string

const (
	EventTypeDelivered    EventType = "delivered"
	EventTypeRejected     EventType = "rejected"
	EventTypeBounced      EventType = "bounced"
	EventTypeComplained   EventType = "complained"
	EventTypeUnsubscribed EventType = "unsubscribed"
	EventTypeOpened       EventType = "opened"
	EventTypeClicked      EventType = "clicked"
	EventTypeInbound      EventType = "inbound"
	EventTypeUnknown      EventType = "unknown"
)

func (t EventType) String() string {
	return string(t)
}

// ParseEventType maps a normalized event type name back to its constant.
// Names outside the taxonomy resolve to EventTypeUnknown.
func ParseEventType(value string) EventType {
	switch EventType(strings.TrimSpace(strings.ToLower(value))) {
	case EventTypeDelivered:
		return EventTypeDelivered
	case EventTypeRejected:
		return EventTypeRejected
	case EventTypeBounced:
		return EventTypeBounced
	case EventTypeComplained:
		return EventTypeComplained
	case EventTypeUnsubscribed:
		return EventTypeUnsubscribed
	case EventTypeOpened:
		return EventTypeOpened
	case EventTypeClicked:
		return EventTypeClicked
	case EventTypeInbound:
		return EventTypeInbound
	default:
		return EventTypeUnknown
	}
}

// RejectReason classifies why a message was not delivered.
// RejectReasonUnset means no reason could be derived, which is distinct from
// RejectReasonOther.
type RejectReason string

const (
	RejectReasonUnset        RejectReason = ""
	RejectReasonInvalid      RejectReason = "invalid"
	RejectReasonBounced      RejectReason = "bounced"
	RejectReasonTimedOut     RejectReason = "timed_out"
	RejectReasonBlocked      RejectReason = "blocked"
	RejectReasonSpam         RejectReason = "spam"
	RejectReasonUnsubscribed RejectReason = "unsubscribed"
	RejectReasonOther        RejectReason = "other"
)

func (r RejectReason) String() string {
	return string(r)
}

func (r RejectReason) IsSet() bool {
	return r != RejectReasonUnset
}

// TrackingEvent is a normalized delivery or engagement event.
type TrackingEvent struct {
	EventType    EventType
	Timestamp    time.Time
	MessageID    string
	EventID      string
	Recipient    string
	RejectReason RejectReason
	Description  string
	MTAResponse  string
	Tags         []string
	Metadata     map[string]any
	ClickURL     string
	UserAgent    string
	Raw          url.Values
}

// InboundEvent is a normalized received message.
type InboundEvent struct {
	EventType EventType
	Timestamp time.Time
	EventID   string
	Message   Message
	Raw       InboundRequest
}

// NormalizeMessageID wraps id in angle brackets unless it already starts
// with one. Empty ids stay empty.
func NormalizeMessageID(id string) string {
	if id == "" || strings.HasPrefix(id, "<") {
		return id
	}
	return "<" + id + ">"
}
