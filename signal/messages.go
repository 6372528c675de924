package signal

import (
	"strings"

	"github.com/goliatone/go-mailhooks/core"
)

const (
	TypeTracking = "mailhooks.signal.tracking"
	TypeInbound  = "mailhooks.signal.inbound"
)

// Tracking announces a delivery or engagement event.
type Tracking struct {
	Event core.TrackingEvent
}

func (Tracking) Type() string { return TypeTracking }

func (m Tracking) Validate() error {
	if strings.TrimSpace(m.Event.EventType.String()) == "" {
		return signalValidationError("event_type", "event type is required")
	}
	if m.Event.Timestamp.IsZero() {
		return signalValidationError("timestamp", "timestamp is required")
	}
	return nil
}

// Inbound announces a received message.
type Inbound struct {
	Event core.InboundEvent
}

func (Inbound) Type() string { return TypeInbound }

func (m Inbound) Validate() error {
	if m.Event.EventType != core.EventTypeInbound {
		return signalValidationError("event_type", "event type must be inbound")
	}
	if m.Event.Timestamp.IsZero() {
		return signalValidationError("timestamp", "timestamp is required")
	}
	return nil
}
