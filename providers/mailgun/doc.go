// Package mailgun adapts Mailgun's form-encoded webhooks to the normalized
// tracking and inbound event model.
//
// Both surfaces share signature verification: an HMAC-SHA256 over the
// timestamp and token fields keyed with the account API key, compared in
// constant time. Tracking calls are mapped by TrackingMapper and routed
// messages (forward-to-URL routes) by InboundMapper.
package mailgun
