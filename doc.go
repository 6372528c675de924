// Package mailhooks receives email provider webhooks and turns them into
// normalized tracking and inbound events.
//
// Setup loads configuration, builds the Mailgun handlers with basic auth and
// signature verification, and registers them with a dispatcher. Events are
// delivered to the configured sinks, which by default publish go-command
// signals (see package signal).
package mailhooks
