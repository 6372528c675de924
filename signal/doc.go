// Package signal publishes normalized webhook events as go-command messages.
//
// Hosts subscribe a command for Tracking or Inbound and hand the sinks
// returned by NewTrackingSink and NewInboundSink to the webhook handlers.
package signal
