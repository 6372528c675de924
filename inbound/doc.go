// Package inbound routes webhook calls to the handler registered for their
// provider and surface.
//
// Two surfaces exist: "tracking" for delivery and engagement events and
// "inbound" for received messages. Every dispatch is observed with a
// structured log line plus counter and duration metrics, tagged with a
// request id that is generated when the host did not supply one.
package inbound
