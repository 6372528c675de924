// Package providers groups the email service provider integrations. Each
// subpackage turns one provider's webhook payloads into core tracking and
// inbound events.
package providers
