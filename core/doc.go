// Package core contains the canonical email event model shared by every
// provider adapter: tracking and inbound events, the inbound message entity,
// raw request envelopes, sinks, errors and configuration. Provider packages
// depend on core; core must not depend on provider-specific or
// transport-specific adapters.
package core
