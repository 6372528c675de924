// Package webhooks contains webhook verification building blocks and the
// generic processor that turns one verified provider call into normalized
// events.
//
// Processing is a single synchronous pass: verify -> parse -> emit. Delivery
// retries belong to the provider; a failed call is reported to the host and
// redelivered by the provider's own policy.
package webhooks
