// Package message builds core.Message values, either by parsing a complete
// MIME document or by assembling fields a provider already parsed.
package message
