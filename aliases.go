package mailhooks

import "github.com/goliatone/go-mailhooks/core"

type Config = core.Config

type WebhookConfig = core.WebhookConfig

type MailgunConfig = core.MailgunConfig

type InboundRequest = core.InboundRequest
type InboundResult = core.InboundResult

type TrackingEvent = core.TrackingEvent
type InboundEvent = core.InboundEvent
type Message = core.Message

type TrackingSink = core.TrackingSink
type InboundSink = core.InboundSink

type MetricsRecorder = core.MetricsRecorder
type Logger = core.Logger
type LoggerProvider = core.LoggerProvider

func DefaultConfig() Config {
	return core.DefaultConfig()
}
