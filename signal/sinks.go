package signal

import (
	"context"

	gocmd "github.com/goliatone/go-command"
	commanddispatcher "github.com/goliatone/go-command/dispatcher"
	"github.com/goliatone/go-command/runner"
	"github.com/goliatone/go-mailhooks/core"
)

// NewTrackingSink publishes every tracking event through the go-command
// dispatcher.
func NewTrackingSink() core.TrackingSink {
	return core.SinkFunc[core.TrackingEvent](func(ctx context.Context, event core.TrackingEvent) error {
		return publish(ctx, Tracking{Event: event})
	})
}

// NewInboundSink publishes every received message through the go-command
// dispatcher.
func NewInboundSink() core.InboundSink {
	return core.SinkFunc[core.InboundEvent](func(ctx context.Context, event core.InboundEvent) error {
		return publish(ctx, Inbound{Event: event})
	})
}

func publish[T gocmd.Message](ctx context.Context, msg T) error {
	if err := gocmd.ValidateMessage(msg); err != nil {
		return err
	}
	return commanddispatcher.Dispatch(ctx, msg)
}

// TrackingCommand forwards dispatched Tracking messages to a sink.
type TrackingCommand struct {
	sink core.TrackingSink
}

func NewTrackingCommand(sink core.TrackingSink) *TrackingCommand {
	return &TrackingCommand{sink: sink}
}

func (c *TrackingCommand) Execute(ctx context.Context, msg Tracking) error {
	if c == nil || c.sink == nil {
		return signalDependencyError("signal: tracking sink is required")
	}
	return c.sink.Emit(ctx, msg.Event)
}

// InboundCommand forwards dispatched Inbound messages to a sink.
type InboundCommand struct {
	sink core.InboundSink
}

func NewInboundCommand(sink core.InboundSink) *InboundCommand {
	return &InboundCommand{sink: sink}
}

func (c *InboundCommand) Execute(ctx context.Context, msg Inbound) error {
	if c == nil || c.sink == nil {
		return signalDependencyError("signal: inbound sink is required")
	}
	return c.sink.Emit(ctx, msg.Event)
}

// SubscribeTracking routes dispatched Tracking messages to sink until the
// returned subscription is cancelled.
func SubscribeTracking(sink core.TrackingSink, runnerOpts ...runner.Option) commanddispatcher.Subscription {
	return commanddispatcher.SubscribeCommand[Tracking](NewTrackingCommand(sink), runnerOpts...)
}

// SubscribeInbound routes dispatched Inbound messages to sink until the
// returned subscription is cancelled.
func SubscribeInbound(sink core.InboundSink, runnerOpts ...runner.Option) commanddispatcher.Subscription {
	return commanddispatcher.SubscribeCommand[Inbound](NewInboundCommand(sink), runnerOpts...)
}
