package signal

import gocmd "github.com/goliatone/go-command"

var (
	_ gocmd.Message             = Tracking{}
	_ gocmd.Message             = Inbound{}
	_ gocmd.Commander[Tracking] = (*TrackingCommand)(nil)
	_ gocmd.Commander[Inbound]  = (*InboundCommand)(nil)
)
