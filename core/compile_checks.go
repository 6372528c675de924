package core

import glog "github.com/goliatone/go-logger/glog"

var (
	_ ConfigProvider  = (*CfgxConfigProvider)(nil)
	_ OptionsResolver = GoOptionsResolver{}
	_ RawConfigLoader = YAMLConfigLoader{}
	_ RawConfigLoader = EnvConfigLoader{}
	_ RawConfigLoader = ChainConfigLoader{}

	_ TrackingSink = SinkFunc[TrackingEvent](nil)
	_ InboundSink  = SinkFunc[InboundEvent](nil)

	_ Logger         = glog.Nop()
	_ LoggerProvider = glog.ProviderFromLogger(glog.Nop())
)
