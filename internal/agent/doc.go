// Package agent drives the edge agent: it registers the application and its
// data points with the remote server, starts the heartbeat and the chosen
// configuration channel, then runs the metrics loop until cancelled.
//
// Bootstrap walks a fixed sequence of states:
//
//	AwaitingServer → Registering → AwaitingChannelSetup → AwaitingCoreDelay →
//	HeartbeatStarted → AwaitingProvisioning → InitialRead → Running
//
// Any setup failure moves to Aborted; background services are stopped
// before Run returns. Once Running, a failed cycle is counted and logged
// and the loop carries on.
package agent
