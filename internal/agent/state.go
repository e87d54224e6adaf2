package agent

// State is a bootstrap state.
type State int

const (
	StateAwaitingServer State = iota
	StateRegistering
	StateAwaitingChannelSetup
	StateAwaitingCoreDelay
	StateHeartbeatStarted
	StateAwaitingProvisioning
	StateInitialRead
	StateRunning
	StateAborted
)

var stateNames = [...]string{
	StateAwaitingServer:       "awaiting_server",
	StateRegistering:          "registering",
	StateAwaitingChannelSetup: "awaiting_channel_setup",
	StateAwaitingCoreDelay:    "awaiting_core_delay",
	StateHeartbeatStarted:     "heartbeat_started",
	StateAwaitingProvisioning: "awaiting_provisioning",
	StateInitialRead:          "initial_read",
	StateRunning:              "running",
	StateAborted:              "aborted",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "unknown"
	}
	return stateNames[s]
}
