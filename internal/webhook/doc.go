// Package webhook receives pushed value updates from the remote server.
//
// The Service subscribes the configuration topics once, then serves a small
// fixed set of endpoints under a configurable path suffix:
//
//	GET  {suffix}test               liveness probe
//	POST {suffix}simple_message     one SimpleMessage
//	POST {suffix}set_of_messages    one SimpleMessage or an array of them
//	POST {suffix}advanced_messages  one AdvancedMessage or an array of them
//
// Handlers only decode and push onto a Queue; the metrics loop drains it.
// Every well-formed delivery is acknowledged, whether or not its topic is
// of interest. Malformed bodies get a generic 500.
package webhook
