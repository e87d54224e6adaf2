// Package datapoint defines the data points the edge agent registers with
// the remote server and the identifiers it publishes under.
//
// A Definition describes one named, typed value. The agent owns two closed
// sets of identifiers: Metric (values it writes every cycle) and ConfigParam
// (operating parameters it reads). After registration the server returns a
// fully-qualified name (FQN) per topic; Resolve turns that FQNMap into a
// Names table indexed by identifier so later lookups cannot miss.
package datapoint
