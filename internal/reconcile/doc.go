// Package reconcile keeps the two operating parameters (running period and
// statistics reset interval) in line with the remote server.
//
// Updates arrive over exactly one channel per process: either drained from
// the webhook queue (push) or read synchronously each cycle (poll). Values
// land in a Cache keyed by fully-qualified topic and are clamped into their
// valid range before use. A cycle with nothing new keeps the previous
// parameters.
package reconcile
