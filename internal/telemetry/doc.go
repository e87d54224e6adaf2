// Package telemetry exposes the agent's Prometheus metrics.
//
// Collectors are package-level and registered with the default registry on
// import, so any component can record without plumbing. Server serves them
// on /metrics together with a /healthz probe.
package telemetry
