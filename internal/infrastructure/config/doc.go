// Package config loads the edge agent configuration.
//
// Values are resolved in three layers: built-in defaults, then the YAML
// file, then EDGEAGENT_* environment variables. The result is validated
// once and every problem is reported together. Nothing re-reads the file
// after startup.
//
// Server, broker and InfluxDB credentials are expected from the
// environment rather than the file:
//
//	EDGEAGENT_SERVER_USERNAME / EDGEAGENT_SERVER_PASSWORD
//	EDGEAGENT_MQTT_PASSWORD
//	EDGEAGENT_INFLUXDB_TOKEN
//
// Durations are stored as whole seconds in the file; use the Get* helpers
// to obtain time.Duration values.
package config
