// Package mqtt mirrors agent state to an MQTT broker.
//
// This package manages:
//   - Connection to the broker with auto-reconnect
//   - Last Will and Testament on the status topic for offline detection
//   - Retained publication of each cycle report and the liveness flag
//
// Topics (prefix defaults to "edgeagent"):
//
//	{prefix}/{app}/metrics   retained cycle report (JSON)
//	{prefix}/{app}/status    retained online/offline/up/down status (JSON, LWT)
//
// The mirror is optional; the remote REST server stays the system of record.
//
// Usage:
//
//	client, err := mqtt.Connect(cfg.MQTT, cfg.App.Name)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	mirror := mqtt.NewMirror(client)
//	monitor.SetPublisher(mirror)
package mqtt
