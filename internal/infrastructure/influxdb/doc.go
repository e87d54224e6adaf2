// Package influxdb writes metrics cycle reports to InfluxDB v2.
//
// Each report becomes one point in the edge_agent_cycle measurement, tagged
// with the application name and the cycle outcome. Writes are non-blocking
// and batched by the client library; asynchronous write errors are passed
// to the callback set with SetOnError.
//
// Usage:
//
//	client, err := influxdb.Connect(cfg.InfluxDB, cfg.App.Name)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
package influxdb
