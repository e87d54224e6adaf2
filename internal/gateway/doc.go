// Package gateway is the edge agent's client for the remote industrial REST server.
//
// One method exists per remote capability: server status, app definition,
// data point registration, app registration, heartbeat, provisioning status,
// read, read-advanced, write and webhook subscription. The client holds no
// mutable state and is safe to share between the metrics loop and the
// heartbeat goroutine.
//
// # Error Handling
//
// Every method returns a *Error on failure, never a bare transport error.
// The taxonomy is exposed through sentinels usable with errors.Is:
//
//   - ErrTransport: the server could not be reached (StatusCode is 0)
//   - ErrRejected:  the server answered with a non-2xx status
//   - ErrDecode:    the response body did not have the expected shape
//
// Callers decide whether to retry or abort; the gateway never retries.
//
// # Usage
//
//	gw := gateway.New(gateway.Config{
//	    BaseURL: cfg.ServerURL(),
//	    AppName: cfg.App.Name,
//	    Timeout: cfg.GetRequestTimeout(),
//	})
//	if err := gw.ServerStatus(ctx); err != nil {
//	    var gwErr *gateway.Error
//	    errors.As(err, &gwErr)
//	    log.Warn("server not ready", "status", gwErr.StatusCode)
//	}
package gateway
