// Package heartbeat reports agent liveness to the remote server.
//
// A Monitor runs one background goroutine that sends the current up/down
// flag every period. The flag and the period are atomics written by the
// metrics loop and read by the goroutine on its next beat; a change never
// interrupts a sleep already in progress.
//
// Usage:
//
//	mon := heartbeat.New(client, 10*time.Second)
//	mon.SetLogger(log)
//	mon.Start(ctx)
//	defer mon.Stop()
//
//	mon.ChangeState(true)
//	mon.ChangePeriod(30 * time.Second)
package heartbeat
