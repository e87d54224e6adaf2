package heartbeat

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

// fakeSender records heartbeats and can fail or block on demand.
type fakeSender struct {
	mu    sync.Mutex
	sent  []bool
	err   error
	block bool
	calls chan bool
}

func newFakeSender() *fakeSender {
	return &fakeSender{calls: make(chan bool, 100)}
}

func (f *fakeSender) SendHeartbeat(ctx context.Context, up bool) error {
	f.mu.Lock()
	f.sent = append(f.sent, up)
	err, block := f.err, f.block
	f.mu.Unlock()

	select {
	case f.calls <- up:
	default:
	}

	if block {
		<-ctx.Done()
		return ctx.Err()
	}
	return err
}

func (f *fakeSender) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}

type fakePublisher struct {
	mu     sync.Mutex
	states []bool
}

func (p *fakePublisher) PublishStatus(up bool) error {
	p.mu.Lock()
	p.states = append(p.states, up)
	p.mu.Unlock()
	return nil
}

func (p *fakePublisher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.states)
}

func waitBeat(t *testing.T, f *fakeSender) bool {
	t.Helper()
	select {
	case up := <-f.calls:
		return up
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for heartbeat")
		return false
	}
}

func TestNew_Defaults(t *testing.T) {
	m := New(newFakeSender(), 0)
	if m.Period() != defaultPeriod {
		t.Errorf("Period() = %v, want %v", m.Period(), defaultPeriod)
	}
	if m.IsUp() {
		t.Error("IsUp() = true, want false before ChangeState")
	}
}

func TestMonitor_SendsCurrentState(t *testing.T) {
	sender := newFakeSender()
	m := New(sender, 20*time.Millisecond)
	m.Start(context.Background())
	defer m.Stop()

	if up := waitBeat(t, sender); up {
		t.Error("first heartbeat reported up, want down")
	}

	m.ChangeState(true)
	deadline := time.After(2 * time.Second)
	for {
		select {
		case up := <-sender.calls:
			if up {
				return
			}
		case <-deadline:
			t.Fatal("never observed an up heartbeat after ChangeState(true)")
		}
	}
}

func TestMonitor_ContinuesAfterFailure(t *testing.T) {
	sender := newFakeSender()
	sender.err = errors.New("server down")
	m := New(sender, 10*time.Millisecond)
	m.Start(context.Background())
	defer m.Stop()

	waitBeat(t, sender)
	waitBeat(t, sender)
	waitBeat(t, sender)
}

func TestMonitor_ChangePeriod(t *testing.T) {
	m := New(newFakeSender(), time.Second)

	m.ChangePeriod(30 * time.Second)
	if m.Period() != 30*time.Second {
		t.Errorf("Period() = %v, want 30s", m.Period())
	}

	m.ChangePeriod(-time.Second)
	if m.Period() != 30*time.Second {
		t.Errorf("Period() after negative = %v, want 30s", m.Period())
	}
}

func TestMonitor_StopIdempotent(t *testing.T) {
	m := New(newFakeSender(), 10*time.Millisecond)
	m.Start(context.Background())

	m.Stop()
	m.Stop()
}

func TestMonitor_StopBeforeStart(t *testing.T) {
	m := New(newFakeSender(), time.Second)
	m.Stop()
}

func TestMonitor_StopAfterContextCancelled(t *testing.T) {
	sender := newFakeSender()
	m := New(sender, 10*time.Millisecond)
	ctx, cancel := context.WithCancel(context.Background())
	m.Start(ctx)
	waitBeat(t, sender)

	cancel()
	m.Stop()
}

func TestMonitor_StopCancelsSlowSend(t *testing.T) {
	sender := newFakeSender()
	sender.block = true
	m := New(sender, time.Hour)
	m.Start(context.Background())
	waitBeat(t, sender)

	stopped := make(chan struct{})
	go func() {
		m.Stop()
		close(stopped)
	}()

	select {
	case <-stopped:
	case <-time.After(2 * time.Second):
		t.Fatal("Stop() blocked on an in-flight send")
	}
}

func TestMonitor_NoBeatsAfterStop(t *testing.T) {
	sender := newFakeSender()
	m := New(sender, 5*time.Millisecond)
	m.Start(context.Background())
	waitBeat(t, sender)
	m.Stop()

	before := sender.count()
	time.Sleep(30 * time.Millisecond)
	if after := sender.count(); after != before {
		t.Errorf("heartbeats after Stop: before=%d after=%d", before, after)
	}
}

func TestMonitor_MirrorsStatus(t *testing.T) {
	sender := newFakeSender()
	pub := &fakePublisher{}
	m := New(sender, 10*time.Millisecond)
	m.SetPublisher(pub)
	m.Start(context.Background())

	waitBeat(t, sender)
	waitBeat(t, sender)
	m.Stop()

	if pub.count() == 0 {
		t.Error("status publisher never called")
	}
}
