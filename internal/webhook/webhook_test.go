package webhook

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
)

type fakeSubscriber struct {
	mu          sync.Mutex
	calls       int
	callbackURL string
	topics      []string
	err         error
}

func (f *fakeSubscriber) Subscribe(_ context.Context, callbackURL string, topics []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.callbackURL = callbackURL
	f.topics = append([]string(nil), topics...)
	return f.err
}

func newTestService(sub Subscriber) *Service {
	return New(Config{Addr: "127.0.0.1:0", PathSuffix: "/webhook/", CallbackURL: "http://edge/webhook/"}, sub, NewQueue())
}

func serve(s *Service, method, path, body string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	s.Handler().ServeHTTP(rec, req)
	return rec
}

// =============================================================================
// Queue
// =============================================================================

func TestQueue_DrainEmpty(t *testing.T) {
	q := NewQueue()
	if got := q.Drain(); got != nil {
		t.Errorf("Drain() on empty queue = %v, want nil", got)
	}
}

func TestQueue_DrainOrderAndEmpties(t *testing.T) {
	q := NewQueue()
	q.Push(SimpleMessage{Topic: "a", Value: 1.0})
	q.Push(SimpleMessage{Topic: "b", Value: 2.0})
	q.Push(AdvancedMessage{Topic: "c"})

	got := q.Drain()
	topics := make([]string, 0, len(got))
	for _, m := range got {
		topics = append(topics, m.MessageTopic())
	}
	if diff := cmp.Diff([]string{"a", "b", "c"}, topics); diff != "" {
		t.Errorf("Drain() order mismatch (-want +got):\n%s", diff)
	}
	if q.Len() != 0 {
		t.Errorf("Len() after Drain = %d, want 0", q.Len())
	}
}

func TestQueue_ConcurrentPushNoLossNoDuplicate(t *testing.T) {
	const producers = 8
	const perProducer = 500

	q := NewQueue()
	var wg sync.WaitGroup
	for p := 0; p < producers; p++ {
		wg.Add(1)
		go func(p int) {
			defer wg.Done()
			for i := 0; i < perProducer; i++ {
				q.Push(SimpleMessage{Topic: "t", Value: float64(p*perProducer + i)})
			}
		}(p)
	}

	seen := make(map[float64]int)
	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	drain := func() {
		for _, m := range q.Drain() {
			seen[m.(SimpleMessage).Value.(float64)]++
		}
	}
	for running := true; running; {
		select {
		case <-done:
			running = false
		default:
			drain()
		}
	}
	drain()

	if len(seen) != producers*perProducer {
		t.Fatalf("distinct messages = %d, want %d", len(seen), producers*perProducer)
	}
	for v, n := range seen {
		if n != 1 {
			t.Fatalf("message %v drained %d times", v, n)
		}
	}
}

// =============================================================================
// Handlers
// =============================================================================

func TestHandler_Test(t *testing.T) {
	s := newTestService(&fakeSubscriber{})
	rec := serve(s, http.MethodGet, "/webhook/test", "")
	if rec.Code != http.StatusOK {
		t.Errorf("GET test status = %d, want 200", rec.Code)
	}
	if rec.Header().Get("X-Request-ID") == "" {
		t.Error("X-Request-ID not set on response")
	}
}

func TestHandler_SimpleMessage(t *testing.T) {
	s := newTestService(&fakeSubscriber{})
	rec := serve(s, http.MethodPost, "/webhook/simple_message",
		`{"topic":"app::config::configrunningperiod","value":45,"timestamp":"2026-05-01T10:00:00Z"}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	msgs := s.Queue().Drain()
	if len(msgs) != 1 {
		t.Fatalf("queued = %d, want 1", len(msgs))
	}
	msg, ok := msgs[0].(SimpleMessage)
	if !ok {
		t.Fatalf("queued %T, want SimpleMessage", msgs[0])
	}
	if msg.Topic != "app::config::configrunningperiod" || msg.Value != 45.0 {
		t.Errorf("queued = %+v", msg)
	}
}

func TestHandler_SetOfMessages(t *testing.T) {
	tests := []struct {
		name string
		body string
		want int
	}{
		{"single object", `{"topic":"a","value":1}`, 1},
		{"array", `[{"topic":"a","value":1},{"topic":"b","value":2}]`, 2},
		{"empty array", `[]`, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestService(&fakeSubscriber{})
			rec := serve(s, http.MethodPost, "/webhook/set_of_messages", tt.body)
			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d, want 200", rec.Code)
			}
			if got := s.Queue().Len(); got != tt.want {
				t.Errorf("queued = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestHandler_AdvancedMessages(t *testing.T) {
	s := newTestService(&fakeSubscriber{})
	rec := serve(s, http.MethodPost, "/webhook/advanced_messages",
		`{"topic":"x","datapoints":[{"value":3,"timestamp":"2026-05-01T10:00:00Z","quality":192}]}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	msgs := s.Queue().Drain()
	adv, ok := msgs[0].(AdvancedMessage)
	if !ok {
		t.Fatalf("queued %T, want AdvancedMessage", msgs[0])
	}
	if len(adv.Datapoints) != 1 {
		t.Errorf("datapoints = %d, want 1", len(adv.Datapoints))
	}
}

func TestHandler_MalformedBody(t *testing.T) {
	paths := []string{"/webhook/simple_message", "/webhook/set_of_messages", "/webhook/advanced_messages"}
	for _, path := range paths {
		t.Run(path, func(t *testing.T) {
			s := newTestService(&fakeSubscriber{})
			rec := serve(s, http.MethodPost, path, `{not json`)
			if rec.Code != http.StatusInternalServerError {
				t.Errorf("status = %d, want 500", rec.Code)
			}
			if strings.Contains(rec.Body.String(), "invalid character") {
				t.Errorf("decoder detail leaked in response: %s", rec.Body.String())
			}
			if s.Queue().Len() != 0 {
				t.Error("malformed body must not be queued")
			}
		})
	}
}

func TestHandler_UnknownPath(t *testing.T) {
	s := newTestService(&fakeSubscriber{})
	for _, path := range []string{"/webhook/other", "/simple_message", "/"} {
		if rec := serve(s, http.MethodPost, path, `{}`); rec.Code != http.StatusNotFound {
			t.Errorf("POST %s status = %d, want 404", path, rec.Code)
		}
	}
}

func TestHandler_AcceptsUninterestingTopic(t *testing.T) {
	s := newTestService(&fakeSubscriber{})
	rec := serve(s, http.MethodPost, "/webhook/simple_message", `{"topic":"someone::else","value":"x"}`)
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
	if s.Queue().Len() != 1 {
		t.Error("delivery should be queued regardless of topic")
	}
}

func TestNew_NormalisesSuffix(t *testing.T) {
	s := New(Config{PathSuffix: "hooks"}, &fakeSubscriber{}, NewQueue())
	if rec := serve(s, http.MethodGet, "/hooks/test", ""); rec.Code != http.StatusOK {
		t.Errorf("GET /hooks/test status = %d, want 200", rec.Code)
	}
}

// =============================================================================
// Lifecycle
// =============================================================================

func TestSetup_SubscribesOnceThenListens(t *testing.T) {
	sub := &fakeSubscriber{}
	s := newTestService(sub)
	topics := []string{"app::config::configrunningperiod", "app::config::configrestartinterval"}

	if err := s.Setup(context.Background(), topics); err != nil {
		t.Fatalf("Setup() error = %v", err)
	}
	defer s.Stop(context.Background())

	if sub.calls != 1 {
		t.Errorf("Subscribe calls = %d, want 1", sub.calls)
	}
	if diff := cmp.Diff(topics, sub.topics); diff != "" {
		t.Errorf("subscribed topics mismatch (-want +got):\n%s", diff)
	}
	if sub.callbackURL != "http://edge/webhook/" {
		t.Errorf("callbackURL = %q", sub.callbackURL)
	}

	resp, err := http.Post("http://"+s.Addr()+"/webhook/simple_message", "application/json",
		strings.NewReader(`{"topic":"app::config::configrunningperiod","value":10}`))
	if err != nil {
		t.Fatalf("POST error = %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("POST status = %d, want 200", resp.StatusCode)
	}
	if s.Queue().Len() != 1 {
		t.Errorf("queued = %d, want 1", s.Queue().Len())
	}
}

func TestSetup_SubscriptionFailureStillListens(t *testing.T) {
	s := newTestService(&fakeSubscriber{err: errors.New("503")})

	if err := s.Setup(context.Background(), []string{"a"}); err != nil {
		t.Fatalf("Setup() error = %v, want nil despite subscription failure", err)
	}
	defer s.Stop(context.Background())

	resp, err := http.Get("http://" + s.Addr() + "/webhook/test")
	if err != nil {
		t.Fatalf("GET error = %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("GET status = %d, want 200", resp.StatusCode)
	}
}

func TestSetup_BindFailure(t *testing.T) {
	first := newTestService(&fakeSubscriber{})
	if err := first.Setup(context.Background(), nil); err != nil {
		t.Fatalf("Setup() error = %v", err)
	}
	defer first.Stop(context.Background())

	second := New(Config{Addr: first.Addr()}, &fakeSubscriber{}, NewQueue())
	if err := second.Setup(context.Background(), nil); err == nil {
		second.Stop(context.Background())
		t.Error("Setup() on a bound port expected error, got nil")
	}
}

func TestStop_Idempotent(t *testing.T) {
	s := newTestService(&fakeSubscriber{})
	if err := s.Stop(context.Background()); err != nil {
		t.Errorf("Stop() before Setup error = %v", err)
	}
	if err := s.Setup(context.Background(), nil); err != nil {
		t.Fatalf("Setup() error = %v", err)
	}
	if err := s.Stop(context.Background()); err != nil {
		t.Errorf("Stop() error = %v", err)
	}
	if err := s.Stop(context.Background()); err != nil {
		t.Errorf("second Stop() error = %v", err)
	}
}
