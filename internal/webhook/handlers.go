package webhook

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/nerrad567/gray-logic-edge/internal/telemetry"
)

// Route names appended to the path suffix.
const (
	RouteTest             = "test"
	RouteSimpleMessage    = "simple_message"
	RouteSetOfMessages    = "set_of_messages"
	RouteAdvancedMessages = "advanced_messages"
)

type errorBody struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		//nolint:errcheck // Best-effort write to response; connection may be closed
		json.NewEncoder(w).Encode(v)
	}
}

func writeInternalError(w http.ResponseWriter) {
	writeJSON(w, http.StatusInternalServerError, errorBody{
		Status:  http.StatusInternalServerError,
		Message: "internal server error",
	})
}

func writeNotFound(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusNotFound, errorBody{Status: http.StatusNotFound, Message: "not found"})
}

// Handler builds the router for the webhook endpoints.
func (s *Service) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(s.requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.recoveryMiddleware)
	r.Use(s.bodySizeLimitMiddleware)

	r.NotFound(writeNotFound)
	r.MethodNotAllowed(writeNotFound)

	r.Get(s.suffix+RouteTest, s.handleTest)
	r.Post(s.suffix+RouteSimpleMessage, s.handleSimpleMessage)
	r.Post(s.suffix+RouteSetOfMessages, s.handleSetOfMessages)
	r.Post(s.suffix+RouteAdvancedMessages, s.handleAdvancedMessages)

	return r
}

func (s *Service) handleTest(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Service) handleSimpleMessage(w http.ResponseWriter, r *http.Request) {
	body, ok := s.readBody(w, r)
	if !ok {
		return
	}
	var msg SimpleMessage
	if err := json.Unmarshal(body, &msg); err != nil {
		s.rejectMalformed(w, r, err)
		return
	}
	s.enqueue("simple", msg)
	w.WriteHeader(http.StatusOK)
}

func (s *Service) handleSetOfMessages(w http.ResponseWriter, r *http.Request) {
	body, ok := s.readBody(w, r)
	if !ok {
		return
	}
	msgs, err := decodeOneOrMany[SimpleMessage](body)
	if err != nil {
		s.rejectMalformed(w, r, err)
		return
	}
	for _, msg := range msgs {
		s.enqueue("simple", msg)
	}
	w.WriteHeader(http.StatusOK)
}

func (s *Service) handleAdvancedMessages(w http.ResponseWriter, r *http.Request) {
	body, ok := s.readBody(w, r)
	if !ok {
		return
	}
	msgs, err := decodeOneOrMany[AdvancedMessage](body)
	if err != nil {
		s.rejectMalformed(w, r, err)
		return
	}
	for _, msg := range msgs {
		s.enqueue("advanced", msg)
	}
	w.WriteHeader(http.StatusOK)
}

func (s *Service) readBody(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		s.rejectMalformed(w, r, err)
		return nil, false
	}
	return body, true
}

func (s *Service) enqueue(kind string, msg Message) {
	s.queue.Push(msg)
	telemetry.WebhookMessages.WithLabelValues(kind).Inc()
	if !s.isSubscribed(msg.MessageTopic()) {
		s.logger.Warn("delivery for unsubscribed topic", "topic", msg.MessageTopic())
	}
}

func (s *Service) rejectMalformed(w http.ResponseWriter, r *http.Request, err error) {
	s.logger.Warn("malformed webhook body",
		"path", r.URL.Path,
		"error", err,
		"request_id", r.Context().Value(ctxKeyRequestID),
	)
	writeInternalError(w)
}
