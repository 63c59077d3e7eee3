package handler

import (
	"encoding/json"
	"net/http"
)

// Envelope is the body of successful JSON responses.
type Envelope struct {
	Data any            `json:"data"`
	Meta map[string]any `json:"meta,omitempty"`
}

type jsonResponse struct {
	status int
	body   any
}

func (j jsonResponse) Render(w http.ResponseWriter, _ *http.Request) error {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(j.status)
	return json.NewEncoder(w).Encode(j.body)
}

// JSONOption configures a JSON response.
type JSONOption func(status *int, env *Envelope)

// WithJSONStatus sets the status code. Default 200.
func WithJSONStatus(status int) JSONOption {
	return func(s *int, _ *Envelope) { *s = status }
}

// WithJSONMeta attaches metadata next to the data.
func WithJSONMeta(meta map[string]any) JSONOption {
	return func(_ *int, env *Envelope) { env.Meta = meta }
}

// JSON renders v inside an Envelope.
func JSON(v any, opts ...JSONOption) Response {
	status := http.StatusOK
	env := Envelope{Data: v}
	for _, opt := range opts {
		opt(&status, &env)
	}
	return jsonResponse{status: status, body: env}
}

// JSONError renders the error body produced by Classify. It is used by the
// JSON error handler and by handlers that answer an error without logging it.
func JSONError(err error) Response {
	info := Classify(err)
	return jsonResponse{status: info.Status, body: info.Body}
}

type emptyResponse struct {
	status int
}

func (e emptyResponse) Render(w http.ResponseWriter, _ *http.Request) error {
	w.WriteHeader(e.status)
	return nil
}

// Empty answers 204 No Content.
func Empty() Response {
	return emptyResponse{status: http.StatusNoContent}
}

// Error defers to the error handler configured with Wrap.
func Error(err error) Response {
	return errorResponse{err: err}
}

type errorResponse struct {
	err error
}

func (e errorResponse) Render(http.ResponseWriter, *http.Request) error {
	return e.err
}
