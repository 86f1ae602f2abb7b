package ingress

import (
	"encoding/json"
	"net/http"
)

// ErrorBody is the envelope written for every failed request.
type ErrorBody struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail carries a stable code and a human-readable message.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
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

type jsonResponse struct {
	status int
	body   any
}

func (j jsonResponse) Render(w http.ResponseWriter, _ *http.Request) error {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(j.status)
	return json.NewEncoder(w).Encode(j.body)
}

// JSON renders v with the given status.
func JSON(status int, v any) Response {
	return jsonResponse{status: status, body: v}
}

// JSONError renders err as an ErrorBody with the status from StatusCode.
// Internal errors never leak their message.
func JSONError(err error) Response {
	he := classify(err)
	msg := err.Error()
	if he.Status == http.StatusInternalServerError {
		msg = http.StatusText(he.Status)
	}
	return jsonResponse{
		status: he.Status,
		body:   ErrorBody{Error: ErrorDetail{Code: he.Code, Message: msg}},
	}
}
