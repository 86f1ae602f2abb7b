package ingress

import (
	"errors"
	"net/http"

	"github.com/dmitrymomot/provisioner/pkg/provisioning"
)

var (
	// ErrNilResponse is reported when a handler returns neither a response nor an error.
	ErrNilResponse = errors.New("handler returned nil response")
	// ErrInvalidJSON marks a body that is not a valid notification document.
	ErrInvalidJSON = errors.New("invalid JSON")
	// ErrUnsupportedMediaType marks a non-JSON Content-Type.
	ErrUnsupportedMediaType = errors.New("unsupported media type")
	// ErrBodyTooLarge marks a body over MaxBodySize.
	ErrBodyTooLarge = errors.New("request body too large")
)

// HTTPError is an error with a fixed status code and a stable error code
// rendered into the JSON envelope.
type HTTPError struct {
	Status int
	Code   string
}

// Error returns the error code.
func (e HTTPError) Error() string {
	return e.Code
}

var (
	errBadRequest       = HTTPError{Status: http.StatusBadRequest, Code: "bad_request"}
	errNotFound         = HTTPError{Status: http.StatusNotFound, Code: "not_found"}
	errConflict         = HTTPError{Status: http.StatusConflict, Code: "conflict"}
	errUnsupportedMedia = HTTPError{Status: http.StatusUnsupportedMediaType, Code: "unsupported_media_type"}
	errTooLarge         = HTTPError{Status: http.StatusRequestEntityTooLarge, Code: "request_entity_too_large"}
	errBadGateway       = HTTPError{Status: http.StatusBadGateway, Code: "bad_gateway"}
	errUnavailable      = HTTPError{Status: http.StatusServiceUnavailable, Code: "service_unavailable"}
	errInternal         = HTTPError{Status: http.StatusInternalServerError, Code: "internal_error"}
)

// classify maps an error to the HTTP answer sent to the webhook caller.
// Upstream problems are 502 so the sender can tell them apart from its own
// mistakes and redeliver.
func classify(err error) HTTPError {
	var httpErr HTTPError
	switch {
	case errors.As(err, &httpErr):
		return httpErr
	case errors.Is(err, ErrUnsupportedMediaType):
		return errUnsupportedMedia
	case errors.Is(err, ErrBodyTooLarge):
		return errTooLarge
	case errors.Is(err, ErrInvalidJSON), errors.Is(err, provisioning.ErrInvalidNotification):
		return errBadRequest
	case errors.Is(err, provisioning.ErrSubscriptionNotFound):
		return errNotFound
	case errors.Is(err, provisioning.ErrTransitionRejected):
		return errConflict
	case errors.Is(err, provisioning.ErrUpstreamUnavailable), errors.Is(err, provisioning.ErrMalformedResponse):
		return errBadGateway
	case errors.Is(err, provisioning.ErrLockUnavailable):
		return errUnavailable
	default:
		return errInternal
	}
}

// StatusCode returns the HTTP status used for err.
func StatusCode(err error) int {
	return classify(err).Status
}
