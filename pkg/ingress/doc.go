// Package ingress exposes the provisioner over HTTP.
//
// NewRouter mounts POST /event, which decodes an EventNotification, hands it
// to a Dispatcher and answers 204 No Content on success. Failures are mapped
// by StatusCode and rendered as
//
//	{"error":{"code":"bad_gateway","message":"..."}}
//
// with 400 for malformed or invalid notifications, 404 for unknown
// subscriptions, 409 for rejected transitions, 502 when the Gateway is
// unreachable or answers garbage, and 503 when the subscription lock cannot be
// taken in time.
//
// Every request carries an X-Request-ID, accepted from the caller or
// generated, which RequestIDExtractor adds to log records.
//
// Handlers follow a small typed pattern: a HandlerFunc receives the decoded
// request and returns a Response, and Wrap adapts it to net/http.
package ingress
