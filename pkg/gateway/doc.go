// Package gateway implements provisioning.Gateway against the remote
// marketplace that owns subscription state.
//
// Client is the HTTP implementation:
//
//	GET   {base}/subscription/{id}   -> {"id":1,"deploymentStatus":"PENDING","paid":true}
//	PATCH {base}/subscription/{id}   <- {"deploymentStatus":"DEPLOYED"}
//
// Both calls carry "Authorization: Bearer <token>" (header and scheme are
// configurable with WithAuthHeader) and run under a per-call timeout.
//
// Failures are mapped onto the provisioning error taxonomy:
//
//   - transport errors, timeouts, 5xx, 408, 425 and 429: ErrUpstreamUnavailable
//   - 404 on read: ErrSubscriptionNotFound
//   - undecodable read body or unknown status: ErrMalformedResponse
//   - any other 4xx on write: ErrTransitionRejected
//
// Reads are retried on upstream failures with the configured BackoffStrategy.
// Writes are sent exactly once. An optional CircuitBreaker fails calls fast
// while the Gateway keeps failing.
//
//	client, err := gateway.New("https://marketplace.example.com/api", token,
//	    gateway.WithTimeout(5*time.Second),
//	    gateway.WithCircuitBreaker(gateway.NewCircuitBreaker(5, 1, 30*time.Second)),
//	)
//
// Memory is an in-process implementation that records reads and writes; use it
// in tests or to run the service without a marketplace.
package gateway
