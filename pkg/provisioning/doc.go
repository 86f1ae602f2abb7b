// Package provisioning keeps a tenant's provisioning state in line with the
// deployment status a remote marketplace stores for each subscription.
//
// A Dispatcher receives lifecycle notifications (CREATED, MODIFIED, DELETED).
// Notifications for entities other than "Subscription" are logged and
// dropped. For subscriptions it serializes work per id through a Locker,
// reads a fresh snapshot through a Fetcher, asks the decision engine for an
// Action, runs the matching TenantProvisioner hook and, when the action
// carries a transition, writes the new status through a Synchronizer.
//
// Decision table for CREATED and MODIFIED:
//
//	PENDING    + paid      provision, write DEPLOYED
//	PENDING    + unpaid    noop
//	DEPLOYED               health check
//	STOPPED                suspend
//	UNDEPLOYED             noop
//
// DELETED always unprovisions and writes UNDEPLOYED, even if the subscription
// is already undeployed.
//
// # Errors
//
// Gateway implementations wrap ErrUpstreamUnavailable, ErrMalformedResponse,
// ErrTransitionRejected or ErrSubscriptionNotFound. Dispatch returns a
// *DispatchError naming the failed step; it unwraps to the underlying error so
// errors.Is keeps working:
//
//	if err := d.Dispatch(ctx, n); errors.Is(err, provisioning.ErrUpstreamUnavailable) {
//	    // ask the sender to redeliver later
//	}
//
// # Dry-run
//
// A Synchronizer built WithDryRun(true) logs the status it would write and
// skips the Gateway call. Decisions and provisioner hooks run unchanged.
package provisioning
