package provisioning

// ActionKind names what the dispatcher does for a single event.
type ActionKind string

const (
	// ActionNoOp leaves the subscription as it is.
	ActionNoOp ActionKind = "noop"
	// ActionProvision sets up the tenant and marks it deployed.
	ActionProvision ActionKind = "provision"
	// ActionSuspend pauses the tenant.
	ActionSuspend ActionKind = "suspend"
	// ActionHealthCheck verifies an already deployed tenant.
	ActionHealthCheck ActionKind = "health_check"
	// ActionUnprovision tears the tenant down and marks it undeployed.
	ActionUnprovision ActionKind = "unprovision"
)

// String returns the action name.
func (k ActionKind) String() string {
	return string(k)
}

// Action is the outcome of the decision engine. Target is empty when the
// action does not move the subscription to a new status.
type Action struct {
	Kind   ActionKind
	Target DeploymentStatus
}

// Transition returns the status to write back, if any.
func (a Action) Transition() (DeploymentStatus, bool) {
	return a.Target, a.Target != ""
}

var (
	noOp        = Action{Kind: ActionNoOp}
	provision   = Action{Kind: ActionProvision, Target: StatusDeployed}
	suspend     = Action{Kind: ActionSuspend}
	healthCheck = Action{Kind: ActionHealthCheck}
	unprovision = Action{Kind: ActionUnprovision, Target: StatusUndeployed}
)

// DecideOnNotify maps a snapshot to an action for CREATED and MODIFIED events.
//
//	PENDING    paid     -> provision, DEPLOYED
//	PENDING    not paid -> noop
//	DEPLOYED            -> health check
//	STOPPED             -> suspend
//	UNDEPLOYED          -> noop
//
// An undeployed subscription stays inert: re-provisioning requires the Gateway
// to move it back to PENDING first.
func DecideOnNotify(sub Subscription) Action {
	switch sub.DeploymentStatus {
	case StatusPending:
		if sub.Paid {
			return provision
		}
		return noOp
	case StatusDeployed:
		return healthCheck
	case StatusStopped:
		return suspend
	case StatusUndeployed:
		return noOp
	default:
		return noOp
	}
}

// DecideOnDelete always unprovisions. Deletion is terminal, so it is applied
// even when the subscription is already UNDEPLOYED.
func DecideOnDelete(Subscription) Action {
	return unprovision
}

// Decide routes a lifecycle to the matching decision path.
func Decide(lifecycle Lifecycle, sub Subscription) Action {
	if lifecycle == LifecycleDeleted {
		return DecideOnDelete(sub)
	}
	return DecideOnNotify(sub)
}
