package access

// Decision is the outcome of evaluating a guarded region.
type Decision int

const (
	// DecisionLoading asks the caller to render a neutral waiting state.
	DecisionLoading Decision = iota
	// DecisionRedirectToAuth sends the caller to the sign-in flow.
	DecisionRedirectToAuth
	// DecisionForbidden renders the access-denied view.
	DecisionForbidden
	// DecisionAllow renders the guarded content.
	DecisionAllow
)

func (d Decision) String() string {
	switch d {
	case DecisionLoading:
		return "loading"
	case DecisionRedirectToAuth:
		return "redirect_to_auth"
	case DecisionForbidden:
		return "forbidden"
	case DecisionAllow:
		return "allow"
	}
	return "unknown"
}

// Guard decides what a navigated-to region renders for the given state.
//
// Rules are evaluated in order and the first match wins: a loading session
// waits, a missing user is redirected, a role restriction waits for the
// profile before it is enforced, and everything else is allowed.
func Guard(state State, allowed RoleSet) Decision {
	if state.Loading {
		return DecisionLoading
	}
	if state.User == nil {
		return DecisionRedirectToAuth
	}
	if allowed.Empty() {
		return DecisionAllow
	}
	if state.Profile == nil {
		return DecisionLoading
	}
	if !allowed.Contains(state.Profile.Role) {
		return DecisionForbidden
	}
	return DecisionAllow
}
