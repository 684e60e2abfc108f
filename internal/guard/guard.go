// Package guard decides what a protected view may show for a given auth state.
// Decide is pure; Require applies it to HTTP routes.
package guard

// Paths the guard redirects to.
const (
	PathSignIn    = "/auth"
	PathMFASetup  = "/mfa-setup"
	PathMFAVerify = "/mfa-verify"
	PathHome      = "/"
	PathAdmin     = "/admin"
)

// AuthState is the composite authorization state of one viewer.
type AuthState struct {
	Loading       bool
	HasSession    bool
	IsApproved    bool
	IsAdmin       bool
	MFARequired   bool
	MFAConfigured bool
	MFAVerified   bool
}

type Outcome string

const (
	OutcomeWait            Outcome = "wait"
	OutcomeRedirect        Outcome = "redirect"
	OutcomePendingApproval Outcome = "pending_approval"
	OutcomeRender          Outcome = "render"
)

// Decision is the guard's answer. Redirect is set only for OutcomeRedirect.
type Decision struct {
	Outcome  Outcome
	Redirect string
}

func (d Decision) Allowed() bool { return d.Outcome == OutcomeRender }

func wait() Decision              { return Decision{Outcome: OutcomeWait} }
func render() Decision            { return Decision{Outcome: OutcomeRender} }
func pending() Decision           { return Decision{Outcome: OutcomePendingApproval} }
func redirect(to string) Decision { return Decision{Outcome: OutcomeRedirect, Redirect: to} }

// Decide evaluates state for path. Order matters: approval comes before any
// MFA check, and enrollment comes before verification.
func Decide(state AuthState, path string) Decision {
	switch {
	case state.Loading:
		return wait()
	case !state.HasSession:
		return redirect(PathSignIn)
	case !state.IsApproved:
		return pending()
	case !state.MFAConfigured && path != PathMFASetup:
		return redirect(PathMFASetup)
	case state.MFARequired && !state.MFAVerified:
		return redirect(PathMFAVerify)
	default:
		return render()
	}
}

// DecideAdmin is Decide for admin-only views: anything Decide would render is
// sent home unless the viewer is an admin.
func DecideAdmin(state AuthState, path string) Decision {
	d := Decide(state, path)
	if d.Allowed() && !state.IsAdmin {
		return redirect(PathHome)
	}
	return d
}
