// Package guard decides what a route shows for the current login state.
package guard

import "github.com/sidereusnuntius/fairsonority/internal/domain"

type Outcome uint8

const (
	Render Outcome = iota
	RedirectLogin
	RedirectHome
	// Nothing renders neither the page nor a redirect.
	Nothing
)

func (o Outcome) String() string {
	switch o {
	case Render:
		return "render"
	case RedirectLogin:
		return "redirect-login"
	case RedirectHome:
		return "redirect-home"
	case Nothing:
		return "nothing"
	}
	return "unknown"
}

type kind uint8

const (
	noAuth kind = iota
	auth
	role
)

// Requirement is what a route expects of the user: NoAuth, Auth or Role.
type Requirement struct {
	kind kind
	role domain.UserRole
}

var (
	// NoAuth routes are reserved to logged out users.
	NoAuth = Requirement{kind: noAuth}
	Auth   = Requirement{kind: auth}
)

// Role requires a logged in user with role r.
func Role(r domain.UserRole) Requirement {
	return Requirement{kind: role, role: r}
}

func (r Requirement) String() string {
	switch r.kind {
	case noAuth:
		return "no-auth"
	case auth:
		return "auth"
	}
	return "role:" + string(r.role)
}

func Decide(isLoggedIn bool, userRole domain.UserRole, req Requirement) Outcome {
	switch req.kind {
	case noAuth:
		if isLoggedIn {
			return RedirectHome
		}
		return Render
	case auth:
		if isLoggedIn {
			return Render
		}
		return RedirectLogin
	case role:
		if isLoggedIn && userRole == req.role {
			return Render
		}
	}
	return Nothing
}
