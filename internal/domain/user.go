package domain

import "fmt"

type UserRole string

const (
	Artist   UserRole = "artist"
	Customer UserRole = "customer"
)

var Roles = []UserRole{Artist, Customer}

func (r UserRole) Valid() bool {
	return r == Artist || r == Customer
}

func ParseRole(s string) (UserRole, error) {
	r := UserRole(s)
	if !r.Valid() {
		return "", fmt.Errorf("unknown user role %q", s)
	}
	return r, nil
}

// Account is the authenticated user as returned by the backend's me endpoint.
type Account struct {
	Role     UserRole `json:"role"`
	UserID   string   `json:"userId"`
	Username string   `json:"username"`
}

type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// UserCore holds the registration fields shared by every role. Artist only fields are empty for customers.
type UserCore struct {
	Email              string   `json:"email"`
	Role               UserRole `json:"role"`
	Password           string   `json:"password,omitempty"`
	FirstName          string   `json:"firstName"`
	LastName           string   `json:"lastName"`
	Genres             []string `json:"genres,omitempty"`
	ProfileDescription string   `json:"profileDescription,omitempty"`
}

// User is a registered user.
type User struct {
	ID string `json:"id"`
	UserCore
}

func (u UserCore) Name() string {
	return u.FirstName + " " + u.LastName
}
