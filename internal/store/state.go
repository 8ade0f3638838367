package store

import "github.com/sidereusnuntius/fairsonority/internal/domain"

type Status uint8

const (
	Idle Status = iota
	Loading
)

func (s Status) String() string {
	if s == Loading {
		return "loading"
	}
	return "idle"
}

// Call tracks the remote calls in flight for a slice. Status is Loading while at least one call started by a
// pending action has not received its fulfilled or rejected action.
type Call struct {
	Status   Status
	InFlight int
}

func (c Call) start() Call {
	return Call{Status: Loading, InFlight: c.InFlight + 1}
}

func (c Call) finish() Call {
	n := c.InFlight - 1
	if n <= 0 {
		return Call{Status: Idle}
	}
	return Call{Status: Loading, InFlight: n}
}

// track moves c along the phase of an asynchronous action.
func (c Call) track(p Phase) Call {
	if p == Pending {
		return c.start()
	}
	return c.finish()
}

// AccountState holds the login state. Account is nil whenever IsLoggedIn is false.
type AccountState struct {
	Call
	IsLoggedIn bool
	Account    *domain.Account
	Error      *SerializedError
}

type TitleState struct {
	DocumentTitle string
	AppTitle      string
}

type Severity string

const (
	Success Severity = "success"
	Info    Severity = "info"
	Warning Severity = "warning"
	Error   Severity = "error"
)

// Snackbar is a transient notification. Its content is either fixed Text or built on demand by Factory.
type Snackbar struct {
	Text     string
	Factory  func() string
	Severity Severity
}

func (s Snackbar) Content() string {
	if s.Factory != nil {
		return s.Factory()
	}
	return s.Text
}

// SnackbarState is nil when no notification is active.
type SnackbarState = *Snackbar

// OrderState caches the caller's orders. A nil Orders means the orders were never loaded or were cleared.
type OrderState struct {
	Call
	Orders []domain.Order
	Error  *SerializedError
}

// UserState holds the result of a registration and, separately, the artist roster.
type UserState struct {
	Call
	User  *domain.User
	Error *SerializedError

	Artists      []domain.ArtistFull
	ArtistsCall  Call
	ArtistsError *SerializedError
}

// RootState is the whole application state. Reducers never modify a RootState in place, so a value handed to a
// listener stays valid after later dispatches.
type RootState struct {
	Account  AccountState
	Titles   TitleState
	Snackbar SnackbarState
	Orders   OrderState
	Users    UserState
}

// InitialState is the state of a fresh session; isLoggedIn tells whether a token was restored.
func InitialState(isLoggedIn bool) RootState {
	return RootState{
		Account: AccountState{IsLoggedIn: isLoggedIn},
		Titles: TitleState{
			DocumentTitle: DefaultTitle,
			AppTitle:      DefaultTitle,
		},
	}
}

func reduce(s RootState, a Action) RootState {
	return RootState{
		Account:  reduceAccount(s.Account, a),
		Titles:   reduceTitles(s.Titles, a),
		Snackbar: reduceSnackbar(s.Snackbar, a),
		Orders:   reduceOrders(s.Orders, a),
		Users:    reduceUsers(s.Users, a),
	}
}
