package store

// Action is the closed set of changes the store accepts. Every variant is declared in this package.
type Action interface {
	Type() string
	action()
}

type Logout struct{}

type SetTitle struct {
	Title string
}

type ShowSnackbar struct {
	Snackbar Snackbar
}

type HideSnackbar struct{}

type ClearOrders struct{}

type ClearRegistration struct{}

func (Logout) Type() string            { return "account/logout" }
func (SetTitle) Type() string          { return "titles/setTitle" }
func (ShowSnackbar) Type() string      { return "snackbar/show" }
func (HideSnackbar) Type() string      { return "snackbar/hide" }
func (ClearOrders) Type() string       { return "orders/clear" }
func (ClearRegistration) Type() string { return "users/registerClear" }

func (Logout) action()            {}
func (SetTitle) action()          {}
func (ShowSnackbar) action()      {}
func (HideSnackbar) action()      {}
func (ClearOrders) action()       {}
func (ClearRegistration) action() {}

// Op identifies an asynchronous operation.
type Op string

const (
	OpLogin        Op = "account/login"
	OpFetchAccount Op = "account/account"
	OpRegister     Op = "users/register"
	OpFetchArtists Op = "users/fetchArtists"
	OpCreateRating Op = "users/createRating"
	OpFetchOrders  Op = "orders/fetch"
	OpCreateOrder  Op = "orders/create"
	OpUpdateOrder  Op = "orders/update"
)

type Phase uint8

const (
	Pending Phase = iota
	Fulfilled
	Rejected
)

func (p Phase) String() string {
	switch p {
	case Pending:
		return "pending"
	case Fulfilled:
		return "fulfilled"
	case Rejected:
		return "rejected"
	}
	return "unknown"
}

// AsyncMeta describes one step of an asynchronous operation. The pending and terminal actions of one call share
// the same RequestID.
type AsyncMeta struct {
	Op        Op
	Phase     Phase
	RequestID string
	// Error is set on rejected actions only.
	Error *SerializedError
}

// Async is a lifecycle action of an asynchronous operation. Payload is set on fulfilled actions only.
type Async[T any] struct {
	AsyncMeta
	Payload T
}

func (a Async[T]) Type() string {
	return string(a.Op) + "/" + a.Phase.String()
}

func (Async[T]) action() {}

func (a Async[T]) meta() AsyncMeta {
	return a.AsyncMeta
}

type asyncAction interface {
	Action
	meta() AsyncMeta
}

// payload returns the payload of a, provided a carries a T.
func payload[T any](a Action) (T, bool) {
	p, ok := a.(Async[T])
	return p.Payload, ok
}
