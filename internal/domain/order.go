package domain

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrInvalidTransition = errors.New("invalid order status transition")
	ErrResultURLRequired = errors.New("a finished order requires a result url")
)

type OrderStatus string

const (
	Placed               OrderStatus = "PLACED"
	InProgress           OrderStatus = "IN_PROGRESS"
	Rejected             OrderStatus = "REJECTED"
	AwaitingConfirmation OrderStatus = "AWAITING_CONFIRMATION"
	Done                 OrderStatus = "DONE"
)

// transitions lists, for every status, the statuses an order may move to. Done and Rejected are terminal and
// nothing leads back to Placed.
var transitions = map[OrderStatus][]OrderStatus{
	Placed:               {InProgress, Rejected},
	InProgress:           {AwaitingConfirmation, Done},
	AwaitingConfirmation: {Done},
}

func (s OrderStatus) Valid() bool {
	switch s {
	case Placed, InProgress, Rejected, AwaitingConfirmation, Done:
		return true
	}
	return false
}

func (s OrderStatus) Terminal() bool {
	return s == Done || s == Rejected
}

func (s OrderStatus) CanTransition(to OrderStatus) bool {
	for _, t := range transitions[s] {
		if t == to {
			return true
		}
	}
	return false
}

// Reaches tells whether an order can get from s to to through zero or more transitions.
func (s OrderStatus) Reaches(to OrderStatus) bool {
	if s == to {
		return true
	}
	for _, next := range transitions[s] {
		if next.Reaches(to) {
			return true
		}
	}
	return false
}

// Order is an order as listed to one of its parties: User is the other party.
type Order struct {
	User  OrderUser   `json:"user"`
	Order OrderRecord `json:"order"`
}

type OrderUser struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	LastName string `json:"lastName"`
	Email    string `json:"email"`
}

type OrderRecord struct {
	ID         string      `json:"_id"`
	ArtistID   string      `json:"artistId"`
	Comment    string      `json:"comment"`
	DatePlaced time.Time   `json:"datePlaced"`
	Deadline   time.Time   `json:"deadline"`
	Genre      []string    `json:"genre"`
	BPM        *int        `json:"bpm,omitempty"`
	ResultURL  string      `json:"resultUrl,omitempty"`
	Status     OrderStatus `json:"status"`
}

// Validate checks the record against the order lifecycle rules.
func (r OrderRecord) Validate() error {
	if !r.Status.Valid() {
		return fmt.Errorf("unknown order status %q", r.Status)
	}
	if r.Status == Done && r.ResultURL == "" {
		return ErrResultURLRequired
	}
	return nil
}

// Apply returns the record updated by u, refusing anything but a forward transition.
func (r OrderRecord) Apply(u OrderUpdate) (OrderRecord, error) {
	if !r.Status.CanTransition(u.Status) {
		return r, fmt.Errorf("%w: %s to %s", ErrInvalidTransition, r.Status, u.Status)
	}
	next := r
	next.Status = u.Status
	if u.ResultURL != "" {
		next.ResultURL = u.ResultURL
	}
	if err := next.Validate(); err != nil {
		return r, err
	}
	return next, nil
}

// OrderSeed is the body of an order creation request.
type OrderSeed struct {
	ArtistID string    `json:"artistId"`
	BPM      int       `json:"bpm"`
	Genre    []string  `json:"genre"`
	Comment  string    `json:"comment"`
	Date     time.Time `json:"date"`
}

type OrderUpdate struct {
	OrderID   string      `json:"orderId"`
	Status    OrderStatus `json:"status"`
	ResultURL string      `json:"resultUrl,omitempty"`
}

// Validate checks the update on its own. Whether the transition is allowed depends on the current status and is
// checked by OrderRecord.Apply.
func (u OrderUpdate) Validate() error {
	if u.OrderID == "" {
		return errors.New("order id is required")
	}
	if !u.Status.Valid() || u.Status == Placed {
		return fmt.Errorf("%w: cannot move to %q", ErrInvalidTransition, u.Status)
	}
	if u.Status == Done && u.ResultURL == "" {
		return ErrResultURLRequired
	}
	return nil
}
