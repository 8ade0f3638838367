package store

import (
	"errors"
	"fmt"
)

// InvalidStateError names errors recorded when a slice receives data that contradicts its own state, such as
// an account arriving while logged out.
const InvalidStateError = "InvalidStateError"

// SerializedError is the form in which errors are stored in the state.
type SerializedError struct {
	Name    string `json:"name"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

func (e *SerializedError) Error() string {
	if e.Name == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Name, e.Message)
}

type named interface {
	Name() string
}

type coded interface {
	Code() string
}

// SerializeError converts err for storage. A *SerializedError is returned unchanged; otherwise the name is taken
// from the first error in the chain with a Name method, falling back to "Error".
func SerializeError(err error) *SerializedError {
	if err == nil {
		return nil
	}
	var se *SerializedError
	if errors.As(err, &se) {
		return se
	}

	s := &SerializedError{Name: "Error", Message: err.Error()}
	var n named
	if errors.As(err, &n) {
		s.Name = n.Name()
	}
	var c coded
	if errors.As(err, &c) {
		s.Code = c.Code()
	}
	return s
}
