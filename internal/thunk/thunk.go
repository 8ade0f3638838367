// Package thunk runs remote calls through the store as a pending action followed by exactly one fulfilled or
// rejected action, both tagged with the same request id.
package thunk

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/sidereusnuntius/fairsonority/internal/store"
)

// Thunk is an asynchronous operation taking an A and producing an R.
type Thunk[A, R any] struct {
	Op  store.Op
	Run func(ctx context.Context, arg A) (R, error)
}

type Dispatcher interface {
	Dispatch(a store.Action) store.RootState
}

// Dispatch runs t and returns the terminal action it dispatched. Concurrent dispatches of the same thunk are
// not deduplicated; each gets its own request id.
func Dispatch[A, R any](ctx context.Context, d Dispatcher, t Thunk[A, R], arg A) store.Async[R] {
	meta := store.AsyncMeta{
		Op:        t.Op,
		Phase:     store.Pending,
		RequestID: uuid.NewString(),
	}
	d.Dispatch(store.Async[R]{AsyncMeta: meta})

	result, err := run(ctx, t, arg)
	if err != nil {
		meta.Phase = store.Rejected
		meta.Error = store.SerializeError(err)
		log.Debug().Str("op", string(t.Op)).Str("request", meta.RequestID).Err(err).Msg("rejected")
		a := store.Async[R]{AsyncMeta: meta}
		d.Dispatch(a)
		return a
	}

	meta.Phase = store.Fulfilled
	a := store.Async[R]{AsyncMeta: meta, Payload: result}
	d.Dispatch(a)
	return a
}

func run[A, R any](ctx context.Context, t Thunk[A, R], arg A) (result R, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%s panicked: %v", t.Op, r)
		}
	}()
	return t.Run(ctx, arg)
}

// DispatchWithError runs t and returns its payload. Whatever made the call fail, the error is a
// *store.SerializedError equal to the one stored by the rejected action.
func DispatchWithError[A, R any](ctx context.Context, d Dispatcher, t Thunk[A, R], arg A) (R, error) {
	a := Dispatch(ctx, d, t, arg)
	if a.Phase == store.Rejected {
		return a.Payload, a.Error
	}
	return a.Payload, nil
}

// Reject builds the error a thunk returns to refuse an operation for a business reason. It is stored as given.
func Reject(name, message string) error {
	return &store.SerializedError{Name: name, Message: message}
}
