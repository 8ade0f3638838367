package thunk

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/sidereusnuntius/fairsonority/internal/client"
	"github.com/sidereusnuntius/fairsonority/internal/domain"
	mock_client "github.com/sidereusnuntius/fairsonority/internal/mocks"
	"github.com/sidereusnuntius/fairsonority/internal/store"
	"go.uber.org/mock/gomock"
)

var ctx = context.Background()

// recorder keeps every action on its way to the store.
type recorder struct {
	store   *store.Store
	actions []store.Action
}

func newRecorder(loggedIn bool) *recorder {
	return &recorder{store: store.New(store.InitialState(loggedIn))}
}

func (r *recorder) Dispatch(a store.Action) store.RootState {
	r.actions = append(r.actions, a)
	return r.store.Dispatch(a)
}

func (r *recorder) types() []string {
	types := make([]string, len(r.actions))
	for i, a := range r.actions {
		types[i] = a.Type()
	}
	return types
}

func TestLoginFulfilled(t *testing.T) {
	ctrl := gomock.NewController(t)
	api := mock_client.NewMockAPI(ctrl)
	creds := domain.Credentials{Username: "ana", Password: "secret"}
	api.EXPECT().Login(gomock.Any(), creds).Return(client.Tokens{AccessToken: "t"}, nil)

	r := newRecorder(false)
	tokens, err := DispatchWithError(ctx, r, Login(api), creds)
	if err != nil {
		t.Fatal(err)
	}
	if tokens.AccessToken != "t" {
		t.Errorf("unexpected token %q", tokens.AccessToken)
	}

	if diff := cmp.Diff([]string{"account/login/pending", "account/login/fulfilled"}, r.types()); diff != "" {
		t.Error(diff)
	}
	first := r.actions[0].(store.Async[client.Tokens])
	last := r.actions[1].(store.Async[client.Tokens])
	if first.RequestID == "" || first.RequestID != last.RequestID {
		t.Errorf("request ids differ: %q and %q", first.RequestID, last.RequestID)
	}
	if !r.store.GetState().Account.IsLoggedIn {
		t.Error("expected to be logged in")
	}
}

func TestFetchAccountNotFound(t *testing.T) {
	ctrl := gomock.NewController(t)
	api := mock_client.NewMockAPI(ctrl)
	api.EXPECT().Me(gomock.Any()).Return(domain.Account{}, &client.StatusError{Status: http.StatusNotFound, Message: "user not found"})

	r := newRecorder(true)
	_, err := DispatchWithError(ctx, r, FetchAccount(api), None{})

	var se *store.SerializedError
	if !errors.As(err, &se) {
		t.Fatalf("expected a serialized error, got %T", err)
	}
	if se.Name != "HTTPError" {
		t.Errorf("expected HTTPError, got %s", se.Name)
	}

	st := r.store.GetState().Account
	if st.Status != store.Idle || st.Account != nil || st.Error != se {
		t.Errorf("unexpected account state %+v", st)
	}
}

func TestRejectionOrigins(t *testing.T) {
	ctrl := gomock.NewController(t)
	api := mock_client.NewMockAPI(ctrl)
	api.EXPECT().FetchOrders(gomock.Any()).Return(nil, errors.New("connection refused"))

	r := newRecorder(true)

	_, err := DispatchWithError(ctx, r, FetchOrders(api), None{})
	if diff := cmp.Diff(&store.SerializedError{Name: "Error", Message: "connection refused"}, err); diff != "" {
		t.Error(diff)
	}

	// Invalid ratings never reach the api.
	_, err = DispatchWithError(ctx, r, CreateRating(api), domain.RatingSeed{ArtistID: "a1", Rating: 9})
	var se *store.SerializedError
	if !errors.As(err, &se) || se.Name != ValidationError {
		t.Errorf("expected a %s, got %v", ValidationError, err)
	}
	if r.store.GetState().Users.ArtistsError != se {
		t.Error("expected the rejection to be stored")
	}
}

func TestPanicIsRejected(t *testing.T) {
	th := Thunk[None, int]{
		Op: store.OpFetchOrders,
		Run: func(context.Context, None) (int, error) {
			panic("boom")
		},
	}
	r := newRecorder(true)
	a := Dispatch(ctx, r, th, None{})
	if a.Phase != store.Rejected || a.Error == nil {
		t.Fatalf("expected a rejected action, got %+v", a)
	}
	if st := r.store.GetState().Orders.Status; st != store.Idle {
		t.Errorf("expected idle, got %s", st)
	}
}

func TestConcurrentDispatchesAreNotDeduplicated(t *testing.T) {
	ctrl := gomock.NewController(t)
	api := mock_client.NewMockAPI(ctrl)
	api.EXPECT().FetchArtists(gomock.Any()).Return([]domain.ArtistFull{{ID: "a1"}}, nil).Times(2)

	r := newRecorder(true)
	first := Dispatch(ctx, r, FetchArtists(api), None{})
	second := Dispatch(ctx, r, FetchArtists(api), None{})
	if first.RequestID == second.RequestID {
		t.Error("expected distinct request ids")
	}
	if len(r.actions) != 4 {
		t.Errorf("expected 4 actions, got %d", len(r.actions))
	}
}

func TestRegisterRequiresRole(t *testing.T) {
	ctrl := gomock.NewController(t)
	api := mock_client.NewMockAPI(ctrl)

	r := newRecorder(false)
	_, err := DispatchWithError(ctx, r, Register(api), domain.UserCore{Email: "a@b.com"})
	if err == nil {
		t.Fatal("expected an error")
	}
	if r.store.GetState().Users.Error == nil {
		t.Error("expected the registration error to be stored")
	}
}
