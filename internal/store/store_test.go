package store

import (
	"errors"
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/sidereusnuntius/fairsonority/internal/domain"
)

func pending(op Op, id string) Async[struct{}] {
	return Async[struct{}]{AsyncMeta: AsyncMeta{Op: op, Phase: Pending, RequestID: id}}
}

func fulfilled[T any](op Op, id string, p T) Async[T] {
	return Async[T]{AsyncMeta: AsyncMeta{Op: op, Phase: Fulfilled, RequestID: id}, Payload: p}
}

func rejected(op Op, id string, err *SerializedError) Async[struct{}] {
	return Async[struct{}]{AsyncMeta: AsyncMeta{Op: op, Phase: Rejected, RequestID: id, Error: err}}
}

var artist = domain.Account{Role: domain.Artist, UserID: "u1", Username: "ana"}

func TestLoadingBetweenPendingAndTerminal(t *testing.T) {
	s := New(InitialState(false))

	s.Dispatch(pending(OpLogin, "a"))
	s.Dispatch(pending(OpLogin, "b"))
	if st := s.GetState().Account.Status; st != Loading {
		t.Fatalf("expected loading, got %s", st)
	}
	s.Dispatch(fulfilled(OpLogin, "a", struct{}{}))
	if st := s.GetState().Account.Status; st != Loading {
		t.Fatalf("expected loading while b is in flight, got %s", st)
	}
	s.Dispatch(rejected(OpLogin, "b", &SerializedError{Name: "Error", Message: "x"}))
	if st := s.GetState().Account.Status; st != Idle {
		t.Fatalf("expected idle, got %s", st)
	}
}

func TestLoginFulfilledThenAccountNotFound(t *testing.T) {
	s := New(InitialState(false))
	s.Dispatch(pending(OpLogin, "1"))
	s.Dispatch(fulfilled(OpLogin, "1", struct{}{}))

	st := s.GetState().Account
	if !st.IsLoggedIn || st.Status != Idle || st.Error != nil {
		t.Fatalf("unexpected state after login: %+v", st)
	}

	notFound := &SerializedError{Name: "HTTPError", Message: "404 Not Found: user not found"}
	s.Dispatch(pending(OpFetchAccount, "2"))
	s.Dispatch(rejected(OpFetchAccount, "2", notFound))

	st = s.GetState().Account
	expected := AccountState{IsLoggedIn: true, Error: notFound}
	if diff := cmp.Diff(expected, st); diff != "" {
		t.Error(diff)
	}
}

func TestAccountWhileLoggedOutIsInvalidState(t *testing.T) {
	s := New(InitialState(false))
	s.Dispatch(fulfilled(OpFetchAccount, "1", artist))

	st := s.GetState().Account
	if st.Account != nil {
		t.Error("account must be absent while logged out")
	}
	if st.Error == nil || st.Error.Name != InvalidStateError {
		t.Errorf("expected %s, got %v", InvalidStateError, st.Error)
	}
}

func TestAccountAbsentWheneverLoggedOut(t *testing.T) {
	actions := []Action{
		fulfilled(OpLogin, "1", struct{}{}),
		fulfilled(OpFetchAccount, "2", artist),
		Logout{},
		fulfilled(OpFetchAccount, "3", artist),
		fulfilled(OpLogin, "4", struct{}{}),
		fulfilled(OpFetchAccount, "5", artist),
		rejected(OpLogin, "6", &SerializedError{Message: "bad credentials"}),
		fulfilled(OpFetchAccount, "7", artist),
	}

	s := New(InitialState(false))
	for _, a := range actions {
		st := s.Dispatch(a).Account
		if !st.IsLoggedIn && st.Account != nil {
			t.Errorf("after %s: account present while logged out", a.Type())
		}
	}
}

func TestAccountFetched(t *testing.T) {
	s := New(InitialState(true))
	s.Dispatch(fulfilled(OpFetchAccount, "1", artist))
	if diff := cmp.Diff(&artist, SelectAccount(s.GetState())); diff != "" {
		t.Error(diff)
	}
	if r := SelectRole(s.GetState()); r != domain.Artist {
		t.Errorf("expected artist role, got %q", r)
	}
}

func TestTitles(t *testing.T) {
	s := New(InitialState(false))
	if SelectAppTitle(s.GetState()) != DefaultTitle || SelectDocumentTitle(s.GetState()) != DefaultTitle {
		t.Error("unexpected default titles")
	}
	st := s.Dispatch(SetTitle{Title: "Orders"})
	if diff := cmp.Diff(TitleState{DocumentTitle: "Orders - FairSonority", AppTitle: "FairSonority: Orders"}, st.Titles); diff != "" {
		t.Error(diff)
	}
}

func TestSnackbar(t *testing.T) {
	s := New(InitialState(false))
	st := s.Dispatch(ShowSnackbar{Snackbar: Snackbar{Factory: func() string { return "built" }, Severity: Info}})
	if sb := SelectSnackbar(st); sb == nil || sb.Content() != "built" {
		t.Fatalf("unexpected snackbar %+v", sb)
	}
	if st = s.Dispatch(HideSnackbar{}); SelectSnackbar(st) != nil {
		t.Error("expected no snackbar")
	}
}

func TestOrders(t *testing.T) {
	bpm := 120
	rec := domain.OrderRecord{ID: "o1", Status: domain.Placed, BPM: &bpm}
	s := New(InitialState(true))

	s.Dispatch(fulfilled(OpFetchOrders, "1", []domain.Order{{User: domain.OrderUser{ID: "c1"}, Order: rec}}))

	failure := &SerializedError{Name: "Error", Message: "network"}
	st := s.Dispatch(rejected(OpFetchOrders, "2", failure))
	if len(st.Orders.Orders) != 1 || st.Orders.Error != failure {
		t.Fatalf("expected stale orders and an error, got %+v", st.Orders)
	}

	updated := rec
	updated.Status = domain.InProgress
	st = s.Dispatch(fulfilled(OpUpdateOrder, "3", updated))
	expected := []domain.Order{{User: domain.OrderUser{ID: "c1"}, Order: updated}}
	if diff := cmp.Diff(expected, SelectOrders(st)); diff != "" {
		t.Error(diff)
	}
	if st.Orders.Error != nil {
		t.Error("expected error to be cleared")
	}

	st = s.Dispatch(fulfilled(OpCreateOrder, "4", domain.OrderRecord{ID: "o2", Status: domain.Placed}))
	if len(st.Orders.Orders) != 2 {
		t.Errorf("expected the created order to be appended, got %d orders", len(st.Orders.Orders))
	}

	if st = s.Dispatch(ClearOrders{}); st.Orders.Orders != nil {
		t.Error("expected orders to be cleared")
	}
}

func TestOrderMovingBackwardsIsInvalidState(t *testing.T) {
	done := domain.OrderRecord{ID: "o1", Status: domain.Done, ResultURL: "https://files.example/o1.wav"}
	cached := []domain.Order{{User: domain.OrderUser{ID: "c1"}, Order: done}}
	s := New(InitialState(true))
	s.Dispatch(fulfilled(OpFetchOrders, "1", cached))

	cases := map[string]Action{
		"update": fulfilled(OpUpdateOrder, "2", domain.OrderRecord{ID: "o1", Status: domain.Placed}),
		"fetch":  fulfilled(OpFetchOrders, "3", []domain.Order{{User: domain.OrderUser{ID: "c1"}, Order: domain.OrderRecord{ID: "o1", Status: domain.InProgress}}}),
	}
	for name, a := range cases {
		t.Run(name, func(t *testing.T) {
			st := s.Dispatch(a)
			if diff := cmp.Diff(cached, SelectOrders(st)); diff != "" {
				t.Error(diff)
			}
			if st.Orders.Error == nil || st.Orders.Error.Name != InvalidStateError {
				t.Errorf("expected %s, got %v", InvalidStateError, st.Orders.Error)
			}
		})
	}
}

func TestDoneOrderWithoutResultIsInvalidState(t *testing.T) {
	s := New(InitialState(true))
	placed := domain.Order{Order: domain.OrderRecord{ID: "o2", Status: domain.Placed}}
	st := s.Dispatch(fulfilled(OpFetchOrders, "1", []domain.Order{
		{Order: domain.OrderRecord{ID: "o1", Status: domain.Done}},
		placed,
	}))

	if diff := cmp.Diff([]domain.Order{placed}, SelectOrders(st)); diff != "" {
		t.Error(diff)
	}
	if st.Orders.Error == nil || st.Orders.Error.Name != InvalidStateError {
		t.Fatalf("expected %s, got %v", InvalidStateError, st.Orders.Error)
	}

	st = s.Dispatch(fulfilled(OpUpdateOrder, "2", domain.OrderRecord{ID: "o2", Status: domain.InProgress}))
	if st.Orders.Error != nil {
		t.Errorf("expected a valid update to clear the error, got %v", st.Orders.Error)
	}
}

func TestSnapshotsAreNotMutated(t *testing.T) {
	rec := domain.OrderRecord{ID: "o1", Status: domain.Placed}
	s := New(InitialState(true))
	before := s.Dispatch(fulfilled(OpFetchOrders, "1", []domain.Order{{Order: rec}}))

	updated := rec
	updated.Status = domain.Rejected
	s.Dispatch(fulfilled(OpUpdateOrder, "2", updated))

	if before.Orders.Orders[0].Order.Status != domain.Placed {
		t.Error("earlier snapshot was modified")
	}
}

func TestUsers(t *testing.T) {
	s := New(InitialState(false))
	user := domain.User{ID: "u1", UserCore: domain.UserCore{Email: "a@b.com", Role: domain.Customer}}

	st := s.Dispatch(fulfilled(OpRegister, "1", user))
	if diff := cmp.Diff(&user, SelectRegisteredUser(st)); diff != "" {
		t.Error(diff)
	}
	if st = s.Dispatch(ClearRegistration{}); st.Users.User != nil {
		t.Error("expected registration to be cleared")
	}

	artists := []domain.ArtistFull{{ID: "a1"}, {ID: "a2"}}
	s.Dispatch(fulfilled(OpFetchArtists, "2", artists))
	st = s.Dispatch(fulfilled(OpCreateRating, "3", domain.Rating{UserID: "u1", ArtistID: "a2", Rating: 4}))
	if n := len(SelectArtists(st)[1].Ratings); n != 1 {
		t.Errorf("expected one rating, got %d", n)
	}
	st = s.Dispatch(fulfilled(OpCreateRating, "4", domain.Rating{UserID: "u1", ArtistID: "a2", Rating: 2}))
	if r := SelectArtists(st)[1].Ratings; len(r) != 1 || r[0].Rating != 2 {
		t.Errorf("expected the rating to be replaced, got %+v", r)
	}
	if len(artists[1].Ratings) != 0 {
		t.Error("fetched payload was modified")
	}
}

func TestNestedDispatchKeepsOrder(t *testing.T) {
	s := New(InitialState(false))
	var first, second []string

	s.Subscribe(func(st RootState) {
		first = append(first, st.Titles.AppTitle)
		if st.Titles.AppTitle == FormatAppBarTitle("a") {
			s.Dispatch(SetTitle{Title: "b"})
		}
	})
	s.Subscribe(func(st RootState) {
		second = append(second, st.Titles.AppTitle)
	})

	s.Dispatch(SetTitle{Title: "a"})

	expected := []string{FormatAppBarTitle("a"), FormatAppBarTitle("b")}
	if diff := cmp.Diff(expected, first); diff != "" {
		t.Error(diff)
	}
	if diff := cmp.Diff(expected, second); diff != "" {
		t.Error(diff)
	}
}

func TestUnsubscribe(t *testing.T) {
	s := New(InitialState(false))
	calls := 0
	unsubscribe := s.Subscribe(func(RootState) { calls++ })

	s.Dispatch(HideSnackbar{})
	unsubscribe()
	unsubscribe()
	s.Dispatch(HideSnackbar{})

	if calls != 1 {
		t.Errorf("expected 1 call, got %d", calls)
	}
}

func TestListenerPanicDoesNotStopDelivery(t *testing.T) {
	s := New(InitialState(false))
	calls := 0
	s.Subscribe(func(RootState) { panic("boom") })
	s.Subscribe(func(RootState) { calls++ })

	s.Dispatch(HideSnackbar{})
	s.Dispatch(HideSnackbar{})
	if calls != 2 {
		t.Errorf("expected 2 calls, got %d", calls)
	}
}

type namedErr struct{}

func (namedErr) Error() string { return "boom" }
func (namedErr) Name() string  { return "CustomError" }

func TestSerializeError(t *testing.T) {
	cases := []struct {
		err      error
		expected *SerializedError
	}{
		{nil, nil},
		{errors.New("plain"), &SerializedError{Name: "Error", Message: "plain"}},
		{fmt.Errorf("wrapped: %w", namedErr{}), &SerializedError{Name: "CustomError", Message: "wrapped: boom"}},
		{&SerializedError{Name: "X", Message: "y"}, &SerializedError{Name: "X", Message: "y"}},
	}
	for _, c := range cases {
		if diff := cmp.Diff(c.expected, SerializeError(c.err)); diff != "" {
			t.Error(diff)
		}
	}
}
