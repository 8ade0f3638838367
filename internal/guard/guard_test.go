package guard

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/sidereusnuntius/fairsonority/internal/broadcast"
	"github.com/sidereusnuntius/fairsonority/internal/domain"
	"github.com/sidereusnuntius/fairsonority/internal/store"
)

func TestDecide(t *testing.T) {
	cases := []struct {
		loggedIn bool
		role     domain.UserRole
		req      Requirement
		expected Outcome
	}{
		{false, "", NoAuth, Render},
		{true, domain.Artist, NoAuth, RedirectHome},
		{false, "", Auth, RedirectLogin},
		{true, "", Auth, Render},
		{true, domain.Customer, Role(domain.Customer), Render},
		{true, domain.Artist, Role(domain.Customer), Nothing},
		{true, "", Role(domain.Customer), Nothing},
		{false, domain.Customer, Role(domain.Customer), Nothing},
	}
	for _, c := range cases {
		t.Run(c.req.String(), func(t *testing.T) {
			if o := Decide(c.loggedIn, c.role, c.req); o != c.expected {
				t.Errorf("Decide(%t, %q) = %s, expected %s", c.loggedIn, c.role, o, c.expected)
			}
		})
	}
}

func loggedInAs(role domain.UserRole) store.RootState {
	st := store.InitialState(true)
	st.Account.Account = &domain.Account{Role: role, UserID: "u1", Username: "u"}
	return st
}

func TestArtistsRoute(t *testing.T) {
	r := NewRouter(Routes...)

	cases := []struct {
		name     string
		state    store.RootState
		expected Outcome
	}{
		{"customer", loggedInAs(domain.Customer), Render},
		{"artist", loggedInAs(domain.Artist), Nothing},
		{"logged out", store.InitialState(false), Nothing},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			res := r.Resolve("/artists", c.state)
			if res.Page != ArtistsPage || res.Outcome != c.expected {
				t.Errorf("unexpected resolution %+v", res)
			}
		})
	}
}

func TestResolve(t *testing.T) {
	r := NewRouter(Routes...)
	out := store.InitialState(false)
	in := loggedInAs(domain.Artist)

	cases := []struct {
		path     string
		state    store.RootState
		expected Resolution
	}{
		{"/", out, Resolution{Path: "/", Pattern: "/", Page: HomePage, Outcome: RedirectLogin, Redirect: LoginPath}},
		{"/", in, Resolution{Path: "/", Pattern: "/", Page: HomePage, Outcome: Render}},
		{"/login", in, Resolution{Path: "/login", Pattern: "/login", Page: LoginPage, Outcome: RedirectHome, Redirect: HomePath}},
		{"/register", out, Resolution{Path: "/register", Pattern: "/register", Page: RegisterPage, Outcome: Render}},
		{"/orders", out, Resolution{Path: "/orders", Pattern: "/orders", Page: OrdersPage, Outcome: RedirectLogin, Redirect: LoginPath}},
		{"/nowhere", out, Resolution{Path: "/nowhere", Page: NotFoundPage, Outcome: Render}},
		{"/nowhere", in, Resolution{Path: "/nowhere", Page: NotFoundPage, Outcome: Render}},
	}
	for _, c := range cases {
		t.Run(c.path, func(t *testing.T) {
			if diff := cmp.Diff(c.expected, r.Resolve(c.path, c.state)); diff != "" {
				t.Error(diff)
			}
		})
	}
}

func TestWatch(t *testing.T) {
	s := store.New(store.InitialState(false))
	b := broadcast.New(s)
	r := NewRouter(Routes...)

	var outcomes []Outcome
	sub := r.Watch(b, "/orders", func(res Resolution) {
		outcomes = append(outcomes, res.Outcome)
	})
	defer sub.Close()

	s.Dispatch(store.SetTitle{Title: "Orders"})
	s.Dispatch(store.Async[struct{}]{AsyncMeta: store.AsyncMeta{Op: store.OpLogin, Phase: store.Fulfilled}})
	s.Dispatch(store.Async[domain.Account]{
		AsyncMeta: store.AsyncMeta{Op: store.OpFetchAccount, Phase: store.Fulfilled},
		Payload:   domain.Account{Role: domain.Customer},
	})
	s.Dispatch(store.Logout{})

	expected := []Outcome{RedirectLogin, Render, RedirectLogin}
	if diff := cmp.Diff(expected, outcomes); diff != "" {
		t.Error(diff)
	}
}
