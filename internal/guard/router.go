package guard

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/sidereusnuntius/fairsonority/internal/broadcast"
	"github.com/sidereusnuntius/fairsonority/internal/domain"
	"github.com/sidereusnuntius/fairsonority/internal/store"
)

type Page string

const (
	HomePage     Page = "home"
	LoginPage    Page = "login"
	RegisterPage Page = "register"
	OrdersPage   Page = "orders"
	ArtistsPage  Page = "artists"
	NotFoundPage Page = "not-found"
)

const (
	HomePath  = "/"
	LoginPath = "/login"
)

type Route struct {
	Pattern     string
	Page        Page
	Requirement Requirement
}

// Routes is the application's route table.
var Routes = []Route{
	{Pattern: HomePath, Page: HomePage, Requirement: Auth},
	{Pattern: LoginPath, Page: LoginPage, Requirement: NoAuth},
	{Pattern: "/register", Page: RegisterPage, Requirement: NoAuth},
	{Pattern: "/orders", Page: OrdersPage, Requirement: Auth},
	{Pattern: "/artists", Page: ArtistsPage, Requirement: Role(domain.Customer)},
}

// Resolution is what a path shows. Redirect is set for the redirecting outcomes.
type Resolution struct {
	Path     string
	Pattern  string
	Page     Page
	Outcome  Outcome
	Redirect string
}

type Router struct {
	mux    *chi.Mux
	routes map[string]Route
}

func NewRouter(routes ...Route) *Router {
	r := &Router{
		mux:    chi.NewRouter(),
		routes: make(map[string]Route, len(routes)),
	}
	for _, route := range routes {
		r.routes[route.Pattern] = route
		r.mux.Get(route.Pattern, http.NotFound)
	}
	return r
}

// Match finds the route of path.
func (r *Router) Match(path string) (Route, bool) {
	rctx := chi.NewRouteContext()
	if !r.mux.Match(rctx, http.MethodGet, path) {
		return Route{}, false
	}
	route, ok := r.routes[rctx.RoutePattern()]
	return route, ok
}

// Resolve decides what path shows in state. Unknown paths render the not found page whatever the login state.
func (r *Router) Resolve(path string, state store.RootState) Resolution {
	route, ok := r.Match(path)
	if !ok {
		return Resolution{Path: path, Page: NotFoundPage, Outcome: Render}
	}

	res := Resolution{
		Path:    path,
		Pattern: route.Pattern,
		Page:    route.Page,
		Outcome: Decide(store.SelectIsLoggedIn(state), store.SelectRole(state), route.Requirement),
	}
	switch res.Outcome {
	case RedirectLogin:
		res.Redirect = LoginPath
	case RedirectHome:
		res.Redirect = HomePath
	}
	return res
}

// Watch calls fn with the current resolution of path, then again every time a state change alters it.
func (r *Router) Watch(src broadcast.Source, path string, fn func(Resolution)) *broadcast.Subscription {
	resolve := func(st store.RootState) Resolution {
		return r.Resolve(path, st)
	}
	sub := broadcast.Select(src, resolve, broadcast.Equal[Resolution], fn)
	fn(resolve(src.State()))
	return sub
}
