// Package app wires the session, the api client, the store and its broadcaster into the pages of the client.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sidereusnuntius/fairsonority/internal/broadcast"
	"github.com/sidereusnuntius/fairsonority/internal/client"
	"github.com/sidereusnuntius/fairsonority/internal/config"
	"github.com/sidereusnuntius/fairsonority/internal/domain"
	"github.com/sidereusnuntius/fairsonority/internal/guard"
	"github.com/sidereusnuntius/fairsonority/internal/session"
	"github.com/sidereusnuntius/fairsonority/internal/store"
	"github.com/sidereusnuntius/fairsonority/internal/thunk"
)

var ErrInvalidForm = errors.New("the form has errors")

// App is the context every page runs in. It owns the store and the broadcaster for their whole lifetime.
type App struct {
	Config      config.Configuration
	Session     *session.Session
	API         client.API
	Store       *store.Store
	Broadcaster *broadcast.Broadcaster
	Router      *guard.Router
	// Now is the clock deadlines are validated against.
	Now func() time.Time
}

func New(cfg config.Configuration, sess *session.Session, api client.API) *App {
	s := store.New(store.InitialState(sess.HasAccessToken()))
	return &App{
		Config:      cfg,
		Session:     sess,
		API:         api,
		Store:       s,
		Broadcaster: broadcast.New(s),
		Router:      guard.NewRouter(guard.Routes...),
		Now:         time.Now,
	}
}

// Bootstrap restores the account of a persisted session. An expired or unreadable token logs the user out.
func (a *App) Bootstrap(ctx context.Context) error {
	if !a.Session.HasAccessToken() {
		return nil
	}

	claims, err := a.Session.Claims()
	if err != nil || claims.Expired(a.Now()) {
		log.Info().Err(err).Msg("discarding persisted session")
		return a.Logout()
	}

	if _, err := thunk.DispatchWithError(ctx, a.Store, thunk.FetchAccount(a.API), thunk.None{}); err != nil {
		if rejectedSession(err) {
			log.Info().Err(err).Msg("persisted session rejected")
			return a.Logout()
		}
		return err
	}
	return nil
}

// rejectedSession tells whether the backend refused the token or no longer knows its user.
func rejectedSession(err error) bool {
	var se *store.SerializedError
	if !errors.As(err, &se) || se.Name != client.HTTPError {
		return false
	}
	return se.Code == strconv.Itoa(http.StatusUnauthorized) || se.Code == strconv.Itoa(http.StatusNotFound)
}

// Logout forgets the token and clears the user's data from the store.
func (a *App) Logout() error {
	err := a.API.Logout()
	a.Store.Dispatch(store.Logout{})
	if err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	return nil
}

func (a *App) SetTitle(title string) {
	a.Store.Dispatch(store.SetTitle{Title: title})
}

// ShowError shows err in an error snackbar, after prefix.
func (a *App) ShowError(prefix string, err error) {
	a.Store.Dispatch(store.ShowSnackbar{Snackbar: store.Snackbar{
		Text:     prefix + store.SerializeError(err).Message,
		Severity: store.Error,
	}})
}

func (a *App) Notify(text string, severity store.Severity) {
	a.Store.Dispatch(store.ShowSnackbar{Snackbar: store.Snackbar{Text: text, Severity: severity}})
}

func (a *App) HideSnackbar() {
	a.Store.Dispatch(store.HideSnackbar{})
}

// Role returns the role of the logged in user. Until the account is fetched, it falls back to the role claimed
// by the token.
func (a *App) Role() domain.UserRole {
	if r := store.SelectRole(a.Store.GetState()); r != "" {
		return r
	}
	if c, err := a.Session.Claims(); err == nil {
		return c.Role
	}
	return ""
}

// ChromeView receives the parts shown around every page. Nil callbacks are skipped.
type ChromeView struct {
	AppTitle      func(string)
	DocumentTitle func(string)
	Snackbar      func(store.SnackbarState)
}

// Chrome keeps v up to date while sc is mounted. Every callback is called with the current value first.
func (a *App) Chrome(sc *broadcast.Scope, v ChromeView) {
	st := sc.State()
	if v.AppTitle != nil {
		v.AppTitle(store.SelectAppTitle(st))
		broadcast.Select(sc, store.SelectAppTitle, broadcast.Equal[string], v.AppTitle)
	}
	if v.DocumentTitle != nil {
		v.DocumentTitle(store.SelectDocumentTitle(st))
		broadcast.Select(sc, store.SelectDocumentTitle, broadcast.Equal[string], v.DocumentTitle)
	}
	if v.Snackbar != nil {
		v.Snackbar(store.SelectSnackbar(st))
		broadcast.Select(sc, store.SelectSnackbar, broadcast.Equal[store.SnackbarState], v.Snackbar)
	}
}

// Guard follows the resolution of path while sc is mounted, calling fn with the current resolution first and
// again whenever a state change alters it.
func (a *App) Guard(sc *broadcast.Scope, path string, fn func(guard.Resolution)) {
	a.Router.Watch(sc, path, fn)
}
