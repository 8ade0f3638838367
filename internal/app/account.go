package app

import (
	"context"

	"github.com/rs/zerolog/log"
	"github.com/sidereusnuntius/fairsonority/internal/domain"
	"github.com/sidereusnuntius/fairsonority/internal/form"
	"github.com/sidereusnuntius/fairsonority/internal/store"
	"github.com/sidereusnuntius/fairsonority/internal/thunk"
)

const loginError = "Login: "

type LoginPage struct {
	app  *App
	Form *form.State
}

func (a *App) LoginPage() (*LoginPage, error) {
	f, err := form.NewStateFromConfig(loginForm)
	if err != nil {
		return nil, err
	}
	return &LoginPage{app: a, Form: f}, nil
}

func (p *LoginPage) Open() {
	p.app.SetTitle("Login")
}

// Submit logs in with the form's credentials, then fetches the account.
func (p *LoginPage) Submit(ctx context.Context) error {
	if form.HasErrors(p.Form.UpdateErrors()) {
		return ErrInvalidForm
	}
	creds, err := form.CreateModel[domain.Credentials](p.Form)
	if err != nil {
		return err
	}
	return p.app.login(ctx, creds)
}

func (a *App) login(ctx context.Context, creds domain.Credentials) error {
	if _, err := thunk.DispatchWithError(ctx, a.Store, thunk.Login(a.API), creds); err != nil {
		a.ShowError(loginError, err)
		return err
	}
	// A failed account fetch is recorded in the account slice; the login itself succeeded.
	if _, err := thunk.DispatchWithError(ctx, a.Store, thunk.FetchAccount(a.API), thunk.None{}); err != nil {
		log.Warn().Err(err).Msg("failed to fetch the account after login")
	}
	return nil
}

type RegisterPage struct {
	app        *App
	Form       *form.State
	ArtistForm *form.State
}

func (a *App) RegisterPage() (*RegisterPage, error) {
	base, err := form.NewState(registrationKeys, registrationForm)
	if err != nil {
		return nil, err
	}
	artist, err := form.NewState(artistOnlyKeys, registrationForm)
	if err != nil {
		return nil, err
	}
	return &RegisterPage{app: a, Form: base, ArtistForm: artist}, nil
}

func (p *RegisterPage) Open() {
	p.app.SetTitle("Register")
}

func (p *RegisterPage) Role() domain.UserRole {
	r, _ := form.Get[domain.UserRole](p.Form, "role")
	return r
}

// Validate validates the fields the selected role requires and returns their messages, the artist only fields
// last.
func (p *RegisterPage) Validate() []string {
	errs := p.Form.UpdateErrors()
	if p.Role() == domain.Artist {
		errs = append(errs, p.ArtistForm.UpdateErrors()...)
	}
	return errs
}

func (p *RegisterPage) model() (domain.UserCore, error) {
	u, err := form.CreateModel[domain.UserCore](p.Form)
	if err != nil || u.Role != domain.Artist {
		return u, err
	}
	return form.UpdateModel(u, p.ArtistForm)
}

// Submit registers the user, logs in with the new credentials and clears the registration.
func (p *RegisterPage) Submit(ctx context.Context) error {
	if form.HasErrors(p.Validate()) {
		return ErrInvalidForm
	}
	u, err := p.model()
	if err != nil {
		return err
	}

	if _, err := thunk.DispatchWithError(ctx, p.app.Store, thunk.Register(p.app.API), u); err != nil {
		p.app.ShowError("Register: ", err)
		return err
	}
	if registered := store.SelectRegisteredUser(p.app.Store.GetState()); registered != nil {
		log.Info().Str("user", registered.ID).Str("role", string(u.Role)).Msg("registered")
	}
	if err := p.app.login(ctx, domain.Credentials{Username: u.Email, Password: u.Password}); err != nil {
		return err
	}
	p.app.Store.Dispatch(store.ClearRegistration{})
	return nil
}
