package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/rs/zerolog/log"
	"github.com/sidereusnuntius/fairsonority/internal/app"
	"github.com/sidereusnuntius/fairsonority/internal/broadcast"
	"github.com/sidereusnuntius/fairsonority/internal/domain"
	"github.com/sidereusnuntius/fairsonority/internal/form"
	"github.com/sidereusnuntius/fairsonority/internal/guard"
	"github.com/sidereusnuntius/fairsonority/internal/safemap"
	"github.com/sidereusnuntius/fairsonority/internal/store"
	"github.com/spf13/pflag"
)

var ErrUsage = errors.New("invalid arguments, see --help")

type command struct {
	path string
	run  func(ctx context.Context, a *app.App, args []string) error
}

var commands = map[string]command{
	"login":    {guard.LoginPath, login},
	"register": {"/register", register},
	"logout":   {"", logout},
	"whoami":   {guard.HomePath, whoami},
	"orders":   {"/orders", orders},
	"update":   {"/orders", update},
	"artists":  {"/artists", artists},
	"order":    {"/artists", order},
	"rate":     {"/artists", rate},
}

func run(ctx context.Context, a *app.App, args []string) error {
	cmd, ok := commands[args[0]]
	if !ok {
		return fmt.Errorf("unknown command %q", args[0])
	}
	if cmd.path == "" {
		return cmd.run(ctx, a, args[1:])
	}

	var initial *guard.Resolution
	release, err := broadcast.Mount(a.Broadcaster, func(sc *broadcast.Scope) error {
		a.Guard(sc, cmd.path, func(res guard.Resolution) {
			if initial == nil {
				initial = &res
				return
			}
			log.Debug().Str("path", res.Path).Stringer("outcome", res.Outcome).Str("redirect", res.Redirect).Msg("route changed")
		})
		return nil
	})
	if err != nil {
		return err
	}
	defer release()

	switch initial.Outcome {
	case guard.RedirectLogin:
		return errors.New("you need to log in first")
	case guard.RedirectHome:
		return errors.New("you are already logged in")
	case guard.Nothing:
		return fmt.Errorf("%s is not available to your account", args[0])
	}
	return cmd.run(ctx, a, args[1:])
}

// fill passes the given inputs to s in order. Inputs that were not given are nil and left out.
func fill(s *form.State, inputs ...safemap.Entry[string, *string]) {
	safemap.FilterAbsent(inputs...).Range(func(key string, value *string) bool {
		_ = s.UpdateValue(key, *value)
		return true
	})
}

// flagValue returns the value of the named flag, or nil if it was not set.
func flagValue(fs *pflag.FlagSet, name string) *string {
	if !fs.Changed(name) {
		return nil
	}
	v := fs.Lookup(name).Value.String()
	return &v
}

func arg(args []string, i int) *string {
	if i >= len(args) {
		return nil
	}
	return &args[i]
}

// fieldErrors reports the messages of the fields of s that failed validation.
func fieldErrors(s *form.State) error {
	var errs []error
	for _, k := range s.Keys() {
		if msg := s.Error(k); msg != "" {
			errs = append(errs, fmt.Errorf("%s: %s", app.FieldLabels.MustGet(k), msg))
		}
	}
	return errors.Join(errs...)
}

func login(ctx context.Context, a *app.App, args []string) error {
	if len(args) != 2 {
		return ErrUsage
	}
	p, err := a.LoginPage()
	if err != nil {
		return err
	}
	p.Open()
	_ = p.Form.UpdateValue("username", args[0])
	_ = p.Form.UpdateValue("password", args[1])
	if err := p.Submit(ctx); err != nil {
		if errors.Is(err, app.ErrInvalidForm) {
			return fieldErrors(p.Form)
		}
		return err
	}
	return whoami(ctx, a, nil)
}

func logout(ctx context.Context, a *app.App, args []string) error {
	return a.Logout()
}

func whoami(ctx context.Context, a *app.App, args []string) error {
	acc := store.SelectAccount(a.Store.GetState())
	if acc == nil {
		fmt.Println("logged in, account unavailable")
		return nil
	}
	fmt.Printf("%s (%s)\n", acc.Username, app.RoleLabels.MustGet(acc.Role))
	return nil
}

func register(ctx context.Context, a *app.App, args []string) error {
	fs := pflag.NewFlagSet("register", pflag.ContinueOnError)
	role := fs.String("role", string(domain.Customer), "customer or artist")
	genres := fs.String("genres", "", "comma separated genres, for artists")
	description := fs.String("description", "", "profile description, for artists")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 4 {
		return ErrUsage
	}

	p, err := a.RegisterPage()
	if err != nil {
		return err
	}
	p.Open()
	values := []string{"email", "password", "firstName", "lastName"}
	for i, k := range values {
		_ = p.Form.UpdateValue(k, fs.Arg(i))
	}
	_ = p.Form.UpdateValue("role", *role)
	_ = p.ArtistForm.UpdateValue("genres", *genres)
	_ = p.ArtistForm.UpdateValue("profileDescription", *description)

	if err := p.Submit(ctx); err != nil {
		if errors.Is(err, app.ErrInvalidForm) {
			return errors.Join(fieldErrors(p.Form), fieldErrors(p.ArtistForm))
		}
		return err
	}
	return whoami(ctx, a, nil)
}

func orders(ctx context.Context, a *app.App, args []string) error {
	p := a.OrdersPage()
	release, err := p.Open(ctx)
	if err != nil {
		return err
	}
	defer release()

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSTATUS\tWITH\tGENRE\tDEADLINE\tRESULT")
	for _, o := range p.Orders() {
		fmt.Fprintf(w, "%s\t%s\t%s %s\t%s\t%s\t%s\n",
			o.Order.ID, o.Order.Status, o.User.Name, o.User.LastName,
			strings.Join(o.Order.Genre, ","), o.Order.Deadline.Format(app.DateLayout), o.Order.ResultURL)
	}
	return w.Flush()
}

func update(ctx context.Context, a *app.App, args []string) error {
	if len(args) < 2 || len(args) > 3 {
		return ErrUsage
	}
	u := domain.OrderUpdate{OrderID: args[0], Status: domain.OrderStatus(strings.ToUpper(args[1]))}
	if len(args) == 3 {
		u.ResultURL = args[2]
	}
	p := a.OrdersPage()
	release, err := p.Open(ctx)
	if err != nil {
		return err
	}
	defer release()
	return p.Update(ctx, u)
}

func artists(ctx context.Context, a *app.App, args []string) error {
	p := a.ArtistsPage()
	release, err := p.Open(ctx)
	if err != nil {
		return err
	}
	defer release()

	account := store.SelectAccount(a.Store.GetState())
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tGENRES\tRATING\tYOURS")
	for _, artist := range p.Artists() {
		yours := "-"
		if account != nil {
			if r := domain.FindRating(account.UserID, artist.Ratings); r > 0 {
				yours = fmt.Sprint(r)
			}
		}
		fmt.Fprintf(w, "%s\t%s %s\t%s\t%.1f\t%s\n", artist.ID, artist.FirstName, artist.LastName,
			strings.Join(artist.Genres, ","), domain.CountRating(artist.Ratings), yours)
	}
	return w.Flush()
}

func order(ctx context.Context, a *app.App, args []string) error {
	fs := pflag.NewFlagSet("order", pflag.ContinueOnError)
	fs.String("bpm", "", "beats per minute")
	fs.String("genre", "", "comma separated genres")
	fs.String("date", "", "deadline, as YYYY-MM-DD")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 2 {
		return ErrUsage
	}

	p := a.ArtistsPage()
	f, err := p.OrderForm(fs.Arg(0))
	if err != nil {
		return err
	}
	fill(f.State,
		safemap.E("bpm", flagValue(fs, "bpm")),
		safemap.E("comment", arg(fs.Args(), 1)),
		safemap.E("genre", flagValue(fs, "genre")),
		safemap.E("date", flagValue(fs, "date")),
	)

	rec, err := p.CreateOrder(ctx, f)
	if err != nil {
		if errors.Is(err, app.ErrInvalidForm) {
			return fieldErrors(f.State)
		}
		return err
	}
	a.Notify("order "+rec.ID+" placed", store.Success)
	return nil
}

func rate(ctx context.Context, a *app.App, args []string) error {
	if len(args) < 2 || len(args) > 3 {
		return ErrUsage
	}
	p := a.ArtistsPage()
	f, err := p.RatingForm(args[0])
	if err != nil {
		return err
	}
	fill(f.State, safemap.E("rating", arg(args, 1)), safemap.E("comment", arg(args, 2)))
	if err := p.Rate(ctx, f); err != nil {
		if errors.Is(err, app.ErrInvalidForm) {
			return fieldErrors(f.State)
		}
		return err
	}
	a.Notify("rating saved", store.Success)
	return nil
}
