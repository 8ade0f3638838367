package app

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/sidereusnuntius/fairsonority/internal/broadcast"
	"github.com/sidereusnuntius/fairsonority/internal/domain"
	"github.com/sidereusnuntius/fairsonority/internal/form"
	"github.com/sidereusnuntius/fairsonority/internal/store"
	"github.com/sidereusnuntius/fairsonority/internal/thunk"
)

// ArtistsPage lists the artists a customer can order from and rate.
type ArtistsPage struct {
	app     *App
	loading atomic.Bool

	mu      sync.Mutex
	artists []domain.ArtistFull
}

func (a *App) ArtistsPage() *ArtistsPage {
	return &ArtistsPage{app: a}
}

// Open sets the title, follows the cached roster and loads it. The returned function stops following it.
func (p *ArtistsPage) Open(ctx context.Context) (release func(), err error) {
	p.app.SetTitle("Artists")
	release, err = broadcast.Mount(p.app.Broadcaster, func(sc *broadcast.Scope) error {
		p.set(store.SelectArtists(sc.State()))
		broadcast.Select(sc, store.SelectArtists, sameSlice[domain.ArtistFull], p.set)
		return nil
	})
	if err != nil {
		return nil, err
	}
	p.Load(ctx)
	return release, nil
}

func (p *ArtistsPage) set(artists []domain.ArtistFull) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.artists = artists
}

func (p *ArtistsPage) Artists() []domain.ArtistFull {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.artists == nil {
		return []domain.ArtistFull{}
	}
	return p.artists
}

func (p *ArtistsPage) Loading() bool {
	return p.loading.Load()
}

func (p *ArtistsPage) Load(ctx context.Context) error {
	p.loading.Store(true)
	defer p.loading.Store(false)
	if _, err := thunk.DispatchWithError(ctx, p.app.Store, thunk.FetchArtists(p.app.API), thunk.None{}); err != nil {
		p.app.ShowError("Artists loading failed: ", err)
		return err
	}
	return nil
}

// ArtistForm is a form about one artist.
type ArtistForm struct {
	ArtistID string
	*form.State
}

func (p *ArtistsPage) OrderForm(artistID string) (*ArtistForm, error) {
	s, err := form.NewStateFromConfig(orderForm(p.app.Now))
	if err != nil {
		return nil, err
	}
	return &ArtistForm{ArtistID: artistID, State: s}, nil
}

func (p *ArtistsPage) RatingForm(artistID string) (*ArtistForm, error) {
	s, err := form.NewStateFromConfig(ratingForm)
	if err != nil {
		return nil, err
	}
	return &ArtistForm{ArtistID: artistID, State: s}, nil
}

// CreateOrder places the order described by f and clears f once the order is placed.
func (p *ArtistsPage) CreateOrder(ctx context.Context, f *ArtistForm) (domain.OrderRecord, error) {
	if form.HasErrors(f.UpdateErrors()) {
		return domain.OrderRecord{}, ErrInvalidForm
	}
	seed, err := form.UpdateModel(domain.OrderSeed{ArtistID: f.ArtistID}, f.State)
	if err != nil {
		return domain.OrderRecord{}, err
	}

	p.loading.Store(true)
	defer p.loading.Store(false)
	rec, err := thunk.DispatchWithError(ctx, p.app.Store, thunk.CreateOrder(p.app.API), seed)
	if err != nil {
		p.app.ShowError("Artist order create failed: ", err)
		return domain.OrderRecord{}, err
	}
	f.Reset()
	return rec, nil
}

// Rate rates the artist of f, clears f and reloads the roster.
func (p *ArtistsPage) Rate(ctx context.Context, f *ArtistForm) error {
	if form.HasErrors(f.UpdateErrors()) {
		return ErrInvalidForm
	}
	seed, err := form.UpdateModel(domain.RatingSeed{ArtistID: f.ArtistID}, f.State)
	if err != nil {
		return err
	}

	p.loading.Store(true)
	if _, err := thunk.DispatchWithError(ctx, p.app.Store, thunk.CreateRating(p.app.API), seed); err != nil {
		p.app.ShowError("Artists rating create failed: ", err)
		p.loading.Store(false)
		return err
	}
	f.Reset()
	return p.Load(ctx)
}
