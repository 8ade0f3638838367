package app

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/sidereusnuntius/fairsonority/internal/broadcast"
	"github.com/sidereusnuntius/fairsonority/internal/domain"
	"github.com/sidereusnuntius/fairsonority/internal/store"
	"github.com/sidereusnuntius/fairsonority/internal/thunk"
)

// OrdersPage lists the orders of the logged in user and moves them along their lifecycle.
type OrdersPage struct {
	app     *App
	loading atomic.Bool

	mu     sync.Mutex
	orders []domain.Order
}

func (a *App) OrdersPage() *OrdersPage {
	return &OrdersPage{app: a}
}

// Open sets the title, follows the cached orders and loads them. The returned function stops following them.
func (p *OrdersPage) Open(ctx context.Context) (release func(), err error) {
	p.app.SetTitle("My Orders")
	release, err = broadcast.Mount(p.app.Broadcaster, func(sc *broadcast.Scope) error {
		p.set(store.SelectOrders(sc.State()))
		broadcast.Select(sc, store.SelectOrders, sameSlice[domain.Order], p.set)
		return nil
	})
	if err != nil {
		return nil, err
	}
	p.Load(ctx)
	return release, nil
}

func (p *OrdersPage) set(orders []domain.Order) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.orders = orders
}

// Orders returns the orders shown, an empty list while none are cached.
func (p *OrdersPage) Orders() []domain.Order {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.orders == nil {
		return []domain.Order{}
	}
	return p.orders
}

func (p *OrdersPage) Loading() bool {
	return p.loading.Load()
}

func (p *OrdersPage) Load(ctx context.Context) error {
	p.loading.Store(true)
	defer p.loading.Store(false)
	if _, err := thunk.DispatchWithError(ctx, p.app.Store, thunk.FetchOrders(p.app.API), thunk.None{}); err != nil {
		p.app.ShowError("Orders loading failed: ", err)
		return err
	}
	return nil
}

// Update applies u and reloads the orders.
func (p *OrdersPage) Update(ctx context.Context, u domain.OrderUpdate) error {
	p.loading.Store(true)
	if _, err := thunk.DispatchWithError(ctx, p.app.Store, thunk.UpdateOrder(p.app.API), u); err != nil {
		p.app.ShowError("Failed to update order: ", err)
		p.loading.Store(false)
		return err
	}
	return p.Load(ctx)
}

// sameSlice reports whether a and b are the same slice. Reducers replace a cached list whenever it changes, so
// identity is enough to skip snapshots that left it alone.
func sameSlice[T any](a, b []T) bool {
	if len(a) != len(b) || (a == nil) != (b == nil) {
		return false
	}
	return len(a) == 0 || &a[0] == &b[0]
}
