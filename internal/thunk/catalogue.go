package thunk

import (
	"context"

	"github.com/sidereusnuntius/fairsonority/internal/client"
	"github.com/sidereusnuntius/fairsonority/internal/domain"
	"github.com/sidereusnuntius/fairsonority/internal/store"
	"github.com/sidereusnuntius/fairsonority/internal/validate"
)

// ValidationError names rejections of arguments that would be refused by the backend anyway.
const ValidationError = "ValidationError"

// None is the argument of thunks that take none.
type None = struct{}

func Login(api client.API) Thunk[domain.Credentials, client.Tokens] {
	return Thunk[domain.Credentials, client.Tokens]{
		Op: store.OpLogin,
		Run: func(ctx context.Context, c domain.Credentials) (client.Tokens, error) {
			if c.Username == "" || c.Password == "" {
				return client.Tokens{}, Reject(ValidationError, "username and password are required")
			}
			return api.Login(ctx, c)
		},
	}
}

func FetchAccount(api client.API) Thunk[None, domain.Account] {
	return Thunk[None, domain.Account]{
		Op: store.OpFetchAccount,
		Run: func(ctx context.Context, _ None) (domain.Account, error) {
			return api.Me(ctx)
		},
	}
}

func Register(api client.API) Thunk[domain.UserCore, domain.User] {
	return Thunk[domain.UserCore, domain.User]{
		Op: store.OpRegister,
		Run: func(ctx context.Context, u domain.UserCore) (domain.User, error) {
			if !u.Role.Valid() {
				return domain.User{}, Reject(ValidationError, validate.ErrRoleRequired.Error())
			}
			return api.Register(ctx, u)
		},
	}
}

func FetchOrders(api client.API) Thunk[None, []domain.Order] {
	return Thunk[None, []domain.Order]{
		Op: store.OpFetchOrders,
		Run: func(ctx context.Context, _ None) ([]domain.Order, error) {
			return api.FetchOrders(ctx)
		},
	}
}

func CreateOrder(api client.API) Thunk[domain.OrderSeed, domain.OrderRecord] {
	return Thunk[domain.OrderSeed, domain.OrderRecord]{
		Op: store.OpCreateOrder,
		Run: func(ctx context.Context, seed domain.OrderSeed) (domain.OrderRecord, error) {
			if seed.ArtistID == "" {
				return domain.OrderRecord{}, Reject(ValidationError, "an order needs an artist")
			}
			return api.CreateOrder(ctx, seed)
		},
	}
}

func UpdateOrder(api client.API) Thunk[domain.OrderUpdate, domain.OrderRecord] {
	return Thunk[domain.OrderUpdate, domain.OrderRecord]{
		Op: store.OpUpdateOrder,
		Run: func(ctx context.Context, u domain.OrderUpdate) (domain.OrderRecord, error) {
			return api.UpdateOrder(ctx, u)
		},
	}
}

func FetchArtists(api client.API) Thunk[None, []domain.ArtistFull] {
	return Thunk[None, []domain.ArtistFull]{
		Op: store.OpFetchArtists,
		Run: func(ctx context.Context, _ None) ([]domain.ArtistFull, error) {
			return api.FetchArtists(ctx)
		},
	}
}

func CreateRating(api client.API) Thunk[domain.RatingSeed, domain.Rating] {
	return Thunk[domain.RatingSeed, domain.Rating]{
		Op: store.OpCreateRating,
		Run: func(ctx context.Context, r domain.RatingSeed) (domain.Rating, error) {
			if err := validate.Rating(r.Rating); err != nil {
				return domain.Rating{}, Reject(ValidationError, err.Error())
			}
			return api.CreateRating(ctx, r)
		},
	}
}
