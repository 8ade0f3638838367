package backend

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
	"github.com/sidereusnuntius/fairsonority/internal/client"
	"github.com/sidereusnuntius/fairsonority/internal/domain"
	"github.com/sidereusnuntius/fairsonority/internal/session"
)

type Handler struct {
	service *Service
	tokens  Tokens
}

func New(secret []byte, now func() time.Time) (*Handler, error) {
	tokens, err := NewTokens(secret, now)
	if err != nil {
		return nil, err
	}
	return &Handler{service: NewService(now), tokens: tokens}, nil
}

func (h *Handler) Service() *Service {
	return h.service
}

func (h *Handler) Mount(r chi.Router) {
	r.Post(client.LoginPath, Login(h))
	r.Post("/user/{role}", Register(h))

	r.Group(func(r chi.Router) {
		r.Use(AuthenticatedMiddleware(h))
		r.Post(client.MePath, Me(h))
		r.Get(client.OrderPath, ListOrders(h))
		r.Post(client.OrderPath, PlaceOrder(h))
		r.Patch(client.OrderPath, UpdateOrder(h))
		r.Get(client.ArtistPath, ListArtists(h))
		r.Post(client.RatingPath, Rate(h))
	})
}

// Router returns a router serving the api.
func (h *Handler) Router() chi.Router {
	r := chi.NewRouter()
	h.Mount(r)
	return r
}

type key struct{}

func GetClaims(ctx context.Context) (session.Claims, bool) {
	c, ok := ctx.Value(key{}).(session.Claims)
	return c, ok
}

func AuthenticatedMiddleware(h *Handler) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !ok || token == "" {
				writeError(w, http.StatusUnauthorized, "access token required")
				return
			}
			claims, err := h.tokens.Verify(token)
			if err != nil {
				writeError(w, http.StatusUnauthorized, "invalid access token")
				return
			}
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), key{}, claims)))
		})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("unable to encode response")
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"message": message})
}

func handleErr(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, ErrInvalidInput):
		status = http.StatusBadRequest
	case errors.Is(err, ErrUnauthorized):
		status = http.StatusUnauthorized
	case errors.Is(err, ErrForbidden):
		status = http.StatusForbidden
	case errors.Is(err, ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, ErrConflict):
		status = http.StatusConflict
	}
	if status == http.StatusInternalServerError {
		log.Error().Err(err).Msg("request failed")
		writeError(w, status, "internal error")
		return
	}
	writeError(w, status, err.Error())
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return false
	}
	return true
}

func Login(h *Handler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var creds domain.Credentials
		if !decode(w, r, &creds) {
			return
		}
		u, err := h.service.Authenticate(r.Context(), creds)
		if err != nil {
			handleErr(w, err)
			return
		}
		token, err := h.tokens.Issue(u)
		if err != nil {
			handleErr(w, err)
			return
		}
		log.Debug().Str("user", u.ID).Msg("logged in")
		writeJSON(w, http.StatusOK, client.Tokens{AccessToken: token})
	}
}

func Register(h *Handler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var u domain.UserCore
		if !decode(w, r, &u) {
			return
		}
		role := domain.UserRole(chi.URLParam(r, "role"))
		created, err := h.service.Register(r.Context(), role, u)
		if err != nil {
			handleErr(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, created)
	}
}

func Me(h *Handler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, _ := GetClaims(r.Context())
		a, err := h.service.Account(r.Context(), claims.Subject)
		if err != nil {
			handleErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, a)
	}
}

func ListOrders(h *Handler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, _ := GetClaims(r.Context())
		rows, err := h.service.Orders(r.Context(), claims.Subject)
		if err != nil {
			handleErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, rows)
	}
}

func PlaceOrder(h *Handler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, _ := GetClaims(r.Context())
		var seed domain.OrderSeed
		if !decode(w, r, &seed) {
			return
		}
		rec, err := h.service.PlaceOrder(r.Context(), claims.Subject, seed)
		if err != nil {
			handleErr(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, rec)
	}
}

func UpdateOrder(h *Handler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, _ := GetClaims(r.Context())
		var u domain.OrderUpdate
		if !decode(w, r, &u) {
			return
		}
		rec, err := h.service.UpdateOrder(r.Context(), claims.Subject, u)
		if err != nil {
			handleErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, rec)
	}
}

func ListArtists(h *Handler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		artists, err := h.service.Artists(r.Context())
		if err != nil {
			handleErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, artists)
	}
}

func Rate(h *Handler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, _ := GetClaims(r.Context())
		var seed domain.RatingSeed
		if !decode(w, r, &seed) {
			return
		}
		rating, err := h.service.Rate(r.Context(), claims.Subject, seed)
		if err != nil {
			handleErr(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, rating)
	}
}
