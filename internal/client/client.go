package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/sidereusnuntius/fairsonority/internal/domain"
	"github.com/sidereusnuntius/fairsonority/internal/session"
)

const (
	LoginPath  = "/auth/login"
	MePath     = "/me"
	OrderPath  = "/api/order"
	ArtistPath = "/api/artist"
	RatingPath = "/api/artist/rating"
)

func RegisterPath(role domain.UserRole) string {
	return "/user/" + string(role)
}

//go:generate mockgen -source=client.go -destination=../mocks/mock_client.go -package=mock_client API

// API is the backend as seen by the rest of the client.
type API interface {
	// Login exchanges credentials for an access token and stores it in the session.
	Login(ctx context.Context, credentials domain.Credentials) (Tokens, error)
	// Logout forgets the access token.
	Logout() error
	Me(ctx context.Context) (domain.Account, error)
	Register(ctx context.Context, user domain.UserCore) (domain.User, error)
	// FetchOrders lists the caller's orders, each labelled with the other party of the order.
	FetchOrders(ctx context.Context) ([]domain.Order, error)
	CreateOrder(ctx context.Context, seed domain.OrderSeed) (domain.OrderRecord, error)
	UpdateOrder(ctx context.Context, update domain.OrderUpdate) (domain.OrderRecord, error)
	FetchArtists(ctx context.Context) ([]domain.ArtistFull, error)
	CreateRating(ctx context.Context, rating domain.RatingSeed) (domain.Rating, error)
}

type Tokens struct {
	AccessToken string `json:"access_token"`
}

// HTTPError is the name of StatusError once serialized into the store.
const HTTPError = "HTTPError"

// StatusError is returned for answers with a status code of 400 or more.
type StatusError struct {
	Status  int
	Message string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%d %s: %s", e.Status, http.StatusText(e.Status), e.Message)
}

func (e *StatusError) Name() string {
	return HTTPError
}

// Code is the status code, as text.
func (e *StatusError) Code() string {
	return strconv.Itoa(e.Status)
}

// HttpClient talks to the REST backend. Every request carries the session's bearer token, except requests to
// the session's excluded paths.
type HttpClient struct {
	base    *url.URL
	client  *http.Client
	session *session.Session
}

func New(baseURL string, client *http.Client, s *session.Session) (*HttpClient, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid api url %q: %w", baseURL, err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("invalid api url %q: scheme and host are required", baseURL)
	}

	s.AddExcludedPaths(LoginPath)
	for _, r := range domain.Roles {
		s.AddExcludedPaths(RegisterPath(r))
	}

	return &HttpClient{
		base:    base,
		client:  client,
		session: s,
	}, nil
}

func (c *HttpClient) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base.JoinPath(path).String(), reader)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	c.session.Authorize(req, path)

	res, err := c.client.Do(req)
	if err != nil {
		log.Error().Err(err).Str("method", method).Str("path", path).Msg("failed to do request")
		return err
	}
	defer res.Body.Close()

	if res.StatusCode >= http.StatusBadRequest {
		content, _ := io.ReadAll(res.Body)
		log.Debug().Int("code", res.StatusCode).Bytes("response body", content).Str("path", path).Msg("request failed")
		return &StatusError{Status: res.StatusCode, Message: errorMessage(content)}
	}

	if out == nil {
		return nil
	}
	if err = json.NewDecoder(res.Body).Decode(out); err != nil {
		log.Error().Err(err).Str("path", path).Msg("response body unmarshaling error")
		return err
	}
	return nil
}

// errorMessage extracts the message of a JSON error body, falling back to the raw body.
func errorMessage(content []byte) string {
	var body struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(content, &body); err == nil && body.Message != "" {
		return body.Message
	}
	return strings.TrimSpace(string(content))
}

func (c *HttpClient) Login(ctx context.Context, credentials domain.Credentials) (tokens Tokens, err error) {
	if err = c.do(ctx, http.MethodPost, LoginPath, credentials, &tokens); err != nil {
		return
	}
	if tokens.AccessToken == "" {
		return tokens, errors.New("login answer carries no access token")
	}
	err = c.session.SetAccessToken(tokens.AccessToken)
	return
}

func (c *HttpClient) Logout() error {
	return c.session.DeleteAccessToken()
}

func (c *HttpClient) Me(ctx context.Context) (a domain.Account, err error) {
	err = c.do(ctx, http.MethodPost, MePath, nil, &a)
	return
}

func (c *HttpClient) Register(ctx context.Context, user domain.UserCore) (u domain.User, err error) {
	if !user.Role.Valid() {
		return u, fmt.Errorf("cannot register user with role %q", user.Role)
	}
	err = c.do(ctx, http.MethodPost, RegisterPath(user.Role), user, &u)
	return
}

// orderRow is an order as the backend lists it: the customer is in from, the artist in to.
type orderRow struct {
	From  *domain.OrderUser  `json:"from"`
	To    *domain.OrderUser  `json:"to"`
	Order domain.OrderRecord `json:"order"`
}

func (c *HttpClient) FetchOrders(ctx context.Context) ([]domain.Order, error) {
	claims, err := c.session.Claims()
	if err != nil {
		return nil, err
	}

	var rows []orderRow
	if err = c.do(ctx, http.MethodGet, OrderPath, nil, &rows); err != nil {
		return nil, err
	}

	orders := make([]domain.Order, 0, len(rows))
	for _, row := range rows {
		user := row.To
		if claims.Role == domain.Artist {
			user = row.From
		}
		o := domain.Order{Order: row.Order}
		if user != nil {
			o.User = *user
		}
		orders = append(orders, o)
	}
	return orders, nil
}

func (c *HttpClient) CreateOrder(ctx context.Context, seed domain.OrderSeed) (o domain.OrderRecord, err error) {
	err = c.do(ctx, http.MethodPost, OrderPath, seed, &o)
	return
}

func (c *HttpClient) UpdateOrder(ctx context.Context, update domain.OrderUpdate) (o domain.OrderRecord, err error) {
	if err = update.Validate(); err != nil {
		return
	}
	err = c.do(ctx, http.MethodPatch, OrderPath, update, &o)
	return
}

func (c *HttpClient) FetchArtists(ctx context.Context) (artists []domain.ArtistFull, err error) {
	err = c.do(ctx, http.MethodGet, ArtistPath, nil, &artists)
	return
}

func (c *HttpClient) CreateRating(ctx context.Context, rating domain.RatingSeed) (r domain.Rating, err error) {
	err = c.do(ctx, http.MethodPost, RatingPath, rating, &r)
	return
}
