// Package backend is an in memory implementation of the FairSonority REST api, meant for development and tests.
package backend

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"codeberg.org/gruf/go-mutexes"
	"github.com/google/uuid"
	"github.com/sidereusnuntius/fairsonority/internal/domain"
	"github.com/sidereusnuntius/fairsonority/internal/validate"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrConflict     = errors.New("conflict")
	ErrInvalidInput = errors.New("invalid")
	ErrNotFound     = errors.New("not found")
	ErrForbidden    = errors.New("forbidden")
	ErrUnauthorized = errors.New("invalid credentials")
)

const BcryptCost = 10

// TimestampLayout formats rating timestamps. Its fixed width keeps them sortable as strings.
const TimestampLayout = "2006-01-02T15:04:05.000Z07:00"

type user struct {
	domain.User
	hash []byte
}

func (u *user) orderUser() domain.OrderUser {
	return domain.OrderUser{
		ID:       u.ID,
		Name:     u.FirstName,
		LastName: u.LastName,
		Email:    u.Email,
	}
}

type order struct {
	domain.OrderRecord
	CustomerID string
}

// Service holds the backend's data. It is safe for concurrent use.
type Service struct {
	now   func() time.Time
	locks *mutexes.MutexMap

	mu      sync.RWMutex
	users   map[string]*user
	byEmail map[string]string
	orders  map[string]*order
	// ratings maps artist ids to the ratings they received, keyed by customer id.
	ratings map[string]map[string]domain.Rating
}

func NewService(now func() time.Time) *Service {
	locks := mutexes.MutexMap{}
	return &Service{
		now:     now,
		locks:   &locks,
		users:   make(map[string]*user),
		byEmail: make(map[string]string),
		orders:  make(map[string]*order),
		ratings: make(map[string]map[string]domain.Rating),
	}
}

// Register creates a user with role r. The returned user has no password.
func (s *Service) Register(ctx context.Context, r domain.UserRole, u domain.UserCore) (domain.User, error) {
	if !r.Valid() {
		return domain.User{}, fmt.Errorf("%w: unknown role %q", ErrNotFound, r)
	}
	u.Role = r
	u.Email = strings.TrimSpace(u.Email)
	if err := validateUser(u); err != nil {
		return domain.User{}, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(u.Password), BcryptCost)
	if err != nil {
		return domain.User{}, err
	}
	u.Password = ""
	if r == domain.Customer {
		u.Genres = nil
		u.ProfileDescription = ""
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	key := strings.ToLower(u.Email)
	if _, taken := s.byEmail[key]; taken {
		return domain.User{}, fmt.Errorf("%w: email %s is already registered", ErrConflict, u.Email)
	}
	created := &user{User: domain.User{ID: uuid.NewString(), UserCore: u}, hash: hash}
	s.users[created.ID] = created
	s.byEmail[key] = created.ID
	return created.User, nil
}

func validateUser(u domain.UserCore) error {
	errs := []error{
		validate.Email(u.Email),
		validate.Required(u.Password, "Password"),
		validate.Required(u.FirstName, "First Name"),
		validate.Required(u.LastName, "Last Name"),
	}
	if u.Role == domain.Artist {
		errs = append(errs, validate.Genres(u.Genres), validate.Required(u.ProfileDescription, "Profile Description"))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	return nil
}

// Authenticate checks the credentials of a user, identified by email.
func (s *Service) Authenticate(ctx context.Context, creds domain.Credentials) (domain.User, error) {
	s.mu.RLock()
	id, ok := s.byEmail[strings.ToLower(strings.TrimSpace(creds.Username))]
	var u *user
	if ok {
		u = s.users[id]
	}
	s.mu.RUnlock()

	if u == nil {
		return domain.User{}, ErrUnauthorized
	}
	if err := bcrypt.CompareHashAndPassword(u.hash, []byte(creds.Password)); err != nil {
		return domain.User{}, ErrUnauthorized
	}
	return u.User, nil
}

func (s *Service) user(id string) (*user, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return nil, fmt.Errorf("%w: user not found", ErrNotFound)
	}
	return u, nil
}

func (s *Service) Account(ctx context.Context, id string) (domain.Account, error) {
	u, err := s.user(id)
	if err != nil {
		return domain.Account{}, err
	}
	return domain.Account{Role: u.Role, UserID: u.ID, Username: u.Email}, nil
}

// OrderRow is an order as listed by the api: From is the customer who placed it, To the artist.
type OrderRow struct {
	From  domain.OrderUser   `json:"from"`
	To    domain.OrderUser   `json:"to"`
	Order domain.OrderRecord `json:"order"`
}

// Orders lists the orders the user placed or received, most recent first.
func (s *Service) Orders(ctx context.Context, userID string) ([]OrderRow, error) {
	if _, err := s.user(userID); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	rows := []OrderRow{}
	for _, o := range s.orders {
		if o.CustomerID != userID && o.ArtistID != userID {
			continue
		}
		row := OrderRow{Order: o.OrderRecord}
		if c, ok := s.users[o.CustomerID]; ok {
			row.From = c.orderUser()
		}
		if a, ok := s.users[o.ArtistID]; ok {
			row.To = a.orderUser()
		}
		rows = append(rows, row)
	}
	sort.Slice(rows, func(i, j int) bool {
		return rows[i].Order.DatePlaced.After(rows[j].Order.DatePlaced)
	})
	return rows, nil
}

// PlaceOrder places an order of a customer to an artist.
func (s *Service) PlaceOrder(ctx context.Context, customerID string, seed domain.OrderSeed) (domain.OrderRecord, error) {
	customer, err := s.user(customerID)
	if err != nil {
		return domain.OrderRecord{}, err
	}
	if customer.Role != domain.Customer {
		return domain.OrderRecord{}, fmt.Errorf("%w: only customers place orders", ErrForbidden)
	}
	artist, err := s.user(seed.ArtistID)
	if err != nil || artist.Role != domain.Artist {
		return domain.OrderRecord{}, fmt.Errorf("%w: artist not found", ErrNotFound)
	}

	now := s.now()
	if err := errors.Join(
		validate.BPM(seed.BPM),
		validate.Required(seed.Comment, "Comment"),
		validate.Genres(seed.Genre),
		validate.Deadline(seed.Date, now),
	); err != nil {
		return domain.OrderRecord{}, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	bpm := seed.BPM
	rec := domain.OrderRecord{
		ID:         uuid.NewString(),
		ArtistID:   seed.ArtistID,
		Comment:    seed.Comment,
		DatePlaced: now,
		Deadline:   seed.Date,
		Genre:      slices.Clone(seed.Genre),
		BPM:        &bpm,
		Status:     domain.Placed,
	}

	s.mu.Lock()
	s.orders[rec.ID] = &order{OrderRecord: rec, CustomerID: customerID}
	s.mu.Unlock()
	return rec, nil
}

// UpdateOrder moves an order forward in its lifecycle. Only the artist of the order may update it.
func (s *Service) UpdateOrder(ctx context.Context, artistID string, u domain.OrderUpdate) (domain.OrderRecord, error) {
	if err := u.Validate(); err != nil {
		return domain.OrderRecord{}, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	unlock := s.locks.Lock(u.OrderID)
	defer unlock()

	s.mu.RLock()
	o, ok := s.orders[u.OrderID]
	var current domain.OrderRecord
	if ok {
		current = o.OrderRecord
	}
	s.mu.RUnlock()

	if !ok {
		return domain.OrderRecord{}, fmt.Errorf("%w: order not found", ErrNotFound)
	}
	if current.ArtistID != artistID {
		return domain.OrderRecord{}, fmt.Errorf("%w: only the artist of an order may update it", ErrForbidden)
	}

	next, err := current.Apply(u)
	if err != nil {
		return domain.OrderRecord{}, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	s.mu.Lock()
	o.OrderRecord = next
	s.mu.Unlock()
	return next, nil
}

// Artists lists every artist with their ratings and received orders.
func (s *Service) Artists(ctx context.Context) ([]domain.ArtistFull, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	artists := []domain.ArtistFull{}
	for _, u := range s.users {
		if u.Role != domain.Artist {
			continue
		}
		a := domain.ArtistFull{
			ID:                 u.ID,
			Email:              u.Email,
			Role:               u.Role,
			FirstName:          u.FirstName,
			LastName:           u.LastName,
			Genres:             slices.Clone(u.Genres),
			ProfileDescription: u.ProfileDescription,
			Orders:             []domain.Order{},
			Ratings:            []domain.Rating{},
		}
		for _, o := range s.orders {
			if o.ArtistID != u.ID {
				continue
			}
			received := domain.Order{Order: o.OrderRecord}
			if c, ok := s.users[o.CustomerID]; ok {
				received.User = c.orderUser()
			}
			a.Orders = append(a.Orders, received)
		}
		for _, r := range s.ratings[u.ID] {
			a.Ratings = append(a.Ratings, r)
		}
		sort.Slice(a.Ratings, func(i, j int) bool {
			return a.Ratings[i].Timestamp < a.Ratings[j].Timestamp
		})
		artists = append(artists, a)
	}
	sort.Slice(artists, func(i, j int) bool {
		return artists[i].LastName+artists[i].FirstName < artists[j].LastName+artists[j].FirstName
	})
	return artists, nil
}

// Rate records the rating of a customer for an artist, replacing the customer's previous rating.
func (s *Service) Rate(ctx context.Context, customerID string, seed domain.RatingSeed) (domain.Rating, error) {
	customer, err := s.user(customerID)
	if err != nil {
		return domain.Rating{}, err
	}
	if customer.Role != domain.Customer {
		return domain.Rating{}, fmt.Errorf("%w: only customers rate artists", ErrForbidden)
	}
	if err := validate.Rating(seed.Rating); err != nil {
		return domain.Rating{}, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	artist, err := s.user(seed.ArtistID)
	if err != nil || artist.Role != domain.Artist {
		return domain.Rating{}, fmt.Errorf("%w: artist not found", ErrNotFound)
	}

	r := domain.Rating{
		UserID:    customerID,
		ArtistID:  seed.ArtistID,
		Rating:    seed.Rating,
		Comment:   seed.Comment,
		Timestamp: s.now().UTC().Format(TimestampLayout),
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ratings[seed.ArtistID] == nil {
		s.ratings[seed.ArtistID] = make(map[string]domain.Rating)
	}
	s.ratings[seed.ArtistID][customerID] = r
	return r, nil
}
