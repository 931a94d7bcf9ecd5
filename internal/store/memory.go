package store

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/campuspool/campuspool-backend/internal/models"
)

// NewMemory returns a Store backed by in-process maps. Every mutation runs
// under the collection lock against a copy of the stored value, committed only
// when the mutator returns nil, which makes AtomicUpdate linearizable per id.
// Used by tests and local development without Postgres.
func NewMemory() *Store {
	return &Store{
		Rides:    &memRides{items: make(map[uint]models.Ride)},
		Bookings: &memBookings{items: make(map[uint]models.Booking)},
		Users:    &memUsers{items: make(map[uint]models.User)},
	}
}

type memRides struct {
	mu    sync.Mutex
	seq   uint
	items map[uint]models.Ride
}

func (s *memRides) Get(ctx context.Context, id uint) (*models.Ride, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.items[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &r, nil
}

func (s *memRides) List(ctx context.Context, filter RideFilter) ([]models.Ride, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Ride
	for _, r := range s.items {
		if !matchRide(r, filter) {
			continue
		}
		out = append(out, r)
	}
	// Newest created first; id breaks creation-timestamp ties deterministically.
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func matchRide(r models.Ride, f RideFilter) bool {
	if f.From != "" && !strings.Contains(strings.ToLower(r.From), strings.ToLower(f.From)) {
		return false
	}
	if f.To != "" && !strings.Contains(strings.ToLower(r.To), strings.ToLower(f.To)) {
		return false
	}
	if f.Date != "" && r.Date != f.Date {
		return false
	}
	if f.VehicleType != "" && r.VehicleType != f.VehicleType {
		return false
	}
	if f.CreatorID != 0 && r.CreatorID != f.CreatorID {
		return false
	}
	return true
}

func (s *memRides) Insert(ctx context.Context, ride *models.Ride) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	ride.ID = s.seq
	if ride.CreatedAt.IsZero() {
		ride.CreatedAt = time.Now()
	}
	s.items[ride.ID] = *ride
	return nil
}

func (s *memRides) AtomicUpdate(ctx context.Context, id uint, mutate func(*models.Ride) error) (*models.Ride, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.items[id]
	if !ok {
		return nil, ErrNotFound
	}
	if err := mutate(&r); err != nil {
		return nil, err
	}
	r.UpdatedAt = time.Now()
	s.items[id] = r
	return &r, nil
}

func (s *memRides) Delete(ctx context.Context, id uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[id]; !ok {
		return ErrNotFound
	}
	delete(s.items, id)
	return nil
}

type memBookings struct {
	mu    sync.Mutex
	seq   uint
	items map[uint]models.Booking
}

func (s *memBookings) Get(ctx context.Context, id uint) (*models.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.items[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &b, nil
}

func (s *memBookings) ListByUser(ctx context.Context, userID uint) ([]models.Booking, error) {
	return s.list(func(b models.Booking) bool { return b.UserID == userID })
}

func (s *memBookings) ListByRide(ctx context.Context, rideID uint) ([]models.Booking, error) {
	return s.list(func(b models.Booking) bool { return b.RideID == rideID })
}

func (s *memBookings) list(match func(models.Booking) bool) ([]models.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Booking
	for _, b := range s.items {
		if match(b) {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *memBookings) Insert(ctx context.Context, booking *models.Booking) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	booking.ID = s.seq
	if booking.CreatedAt.IsZero() {
		booking.CreatedAt = time.Now()
	}
	s.items[booking.ID] = *booking
	return nil
}

func (s *memBookings) AtomicUpdate(ctx context.Context, id uint, mutate func(*models.Booking) error) (*models.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.items[id]
	if !ok {
		return nil, ErrNotFound
	}
	if err := mutate(&b); err != nil {
		return nil, err
	}
	b.UpdatedAt = time.Now()
	s.items[id] = b
	return &b, nil
}

type memUsers struct {
	mu    sync.Mutex
	seq   uint
	items map[uint]models.User
}

func (s *memUsers) Get(ctx context.Context, id uint) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.items[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &u, nil
}

func (s *memUsers) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.items {
		if u.Email == email {
			u := u
			return &u, nil
		}
	}
	return nil, ErrNotFound
}

func (s *memUsers) Insert(ctx context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	user.ID = s.seq
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now()
	}
	s.items[user.ID] = *user
	return nil
}

func (s *memUsers) AtomicUpdate(ctx context.Context, id uint, mutate func(*models.User) error) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.items[id]
	if !ok {
		return nil, ErrNotFound
	}
	if err := mutate(&u); err != nil {
		return nil, err
	}
	u.UpdatedAt = time.Now()
	s.items[id] = u
	return &u, nil
}
