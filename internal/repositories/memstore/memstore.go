// Package memstore keeps users, shares and requests in process memory. It
// follows the SQL repositories' ordering and error semantics and backs the
// service and handler tests.
package memstore

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"carpool/internal/domain"
	"carpool/internal/domain/models"
)

type Store struct {
	mu       sync.Mutex
	users    map[int64]models.User
	shares   map[int64]models.Share
	requests map[int64]models.Request
	nextID   map[string]int64
}

func New() *Store {
	return &Store{
		users:    map[int64]models.User{},
		shares:   map[int64]models.Share{},
		requests: map[int64]models.Request{},
		nextID:   map[string]int64{},
	}
}

func (s *Store) Users() Users       { return Users{s} }
func (s *Store) Shares() Shares     { return Shares{s} }
func (s *Store) Requests() Requests { return Requests{s} }

// PingContext lets the store stand in for a database handle in health checks.
func (s *Store) PingContext(ctx context.Context) error { return ctx.Err() }

func (s *Store) id(table string) int64 {
	s.nextID[table]++
	return s.nextID[table]
}

type Users struct{ s *Store }

func (r Users) Create(_ context.Context, u *models.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.users {
		if existing.Email == u.Email {
			return domain.DuplicateError{Resource: "user"}
		}
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	if u.Role == "" {
		u.Role = domain.RoleUser
	}
	u.ID = r.s.id("users")
	r.s.users[u.ID] = *u
	return nil
}

func (r Users) GetByEmail(_ context.Context, email string) (models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	email = strings.TrimSpace(email)
	for _, u := range r.s.users {
		if u.Email == email {
			return u, nil
		}
	}
	return models.User{}, domain.NotFoundError{Resource: "user"}
}

func (r Users) GetByID(_ context.Context, id int64) (models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return models.User{}, domain.NotFoundError{Resource: "user"}
	}
	return u, nil
}

func (r Users) ListByRole(_ context.Context, role domain.Role) ([]models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []models.User{}
	for _, u := range r.s.users {
		if u.Role == role {
			out = append(out, u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r Users) SetRole(_ context.Context, id int64, role domain.Role) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return domain.NotFoundError{Resource: "user"}
	}
	u.Role = role
	r.s.users[id] = u
	return nil
}

type Shares struct{ s *Store }

func (r Shares) Create(_ context.Context, sh *models.Share) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if sh.CreatedAt.IsZero() {
		sh.CreatedAt = time.Now().UTC()
	}
	sh.DepartureTime = sh.DepartureTime.UTC()
	sh.ID = r.s.id("shares")
	r.s.shares[sh.ID] = *sh
	return nil
}

func (r Shares) GetByID(_ context.Context, id int64) (models.Share, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	sh, ok := r.s.shares[id]
	if !ok {
		return models.Share{}, domain.NotFoundError{Resource: "share"}
	}
	return sh, nil
}

func (r Shares) Search(_ context.Context, q models.ShareQuery) ([]models.ShareWithDriver, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	origin := strings.ToLower(strings.TrimSpace(q.Origin))
	dest := strings.ToLower(strings.TrimSpace(q.Destination))

	out := []models.ShareWithDriver{}
	for _, sh := range r.s.shares {
		if sh.Spots <= 0 ||
			sh.DepartureTime.Before(q.From) || sh.DepartureTime.After(q.To) ||
			!strings.Contains(strings.ToLower(sh.Origin), origin) ||
			!strings.Contains(strings.ToLower(sh.Destination), dest) {
			continue
		}
		d := r.s.users[sh.DriverID]
		out = append(out, models.ShareWithDriver{Share: sh, Driver: models.Person{FirstName: d.FirstName, LastName: d.LastName}})
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].DepartureTime.Equal(out[j].DepartureTime) {
			return out[i].DepartureTime.Before(out[j].DepartureTime)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r Shares) ListByDriver(_ context.Context, driverID int64) ([]models.Share, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []models.Share{}
	for _, sh := range r.s.shares {
		if sh.DriverID == driverID {
			out = append(out, sh)
		}
	}
	sortSharesDesc(out, func(i int) models.Share { return out[i] })
	return out, nil
}

func (r Shares) ListWithDrivers(_ context.Context) ([]models.ShareWithDriver, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []models.ShareWithDriver{}
	for _, sh := range r.s.shares {
		d := r.s.users[sh.DriverID]
		out = append(out, models.ShareWithDriver{Share: sh, Driver: models.Person{ID: d.ID, FirstName: d.FirstName, LastName: d.LastName, Email: d.Email}})
	}
	sortSharesDesc(out, func(i int) models.Share { return out[i].Share })
	return out, nil
}

func sortSharesDesc[T any](items []T, at func(int) models.Share) {
	sort.Slice(items, func(i, j int) bool {
		a, b := at(i), at(j)
		if !a.DepartureTime.Equal(b.DepartureTime) {
			return a.DepartureTime.After(b.DepartureTime)
		}
		return a.ID > b.ID
	})
}

type Requests struct{ s *Store }

func (r Requests) Create(_ context.Context, req *models.Request) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if req.CreatedAt.IsZero() {
		req.CreatedAt = time.Now().UTC()
	}
	req.UpdatedAt = req.CreatedAt
	if req.Status == "" {
		req.Status = domain.StatusPending
	}
	req.ID = r.s.id("requests")
	r.s.requests[req.ID] = *req
	return nil
}

func (r Requests) GetByID(_ context.Context, id int64) (models.Request, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	req, ok := r.s.requests[id]
	if !ok {
		return models.Request{}, domain.NotFoundError{Resource: "request"}
	}
	return req, nil
}

func (r Requests) ListByUser(_ context.Context, userID int64) ([]models.RidingTrip, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []models.RidingTrip{}
	for _, req := range r.s.requests {
		if req.UserID != userID {
			continue
		}
		sh := r.s.shares[req.ShareID]
		d := r.s.users[sh.DriverID]
		out = append(out, models.RidingTrip{
			Request: req,
			Share:   models.ShareWithDriver{Share: sh, Driver: models.Person{FirstName: d.FirstName, LastName: d.LastName}},
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (r Requests) ListForShares(_ context.Context, shareIDs []int64) ([]models.RequestWithUser, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	want := make(map[int64]bool, len(shareIDs))
	for _, id := range shareIDs {
		want[id] = true
	}
	out := []models.RequestWithUser{}
	for _, req := range r.s.requests {
		if !want[req.ShareID] {
			continue
		}
		u := r.s.users[req.UserID]
		out = append(out, models.RequestWithUser{Request: req, User: models.Person{ID: u.ID, FirstName: u.FirstName, LastName: u.LastName, Email: u.Email}})
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r Requests) Transition(_ context.Context, id, shareID int64, to domain.RequestStatus) (models.Request, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	req, ok := r.s.requests[id]
	if !ok {
		return models.Request{}, domain.NotFoundError{Resource: "request"}
	}
	if !req.Status.CanTransition(to) {
		return models.Request{}, domain.ConflictError{Msg: "Request is no longer pending"}
	}
	if to == domain.StatusApproved {
		sh, ok := r.s.shares[shareID]
		if !ok {
			return models.Request{}, domain.NotFoundError{Resource: "share"}
		}
		if sh.Spots <= 0 {
			return models.Request{}, domain.NotAvailableError{}
		}
		sh.Spots--
		r.s.shares[shareID] = sh
	}
	req.Status = to
	req.UpdatedAt = time.Now().UTC()
	r.s.requests[id] = req
	return req, nil
}
