package services

import (
	"context"

	"carpool/internal/domain"
	"carpool/internal/domain/models"
)

// AdminService backs the read-only admin console.
type AdminService struct {
	Users    UserStore
	Shares   ShareStore
	Requests RequestStore
}

// ListUsers returns every USER account with a summary of the rides it offers.
func (s AdminService) ListUsers(ctx context.Context) ([]models.AdminUser, error) {
	users, err := s.Users.ListByRole(ctx, domain.RoleUser)
	if err != nil {
		return nil, err
	}
	out := make([]models.AdminUser, 0, len(users))
	for _, u := range users {
		shares, err := s.Shares.ListByDriver(ctx, u.ID)
		if err != nil {
			return nil, err
		}
		summaries := make([]models.ShareSummary, 0, len(shares))
		for _, sh := range shares {
			summaries = append(summaries, sh.Summary())
		}
		out = append(out, models.AdminUser{
			ID:        u.ID,
			FirstName: u.FirstName,
			LastName:  u.LastName,
			Email:     u.Email,
			Gender:    u.Gender,
			Role:      u.Role,
			Shares:    summaries,
		})
	}
	return out, nil
}

// ListTrips returns every share with its driver and requesters.
func (s AdminService) ListTrips(ctx context.Context) ([]models.AdminTrip, error) {
	shares, err := s.Shares.ListWithDrivers(ctx)
	if err != nil {
		return nil, err
	}
	ids := make([]int64, 0, len(shares))
	for _, sh := range shares {
		ids = append(ids, sh.ID)
	}
	reqs, err := s.Requests.ListForShares(ctx, ids)
	if err != nil {
		return nil, err
	}
	byShare := groupRequests(reqs, true)

	out := make([]models.AdminTrip, 0, len(shares))
	for _, sh := range shares {
		trip := models.AdminTrip{
			Share:    sh.Share,
			Driver:   models.Person{FirstName: sh.Driver.FirstName, LastName: sh.Driver.LastName, Email: sh.Driver.Email},
			Requests: byShare[sh.ID],
		}
		if trip.Requests == nil {
			trip.Requests = []models.RequestWithUser{}
		}
		out = append(out, trip)
	}
	return out, nil
}

// Verify reloads the token's user and confirms it is still an admin.
func (s AdminService) Verify(ctx context.Context, id domain.Identity) (models.User, error) {
	u, err := s.Users.GetByID(ctx, id.UserID)
	if err != nil {
		if domain.IsNotFound(err) {
			return models.User{}, domain.ForbiddenError{Msg: "Not authorized as admin"}
		}
		return models.User{}, err
	}
	if u.Role != domain.RoleAdmin {
		return models.User{}, domain.ForbiddenError{Msg: "Not authorized as admin"}
	}
	return u, nil
}
