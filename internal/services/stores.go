package services

import (
	"context"

	"carpool/internal/domain"
	"carpool/internal/domain/models"
)

// UserStore is implemented by repositories.UserRepository and memstore.
type UserStore interface {
	Create(ctx context.Context, u *models.User) error
	GetByEmail(ctx context.Context, email string) (models.User, error)
	GetByID(ctx context.Context, id int64) (models.User, error)
	ListByRole(ctx context.Context, role domain.Role) ([]models.User, error)
	SetRole(ctx context.Context, id int64, role domain.Role) error
}

type ShareStore interface {
	Create(ctx context.Context, s *models.Share) error
	GetByID(ctx context.Context, id int64) (models.Share, error)
	Search(ctx context.Context, q models.ShareQuery) ([]models.ShareWithDriver, error)
	ListByDriver(ctx context.Context, driverID int64) ([]models.Share, error)
	ListWithDrivers(ctx context.Context) ([]models.ShareWithDriver, error)
}

// RequestStore.Transition must move a PENDING request and, on approval, take
// one spot from its share atomically.
type RequestStore interface {
	Create(ctx context.Context, r *models.Request) error
	GetByID(ctx context.Context, id int64) (models.Request, error)
	ListByUser(ctx context.Context, userID int64) ([]models.RidingTrip, error)
	ListForShares(ctx context.Context, shareIDs []int64) ([]models.RequestWithUser, error)
	Transition(ctx context.Context, id, shareID int64, to domain.RequestStatus) (models.Request, error)
}
