package models

import (
	"time"

	"carpool/internal/domain"
)

// Request is a rider's request for a seat on a share.
type Request struct {
	ID        int64                `json:"id"`
	ShareID   int64                `json:"shareId"`
	UserID    int64                `json:"userId"`
	Message   *string              `json:"message"`
	Status    domain.RequestStatus `json:"status"`
	CreatedAt time.Time            `json:"createdAt"`
	UpdatedAt time.Time            `json:"updatedAt"`
}

type RequestWithUser struct {
	Request
	User Person `json:"user"`
}

// RidingTrip is a request seen by the rider who raised it.
type RidingTrip struct {
	Request
	Share ShareWithDriver `json:"share"`
}
