package domain

import "strings"

// ID is used across domain entities.
type ID = int64

type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

func ParseRole(s string) (Role, bool) {
	switch Role(strings.ToUpper(strings.TrimSpace(s))) {
	case RoleUser:
		return RoleUser, true
	case RoleAdmin:
		return RoleAdmin, true
	}
	return "", false
}

// RequestStatus is the lifecycle of a seat request.
type RequestStatus string

const (
	StatusPending  RequestStatus = "PENDING"
	StatusApproved RequestStatus = "APPROVED"
	StatusDeclined RequestStatus = "DECLINED"
)

func ParseRequestStatus(s string) (RequestStatus, bool) {
	switch RequestStatus(strings.ToUpper(strings.TrimSpace(s))) {
	case StatusPending:
		return StatusPending, true
	case StatusApproved:
		return StatusApproved, true
	case StatusDeclined:
		return StatusDeclined, true
	}
	return "", false
}

func (s RequestStatus) Terminal() bool {
	return s == StatusApproved || s == StatusDeclined
}

// CanTransition reports whether a request in status s may move to next.
// PENDING is the only state with outgoing edges.
func (s RequestStatus) CanTransition(next RequestStatus) bool {
	return s == StatusPending && next.Terminal()
}

// Identity is what the auth middleware decodes from a bearer token.
// Role is empty for rider/driver tokens, which only bind id and email.
type Identity struct {
	UserID ID     `json:"id"`
	Email  string `json:"email,omitempty"`
	Role   Role   `json:"role,omitempty"`
}

func (i Identity) HasRole(roles ...Role) bool {
	for _, r := range roles {
		if i.Role == r {
			return true
		}
	}
	return false
}
