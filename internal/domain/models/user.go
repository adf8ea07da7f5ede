package models

import (
	"time"

	"carpool/internal/domain"
)

type User struct {
	ID            int64       `json:"id"`
	FirstName     string      `json:"firstName"`
	LastName      string      `json:"lastName"`
	Email         string      `json:"email"`
	PasswordHash  string      `json:"-"`
	DriverLicense string      `json:"driverLicense"`
	Gender        string      `json:"gender"`
	Role          domain.Role `json:"role"`
	CreatedAt     time.Time   `json:"createdAt"`
}

// Person is the public slice of a user embedded in ride listings.
type Person struct {
	ID        int64  `json:"id,omitempty"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email,omitempty"`
}

func (u User) Person() Person {
	return Person{ID: u.ID, FirstName: u.FirstName, LastName: u.LastName, Email: u.Email}
}

func (p Person) DisplayName() string {
	switch {
	case p.FirstName == "":
		return p.LastName
	case p.LastName == "":
		return p.FirstName
	}
	return p.FirstName + " " + p.LastName
}

// AdminUser is a row of the admin console user table.
type AdminUser struct {
	ID        int64          `json:"id"`
	FirstName string         `json:"firstName"`
	LastName  string         `json:"lastName"`
	Email     string         `json:"email"`
	Gender    string         `json:"gender"`
	Role      domain.Role    `json:"role"`
	Shares    []ShareSummary `json:"shares"`
}
