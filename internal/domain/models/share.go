package models

import "time"

// Share is a ride offer posted by a driver.
type Share struct {
	ID            int64     `json:"id"`
	DriverID      int64     `json:"driverId"`
	Origin        string    `json:"origin"`
	Destination   string    `json:"destination"`
	DepartureTime time.Time `json:"departureTime"`
	Spots         int       `json:"spots"`
	Price         float64   `json:"price"`
	Message       *string   `json:"message"`
	CreatedAt     time.Time `json:"createdAt"`
}

// ShareQuery filters rides for search. Empty Origin/Destination match all.
type ShareQuery struct {
	Origin      string
	Destination string
	From        time.Time
	To          time.Time
}

type ShareWithDriver struct {
	Share
	Driver Person `json:"driver"`
}

type ShareSummary struct {
	ID            int64     `json:"id"`
	Origin        string    `json:"origin"`
	Destination   string    `json:"destination"`
	DepartureTime time.Time `json:"departureTime"`
}

func (s Share) Summary() ShareSummary {
	return ShareSummary{ID: s.ID, Origin: s.Origin, Destination: s.Destination, DepartureTime: s.DepartureTime}
}

// DrivingTrip is a share seen by its driver, with the requests raised on it.
type DrivingTrip struct {
	Share
	Requests []RequestWithUser `json:"requests"`
}

// AdminTrip is a share as listed in the admin console.
type AdminTrip struct {
	Share
	Driver   Person            `json:"driver"`
	Requests []RequestWithUser `json:"requests"`
}
