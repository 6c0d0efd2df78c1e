package db

import (
	"database/sql"
	"time"
)

type User struct {
	ID             int
	FullName       string
	Email          string
	EmployeeNumber string
	Role           string
	PasswordHash   string
	Phone          string
	CreatedAt      time.Time
}

type Vehicle struct {
	ID                     int
	Name                   string
	Type                   string // "van" | "truck"
	Capacity               int
	RequiresOfficialDriver bool
	Active                 bool
}

type Driver struct {
	ID     int
	Name   string
	Active bool
}

type Reservation struct {
	ID                     int
	Code                   string
	UserID                 int
	VehicleID              int
	DestinationText        string
	DestinationLat         sql.NullFloat64
	DestinationLng         sql.NullFloat64
	OutsideHomeRegion      bool
	StartTime              time.Time
	EndTime                time.Time
	Passengers             int
	DurationHours          float64
	RequiresTwoDrivers     bool
	RequiresOfficialDriver bool
	Status                 string
	CreatedByAdmin         bool
	CreatedAt              time.Time
	UpdatedAt              time.Time
}
