package entities

import "time"

type ReservationResponse struct {
	ID                     int       `json:"id"`
	Code                   string    `json:"code"`
	VehicleID              int       `json:"vehicle_id"`
	VehicleName            string    `json:"vehicle_name"`
	OwnerID                int       `json:"owner_id"`
	OwnerName              string    `json:"owner_name"`
	OwnerEmail             string    `json:"owner_email,omitempty"`
	DestinationText        string    `json:"destination_text"`
	DestinationLat         *float64  `json:"destination_lat,omitempty"`
	DestinationLng         *float64  `json:"destination_lng,omitempty"`
	OutsideHomeRegion      bool      `json:"outside_home_region"`
	StartTime              time.Time `json:"start_time"`
	EndTime                time.Time `json:"end_time"`
	Passengers             int       `json:"passengers"`
	DurationHours          float64   `json:"duration_hours"`
	RequiresTwoDrivers     bool      `json:"requires_two_drivers"`
	RequiresOfficialDriver bool      `json:"requires_official_driver"`
	Status                 string    `json:"status"`
	CreatedAt              time.Time `json:"created_at"`
}
