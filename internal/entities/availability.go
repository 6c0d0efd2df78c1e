package entities

import "time"

type AvailabilityRequest struct {
	DestinationText        string    `json:"destination_text"`
	StartTime              time.Time `json:"start_time"`
	EndTime                time.Time `json:"end_time"`
	Passengers             int       `json:"passengers"`
	VanWantsOfficialDriver bool      `json:"van_wants_official_driver"`
}

type VehicleResponse struct {
	ID                     int    `json:"id"`
	Name                   string `json:"name"`
	Type                   string `json:"type"`
	Capacity               int    `json:"capacity"`
	RequiresOfficialDriver bool   `json:"requires_official_driver"`
	MinPassengers          int    `json:"min_passengers"`
}

type AvailabilityResponse struct {
	// DurationHours is rounded to one decimal for the caller.
	DurationHours      float64           `json:"duration_hours"`
	Zone               string            `json:"zone"`
	RequiresTwoDrivers bool              `json:"requires_two_drivers"`
	Vehicles           []VehicleResponse `json:"vehicles"`
	CapacityDetail     string            `json:"capacity_detail,omitempty"`
}
