package entities

import "time"

type CreateReservationRequest struct {
	VehicleID              int       `json:"vehicle_id"`
	DestinationText        string    `json:"destination_text"`
	StartTime              time.Time `json:"start_time"`
	EndTime                time.Time `json:"end_time"`
	Passengers             int       `json:"passengers"`
	VanWantsOfficialDriver bool      `json:"van_wants_official_driver"`
}
