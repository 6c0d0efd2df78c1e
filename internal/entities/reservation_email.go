package entities

// DecisionEmailData feeds the notification sent to a reservation's owner when
// an administrator decides it.
type DecisionEmailData struct {
	OwnerName          string
	ReservationCode    string
	VehicleName        string
	DestinationText    string
	StartTimeFormatted string
	EndTimeFormatted   string
	Status             string
}

// PendingReservationSummary is one row of the daily pending-reservations
// digest mailed to administrators.
type PendingReservationSummary struct {
	Code            string
	OwnerName       string
	DestinationText string
	StartTime       string
}
