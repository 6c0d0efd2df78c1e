package eligibility

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	apperrors "vehiculos/internal/errors"
)

// MinOccupancyRatio is the institutional occupancy floor: a trip must fill at
// least this share of a vehicle's seats for the vehicle to qualify.
const MinOccupancyRatio = 0.75

type VehicleType string

const (
	TypeVan   VehicleType = "van"
	TypeTruck VehicleType = "truck"
)

type Zone string

const (
	ZoneLocal  Zone = "local"
	ZoneRemote Zone = "remote"
)

type Vehicle struct {
	ID                     int
	Name                   string
	Type                   VehicleType
	Capacity               int
	RequiresOfficialDriver bool
}

// TripRequest is built per evaluation and never persisted.
type TripRequest struct {
	DestinationText        string
	Start                  time.Time
	End                    time.Time
	Passengers             int
	VanWantsOfficialDriver bool
}

// DriverPolicy decides when a trip needs a second official driver. It is
// supplied by configuration so the rule can change without touching the engine.
type DriverPolicy interface {
	RequiresSecondDriver(zone Zone, durationHours float64) bool
}

// Conditions carries the already-resolved external facts an evaluation needs:
// the destination's zone classification and how many official drivers could
// serve the trip. Lookups happen in the caller; the engine does no I/O.
type Conditions struct {
	Zone             Zone
	AvailableDrivers int
	Policy           DriverPolicy
}

type VehicleMinimum struct {
	Vehicle Vehicle
	Minimum int
}

// CapacityShortfall explains an empty qualifying list caused exclusively by
// the minimum-occupancy rule: every vehicle in the fleet wanted more
// passengers than the trip carries.
type CapacityShortfall struct {
	Passengers  int
	Examples    []VehicleMinimum // at most three, lowest minimum first
	Recommended VehicleMinimum
}

// Message renders the shortfall the way the requester sees it.
func (s *CapacityShortfall) Message() string {
	parts := make([]string, 0, len(s.Examples))
	for _, e := range s.Examples {
		parts = append(parts, fmt.Sprintf("%s (%d pax) requiere mínimo %d", e.Vehicle.Name, e.Vehicle.Capacity, e.Minimum))
	}
	return fmt.Sprintf(
		"Con %d persona(s) no se cumple el mínimo de ocupación del 75%% para ningún vehículo. "+
			"Ejemplos: %s. Para poder usar al menos un vehículo, necesitarías al menos %d persona(s) "+
			"(por ejemplo: %s, %d pax).",
		s.Passengers, strings.Join(parts, " · "),
		s.Recommended.Minimum, s.Recommended.Vehicle.Name, s.Recommended.Vehicle.Capacity,
	)
}

type Result struct {
	DurationHours      float64
	Zone               Zone
	RequiresTwoDrivers bool
	Vehicles           []Vehicle
	Shortfall          *CapacityShortfall
}

// MinOccupancy returns the minimum passenger count that satisfies the
// occupancy rule for the given capacity. Ceiling, not rounding: 10 seats
// means at least 8 passengers, never 7.
func MinOccupancy(capacity int) int {
	return int(math.Ceil(float64(capacity) * MinOccupancyRatio))
}

// NeedsOfficialDriver reports whether the vehicle travels with an official
// driver on this trip. Trucks always do; a van only when the requester asked
// for one.
func NeedsOfficialDriver(v Vehicle, trip TripRequest) bool {
	if v.RequiresOfficialDriver {
		return true
	}
	return v.Type == TypeVan && trip.VanWantsOfficialDriver
}

// Evaluate computes which vehicles in fleet may legally serve the trip.
// It is all-or-nothing: malformed trips fail immediately, everything else
// succeeds, an empty fleet included. The qualifying list keeps the fleet's
// original order.
func Evaluate(trip TripRequest, fleet []Vehicle, cond Conditions) (*Result, error) {
	if trip.Passengers < 1 {
		return nil, fmt.Errorf("%w: passengers must be at least 1, got %d", apperrors.ErrInvalidRequest, trip.Passengers)
	}
	if trip.End.Before(trip.Start) {
		return nil, fmt.Errorf("%w: end date cannot precede start date", apperrors.ErrInvalidRequest)
	}

	duration := trip.End.Sub(trip.Start).Hours()
	twoDrivers := cond.Policy != nil && cond.Policy.RequiresSecondDriver(cond.Zone, duration)
	driversNeeded := 1
	if twoDrivers {
		driversNeeded = 2
	}

	var qualifying []Vehicle
	allBelowMinimum := len(fleet) > 0

	for _, v := range fleet {
		belowMinimum := trip.Passengers < MinOccupancy(v.Capacity)
		if !belowMinimum {
			allBelowMinimum = false
		}
		if belowMinimum || trip.Passengers > v.Capacity {
			continue
		}
		if NeedsOfficialDriver(v, trip) && cond.AvailableDrivers < driversNeeded {
			continue
		}
		qualifying = append(qualifying, v)
	}

	res := &Result{
		DurationHours:      duration,
		Zone:               cond.Zone,
		RequiresTwoDrivers: twoDrivers,
		Vehicles:           qualifying,
	}

	// The shortfall explanation only applies when capacity is the whole story.
	// If any vehicle met its minimum, the true constraint was something else
	// and no capacity explanation is produced.
	if len(qualifying) == 0 && allBelowMinimum {
		res.Shortfall = buildShortfall(fleet, trip.Passengers)
	}
	return res, nil
}

func buildShortfall(fleet []Vehicle, passengers int) *CapacityShortfall {
	mins := make([]VehicleMinimum, 0, len(fleet))
	for _, v := range fleet {
		mins = append(mins, VehicleMinimum{Vehicle: v, Minimum: MinOccupancy(v.Capacity)})
	}
	sort.SliceStable(mins, func(i, j int) bool { return mins[i].Minimum < mins[j].Minimum })

	examples := mins
	if len(examples) > 3 {
		examples = examples[:3]
	}
	return &CapacityShortfall{
		Passengers:  passengers,
		Examples:    examples,
		Recommended: mins[0],
	}
}
