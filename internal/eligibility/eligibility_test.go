package eligibility

import (
	"errors"
	"testing"
	"time"

	apperrors "vehiculos/internal/errors"
)

var (
	van10   = Vehicle{ID: 1, Name: "Van Sprinter", Type: TypeVan, Capacity: 10}
	truck40 = Vehicle{ID: 2, Name: "Camión Irizar", Type: TypeTruck, Capacity: 40, RequiresOfficialDriver: true}
)

func trip(passengers int, hours float64) TripRequest {
	start := time.Date(2026, 9, 20, 8, 0, 0, 0, time.UTC)
	return TripRequest{
		DestinationText: "Cuauhtémoc, Chihuahua",
		Start:           start,
		End:             start.Add(time.Duration(hours * float64(time.Hour))),
		Passengers:      passengers,
	}
}

func conditions(drivers int) Conditions {
	return Conditions{
		Zone:             ZoneLocal,
		AvailableDrivers: drivers,
		Policy:           HourThresholdPolicy{LocalHours: 6, RemoteHours: 6},
	}
}

func TestMinOccupancy(t *testing.T) {
	cases := []struct {
		capacity int
		want     int
	}{
		{1, 1},
		{4, 3},
		{10, 8},
		{12, 9},
		{40, 30},
	}
	for _, c := range cases {
		if got := MinOccupancy(c.capacity); got != c.want {
			t.Errorf("MinOccupancy(%d) = %d, want %d", c.capacity, got, c.want)
		}
	}
}

func TestEvaluateInvalidRequest(t *testing.T) {
	fleet := []Vehicle{van10}

	for _, passengers := range []int{0, -3} {
		_, err := Evaluate(trip(passengers, 2), fleet, conditions(2))
		if !errors.Is(err, apperrors.ErrInvalidRequest) {
			t.Errorf("passengers=%d: expected ErrInvalidRequest, got %v", passengers, err)
		}
	}

	backwards := trip(8, 2)
	backwards.End = backwards.Start.Add(-time.Hour)
	if _, err := Evaluate(backwards, fleet, conditions(2)); !errors.Is(err, apperrors.ErrInvalidRequest) {
		t.Errorf("end before start: expected ErrInvalidRequest, got %v", err)
	}
}

func TestEvaluateOccupancyBoundary(t *testing.T) {
	fleet := []Vehicle{van10}

	// ceil(10 * 0.75) = 8: inclusive boundary.
	res, err := Evaluate(trip(8, 2), fleet, conditions(1))
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if len(res.Vehicles) != 1 || res.Vehicles[0].ID != van10.ID {
		t.Fatalf("expected van to qualify at the boundary, got %v", res.Vehicles)
	}

	res, err = Evaluate(trip(7, 2), fleet, conditions(1))
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if len(res.Vehicles) != 0 {
		t.Fatalf("expected no qualifying vehicles one below the boundary, got %v", res.Vehicles)
	}
	if res.Shortfall == nil {
		t.Fatal("expected a capacity shortfall explanation")
	}
}

func TestEvaluateEmptyFleet(t *testing.T) {
	res, err := Evaluate(trip(5, 2), nil, conditions(1))
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if len(res.Vehicles) != 0 {
		t.Fatalf("expected empty qualifying list, got %v", res.Vehicles)
	}
	if res.Shortfall != nil {
		t.Fatal("empty fleet must not produce a capacity explanation")
	}
}

func TestEvaluateShortfallExplanation(t *testing.T) {
	fleet := []Vehicle{van10, truck40}

	// Minimums are 8 and 30; 5 is below both.
	res, err := Evaluate(trip(5, 2), fleet, conditions(2))
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if len(res.Vehicles) != 0 {
		t.Fatalf("expected empty qualifying list, got %v", res.Vehicles)
	}
	if res.Shortfall == nil {
		t.Fatal("expected a capacity shortfall explanation")
	}
	if res.Shortfall.Recommended.Vehicle.ID != van10.ID || res.Shortfall.Recommended.Minimum != 8 {
		t.Errorf("expected the van (minimum 8) as recommendation, got %+v", res.Shortfall.Recommended)
	}
	if len(res.Shortfall.Examples) != 2 {
		t.Errorf("expected 2 examples, got %d", len(res.Shortfall.Examples))
	}
	if res.Shortfall.Examples[0].Minimum != 8 || res.Shortfall.Examples[1].Minimum != 30 {
		t.Errorf("examples not sorted by minimum: %+v", res.Shortfall.Examples)
	}
	if res.Shortfall.Message() == "" {
		t.Error("expected a rendered message")
	}
}

func TestEvaluateShortfallExamplesCapped(t *testing.T) {
	fleet := []Vehicle{
		{ID: 1, Name: "A", Type: TypeVan, Capacity: 40},
		{ID: 2, Name: "B", Type: TypeVan, Capacity: 20},
		{ID: 3, Name: "C", Type: TypeVan, Capacity: 30},
		{ID: 4, Name: "D", Type: TypeVan, Capacity: 12},
	}
	res, err := Evaluate(trip(2, 2), fleet, conditions(1))
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if res.Shortfall == nil {
		t.Fatal("expected a capacity shortfall explanation")
	}
	if len(res.Shortfall.Examples) != 3 {
		t.Fatalf("expected 3 examples, got %d", len(res.Shortfall.Examples))
	}
	if res.Shortfall.Recommended.Vehicle.Name != "D" {
		t.Errorf("expected the smallest minimum (D) recommended, got %s", res.Shortfall.Recommended.Vehicle.Name)
	}
}

func TestEvaluateNoExplanationWhenDriverFilterFails(t *testing.T) {
	fleet := []Vehicle{truck40}

	// 30 passengers pass the capacity step; the truck fails only because no
	// official driver is available. That is not a capacity problem.
	res, err := Evaluate(trip(30, 2), fleet, conditions(0))
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if len(res.Vehicles) != 0 {
		t.Fatalf("expected truck filtered out without drivers, got %v", res.Vehicles)
	}
	if res.Shortfall != nil {
		t.Fatal("driver-caused emptiness must not produce a capacity explanation")
	}
}

func TestEvaluateVanDriverPreference(t *testing.T) {
	fleet := []Vehicle{van10}

	// A van without a requested official driver stays eligible even with no
	// drivers on hand.
	res, err := Evaluate(trip(9, 2), fleet, conditions(0))
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if len(res.Vehicles) != 1 {
		t.Fatalf("expected van eligible without driver request, got %v", res.Vehicles)
	}

	withDriver := trip(9, 2)
	withDriver.VanWantsOfficialDriver = true
	res, err = Evaluate(withDriver, fleet, conditions(0))
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if len(res.Vehicles) != 0 {
		t.Fatalf("expected van excluded when a driver was requested but none available, got %v", res.Vehicles)
	}
	if res.Shortfall != nil {
		t.Fatal("driver-caused emptiness must not produce a capacity explanation")
	}
}

func TestEvaluateCapacityExceeded(t *testing.T) {
	fleet := []Vehicle{{ID: 5, Name: "Van chica", Type: TypeVan, Capacity: 4}}

	res, err := Evaluate(trip(5, 2), fleet, conditions(1))
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if len(res.Vehicles) != 0 {
		t.Fatalf("expected overloaded vehicle excluded, got %v", res.Vehicles)
	}
	if res.Shortfall != nil {
		t.Fatal("overload is not a minimum-occupancy problem, no explanation expected")
	}
}

func TestEvaluateDurationAndSecondDriver(t *testing.T) {
	fleet := []Vehicle{truck40}

	res, err := Evaluate(trip(30, 1.5), fleet, conditions(2))
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if res.DurationHours != 1.5 {
		t.Errorf("DurationHours = %v, want 1.5", res.DurationHours)
	}
	if res.RequiresTwoDrivers {
		t.Error("short trip should not require two drivers")
	}

	res, err = Evaluate(trip(30, 7), fleet, conditions(2))
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if !res.RequiresTwoDrivers {
		t.Error("trip over the threshold should require two drivers")
	}

	// With two drivers required and only one available, the truck drops out.
	res, err = Evaluate(trip(30, 7), fleet, conditions(1))
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if len(res.Vehicles) != 0 {
		t.Fatalf("expected truck excluded with one driver for a two-driver trip, got %v", res.Vehicles)
	}
}

func TestEvaluateKeepsFleetOrder(t *testing.T) {
	fleet := []Vehicle{
		{ID: 3, Name: "Van B", Type: TypeVan, Capacity: 10},
		{ID: 1, Name: "Van A", Type: TypeVan, Capacity: 10},
		{ID: 2, Name: "Van C", Type: TypeVan, Capacity: 9},
	}
	res, err := Evaluate(trip(8, 2), fleet, conditions(1))
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	want := []int{3, 1, 2}
	if len(res.Vehicles) != len(want) {
		t.Fatalf("expected %d vehicles, got %d", len(want), len(res.Vehicles))
	}
	for i, id := range want {
		if res.Vehicles[i].ID != id {
			t.Errorf("position %d: got vehicle %d, want %d", i, res.Vehicles[i].ID, id)
		}
	}
}

func TestHourThresholdPolicyPerZone(t *testing.T) {
	p := HourThresholdPolicy{LocalHours: 6, RemoteHours: 4}

	if p.RequiresSecondDriver(ZoneLocal, 5) {
		t.Error("5h local trip should not need a second driver")
	}
	if !p.RequiresSecondDriver(ZoneRemote, 5) {
		t.Error("5h remote trip should need a second driver")
	}
	if p.RequiresSecondDriver(ZoneLocal, 6) {
		t.Error("threshold is exclusive: exactly 6h does not need a second driver")
	}
}
