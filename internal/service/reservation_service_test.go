package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vehiculos/internal/db"
	"vehiculos/internal/eligibility"
	"vehiculos/internal/entities"
	apperrors "vehiculos/internal/errors"
	"vehiculos/internal/geo"
	"vehiculos/internal/lifecycle"
)

type fakeVehicleStore struct {
	fleet []db.Vehicle
}

func (f *fakeVehicleStore) ListActiveVehicles() ([]db.Vehicle, error) {
	return f.fleet, nil
}

func (f *fakeVehicleStore) GetVehicleByID(id int) (*db.Vehicle, error) {
	for _, v := range f.fleet {
		if v.ID == id {
			return &v, nil
		}
	}
	return nil, fmt.Errorf("%w: vehicle %d", apperrors.ErrNotFound, id)
}

type fakeReservationStore struct {
	created   []*db.Reservation
	byID      map[int]*db.Reservation
	updateOK  bool
	updated   []string
	listAll   []entities.ReservationResponse
	listOwn   []entities.ReservationResponse
	lastOwner int
}

func (f *fakeReservationStore) Create(res *db.Reservation) error {
	res.ID = len(f.created) + 1
	f.created = append(f.created, res)
	return nil
}

func (f *fakeReservationStore) GetByID(id int) (*db.Reservation, error) {
	res, ok := f.byID[id]
	if !ok {
		return nil, fmt.Errorf("%w: reservation %d", apperrors.ErrNotFound, id)
	}
	copied := *res
	return &copied, nil
}

func (f *fakeReservationStore) UpdateStatusIfPending(id int, status string, updatedAt time.Time) (bool, error) {
	if !f.updateOK {
		return false, nil
	}
	f.updated = append(f.updated, status)
	return true, nil
}

func (f *fakeReservationStore) ListAll() ([]entities.ReservationResponse, error) {
	return f.listAll, nil
}

func (f *fakeReservationStore) ListByUser(userID int) ([]entities.ReservationResponse, error) {
	f.lastOwner = userID
	return f.listOwn, nil
}

type fakeDriverStore struct {
	available int
}

func (f *fakeDriverStore) CountAvailableDrivers(start, end time.Time) (int, error) {
	return f.available, nil
}

type fakeUserStore struct{}

func (f *fakeUserStore) GetByID(id int) (*db.User, error) {
	return &db.User{ID: id, FullName: "Ana Prueba", Email: "ana@uach.mx"}, nil
}

type fakeGeocoder struct {
	zone eligibility.Zone
	err  error
}

func (f *fakeGeocoder) Classify(ctx context.Context, destinationText string) (eligibility.Zone, *geo.Place, error) {
	if f.err != nil {
		return "", nil, f.err
	}
	return f.zone, &geo.Place{Label: destinationText, Lat: 28.6, Lon: -106.1, Region: "Chihuahua"}, nil
}

func (f *fakeGeocoder) Suggest(ctx context.Context, query string) ([]geo.Suggestion, error) {
	if f.err != nil {
		return nil, f.err
	}
	return []geo.Suggestion{{Label: query}}, nil
}

var testNow = time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)

func newTestService(reservations *fakeReservationStore, gc Geocoder, drivers int) *ReservationService {
	svc := NewReservationService(
		&fakeVehicleStore{fleet: []db.Vehicle{
			{ID: 1, Name: "Van Sprinter", Type: "van", Capacity: 10, Active: true},
			{ID: 2, Name: "Camión Irizar", Type: "truck", Capacity: 40, RequiresOfficialDriver: true, Active: true},
		}},
		reservations,
		&fakeDriverStore{available: drivers},
		&fakeUserStore{},
		gc,
		eligibility.HourThresholdPolicy{LocalHours: 6, RemoteHours: 6},
		AdvanceNotice{LocalDays: 7, RemoteDays: 14},
		"Chihuahua",
	)
	svc.now = func() time.Time { return testNow }
	return svc
}

func availabilityRequest(passengers int) entities.AvailabilityRequest {
	start := testNow.AddDate(0, 0, 10)
	return entities.AvailabilityRequest{
		DestinationText: "Cuauhtémoc, Chihuahua",
		StartTime:       start,
		EndTime:         start.Add(150 * time.Minute),
		Passengers:      passengers,
	}
}

func TestCheckAvailability(t *testing.T) {
	svc := newTestService(&fakeReservationStore{}, &fakeGeocoder{zone: eligibility.ZoneLocal}, 2)

	resp, err := svc.CheckAvailability(context.Background(), availabilityRequest(8))
	require.NoError(t, err)

	assert.Equal(t, 2.5, resp.DurationHours)
	assert.Equal(t, "local", resp.Zone)
	assert.False(t, resp.RequiresTwoDrivers)
	require.Len(t, resp.Vehicles, 1)
	assert.Equal(t, "Van Sprinter", resp.Vehicles[0].Name)
	assert.Equal(t, 8, resp.Vehicles[0].MinPassengers)
	assert.Empty(t, resp.CapacityDetail)
}

func TestCheckAvailabilityCapacityDetail(t *testing.T) {
	svc := newTestService(&fakeReservationStore{}, &fakeGeocoder{zone: eligibility.ZoneLocal}, 2)

	resp, err := svc.CheckAvailability(context.Background(), availabilityRequest(5))
	require.NoError(t, err)

	assert.Empty(t, resp.Vehicles)
	assert.Contains(t, resp.CapacityDetail, "Van Sprinter")
	assert.Contains(t, resp.CapacityDetail, "mínimo 8")
}

func TestCheckAvailabilityAdvanceNotice(t *testing.T) {
	svc := newTestService(&fakeReservationStore{}, &fakeGeocoder{zone: eligibility.ZoneLocal}, 2)

	req := availabilityRequest(8)
	req.StartTime = testNow.AddDate(0, 0, 2)
	req.EndTime = req.StartTime.Add(2 * time.Hour)

	_, err := svc.CheckAvailability(context.Background(), req)
	assert.ErrorIs(t, err, apperrors.ErrInvalidRequest)
}

func TestCheckAvailabilityRemoteNeedsLongerNotice(t *testing.T) {
	svc := newTestService(&fakeReservationStore{}, &fakeGeocoder{zone: eligibility.ZoneRemote}, 2)

	// 10 days ahead satisfies the local rule (7) but not the remote one (14).
	_, err := svc.CheckAvailability(context.Background(), availabilityRequest(8))
	assert.ErrorIs(t, err, apperrors.ErrInvalidRequest)
}

func TestCheckAvailabilityLookupUnavailable(t *testing.T) {
	svc := newTestService(&fakeReservationStore{}, &fakeGeocoder{err: fmt.Errorf("%w: timeout", apperrors.ErrLookupUnavailable)}, 2)

	_, err := svc.CheckAvailability(context.Background(), availabilityRequest(8))
	assert.ErrorIs(t, err, apperrors.ErrLookupUnavailable)
}

func TestCreateReservation(t *testing.T) {
	store := &fakeReservationStore{}
	svc := newTestService(store, &fakeGeocoder{zone: eligibility.ZoneLocal}, 2)

	req := availabilityRequest(30)
	owner := lifecycle.Actor{ID: 7, Role: lifecycle.RoleStandard}

	res, err := svc.CreateReservation(context.Background(), owner, entities.CreateReservationRequest{
		VehicleID:       2,
		DestinationText: req.DestinationText,
		StartTime:       req.StartTime,
		EndTime:         req.EndTime,
		Passengers:      30,
	})
	require.NoError(t, err)
	require.Len(t, store.created, 1)

	assert.Equal(t, "pending", res.Status)
	assert.Equal(t, 7, res.OwnerID)
	assert.Equal(t, "Camión Irizar", res.VehicleName)
	assert.True(t, res.RequiresOfficialDriver)
	require.NotNil(t, res.DestinationLat)
	assert.InDelta(t, 28.6, *res.DestinationLat, 0.001)
}

func TestCreateReservationIneligibleVehicle(t *testing.T) {
	store := &fakeReservationStore{}
	svc := newTestService(store, &fakeGeocoder{zone: eligibility.ZoneLocal}, 2)

	req := availabilityRequest(8)
	// With 8 passengers only the van qualifies; the truck does not, even
	// though it would under different parameters.
	_, err := svc.CreateReservation(context.Background(), lifecycle.Actor{ID: 7, Role: lifecycle.RoleStandard},
		entities.CreateReservationRequest{
			VehicleID:       2,
			DestinationText: req.DestinationText,
			StartTime:       req.StartTime,
			EndTime:         req.EndTime,
			Passengers:      8,
		})
	assert.ErrorIs(t, err, apperrors.ErrIneligibleVehicle)
	assert.Empty(t, store.created)
}

func pendingReservation(id int) *db.Reservation {
	return &db.Reservation{
		ID:        id,
		Code:      "abc-123",
		UserID:    7,
		VehicleID: 1,
		Status:    string(lifecycle.StatusPending),
		StartTime: testNow.AddDate(0, 0, 10),
		EndTime:   testNow.AddDate(0, 0, 10).Add(2 * time.Hour),
	}
}

func TestAuthorize(t *testing.T) {
	store := &fakeReservationStore{
		byID:     map[int]*db.Reservation{5: pendingReservation(5)},
		updateOK: true,
	}
	svc := newTestService(store, &fakeGeocoder{zone: eligibility.ZoneLocal}, 2)

	res, err := svc.Authorize(lifecycle.Actor{ID: 1, Role: lifecycle.RoleAdmin}, 5)
	require.NoError(t, err)
	assert.Equal(t, "authorized", res.Status)
	assert.Equal(t, []string{"authorized"}, store.updated)
}

func TestAuthorizeForbiddenForStandardRole(t *testing.T) {
	store := &fakeReservationStore{
		byID:     map[int]*db.Reservation{5: pendingReservation(5)},
		updateOK: true,
	}
	svc := newTestService(store, &fakeGeocoder{zone: eligibility.ZoneLocal}, 2)

	_, err := svc.Authorize(lifecycle.Actor{ID: 7, Role: lifecycle.RoleStandard}, 5)
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
	assert.Empty(t, store.updated)
}

func TestRejectAfterAuthorizeFails(t *testing.T) {
	decided := pendingReservation(5)
	decided.Status = string(lifecycle.StatusAuthorized)
	store := &fakeReservationStore{
		byID:     map[int]*db.Reservation{5: decided},
		updateOK: true,
	}
	svc := newTestService(store, &fakeGeocoder{zone: eligibility.ZoneLocal}, 2)

	_, err := svc.Reject(lifecycle.Actor{ID: 1, Role: lifecycle.RoleAdmin}, 5)
	assert.ErrorIs(t, err, apperrors.ErrInvalidTransition)
	assert.Empty(t, store.updated)
}

func TestAuthorizeLosesRace(t *testing.T) {
	// The in-memory record still says pending, but the conditional update
	// reports another decision got there first.
	store := &fakeReservationStore{
		byID:     map[int]*db.Reservation{5: pendingReservation(5)},
		updateOK: false,
	}
	svc := newTestService(store, &fakeGeocoder{zone: eligibility.ZoneLocal}, 2)

	_, err := svc.Authorize(lifecycle.Actor{ID: 1, Role: lifecycle.RoleAdmin}, 5)
	assert.ErrorIs(t, err, apperrors.ErrInvalidTransition)
}

func TestListReservationsByRole(t *testing.T) {
	store := &fakeReservationStore{
		listAll: []entities.ReservationResponse{{ID: 1}, {ID: 2}, {ID: 3}},
		listOwn: []entities.ReservationResponse{{ID: 2}},
	}
	svc := newTestService(store, &fakeGeocoder{zone: eligibility.ZoneLocal}, 2)

	all, err := svc.ListReservations(lifecycle.Actor{ID: 1, Role: lifecycle.RoleAdmin})
	require.NoError(t, err)
	assert.Equal(t, 3, all.Total)

	own, err := svc.ListReservations(lifecycle.Actor{ID: 7, Role: lifecycle.RoleStandard})
	require.NoError(t, err)
	assert.Equal(t, 1, own.Total)
	assert.Equal(t, 7, store.lastOwner)
}
